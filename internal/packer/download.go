package packer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync/atomic"
	"time"
)

// DefaultResponseHeaderTimeout is the default timeout for receiving response headers.
const DefaultResponseHeaderTimeout = 30 * time.Second

// Downloader handles downloading files with resume support.
type Downloader struct {
	client *http.Client
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) DownloaderOption {
	return func(d *Downloader) {
		d.client = client
	}
}

// WithTimeout sets the timeout for HTTP operations.
func WithTimeout(timeout time.Duration) DownloaderOption {
	return func(d *Downloader) {
		d.client = &http.Client{
			Timeout: timeout,
		}
	}
}

// NewDownloader creates a new Downloader with sensible defaults.
func NewDownloader(opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		client: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: DefaultResponseHeaderTimeout,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download requests url, resuming after the bytes already in destPath.
// It returns the response body, the total size (0 if unknown) and the
// offset the body starts at. An offset of 0 means destPath must be
// truncated.
func (d *Downloader) Download(ctx context.Context, url string, destPath string) (io.ReadCloser, int64, int64, error) {
	var existingSize int64
	if info, err := os.Stat(destPath); err == nil {
		existingSize = info.Size()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("creating request: %w", err)
	}
	if existingSize > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", existingSize))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("downloading: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		// Server ignored the range; start over.
		totalSize := resp.ContentLength
		if totalSize < 0 {
			// Chunked response; ask for the size separately.
			if n, err := d.GetContentLength(ctx, url); err == nil {
				totalSize = n
			}
		}
		return resp.Body, max(totalSize, 0), 0, nil
	case http.StatusPartialContent:
		totalSize := existingSize + max(resp.ContentLength, 0)
		if contentRange := resp.Header.Get("Content-Range"); contentRange != "" {
			// Format: bytes 100-999/1000
			var start, end, total int64
			if _, err := fmt.Sscanf(contentRange, "bytes %d-%d/%d", &start, &end, &total); err == nil {
				totalSize = total
			}
		}
		return resp.Body, totalSize, existingSize, nil
	case http.StatusRequestedRangeNotSatisfiable:
		// The partial file is already complete.
		resp.Body.Close()
		if existingSize > 0 {
			return io.NopCloser(http.NoBody), existingSize, existingSize, nil
		}
	}
	resp.Body.Close()
	return nil, 0, 0, fmt.Errorf("unexpected status: %s", resp.Status)
}

// DownloadToFile downloads a URL directly to a file, resuming a partial
// download left by an earlier attempt.
func (d *Downloader) DownloadToFile(ctx context.Context, url string, destPath string, progress ProgressFunc) error {
	body, totalSize, offset, err := d.Download(ctx, url, destPath)
	if err != nil {
		return err
	}
	defer body.Close()

	flags := os.O_WRONLY | os.O_CREATE | os.O_APPEND
	if offset == 0 {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	file, err := os.OpenFile(destPath, flags, 0644)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	var downloaded atomic.Int64
	downloaded.Store(offset)
	w := newProgressWriter(file, &downloaded)

	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := body.Read(buf)
		if n > 0 {
			if _, writeErr := w.Write(buf[:n]); writeErr != nil {
				return fmt.Errorf("writing file: %w", writeErr)
			}
			if progress != nil {
				progress(Progress{
					Phase:           PhaseDownload,
					BytesDownloaded: downloaded.Load(),
					BytesTotal:      totalSize,
				})
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
	}

	return file.Close()
}

// GetContentLength gets the content length of a URL without downloading.
func (d *Downloader) GetContentLength(ctx context.Context, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	lengthStr := resp.Header.Get("Content-Length")
	if lengthStr == "" {
		return 0, nil
	}

	return strconv.ParseInt(lengthStr, 10, 64)
}
