package packer

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// rangeServer serves content and honors "bytes=N-" range requests.
func rangeServer(t *testing.T, content []byte, ranges bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", strconv.Itoa(len(content)))
			return
		}
		rng := r.Header.Get("Range")
		if !ranges || rng == "" {
			w.Write(content)
			return
		}
		start, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(rng, "bytes="), "-"))
		if err != nil {
			http.Error(w, "bad range", http.StatusBadRequest)
			return
		}
		if start >= len(content) {
			w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
			return
		}
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, len(content)-1, len(content)))
		w.WriteHeader(http.StatusPartialContent)
		w.Write(content[start:])
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloadToFile(t *testing.T) {
	content := bytes.Repeat([]byte("0123456789"), 10000)
	srv := rangeServer(t, content, true)
	dest := filepath.Join(t.TempDir(), "file")

	var last Progress
	err := NewDownloader().DownloadToFile(context.Background(), srv.URL, dest, func(p Progress) { last = p })
	if err != nil {
		t.Fatalf("DownloadToFile() error = %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("downloaded %d bytes, want %d", len(got), len(content))
	}
	if last.Phase != PhaseDownload || last.BytesDownloaded != int64(len(content)) || last.BytesTotal != int64(len(content)) {
		t.Errorf("last progress = %+v", last)
	}
}

func TestDownload_UnknownLengthFallsBackToHead(t *testing.T) {
	content := bytes.Repeat([]byte("chunked "), 20000)
	tests := []struct {
		name      string
		head      bool
		wantTotal int64
	}{
		{"head reports length", true, int64(len(content))},
		{"head unavailable", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodHead {
					if !tt.head {
						w.WriteHeader(http.StatusMethodNotAllowed)
						return
					}
					w.Header().Set("Content-Length", strconv.Itoa(len(content)))
					return
				}
				w.(http.Flusher).Flush()
				w.Write(content)
			}))
			defer srv.Close()

			body, total, offset, err := NewDownloader().Download(context.Background(), srv.URL, filepath.Join(t.TempDir(), "file"))
			if err != nil {
				t.Fatalf("Download() error = %v", err)
			}
			defer body.Close()
			if total != tt.wantTotal || offset != 0 {
				t.Errorf("Download() total = %d, offset = %d, want %d, 0", total, offset, tt.wantTotal)
			}
		})
	}
}

func TestDownloadToFile_Resume(t *testing.T) {
	content := bytes.Repeat([]byte("abcdefghij"), 1000)
	dest := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(dest, content[:4321], 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		ranges bool
	}{
		{"server honors range", true},
		{"server ignores range", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := os.WriteFile(dest, content[:4321], 0644); err != nil {
				t.Fatal(err)
			}
			srv := rangeServer(t, content, tt.ranges)
			if err := NewDownloader().DownloadToFile(context.Background(), srv.URL, dest, nil); err != nil {
				t.Fatalf("DownloadToFile() error = %v", err)
			}
			got, err := os.ReadFile(dest)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, content) {
				t.Errorf("downloaded %d bytes, want %d", len(got), len(content))
			}
		})
	}
}

func TestDownloadToFile_AlreadyComplete(t *testing.T) {
	content := []byte("complete")
	dest := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(dest, content, 0644); err != nil {
		t.Fatal(err)
	}

	srv := rangeServer(t, content, true)
	if err := NewDownloader().DownloadToFile(context.Background(), srv.URL, dest, nil); err != nil {
		t.Fatalf("DownloadToFile() error = %v", err)
	}
	got, _ := os.ReadFile(dest)
	if !bytes.Equal(got, content) {
		t.Errorf("file = %q, want %q", got, content)
	}
}

func TestDownload_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	err := NewDownloader().DownloadToFile(context.Background(), srv.URL, filepath.Join(t.TempDir(), "file"), nil)
	if err == nil {
		t.Error("DownloadToFile() of a missing URL succeeded")
	}
}

func TestGetContentLength(t *testing.T) {
	srv := rangeServer(t, make([]byte, 1234), true)
	n, err := NewDownloader().GetContentLength(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetContentLength() error = %v", err)
	}
	if n != 1234 {
		t.Errorf("GetContentLength() = %d, want 1234", n)
	}
}

func TestPack_FromURL(t *testing.T) {
	content := bytes.Repeat([]byte("downloaded source line\n"), 300)
	srv := rangeServer(t, content, true)
	outputDir := t.TempDir()

	p := NewPacker(
		WithSourceURL(srv.URL+"/corpus.txt?token=x"),
		WithOutputDir(outputDir),
		WithTotalShards(4),
		WithProgress(nil),
	)
	m, err := p.Pack(context.Background())
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	if m.FileCount != 1 || m.RawBytes != int64(len(content)) {
		t.Errorf("manifest = %+v", m)
	}
	if !strings.HasSuffix(m.Source, "/corpus.txt?token=x") {
		t.Errorf("Source = %q", m.Source)
	}
	if _, err := os.Stat(filepath.Join(outputDir, ".tmp")); !os.IsNotExist(err) {
		t.Errorf("temp directory left behind: %v", err)
	}
}
