// Package packer implements the bulk pack pipeline: it compresses a tree of
// files into a sharded data directory and writes its manifest.
package packer

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// Pack phases reported through Progress.Phase.
const (
	PhaseDownload = "download"
	PhaseScan     = "scan"
	PhasePack     = "pack"
	PhaseUpload   = "upload"
	PhaseDone     = "done"
	PhaseError    = "error"
)

// Progress tracks pack progress.
type Progress struct {
	Phase           string
	BytesDownloaded int64
	BytesTotal      int64
	FilesFound      int64
	FilesPacked     int64
	RawBytes        int64
	PackedBytes     int64
	StartTime       time.Time
	Error           error
}

// Ratio returns packed bytes over raw bytes so far.
func (p Progress) Ratio() float64 {
	if p.RawBytes == 0 {
		return 0
	}
	return float64(p.PackedBytes) / float64(p.RawBytes)
}

// ProgressFunc is called periodically with progress updates.
type ProgressFunc func(Progress)

// progressWriter wraps an io.Writer to track bytes written.
type progressWriter struct {
	w       io.Writer
	written *atomic.Int64
}

func newProgressWriter(w io.Writer, counter *atomic.Int64) *progressWriter {
	return &progressWriter{w: w, written: counter}
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.written.Add(int64(n))
	return n, err
}

// progressReader wraps an io.Reader to track bytes read.
type progressReader struct {
	r    io.Reader
	read *atomic.Int64
}

func newProgressReader(r io.Reader, counter *atomic.Int64) *progressReader {
	return &progressReader{r: r, read: counter}
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	pr.read.Add(int64(n))
	return n, err
}

// FormatBytes formats bytes as human-readable string.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatDuration formats duration as human-readable string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

// DefaultProgressFunc prints progress to stdout.
func DefaultProgressFunc(p Progress) {
	switch p.Phase {
	case PhaseDownload:
		pct := float64(0)
		if p.BytesTotal > 0 {
			pct = float64(p.BytesDownloaded) / float64(p.BytesTotal) * 100
		}
		fmt.Printf("\r[Download] %s / %s (%.1f%%)",
			FormatBytes(p.BytesDownloaded), FormatBytes(p.BytesTotal), pct)
	case PhaseScan:
		fmt.Printf("\r[Scan] %d files found", p.FilesFound)
	case PhasePack:
		fmt.Printf("\r[Pack] %d / %d files, %s -> %s",
			p.FilesPacked, p.FilesFound, FormatBytes(p.RawBytes), FormatBytes(p.PackedBytes))
	case PhaseUpload:
		fmt.Printf("\r[Upload] %d / %d objects", p.FilesPacked, p.FilesFound)
	case PhaseDone:
		elapsed := time.Since(p.StartTime)
		fmt.Printf("\n[Done] %d files, %s -> %s (ratio %.3f, %s)\n",
			p.FilesPacked, FormatBytes(p.RawBytes), FormatBytes(p.PackedBytes), p.Ratio(), FormatDuration(elapsed))
	case PhaseError:
		fmt.Printf("\n[Error] %v\n", p.Error)
	}
}
