package diskstore

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/discochess/lzwpack/internal/codec/lzwcodec"
	"github.com/discochess/lzwpack/internal/codec/noopcodec"
	"github.com/discochess/lzwpack/internal/store"
)

func TestStore_ReadBlob(t *testing.T) {
	dir := t.TempDir()

	// Create blob file manually.
	blobDir := filepath.Join(dir, "blobs", "00001")
	if err := os.MkdirAll(blobDir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	data := []byte("blob data")
	if err := os.WriteFile(filepath.Join(blobDir, "a.txt"), data, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	s, err := New(dir, noopcodec.New())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	got, err := s.ReadBlob(context.Background(), "00001/a.txt")
	if err != nil {
		t.Fatalf("ReadBlob() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("ReadBlob() = %q, want %q", got, data)
	}
}

func TestStore_WriteReadBlob(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, lzwcodec.New())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	data := bytes.Repeat([]byte("compress me please "), 100)

	if err := s.WriteBlob(ctx, "00007/doc.txt", data); err != nil {
		t.Fatalf("WriteBlob() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "blobs", "00007", "doc.txt.lzw"))
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Size() >= int64(len(data)) {
		t.Errorf("blob file is %d bytes for %d bytes of data", info.Size(), len(data))
	}

	got, err := s.ReadBlob(ctx, "00007/doc.txt")
	if err != nil {
		t.Fatalf("ReadBlob() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("ReadBlob() returned different data")
	}

	// Overwrite replaces the blob and leaves no temp files behind.
	if err := s.WriteBlob(ctx, "00007/doc.txt", []byte("v2")); err != nil {
		t.Fatalf("WriteBlob() error = %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(dir, "blobs", "00007"))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("blob directory has %d entries, want 1", len(entries))
	}
	if got, _ := s.ReadBlob(ctx, "00007/doc.txt"); string(got) != "v2" {
		t.Errorf("ReadBlob() after overwrite = %q", got)
	}
}

func TestStore_Keys(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, lzwcodec.New())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{"00002/b", "00001/a", "00001/c/d"} {
		if err := s.WriteBlob(ctx, key, []byte(key)); err != nil {
			t.Fatalf("WriteBlob(%q) error = %v", key, err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), []byte("{}"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	want := []string{"00001/a", "00001/c/d", "00002/b"}
	if len(keys) != len(want) {
		t.Fatalf("Keys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestStore_ReadBlobNotFound(t *testing.T) {
	s, err := New(t.TempDir(), noopcodec.New())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	_, err = s.ReadBlob(context.Background(), "99999/missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("ReadBlob() error = %v, want ErrNotFound", err)
	}
}

func TestStore_InvalidKey(t *testing.T) {
	s, err := New(t.TempDir(), noopcodec.New())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	if err := s.WriteBlob(ctx, "../outside", []byte("x")); !errors.Is(err, store.ErrInvalidKey) {
		t.Errorf("WriteBlob() error = %v, want ErrInvalidKey", err)
	}
	if _, err := s.ReadBlob(ctx, "/etc/passwd"); !errors.Is(err, store.ErrInvalidKey) {
		t.Errorf("ReadBlob() error = %v, want ErrInvalidKey", err)
	}
}

func TestStore_CanceledContext(t *testing.T) {
	s, err := New(t.TempDir(), noopcodec.New())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.ReadBlob(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Errorf("ReadBlob() error = %v, want context.Canceled", err)
	}
	if err := s.WriteBlob(ctx, "k", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("WriteBlob() error = %v, want context.Canceled", err)
	}
}

func TestNew_InvalidPath(t *testing.T) {
	_, err := New("/nonexistent/path", noopcodec.New())
	if err == nil {
		t.Error("New() with invalid path should return error")
	}
}

func TestNew_NotDirectory(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(f, nil, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := New(f, noopcodec.New()); err == nil {
		t.Error("New() with file (not directory) should return error")
	}
}
