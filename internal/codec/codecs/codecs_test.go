package codecs

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/discochess/lzwpack/internal/codec"
)

func TestByName_RoundTrip(t *testing.T) {
	original := bytes.Repeat([]byte("Hello, World! This is test data for compression. "), 200)

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, err := ByName(name)
			if err != nil {
				t.Fatalf("ByName(%q) error = %v", name, err)
			}
			if c.Name() != name {
				t.Errorf("Name() = %q, want %q", c.Name(), name)
			}

			var compressed bytes.Buffer
			w, err := c.Writer(&compressed)
			if err != nil {
				t.Fatalf("Writer() error = %v", err)
			}
			if _, err := w.Write(original); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			if name != "none" && compressed.Len() >= len(original) {
				t.Errorf("expected compression, got %d bytes from %d", compressed.Len(), len(original))
			}

			r, err := c.Reader(&compressed)
			if err != nil {
				t.Fatalf("Reader() error = %v", err)
			}
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if err := r.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}
			if !bytes.Equal(got, original) {
				t.Error("round trip mismatch")
			}
		})
	}
}

func TestByName_Default(t *testing.T) {
	c, err := ByName("")
	if err != nil {
		t.Fatalf("ByName(\"\") error = %v", err)
	}
	if c.Name() != Default {
		t.Errorf("Name() = %q, want %q", c.Name(), Default)
	}
}

func TestByName_Unknown(t *testing.T) {
	if _, err := ByName("lz4"); !errors.Is(err, codec.ErrUnknown) {
		t.Errorf("ByName(\"lz4\") error = %v, want ErrUnknown", err)
	}
}

func TestByExtension(t *testing.T) {
	tests := map[string]string{
		"lzw": "lzw",
		"gz":  "gzip",
		"zst": "zstd",
		"br":  "brotli",
		"":    "none",
	}
	for ext, want := range tests {
		c, err := ByExtension(ext)
		if err != nil {
			t.Fatalf("ByExtension(%q) error = %v", ext, err)
		}
		if c.Name() != want {
			t.Errorf("ByExtension(%q) = %q, want %q", ext, c.Name(), want)
		}
	}
	if _, err := ByExtension("rar"); !errors.Is(err, codec.ErrUnknown) {
		t.Errorf("ByExtension(\"rar\") error = %v, want ErrUnknown", err)
	}
}
