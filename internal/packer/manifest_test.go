package packer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/discochess/lzwpack/internal/codec/lzwcodec"
)

func TestManifest_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := &Manifest{
		Version:     ManifestVersion,
		TotalShards: 64,
		Strategy:    "dir",
		Codec:       "lzw",
		MaxWidth:    14,
		FileCount:   3,
		RawBytes:    3000,
		PackedBytes: 1200,
		BuiltAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Source:      "/srv/corpus",
	}
	if err := WriteManifest(dir, want); err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}

	got, err := ReadManifest(dir)
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}
	if !got.BuiltAt.Equal(want.BuiltAt) {
		t.Errorf("BuiltAt = %v, want %v", got.BuiltAt, want.BuiltAt)
	}
	got.BuiltAt = want.BuiltAt
	if *got != *want {
		t.Errorf("ReadManifest() = %+v, want %+v", got, want)
	}
	if got.Ratio() != 0.4 {
		t.Errorf("Ratio() = %f, want 0.4", got.Ratio())
	}

	c, err := got.OpenCodec()
	if err != nil {
		t.Fatalf("OpenCodec() error = %v", err)
	}
	lc, ok := c.(*lzwcodec.Codec)
	if !ok {
		t.Fatalf("OpenCodec() = %T, want *lzwcodec.Codec", c)
	}
	if width := lc.Layout().MaxWidth; width != 14 {
		t.Errorf("OpenCodec() max width = %d, want 14", width)
	}

	s, err := got.ShardStrategy()
	if err != nil || s.Name() != "dir" {
		t.Errorf("ShardStrategy() = %v, %v", s, err)
	}
}

func TestReadManifest_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", "{not json"},
		{"newer version", `{"version": 99}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, ManifestFilename), []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := ReadManifest(dir); err == nil {
				t.Error("ReadManifest() error = nil")
			}
		})
	}

	if _, err := ReadManifest(t.TempDir()); err == nil {
		t.Error("ReadManifest() of a directory without a manifest succeeded")
	}
}

func TestStrategyByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"fnv32", "fnv32", false},
		{"", "fnv32", false},
		{"dir", "dir", false},
		{"material", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := StrategyByName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("StrategyByName() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && s.Name() != tt.want {
				t.Errorf("StrategyByName() = %q, want %q", s.Name(), tt.want)
			}
		})
	}
}

func TestManifest_OpenCodecByName(t *testing.T) {
	for _, name := range []string{"gzip", "zstd", "s2", "brotli", "xz", "none", "lzw"} {
		c, err := (&Manifest{Codec: name}).OpenCodec()
		if err != nil {
			t.Fatalf("OpenCodec(%q) error = %v", name, err)
		}
		if c.Name() != name {
			t.Errorf("OpenCodec(%q).Name() = %q", name, c.Name())
		}
	}
	if _, err := (&Manifest{Codec: "rar"}).OpenCodec(); err == nil {
		t.Error("OpenCodec() of an unknown codec succeeded")
	}
}
