//go:build e2e

package lzwpack_test

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/discochess/lzwpack"
	"github.com/discochess/lzwpack/internal/packer"
	"github.com/discochess/lzwpack/internal/store/cachedstore"
	"github.com/discochess/lzwpack/internal/store/cachedstore/cachestrategy/lru"
	"github.com/discochess/lzwpack/internal/store/cachedstore/memory"
	"github.com/discochess/lzwpack/internal/store/diskstore"
)

// TestE2E_PackSourceTree packs this repository's own source tree with the
// CLI and reads every file back through a cached client.
func TestE2E_PackSourceTree(t *testing.T) {
	source := filepath.Join(".", "internal")
	dataDir := filepath.Join(t.TempDir(), "data")

	t.Log("Packing source tree...")
	start := time.Now()
	cmd := exec.Command("go", "run", "./cmd/lzwpack", "pack",
		"--source", source,
		"--output", dataDir,
		"--shards", "64",
		"--workers", "4",
		"--max-width", "14",
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Error packing: %v", err)
	}
	t.Logf("   Packed in %v", time.Since(start))

	manifest, err := packer.ReadManifest(dataDir)
	if err != nil {
		t.Fatalf("Error reading manifest: %v", err)
	}
	c, err := manifest.OpenCodec()
	if err != nil {
		t.Fatalf("Error resolving codec: %v", err)
	}
	strategy, err := manifest.ShardStrategy()
	if err != nil {
		t.Fatalf("Error resolving strategy: %v", err)
	}

	baseStore, err := diskstore.New(dataDir, c)
	if err != nil {
		t.Fatalf("Error opening store: %v", err)
	}
	lruStrategy, _ := lru.New(100)
	st := cachedstore.New(baseStore, memory.New(lruStrategy, nil))

	client, err := lzwpack.New(
		lzwpack.WithStore(st),
		lzwpack.WithTotalShards(manifest.TotalShards),
		lzwpack.WithShardStrategy(strategy),
	)
	if err != nil {
		t.Fatalf("Error creating client: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	var checked int
	err = filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, _ := filepath.Rel(source, path)
		want, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		got, err := client.Get(ctx, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		if !bytes.Equal(got, want) {
			t.Errorf("%s: round trip mismatch", rel)
		}
		checked++
		return nil
	})
	if err != nil {
		t.Fatalf("Error checking files: %v", err)
	}

	t.Logf("Results:")
	t.Logf("   Files:  %d", checked)
	t.Logf("   Ratio:  %.3f", manifest.Ratio())
	if int64(checked) != manifest.FileCount {
		t.Errorf("checked %d files, manifest lists %d", checked, manifest.FileCount)
	}
}
