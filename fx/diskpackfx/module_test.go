package diskpackfx

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/discochess/lzwpack"
	"github.com/discochess/lzwpack/internal/packer"
	"github.com/discochess/lzwpack/internal/stats"
	"github.com/discochess/lzwpack/internal/stats/logger"
)

func TestModule(t *testing.T) {
	tmpDir := t.TempDir()
	source := filepath.Join(tmpDir, "source")
	dataDir := filepath.Join(tmpDir, "data")
	if err := os.MkdirAll(filepath.Join(source, "docs"), 0755); err != nil {
		t.Fatal(err)
	}
	want := bytes.Repeat([]byte("a packed document\n"), 100)
	if err := os.WriteFile(filepath.Join(source, "docs", "a.txt"), want, 0644); err != nil {
		t.Fatal(err)
	}

	p := packer.NewPacker(packer.WithOutputDir(dataDir), packer.WithTotalShards(16), packer.WithProgress(nil))
	if _, err := p.PackPath(context.Background(), source, "", time.Time{}); err != nil {
		t.Fatalf("PackPath() error = %v", err)
	}

	var (
		client    *lzwpack.Client
		collector stats.Collector
	)
	app := fxtest.New(t,
		fx.Supply(zap.NewNop(), Config{DataDir: dataDir, CacheSize: 4}),
		Module,
		fx.Populate(&client, &collector),
	)
	app.RequireStart()
	defer app.RequireStop()

	if client.TotalShards() != 16 {
		t.Errorf("TotalShards() = %d, want 16", client.TotalShards())
	}

	for i := 0; i < 3; i++ {
		got, err := client.Get(context.Background(), "docs/a.txt")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Get() returned %d bytes, want %d", len(got), len(want))
		}
	}

	totals := collector.(*logger.Collector)
	if got := totals.Total(stats.MetricSessions); got != 1 {
		t.Errorf("lzw sessions = %d, want 1 decode behind the cache", got)
	}
}

func TestModule_MissingManifest(t *testing.T) {
	app := fx.New(
		fx.Supply(zap.NewNop(), Config{DataDir: t.TempDir()}),
		Module,
		fx.Invoke(func(*lzwpack.Client) {}),
		fx.NopLogger,
	)
	if app.Err() == nil {
		t.Error("fx.New() without a manifest succeeded")
	}
}
