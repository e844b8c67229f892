// Package diskpackfx provides an fx module for a disk-backed lzwpack client.
package diskpackfx

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/lzwpack"
	"github.com/discochess/lzwpack/internal/codec"
	"github.com/discochess/lzwpack/internal/codec/lzwcodec"
	"github.com/discochess/lzwpack/internal/packer"
	"github.com/discochess/lzwpack/internal/stats"
	"github.com/discochess/lzwpack/internal/stats/logger"
	"github.com/discochess/lzwpack/internal/store/cachedstore"
	"github.com/discochess/lzwpack/internal/store/cachedstore/cachestrategy/lru"
	"github.com/discochess/lzwpack/internal/store/cachedstore/memory"
	"github.com/discochess/lzwpack/internal/store/diskstore"
)

// Config holds configuration for the disk-backed client.
type Config struct {
	// DataDir is a directory written by the packer.
	DataDir string

	// CacheSize is the number of blobs to cache in memory.
	// Default is 100.
	CacheSize int

	// MaxCachedBlobSize skips caching blobs larger than this many bytes.
	// Zero caches blobs of any size.
	MaxCachedBlobSize int
}

// Module provides a disk-backed lzwpack client.
// Requires a Config and a *zap.Logger to be provided.
var Module = fx.Module("diskpack",
	fx.Provide(
		newStatsCollector,
		newClient,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("lzwpack.stats"))
}

// Params holds dependencies for creating the client.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

// Result holds the provided client.
type Result struct {
	fx.Out

	Client *lzwpack.Client
}

func newClient(p Params) (Result, error) {
	cacheSize := p.Config.CacheSize
	if cacheSize <= 0 {
		cacheSize = 100
	}

	manifest, err := packer.ReadManifest(p.Config.DataDir)
	if err != nil {
		return Result{}, err
	}
	strategy, err := manifest.ShardStrategy()
	if err != nil {
		return Result{}, err
	}

	c, err := openCodec(manifest, p)
	if err != nil {
		return Result{}, fmt.Errorf("resolving codec: %w", err)
	}

	baseStore, err := diskstore.New(p.Config.DataDir, c)
	if err != nil {
		return Result{}, err
	}

	lruStrategy, err := lru.New(cacheSize)
	if err != nil {
		return Result{}, err
	}

	var backendOpts []memory.Option
	if p.Config.MaxCachedBlobSize > 0 {
		backendOpts = append(backendOpts, memory.WithMaxBlobSize(p.Config.MaxCachedBlobSize))
	}
	st := cachedstore.New(baseStore, memory.New(lruStrategy, p.Collector, backendOpts...))

	client, err := lzwpack.New(
		lzwpack.WithStore(st),
		lzwpack.WithTotalShards(manifest.TotalShards),
		lzwpack.WithShardStrategy(strategy),
		lzwpack.WithStats(p.Collector),
		lzwpack.WithLogger(p.Logger.Named("lzwpack")),
	)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return Result{Client: client}, nil
}

// openCodec resolves the manifest's codec, reporting LZW session metrics to
// the module's collector.
func openCodec(m *packer.Manifest, p Params) (codec.Codec, error) {
	if m.Codec != "lzw" {
		return m.OpenCodec()
	}
	width := m.MaxWidth
	if width == 0 {
		width = lzwcodec.DefaultMaxWidth
	}
	return lzwcodec.New(
		lzwcodec.WithMaxWidth(width),
		lzwcodec.WithStats(p.Collector),
		lzwcodec.WithLogger(p.Logger.Named("lzw")),
	), nil
}
