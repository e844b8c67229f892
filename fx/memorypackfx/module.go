// Package memorypackfx provides an fx module for an in-memory lzwpack client.
// Useful for testing.
package memorypackfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/lzwpack"
	"github.com/discochess/lzwpack/internal/stats"
	"github.com/discochess/lzwpack/internal/stats/logger"
	"github.com/discochess/lzwpack/internal/store/memstore"
)

// Module provides an in-memory lzwpack client for testing.
// Requires a *zap.Logger to be provided.
var Module = fx.Module("memorypack",
	fx.Provide(
		newStatsCollector,
		newMemStore,
		newClient,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("lzwpack.stats"))
}

func newMemStore() *memstore.Store {
	return memstore.New()
}

// Params holds dependencies for creating the client.
type Params struct {
	fx.In

	Logger    *zap.Logger
	Collector stats.Collector
	Store     *memstore.Store
	Lifecycle fx.Lifecycle
}

// Result holds the provided client. The *memstore.Store behind it is
// provided too, for test setup.
type Result struct {
	fx.Out

	Client *lzwpack.Client
}

func newClient(p Params) (Result, error) {
	client, err := lzwpack.New(
		lzwpack.WithStore(p.Store),
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
