package lzwpack

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/discochess/lzwpack/internal/packer"
	"github.com/discochess/lzwpack/internal/shard"
	"github.com/discochess/lzwpack/internal/shard/fnvshard"
	"github.com/discochess/lzwpack/internal/stats"
	"github.com/discochess/lzwpack/internal/store"
	"github.com/discochess/lzwpack/internal/store/diskstore"
)

// Option configures a Client.
type Option interface {
	apply(*options)
}

// options holds the client configuration.
type options struct {
	store         store.Store
	shardStrategy shard.Strategy
	totalShards   int
	stats         stats.Collector
	logger        *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		shardStrategy: fnvshard.New(),
		totalShards:   packer.DefaultTotalShards,
		stats:         stats.NewNoop(),
		logger:        zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithStore sets the storage backend to use.
func WithStore(s store.Store) Option {
	return optionFunc(func(o *options) {
		o.store = s
	})
}

// WithShardStrategy sets the sharding strategy to use.
// If not set, FNV-1a hash sharding is used.
func WithShardStrategy(s shard.Strategy) Option {
	return optionFunc(func(o *options) {
		o.shardStrategy = s
	})
}

// WithTotalShards sets the total number of shards.
// Default is 1024. It must match the value the pack was written with.
func WithTotalShards(n int) Option {
	return optionFunc(func(o *options) {
		o.totalShards = n
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

// WithDataDir configures the client from a packed data directory.
// It reads manifest.json to configure shard count, strategy and codec, and
// creates a disk-based store over the directory.
// This is the recommended way to create a client for local data.
func WithDataDir(dir string) (Option, error) {
	manifest, err := packer.ReadManifest(dir)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	c, err := manifest.OpenCodec()
	if err != nil {
		return nil, fmt.Errorf("resolving codec: %w", err)
	}

	strategy, err := manifest.ShardStrategy()
	if err != nil {
		return nil, fmt.Errorf("resolving strategy: %w", err)
	}

	st, err := diskstore.New(dir, c)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	return optionFunc(func(o *options) {
		o.store = st
		o.totalShards = manifest.TotalShards
		o.shardStrategy = strategy
	}), nil
}
