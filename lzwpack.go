// Package lzwpack stores named blobs compressed with an adaptive LZW codec,
// and exposes the codec itself as a stream compressor.
//
// Example usage:
//
//	opt, err := lzwpack.WithDataDir("/path/to/data")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := lzwpack.New(opt)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	data, err := client.Get(ctx, "logs/app.log")
//	if err != nil {
//	    log.Fatal(err)
//	}
package lzwpack

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/discochess/lzwpack/internal/shard"
	"github.com/discochess/lzwpack/internal/stats"
	"github.com/discochess/lzwpack/internal/store"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrNotFound indicates the blob was not found in the pack.
	ErrNotFound = errors.New("lzwpack: blob not found")

	// ErrClosed indicates the client has been closed.
	ErrClosed = errors.New("lzwpack: client closed")

	// ErrNoStore indicates no store was provided.
	ErrNoStore = errors.New("lzwpack: no store provided")

	// ErrInvalidName indicates a blob name that is not a clean relative
	// slash-separated path.
	ErrInvalidName = errors.New("lzwpack: invalid blob name")
)

// Client reads and writes blobs in a pack.
// A Client is safe for concurrent use by multiple goroutines.
type Client struct {
	store         store.Store
	shardStrategy shard.Strategy
	totalShards   int
	stats         stats.Collector
	logger        *zap.Logger
	closed        atomic.Bool
}

// New creates a new Client with the given options.
// A store is required; everything else has a default.
func New(opts ...Option) (*Client, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	c := &Client{
		store:         cfg.store,
		shardStrategy: cfg.shardStrategy,
		totalShards:   cfg.totalShards,
		stats:         cfg.stats,
		logger:        cfg.logger,
	}

	if c.store == nil {
		return nil, ErrNoStore
	}
	if c.totalShards <= 0 {
		return nil, fmt.Errorf("lzwpack: total shards must be positive, got %d", c.totalShards)
	}

	c.logger.Debug("client initialized",
		zap.Int("totalShards", c.totalShards),
		zap.String("shardStrategy", c.shardStrategy.Name()),
	)

	return c, nil
}

// Key returns the storage key a blob name maps to.
func (c *Client) Key(name string) (string, error) {
	if err := store.ValidateKey(name); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return shard.Key(c.shardStrategy.ShardID(name, c.totalShards), name), nil
}

// Put compresses data and stores it under name, replacing any previous blob.
func (c *Client) Put(ctx context.Context, name string, data []byte) error {
	if c.closed.Load() {
		return ErrClosed
	}

	key, err := c.Key(name)
	if err != nil {
		return err
	}

	c.stats.IncCounter(stats.MetricPuts, 1)
	if err := c.store.WriteBlob(ctx, key, data); err != nil {
		return fmt.Errorf("writing blob %s: %w", name, err)
	}
	c.stats.IncCounter(stats.MetricBytesIn, int64(len(data)))

	c.logger.Debug("blob written", zap.String("name", name), zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

// Get returns the uncompressed blob stored under name.
// Returns ErrNotFound if the pack has no such blob.
func (c *Client) Get(ctx context.Context, name string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	key, err := c.Key(name)
	if err != nil {
		return nil, err
	}

	c.stats.IncCounter(stats.MetricGets, 1)
	data, err := c.store.ReadBlob(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.stats.IncCounter(stats.MetricMisses, 1)
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("reading blob %s: %w", name, err)
	}

	c.stats.IncCounter(stats.MetricBytesOut, int64(len(data)))
	return data, nil
}

// Names returns the names of all blobs in the pack, in storage key order.
// The store must implement store.Lister.
func (c *Client) Names(ctx context.Context) ([]string, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	lister, ok := c.store.(store.Lister)
	if !ok {
		return nil, store.ErrNotListable
	}
	keys, err := lister.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing blobs: %w", err)
	}

	names := make([]string, 0, len(keys))
	for _, key := range keys {
		_, name, err := shard.ParseKey(key)
		if err != nil {
			c.logger.Warn("skipping foreign key", zap.String("key", key), zap.Error(err))
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// Close releases all resources associated with the client.
// After Close, the client should not be used.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	if err := c.store.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}

	return nil
}

// ShardStrategy returns the sharding strategy used by this client.
func (c *Client) ShardStrategy() shard.Strategy {
	return c.shardStrategy
}

// TotalShards returns the number of shards names are spread over.
func (c *Client) TotalShards() int {
	return c.totalShards
}

// Store returns the storage backend used by this client.
func (c *Client) Store() store.Store {
	return c.store
}
