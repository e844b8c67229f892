package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/discochess/lzwpack"
	"github.com/discochess/lzwpack/internal/codec"
	"github.com/discochess/lzwpack/internal/codec/codecs"
	"github.com/discochess/lzwpack/internal/codec/lzwcodec"
	"github.com/discochess/lzwpack/internal/packer"
	statslogger "github.com/discochess/lzwpack/internal/stats/logger"
	"github.com/discochess/lzwpack/internal/store"
	"github.com/discochess/lzwpack/internal/store/cachedstore"
	"github.com/discochess/lzwpack/internal/store/cachedstore/cachestrategy/lru"
	"github.com/discochess/lzwpack/internal/store/cachedstore/memory"
	"github.com/discochess/lzwpack/internal/store/diskstore"
	"github.com/discochess/lzwpack/internal/store/gcsstore"
	"github.com/discochess/lzwpack/internal/store/s3store"
)

// Store flags shared by the commands that open a client. For a local data
// directory the manifest takes precedence over codec, width, shards and
// strategy.
var (
	codecName    string
	maxWidth     uint
	totalShards  int
	strategyName string
	cacheSize    int
	s3Region     string
	s3Endpoint   string
)

func addCodecFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&codecName, "codec", codecs.Default, "codec: "+strings.Join(codecs.Names(), ", "))
	cmd.Flags().UintVar(&maxWidth, "max-width", lzwcodec.DefaultMaxWidth, "LZW max code width (9-16)")
}

func addStoreFlags(cmd *cobra.Command) {
	addCodecFlags(cmd)
	cmd.Flags().IntVar(&totalShards, "shards", packer.DefaultTotalShards, "number of shards of a remote store")
	cmd.Flags().StringVar(&strategyName, "strategy", "fnv32", "sharding strategy of a remote store: fnv32, dir")
	cmd.Flags().IntVar(&cacheSize, "cache-size", 100, "number of decompressed blobs to cache")
	cmd.Flags().StringVar(&s3Region, "s3-region", "", "AWS region for s3:// data")
	cmd.Flags().StringVar(&s3Endpoint, "s3-endpoint", "", "custom endpoint for S3-compatible services")
}

// openCodec resolves the codec flags.
func openCodec() (codec.Codec, error) {
	if codecName == "lzw" {
		return lzwcodec.New(
			lzwcodec.WithMaxWidth(maxWidth),
			lzwcodec.WithStats(statslogger.New(logger)),
			lzwcodec.WithLogger(logger),
		), nil
	}
	return codecs.ByName(codecName)
}

// openClient opens a cached client over the data directory.
func openClient(ctx context.Context) (*lzwpack.Client, error) {
	var (
		opts []lzwpack.Option
		base store.Store
	)

	switch {
	case strings.HasPrefix(dataDir, "s3://"), strings.HasPrefix(dataDir, "gs://"):
		st, err := openRemoteStore(ctx, dataDir)
		if err != nil {
			return nil, err
		}
		strategy, err := packer.StrategyByName(strategyName)
		if err != nil {
			st.Close()
			return nil, err
		}
		base = st
		opts = append(opts, lzwpack.WithTotalShards(totalShards), lzwpack.WithShardStrategy(strategy))

	default:
		if _, err := os.Stat(dataDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("data directory %q does not exist; run 'lzwpack pack' first", dataDir)
		}
		st, err := openLocalStore(dataDir, &opts)
		if err != nil {
			return nil, err
		}
		base = st
	}

	var st store.Store = base
	if cacheSize > 0 {
		lruStrategy, err := lru.New(cacheSize)
		if err != nil {
			base.Close()
			return nil, fmt.Errorf("creating LRU strategy: %w", err)
		}
		st = cachedstore.New(base, memory.New(lruStrategy, statslogger.New(logger)))
	}

	opts = append(opts,
		lzwpack.WithStore(st),
		lzwpack.WithLogger(logger),
		lzwpack.WithStats(statslogger.New(logger)),
	)
	client, err := lzwpack.New(opts...)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating client: %w", err)
	}
	return client, nil
}

// openLocalStore opens a disk store over dir, configured from its manifest
// when one exists and from the flags otherwise.
func openLocalStore(dir string, opts *[]lzwpack.Option) (store.Store, error) {
	m, err := packer.ReadManifest(dir)
	if err == nil {
		c, err := m.OpenCodec()
		if err != nil {
			return nil, fmt.Errorf("resolving codec: %w", err)
		}
		strategy, err := m.ShardStrategy()
		if err != nil {
			return nil, fmt.Errorf("resolving strategy: %w", err)
		}
		*opts = append(*opts, lzwpack.WithTotalShards(m.TotalShards), lzwpack.WithShardStrategy(strategy))
		return diskstore.New(dir, c)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	c, err := openCodec()
	if err != nil {
		return nil, err
	}
	strategy, err := packer.StrategyByName(strategyName)
	if err != nil {
		return nil, err
	}
	*opts = append(*opts, lzwpack.WithTotalShards(totalShards), lzwpack.WithShardStrategy(strategy))
	return diskstore.New(dir, c)
}

// openRemoteStore opens an S3 or GCS store from a bucket URL.
func openRemoteStore(ctx context.Context, url string) (store.Store, error) {
	c, err := openCodec()
	if err != nil {
		return nil, err
	}

	if rest, ok := strings.CutPrefix(url, "s3://"); ok {
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return nil, fmt.Errorf("invalid S3 path %q: missing bucket", url)
		}
		opts := []s3store.Option{s3store.WithPrefix(prefix)}
		if s3Region != "" {
			opts = append(opts, s3store.WithRegion(s3Region))
		}
		if s3Endpoint != "" {
			opts = append(opts, s3store.WithEndpoint(s3Endpoint))
		}
		return s3store.New(ctx, bucket, c, opts...)
	}

	bucket, prefix, err := packer.ParseGCSPath(url)
	if err != nil {
		return nil, err
	}
	return gcsstore.New(ctx, bucket, c, gcsstore.WithPrefix(prefix))
}

// readLocalManifest reads the manifest of a local data directory.
func readLocalManifest() (*packer.Manifest, error) {
	if strings.Contains(dataDir, "://") {
		return nil, fmt.Errorf("%q is not a local data directory", dataDir)
	}
	return packer.ReadManifest(dataDir)
}
