package packer

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/lzwpack/internal/codec"
	"github.com/discochess/lzwpack/internal/codec/codecs"
	"github.com/discochess/lzwpack/internal/codec/lzwcodec"
	"github.com/discochess/lzwpack/internal/shard"
	"github.com/discochess/lzwpack/internal/shard/fnvshard"
	"github.com/discochess/lzwpack/internal/stats"
	"github.com/discochess/lzwpack/internal/store"
	"github.com/discochess/lzwpack/internal/store/diskstore"
)

// DefaultTotalShards is the default number of shards to create.
const DefaultTotalShards = 1024

// Packer packs a file tree into a data directory.
type Packer struct {
	sourceDir    string
	sourceURL    string
	outputDir    string
	totalShards  int
	strategy     shard.Strategy
	codecName    string
	maxWidth     uint
	progress     ProgressFunc
	tempDir      string
	workersCount int
	stats        stats.Collector
	logger       *zap.Logger
}

// Option configures the Packer.
type Option func(*Packer)

// WithSourceDir sets the directory, or single file, to pack.
func WithSourceDir(dir string) Option {
	return func(p *Packer) { p.sourceDir = dir }
}

// WithSourceURL sets a URL to download and pack instead of a local source.
func WithSourceURL(url string) Option {
	return func(p *Packer) { p.sourceURL = url }
}

// WithOutputDir sets the output directory.
func WithOutputDir(dir string) Option {
	return func(p *Packer) { p.outputDir = dir }
}

// WithTotalShards sets the number of shards.
func WithTotalShards(n int) Option {
	return func(p *Packer) { p.totalShards = n }
}

// WithStrategy sets the sharding strategy.
func WithStrategy(s shard.Strategy) Option {
	return func(p *Packer) { p.strategy = s }
}

// WithCodec sets the codec by registry name.
func WithCodec(name string) Option {
	return func(p *Packer) { p.codecName = name }
}

// WithMaxWidth sets the LZW max code width. It is ignored by other codecs.
func WithMaxWidth(width uint) Option {
	return func(p *Packer) { p.maxWidth = width }
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Packer) { p.progress = fn }
}

// WithTempDir sets the temporary directory for downloads.
func WithTempDir(dir string) Option {
	return func(p *Packer) { p.tempDir = dir }
}

// WithWorkers sets the number of parallel workers for compression.
func WithWorkers(n int) Option {
	return func(p *Packer) { p.workersCount = n }
}

// WithStats sets the stats collector.
func WithStats(c stats.Collector) Option {
	return func(p *Packer) { p.stats = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Packer) { p.logger = l }
}

// NewPacker creates a new Packer with the given options.
func NewPacker(opts ...Option) *Packer {
	p := &Packer{
		outputDir:    "./data",
		totalShards:  DefaultTotalShards,
		strategy:     fnvshard.New(),
		codecName:    codecs.Default,
		progress:     DefaultProgressFunc,
		workersCount: 4,
		stats:        stats.NewNoop(),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Pack packs the configured source, downloading it first when a source URL
// is set.
func (p *Packer) Pack(ctx context.Context) (*Manifest, error) {
	startTime := time.Now()
	if p.sourceURL == "" {
		if p.sourceDir == "" {
			return nil, fmt.Errorf("no source directory or URL configured")
		}
		return p.PackPath(ctx, p.sourceDir, p.sourceDir, startTime)
	}

	tempDir := p.tempDir
	if tempDir == "" {
		tempDir = filepath.Join(p.outputDir, ".tmp")
	}
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}

	name := path.Base(strings.SplitN(p.sourceURL, "?", 2)[0])
	if name == "" || name == "/" || name == "." {
		name = "source"
	}
	downloadPath := filepath.Join(tempDir, name)
	p.reportProgress(Progress{Phase: PhaseDownload, StartTime: startTime})

	p.logger.Info("downloading source", zap.String("url", p.sourceURL), zap.String("path", downloadPath))
	if err := NewDownloader().DownloadToFile(ctx, p.sourceURL, downloadPath, p.progress); err != nil {
		// The partial file is kept so the next attempt can resume.
		return nil, fmt.Errorf("downloading source: %w", err)
	}

	m, err := p.PackPath(ctx, downloadPath, p.sourceURL, startTime)
	if err != nil {
		return nil, err
	}
	if err := os.RemoveAll(tempDir); err != nil {
		p.logger.Warn("removing temp directory", zap.Error(err))
	}
	return m, nil
}

// Codec returns the codec blobs are written with.
func (p *Packer) Codec() (codec.Codec, error) {
	if p.codecName == "lzw" || p.codecName == "" {
		opts := []lzwcodec.Option{lzwcodec.WithStats(p.stats), lzwcodec.WithLogger(p.logger)}
		if p.maxWidth != 0 {
			opts = append(opts, lzwcodec.WithMaxWidth(p.maxWidth))
		}
		return lzwcodec.New(opts...), nil
	}
	return codecs.ByName(p.codecName)
}

// sourceFile is one file to pack.
type sourceFile struct {
	path string
	name string
}

// PackPath packs a directory tree, or a single file, at sourcePath into the
// output directory. Existing blobs in the output directory are replaced.
// source is recorded in the manifest.
func (p *Packer) PackPath(ctx context.Context, sourcePath, source string, startTime time.Time) (*Manifest, error) {
	if startTime.IsZero() {
		startTime = time.Now()
	}
	if p.totalShards <= 0 {
		return nil, fmt.Errorf("total shards must be positive, got %d", p.totalShards)
	}

	c, err := p.Codec()
	if err != nil {
		return nil, err
	}

	p.reportProgress(Progress{Phase: PhaseScan, StartTime: startTime})
	files, err := p.scan(ctx, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("scanning source: %w", err)
	}
	p.reportProgress(Progress{Phase: PhaseScan, FilesFound: int64(len(files)), StartTime: startTime})

	// Clean and create the blob directory.
	blobsDir := filepath.Join(p.outputDir, store.BlobDir)
	if err := os.RemoveAll(blobsDir); err != nil {
		return nil, fmt.Errorf("cleaning blobs directory: %w", err)
	}
	if err := os.MkdirAll(blobsDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	st, err := diskstore.New(p.outputDir, c)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}
	defer st.Close()

	var (
		rawBytes    atomic.Int64
		packedBytes int64
		packed      int64
		mu          sync.Mutex
	)

	// Pack files in parallel. A worker slot is taken before each goroutine
	// starts, so at most workers goroutines exist at once.
	workers := max(p.workersCount, 1)
	sem := make(chan struct{}, workers)
	errCh := make(chan error, len(files)+1)
	var (
		wg     sync.WaitGroup
		failed atomic.Bool
	)

launch:
	for _, f := range files {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			errCh <- ctx.Err()
			break launch
		}
		if err := ctx.Err(); err != nil {
			<-sem
			errCh <- err
			break
		}
		if failed.Load() {
			<-sem
			break
		}

		wg.Add(1)
		go func(f sourceFile) {
			defer wg.Done()
			defer func() { <-sem }()

			size, err := p.packFile(ctx, st, f, &rawBytes)
			if err != nil {
				failed.Store(true)
				errCh <- fmt.Errorf("packing %s: %w", f.name, err)
				return
			}

			mu.Lock()
			packed++
			packedBytes += size
			p.reportProgress(Progress{
				Phase:       PhasePack,
				FilesFound:  int64(len(files)),
				FilesPacked: packed,
				RawBytes:    rawBytes.Load(),
				PackedBytes: packedBytes,
				StartTime:   startTime,
			})
			mu.Unlock()
		}(f)
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			p.reportProgress(Progress{Phase: PhaseError, Error: err, StartTime: startTime})
			return nil, err
		}
	}

	manifest := &Manifest{
		Version:     ManifestVersion,
		TotalShards: p.totalShards,
		Strategy:    p.strategy.Name(),
		Codec:       c.Name(),
		FileCount:   packed,
		RawBytes:    rawBytes.Load(),
		PackedBytes: packedBytes,
		BuiltAt:     time.Now().UTC(),
		Source:      source,
	}
	if lc, ok := c.(*lzwcodec.Codec); ok {
		manifest.MaxWidth = lc.Layout().MaxWidth
	}
	if err := WriteManifest(p.outputDir, manifest); err != nil {
		return nil, fmt.Errorf("writing manifest: %w", err)
	}

	p.reportProgress(Progress{
		Phase:       PhaseDone,
		FilesFound:  int64(len(files)),
		FilesPacked: packed,
		RawBytes:    manifest.RawBytes,
		PackedBytes: manifest.PackedBytes,
		StartTime:   startTime,
	})
	p.logger.Info("pack complete",
		zap.Int64("files", manifest.FileCount),
		zap.Int64("rawBytes", manifest.RawBytes),
		zap.Int64("packedBytes", manifest.PackedBytes),
		zap.String("codec", manifest.Codec),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	return manifest, nil
}

// scan lists the regular files under root in lexical order. A single file
// is packed under its base name.
func (p *Packer) scan(ctx context.Context, root string) ([]sourceFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []sourceFile{{path: root, name: filepath.Base(root)}}, nil
	}

	outputDir, _ := filepath.Abs(p.outputDir)
	var files []sourceFile
	err = filepath.WalkDir(root, func(fpath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			// Packing into a subdirectory of the source must not pack the
			// output.
			if abs, _ := filepath.Abs(fpath); abs == outputDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, fpath)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if err := store.ValidateKey(name); err != nil {
			p.logger.Warn("skipping file", zap.String("path", fpath), zap.Error(err))
			return nil
		}
		files = append(files, sourceFile{path: fpath, name: name})
		return nil
	})
	return files, err
}

// packFile compresses one file into the store and returns its packed size.
func (p *Packer) packFile(ctx context.Context, st *diskstore.Store, f sourceFile, rawBytes *atomic.Int64) (int64, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	data, err := io.ReadAll(newProgressReader(file, rawBytes))
	if err != nil {
		return 0, fmt.Errorf("reading file: %w", err)
	}

	key := shard.Key(p.strategy.ShardID(f.name, p.totalShards), f.name)
	if err := st.WriteBlob(ctx, key, data); err != nil {
		return 0, err
	}

	info, err := os.Stat(st.Path(key))
	if err != nil {
		return 0, err
	}

	p.stats.IncCounter(stats.MetricPackedFiles, 1)
	p.stats.IncCounter(stats.MetricRawBytes, int64(len(data)))
	p.stats.IncCounter(stats.MetricPackedBytes, info.Size())
	if len(data) > 0 {
		p.stats.ObserveHistogram(stats.MetricBlobRatio, float64(info.Size())/float64(len(data)))
	}
	p.logger.Debug("packed file",
		zap.String("name", f.name),
		zap.String("key", key),
		zap.Int("rawBytes", len(data)),
		zap.Int64("packedBytes", info.Size()),
	)
	return info.Size(), nil
}

func (p *Packer) reportProgress(pr Progress) {
	if p.progress != nil {
		p.progress(pr)
	}
}
