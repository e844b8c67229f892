// Package runner runs codecs over a corpus and records compression ratio
// and throughput samples.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/lzwpack/internal/codec"
	"github.com/discochess/lzwpack/internal/store"
)

// Runner runs a set of codecs over a corpus.
type Runner struct {
	codecs     []codec.Codec
	iterations int
	logger     *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithIterations sets how many times each input is compressed and
// decompressed for throughput samples. Default is 3.
func WithIterations(n int) Option {
	return func(r *Runner) { r.iterations = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// NewRunner creates a new Runner for the given codecs.
func NewRunner(codecs []codec.Codec, opts ...Option) *Runner {
	r := &Runner{
		codecs:     codecs,
		iterations: 3,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.iterations < 1 {
		r.iterations = 1
	}
	return r
}

// Run runs every codec over the corpus and returns the results keyed by
// codec name. Every input must round-trip exactly.
func (r *Runner) Run(ctx context.Context, corpus Corpus) (map[string]*CodecResult, error) {
	results := make(map[string]*CodecResult, len(r.codecs))
	for _, c := range r.codecs {
		res, err := r.runCodec(ctx, c, corpus)
		if err != nil {
			return nil, fmt.Errorf("codec %s: %w", c.Name(), err)
		}
		results[c.Name()] = res
		r.logger.Info("codec finished",
			zap.String("codec", c.Name()),
			zap.Float64("ratio", res.Ratio()),
			zap.Duration("compressTime", res.CompressTime),
		)
	}
	return results, nil
}

func (r *Runner) runCodec(ctx context.Context, c codec.Codec, corpus Corpus) (*CodecResult, error) {
	res := &CodecResult{
		CodecName: c.Name(),
		Inputs:    make([]InputResult, 0, len(corpus)),
	}

	for _, in := range corpus {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var (
			packed   []byte
			compress time.Duration
			expand   time.Duration
		)
		for i := 0; i < r.iterations; i++ {
			start := time.Now()
			out, err := store.Encode(c, in.Data)
			if err != nil {
				return nil, fmt.Errorf("compressing %s: %w", in.Name, err)
			}
			compress += time.Since(start)

			start = time.Now()
			back, err := store.Decode(c, bytes.NewReader(out))
			if err != nil {
				return nil, fmt.Errorf("decompressing %s: %w", in.Name, err)
			}
			expand += time.Since(start)

			if !bytes.Equal(back, in.Data) {
				return nil, fmt.Errorf("%s: round trip mismatch", in.Name)
			}
			packed = out
		}

		ir := InputResult{
			Name:           in.Name,
			RawBytes:       int64(len(in.Data)),
			PackedBytes:    int64(len(packed)),
			CompressTime:   compress / time.Duration(r.iterations),
			DecompressTime: expand / time.Duration(r.iterations),
		}
		res.Inputs = append(res.Inputs, ir)
		res.RawBytes += ir.RawBytes
		res.PackedBytes += ir.PackedBytes
		res.CompressTime += ir.CompressTime
		res.DecompressTime += ir.DecompressTime
	}

	return res, nil
}

// InputResult is the outcome of one codec on one input.
type InputResult struct {
	Name           string
	RawBytes       int64
	PackedBytes    int64
	CompressTime   time.Duration // Mean over iterations.
	DecompressTime time.Duration // Mean over iterations.
}

// Ratio returns packed size over raw size; 0 for an empty input.
func (ir InputResult) Ratio() float64 {
	if ir.RawBytes == 0 {
		return 0
	}
	return float64(ir.PackedBytes) / float64(ir.RawBytes)
}

// CodecResult aggregates one codec's results over the corpus.
type CodecResult struct {
	CodecName      string
	Inputs         []InputResult
	RawBytes       int64
	PackedBytes    int64
	CompressTime   time.Duration
	DecompressTime time.Duration
}

// Ratio returns the overall packed size over raw size.
func (r *CodecResult) Ratio() float64 {
	if r.RawBytes == 0 {
		return 0
	}
	return float64(r.PackedBytes) / float64(r.RawBytes)
}

// Ratios returns the per-input ratios, in corpus order.
func (r *CodecResult) Ratios() []float64 {
	ratios := make([]float64, len(r.Inputs))
	for i, in := range r.Inputs {
		ratios[i] = in.Ratio()
	}
	return ratios
}

// CompressMBps returns per-input compression throughput in MB/s.
func (r *CodecResult) CompressMBps() []float64 {
	return throughput(r.Inputs, func(in InputResult) time.Duration { return in.CompressTime })
}

// DecompressMBps returns per-input decompression throughput in MB/s.
func (r *CodecResult) DecompressMBps() []float64 {
	return throughput(r.Inputs, func(in InputResult) time.Duration { return in.DecompressTime })
}

func throughput(inputs []InputResult, elapsed func(InputResult) time.Duration) []float64 {
	out := make([]float64, 0, len(inputs))
	for _, in := range inputs {
		d := elapsed(in)
		if d <= 0 {
			continue
		}
		out = append(out, float64(in.RawBytes)/(1<<20)/d.Seconds())
	}
	return out
}
