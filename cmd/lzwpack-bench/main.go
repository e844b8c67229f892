// Package main provides the lzwpack-bench CLI tool for comparing codecs
// on a corpus of files.
package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/lzwpack/benchmark/analysis"
	"github.com/discochess/lzwpack/benchmark/reporting"
	"github.com/discochess/lzwpack/benchmark/runner"
	"github.com/discochess/lzwpack/internal/codec"
	"github.com/discochess/lzwpack/internal/codec/codecs"
	"github.com/discochess/lzwpack/internal/codec/lzwcodec"
	"github.com/discochess/lzwpack/internal/packer"
)

var (
	corpusDir    string
	corpusLimit  int64
	codecNames   []string
	maxWidth     uint
	iterations   int
	baseline     string
	syntheticN   int
	syntheticSz  int
	seed         int64
	outputFormat string
	outputFile   string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "lzwpack-bench",
	Short: "Benchmark codecs for lzwpack",
	Long: `lzwpack-bench compares compression codecs on a corpus of files.

Every codec compresses and decompresses every input, checking the round trip,
and records the compression ratio and throughput. Ratios are compared against
a baseline codec with non-parametric tests.

Examples:
  # Run benchmark on a synthetic corpus
  lzwpack-bench run

  # Run benchmark on a directory with specific codecs
  lzwpack-bench run --corpus ./testdata --codecs lzw,gzip,zstd

  # Output as markdown report
  lzwpack-bench run --corpus ./testdata --format markdown --output report.md`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the codec benchmark",
	RunE:  runBenchmark,
}

func init() {
	runCmd.Flags().StringVarP(&corpusDir, "corpus", "c", "", "directory of input files (default: synthetic corpus)")
	runCmd.Flags().Int64Var(&corpusLimit, "corpus-limit", 64<<20, "maximum bytes loaded from the corpus directory")
	runCmd.Flags().StringSliceVarP(&codecNames, "codecs", "s", []string{"lzw", "gzip", "zstd", "s2"}, "codecs to compare")
	runCmd.Flags().UintVar(&maxWidth, "max-width", lzwcodec.DefaultMaxWidth, "LZW max code width")
	runCmd.Flags().IntVarP(&iterations, "iterations", "n", 3, "timed iterations per input")
	runCmd.Flags().StringVarP(&baseline, "baseline", "b", codecs.Default, "codec the others are compared against")
	runCmd.Flags().IntVar(&syntheticN, "inputs", 50, "synthetic corpus input count")
	runCmd.Flags().IntVar(&syntheticSz, "input-size", 64<<10, "synthetic corpus input size in bytes")
	runCmd.Flags().Int64Var(&seed, "seed", 1, "synthetic corpus seed")
	runCmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format: text, markdown")
	runCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	logger := zap.NewNop()
	if verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		defer logger.Sync()
	}

	corpus, err := loadCorpus()
	if err != nil {
		return err
	}
	logger.Info("corpus loaded",
		zap.Int("inputs", len(corpus)),
		zap.Int64("bytes", corpus.Bytes()),
	)

	cs, err := createCodecs(codecNames)
	if err != nil {
		return err
	}

	r := runner.NewRunner(cs, runner.WithIterations(iterations), runner.WithLogger(logger))
	results, err := r.Run(cmd.Context(), corpus)
	if err != nil {
		return fmt.Errorf("running benchmark: %w", err)
	}

	comparison := analysis.CompareAll(
		results,
		baseline,
		10000, // Bootstrap iterations.
		0.95,  // 95% confidence.
	)

	var output io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	switch outputFormat {
	case "markdown":
		return writeMarkdownReport(output, corpus, results, comparison)
	default:
		return writeTextReport(output, corpus, results, comparison)
	}
}

func loadCorpus() (runner.Corpus, error) {
	if corpusDir == "" {
		return runner.SyntheticCorpus(seed, syntheticN, syntheticSz), nil
	}
	return runner.LoadCorpus(corpusDir, corpusLimit)
}

func createCodecs(names []string) ([]codec.Codec, error) {
	cs := make([]codec.Codec, 0, len(names))
	for _, name := range names {
		if name == "lzw" {
			cs = append(cs, lzwcodec.New(lzwcodec.WithMaxWidth(maxWidth)))
			continue
		}
		c, err := codecs.ByName(name)
		if err != nil {
			return nil, err
		}
		cs = append(cs, c)
	}
	return cs, nil
}

func sortedNames(results map[string]*runner.CodecResult) []string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeTextReport(w io.Writer, corpus runner.Corpus, results map[string]*runner.CodecResult, multi *analysis.MultiCodecComparison) error {
	fmt.Fprintf(w, "lzwpack Codec Benchmark\n")
	fmt.Fprintf(w, "=======================\n\n")
	fmt.Fprintf(w, "Inputs: %d\n", len(corpus))
	fmt.Fprintf(w, "Corpus: %s\n", packer.FormatBytes(corpus.Bytes()))
	fmt.Fprintf(w, "Iterations: %d\n\n", iterations)

	fmt.Fprintf(w, "Results:\n")
	fmt.Fprintf(w, "--------\n\n")

	for _, name := range sortedNames(results) {
		res := results[name]
		m := runner.ComputeMetrics(res)
		fmt.Fprintf(w, "%s:\n", name)
		fmt.Fprintf(w, "  Packed:            %s\n", packer.FormatBytes(m.PackedBytes))
		fmt.Fprintf(w, "  Ratio:             %.3f\n", m.Ratio)
		fmt.Fprintf(w, "  Median ratio:      %.3f\n", m.MedianRatio)
		fmt.Fprintf(w, "  P90 ratio:         %.3f\n", m.P90Ratio)
		fmt.Fprintf(w, "  Expanded inputs:   %d\n", m.Expanded)
		fmt.Fprintf(w, "  Top 10%% savings:   %.1f%%\n", m.TopInputPct)
		fmt.Fprintf(w, "  Compress:          %.1f MB/s\n", m.CompressMBps)
		fmt.Fprintf(w, "  Decompress:        %.1f MB/s\n\n", m.DecompressMBps)
	}

	if multi != nil && len(multi.Comparisons) > 0 {
		fmt.Fprintf(w, "Statistical Analysis:\n")
		fmt.Fprintf(w, "---------------------\n\n")
		for _, comp := range multi.Comparisons {
			fmt.Fprintln(w, comp.Summary())
			fmt.Fprintln(w)
		}
	}

	return nil
}

func writeMarkdownReport(w io.Writer, corpus runner.Corpus, results map[string]*runner.CodecResult, multi *analysis.MultiCodecComparison) error {
	report := reporting.NewMarkdownReport(w)
	report.WriteHeader("lzwpack Codec Benchmark")
	report.WriteMethodology(corpus, iterations)
	report.WriteSummaryTable(results)

	if multi != nil {
		for _, comp := range multi.Comparisons {
			report.WriteComparison(comp)
		}
	}
	for _, name := range sortedNames(results) {
		report.WriteDistributionChart(name, results[name].Ratios())
	}

	report.WriteFooter()
	return nil
}
