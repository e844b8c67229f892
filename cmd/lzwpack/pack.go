package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/lzwpack/internal/packer"
	"github.com/discochess/lzwpack/internal/stats"
	statslogger "github.com/discochess/lzwpack/internal/stats/logger"
	promstats "github.com/discochess/lzwpack/internal/stats/prometheus"
)

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Pack a directory tree into a sharded blob store",
	Long: `Compress every file of a directory tree into a sharded blob store.

This command will:
1. Download the source archive (when --source-url is given)
2. Assign every file to a shard using the configured strategy
3. Compress each file into its own blob with the configured codec
4. Write manifest.json describing the layout

Examples:
  # Pack a local directory
  lzwpack pack --source ./docs --output ./data

  # Use wider codes and keep directories together
  lzwpack pack --source ./docs --max-width 16 --strategy dir

  # Pack a downloaded file and upload to GCS (for cronjobs)
  lzwpack pack --source-url https://example.com/corpus.txt --output-gcs gs://my-bucket/lzwpack

  # Expose Prometheus metrics while packing
  lzwpack pack --source ./docs --metrics-addr :9090`,
	RunE: runPack,
}

var (
	sourceDir   string
	sourceURL   string
	outputDir   string
	outputGCS   string
	workers     int
	metricsAddr string
)

func init() {
	addCodecFlags(packCmd)
	packCmd.Flags().StringVar(&sourceDir, "source", "", "source directory or file")
	packCmd.Flags().StringVar(&sourceURL, "source-url", "", "source URL to download and pack")
	packCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default: --data-dir)")
	packCmd.Flags().StringVar(&outputGCS, "output-gcs", "", "GCS path for output (gs://bucket/prefix)")
	packCmd.Flags().IntVar(&totalShards, "shards", packer.DefaultTotalShards, "number of shards")
	packCmd.Flags().StringVar(&strategyName, "strategy", "fnv32", "sharding strategy: fnv32, dir")
	packCmd.Flags().IntVar(&workers, "workers", 4, "number of parallel workers for compression")
	packCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while packing")
	rootCmd.AddCommand(packCmd)
}

func runPack(cmd *cobra.Command, args []string) error {
	if sourceDir == "" && sourceURL == "" {
		return fmt.Errorf("one of --source or --source-url is required")
	}

	strategy, err := packer.StrategyByName(strategyName)
	if err != nil {
		return err
	}

	// Setup context with cancellation.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle interrupt.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nInterrupted, cleaning up...")
			cancel()
		case <-ctx.Done():
		}
	}()

	var collector stats.Collector = statslogger.New(logger)
	if metricsAddr != "" {
		registry := prometheus.NewRegistry()
		collector = stats.NewTee(promstats.New(registry), collector)
		stop := serveMetrics(metricsAddr, registry)
		defer stop()
	}

	// Determine output directory.
	localOutput := outputDir
	if localOutput == "" {
		localOutput = dataDir
	}
	if outputGCS != "" {
		// Pack to a temp directory, then upload to GCS.
		tmpDir, err := os.MkdirTemp("", "lzwpack-pack-*")
		if err != nil {
			return fmt.Errorf("creating temp directory: %w", err)
		}
		localOutput = tmpDir
		defer os.RemoveAll(tmpDir)
	}

	p := packer.NewPacker(
		packer.WithSourceDir(sourceDir),
		packer.WithSourceURL(sourceURL),
		packer.WithOutputDir(localOutput),
		packer.WithTotalShards(totalShards),
		packer.WithStrategy(strategy),
		packer.WithCodec(codecName),
		packer.WithMaxWidth(maxWidth),
		packer.WithWorkers(workers),
		packer.WithProgress(packer.DefaultProgressFunc),
		packer.WithStats(collector),
		packer.WithLogger(logger),
	)

	source := sourceDir
	if sourceURL != "" {
		source = sourceURL
	}
	fmt.Printf("Packing lzwpack data\n")
	fmt.Printf("  Source:   %s\n", source)
	if outputGCS != "" {
		fmt.Printf("  Output:   %s (via local temp)\n", outputGCS)
	} else {
		fmt.Printf("  Output:   %s\n", localOutput)
	}
	fmt.Printf("  Shards:   %d\n", totalShards)
	fmt.Printf("  Strategy: %s\n", strategy.Name())
	fmt.Printf("  Codec:    %s\n", codecName)
	if codecName == "lzw" {
		fmt.Printf("  Width:    %d\n", maxWidth)
	}
	fmt.Printf("  Workers:  %d\n", workers)
	fmt.Println()

	m, err := p.Pack(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Packed %d files: %s -> %s (ratio %.3f)\n",
		m.FileCount, packer.FormatBytes(m.RawBytes), packer.FormatBytes(m.PackedBytes), m.Ratio())

	// Upload to GCS if specified.
	if outputGCS != "" {
		fmt.Println()
		fmt.Printf("[Upload] Uploading to %s...\n", outputGCS)

		uploader, err := packer.NewGCSUploader(ctx, outputGCS, logger)
		if err != nil {
			return fmt.Errorf("creating GCS uploader: %w", err)
		}
		defer uploader.Close()

		if err := uploader.Upload(ctx, localOutput, packer.DefaultProgressFunc); err != nil {
			return fmt.Errorf("uploading to GCS: %w", err)
		}

		fmt.Println("[Upload] Done")
	}

	return nil
}

// serveMetrics serves the registry on addr until the returned func is called.
func serveMetrics(addr string, registry *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("stopping metrics server", zap.Error(err))
		}
	}
}
