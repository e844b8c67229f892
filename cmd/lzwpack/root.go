package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags.
	dataDir    string
	configFile string
	verbose    bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "lzwpack",
	Short: "Adaptive LZW compression and packed blob storage",
	Long: `lzwpack compresses streams with an adaptive-width LZW codec and packs
directory trees into sharded, compressed blob stores.

Examples:
  # Compress and decompress a file
  lzwpack compress notes.txt -o notes.txt.lzw
  lzwpack decompress notes.txt.lzw -o notes.txt

  # Pack a directory tree
  lzwpack pack --source ./docs --output ./data

  # Read a file back from the packed data
  lzwpack get guide/intro.md

  # Show statistics
  lzwpack stats`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			if err := applyConfigFile(cmd, configFile); err != nil {
				return err
			}
		}

		l, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "./data", "packed data directory, or s3://bucket/prefix or gs://bucket/prefix")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "TOML config file; flags given on the command line take precedence")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// newLogger returns a development logger when verbose, and a production
// logger otherwise.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}
