package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/lzwpack"
)

var putCmd = &cobra.Command{
	Use:   "put NAME [file]",
	Short: "Store a file under NAME",
	Long: `Compress a file, or stdin when no file is given, and store it under NAME.

Examples:
  lzwpack put guide/intro.md ./docs/guide/intro.md
  echo hello | lzwpack put greetings/hello.txt`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPut,
}

var getCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Read the file stored under NAME",
	Long: `Read and decompress the file stored under NAME.

Examples:
  lzwpack get guide/intro.md
  lzwpack get guide/intro.md --data-dir gs://my-bucket/lzwpack --timing`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the stored names",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var (
	getOutput  string
	showTiming bool
)

func init() {
	for _, cmd := range []*cobra.Command{putCmd, getCmd, listCmd} {
		addStoreFlags(cmd)
		rootCmd.AddCommand(cmd)
	}
	getCmd.Flags().StringVarP(&getOutput, "output", "o", "", "output file (default: stdout)")
	getCmd.Flags().BoolVar(&showTiming, "timing", false, "show read timing on stderr")
}

func runPut(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 2 && args[1] != "-" {
		f, err := os.Open(args[1])
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	client, err := openClient(cmd.Context())
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Put(cmd.Context(), args[0], data); err != nil {
		return fmt.Errorf("put failed: %w", err)
	}
	key, _ := client.Key(args[0])
	logger.Info("stored", zap.String("name", args[0]), zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	client, err := openClient(cmd.Context())
	if err != nil {
		return err
	}
	defer client.Close()

	start := time.Now()
	data, err := client.Get(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, lzwpack.ErrNotFound) {
			return fmt.Errorf("%q not found", args[0])
		}
		return fmt.Errorf("get failed: %w", err)
	}
	elapsed := time.Since(start)

	if getOutput != "" {
		if err := os.WriteFile(getOutput, data, 0644); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	} else if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return err
	}

	if showTiming {
		fmt.Fprintf(cmd.ErrOrStderr(), "Time: %s\n", elapsed)
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := openClient(cmd.Context())
	if err != nil {
		return err
	}
	defer client.Close()

	names, err := client.Names(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing names: %w", err)
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}
