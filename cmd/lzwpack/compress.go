package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/lzwpack/internal/packer"
)

var compressCmd = &cobra.Command{
	Use:   "compress [file]",
	Short: "Compress a file or stdin",
	Long: `Compress a file, or stdin when no file is given, to a single stream.

Examples:
  # Compress with the default LZW settings
  lzwpack compress notes.txt -o notes.txt.lzw

  # Compress a pipe with 16-bit codes
  cat notes.txt | lzwpack compress --max-width 16 > notes.txt.lzw`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompress,
}

var decompressCmd = &cobra.Command{
	Use:   "decompress [file]",
	Short: "Decompress a file or stdin",
	Long: `Decompress a stream produced by 'lzwpack compress'.

The codec and max width must match the ones the stream was written with.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecompress,
}

var streamOutput string

func init() {
	for _, cmd := range []*cobra.Command{compressCmd, decompressCmd} {
		addCodecFlags(cmd)
		cmd.Flags().StringVarP(&streamOutput, "output", "o", "", "output file (default: stdout)")
		rootCmd.AddCommand(cmd)
	}
}

func runCompress(cmd *cobra.Command, args []string) error {
	c, err := openCodec()
	if err != nil {
		return err
	}

	in, out, done, err := openStreams(cmd, args)
	if err != nil {
		return err
	}
	defer done()

	counted := &countingWriter{w: out}
	w, err := c.Writer(counted)
	if err != nil {
		return err
	}
	n, err := io.Copy(w, in)
	if err != nil {
		w.Close()
		return fmt.Errorf("compressing: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("compressing: %w", err)
	}

	logger.Info("compressed",
		zap.String("codec", c.Name()),
		zap.Int64("rawBytes", n),
		zap.Int64("packedBytes", counted.n),
	)
	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s -> %s\n", packer.FormatBytes(n), packer.FormatBytes(counted.n))
	}
	return nil
}

func runDecompress(cmd *cobra.Command, args []string) error {
	c, err := openCodec()
	if err != nil {
		return err
	}

	in, out, done, err := openStreams(cmd, args)
	if err != nil {
		return err
	}
	defer done()

	r, err := c.Reader(in)
	if err != nil {
		return err
	}
	defer r.Close()

	n, err := io.Copy(out, r)
	if err != nil {
		return fmt.Errorf("decompressing: %w", err)
	}
	logger.Info("decompressed", zap.String("codec", c.Name()), zap.Int64("rawBytes", n))
	return nil
}

// openStreams opens the input file, or stdin, and the output file, or
// stdout. done closes whatever was opened.
func openStreams(cmd *cobra.Command, args []string) (io.Reader, io.Writer, func(), error) {
	in, closeIn, err := openInput(cmd, args)
	if err != nil {
		return nil, nil, nil, err
	}
	if streamOutput == "" {
		return in, cmd.OutOrStdout(), closeIn, nil
	}
	f, err := os.Create(streamOutput)
	if err != nil {
		closeIn()
		return nil, nil, nil, fmt.Errorf("creating output: %w", err)
	}
	return in, f, func() { f.Close(); closeIn() }, nil
}

// openInput opens the file named by args, or stdin when there is none.
func openInput(cmd *cobra.Command, args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("opening input: %w", err)
	}
	return f, func() { f.Close() }, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
