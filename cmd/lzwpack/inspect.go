package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/discochess/lzwpack/internal/codec/lzwcodec"
	"github.com/discochess/lzwpack/internal/packer"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Dump the codes of an LZW stream",
	Long: `Decode an LZW stream, or stdin when no file is given, and report its
sessions, code widths and markers.

Examples:
  # Summary of a stream
  lzwpack inspect notes.txt.lzw

  # Every code with its width
  lzwpack inspect notes.txt.lzw --codes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

var showCodes bool

func init() {
	inspectCmd.Flags().UintVar(&maxWidth, "max-width", lzwcodec.DefaultMaxWidth, "LZW max code width the stream was written with")
	inspectCmd.Flags().BoolVar(&showCodes, "codes", false, "print every code")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	in, done, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer done()

	w := cmd.OutOrStdout()
	widths := make(map[uint]int64)
	markers := make(map[lzwcodec.Kind]int)

	c := lzwcodec.New(lzwcodec.WithMaxWidth(maxWidth), lzwcodec.WithLogger(logger))
	sum, err := c.Trace(in, func(ev lzwcodec.Event) {
		widths[ev.Width]++
		markers[ev.Kind]++
		if showCodes {
			fmt.Fprintf(w, "%8d  session=%d  width=%2d  %-7s  %d\n", ev.Index, ev.Session, ev.Width, ev.Kind, ev.Code)
		}
	})
	if err != nil {
		return fmt.Errorf("inspecting stream: %w", err)
	}

	fmt.Fprintf(w, "Sessions:  %d\n", sum.Sessions)
	fmt.Fprintf(w, "Codes:     %d (%d literal, %d learned, %d reset, %d stop)\n",
		sum.Codes, markers[lzwcodec.KindLiteral], markers[lzwcodec.KindLearned],
		markers[lzwcodec.KindReset], markers[lzwcodec.KindStop])
	fmt.Fprintf(w, "Packed:    %s (%d bits)\n", packer.FormatBytes((sum.Bits+7)/8), sum.Bits)
	fmt.Fprintf(w, "Decoded:   %s\n", packer.FormatBytes(sum.Bytes))
	fmt.Fprintf(w, "Ratio:     %.3f\n", sum.Ratio())

	ws := make([]uint, 0, len(widths))
	for width := range widths {
		ws = append(ws, width)
	}
	sort.Slice(ws, func(i, j int) bool { return ws[i] < ws[j] })
	fmt.Fprintln(w, "Widths:")
	for _, width := range ws {
		fmt.Fprintf(w, "  %2d bits: %d codes\n", width, widths[width])
	}
	return nil
}
