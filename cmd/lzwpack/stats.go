package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/discochess/lzwpack/internal/packer"
	"github.com/discochess/lzwpack/internal/shard"
	"github.com/discochess/lzwpack/internal/store/diskstore"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics about a packed data directory",
	Long: `Display statistics about a packed data directory including:
- Codec, code width and sharding layout from the manifest
- Number of files and shards in use
- Raw and packed sizes and the compression ratio`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	if strings.Contains(dataDir, "://") {
		return fmt.Errorf("stats reads a local data directory, got %q", dataDir)
	}

	m, err := packer.ReadManifest(dataDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("data directory %q has no manifest; run 'lzwpack pack' first", dataDir)
		}
		return err
	}

	c, err := m.OpenCodec()
	if err != nil {
		return fmt.Errorf("resolving codec: %w", err)
	}
	st, err := diskstore.New(dataDir, c)
	if err != nil {
		return fmt.Errorf("opening data directory: %w", err)
	}
	defer st.Close()

	keys, err := st.Keys(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing blobs: %w", err)
	}

	perShard := make(map[int]int)
	var onDisk int64
	for _, key := range keys {
		id, _, err := shard.ParseKey(key)
		if err != nil {
			continue
		}
		perShard[id]++
		if info, err := os.Stat(st.Path(key)); err == nil {
			onDisk += info.Size()
		}
	}
	var fullest int
	for _, n := range perShard {
		fullest = max(fullest, n)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Data directory: %s\n", dataDir)
	fmt.Fprintf(w, "Source:         %s\n", m.Source)
	fmt.Fprintf(w, "Built:          %s\n", m.BuiltAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Codec:          %s\n", c.Name())
	if m.MaxWidth > 0 {
		fmt.Fprintf(w, "Max width:      %d bits\n", m.MaxWidth)
	}
	fmt.Fprintf(w, "Strategy:       %s\n", m.Strategy)
	fmt.Fprintf(w, "Shards:         %d used of %d (fullest holds %d)\n", len(perShard), m.TotalShards, fullest)
	fmt.Fprintf(w, "Files:          %d (%d on disk)\n", m.FileCount, len(keys))
	fmt.Fprintf(w, "Raw size:       %s\n", packer.FormatBytes(m.RawBytes))
	fmt.Fprintf(w, "Packed size:    %s (%s on disk)\n", packer.FormatBytes(m.PackedBytes), packer.FormatBytes(onDisk))
	fmt.Fprintf(w, "Ratio:          %.3f\n", m.Ratio())

	return nil
}
