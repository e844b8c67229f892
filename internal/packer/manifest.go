package packer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/discochess/lzwpack/internal/codec"
	"github.com/discochess/lzwpack/internal/codec/codecs"
	"github.com/discochess/lzwpack/internal/codec/lzwcodec"
	"github.com/discochess/lzwpack/internal/shard"
	"github.com/discochess/lzwpack/internal/shard/dirshard"
	"github.com/discochess/lzwpack/internal/shard/fnvshard"
)

// ManifestVersion is the layout version written by this package.
const ManifestVersion = 1

// Manifest contains metadata about a packed data directory.
type Manifest struct {
	Version     int       `json:"version"`
	TotalShards int       `json:"total_shards"`
	Strategy    string    `json:"strategy"`
	Codec       string    `json:"codec"`
	MaxWidth    uint      `json:"max_width,omitempty"` // LZW only
	FileCount   int64     `json:"file_count"`
	RawBytes    int64     `json:"raw_bytes"`
	PackedBytes int64     `json:"packed_bytes"`
	BuiltAt     time.Time `json:"built_at"`
	Source      string    `json:"source,omitempty"`
}

// ManifestFilename is the name of the manifest inside a data directory.
const ManifestFilename = "manifest.json"

// Ratio returns packed bytes over raw bytes, or 0 for an empty pack.
func (m *Manifest) Ratio() float64 {
	if m.RawBytes == 0 {
		return 0
	}
	return float64(m.PackedBytes) / float64(m.RawBytes)
}

// OpenCodec returns the codec the pack was written with.
func (m *Manifest) OpenCodec() (codec.Codec, error) {
	if m.Codec == "lzw" && m.MaxWidth != 0 {
		return lzwcodec.New(lzwcodec.WithMaxWidth(m.MaxWidth)), nil
	}
	return codecs.ByName(m.Codec)
}

// ShardStrategy returns the sharding strategy the pack was written with.
func (m *Manifest) ShardStrategy() (shard.Strategy, error) {
	return StrategyByName(m.Strategy)
}

// StrategyByName resolves a sharding strategy name as recorded in a
// manifest.
func StrategyByName(name string) (shard.Strategy, error) {
	switch name {
	case "fnv32", "":
		return fnvshard.New(), nil
	case "dir":
		return dirshard.New(), nil
	default:
		return nil, fmt.Errorf("unknown shard strategy: %s", name)
	}
}

// WriteManifest writes the manifest to the output directory.
func WriteManifest(dir string, m *Manifest) error {
	path := filepath.Join(dir, ManifestFilename)
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// ReadManifest reads the manifest from a data directory.
func ReadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if m.Version > ManifestVersion {
		return nil, fmt.Errorf("manifest version %d is newer than supported version %d", m.Version, ManifestVersion)
	}
	return &m, nil
}
