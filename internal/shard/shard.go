// Package shard defines the sharding strategy interface for distributing
// blobs across shard directories.
package shard

import (
	"fmt"
	"strconv"
	"strings"
)

// Strategy defines a sharding algorithm that maps blob names to shard IDs.
type Strategy interface {
	// Name returns a human-readable name for this strategy.
	Name() string

	// ShardID computes the shard ID for a blob name.
	// The returned value is in the range [0, totalShards).
	ShardID(name string, totalShards int) int
}

// Key returns the storage key of a blob: its shard directory followed by
// its name.
func Key(shardID int, name string) string {
	return fmt.Sprintf("%05d/%s", shardID, name)
}

// ParseKey splits a storage key produced by Key.
func ParseKey(key string) (shardID int, name string, err error) {
	dir, name, ok := strings.Cut(key, "/")
	if !ok || name == "" {
		return 0, "", fmt.Errorf("shard: malformed key %q", key)
	}
	shardID, err = strconv.Atoi(dir)
	if err != nil || shardID < 0 {
		return 0, "", fmt.Errorf("shard: malformed key %q", key)
	}
	return shardID, name, nil
}
