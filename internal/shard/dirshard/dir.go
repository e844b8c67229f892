// Package dirshard implements directory-based sharding of blob names.
//
// Names in the same directory land in the same shard, which keeps related
// blobs together for listing and cache locality at the cost of uneven shard
// sizes.
package dirshard

import (
	"path"

	"github.com/discochess/lzwpack/internal/shard"
	"github.com/discochess/lzwpack/internal/shard/fnvshard"
)

// Strategy implements directory-based sharding.
type Strategy struct{}

// Ensure Strategy implements shard.Strategy.
var _ shard.Strategy = (*Strategy)(nil)

// New creates a new directory-based sharding strategy.
func New() *Strategy {
	return &Strategy{}
}

// Name returns the strategy name.
func (s *Strategy) Name() string {
	return "dir"
}

// ShardID hashes the directory part of name. Top-level names share the
// shard of the empty directory.
func (s *Strategy) ShardID(name string, totalShards int) int {
	dir := path.Dir(name)
	if dir == "." {
		dir = ""
	}
	return int(fnvshard.Sum(dir) % uint32(totalShards))
}
