// Package fnvshard implements FNV-1a hash-based sharding of blob names.
//
// This provides uniform distribution across shards but no locality benefits.
package fnvshard

import (
	"hash/fnv"

	"github.com/discochess/lzwpack/internal/shard"
)

// Strategy implements FNV-1a hash-based sharding.
type Strategy struct{}

// Ensure Strategy implements shard.Strategy.
var _ shard.Strategy = (*Strategy)(nil)

// New creates a new FNV-based sharding strategy.
func New() *Strategy {
	return &Strategy{}
}

// Name returns the strategy name.
func (s *Strategy) Name() string {
	return "fnv32"
}

// ShardID computes a shard ID from the FNV-1a hash of the full name.
func (s *Strategy) ShardID(name string, totalShards int) int {
	return int(Sum(name) % uint32(totalShards))
}

// Sum returns the FNV-1a 32-bit hash of s.
func Sum(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}
