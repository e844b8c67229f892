// Package cachestrategy defines cache eviction strategy interfaces.
package cachestrategy

// Strategy defines the interface for cache eviction strategies.
type Strategy interface {
	Get(key string) ([]byte, bool)
	// Add stores value under key and reports whether an entry was evicted.
	Add(key string, value []byte) bool
	Remove(key string) bool
	Len() int
	// Bytes returns the total size of the cached values.
	Bytes() int64
}
