// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Client metrics.
	MetricPuts      = "lzwpack_puts_total"
	MetricGets      = "lzwpack_gets_total"
	MetricMisses    = "lzwpack_misses_total"
	MetricBytesIn   = "lzwpack_bytes_in_total"
	MetricBytesOut  = "lzwpack_bytes_out_total"
	MetricBlobRatio = "lzwpack_blob_ratio"

	// LZW stream metrics.
	MetricSessions  = "lzwpack_lzw_sessions_total"
	MetricCodes     = "lzwpack_lzw_codes_total"
	MetricCodeWidth = "lzwpack_lzw_code_width_bits"
	MetricDictSize  = "lzwpack_lzw_dictionary_size"

	// Cache metrics.
	MetricCacheHits   = "lzwpack_cache_hits_total"
	MetricCacheMisses = "lzwpack_cache_misses_total"
	MetricCacheSize   = "lzwpack_cache_size"

	// Packer metrics.
	MetricPackedFiles = "lzwpack_packed_files_total"
	MetricRawBytes    = "lzwpack_packed_raw_bytes_total"
	MetricPackedBytes = "lzwpack_packed_bytes_total"
)

var help = map[string]string{
	MetricPuts:        "Blobs written through the client.",
	MetricGets:        "Blob reads through the client.",
	MetricMisses:      "Blob reads that found nothing.",
	MetricBytesIn:     "Uncompressed bytes written through the client.",
	MetricBytesOut:    "Uncompressed bytes read through the client.",
	MetricBlobRatio:   "Compressed to uncompressed size ratio per blob.",
	MetricSessions:    "LZW sessions ended by a full dictionary or end of stream.",
	MetricCodes:       "LZW codes written or read.",
	MetricCodeWidth:   "Code width in bits at the end of each LZW session.",
	MetricDictSize:    "Dictionary entries learned in the last LZW session.",
	MetricCacheHits:   "Blob cache hits.",
	MetricCacheMisses: "Blob cache misses.",
	MetricCacheSize:   "Blobs held in the cache.",
	MetricPackedFiles: "Files written by the packer.",
	MetricRawBytes:    "Uncompressed bytes consumed by the packer.",
	MetricPackedBytes: "Compressed bytes written by the packer.",
}

var buckets = map[string][]float64{
	MetricBlobRatio: {0.05, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.8, 1, 1.25},
	MetricCodeWidth: {9, 10, 11, 12, 13, 14, 15, 16},
}

// Describe returns the help text of a metric, or its name when none is
// registered.
func Describe(name string) string {
	if h, ok := help[name]; ok {
		return h
	}
	return name
}

// Buckets returns the histogram buckets of a metric, or nil for the
// collector's default.
func Buckets(name string) []float64 {
	return buckets[name]
}

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
