package runner

import (
	"sort"
)

// Metrics contains computed metrics from a codec result.
type Metrics struct {
	// Core metrics.
	Inputs      int
	RawBytes    int64
	PackedBytes int64
	Ratio       float64

	// Distribution metrics.
	MedianRatio float64
	P90Ratio    float64
	BestRatio   float64
	WorstRatio  float64
	Expanded    int // Inputs that grew.

	// Concentration of the bytes saved across inputs.
	SavingsConcentration float64 // Gini coefficient of bytes saved.
	TopInputPct          float64 // Percentage of savings from the top 10% of inputs.

	// Throughput in MB/s over the whole corpus.
	CompressMBps   float64
	DecompressMBps float64
}

// ComputeMetrics computes detailed metrics from a codec result.
func ComputeMetrics(result *CodecResult) *Metrics {
	m := &Metrics{
		Inputs:      len(result.Inputs),
		RawBytes:    result.RawBytes,
		PackedBytes: result.PackedBytes,
		Ratio:       result.Ratio(),
	}

	if len(result.Inputs) > 0 {
		sorted := result.Ratios()
		sort.Float64s(sorted)

		m.BestRatio = sorted[0]
		m.WorstRatio = sorted[len(sorted)-1]
		m.MedianRatio = percentile(sorted, 50)
		m.P90Ratio = percentile(sorted, 90)
		for _, r := range sorted {
			if r > 1 {
				m.Expanded++
			}
		}

		saved := make([]int64, 0, len(result.Inputs))
		var total int64
		for _, in := range result.Inputs {
			s := max(in.RawBytes-in.PackedBytes, 0)
			saved = append(saved, s)
			total += s
		}
		m.SavingsConcentration = computeGini(saved)
		m.TopInputPct = computeTopPct(saved, total, 0.1)
	}

	mb := float64(result.RawBytes) / (1 << 20)
	if s := result.CompressTime.Seconds(); s > 0 {
		m.CompressMBps = mb / s
	}
	if s := result.DecompressTime.Seconds(); s > 0 {
		m.DecompressMBps = mb / s
	}

	return m
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p / 100)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func computeGini(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]int64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	n := float64(len(sorted))
	var sum, cumulativeSum float64
	for i, v := range sorted {
		sum += float64(v)
		cumulativeSum += float64(i+1) * float64(v)
	}

	if sum == 0 {
		return 0
	}

	return (2*cumulativeSum)/(n*sum) - (n+1)/n
}

func computeTopPct(values []int64, total int64, topFraction float64) float64 {
	if total == 0 || len(values) == 0 {
		return 0
	}

	sorted := make([]int64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })

	topCount := max(int(float64(len(sorted))*topFraction), 1)

	var top int64
	for i := 0; i < topCount && i < len(sorted); i++ {
		top += sorted[i]
	}

	return float64(top) / float64(total) * 100
}

// MetricsComparison holds the differences between two codecs' metrics.
type MetricsComparison struct {
	Codec1 string
	Codec2 string

	RatioDiff      float64 // Positive means Codec1 compresses worse.
	RatioDiffPct   float64
	CompressSpeed  float64 // Codec1 compression throughput over Codec2's.
	DecompressSpd  float64 // Codec1 decompression throughput over Codec2's.
	ExpandedDiff   int
	PackedByteDiff int64
}

// Compare compares two metrics and returns the differences.
func Compare(m1, m2 *Metrics, name1, name2 string) *MetricsComparison {
	return &MetricsComparison{
		Codec1:         name1,
		Codec2:         name2,
		RatioDiff:      m1.Ratio - m2.Ratio,
		RatioDiffPct:   safeDiffPct(m1.Ratio, m2.Ratio),
		CompressSpeed:  safeRatio(m1.CompressMBps, m2.CompressMBps),
		DecompressSpd:  safeRatio(m1.DecompressMBps, m2.DecompressMBps),
		ExpandedDiff:   m1.Expanded - m2.Expanded,
		PackedByteDiff: m1.PackedBytes - m2.PackedBytes,
	}
}

func safeDiffPct(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return (a - b) / b * 100
}

func safeRatio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
