package analysis

import (
	"fmt"
	"sort"

	"github.com/discochess/lzwpack/benchmark/runner"
)

// CodecComparison contains a full statistical comparison of two codecs'
// per-input compression ratios.
type CodecComparison struct {
	Codec1          string
	Codec2          string
	Stats1          *DescriptiveStats
	Stats2          *DescriptiveStats
	MannWhitney     *MannWhitneyResult
	Wilcoxon        *WilcoxonResult // Nil unless both codecs ran the same inputs.
	EffectSize      *EffectSize
	BootstrapCI     *BootstrapResult
	Winner          string // Name of the codec with the lower mean ratio, or "tie".
	WinnerConfident bool   // True if statistically significant.
}

// CompareCodecs performs a full statistical comparison between two codecs.
func CompareCodecs(
	result1, result2 *runner.CodecResult,
	bootstrapIterations int,
	confidence float64,
) *CodecComparison {
	sample1 := result1.Ratios()
	sample2 := result2.Ratios()

	mw := MannWhitneyU(sample1, sample2)
	significant := mw.Significant
	var wx *WilcoxonResult
	if samePairs(result1, result2) {
		wx = WilcoxonSignedRank(sample1, sample2)
		significant = wx.Significant
	}
	es := ComputeEffectSize(sample1, sample2)
	bs := BootstrapConfidenceInterval(sample1, sample2, bootstrapIterations, confidence)

	stats1 := Describe(sample1)
	stats2 := Describe(sample2)

	var winner string
	var confident bool

	if stats1.Mean < stats2.Mean {
		winner = result1.CodecName
		confident = significant
	} else if stats2.Mean < stats1.Mean {
		winner = result2.CodecName
		confident = significant
	} else {
		winner = "tie"
		confident = false
	}

	return &CodecComparison{
		Codec1:          result1.CodecName,
		Codec2:          result2.CodecName,
		Stats1:          stats1,
		Stats2:          stats2,
		MannWhitney:     mw,
		Wilcoxon:        wx,
		EffectSize:      es,
		BootstrapCI:     bs,
		Winner:          winner,
		WinnerConfident: confident,
	}
}

// samePairs reports whether both results hold the same inputs in the
// same order.
func samePairs(r1, r2 *runner.CodecResult) bool {
	if len(r1.Inputs) != len(r2.Inputs) {
		return false
	}
	for i := range r1.Inputs {
		if r1.Inputs[i].Name != r2.Inputs[i].Name {
			return false
		}
	}
	return true
}

// PValue returns the p-value of the test the winner was judged by: the
// paired test when available.
func (c *CodecComparison) PValue() float64 {
	if c.Wilcoxon != nil {
		return c.Wilcoxon.PValue
	}
	return c.MannWhitney.PValue
}

// Summary returns a human-readable summary of the comparison.
func (c *CodecComparison) Summary() string {
	sig := "not statistically significant"
	if c.WinnerConfident {
		sig = fmt.Sprintf("statistically significant (p=%.4f)", c.PValue())
	}

	return fmt.Sprintf(
		"%s vs %s:\n"+
			"  %s: mean=%.3f, median=%.3f, std=%.3f\n"+
			"  %s: mean=%.3f, median=%.3f, std=%.3f\n"+
			"  Difference: %.3f ratio (%.1f%%)\n"+
			"  Effect size: %.2f (%s)\n"+
			"  Result: %s, %s",
		c.Codec1, c.Codec2,
		c.Codec1, c.Stats1.Mean, c.Stats1.Median, c.Stats1.StdDev,
		c.Codec2, c.Stats2.Mean, c.Stats2.Median, c.Stats2.StdDev,
		c.Stats1.Mean-c.Stats2.Mean,
		safePctDiff(c.Stats1.Mean, c.Stats2.Mean),
		c.EffectSize.CohensD, c.EffectSize.Interpretation,
		c.Winner, sig,
	)
}

func safePctDiff(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return (a - b) / b * 100
}

// MultiCodecComparison compares several codecs against a baseline.
type MultiCodecComparison struct {
	Baseline    string
	Comparisons []*CodecComparison
}

// CompareAll compares every codec against the baseline, in name order.
// It returns nil if the baseline has no result.
func CompareAll(
	results map[string]*runner.CodecResult,
	baseline string,
	bootstrapIterations int,
	confidence float64,
) *MultiCodecComparison {
	baseResult, ok := results[baseline]
	if !ok {
		return nil
	}

	names := make([]string, 0, len(results))
	for name := range results {
		if name != baseline {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	multi := &MultiCodecComparison{
		Baseline: baseline,
	}
	for _, name := range names {
		comp := CompareCodecs(baseResult, results[name], bootstrapIterations, confidence)
		multi.Comparisons = append(multi.Comparisons, comp)
	}

	return multi
}
