// Package analysis provides statistical analysis for benchmark results.
//
// Samples are per-input compression ratios. Ratios of small inputs tie
// often (every stored-as-is input has ratio 1 under some codecs), so the
// rank tests apply the tie correction to their variance.
package analysis

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// significanceLevel is the two-tailed p-value below which a difference is
// reported as significant.
const significanceLevel = 0.05

// MannWhitneyResult contains the result of a Mann-Whitney U test.
type MannWhitneyResult struct {
	U           float64 // U statistic.
	Z           float64 // Z score (normal approximation).
	PValue      float64 // Two-tailed p-value.
	Significant bool    // True if p < 0.05.
}

// MannWhitneyU performs the Mann-Whitney U test on two independent
// samples.
func MannWhitneyU(sample1, sample2 []float64) *MannWhitneyResult {
	if len(sample1) == 0 || len(sample2) == 0 {
		return &MannWhitneyResult{}
	}
	n1 := float64(len(sample1))
	n2 := float64(len(sample2))
	n := n1 + n2

	combined := make([]float64, 0, len(sample1)+len(sample2))
	combined = append(combined, sample1...)
	combined = append(combined, sample2...)
	ranks, ties := midRanks(combined)

	var r1 float64
	for _, r := range ranks[:len(sample1)] {
		r1 += r
	}

	u1 := r1 - n1*(n1+1)/2
	u := math.Min(u1, n1*n2-u1)

	mu := n1 * n2 / 2
	variance := n1 * n2 / 12 * ((n + 1) - ties/(n*(n-1)))
	z := zScore(u, mu, variance)
	p := twoTailed(z)

	return &MannWhitneyResult{
		U:           u,
		Z:           z,
		PValue:      p,
		Significant: p < significanceLevel,
	}
}

// WilcoxonResult contains the result of a Wilcoxon signed-rank test.
type WilcoxonResult struct {
	W           float64 // Smaller of the positive and negative rank sums.
	N           int     // Pairs with a non-zero difference.
	Z           float64 // Z score (normal approximation).
	PValue      float64 // Two-tailed p-value.
	Significant bool    // True if p < 0.05.
}

// WilcoxonSignedRank performs the Wilcoxon signed-rank test on paired
// samples, such as two codecs' ratios on the same inputs. Pairs beyond the
// shorter sample and pairs with equal values are ignored.
func WilcoxonSignedRank(sample1, sample2 []float64) *WilcoxonResult {
	n := min(len(sample1), len(sample2))
	diffs := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if d := sample1[i] - sample2[i]; d != 0 {
			diffs = append(diffs, d)
		}
	}
	if len(diffs) == 0 {
		return &WilcoxonResult{PValue: 1}
	}

	abs := make([]float64, len(diffs))
	for i, d := range diffs {
		abs[i] = math.Abs(d)
	}
	ranks, ties := midRanks(abs)

	var wPlus, wMinus float64
	for i, d := range diffs {
		if d > 0 {
			wPlus += ranks[i]
		} else {
			wMinus += ranks[i]
		}
	}

	nr := float64(len(diffs))
	w := math.Min(wPlus, wMinus)
	mu := nr * (nr + 1) / 4
	variance := nr*(nr+1)*(2*nr+1)/24 - ties/48
	z := zScore(w, mu, variance)
	p := twoTailed(z)

	return &WilcoxonResult{
		W:           w,
		N:           len(diffs),
		Z:           z,
		PValue:      p,
		Significant: p < significanceLevel,
	}
}

// midRanks returns the 1-based rank of each value, tied values sharing
// the mean of the ranks they span, and the tie term sum(t^3 - t) over
// every group of t tied values.
func midRanks(values []float64) (ranks []float64, ties float64) {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	ranks = make([]float64, len(values))
	for i := 0; i < len(order); {
		j := i
		for j < len(order) && values[order[j]] == values[order[i]] {
			j++
		}
		mid := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = mid
		}
		if t := float64(j - i); t > 1 {
			ties += t*t*t - t
		}
		i = j
	}
	return ranks, ties
}

func zScore(x, mu, variance float64) float64 {
	if variance <= 0 {
		return 0
	}
	return (x - mu) / math.Sqrt(variance)
}

// twoTailed returns the two-tailed p-value of z under the standard normal.
func twoTailed(z float64) float64 {
	return 2 * distuv.UnitNormal.CDF(-math.Abs(z))
}

// EffectSize contains effect size metrics.
type EffectSize struct {
	CohensD        float64 // Cohen's d: (mean1 - mean2) / pooled_std.
	Interpretation string  // "negligible", "small", "medium", "large".
}

// ComputeEffectSize computes Cohen's d effect size.
func ComputeEffectSize(sample1, sample2 []float64) *EffectSize {
	if len(sample1) == 0 || len(sample2) == 0 {
		return &EffectSize{Interpretation: "undefined"}
	}

	mean1, var1 := stat.MeanVariance(sample1, nil)
	mean2, var2 := stat.MeanVariance(sample2, nil)

	var d float64
	if dof := float64(len(sample1) + len(sample2) - 2); dof > 0 {
		pooled := ((float64(len(sample1))-1)*nanZero(var1) + (float64(len(sample2))-1)*nanZero(var2)) / dof
		if pooled > 0 {
			d = (mean1 - mean2) / math.Sqrt(pooled)
		}
	}

	return &EffectSize{
		CohensD:        d,
		Interpretation: interpretCohensD(math.Abs(d)),
	}
}

// nanZero maps the NaN variance of a single-value sample to zero.
func nanZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func interpretCohensD(d float64) string {
	switch {
	case d < 0.2:
		return "negligible"
	case d < 0.5:
		return "small"
	case d < 0.8:
		return "medium"
	default:
		return "large"
	}
}

// BootstrapResult is a bootstrap confidence interval for the mean difference.
type BootstrapResult struct {
	MeanDiff   float64
	LowerBound float64
	UpperBound float64
	Confidence float64 // e.g., 0.95 for 95% CI.
}

// bootstrapSeed keeps confidence intervals reproducible between runs.
const bootstrapSeed = 1

// BootstrapConfidenceInterval computes a percentile bootstrap confidence
// interval for mean(sample1) - mean(sample2).
func BootstrapConfidenceInterval(sample1, sample2 []float64, iterations int, confidence float64) *BootstrapResult {
	if len(sample1) == 0 || len(sample2) == 0 {
		return &BootstrapResult{Confidence: confidence}
	}
	iterations = max(iterations, 1)

	rng := rand.New(rand.NewSource(bootstrapSeed))
	buf1 := make([]float64, len(sample1))
	buf2 := make([]float64, len(sample2))
	diffs := make([]float64, iterations)
	for i := range diffs {
		resample(rng, sample1, buf1)
		resample(rng, sample2, buf2)
		diffs[i] = stat.Mean(buf1, nil) - stat.Mean(buf2, nil)
	}
	sort.Float64s(diffs)

	alpha := 1 - confidence
	return &BootstrapResult{
		MeanDiff:   stat.Mean(sample1, nil) - stat.Mean(sample2, nil),
		LowerBound: stat.Quantile(alpha/2, stat.Empirical, diffs, nil),
		UpperBound: stat.Quantile(1-alpha/2, stat.Empirical, diffs, nil),
		Confidence: confidence,
	}
}

// resample fills dst by drawing from sample with replacement.
func resample(rng *rand.Rand, sample, dst []float64) {
	for i := range dst {
		dst[i] = sample[rng.Intn(len(sample))]
	}
}

// DescriptiveStats contains basic descriptive statistics.
type DescriptiveStats struct {
	N      int
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
	P25    float64
	P75    float64
}

// Describe computes descriptive statistics for a sample.
func Describe(sample []float64) *DescriptiveStats {
	if len(sample) == 0 {
		return &DescriptiveStats{}
	}

	sorted := make([]float64, len(sample))
	copy(sorted, sample)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(sample, nil)
	return &DescriptiveStats{
		N:      len(sample),
		Mean:   mean,
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		StdDev: std,
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		P25:    stat.Quantile(0.25, stat.Empirical, sorted, nil),
		P75:    stat.Quantile(0.75, stat.Empirical, sorted, nil),
	}
}
