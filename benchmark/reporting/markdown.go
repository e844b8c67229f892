// Package reporting provides report generation for benchmark results.
package reporting

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/discochess/lzwpack/benchmark/analysis"
	"github.com/discochess/lzwpack/benchmark/runner"
	"github.com/discochess/lzwpack/internal/packer"
)

// MarkdownReport generates benchmark reports in Markdown format.
type MarkdownReport struct {
	w   io.Writer
	now func() time.Time
}

// NewMarkdownReport creates a new Markdown report writer.
func NewMarkdownReport(w io.Writer) *MarkdownReport {
	return &MarkdownReport{w: w, now: time.Now}
}

// WriteHeader writes the report header.
func (r *MarkdownReport) WriteHeader(title string) {
	fmt.Fprintf(r.w, "# %s\n\n", title)
	fmt.Fprintf(r.w, "Generated: %s\n\n", r.now().Format(time.RFC3339))
}

// WriteMethodology writes the methodology section.
func (r *MarkdownReport) WriteMethodology(corpus runner.Corpus, iterations int) {
	fmt.Fprintln(r.w, "## Methodology")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "- **Inputs:** %d\n", len(corpus))
	fmt.Fprintf(r.w, "- **Corpus size:** %s\n", packer.FormatBytes(corpus.Bytes()))
	fmt.Fprintf(r.w, "- **Iterations per input:** %d\n", iterations)
	fmt.Fprintln(r.w, "- **Metric:** Compressed size over raw size per input (lower is better)")
	fmt.Fprintln(r.w, "- **Statistical tests:** Wilcoxon signed-rank (paired inputs), Mann-Whitney U, Cohen's d effect size")
	fmt.Fprintln(r.w)
}

// WriteSummaryTable writes the summary table, one row per codec in name order.
func (r *MarkdownReport) WriteSummaryTable(results map[string]*runner.CodecResult) {
	fmt.Fprintln(r.w, "## Summary")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Codec | Ratio | Median | P90 | Expanded | Compress MB/s | Decompress MB/s |")
	fmt.Fprintln(r.w, "|-------|-------|--------|-----|----------|---------------|-----------------|")

	for _, name := range sortedNames(results) {
		m := runner.ComputeMetrics(results[name])
		fmt.Fprintf(r.w, "| %s | %.3f | %.3f | %.3f | %d | %.1f | %.1f |\n",
			name, m.Ratio, m.MedianRatio, m.P90Ratio, m.Expanded,
			m.CompressMBps, m.DecompressMBps)
	}
	fmt.Fprintln(r.w)
}

func sortedNames(results map[string]*runner.CodecResult) []string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteComparison writes a detailed comparison section.
func (r *MarkdownReport) WriteComparison(comp *analysis.CodecComparison) {
	fmt.Fprintf(r.w, "## %s vs %s\n\n", comp.Codec1, comp.Codec2)

	fmt.Fprintln(r.w, "### Descriptive Statistics")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Metric | "+comp.Codec1+" | "+comp.Codec2+" |")
	fmt.Fprintln(r.w, "|--------|"+strings.Repeat("-", len(comp.Codec1)+2)+"|"+strings.Repeat("-", len(comp.Codec2)+2)+"|")
	fmt.Fprintf(r.w, "| Mean | %.3f | %.3f |\n", comp.Stats1.Mean, comp.Stats2.Mean)
	fmt.Fprintf(r.w, "| Median | %.3f | %.3f |\n", comp.Stats1.Median, comp.Stats2.Median)
	fmt.Fprintf(r.w, "| Std Dev | %.3f | %.3f |\n", comp.Stats1.StdDev, comp.Stats2.StdDev)
	fmt.Fprintf(r.w, "| Min | %.3f | %.3f |\n", comp.Stats1.Min, comp.Stats2.Min)
	fmt.Fprintf(r.w, "| Max | %.3f | %.3f |\n", comp.Stats1.Max, comp.Stats2.Max)
	fmt.Fprintln(r.w)

	fmt.Fprintln(r.w, "### Statistical Analysis")
	fmt.Fprintln(r.w)
	if comp.Wilcoxon != nil {
		fmt.Fprintf(r.w, "- **Wilcoxon signed-rank (paired):** W=%.1f over %d inputs (z=%.2f, p=%.4f)\n",
			comp.Wilcoxon.W, comp.Wilcoxon.N, comp.Wilcoxon.Z, comp.Wilcoxon.PValue)
	}
	fmt.Fprintf(r.w, "- **Mann-Whitney U:** %.2f (z=%.2f, p=%.4f)\n",
		comp.MannWhitney.U, comp.MannWhitney.Z, comp.MannWhitney.PValue)
	fmt.Fprintf(r.w, "- **Effect size (Cohen's d):** %.2f (%s)\n",
		comp.EffectSize.CohensD, comp.EffectSize.Interpretation)
	fmt.Fprintf(r.w, "- **%.0f%% CI for mean difference:** [%.3f, %.3f]\n",
		comp.BootstrapCI.Confidence*100, comp.BootstrapCI.LowerBound, comp.BootstrapCI.UpperBound)
	fmt.Fprintln(r.w)

	fmt.Fprintln(r.w, "### Conclusion")
	fmt.Fprintln(r.w)
	if comp.WinnerConfident {
		fmt.Fprintf(r.w, "**%s** compresses significantly better than %s ",
			comp.Winner, otherCodec(comp.Winner, comp.Codec1, comp.Codec2))
		fmt.Fprintf(r.w, "(p < 0.05, effect size: %s).\n", comp.EffectSize.Interpretation)
	} else {
		fmt.Fprintln(r.w, "No statistically significant difference detected between codecs (p >= 0.05).")
	}
	fmt.Fprintln(r.w)
}

func otherCodec(winner, c1, c2 string) string {
	if winner == c1 {
		return c2
	}
	return c1
}

// WriteDistributionChart writes an ASCII chart of the per-input ratios.
func (r *MarkdownReport) WriteDistributionChart(name string, ratios []float64) {
	fmt.Fprintf(r.w, "### %s Ratio Distribution\n\n", name)
	fmt.Fprintln(r.w, "```")

	lo, step, hist := makeHistogram(ratios, 10)
	maxCount := 0
	for _, count := range hist {
		maxCount = max(maxCount, count)
	}

	width := 40
	for i, count := range hist {
		barLen := 0
		if maxCount > 0 {
			barLen = count * width / maxCount
		}
		bar := strings.Repeat("█", barLen)
		fmt.Fprintf(r.w, "%.2f-%.2f │ %s %d\n", lo+float64(i)*step, lo+float64(i+1)*step, bar, count)
	}

	fmt.Fprintln(r.w, "```")
	fmt.Fprintln(r.w)
}

// makeHistogram buckets data into equal-width buckets from its minimum.
func makeHistogram(data []float64, buckets int) (lo, step float64, hist []int) {
	hist = make([]int, buckets)
	if len(data) == 0 {
		return 0, 0, hist
	}

	lo, hi := data[0], data[0]
	for _, v := range data {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}

	step = (hi - lo) / float64(buckets)
	for _, v := range data {
		bucket := int((v - lo) / step)
		if bucket >= buckets {
			bucket = buckets - 1
		}
		hist[bucket]++
	}

	return lo, step, hist
}

// WriteFooter writes the report footer.
func (r *MarkdownReport) WriteFooter() {
	fmt.Fprintln(r.w, "---")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "*Report generated by lzwpack-bench*")
}
