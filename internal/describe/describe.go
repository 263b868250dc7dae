// Package describe computes the descriptive summaries reported for every
// variable, globally and per subgroup.
package describe

import (
	"math"
	"sort"

	"gounivar/domain/dataset"
	"gounivar/domain/stats"

	mfstats "github.com/montanaflynn/stats"
)

// z95 is the normal critical value behind the 95% interval. The interval
// ignores the t correction, so it is too narrow for small samples.
const z95 = 1.96

// Qualitative counts each observed category. Categories are ordered by
// descending count, ties by first appearance; missing values are skipped.
func Qualitative(values []dataset.Value) *stats.QualitativeSummary {
	index := make(map[dataset.Value]int)
	var categories []stats.CategoryCount
	total := 0
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		i, ok := index[v]
		if !ok {
			i = len(categories)
			index[v] = i
			categories = append(categories, stats.CategoryCount{Category: v})
		}
		categories[i].N++
		total++
	}

	sort.SliceStable(categories, func(i, j int) bool { return categories[i].N > categories[j].N })
	for i := range categories {
		categories[i].P = float64(categories[i].N) / float64(total)
	}
	return &stats.QualitativeSummary{Categories: categories, Total: total}
}

// Quantitative summarises a numeric sample. An empty sample yields NaN
// everywhere; a single value has an undefined (NaN) standard deviation.
func Quantitative(values []float64) *stats.QuantitativeSummary {
	n := len(values)
	if n == 0 {
		nan := math.NaN()
		return &stats.QuantitativeSummary{
			Mean: nan, Median: nan, Q25: nan, Q75: nan, Std: nan, StdMean: nan,
			CI95: [2]float64{nan, nan},
		}
	}

	mean, _ := mfstats.Mean(values)
	median, _ := mfstats.Median(values)
	std, _ := mfstats.StandardDeviationSample(values)
	if n == 1 {
		std = math.NaN()
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	stdMean := std / math.Sqrt(float64(n))
	return &stats.QuantitativeSummary{
		N:       n,
		Mean:    mean,
		Median:  median,
		Q25:     Quantile(sorted, 0.25),
		Q75:     Quantile(sorted, 0.75),
		Std:     std,
		StdMean: stdMean,
		CI95:    [2]float64{mean - z95*stdMean, mean + z95*stdMean},
	}
}

// Quantile interpolates linearly between the order statistics of a sorted
// sample at rank h = (n-1)p
func Quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	if lo+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}
