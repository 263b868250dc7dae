// Package testkit builds deterministic datasets for tests, demos and the
// generate command.
package testkit

import (
	"fmt"

	"gounivar/domain/dataset"

	"gonum.org/v1/gonum/stat/distuv"
)

// NormalQuantiles returns n evenly spaced quantiles of N(mean, sd): a
// sample whose empirical CDF stays within 1/2n of the distribution's
func NormalQuantiles(mean, sd float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = mean + sd*distuv.UnitNormal.Quantile((float64(i)+0.5)/float64(n))
	}
	return out
}

// Skewed returns n-1 zeros followed by one large value
func Skewed(n int) []float64 {
	out := make([]float64, n)
	if n > 0 {
		out[n-1] = 100
	}
	return out
}

// BalancedBinary returns a dataset of rows rows with a binary axis x
// (first half "A", second half "B") and a binary outcome y alternating 0 and
// 1 within each half
func BalancedBinary(rows int) *dataset.Dataset {
	x := make([]interface{}, rows)
	y := make([]interface{}, rows)
	for i := 0; i < rows; i++ {
		x[i] = "A"
		if i >= rows/2 {
			x[i] = "B"
		}
		y[i] = i % 2
	}
	return mustDataset(dataset.NewColumn("x", x...), dataset.NewColumn("y", y...))
}

// Groups builds a two-column dataset (value, group) from named samples,
// keeping the order of the labels given
func Groups(labels []string, samples ...[]float64) *dataset.Dataset {
	var values, groups []interface{}
	for i, sample := range samples {
		for _, v := range sample {
			values = append(values, v)
			groups = append(groups, labels[i])
		}
	}
	return mustDataset(dataset.NewColumn("value", values...), dataset.NewColumn("group", groups...))
}

func mustDataset(columns ...dataset.Column) *dataset.Dataset {
	ds, err := dataset.New(columns...)
	if err != nil {
		panic(fmt.Sprintf("testkit: %v", err))
	}
	return ds
}
