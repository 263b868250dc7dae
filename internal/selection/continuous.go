package selection

import (
	"gounivar/adapters/stats/inference"
	"gounivar/domain/dataset"
	"gounivar/domain/stats"
)

const (
	// largeSample is the group size from which the z-test applies
	largeSample = 30
	alpha       = 0.05
)

// Group is the numeric sample of one axis category
type Group struct {
	Category dataset.Value
	Values   []float64
}

// Options tunes the continuous selector
type Options struct {
	// AssumeNormal skips the empirical normality verdict
	AssumeNormal bool
}

// GroupsOf partitions the variable's complete cases by axis category, in
// first-appearance order
func GroupsOf(ds *dataset.Dataset, variable, axis string) ([]Group, error) {
	sub, err := ds.Subtable(variable, axis)
	if err != nil {
		return nil, err
	}
	values, err := sub.Floats(variable)
	if err != nil {
		return nil, err
	}
	categories, err := sub.Column(axis)
	if err != nil {
		return nil, err
	}

	index := make(map[dataset.Value]int)
	var groups []Group
	for i, category := range categories {
		g, ok := index[category]
		if !ok {
			g = len(groups)
			index[category] = g
			groups = append(groups, Group{Category: category})
		}
		groups[g].Values = append(groups[g].Values, values[i])
	}
	return groups, nil
}

// CheckAssumptions runs the normality test on every group and the variance
// homogeneity test across them. A NaN p-value never passes.
func CheckAssumptions(groups []Group, opts Options) *stats.Assumptions {
	a := &stats.Assumptions{AssumedNormal: opts.AssumeNormal, Normal: true}
	samples := make([][]float64, len(groups))
	for i, g := range groups {
		samples[i] = g.Values
		d, p := inference.KSNormal(g.Values)
		normal := p >= alpha
		a.Normality = append(a.Normality, stats.GroupNormality{
			Category:  g.Category,
			N:         len(g.Values),
			Statistic: d,
			PValue:    p,
			Normal:    normal,
		})
		a.Normal = a.Normal && normal
	}
	if opts.AssumeNormal {
		a.Normal = true
	}

	a.VarianceStatistic, a.VariancePValue = inference.Levene(samples)
	a.HomogeneousVariance = a.VariancePValue >= alpha
	return a
}

// SelectContinuous walks the decision tree and runs the chosen test.
// Assumptions are evaluated once and returned alongside the result.
func SelectContinuous(groups []Group, opts Options) (stats.TestResult, *stats.Assumptions) {
	a := CheckAssumptions(groups, opts)

	if len(groups) == 2 {
		x, y := groups[0].Values, groups[1].Values
		switch {
		case len(x) >= largeSample && len(y) >= largeSample:
			return inference.ZTest(x, y), a
		case a.Normal && a.HomogeneousVariance:
			return inference.StudentT(x, y), a
		case a.Normal:
			return inference.WelchT(x, y), a
		default:
			return inference.MannWhitney(x, y), a
		}
	}

	samples := make([][]float64, len(groups))
	for i, g := range groups {
		samples[i] = g.Values
	}
	if a.Normal && a.HomogeneousVariance {
		return inference.OneWayAnova(samples), a
	}
	return inference.KruskalWallis(samples), a
}
