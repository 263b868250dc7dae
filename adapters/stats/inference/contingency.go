package inference

import (
	"math"

	"gounivar/domain/stats"
)

// ChiSquare runs Pearson's test of independence on the table. When yates is
// set the continuity correction is applied, but only to tables with one
// degree of freedom. The result is returned unvalidated: callers decide
// whether the expected counts make it trustworthy.
func ChiSquare(table *stats.ContingencyTable, yates bool) *stats.ChiSquareResult {
	expected := table.Expected()
	dof := table.DegreesOfFreedom()
	result := &stats.ChiSquareResult{
		DegreesOfFreedom: dof,
		Expected:         expected,
		Observed:         table,
		YatesCorrection:  yates,
	}

	if dof == 0 {
		result.Statistic = 0
		result.PValue = 1
		return result
	}

	chi := 0.0
	for i, row := range table.Counts {
		for j, count := range row {
			observed := float64(count)
			e := expected[i][j]
			if yates && dof == 1 {
				diff := e - observed
				observed += math.Copysign(math.Min(0.5, math.Abs(diff)), diff)
			}
			chi += (observed - e) * (observed - e) / e
		}
	}

	result.Statistic = chi
	result.PValue = dist.ChiSquareSurvival(chi, dof)
	return result
}

// MinExpected returns the smallest expected count of the table
func MinExpected(expected [][]float64) float64 {
	lowest := math.Inf(1)
	for _, row := range expected {
		for _, e := range row {
			lowest = math.Min(lowest, e)
		}
	}
	return lowest
}

// FisherExact runs Fisher's exact test on a 2x2 table. The statistic is the
// sample odds ratio ad/bc (+Inf when bc = 0); the two-sided p-value sums the
// hypergeometric probabilities of every table no more likely than the
// observed one. Tables of any other shape yield an invalid result.
func FisherExact(table *stats.ContingencyTable) *stats.FisherResult {
	if r, c := table.Shape(); r != 2 || c != 2 {
		return &stats.FisherResult{Observed: table, OddsRatio: math.NaN(), PValue: math.NaN()}
	}

	a, b := table.Counts[0][0], table.Counts[0][1]
	c, d := table.Counts[1][0], table.Counts[1][1]
	result := &stats.FisherResult{Observed: table, IsValid: true}

	if b > 0 && c > 0 {
		result.OddsRatio = float64(a*d) / float64(b*c)
	} else {
		result.OddsRatio = math.Inf(1)
	}

	total := a + b + c + d
	row1 := a + b
	col1 := a + c
	if row1 == 0 || col1 == 0 || row1 == total || col1 == total {
		result.OddsRatio = math.NaN()
		result.PValue = 1
		return result
	}

	lo := max(0, col1-(total-row1))
	hi := min(row1, col1)
	observed := hypergeomLogPMF(a, total, row1, col1)

	p := 0.0
	for x := lo; x <= hi; x++ {
		lp := hypergeomLogPMF(x, total, row1, col1)
		if lp <= observed+math.Log1p(1e-7) {
			p += math.Exp(lp)
		}
	}
	result.PValue = math.Min(1, p)
	return result
}

// hypergeomLogPMF is log P(X = x) drawing `draws` items from `total` of
// which `successes` are marked
func hypergeomLogPMF(x, total, successes, draws int) float64 {
	return logChoose(successes, x) + logChoose(total-successes, draws-x) - logChoose(total, draws)
}

func logChoose(n, k int) float64 {
	a, _ := math.Lgamma(float64(n + 1))
	b, _ := math.Lgamma(float64(k + 1))
	c, _ := math.Lgamma(float64(n - k + 1))
	return a - b - c
}
