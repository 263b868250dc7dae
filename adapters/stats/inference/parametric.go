package inference

import (
	"math"

	"gounivar/domain/stats"
)

// ZTest compares two means with the normal approximation, using the pooled
// sample variance ((n1-1)s1² + (n2-1)s2²) / (n1+n2-2)
func ZTest(x, y []float64) *stats.ZTestResult {
	n1, m1, v1 := moments(x)
	n2, m2, v2 := moments(y)

	pooled := pooledVariance(n1, v1, n2, v2)
	z := (m1 - m2) / math.Sqrt(pooled*(1/float64(n1)+1/float64(n2)))

	return &stats.ZTestResult{Statistic: z, PValue: dist.NormalTwoSided(z)}
}

// StudentT is the two-sample t-test assuming equal variances
func StudentT(x, y []float64) *stats.TTestResult {
	n1, m1, v1 := moments(x)
	n2, m2, v2 := moments(y)

	pooled := pooledVariance(n1, v1, n2, v2)
	t := (m1 - m2) / math.Sqrt(pooled*(1/float64(n1)+1/float64(n2)))
	dof := float64(n1 + n2 - 2)

	return &stats.TTestResult{
		Statistic:        t,
		PValue:           dist.StudentTTwoSided(t, dof),
		DegreesOfFreedom: dof,
		EqualVariance:    true,
	}
}

// WelchT is the two-sample t-test without the equal-variance assumption,
// with Welch-Satterthwaite degrees of freedom
func WelchT(x, y []float64) *stats.TTestResult {
	n1, m1, v1 := moments(x)
	n2, m2, v2 := moments(y)

	a := v1 / float64(n1)
	b := v2 / float64(n2)
	t := (m1 - m2) / math.Sqrt(a+b)
	dof := (a + b) * (a + b) / (a*a/float64(n1-1) + b*b/float64(n2-1))

	return &stats.TTestResult{
		Statistic:        t,
		PValue:           dist.StudentTTwoSided(t, dof),
		DegreesOfFreedom: dof,
	}
}

func pooledVariance(n1 int, v1 float64, n2 int, v2 float64) float64 {
	return (float64(n1-1)*v1 + float64(n2-1)*v2) / float64(n1+n2-2)
}

// OneWayAnova runs the one-way analysis of variance F test across groups
func OneWayAnova(groups [][]float64) *stats.AnovaResult {
	k := len(groups)
	total, grand := 0, 0.0
	for _, g := range groups {
		for _, v := range g {
			grand += v
		}
		total += len(g)
	}
	grand /= float64(total)

	between, within := 0.0, 0.0
	for _, g := range groups {
		n, mean, _ := moments(g)
		between += float64(n) * (mean - grand) * (mean - grand)
		for _, v := range g {
			within += (v - mean) * (v - mean)
		}
	}

	dfBetween := k - 1
	dfWithin := total - k
	f := (between / float64(dfBetween)) / (within / float64(dfWithin))

	return &stats.AnovaResult{
		Statistic: f,
		PValue:    dist.FSurvival(f, dfBetween, dfWithin),
		DFBetween: dfBetween,
		DFWithin:  dfWithin,
	}
}

// Levene tests equality of variances: an ANOVA on the absolute deviations
// from each group's mean
func Levene(groups [][]float64) (statistic, pValue float64) {
	deviations := make([][]float64, len(groups))
	for i, g := range groups {
		_, mean, _ := moments(g)
		deviations[i] = make([]float64, len(g))
		for j, v := range g {
			deviations[i][j] = math.Abs(v - mean)
		}
	}
	anova := OneWayAnova(deviations)
	return anova.Statistic, anova.PValue
}
