// Package inference implements the significance tests the selectors choose
// from. P-values come from gonum distributions; degenerate inputs (empty
// groups, zero variance) propagate NaN instead of failing.
package inference

import (
	"math"

	mfstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Distributions gives upper-tail probabilities for the reference distributions
type Distributions struct{}

// NewDistributions creates a new distributions utility
func NewDistributions() *Distributions {
	return &Distributions{}
}

var dist = NewDistributions()

// ChiSquareSurvival is P(X >= x) for X ~ χ²(dof)
func (d *Distributions) ChiSquareSurvival(x float64, dof int) float64 {
	if math.IsNaN(x) || dof <= 0 {
		return math.NaN()
	}
	if math.IsInf(x, 1) {
		return 0
	}
	return distuv.ChiSquared{K: float64(dof)}.Survival(x)
}

// FSurvival is P(X >= x) for X ~ F(df1, df2)
func (d *Distributions) FSurvival(x float64, df1, df2 int) float64 {
	if math.IsNaN(x) || df1 <= 0 || df2 <= 0 {
		return math.NaN()
	}
	if math.IsInf(x, 1) {
		return 0
	}
	return distuv.F{D1: float64(df1), D2: float64(df2)}.Survival(x)
}

// StudentTTwoSided is the two-sided p-value of t under Student's t(dof)
func (d *Distributions) StudentTTwoSided(t, dof float64) float64 {
	if math.IsNaN(t) || math.IsNaN(dof) || dof <= 0 {
		return math.NaN()
	}
	if math.IsInf(t, 0) {
		return 0
	}
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}
	return 2 * tDist.Survival(math.Abs(t))
}

// NormalTwoSided is the two-sided p-value of z under the standard normal
func (d *Distributions) NormalTwoSided(z float64) float64 {
	if math.IsNaN(z) {
		return math.NaN()
	}
	return 2 * distuv.UnitNormal.Survival(math.Abs(z))
}

// NormalSurvival is the upper tail P(Z >= z) of the standard normal
func (d *Distributions) NormalSurvival(z float64) float64 {
	if math.IsNaN(z) {
		return math.NaN()
	}
	return distuv.UnitNormal.Survival(z)
}

// NormalCDF computes the cumulative distribution function of N(mu, sigma)
func (d *Distributions) NormalCDF(x, mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma}.CDF(x)
}

// KolmogorovSurvival is P(K >= lambda) for the limiting Kolmogorov distribution
func (d *Distributions) KolmogorovSurvival(lambda float64) float64 {
	switch {
	case math.IsNaN(lambda):
		return math.NaN()
	case lambda <= 0:
		return 1
	case lambda < 1.18:
		// theta-function form of the CDF converges fast for small lambda
		y := math.Exp(-math.Pi * math.Pi / (8 * lambda * lambda))
		sum := 0.0
		for k := 1; k <= 50; k++ {
			odd := float64(2*k - 1)
			term := math.Pow(y, odd*odd)
			sum += term
			if term < 1e-17 {
				break
			}
		}
		return clamp01(1 - math.Sqrt(2*math.Pi)/lambda*sum)
	default:
		x := math.Exp(-2 * lambda * lambda)
		sum, sign := 0.0, 1.0
		for k := 1; k <= 100; k++ {
			term := math.Pow(x, float64(k*k))
			sum += sign * term
			if term < 1e-17 {
				break
			}
			sign = -sign
		}
		return clamp01(2 * sum)
	}
}

func clamp01(p float64) float64 {
	return math.Max(0, math.Min(1, p))
}

// moments returns size, mean and sample variance (n-1 denominator).
// Empty input yields NaN moments.
func moments(values []float64) (int, float64, float64) {
	mean, _ := mfstats.Mean(values)
	variance, _ := mfstats.SampleVariance(values)
	return len(values), mean, variance
}
