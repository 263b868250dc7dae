package inference

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// exactKolmogorovMax is the largest sample evaluated with the exact
// finite-n distribution; larger samples use the asymptotic one
const exactKolmogorovMax = 140

// KSNormal runs a two-sided one-sample Kolmogorov-Smirnov test of values
// against the standard normal N(0, 1). The values are not standardised, so
// a sample far from zero or with a spread far from one is rejected. Samples
// of up to 140 values get the exact p-value; larger ones the asymptotic
// Kolmogorov distribution with Stephens' factor (√n + 0.12 + 0.11/√n).
// Empty input yields NaN.
func KSNormal(values []float64) (d, pValue float64) {
	n := len(values)
	if n == 0 {
		return math.NaN(), math.NaN()
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	for i, v := range sorted {
		cdf := dist.NormalCDF(v, 0, 1)
		above := float64(i+1)/float64(n) - cdf
		below := cdf - float64(i)/float64(n)
		d = math.Max(d, math.Max(above, below))
	}

	if n <= exactKolmogorovMax {
		return d, clamp01(1 - kolmogorovCDF(n, d))
	}
	root := math.Sqrt(float64(n))
	lambda := (root + 0.12 + 0.11/root) * d
	return d, dist.KolmogorovSurvival(lambda)
}

// kolmogorovCDF is P(D_n < d) for the two-sided statistic of n values,
// computed with the Marsaglia-Tsang-Wang matrix power
func kolmogorovCDF(n int, d float64) float64 {
	switch {
	case math.IsNaN(d):
		return math.NaN()
	case d <= 0:
		return 0
	case d >= 1:
		return 1
	}

	nd := float64(n) * d
	k := int(nd) + 1
	m := 2*k - 1
	h := float64(k) - nd

	t := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			if i-j+1 >= 0 {
				t.Set(i, j, 1)
			}
		}
	}
	for i := 0; i < m; i++ {
		t.Set(i, 0, t.At(i, 0)-math.Pow(h, float64(i+1)))
		t.Set(m-1, i, t.At(m-1, i)-math.Pow(h, float64(m-i)))
	}
	if 2*h-1 > 0 {
		t.Set(m-1, 0, t.At(m-1, 0)+math.Pow(2*h-1, float64(m)))
	}
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			if i-j+1 > 0 {
				t.Set(i, j, t.At(i, j)/math.Gamma(float64(i-j+2)))
			}
		}
	}

	q, logScale := matrixPower(t, n)
	s := q.At(k-1, k-1)
	if !(s > 0) {
		return 0
	}
	// n!/n^n
	lgamma, _ := math.Lgamma(float64(n + 1))
	return clamp01(math.Exp(math.Log(s) + logScale + lgamma - float64(n)*math.Log(float64(n))))
}

// matrixPower returns Q and c with a^n = Q·exp(c), rescaling after every
// product so entries stay in range
func matrixPower(a *mat.Dense, n int) (*mat.Dense, float64) {
	m, _ := a.Dims()
	result := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		result.Set(i, i, 1)
	}
	base := mat.DenseCopyOf(a)
	resultLog, baseLog := 0.0, 0.0

	for n > 0 {
		if n&1 == 1 {
			next := mat.NewDense(m, m, nil)
			next.Mul(result, base)
			result = next
			resultLog += baseLog + normalize(result)
		}
		n >>= 1
		if n > 0 {
			next := mat.NewDense(m, m, nil)
			next.Mul(base, base)
			base = next
			baseLog = 2*baseLog + normalize(base)
		}
	}
	return result, resultLog
}

// normalize divides a by its largest absolute entry and returns the log of
// that factor
func normalize(a *mat.Dense) float64 {
	largest := 0.0
	r, c := a.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			largest = math.Max(largest, math.Abs(a.At(i, j)))
		}
	}
	if !(largest > 0) || math.IsInf(largest, 0) {
		return 0
	}
	a.Scale(1/largest, a)
	return math.Log(largest)
}
