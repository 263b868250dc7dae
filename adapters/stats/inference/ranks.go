package inference

import (
	"math"
	"sort"

	"gounivar/domain/stats"
)

// rank assigns mid-ranks (1-based) to values and returns Σ(t³ - t) over
// tie groups
func rank(values []float64) ([]float64, float64) {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

	ranks := make([]float64, len(values))
	ties := 0.0
	for i := 0; i < len(order); {
		j := i + 1
		for j < len(order) && values[order[j]] == values[order[i]] {
			j++
		}
		mid := float64(i+j+1) / 2
		for _, idx := range order[i:j] {
			ranks[idx] = mid
		}
		if t := float64(j - i); t > 1 {
			ties += t*t*t - t
		}
		i = j
	}
	return ranks, ties
}

const exactMannWhitneyMax = 8

// MannWhitney runs the two-sided Mann-Whitney U test. The statistic is U of
// the first sample. The exact null distribution is used when either sample
// has at most 8 observations and there are no ties; otherwise the normal
// approximation with tie and continuity corrections.
func MannWhitney(x, y []float64) *stats.MannWhitneyResult {
	n1, n2 := len(x), len(y)
	combined := make([]float64, 0, n1+n2)
	combined = append(combined, x...)
	combined = append(combined, y...)
	ranks, ties := rank(combined)

	r1 := 0.0
	for _, r := range ranks[:n1] {
		r1 += r
	}
	u1 := r1 - float64(n1*(n1+1))/2
	u := math.Max(u1, float64(n1*n2)-u1)

	if (n1 <= exactMannWhitneyMax || n2 <= exactMannWhitneyMax) && ties == 0 {
		return &stats.MannWhitneyResult{
			Statistic: u1,
			PValue:    math.Min(1, 2*mannWhitneyExactSurvival(int(math.Round(u)), n1, n2)),
			Exact:     true,
		}
	}

	n := float64(n1 + n2)
	mu := float64(n1*n2) / 2
	sigma := math.Sqrt(float64(n1*n2) / 12 * ((n + 1) - ties/(n*(n-1))))
	z := (u - mu - 0.5) / sigma

	return &stats.MannWhitneyResult{
		Statistic: u1,
		PValue:    math.Min(1, 2*dist.NormalSurvival(z)),
	}
}

// mannWhitneyExactSurvival is P(U >= u) under the null, counting the
// orderings of n1 + n2 distinct values
func mannWhitneyExactSurvival(u, n1, n2 int) float64 {
	counts := mannWhitneyCounts(n1, n2)
	total, tail := 0.0, 0.0
	for v, c := range counts {
		total += c
		if v >= u {
			tail += c
		}
	}
	return tail / total
}

// mannWhitneyCounts returns, for each U value, the number of arrangements
// producing it. The table depends only on the pair of sizes, so the smaller
// one indexes the rows and columns are rolled one at a time.
func mannWhitneyCounts(n1, n2 int) []float64 {
	if n1 > n2 {
		n1, n2 = n2, n1
	}
	// prev[i] holds the counts for (i, j-1) and cur[i] for (i, j)
	prev := make([][]float64, n1+1)
	for i := range prev {
		prev[i] = []float64{1}
	}
	for j := 1; j <= n2; j++ {
		cur := make([][]float64, n1+1)
		cur[0] = []float64{1}
		for i := 1; i <= n1; i++ {
			c := make([]float64, i*j+1)
			for u := range c {
				// largest value from the first sample beats all j of the second
				if u >= j && u-j < len(cur[i-1]) {
					c[u] += cur[i-1][u-j]
				}
				if u < len(prev[i]) {
					c[u] += prev[i][u]
				}
			}
			cur[i] = c
		}
		prev = cur
	}
	return prev[n1]
}

// KruskalWallis runs the Kruskal-Wallis H test with tie correction
func KruskalWallis(groups [][]float64) *stats.KruskalWallisResult {
	var combined []float64
	for _, g := range groups {
		combined = append(combined, g...)
	}
	ranks, ties := rank(combined)
	n := float64(len(combined))

	h, offset := 0.0, 0
	for _, g := range groups {
		sum := 0.0
		for _, r := range ranks[offset : offset+len(g)] {
			sum += r
		}
		h += sum * sum / float64(len(g))
		offset += len(g)
	}
	h = 12/(n*(n+1))*h - 3*(n+1)
	h /= 1 - ties/(n*n*n-n)

	dof := len(groups) - 1
	if dof < 0 {
		dof = 0
	}
	return &stats.KruskalWallisResult{
		Statistic:        h,
		PValue:           dist.ChiSquareSurvival(h, dof),
		DegreesOfFreedom: dof,
	}
}
