package describe

import (
	"math"
	"testing"

	"gounivar/domain/dataset"
	"gounivar/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantitativeOneToTen(t *testing.T) {
	s := Quantitative([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})

	assert.Equal(t, 10, s.N)
	assert.InDelta(t, 5.5, s.Mean, 1e-12)
	assert.InDelta(t, 5.5, s.Median, 1e-12)
	assert.InDelta(t, 3.25, s.Q25, 1e-12)
	assert.InDelta(t, 7.75, s.Q75, 1e-12)
	assert.InDelta(t, 3.0277, s.Std, 1e-4)
	assert.InDelta(t, 0.9574, s.StdMean, 1e-4)
	assert.InDelta(t, 3.623, s.CI95[0], 1e-3)
	assert.InDelta(t, 7.377, s.CI95[1], 1e-3)
}

func TestQuantitativeOrderIndependent(t *testing.T) {
	a := Quantitative([]float64{9, 1, 7, 3, 5})
	b := Quantitative([]float64{1, 3, 5, 7, 9})
	assert.Equal(t, a, b)
	assert.LessOrEqual(t, a.Q25, a.Median)
	assert.LessOrEqual(t, a.Median, a.Q75)
}

func TestQuantitativeDegenerate(t *testing.T) {
	empty := Quantitative(nil)
	assert.Equal(t, 0, empty.N)
	assert.True(t, math.IsNaN(empty.Mean))
	assert.True(t, math.IsNaN(empty.CI95[0]))

	single := Quantitative([]float64{4})
	assert.Equal(t, 4.0, single.Mean)
	assert.Equal(t, 4.0, single.Q25)
	assert.True(t, math.IsNaN(single.Std))
	assert.True(t, math.IsNaN(single.CI95[1]))

	constant := Quantitative([]float64{2, 2, 2})
	assert.Equal(t, 0.0, constant.Std)
	assert.Equal(t, [2]float64{2, 2}, constant.CI95)
}

func TestQualitativeCounts(t *testing.T) {
	var values []dataset.Value
	for i := 0; i < 3; i++ {
		values = append(values, dataset.String("A"))
	}
	for i := 0; i < 7; i++ {
		values = append(values, dataset.String("B"))
	}
	values = append(values, dataset.Missing())

	s := Qualitative(values)
	require.Len(t, s.Categories, 2)
	assert.Equal(t, 10, s.Total)
	assert.Equal(t, dataset.String("B"), s.Categories[0].Category)

	a, ok := s.Lookup(dataset.String("A"))
	require.True(t, ok)
	assert.Equal(t, 3, a.N)
	assert.InDelta(t, 0.3, a.P, 1e-12)

	b, _ := s.Lookup(dataset.String("B"))
	assert.InDelta(t, 0.7, b.P, 1e-12)
	assert.InDelta(t, 1.0, a.P+b.P, 1e-12)
}

func TestQualitativeTiesKeepFirstAppearance(t *testing.T) {
	s := Qualitative([]dataset.Value{dataset.Number(2), dataset.Number(1), dataset.Number(1), dataset.Number(2)})
	require.Len(t, s.Categories, 2)
	assert.Equal(t, dataset.Number(2), s.Categories[0].Category)
	assert.Equal(t, dataset.Number(1), s.Categories[1].Category)
}

func TestQualitativeEmpty(t *testing.T) {
	s := Qualitative(nil)
	assert.Equal(t, 0, s.Total)
	assert.Empty(t, s.Categories)
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	assert.Equal(t, 1.0, Quantile(sorted, 0))
	assert.Equal(t, 4.0, Quantile(sorted, 1))
	assert.InDelta(t, 1.75, Quantile(sorted, 0.25), 1e-12)
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}

func TestInferKinds(t *testing.T) {
	ds, err := dataset.New(
		dataset.NewColumn("sex", "F", "M", "F", nil),
		dataset.NewColumn("response", 0, 1, 1, 0),
		dataset.NewColumn("score", 1.5, 2.25, 3, 4),
		dataset.NewColumn("empty", nil, nil, nil, nil),
	)
	require.NoError(t, err)

	kinds := InferKinds(ds, 0)
	require.Len(t, kinds, 4)
	assert.Equal(t, stats.Qualitative, kinds[0].Kind)
	assert.Equal(t, stats.Qualitative, kinds[1].Kind)
	assert.Equal(t, stats.Quantitative, kinds[2].Kind)
	assert.Equal(t, stats.Qualitative, kinds[3].Kind)

	// with a single allowed code, the 0/1 column becomes numeric
	assert.Equal(t, stats.Quantitative, InferKinds(ds, 1)[1].Kind)
}
