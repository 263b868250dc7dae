package analysis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"gounivar/domain/dataset"
	"gounivar/domain/stats"
	"gounivar/internal/errors"
	"gounivar/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeBalancedBinarySelectsChiSquare(t *testing.T) {
	analyzer := New(testkit.BalancedBinary(400))

	analysis, err := analyzer.Analyze(context.Background(),
		[]stats.Variable{{Name: "y", Kind: stats.Qualitative}}, []string{"x"})
	require.NoError(t, err)

	result, ok := analysis.Result("y")
	require.True(t, ok)
	assert.Equal(t, 400, result.N)

	test := result.Tests["x"]
	assert.Equal(t, stats.TestChiSquare, test.Name())
	assert.True(t, test.Valid())

	chi := test.(*stats.ChiSquareResult)
	assert.InDelta(t, 0, chi.Statistic, 1e-12)
	assert.Equal(t, [][]int{{100, 100}, {100, 100}}, chi.Observed.Counts)

	global := result.Global.(*stats.QualitativeSummary)
	assert.Equal(t, 400, global.Total)

	a, ok := result.Subgroup("x", dataset.String("A"))
	require.True(t, ok)
	assert.Equal(t, 200, a.Size())
}

func TestAnalyzeQuantitative(t *testing.T) {
	ds := testkit.Groups([]string{"B", "A"}, testkit.NormalQuantiles(0, 1, 20), testkit.NormalQuantiles(0.3, 1, 20))

	analysis, err := New(ds).Analyze(context.Background(),
		[]stats.Variable{{Name: "value", Kind: stats.Quantitative}}, []string{"group"})
	require.NoError(t, err)

	result := analysis.Results["value"]
	assert.Equal(t, 40, result.N)
	assert.Equal(t, stats.TestStudent, result.Tests["group"].Name())

	// subgroups keep first-appearance order
	subgroups := result.Subgroups["group"]
	require.Len(t, subgroups, 2)
	assert.Equal(t, dataset.String("B"), subgroups[0].Category)
	assert.InDelta(t, 0, subgroups[0].Summary.(*stats.QuantitativeSummary).Mean, 1e-9)
	assert.InDelta(t, 0.3, subgroups[1].Summary.(*stats.QuantitativeSummary).Mean, 1e-9)

	assumptions := result.Assumptions["group"]
	require.NotNil(t, assumptions)
	assert.True(t, assumptions.Normal)
	assert.True(t, assumptions.HomogeneousVariance)
}

func TestAnalyzeGlobalOnly(t *testing.T) {
	ds, err := dataset.New(dataset.NewColumn("v", 1, 2, 3, 4, 5, 6, 7, 8, 9, 10))
	require.NoError(t, err)

	analysis, err := New(ds).Analyze(context.Background(),
		[]stats.Variable{{Name: "v", Kind: stats.Quantitative}}, nil)
	require.NoError(t, err)

	result := analysis.Results["v"]
	assert.Nil(t, result.Tests)
	assert.Nil(t, result.Subgroups)
	summary := result.Global.(*stats.QuantitativeSummary)
	assert.InDelta(t, 5.5, summary.Mean, 1e-12)
	assert.InDelta(t, 3.0277, summary.Std, 1e-4)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	ds, err := testkit.NewCohortGenerator(testkit.DefaultCohortConfig()).Generate()
	require.NoError(t, err)

	variables := []stats.Variable{
		{Name: "response", Kind: stats.Qualitative},
		{Name: "sex", Kind: stats.Qualitative},
		{Name: "score", Kind: stats.Quantitative},
		{Name: "biomarker", Kind: stats.Quantitative},
		{Name: "age", Kind: stats.Quantitative},
	}
	axes := []string{"arm", "site"}

	first, err := New(ds, WithConcurrency(4)).Analyze(context.Background(), variables, axes)
	require.NoError(t, err)
	second, err := New(ds, WithConcurrency(1)).Analyze(context.Background(), variables, axes)
	require.NoError(t, err)

	a, err := json.Marshal(first.Results)
	require.NoError(t, err)
	b, err := json.Marshal(second.Results)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))

	assert.Equal(t, first.InputHash, second.InputHash)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, []string{"response", "sex", "score", "biomarker", "age"}, first.Variables)
}

func TestAnalyzeAssumeNormalChangesHash(t *testing.T) {
	ds := testkit.BalancedBinary(10)
	variables := []stats.Variable{{Name: "y", Kind: stats.Qualitative}}

	plain, err := New(ds).Analyze(context.Background(), variables, nil)
	require.NoError(t, err)
	forced, err := New(ds, WithAssumeNormal(true)).Analyze(context.Background(), variables, nil)
	require.NoError(t, err)

	assert.NotEqual(t, plain.InputHash, forced.InputHash)
}

func TestAnalyzeRejectsUnsupportedKind(t *testing.T) {
	_, err := New(testkit.BalancedBinary(10)).Analyze(context.Background(),
		[]stats.Variable{{Name: "y", Kind: "ordinal"}}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConfigInvalid))
	assert.Contains(t, err.Error(), `"y"`)
	assert.Contains(t, err.Error(), "ordinal")
}

func TestAnalyzeRejectsUnknownColumns(t *testing.T) {
	_, err := New(testkit.BalancedBinary(10)).Analyze(context.Background(),
		[]stats.Variable{{Name: "z", Kind: stats.Qualitative}}, []string{"x", "w"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
	assert.Contains(t, err.Error(), "z")
	assert.Contains(t, err.Error(), "w")
}

func TestAnalyzeRejectsDuplicates(t *testing.T) {
	_, err := New(testkit.BalancedBinary(10)).Analyze(context.Background(),
		[]stats.Variable{{Name: "y", Kind: stats.Qualitative}, {Name: "y", Kind: stats.Quantitative}}, nil)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestAnalyzeNonNumericQuantitative(t *testing.T) {
	_, err := New(testkit.BalancedBinary(10)).Analyze(context.Background(),
		[]stats.Variable{{Name: "x", Kind: stats.Quantitative}}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidInput))
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testkit.BalancedBinary(10)).Analyze(ctx,
		[]stats.Variable{{Name: "y", Kind: stats.Qualitative}}, []string{"x"})
	assert.True(t, stderrors.Is(err, context.Canceled))
}
