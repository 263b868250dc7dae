package stats

import (
	"encoding/json"
	"math"
	"strconv"
)

// TestName is the reported identifier of a significance test
type TestName string

const (
	TestChiSquare      TestName = "khi2"
	TestChiSquareYates TestName = "khi2_yates"
	TestFisher         TestName = "fisher"
	TestNone           TestName = "no_test"
	TestZ              TestName = "z_test"
	TestStudent        TestName = "t_test"
	TestWelch          TestName = "t_test Welch"
	TestMannWhitney    TestName = "Mann-Whitney Wilcoxon"
	TestAnova          TestName = "ANOVA_1W"
	TestKruskalWallis  TestName = "Kurskal_Wallis"
)

// TestResult is the outcome of one significance test. Concrete variants:
// *ChiSquareResult, *FisherResult, NoTestResult, *ZTestResult, *TTestResult,
// *MannWhitneyResult, *AnovaResult, *KruskalWallisResult.
type TestResult interface {
	Name() TestName
	// Valid reports whether the test's preconditions hold
	Valid() bool
	// Outcome returns the statistic and p-value; ok is false when the
	// result carries none (no test, or an invalid Fisher table).
	Outcome() (statistic, pValue float64, ok bool)
}

// ChiSquareResult is Pearson's chi-square test of independence
type ChiSquareResult struct {
	Statistic        float64
	PValue           float64
	DegreesOfFreedom int
	Expected         [][]float64
	Observed         *ContingencyTable
	YatesCorrection  bool
	IsValid          bool
}

func (r *ChiSquareResult) Name() TestName {
	if r.YatesCorrection {
		return TestChiSquareYates
	}
	return TestChiSquare
}
func (r *ChiSquareResult) Valid() bool { return r.IsValid }
func (r *ChiSquareResult) Outcome() (float64, float64, bool) {
	return r.Statistic, r.PValue, true
}

func (r *ChiSquareResult) MarshalJSON() ([]byte, error) {
	expected := make([][]jsonFloat, len(r.Expected))
	for i, row := range r.Expected {
		expected[i] = make([]jsonFloat, len(row))
		for j, v := range row {
			expected[i][j] = jsonFloat(v)
		}
	}
	return json.Marshal(struct {
		Test             TestName          `json:"test"`
		Statistic        jsonFloat         `json:"statistic"`
		PValue           jsonFloat         `json:"p_value"`
		DegreesOfFreedom int               `json:"dof"`
		Expected         [][]jsonFloat     `json:"expected"`
		Observed         *ContingencyTable `json:"observed"`
		YatesCorrection  bool              `json:"yates_correction"`
		Valid            bool              `json:"valid"`
	}{r.Name(), jsonFloat(r.Statistic), jsonFloat(r.PValue), r.DegreesOfFreedom, expected, r.Observed, r.YatesCorrection, r.IsValid})
}

// FisherResult is Fisher's exact test on a 2x2 table. Statistic is the
// sample odds ratio. An invalid result carries only the observed table.
type FisherResult struct {
	OddsRatio float64
	PValue    float64
	Observed  *ContingencyTable
	IsValid   bool
}

func (r *FisherResult) Name() TestName { return TestFisher }
func (r *FisherResult) Valid() bool    { return r.IsValid }
func (r *FisherResult) Outcome() (float64, float64, bool) {
	return r.OddsRatio, r.PValue, r.IsValid
}

func (r *FisherResult) MarshalJSON() ([]byte, error) {
	if !r.IsValid {
		return json.Marshal(struct {
			Test  TestName `json:"test"`
			Valid bool     `json:"valid"`
		}{TestFisher, false})
	}
	return json.Marshal(struct {
		Test      TestName          `json:"test"`
		Statistic jsonFloat         `json:"statistic"`
		PValue    jsonFloat         `json:"p_value"`
		Observed  *ContingencyTable `json:"observed"`
		Valid     bool              `json:"valid"`
	}{TestFisher, jsonFloat(r.OddsRatio), jsonFloat(r.PValue), r.Observed, true})
}

// NoTestResult is the terminal fallback: always valid, no statistic
type NoTestResult struct{}

func (NoTestResult) Name() TestName                    { return TestNone }
func (NoTestResult) Valid() bool                       { return true }
func (NoTestResult) Outcome() (float64, float64, bool) { return math.NaN(), math.NaN(), false }

func (NoTestResult) MarshalJSON() ([]byte, error) {
	return []byte(`{"test":"no_test","valid":true}`), nil
}

// ZTestResult is the two-sample z-test on means with pooled variance
type ZTestResult struct {
	Statistic float64
	PValue    float64
}

func (r *ZTestResult) Name() TestName                    { return TestZ }
func (r *ZTestResult) Valid() bool                       { return true }
func (r *ZTestResult) Outcome() (float64, float64, bool) { return r.Statistic, r.PValue, true }

func (r *ZTestResult) MarshalJSON() ([]byte, error) {
	return marshalOutcome(r.Name(), r.Statistic, r.PValue, nil)
}

// TTestResult is Student's (EqualVariance) or Welch's two-sample t-test
type TTestResult struct {
	Statistic        float64
	PValue           float64
	DegreesOfFreedom float64
	EqualVariance    bool
}

func (r *TTestResult) Name() TestName {
	if r.EqualVariance {
		return TestStudent
	}
	return TestWelch
}
func (r *TTestResult) Valid() bool                       { return true }
func (r *TTestResult) Outcome() (float64, float64, bool) { return r.Statistic, r.PValue, true }

func (r *TTestResult) MarshalJSON() ([]byte, error) {
	return marshalOutcome(r.Name(), r.Statistic, r.PValue, map[string]interface{}{"dof": jsonFloat(r.DegreesOfFreedom)})
}

// MannWhitneyResult is the Mann-Whitney U test; Statistic is U of the first group
type MannWhitneyResult struct {
	Statistic float64
	PValue    float64
	Exact     bool
}

func (r *MannWhitneyResult) Name() TestName                    { return TestMannWhitney }
func (r *MannWhitneyResult) Valid() bool                       { return true }
func (r *MannWhitneyResult) Outcome() (float64, float64, bool) { return r.Statistic, r.PValue, true }

func (r *MannWhitneyResult) MarshalJSON() ([]byte, error) {
	return marshalOutcome(r.Name(), r.Statistic, r.PValue, map[string]interface{}{"exact": r.Exact})
}

// AnovaResult is the one-way analysis of variance F test
type AnovaResult struct {
	Statistic float64
	PValue    float64
	DFBetween int
	DFWithin  int
}

func (r *AnovaResult) Name() TestName                    { return TestAnova }
func (r *AnovaResult) Valid() bool                       { return true }
func (r *AnovaResult) Outcome() (float64, float64, bool) { return r.Statistic, r.PValue, true }

func (r *AnovaResult) MarshalJSON() ([]byte, error) {
	return marshalOutcome(r.Name(), r.Statistic, r.PValue, map[string]interface{}{"df_between": r.DFBetween, "df_within": r.DFWithin})
}

// KruskalWallisResult is the Kruskal-Wallis H test
type KruskalWallisResult struct {
	Statistic        float64
	PValue           float64
	DegreesOfFreedom int
}

func (r *KruskalWallisResult) Name() TestName                    { return TestKruskalWallis }
func (r *KruskalWallisResult) Valid() bool                       { return true }
func (r *KruskalWallisResult) Outcome() (float64, float64, bool) { return r.Statistic, r.PValue, true }

func (r *KruskalWallisResult) MarshalJSON() ([]byte, error) {
	return marshalOutcome(r.Name(), r.Statistic, r.PValue, map[string]interface{}{"dof": r.DegreesOfFreedom})
}

func marshalOutcome(name TestName, statistic, pValue float64, extra map[string]interface{}) ([]byte, error) {
	out := map[string]interface{}{
		"test":      name,
		"statistic": jsonFloat(statistic),
		"p_value":   jsonFloat(pValue),
		"valid":     true,
	}
	for k, v := range extra {
		out[k] = v
	}
	return json.Marshal(out)
}

// jsonFloat encodes NaN and ±Inf as null, which encoding/json rejects otherwise
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
}
