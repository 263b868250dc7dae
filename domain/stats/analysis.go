package stats

import (
	"encoding/json"

	"gounivar/domain/core"
	"gounivar/domain/dataset"
)

// GroupNormality is the normality check of one group
type GroupNormality struct {
	Category  dataset.Value `json:"category"`
	N         int           `json:"n"`
	Statistic float64       `json:"-"`
	PValue    float64       `json:"-"`
	Normal    bool          `json:"normal"`
}

func (g GroupNormality) MarshalJSON() ([]byte, error) {
	type plain GroupNormality
	return json.Marshal(struct {
		plain
		Statistic jsonFloat `json:"statistic"`
		PValue    jsonFloat `json:"p_value"`
	}{plain(g), jsonFloat(g.Statistic), jsonFloat(g.PValue)})
}

// Assumptions records the precondition checks behind a continuous comparison.
// They are computed once per comparison and reused by every branch of the
// decision tree.
type Assumptions struct {
	Normality []GroupNormality `json:"normality"`
	// AssumedNormal is set when the caller asserted normality
	AssumedNormal       bool    `json:"assumed_normal"`
	Normal              bool    `json:"normal"`
	VarianceStatistic   float64 `json:"-"`
	VariancePValue      float64 `json:"-"`
	HomogeneousVariance bool    `json:"homogeneous_variance"`
}

func (a *Assumptions) MarshalJSON() ([]byte, error) {
	type plain Assumptions
	return json.Marshal(struct {
		*plain
		VarianceStatistic jsonFloat `json:"variance_statistic"`
		VariancePValue    jsonFloat `json:"variance_p_value"`
	}{(*plain)(a), jsonFloat(a.VarianceStatistic), jsonFloat(a.VariancePValue)})
}

// AnalysisResult is the description and tests of one variable
type AnalysisResult struct {
	Variable    string                  `json:"variable"`
	Kind        VariableKind            `json:"type"`
	N           int                     `json:"n"`
	Global      Summary                 `json:"global"`
	Subgroups   map[string][]Subgroup   `json:"sous_groupes,omitempty"`
	Tests       map[string]TestResult   `json:"test,omitempty"`
	Assumptions map[string]*Assumptions `json:"assumptions,omitempty"`
}

// Subgroup returns the summary of one axis category
func (r *AnalysisResult) Subgroup(axis string, category dataset.Value) (Summary, bool) {
	for _, g := range r.Subgroups[axis] {
		if g.Category == category {
			return g.Summary, true
		}
	}
	return nil, false
}

// Analysis is the outcome of one analyze call
type Analysis struct {
	ID core.ID `json:"id"`
	// InputHash fingerprints the dataset, variables, axes and options
	InputHash core.Hash                  `json:"input_hash"`
	Variables []string                   `json:"variables"`
	Axes      []string                   `json:"axes,omitempty"`
	Results   map[string]*AnalysisResult `json:"results"`
}

// Result returns the result of a variable
func (a *Analysis) Result(variable string) (*AnalysisResult, bool) {
	r, ok := a.Results[variable]
	return r, ok
}
