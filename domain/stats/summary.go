package stats

import (
	"encoding/json"

	"gounivar/domain/dataset"
)

// Summary is the descriptive summary of one column: either a
// *QualitativeSummary or a *QuantitativeSummary.
type Summary interface {
	Kind() VariableKind
	Size() int
}

// CategoryCount is the count and proportion of one observed category
type CategoryCount struct {
	Category dataset.Value `json:"category"`
	N        int           `json:"n"`
	P        float64       `json:"p"`
}

// QualitativeSummary counts categories, most frequent first
type QualitativeSummary struct {
	Categories []CategoryCount `json:"categories"`
	Total      int             `json:"total"`
}

func (s *QualitativeSummary) Kind() VariableKind { return Qualitative }
func (s *QualitativeSummary) Size() int          { return s.Total }

// Lookup returns the count for a category, or false if it was not observed
func (s *QualitativeSummary) Lookup(category dataset.Value) (CategoryCount, bool) {
	for _, c := range s.Categories {
		if c.Category == category {
			return c, true
		}
	}
	return CategoryCount{}, false
}

func (s *QualitativeSummary) MarshalJSON() ([]byte, error) {
	type plain QualitativeSummary
	return json.Marshal(struct {
		Kind VariableKind `json:"kind"`
		*plain
	}{Qualitative, (*plain)(s)})
}

// QuantitativeSummary holds location and spread of a numeric column.
// CI95 uses the normal approximation mean ± 1.96·StdMean.
type QuantitativeSummary struct {
	N       int        `json:"n"`
	Mean    float64    `json:"mean"`
	Median  float64    `json:"median"`
	Q25     float64    `json:"q25"`
	Q75     float64    `json:"q75"`
	Std     float64    `json:"std"`
	StdMean float64    `json:"std_mean"`
	CI95    [2]float64 `json:"ci_95"`
}

func (s *QuantitativeSummary) Kind() VariableKind { return Quantitative }
func (s *QuantitativeSummary) Size() int          { return s.N }

func (s *QuantitativeSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    VariableKind `json:"kind"`
		N       int          `json:"n"`
		Mean    jsonFloat    `json:"mean"`
		Median  jsonFloat    `json:"median"`
		Q25     jsonFloat    `json:"q25"`
		Q75     jsonFloat    `json:"q75"`
		Std     jsonFloat    `json:"std"`
		StdMean jsonFloat    `json:"std_mean"`
		CI95    [2]jsonFloat `json:"ci_95"`
	}{
		Quantitative, s.N, jsonFloat(s.Mean), jsonFloat(s.Median), jsonFloat(s.Q25), jsonFloat(s.Q75),
		jsonFloat(s.Std), jsonFloat(s.StdMean), [2]jsonFloat{jsonFloat(s.CI95[0]), jsonFloat(s.CI95[1])},
	})
}

// Subgroup is the summary of the rows sharing one axis category
type Subgroup struct {
	Category dataset.Value `json:"category"`
	Summary  Summary       `json:"summary"`
}
