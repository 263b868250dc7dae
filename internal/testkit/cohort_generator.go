package testkit

import (
	"math"
	"math/rand"
	"strconv"

	"gounivar/domain/dataset"
)

// CohortConfig configures the synthetic cohort generator
type CohortConfig struct {
	Subjects        int      `json:"subjects"`
	Sites           []string `json:"sites"`
	MissingRate     float64  `json:"missing_rate"`
	TreatmentEffect float64  `json:"treatment_effect"`
	ResponseBase    float64  `json:"response_base"`
	ResponseLift    float64  `json:"response_lift"`
	Seed            int64    `json:"seed"`
}

// DefaultCohortConfig returns sensible defaults for cohort generation
func DefaultCohortConfig() CohortConfig {
	return CohortConfig{
		Subjects:        400,
		Sites:           []string{"north", "south", "east"},
		MissingRate:     0.03,
		TreatmentEffect: 4,
		ResponseBase:    0.35,
		ResponseLift:    0.2,
		Seed:            42,
	}
}

// CohortColumns lists the generated columns in order
var CohortColumns = []string{"id", "arm", "site", "sex", "age", "score", "biomarker", "response"}

// CohortGenerator generates a two-arm study cohort
type CohortGenerator struct {
	config CohortConfig
	rng    *rand.Rand
}

// NewCohortGenerator creates a new cohort generator
func NewCohortGenerator(config CohortConfig) *CohortGenerator {
	return &CohortGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Records generates the cohort as text rows; missing cells are empty
func (g *CohortGenerator) Records() (header []string, rows [][]string) {
	rows = make([][]string, g.config.Subjects)
	for i := range rows {
		rows[i] = g.subject(i)
	}
	return append([]string(nil), CohortColumns...), rows
}

// Generate builds the cohort as a dataset
func (g *CohortGenerator) Generate() (*dataset.Dataset, error) {
	header, rows := g.Records()
	return dataset.FromRecords(header, rows)
}

func (g *CohortGenerator) subject(i int) []string {
	treated := g.rng.Float64() < 0.5
	arm := "control"
	if treated {
		arm = "treatment"
	}

	sex := "F"
	if g.rng.Float64() < 0.48 {
		sex = "M"
	}
	site := "site"
	if len(g.config.Sites) > 0 {
		site = g.config.Sites[g.rng.Intn(len(g.config.Sites))]
	}

	age := math.Round(50 + 12*g.rng.NormFloat64())
	score := 60 + 8*g.rng.NormFloat64()
	p := g.config.ResponseBase
	if treated {
		score += g.config.TreatmentEffect
		p += g.config.ResponseLift
	}
	biomarker := math.Exp(1 + 0.8*g.rng.NormFloat64())
	response := "0"
	if g.rng.Float64() < p {
		response = "1"
	}

	row := []string{
		strconv.Itoa(i + 1),
		arm,
		site,
		sex,
		strconv.FormatFloat(age, 'f', 0, 64),
		strconv.FormatFloat(score, 'f', 2, 64),
		strconv.FormatFloat(biomarker, 'f', 3, 64),
		response,
	}
	// id and arm are always observed
	for j := 2; j < len(row); j++ {
		if g.rng.Float64() < g.config.MissingRate {
			row[j] = ""
		}
	}
	return row
}
