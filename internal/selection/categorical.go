// Package selection picks the significance test that is valid for a
// comparison: a priority list for categorical variables and a decision
// tree for continuous ones.
package selection

import (
	"gounivar/adapters/stats/inference"
	"gounivar/domain/dataset"
	"gounivar/domain/stats"
)

type categoricalTest struct {
	name stats.TestName
	run  func(*stats.ContingencyTable) stats.TestResult
}

// categoricalTests is evaluated in order; the first valid result wins.
// The asymptotic tests come before Fisher even on 2x2 tables.
var categoricalTests = []categoricalTest{
	{stats.TestChiSquare, func(t *stats.ContingencyTable) stats.TestResult {
		r := inference.ChiSquare(t, false)
		r.IsValid = t.Total() > 0 && inference.MinExpected(r.Expected) >= 5
		return r
	}},
	{stats.TestChiSquareYates, func(t *stats.ContingencyTable) stats.TestResult {
		r := inference.ChiSquare(t, true)
		r.IsValid = t.Total() > 0 && r.DegreesOfFreedom == 1 && inference.MinExpected(r.Expected) >= 3
		return r
	}},
	{stats.TestFisher, func(t *stats.ContingencyTable) stats.TestResult {
		return inference.FisherExact(t)
	}},
	{stats.TestNone, func(*stats.ContingencyTable) stats.TestResult {
		return stats.NoTestResult{}
	}},
}

// SelectCategorical returns the first valid test for the table
func SelectCategorical(table *stats.ContingencyTable) stats.TestResult {
	for _, test := range categoricalTests {
		if result := test.run(table); result.Valid() {
			return result
		}
	}
	return stats.NoTestResult{}
}

// BuildContingency crosses axis and variable over their complete cases
func BuildContingency(ds *dataset.Dataset, variable, axis string) (*stats.ContingencyTable, error) {
	sub, err := ds.Subtable(variable, axis)
	if err != nil {
		return nil, err
	}
	axisValues, err := sub.Column(axis)
	if err != nil {
		return nil, err
	}
	values, err := sub.Column(variable)
	if err != nil {
		return nil, err
	}
	return stats.NewContingencyTable(axisValues, values)
}
