package stats

import (
	"fmt"
	"sort"

	"gounivar/domain/dataset"
)

// ContingencyTable crosses an axis (rows) with a variable (columns). Only
// observed categories appear, sorted; absent combinations count zero.
type ContingencyTable struct {
	Rows   []dataset.Value `json:"rows"`
	Cols   []dataset.Value `json:"cols"`
	Counts [][]int         `json:"counts"`
}

// NewContingencyTable counts paired observations. Pairs with a missing side are skipped.
func NewContingencyTable(axis, variable []dataset.Value) (*ContingencyTable, error) {
	if len(axis) != len(variable) {
		return nil, fmt.Errorf("contingency table needs paired observations, got %d and %d", len(axis), len(variable))
	}

	rows := sortedDistinct(axis, variable)
	cols := sortedDistinct(variable, axis)
	rowIdx := indexOf(rows)
	colIdx := indexOf(cols)

	counts := make([][]int, len(rows))
	for i := range counts {
		counts[i] = make([]int, len(cols))
	}
	for i := range axis {
		if axis[i].IsMissing() || variable[i].IsMissing() {
			continue
		}
		counts[rowIdx[axis[i]]][colIdx[variable[i]]]++
	}
	return &ContingencyTable{Rows: rows, Cols: cols, Counts: counts}, nil
}

// Shape returns the number of rows and columns
func (t *ContingencyTable) Shape() (int, int) {
	return len(t.Rows), len(t.Cols)
}

// Total returns the sum of all cells
func (t *ContingencyTable) Total() int {
	total := 0
	for _, row := range t.Counts {
		for _, c := range row {
			total += c
		}
	}
	return total
}

// Marginals returns row and column totals
func (t *ContingencyTable) Marginals() (rowTotals, colTotals []int) {
	r, c := t.Shape()
	rowTotals = make([]int, r)
	colTotals = make([]int, c)
	for i, row := range t.Counts {
		for j, v := range row {
			rowTotals[i] += v
			colTotals[j] += v
		}
	}
	return rowTotals, colTotals
}

// Expected returns the expected counts under independence
func (t *ContingencyTable) Expected() [][]float64 {
	rowTotals, colTotals := t.Marginals()
	total := float64(t.Total())
	expected := make([][]float64, len(rowTotals))
	for i := range expected {
		expected[i] = make([]float64, len(colTotals))
		for j := range expected[i] {
			expected[i][j] = float64(rowTotals[i]) * float64(colTotals[j]) / total
		}
	}
	return expected
}

// DegreesOfFreedom is (rows-1)(cols-1), or 0 for a degenerate table
func (t *ContingencyTable) DegreesOfFreedom() int {
	r, c := t.Shape()
	if r == 0 || c == 0 {
		return 0
	}
	return (r - 1) * (c - 1)
}

func sortedDistinct(values, other []dataset.Value) []dataset.Value {
	seen := make(map[dataset.Value]bool)
	var out []dataset.Value
	for i, v := range values {
		if v.IsMissing() || other[i].IsMissing() || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func indexOf(values []dataset.Value) map[dataset.Value]int {
	idx := make(map[dataset.Value]int, len(values))
	for i, v := range values {
		idx[v] = i
	}
	return idx
}
