package describe

import (
	"math"

	"gounivar/domain/dataset"
	"gounivar/domain/stats"
)

// DefaultMaxCodes is the largest number of distinct integer values a numeric
// column may hold and still be read as categorical codes
const DefaultMaxCodes = 10

// InferKinds suggests a kind for every column, in column order. A column is
// quantitative when all its observed values are numbers, unless they are
// integers with at most maxCodes distinct values (category codes such as
// 0/1). Everything else is qualitative.
func InferKinds(ds *dataset.Dataset, maxCodes int) []stats.Variable {
	if maxCodes <= 0 {
		maxCodes = DefaultMaxCodes
	}
	names := ds.Names()
	out := make([]stats.Variable, len(names))
	for i, name := range names {
		values, _ := ds.Column(name)
		out[i] = stats.Variable{Name: name, Kind: inferKind(values, maxCodes)}
	}
	return out
}

func inferKind(values []dataset.Value, maxCodes int) stats.VariableKind {
	distinct := make(map[float64]bool)
	integers := true
	observed := 0
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		if v.Kind() != dataset.KindNumber {
			return stats.Qualitative
		}
		f, _ := v.Float()
		observed++
		distinct[f] = true
		if f != math.Trunc(f) {
			integers = false
		}
	}
	if observed == 0 || (integers && len(distinct) <= maxCodes) {
		return stats.Qualitative
	}
	return stats.Quantitative
}
