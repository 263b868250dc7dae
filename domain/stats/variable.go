package stats

import (
	"fmt"
	"sort"

	"gounivar/internal/errors"
)

// VariableKind is the declared measurement level of a variable
type VariableKind string

const (
	Qualitative  VariableKind = "qualitative"
	Quantitative VariableKind = "quantitative"
)

// Validate fails with CONFIG_INVALID for anything but the two supported kinds
func (k VariableKind) Validate(variable string) error {
	switch k {
	case Qualitative, Quantitative:
		return nil
	default:
		return errors.ConfigInvalid(fmt.Sprintf("variable %q has unsupported kind %q (want %q or %q)", variable, string(k), Qualitative, Quantitative))
	}
}

// Variable pairs a column name with its declared kind
type Variable struct {
	Name string       `json:"name" yaml:"name"`
	Kind VariableKind `json:"kind" yaml:"kind"`
}

// VariablesFromMap converts a name -> kind mapping into a list sorted by name
func VariablesFromMap(m map[string]VariableKind) []Variable {
	out := make([]Variable, 0, len(m))
	for name, kind := range m {
		out = append(out, Variable{Name: name, Kind: kind})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
