// Package dataset holds the immutable in-memory table every analysis reads from.
package dataset

import (
	"fmt"
	"math"
	"strings"

	"gounivar/domain/core"
	"gounivar/internal/errors"
)

// Column is a named sequence of values
type Column struct {
	Name   string
	Values []Value
}

// NewColumn builds a column from plain Go values (see Of)
func NewColumn(name string, values ...interface{}) Column {
	col := Column{Name: name, Values: make([]Value, len(values))}
	for i, v := range values {
		col.Values[i] = Of(v)
	}
	return col
}

// FloatColumn builds a numeric column; NaN entries are missing
func FloatColumn(name string, values []float64) Column {
	col := Column{Name: name, Values: make([]Value, len(values))}
	for i, v := range values {
		col.Values[i] = Number(v)
	}
	return col
}

// Dataset is a read-only table of named columns. Methods never modify the
// receiver; derived tables share no mutable state with their source.
type Dataset struct {
	columns []Column
	index   map[string]int
	rows    int
}

// New validates the columns (unique names, equal lengths) and builds a Dataset
func New(columns ...Column) (*Dataset, error) {
	ds := &Dataset{
		columns: make([]Column, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if col.Name == "" {
			return nil, errors.InvalidInput(fmt.Sprintf("column %d has no name", i))
		}
		if _, dup := ds.index[col.Name]; dup {
			return nil, errors.InvalidInput(fmt.Sprintf("duplicate column %q", col.Name))
		}
		if i == 0 {
			ds.rows = len(col.Values)
		} else if len(col.Values) != ds.rows {
			return nil, errors.InvalidInput(fmt.Sprintf("column %q has %d rows, expected %d", col.Name, len(col.Values), ds.rows))
		}
		values := make([]Value, len(col.Values))
		copy(values, col.Values)
		ds.columns[i] = Column{Name: col.Name, Values: values}
		ds.index[col.Name] = i
	}
	return ds, nil
}

// FromRecords builds a Dataset from a header and text rows, parsing each cell with Parse.
// Short rows are padded with missing values.
func FromRecords(header []string, rows [][]string) (*Dataset, error) {
	columns := make([]Column, len(header))
	for j, name := range header {
		columns[j] = Column{Name: name, Values: make([]Value, len(rows))}
	}
	for i, row := range rows {
		for j := range header {
			if j < len(row) {
				columns[j].Values[i] = Parse(row[j])
			}
		}
	}
	return New(columns...)
}

// Len returns the number of rows
func (d *Dataset) Len() int { return d.rows }

// Names returns the column names in order
func (d *Dataset) Names() []string {
	names := make([]string, len(d.columns))
	for i, col := range d.columns {
		names[i] = col.Name
	}
	return names
}

// Has reports whether the dataset has a column with the given name
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns a copy of the named column's values
func (d *Dataset) Column(name string) ([]Value, error) {
	col, err := d.column(name)
	if err != nil {
		return nil, err
	}
	values := make([]Value, len(col.Values))
	copy(values, col.Values)
	return values, nil
}

func (d *Dataset) column(name string) (*Column, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("column %q", name))
	}
	return &d.columns[i], nil
}

// Floats returns the named column as float64. Missing values become NaN; any
// other non-numeric value is an error.
func (d *Dataset) Floats(name string) ([]float64, error) {
	col, err := d.column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(col.Values))
	for i, v := range col.Values {
		if v.IsMissing() {
			out[i] = math.NaN()
			continue
		}
		f, ok := v.Float()
		if !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("column %q row %d: %q is not numeric", name, i, v.String()))
		}
		out[i] = f
	}
	return out, nil
}

// Where returns the rows whose column equals value
func (d *Dataset) Where(name string, value Value) (*Dataset, error) {
	col, err := d.column(name)
	if err != nil {
		return nil, err
	}
	keep := make([]int, 0, d.rows)
	for i, v := range col.Values {
		if v == value {
			keep = append(keep, i)
		}
	}
	return d.take(d.columns, keep), nil
}

// Distinct returns the distinct values of a column in first-appearance order,
// skipping missing values
func (d *Dataset) Distinct(name string) ([]Value, error) {
	col, err := d.column(name)
	if err != nil {
		return nil, err
	}
	seen := make(map[Value]bool)
	var out []Value
	for _, v := range col.Values {
		if v.IsMissing() || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out, nil
}

// Fingerprint hashes column names and every cell, kind included
func (d *Dataset) Fingerprint() core.Hash {
	var data strings.Builder
	for _, col := range d.columns {
		data.WriteString(col.Name)
		data.WriteByte(0)
		for _, v := range col.Values {
			data.WriteByte(byte('0' + v.kind))
			data.WriteString(v.String())
			data.WriteByte(0)
		}
	}
	return core.NewHash([]byte(data.String()))
}

func (d *Dataset) take(columns []Column, rows []int) *Dataset {
	out := &Dataset{
		columns: make([]Column, len(columns)),
		index:   make(map[string]int, len(columns)),
		rows:    len(rows),
	}
	for j, col := range columns {
		values := make([]Value, len(rows))
		for i, r := range rows {
			values[i] = col.Values[r]
		}
		out.columns[j] = Column{Name: col.Name, Values: values}
		out.index[col.Name] = j
	}
	return out
}
