// Package report renders an analysis as descriptive and detail tables and
// writes them in text, spreadsheet or markup formats.
package report

import (
	"bytes"
	"io"
	"text/template"

	"gounivar/domain/dataset"
	"gounivar/domain/stats"
	"gounivar/internal/errors"
)

// NoTestPlaceholder fills the test cells when no test applied
const NoTestPlaceholder = "No test performed (conventional test conditions not met)"

const (
	DefaultQuantitativeFormat = "{{.Mean}} +/- {{.Std}} ({{.N}})"
	DefaultQualitativeFormat  = "{{.N}} ({{.Percent}}%)"
)

// Options controls number formatting. The formats are text/template
// strings: quantitative cells see .Mean .Std .N, qualitative cells see
// .N .P .Percent, all pre-formatted with Precision decimals.
type Options struct {
	Precision          int
	QuantitativeFormat string
	QualitativeFormat  string
}

// DefaultOptions returns two decimals and the default cell formats
func DefaultOptions() Options {
	return Options{
		Precision:          2,
		QuantitativeFormat: DefaultQuantitativeFormat,
		QualitativeFormat:  DefaultQualitativeFormat,
	}
}

// Table is a rendered table; Rows[0] is the header
type Table struct {
	Title string     `json:"title,omitempty"`
	Rows  [][]string `json:"rows"`
}

// Header returns the first row
func (t Table) Header() []string {
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

// Body returns every row after the header
func (t Table) Body() [][]string {
	if len(t.Rows) < 2 {
		return nil
	}
	return t.Rows[1:]
}

// Report renders tables from one analysis
type Report struct {
	analysis     *stats.Analysis
	precision    int
	quantitative *template.Template
	qualitative  *template.Template
}

// New prepares a report; empty formats fall back to the defaults
func New(analysis *stats.Analysis, opts Options) (*Report, error) {
	if opts.QuantitativeFormat == "" {
		opts.QuantitativeFormat = DefaultQuantitativeFormat
	}
	if opts.QualitativeFormat == "" {
		opts.QualitativeFormat = DefaultQualitativeFormat
	}
	if opts.Precision < 0 {
		return nil, errors.ConfigInvalid("precision must not be negative")
	}

	quant, err := template.New("quantitative").Option("missingkey=error").Parse(opts.QuantitativeFormat)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "quantitative format"))
	}
	qual, err := template.New("qualitative").Option("missingkey=error").Parse(opts.QualitativeFormat)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "qualitative format"))
	}

	// unknown fields only surface on execution
	if err := quant.Execute(io.Discard, quantitativeFields{}); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "quantitative format"))
	}
	if err := qual.Execute(io.Discard, qualitativeFields{}); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "qualitative format"))
	}
	return &Report{analysis: analysis, precision: opts.Precision, quantitative: quant, qualitative: qual}, nil
}

// DescriptiveTable renders one block per variable with the global summary,
// the summary of every axis category and the test of every axis. Nil
// variables or axes mean all of those in the analysis.
func (r *Report) DescriptiveTable(variables, axes []string) (Table, error) {
	variables, axes, err := r.resolve(variables, axes)
	if err != nil {
		return Table{}, err
	}

	categories := make([][]dataset.Value, len(axes))
	header := []string{"", "", ""}
	for i, axis := range axes {
		categories[i] = r.axisCategories(axis, variables)
		for _, c := range categories[i] {
			header = append(header, axis+" "+label(c))
		}
		header = append(header, "Test", "Parameter", "p")
	}

	rows := [][]string{header}
	for _, name := range variables {
		result := r.analysis.Results[name]
		switch global := result.Global.(type) {
		case *stats.QuantitativeSummary:
			row := []string{name + " mean +/- std (n)", "", r.quantitativeCell(global)}
			for i, axis := range axes {
				for _, c := range categories[i] {
					if s, ok := result.Subgroup(axis, c); ok {
						row = append(row, r.quantitativeCell(s.(*stats.QuantitativeSummary)))
					} else {
						row = append(row, "NA")
					}
				}
				row = append(row, r.testCells(result.Tests[axis])...)
			}
			rows = append(rows, row)

		case *stats.QualitativeSummary:
			title := []string{name + " no. (%)", "", ""}
			for i, axis := range axes {
				title = append(title, make([]string, len(categories[i]))...)
				title = append(title, r.testCells(result.Tests[axis])...)
			}
			rows = append(rows, title)

			for _, count := range global.Categories {
				row := []string{"", label(count.Category), r.qualitativeCell(count.N, count.P)}
				for i, axis := range axes {
					for _, c := range categories[i] {
						n, p := 0, 0.0
						if s, ok := result.Subgroup(axis, c); ok {
							if cc, ok := s.(*stats.QualitativeSummary).Lookup(count.Category); ok {
								n, p = cc.N, cc.P
							}
						}
						row = append(row, r.qualitativeCell(n, p))
					}
					row = append(row, "", "", "")
				}
				rows = append(rows, row)
			}
		}
	}
	return Table{Title: "Descriptive table", Rows: rows}, nil
}

// DetailTable expands one variable: the global summary, then per axis the
// test and one row per axis category
func (r *Report) DetailTable(variable string, axes []string) (Table, error) {
	variables, axes, err := r.resolve([]string{variable}, axes)
	if err != nil {
		return Table{}, err
	}
	result := r.analysis.Results[variables[0]]

	var rows [][]string
	switch global := result.Global.(type) {
	case *stats.QuantitativeSummary:
		rows = append(rows,
			[]string{variable, "", "n", "mean", "std", "CI 95%", "Test", "Parameter", "p"},
			append([]string{"", ""}, r.quantitativeDetail(global)...),
		)
		rows = append(rows, make([]string, len(rows[0])))
		for _, axis := range axes {
			rows = append(rows, append([]string{axis, "", "", "", "", ""}, r.testCells(result.Tests[axis])...))
			for _, g := range result.Subgroups[axis] {
				rows = append(rows, append([]string{"", label(g.Category)}, r.quantitativeDetail(g.Summary.(*stats.QuantitativeSummary))...))
			}
		}

	case *stats.QualitativeSummary:
		header := []string{variable, "", "n"}
		for _, c := range global.Categories {
			header = append(header, label(c.Category))
		}
		header = append(header, "Test", "Parameter", "p")
		rows = append(rows, header, r.qualitativeDetail("", global, global))
		rows = append(rows, make([]string, len(header)))
		for _, axis := range axes {
			title := append([]string{axis, "", ""}, make([]string, len(global.Categories))...)
			rows = append(rows, append(title, r.testCells(result.Tests[axis])...))
			for _, g := range result.Subgroups[axis] {
				rows = append(rows, r.qualitativeDetail(label(g.Category), global, g.Summary.(*stats.QualitativeSummary)))
			}
		}
	}
	return Table{Title: variable, Rows: rows}, nil
}

func (r *Report) quantitativeDetail(s *stats.QuantitativeSummary) []string {
	return []string{
		formatValue(float64(s.N), 0),
		formatValue(s.Mean, r.precision),
		formatValue(s.Std, r.precision),
		formatValue(s.CI95[0], r.precision) + " - " + formatValue(s.CI95[1], r.precision),
		"", "", "",
	}
}

// qualitativeDetail lays out s along the categories of the global summary
func (r *Report) qualitativeDetail(name string, global, s *stats.QualitativeSummary) []string {
	row := []string{"", name, formatValue(float64(s.Total), 0)}
	for _, c := range global.Categories {
		n, p := 0, 0.0
		if cc, ok := s.Lookup(c.Category); ok {
			n, p = cc.N, cc.P
		}
		row = append(row, r.qualitativeCell(n, p))
	}
	return append(row, "", "", "")
}

func (r *Report) testCells(test stats.TestResult) []string {
	if test == nil {
		return []string{"", "", ""}
	}
	statistic, p, ok := test.Outcome()
	if !ok {
		return []string{NoTestPlaceholder, "", ""}
	}
	return []string{string(test.Name()), formatValue(statistic, r.precision), FormatPValue(p)}
}

// quantitativeFields are the names a quantitative cell format can use
type quantitativeFields struct{ Mean, Std, N string }

// qualitativeFields are the names a qualitative cell format can use
type qualitativeFields struct{ N, P, Percent string }

func (r *Report) quantitativeCell(s *stats.QuantitativeSummary) string {
	return r.render(r.quantitative, quantitativeFields{
		Mean: fixed(s.Mean, r.precision),
		Std:  fixed(s.Std, r.precision),
		N:    formatValue(float64(s.N), 0),
	})
}

func (r *Report) qualitativeCell(n int, p float64) string {
	return r.render(r.qualitative, qualitativeFields{
		N:       formatValue(float64(n), 0),
		P:       fixed(p, r.precision),
		Percent: fixed(100*p, r.precision),
	})
}

func (r *Report) render(tmpl *template.Template, data interface{}) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "NA"
	}
	return buf.String()
}

// resolve defaults and checks the requested names against the analysis
func (r *Report) resolve(variables, axes []string) ([]string, []string, error) {
	if variables == nil {
		variables = r.analysis.Variables
	}
	if axes == nil {
		axes = r.analysis.Axes
	}

	var missing []string
	for _, v := range variables {
		if _, ok := r.analysis.Results[v]; !ok {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return nil, nil, errors.MissingNames("variables", missing)
	}

	known := make(map[string]bool, len(r.analysis.Axes))
	for _, a := range r.analysis.Axes {
		known[a] = true
	}
	for _, a := range axes {
		if !known[a] {
			missing = append(missing, a)
		}
	}
	if len(missing) > 0 {
		return nil, nil, errors.MissingNames("axes", missing)
	}
	return variables, axes, nil
}

// axisCategories is the union of the axis categories across variables, in
// first-appearance order
func (r *Report) axisCategories(axis string, variables []string) []dataset.Value {
	seen := make(map[dataset.Value]bool)
	var out []dataset.Value
	for _, v := range variables {
		for _, g := range r.analysis.Results[v].Subgroups[axis] {
			if !seen[g.Category] {
				seen[g.Category] = true
				out = append(out, g.Category)
			}
		}
	}
	return out
}

func label(v dataset.Value) string {
	return v.String()
}
