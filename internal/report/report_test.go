package report

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"gounivar/domain/stats"
	"gounivar/internal/analysis"
	"gounivar/internal/errors"
	"gounivar/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func binaryAnalysis(t *testing.T) *stats.Analysis {
	t.Helper()
	a, err := analysis.New(testkit.BalancedBinary(400)).Analyze(context.Background(),
		[]stats.Variable{{Name: "y", Kind: stats.Qualitative}}, []string{"x"})
	require.NoError(t, err)
	return a
}

func groupsAnalysis(t *testing.T) *stats.Analysis {
	t.Helper()
	ds := testkit.Groups([]string{"A", "B"}, []float64{1, 2, 3}, []float64{4, 5, 6})
	a, err := analysis.New(ds).Analyze(context.Background(),
		[]stats.Variable{{Name: "value", Kind: stats.Quantitative}}, []string{"group"})
	require.NoError(t, err)
	return a
}

func TestFormatPValue(t *testing.T) {
	tests := []struct {
		p    float64
		want string
	}{
		{1, "1"},
		{0.5, "0.5"},
		{0.0123, "0.012"},
		{0.007, "< 0.01"},
		{0.005, "< 0.005"},
		{0.003, "< 0.005"},
		{0.0004, "< 10^-3"},
		{1e-20, "< 10^-16"},
		{0, "< 10^-16"},
		{math.NaN(), "NA"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPValue(tt.p), "p=%v", tt.p)
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "1.24", formatValue(1.2351, 2))
	assert.Equal(t, "3", formatValue(3.0, 2))
	assert.Equal(t, "NA", formatValue(math.NaN(), 2))
	assert.Equal(t, "Inf", formatValue(math.Inf(1), 2))
	assert.Equal(t, "2.50", fixed(2.5, 2))
}

func TestDescriptiveTableQualitative(t *testing.T) {
	r, err := New(binaryAnalysis(t), DefaultOptions())
	require.NoError(t, err)

	table, err := r.DescriptiveTable(nil, nil)
	require.NoError(t, err)

	want := [][]string{
		{"", "", "", "x A", "x B", "Test", "Parameter", "p"},
		{"y no. (%)", "", "", "", "", "khi2", "0", "1"},
		{"", "0", "200 (50.00%)", "100 (50.00%)", "100 (50.00%)", "", "", ""},
		{"", "1", "200 (50.00%)", "100 (50.00%)", "100 (50.00%)", "", "", ""},
	}
	assert.Equal(t, want, table.Rows)
}

func TestDescriptiveTableQuantitative(t *testing.T) {
	r, err := New(groupsAnalysis(t), DefaultOptions())
	require.NoError(t, err)

	table, err := r.DescriptiveTable([]string{"value"}, []string{"group"})
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, []string{"", "", "", "group A", "group B", "Test", "Parameter", "p"}, table.Header())
	row := table.Rows[1]
	assert.Equal(t, []string{"value mean +/- std (n)", "", "3.50 +/- 1.87 (6)", "2.00 +/- 1.00 (3)", "5.00 +/- 1.00 (3)"}, row[:5])
	assert.NotEmpty(t, row[5])
}

func TestDescriptiveTableGlobalOnly(t *testing.T) {
	r, err := New(groupsAnalysis(t), DefaultOptions())
	require.NoError(t, err)

	table, err := r.DescriptiveTable(nil, []string{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"", "", ""},
		{"value mean +/- std (n)", "", "3.50 +/- 1.87 (6)"},
	}, table.Rows)
}

func TestCustomFormats(t *testing.T) {
	r, err := New(groupsAnalysis(t), Options{Precision: 1, QuantitativeFormat: "{{.Mean}} [{{.N}}]"})
	require.NoError(t, err)

	table, err := r.DescriptiveTable(nil, []string{})
	require.NoError(t, err)
	assert.Equal(t, "3.5 [6]", table.Rows[1][2])

	_, err = New(groupsAnalysis(t), Options{QuantitativeFormat: "{{.Mean"})
	assert.True(t, errors.IsCode(err, errors.CodeConfigInvalid))

	_, err = New(groupsAnalysis(t), Options{Precision: -1})
	assert.True(t, errors.IsCode(err, errors.CodeConfigInvalid))
}

func TestFormatsRejectUnknownFields(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"quantitative", Options{QuantitativeFormat: "{{.Foo}}"}},
		{"qualitative", Options{QualitativeFormat: "{{.N}} of {{.Total}}"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(groupsAnalysis(t), tt.opts)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeConfigInvalid))
			assert.Contains(t, err.Error(), tt.name+" format")
		})
	}

	r, err := New(groupsAnalysis(t), Options{Precision: 2, QualitativeFormat: "{{.N}}/{{.P}}"})
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestDetailTableQuantitative(t *testing.T) {
	r, err := New(groupsAnalysis(t), DefaultOptions())
	require.NoError(t, err)

	table, err := r.DetailTable("value", nil)
	require.NoError(t, err)
	require.Len(t, table.Rows, 6)

	assert.Equal(t, []string{"value", "", "n", "mean", "std", "CI 95%", "Test", "Parameter", "p"}, table.Rows[0])
	assert.Equal(t, []string{"", "", "6", "3.5", "1.87", "2 - 5", "", "", ""}, table.Rows[1])
	assert.Equal(t, "group", table.Rows[3][0])
	assert.Equal(t, []string{"", "A", "3", "2", "1"}, table.Rows[4][:5])
	assert.Equal(t, []string{"", "B", "3", "5", "1"}, table.Rows[5][:5])
	for _, row := range table.Rows {
		assert.Len(t, row, 9)
	}
}

func TestDetailTableQualitative(t *testing.T) {
	r, err := New(binaryAnalysis(t), DefaultOptions())
	require.NoError(t, err)

	table, err := r.DetailTable("y", []string{"x"})
	require.NoError(t, err)

	want := [][]string{
		{"y", "", "n", "0", "1", "Test", "Parameter", "p"},
		{"", "", "400", "200 (50.00%)", "200 (50.00%)", "", "", ""},
		{"", "", "", "", "", "", "", ""},
		{"x", "", "", "", "", "khi2", "0", "1"},
		{"", "A", "200", "100 (50.00%)", "100 (50.00%)", "", "", ""},
		{"", "B", "200", "100 (50.00%)", "100 (50.00%)", "", "", ""},
	}
	assert.Equal(t, want, table.Rows)
}

func TestUnknownNames(t *testing.T) {
	r, err := New(binaryAnalysis(t), DefaultOptions())
	require.NoError(t, err)

	_, err = r.DescriptiveTable([]string{"nope"}, nil)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))

	_, err = r.DetailTable("y", []string{"z"})
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestNoTestPlaceholder(t *testing.T) {
	r := &Report{precision: 2}
	assert.Equal(t, []string{NoTestPlaceholder, "", ""}, r.testCells(stats.NoTestResult{}))
	assert.Equal(t, []string{"", "", ""}, r.testCells(nil))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("md")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)

	_, err = ParseFormat("pdf")
	assert.True(t, errors.IsCode(err, errors.CodeUnsupportedFormat))

	assert.Equal(t, FormatXLSX, FormatFromPath("out/table.XLSX"))
	assert.Equal(t, FormatHTML, FormatFromPath("table.htm"))
	assert.Equal(t, FormatRaw, FormatFromPath("table"))
}

var sampleTable = Table{
	Title: "Descriptive table",
	Rows: [][]string{
		{"name", "value"},
		{"alpha", "1"},
		{"beta", "2, 3"},
	},
}

func TestWriteDelimited(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTable, FormatCSV))
	assert.Equal(t, "name,value\nalpha,1\nbeta,\"2, 3\"\n", buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, sampleTable, FormatTSV))
	assert.Equal(t, "name\tvalue\nalpha\t1\nbeta\t2, 3\n", buf.String())
}

func TestWriteRaw(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTable, FormatRaw))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Descriptive table", lines[0])
	assert.Equal(t, strings.Index(lines[1], "value"), strings.Index(lines[2], "1"))
}

func TestWriteMarkdownAndHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTable, FormatMarkdown))
	assert.Contains(t, buf.String(), "## Descriptive table")
	assert.Contains(t, buf.String(), "alpha")
	assert.Contains(t, buf.String(), "|")

	buf.Reset()
	require.NoError(t, Write(&buf, sampleTable, FormatHTML))
	assert.Contains(t, buf.String(), "<table>")
	assert.Contains(t, buf.String(), "<td>beta</td>")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTable, FormatJSON))

	var decoded struct {
		Title  string     `json:"title"`
		Header []string   `json:"header"`
		Rows   [][]string `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Descriptive table", decoded.Title)
	assert.Equal(t, []string{"name", "value"}, decoded.Header)
	assert.Len(t, decoded.Rows, 2)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTable, FormatXLSX))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Descriptive table")
	require.NoError(t, err)
	assert.Equal(t, sampleTable.Rows, rows)
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, sampleTable, Format("pdf"))
	assert.True(t, errors.IsCode(err, errors.CodeUnsupportedFormat))
}
