package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gounivar/domain/stats"
	"gounivar/internal/errors"
	"gounivar/internal/plan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func cohortFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cohort.csv")
	_, err := run(t, "generate", "--subjects", "120", "--out", path)
	require.NoError(t, err)
	return path
}

func TestGenerateWritesCSV(t *testing.T) {
	out, err := run(t, "generate", "--subjects", "5")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "id,arm,site,sex,age,score,biomarker,response", lines[0])
}

func TestAnalyzeCommand(t *testing.T) {
	data := cohortFile(t)

	out, err := run(t, "analyze", "--data", data, "--qual", "sex", "--quant", "age", "--axis", "arm")
	require.NoError(t, err)

	var analysis struct {
		Variables []string `json:"variables"`
		Axes      []string `json:"axes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &analysis))
	assert.Equal(t, []string{"sex", "age"}, analysis.Variables)
	assert.Equal(t, []string{"arm"}, analysis.Axes)
}

func TestTableCommand(t *testing.T) {
	data := cohortFile(t)

	out, err := run(t, "table", "--data", data, "--qual", "sex", "--quant", "age", "--axis", "arm", "--format", "csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, ",,,arm "), out)
	assert.Contains(t, out, "age mean +/- std (n)")
	assert.Contains(t, out, "sex no. (%)")
}

func TestDetailCommandFromPlan(t *testing.T) {
	data := cohortFile(t)
	dir := filepath.Dir(data)
	planPath := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(planPath, []byte(`
dataset:
  path: cohort.csv
variables:
  - {name: score, kind: quantitative}
axes: [arm]
output:
  format: json
  precision: 1
`), 0o644))

	out, err := run(t, "detail", "score", "--plan", planPath)
	require.NoError(t, err)

	var table struct {
		Title  string   `json:"title"`
		Header []string `json:"header"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &table))
	assert.Equal(t, "score", table.Title)
	assert.Equal(t, "CI 95%", table.Header[5])
}

func TestTableWritesFile(t *testing.T) {
	data := cohortFile(t)
	target := filepath.Join(t.TempDir(), "table.md")

	_, err := run(t, "table", "--data", data, "--quant", "age", "--axis", "site", "--out", target)
	require.NoError(t, err)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(content), "## Descriptive table")
}

func TestMissingDataset(t *testing.T) {
	_, err := run(t, "table", "--quant", "age")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConfigInvalid))
}

func TestVariablesOf(t *testing.T) {
	assert.Equal(t, []stats.Variable{
		{Name: "sex", Kind: stats.Qualitative},
		{Name: "age", Kind: stats.Quantitative},
	}, variablesOf([]string{"sex"}, []string{"age"}))
}

func TestWithoutAxes(t *testing.T) {
	vars := []stats.Variable{{Name: "arm"}, {Name: "age"}, {Name: "site"}}
	assert.Equal(t, []stats.Variable{{Name: "age"}}, withoutAxes(vars, []string{"arm", "site"}))
	assert.Len(t, vars, 3)
}

func TestMergeSource(t *testing.T) {
	base := plan.Source{Path: "a.csv", Sheet: "S"}

	merged := mergeSource(base, plan.Source{Query: "SELECT 1", Driver: "sqlite", DSN: "x.db"})
	assert.Equal(t, plan.Source{Sheet: "S", Driver: "sqlite", DSN: "x.db", Query: "SELECT 1"}, merged)

	assert.Equal(t, base, mergeSource(base, plan.Source{}))
}
