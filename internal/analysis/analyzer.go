// Package analysis orchestrates a univariate analysis: for every declared
// variable it describes the complete cases globally and per axis category,
// then runs the test chosen by the matching selector.
package analysis

import (
	"context"
	"fmt"
	"time"

	"gounivar/domain/core"
	"gounivar/domain/dataset"
	"gounivar/domain/stats"
	"gounivar/internal/describe"
	"gounivar/internal/errors"
	"gounivar/internal/logging"
	"gounivar/internal/selection"

	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// Analyzer runs analyses over one read-only dataset. It is safe for
// concurrent use.
type Analyzer struct {
	ds           *dataset.Dataset
	concurrency  int
	assumeNormal bool
	logger       *logging.Logger
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithConcurrency bounds how many variables are analysed at once
func WithConcurrency(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithAssumeNormal makes the continuous selector treat every group as normal
func WithAssumeNormal(assume bool) Option {
	return func(a *Analyzer) {
		a.assumeNormal = assume
	}
}

// WithLogger sets the logger; the default discards everything
func WithLogger(logger *logging.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an analyzer for the dataset
func New(ds *dataset.Dataset, opts ...Option) *Analyzer {
	a := &Analyzer{
		ds:          ds,
		concurrency: defaultConcurrency,
		logger:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("Analyzer")
	return a
}

// Analyze describes and tests every variable against every axis. Variables
// are analysed concurrently; the result depends only on the inputs.
func (a *Analyzer) Analyze(ctx context.Context, variables []stats.Variable, axes []string) (*stats.Analysis, error) {
	if err := a.validate(variables, axes); err != nil {
		return nil, err
	}

	start := time.Now()
	a.logger.Info("analysing %d variables across %d axes (%d rows)", len(variables), len(axes), a.ds.Len())

	results := make([]*stats.AnalysisResult, len(variables))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, v := range variables {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := a.analyzeVariable(v, axes)
			if err != nil {
				return errors.Wrapf(err, "analyse %q", v.Name)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.logger.Error("analysis failed: %v", err)
		return nil, err
	}

	names := make([]string, len(variables))
	byName := make(map[string]*stats.AnalysisResult, len(variables))
	kinds := make([]string, len(variables))
	for i, v := range variables {
		names[i] = v.Name
		kinds[i] = v.Name + ":" + string(v.Kind)
		byName[v.Name] = results[i]
	}

	analysis := &stats.Analysis{
		ID: core.NewID(),
		InputHash: core.ComputeAnalysisHash(a.ds.Fingerprint(), kinds, axes, map[string]interface{}{
			"assume_normal": a.assumeNormal,
		}),
		Variables: names,
		Axes:      append([]string(nil), axes...),
		Results:   byName,
	}
	a.logger.Info("analysis %s done in %v", analysis.ID, time.Since(start))
	return analysis, nil
}

func (a *Analyzer) validate(variables []stats.Variable, axes []string) error {
	seen := make(map[string]bool, len(variables))
	var missing []string
	for _, v := range variables {
		if err := v.Kind.Validate(v.Name); err != nil {
			return err
		}
		if seen[v.Name] {
			return errors.ValidationError(fmt.Sprintf("variable %q declared twice", v.Name))
		}
		seen[v.Name] = true
		if !a.ds.Has(v.Name) {
			missing = append(missing, v.Name)
		}
	}
	for _, axis := range axes {
		if !a.ds.Has(axis) {
			missing = append(missing, axis)
		}
	}
	if len(missing) > 0 {
		return errors.MissingNames("columns", missing)
	}
	return nil
}

func (a *Analyzer) analyzeVariable(v stats.Variable, axes []string) (*stats.AnalysisResult, error) {
	global, err := a.ds.Subtable(v.Name)
	if err != nil {
		return nil, err
	}
	summary, err := describeColumn(global, v)
	if err != nil {
		return nil, err
	}

	result := &stats.AnalysisResult{
		Variable: v.Name,
		Kind:     v.Kind,
		N:        global.Len(),
		Global:   summary,
	}
	if len(axes) == 0 {
		return result, nil
	}

	result.Subgroups = make(map[string][]stats.Subgroup, len(axes))
	result.Tests = make(map[string]stats.TestResult, len(axes))
	for _, axis := range axes {
		subgroups, err := a.describeByAxis(v, axis)
		if err != nil {
			return nil, err
		}
		result.Subgroups[axis] = subgroups

		switch v.Kind {
		case stats.Qualitative:
			table, err := selection.BuildContingency(a.ds, v.Name, axis)
			if err != nil {
				return nil, err
			}
			result.Tests[axis] = selection.SelectCategorical(table)
		case stats.Quantitative:
			groups, err := selection.GroupsOf(a.ds, v.Name, axis)
			if err != nil {
				return nil, err
			}
			test, assumptions := selection.SelectContinuous(groups, selection.Options{AssumeNormal: a.assumeNormal})
			result.Tests[axis] = test
			if result.Assumptions == nil {
				result.Assumptions = make(map[string]*stats.Assumptions, len(axes))
			}
			result.Assumptions[axis] = assumptions
		}
		a.logger.Debug("%s by %s: %s", v.Name, axis, result.Tests[axis].Name())
	}
	return result, nil
}

// describeByAxis summarises the variable within each axis category, in
// first-appearance order
func (a *Analyzer) describeByAxis(v stats.Variable, axis string) ([]stats.Subgroup, error) {
	sub, err := a.ds.Subtable(v.Name, axis)
	if err != nil {
		return nil, err
	}
	categories, err := sub.Distinct(axis)
	if err != nil {
		return nil, err
	}

	subgroups := make([]stats.Subgroup, 0, len(categories))
	for _, category := range categories {
		part, err := sub.Where(axis, category)
		if err != nil {
			return nil, err
		}
		summary, err := describeColumn(part, v)
		if err != nil {
			return nil, err
		}
		subgroups = append(subgroups, stats.Subgroup{Category: category, Summary: summary})
	}
	return subgroups, nil
}

func describeColumn(ds *dataset.Dataset, v stats.Variable) (stats.Summary, error) {
	switch v.Kind {
	case stats.Qualitative:
		values, err := ds.Column(v.Name)
		if err != nil {
			return nil, err
		}
		return describe.Qualitative(values), nil
	case stats.Quantitative:
		values, err := ds.Floats(v.Name)
		if err != nil {
			return nil, err
		}
		return describe.Quantitative(values), nil
	default:
		return nil, v.Kind.Validate(v.Name)
	}
}
