package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gounivar/adapters/excel"
	"gounivar/adapters/sqlsource"
	"gounivar/domain/dataset"
	"gounivar/domain/stats"
	"gounivar/internal/analysis"
	"gounivar/internal/config"
	"gounivar/internal/describe"
	"gounivar/internal/errors"
	"gounivar/internal/logging"
	"gounivar/internal/plan"
	"gounivar/internal/report"
)

// inputFlags select the dataset and what to analyse. A plan file supplies
// defaults; explicit flags win.
type inputFlags struct {
	data         string
	sheet        string
	driver       string
	dsn          string
	query        string
	plan         string
	qual         []string
	quant        []string
	axes         []string
	assumeNormal bool
	verbose      bool
}

func (f *inputFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.data, "data", "", "Dataset file (.csv, .tsv, .xlsx)")
	flags.StringVar(&f.sheet, "sheet", "", "Worksheet of an .xlsx dataset (default $GOUNIVAR_SHEET or Sheet1)")
	flags.StringVar(&f.driver, "driver", "", "SQL driver: postgres|sqlite (default $GOUNIVAR_DATABASE_DRIVER)")
	flags.StringVar(&f.dsn, "dsn", "", "SQL data source name (default $GOUNIVAR_DATABASE_URL)")
	flags.StringVar(&f.query, "query", "", "SQL query returning the dataset")
	flags.StringVar(&f.plan, "plan", "", "YAML analysis plan")
	flags.StringSliceVar(&f.qual, "qual", nil, "Qualitative variables")
	flags.StringSliceVar(&f.quant, "quant", nil, "Quantitative variables")
	flags.StringSliceVar(&f.axes, "axis", nil, "Grouping axes")
	flags.BoolVar(&f.assumeNormal, "assume-normal", false, "Treat every group as normally distributed")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "Log progress to stderr")
}

// outputFlags select the rendering
type outputFlags struct {
	format    string
	out       string
	precision int
}

func (f *outputFlags) register(cmd *cobra.Command, defaultFormat string) {
	flags := cmd.Flags()
	flags.StringVar(&f.format, "format", defaultFormat, "Output format: raw|csv|tsv|xlsx|markdown|html|json (default from --out extension)")
	flags.StringVarP(&f.out, "out", "o", "", "Output file (default stdout)")
	flags.IntVar(&f.precision, "precision", -1, "Decimals in rendered numbers (default $GOUNIVAR_PRECISION)")
}

// job is a resolved analysis request
type job struct {
	ds           *dataset.Dataset
	variables    []stats.Variable
	axes         []string
	assumeNormal bool
	output       plan.Output
	cfg          *config.Config
	logger       *logging.Logger
}

func (f *inputFlags) resolve(ctx context.Context, cmd *cobra.Command) (*job, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := logging.LevelError
	if f.verbose {
		level = cfg.LogLevel
		if level < logging.LevelInfo {
			level = logging.LevelInfo
		}
	}
	j := &job{
		cfg:          cfg,
		logger:       logging.New(level, log.New(os.Stderr, "", log.LstdFlags)),
		assumeNormal: cfg.Analysis.AssumeNormal,
	}

	source := plan.Source{Path: f.data, Sheet: f.sheet, Driver: f.driver, DSN: f.dsn, Query: f.query}
	if f.plan != "" {
		p, err := plan.Load(f.plan)
		if err != nil {
			return nil, err
		}
		source = mergeSource(p.Dataset, source)
		j.variables = p.StatsVariables()
		j.axes = p.Axes
		j.assumeNormal = p.AssumeNormal
		j.output = p.Output
	}

	if len(f.qual) > 0 || len(f.quant) > 0 {
		j.variables = variablesOf(f.qual, f.quant)
	}
	if cmd.Flags().Changed("axis") {
		j.axes = f.axes
	}
	if cmd.Flags().Changed("assume-normal") {
		j.assumeNormal = f.assumeNormal
	}

	j.ds, err = loadDataset(ctx, source, cfg)
	if err != nil {
		return nil, err
	}

	if len(j.variables) == 0 {
		j.variables = withoutAxes(describe.InferKinds(j.ds, describe.DefaultMaxCodes), j.axes)
		j.logger.With("CLI").Info("no variables given, inferred %d from the dataset", len(j.variables))
	}
	return j, nil
}

func (j *job) analyze(ctx context.Context) (*stats.Analysis, error) {
	analyzer := analysis.New(j.ds,
		analysis.WithConcurrency(j.cfg.Analysis.Concurrency),
		analysis.WithAssumeNormal(j.assumeNormal),
		analysis.WithLogger(j.logger),
	)
	return analyzer.Analyze(ctx, j.variables, j.axes)
}

// mergeSource overlays non-empty flag values on the plan's source
func mergeSource(base, override plan.Source) plan.Source {
	if override.Path != "" || override.Query != "" {
		base.Path, base.Query = override.Path, override.Query
	}
	if override.Sheet != "" {
		base.Sheet = override.Sheet
	}
	if override.Driver != "" {
		base.Driver = override.Driver
	}
	if override.DSN != "" {
		base.DSN = override.DSN
	}
	return base
}

func variablesOf(qual, quant []string) []stats.Variable {
	out := make([]stats.Variable, 0, len(qual)+len(quant))
	for _, name := range qual {
		out = append(out, stats.Variable{Name: name, Kind: stats.Qualitative})
	}
	for _, name := range quant {
		out = append(out, stats.Variable{Name: name, Kind: stats.Quantitative})
	}
	return out
}

func withoutAxes(variables []stats.Variable, axes []string) []stats.Variable {
	skip := make(map[string]bool, len(axes))
	for _, a := range axes {
		skip[a] = true
	}
	out := variables[:0:0]
	for _, v := range variables {
		if !skip[v.Name] {
			out = append(out, v)
		}
	}
	return out
}

func loadDataset(ctx context.Context, source plan.Source, cfg *config.Config) (*dataset.Dataset, error) {
	if source.IsSQL() {
		driver, dsn := source.Driver, source.DSN
		if driver == "" {
			driver = cfg.Database.Driver
		}
		if dsn == "" {
			dsn = cfg.Database.URL
		}
		src, err := sqlsource.Open(driver, dsn)
		if err != nil {
			return nil, err
		}
		defer src.Close()
		return src.Load(ctx, source.Query)
	}

	if source.Path == "" {
		return nil, errors.ConfigInvalid("no dataset: pass --data, --query or --plan")
	}
	sheet := source.Sheet
	if sheet == "" {
		sheet = cfg.Data.Sheet
	}
	return excel.NewDataReader(source.Path, excel.WithSheet(sheet)).ReadDataset()
}

// reportOptions combines flags, plan and environment; flags win
func (f *outputFlags) reportOptions(j *job) report.Options {
	opts := report.DefaultOptions()
	opts.Precision = j.cfg.Analysis.Precision
	if j.output.Precision != nil {
		opts.Precision = *j.output.Precision
	}
	if f.precision >= 0 {
		opts.Precision = f.precision
	}
	return opts
}

// writeTable renders to --out or stdout
func (f *outputFlags) writeTable(cmd *cobra.Command, j *job, table report.Table) error {
	path := f.out
	if path == "" {
		path = j.output.Path
	}

	format, err := f.resolveFormat(j, path)
	if err != nil {
		return err
	}

	if path == "" {
		return report.Write(cmd.OutOrStdout(), table, format)
	}
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if err := report.Write(file, table, format); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s)\n", path, format)
	return nil
}

func (f *outputFlags) resolveFormat(j *job, path string) (report.Format, error) {
	name := f.format
	if name == "" {
		name = j.output.Format
	}
	if name == "" {
		return report.FormatFromPath(path), nil
	}
	return report.ParseFormat(strings.TrimSpace(name))
}
