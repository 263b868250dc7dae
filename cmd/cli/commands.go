package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gounivar/adapters/excel"
	"gounivar/internal/api"
	"gounivar/internal/config"
	"gounivar/internal/logging"
	"gounivar/internal/report"
	"gounivar/internal/testkit"
)

func newAnalyzeCmd() *cobra.Command {
	var in inputFlags
	var out string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Describe variables and test them along each axis, as JSON",
		Long: `Run the analysis and print every result as JSON: global and per-category
summaries, the selected test per axis and the assumption checks behind it.

Example: gounivar analyze --data cohort.csv --qual sex --quant age,score --axis arm`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := in.resolve(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			result, err := j.analyze(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				file, err := os.Create(out)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	in.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func newTableCmd() *cobra.Command {
	var in inputFlags
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Render the descriptive table",
		Long: `Render one block per variable: the global summary, the summary for every
axis category and the selected test with its statistic and p-value.

Example: gounivar table --plan plan.yaml --out table.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := in.resolve(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			result, err := j.analyze(cmd.Context())
			if err != nil {
				return err
			}
			rep, err := report.New(result, out.reportOptions(j))
			if err != nil {
				return err
			}
			table, err := rep.DescriptiveTable(nil, nil)
			if err != nil {
				return err
			}
			return out.writeTable(cmd, j, table)
		},
	}

	in.register(cmd)
	out.register(cmd, "")
	return cmd
}

func newDetailCmd() *cobra.Command {
	var in inputFlags
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "detail [variable]",
		Short: "Render the detail table of one variable",
		Long: `Render n, mean, std and 95% CI (or category counts) for one variable,
globally and for every axis category, with the test of each axis.

Example: gounivar detail age --data cohort.csv --quant age --axis arm,site`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := in.resolve(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			result, err := j.analyze(cmd.Context())
			if err != nil {
				return err
			}
			rep, err := report.New(result, out.reportOptions(j))
			if err != nil {
				return err
			}
			table, err := rep.DetailTable(args[0], nil)
			if err != nil {
				return err
			}
			return out.writeTable(cmd, j, table)
		},
	}

	in.register(cmd)
	out.register(cmd, "")
	return cmd
}

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}
			return serve(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (default $GOUNIVAR_PORT or 8080)")
	return cmd
}

func serve(cmd *cobra.Command, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(api.Config{
		Concurrency:  cfg.Analysis.Concurrency,
		Precision:    cfg.Analysis.Precision,
		AssumeNormal: cfg.Analysis.AssumeNormal,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Logger:       logging.New(cfg.LogLevel, nil),
	})
	return server.ListenAndServe(ctx, ":"+cfg.Server.Port, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout)
}

func newGenerateCmd() *cobra.Command {
	genConfig := testkit.DefaultCohortConfig()
	var out, format string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic cohort dataset",
		Long: `Write a deterministic synthetic cohort (arm, site, sex, age, score,
biomarker, response) for trying the other commands.

Example: gounivar generate --subjects 500 --seed 7 --out cohort.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			header, rows := testkit.NewCohortGenerator(genConfig).Records()
			table := report.Table{Title: "cohort", Rows: append([][]string{header}, rows...)}

			f := report.FormatCSV
			if format != "" {
				parsed, err := report.ParseFormat(format)
				if err != nil {
					return err
				}
				f = parsed
			} else if out != "" {
				f = report.FormatFromPath(out)
				if f == report.FormatRaw {
					f = report.FormatCSV
				}
			}
			if f == report.FormatXLSX {
				table.Title = excel.DefaultSheet
			}

			if out == "" {
				return report.Write(cmd.OutOrStdout(), table, f)
			}
			file, err := os.Create(out)
			if err != nil {
				return err
			}
			defer file.Close()
			if err := report.Write(file, table, f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d subjects to %s\n", len(rows), out)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&genConfig.Subjects, "subjects", genConfig.Subjects, "Number of subjects")
	flags.StringSliceVar(&genConfig.Sites, "sites", genConfig.Sites, "Site names")
	flags.Float64Var(&genConfig.MissingRate, "missing-rate", genConfig.MissingRate, "Share of missing cells in measured columns")
	flags.Float64Var(&genConfig.TreatmentEffect, "effect", genConfig.TreatmentEffect, "Score shift in the treatment arm")
	flags.Int64Var(&genConfig.Seed, "seed", genConfig.Seed, "Random seed")
	flags.StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	flags.StringVar(&format, "format", "", "csv|tsv|xlsx (default from --out extension, else csv)")
	return cmd
}
