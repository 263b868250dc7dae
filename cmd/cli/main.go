package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gounivar",
		Short: "Describe variables and select significance tests across groups",
		Long: `gounivar describes each variable globally and per category of every grouping
axis, then applies the statistically valid test for the comparison: chi-square,
Yates-corrected chi-square or Fisher for qualitative variables; z, Student,
Welch, Mann-Whitney, ANOVA or Kruskal-Wallis for quantitative ones.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newTableCmd(),
		newDetailCmd(),
		newServeCmd(),
		newGenerateCmd(),
	)
	return rootCmd
}
