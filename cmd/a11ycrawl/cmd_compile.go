package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/a11ycrawl/a11ycrawl/internal/report"
)

var compileOutputPath string

var compileCmd = &cobra.Command{
	Use:   "compile [crawl output dirs...]",
	Short: "aggregate metrics and violation counts from one or more crawl runs into a single CSV",
	Long: `compile reads the reports a prior a11ycrawl run wrote (metrics.json,
violations.json, state-fields-*.json) from each given output directory and
aggregates them into one row-per-entry-point CSV, for comparing crawls
across runs rather than inspecting a single run's JSON by hand.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().StringVarP(&compileOutputPath, "output_fpath", "o", "aggregated_metrics.csv", "path to write the aggregated CSV to")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	if filepath.Ext(compileOutputPath) != ".csv" {
		return fmt.Errorf("a11ycrawl compile: output_fpath must end in .csv, got %q", compileOutputPath)
	}

	f, err := os.Create(compileOutputPath)
	if err != nil {
		return fmt.Errorf("a11ycrawl compile: creating %s: %w", compileOutputPath, err)
	}
	defer f.Close()

	return report.CompileCSV(f, args)
}
