package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrison/vrpack/internal/logger"
	"github.com/harrison/vrpack/internal/report"
)

// NewAggregateCommand creates the aggregate command
func NewAggregateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aggregate [report-dir]",
		Short: "Aggregate existing JSON reports into a diff summary",
		Long: `Aggregate the JSON report files in a directory into a per-page diff
summary without running the visual-diff tool. The summary is printed to
stdout and optionally written to a file.

With no argument, the report directory from the configuration is used.

Examples:
  vrpack aggregate
  vrpack aggregate backstop/backstop_data/json_report
  vrpack aggregate --out out/diff-summary.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAggregate,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .vrpack/config.yaml)")
	cmd.Flags().String("out", "", "Also write the summary to this file")
	cmd.Flags().Bool("verbose", false, "Show detailed execution information")

	return cmd
}

// runAggregate implements the aggregate command logic
func runAggregate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	reportDir := cfg.ReportDir
	if len(args) == 1 {
		reportDir = args[0]
	}

	logLevel := cfg.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logLevel = "debug"
	}
	log := logger.NewConsoleLogger(cmd.ErrOrStderr(), logLevel)

	agg := report.NewAggregator(log)
	summary, err := agg.Aggregate(reportDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode diff summary: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)

	outPath, _ := cmd.Flags().GetString("out")
	if outPath != "" {
		if err := report.WriteSummary(filepath.Clean(outPath), summary); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote: %s\n", outPath)
	}

	return nil
}
