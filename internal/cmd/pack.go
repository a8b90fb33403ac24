package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/harrison/vrpack/internal/backstop"
	"github.com/harrison/vrpack/internal/config"
	"github.com/harrison/vrpack/internal/filelock"
	"github.com/harrison/vrpack/internal/logger"
	"github.com/harrison/vrpack/internal/packet"
	"github.com/harrison/vrpack/internal/report"
	"github.com/harrison/vrpack/internal/task"
)

// Output file names inside the configured out directory.
const (
	summaryFileName = "diff-summary.json"
	packetFileName  = "ai-packet.md"
)

// NewPackCommand creates the pack command
func NewPackCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack --task <task-file>",
		Short: "Run the visual-diff tool and build a review packet",
		Long: `Run BackstopJS against the configured site, aggregate its JSON
reports into a per-page diff summary, and write a Markdown review packet
combining the task description, the summary, and the triage prompt.

Backstop exits non-zero when diffs exist; that is informational and
never aborts packing. A missing task file exits with status 2.

Configuration is loaded from .vrpack/config.yaml if present.
CLI flags override configuration file settings.

Examples:
  vrpack pack --task task-descriptions/task-1-non-visual-refactor.md
  vrpack pack --task task.md --site-url http://staging.example.com
  vrpack pack --task task.md --include-full-json --open-report
  vrpack pack --task task.md --skip-backstop   # reuse existing reports`,
		RunE: runPack,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .vrpack/config.yaml)")
	cmd.Flags().String("task", "", "Path to the task description Markdown file (required)")
	cmd.Flags().String("site-url", "", "Base site URL exported to backstop as SITE_URL")
	cmd.Flags().String("backstop-config", "", "Path to the backstop config file")
	cmd.Flags().String("report-dir", "", "Directory containing backstop JSON reports")
	cmd.Flags().String("out-dir", "", "Directory for the diff summary and packet")
	cmd.Flags().Bool("include-full-json", false, "Embed all backstop JSON files into the packet")
	cmd.Flags().Bool("open-report", false, "Open the backstop HTML report after the run")
	cmd.Flags().Bool("skip-backstop", false, "Skip the backstop run and aggregate existing reports")
	cmd.Flags().Bool("verbose", false, "Show detailed execution information")

	cmd.MarkFlagRequired("task")

	return cmd
}

// runPack implements the pack command logic
func runPack(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Merge CLI flags with config (flags take precedence)
	var siteURLPtr, backstopConfigPtr, reportDirPtr, outDirPtr *string
	if cmd.Flags().Changed("site-url") {
		v, _ := cmd.Flags().GetString("site-url")
		siteURLPtr = &v
	}
	if cmd.Flags().Changed("backstop-config") {
		v, _ := cmd.Flags().GetString("backstop-config")
		backstopConfigPtr = &v
	}
	if cmd.Flags().Changed("report-dir") {
		v, _ := cmd.Flags().GetString("report-dir")
		reportDirPtr = &v
	}
	if cmd.Flags().Changed("out-dir") {
		v, _ := cmd.Flags().GetString("out-dir")
		outDirPtr = &v
	}
	cfg.MergeWithFlags(siteURLPtr, backstopConfigPtr, reportDirPtr, outDirPtr, nil)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	includeFullJSON, _ := cmd.Flags().GetBool("include-full-json")
	openReport, _ := cmd.Flags().GetBool("open-report")
	skipBackstop, _ := cmd.Flags().GetBool("skip-backstop")
	verbose, _ := cmd.Flags().GetBool("verbose")

	logLevel := cfg.LogLevel
	if verbose {
		logLevel = "debug"
	}
	log := logger.NewConsoleLogger(cmd.OutOrStdout(), logLevel)

	// Validate task file before doing any work
	taskPath, _ := cmd.Flags().GetString("task")
	if _, err := os.Stat(taskPath); err != nil {
		return fmt.Errorf("%w: %s", ErrTaskFileNotFound, taskPath)
	}

	// One run owns the out directory; a second concurrent run is refused
	lock, err := filelock.Acquire(cfg.OutDir)
	if err != nil {
		return err
	}
	defer lock.Release()

	runID := uuid.New().String()
	log.LogDebug(fmt.Sprintf("run %s starting", runID))

	// 1) Parse task description
	taskInfo, err := task.ParseFile(taskPath)
	if err != nil {
		return err
	}
	log.LogInfo(fmt.Sprintf("Task: %s", taskInfo.Title))

	// 2) Run backstop
	runner := &backstop.Runner{
		BackstopPath: cfg.BackstopPath,
		WorkDir:      cfg.WorkDir,
	}
	if skipBackstop {
		log.LogInfo("Skipping backstop run, aggregating existing reports")
	} else {
		if err := runBackstop(cmd.Context(), runner, cfg, log); err != nil {
			return err
		}
	}

	// 3) Aggregate diffs
	agg := report.NewAggregator(log)
	summary, err := agg.Aggregate(cfg.ReportDir)
	if err != nil {
		return err
	}
	log.LogInfo(fmt.Sprintf("Aggregated %d failed comparison(s) across %d page(s)",
		summary.TotalFailed, len(summary.Pages)))

	summaryPath := filepath.Join(cfg.OutDir, summaryFileName)
	if err := report.WriteSummary(summaryPath, summary); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote: %s\n", summaryPath)

	// 4) Optional: grab full JSON
	var full *report.MergedReports
	if includeFullJSON {
		full, err = report.MergeReports(cfg.ReportDir)
		if err != nil {
			return fmt.Errorf("failed to merge reports: %w", err)
		}
	}

	// 5) Build packet
	builder := packet.NewBuilder(cfg.HTMLReportDir)
	if cfg.PromptFile != "" {
		prompt, err := os.ReadFile(cfg.PromptFile)
		if err != nil {
			return fmt.Errorf("failed to read prompt file: %w", err)
		}
		builder.Prompt = string(prompt)
	}

	md, err := builder.Build(runID, time.Now(), taskInfo, summary, full)
	if err != nil {
		return err
	}

	packetPath := filepath.Join(cfg.OutDir, packetFileName)
	if err := filelock.AtomicWrite(packetPath, []byte(md)); err != nil {
		return fmt.Errorf("failed to write packet: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote: %s\n", packetPath)

	if openReport {
		if err := runner.OpenReport(cmd.Context()); err != nil {
			log.LogWarn(err.Error())
		}
	}

	return nil
}

// runBackstop executes the visual-diff tool and logs its outcome.
// Exit code 1 means diffs were found; other non-zero codes and
// invocation failures are warnings, because partial reports may still
// be worth aggregating.
func runBackstop(parent context.Context, runner *backstop.Runner, cfg *config.Config, log *logger.ConsoleLogger) error {
	ctx := parent
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, cfg.Timeout)
		defer cancel()
	}

	log.LogInfo(fmt.Sprintf("Running %s test --config=%s (SITE_URL=%s)",
		cfg.BackstopPath, cfg.BackstopConfig, cfg.SiteURL))

	result, err := runner.Run(ctx, cfg.SiteURL, cfg.BackstopConfig)
	if err != nil {
		return err
	}

	switch {
	case result.Error != nil:
		log.LogWarn(fmt.Sprintf("Backstop invocation failed: %v", result.Error))
	case result.DiffsFound():
		log.LogInfo(fmt.Sprintf("Backstop found differences (%s)", result.Duration.Round(time.Second)))
	case result.Unexpected():
		log.LogWarn(fmt.Sprintf("Backstop returned unexpected exit code: %d", result.ExitCode))
	default:
		log.LogInfo(fmt.Sprintf("Backstop passed with no differences (%s)", result.Duration.Round(time.Second)))
	}

	return nil
}

// loadConfig loads configuration from the --config flag path or the
// default .vrpack/config.yaml location.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath != "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		return cfg, nil
	}

	cfg, err := config.LoadConfigFromDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
