// Package backstop invokes the external visual-diff tool and classifies
// its exit status. BackstopJS signals "differences found" with exit code
// 1, so a non-zero exit is informational rather than a failure.
package backstop

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Runner manages execution of the backstop CLI.
type Runner struct {
	// BackstopPath is the backstop executable to invoke.
	BackstopPath string

	// WorkDir is the directory the command runs in; backstop resolves
	// its config and data paths relative to it.
	WorkDir string
}

// Result captures the outcome of a tool invocation.
type Result struct {
	Output   string
	ExitCode int
	Duration time.Duration
	Error    error
}

// DiffsFound reports whether the tool exited with code 1, its
// conventional signal that visual differences exist.
func (r *Result) DiffsFound() bool {
	return r.ExitCode == 1
}

// Unexpected reports whether the tool exited with a code other than
// 0 or 1, which usually means the run itself broke (bad config,
// missing browser). Callers log this but still parse whatever reports
// were produced.
func (r *Result) Unexpected() bool {
	return r.ExitCode != 0 && r.ExitCode != 1
}

// NewRunner creates a Runner with default settings.
func NewRunner() *Runner {
	return &Runner{
		BackstopPath: "backstop",
	}
}

// BuildCommandArgs constructs the command-line arguments for a test run.
func (r *Runner) BuildCommandArgs(configPath string) []string {
	return []string{"test", fmt.Sprintf("--config=%s", configPath)}
}

// BuildEnv returns the process environment for a run, with SITE_URL set
// for the backstop scenarios to interpolate.
func (r *Runner) BuildEnv(siteURL string) []string {
	return append(os.Environ(), fmt.Sprintf("SITE_URL=%s", siteURL))
}

// Run executes `backstop test` with the given context. The returned
// Result is always non-nil; a non-zero exit code lands in
// Result.ExitCode while invocation failures (binary not found, context
// cancelled) land in Result.Error.
func (r *Runner) Run(ctx context.Context, siteURL, configPath string) (*Result, error) {
	startTime := time.Now()

	cmd := exec.CommandContext(ctx, r.BackstopPath, r.BuildCommandArgs(configPath)...)
	cmd.Dir = r.WorkDir
	cmd.Env = r.BuildEnv(siteURL)

	output, err := cmd.CombinedOutput()

	result := &Result{
		Output:   string(output),
		Duration: time.Since(startTime),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.Error = err
		}
	}

	return result, nil
}

// OpenReport opens the HTML report via `npx backstop openReport`.
// Best effort: the error only matters to the caller's log line.
func (r *Runner) OpenReport(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "npx", "backstop", "openReport")
	cmd.Dir = r.WorkDir
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to open report: %w (output: %s)", err, output)
	}
	return nil
}
