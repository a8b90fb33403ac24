// Package cmd wires the vrpack CLI: the pack pipeline plus the
// standalone aggregate and validate helpers.
package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// ErrTaskFileNotFound marks a missing task description file. main maps
// it to a distinct exit status so callers can tell "bad invocation"
// apart from other failures.
var ErrTaskFileNotFound = errors.New("task file not found")

// NewRootCommand creates and returns the root cobra command for vrpack
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vrpack",
		Short: "Build AI review packets from BackstopJS visual-diff runs",
		Long: `vrpack runs BackstopJS against a site, aggregates its JSON reports
into a compact per-page diff summary, and combines that summary with a
task description into a Markdown packet ready for an AI reviewer.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(NewPackCommand())
	cmd.AddCommand(NewAggregateCommand())
	cmd.AddCommand(NewValidateCommand())

	return cmd
}
