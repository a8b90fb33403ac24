package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/vrpack/internal/task"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <task-file>",
		Short: "Parse a task description file and show the extracted fields",
		Long: `Parse a task description Markdown file and print the fields the
packet builder would use: title, labels, expected pages, and whether an
explicit body was found.

Exit code: 0 if the file parses, 1 otherwise`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateTaskFile(args[0], cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	return cmd
}

// validateTaskFile parses the task file and prints its typed fields
func validateTaskFile(path string, output io.Writer) error {
	info, err := task.ParseFile(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Task file: %s\n", path)
	fmt.Fprintf(output, "  Title: %s\n", info.Title)
	if !info.HasTitle {
		fmt.Fprintf(output, "    (no Title field or heading found)\n")
	}

	if len(info.Labels) > 0 {
		fmt.Fprintf(output, "  Labels: %s\n", strings.Join(info.Labels, ", "))
	} else {
		fmt.Fprintf(output, "  Labels: (none)\n")
	}

	if len(info.ExpectedPages) > 0 {
		fmt.Fprintf(output, "  Expected pages: %s\n", strings.Join(info.ExpectedPages, ", "))
	} else {
		fmt.Fprintf(output, "  Expected pages: (none)\n")
	}

	if info.HasBody {
		fmt.Fprintf(output, "  Body: %d characters\n", len(info.Body))
	} else {
		fmt.Fprintf(output, "  Body: (no Body field, whole document used)\n")
	}

	return nil
}
