package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/harrison/vrpack/internal/cmd"
)

func main() {
	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		// A missing task file gets its own exit status so scripted
		// callers can distinguish it from pipeline failures.
		if errors.Is(err, cmd.ErrTaskFileNotFound) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
