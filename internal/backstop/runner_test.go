package backstop

import (
	"context"
	"runtime"
	"testing"
	"time"
)

func TestBuildCommandArgs(t *testing.T) {
	r := NewRunner()
	args := r.BuildCommandArgs("backstop.json")

	if len(args) != 2 {
		t.Fatalf("Expected 2 args, got %d: %v", len(args), args)
	}
	if args[0] != "test" {
		t.Errorf("Expected 'test' subcommand, got %q", args[0])
	}
	if args[1] != "--config=backstop.json" {
		t.Errorf("Unexpected config flag: %q", args[1])
	}
}

func TestBuildEnvSetsSiteURL(t *testing.T) {
	r := NewRunner()
	env := r.BuildEnv("http://localhost:8080")

	found := false
	for _, entry := range env {
		if entry == "SITE_URL=http://localhost:8080" {
			found = true
			break
		}
	}
	if !found {
		t.Error("Expected SITE_URL in environment")
	}
}

func TestResultClassification(t *testing.T) {
	tests := []struct {
		exitCode   int
		diffs      bool
		unexpected bool
	}{
		{0, false, false},
		{1, true, false},
		{2, false, true},
		{127, false, true},
	}

	for _, tt := range tests {
		res := &Result{ExitCode: tt.exitCode}
		if res.DiffsFound() != tt.diffs {
			t.Errorf("ExitCode %d: DiffsFound() = %v, want %v", tt.exitCode, res.DiffsFound(), tt.diffs)
		}
		if res.Unexpected() != tt.unexpected {
			t.Errorf("ExitCode %d: Unexpected() = %v, want %v", tt.exitCode, res.Unexpected(), tt.unexpected)
		}
	}
}

func TestRunMissingBinary(t *testing.T) {
	r := &Runner{BackstopPath: "definitely-not-a-real-binary"}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := r.Run(ctx, "http://localhost", "backstop.json")
	if err != nil {
		t.Fatalf("Run should not return an error for a missing binary: %v", err)
	}
	if result.Error == nil {
		t.Error("Expected Result.Error for a missing binary")
	}
}

func TestRunCapturesExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on false(1)")
	}

	// false ignores its arguments and exits 1, like a backstop run
	// that found diffs.
	r := &Runner{BackstopPath: "false"}

	result, err := r.Run(context.Background(), "http://localhost", "backstop.json")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.ExitCode != 1 {
		t.Errorf("Expected exit code 1, got %d", result.ExitCode)
	}
	if !result.DiffsFound() {
		t.Error("Exit code 1 should classify as diffs found")
	}
	if result.Error != nil {
		t.Errorf("Exit code 1 should not set Result.Error: %v", result.Error)
	}
}
