package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/vrpack/internal/models"
)

// writeFixtures lays out a report directory, a task file, and an out
// directory under a temp root and returns their paths.
func writeFixtures(t *testing.T) (taskPath, reportDir, outDir string) {
	t.Helper()
	root := t.TempDir()

	taskPath = filepath.Join(root, "task.md")
	taskDoc := `Title: Refactor pricing table
Labels: pricing, frontend
Expected pages: /pricing
Body:
Rework the pricing table markup. No other pages should change.
`
	require.NoError(t, os.WriteFile(taskPath, []byte(taskDoc), 0644))

	reportDir = filepath.Join(root, "json_report")
	require.NoError(t, os.MkdirAll(reportDir, 0755))
	reportDoc := `{"tests":[
		{"status":"fail","pair":{"label":"pricing","url":"http://localhost/pricing","fileName":"pricing_diff.png","diff":{"misMatchPercentage":1.59}}},
		{"status":"pass","pair":{"label":"home","url":"http://localhost/"}}
	]}`
	require.NoError(t, os.WriteFile(filepath.Join(reportDir, "report_0.json"), []byte(reportDoc), 0644))

	outDir = filepath.Join(root, "out")
	return taskPath, reportDir, outDir
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestPackWritesSummaryAndPacket(t *testing.T) {
	taskPath, reportDir, outDir := writeFixtures(t)

	output, err := runRoot(t, "pack",
		"--task", taskPath,
		"--report-dir", reportDir,
		"--out-dir", outDir,
		"--skip-backstop",
	)
	require.NoError(t, err, "output: %s", output)

	summaryData, err := os.ReadFile(filepath.Join(outDir, "diff-summary.json"))
	require.NoError(t, err)

	var summary models.DiffSummary
	require.NoError(t, json.Unmarshal(summaryData, &summary))
	assert.Equal(t, 1, summary.TotalFailed)
	require.Len(t, summary.Pages, 1)
	assert.Equal(t, "pricing", summary.Pages[0].Page)
	assert.Equal(t, []string{"pricing_diff.png"}, summary.Pages[0].Samples)

	packetData, err := os.ReadFile(filepath.Join(outDir, "ai-packet.md"))
	require.NoError(t, err)
	packet := string(packetData)
	assert.Contains(t, packet, "Refactor pricing table")
	assert.Contains(t, packet, "## Diff Summary (JSON)")
	assert.Contains(t, packet, "not included")

	assert.Contains(t, output, "Wrote: "+filepath.Join(outDir, "diff-summary.json"))
	assert.Contains(t, output, "Wrote: "+filepath.Join(outDir, "ai-packet.md"))
}

func TestPackIncludeFullJSON(t *testing.T) {
	taskPath, reportDir, outDir := writeFixtures(t)

	output, err := runRoot(t, "pack",
		"--task", taskPath,
		"--report-dir", reportDir,
		"--out-dir", outDir,
		"--skip-backstop",
		"--include-full-json",
	)
	require.NoError(t, err, "output: %s", output)

	packetData, err := os.ReadFile(filepath.Join(outDir, "ai-packet.md"))
	require.NoError(t, err)
	packet := string(packetData)
	assert.Contains(t, packet, `"file": "report_0.json"`)
	assert.NotContains(t, packet, "not included")
}

func TestPackMissingTaskFile(t *testing.T) {
	_, reportDir, outDir := writeFixtures(t)

	_, err := runRoot(t, "pack",
		"--task", filepath.Join(outDir, "no-such-task.md"),
		"--report-dir", reportDir,
		"--out-dir", outDir,
		"--skip-backstop",
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTaskFileNotFound), "expected ErrTaskFileNotFound, got %v", err)
}

func TestPackEmptyReportDir(t *testing.T) {
	taskPath, _, outDir := writeFixtures(t)
	emptyDir := t.TempDir()

	output, err := runRoot(t, "pack",
		"--task", taskPath,
		"--report-dir", emptyDir,
		"--out-dir", outDir,
		"--skip-backstop",
	)
	require.NoError(t, err, "output: %s", output)

	summaryData, err := os.ReadFile(filepath.Join(outDir, "diff-summary.json"))
	require.NoError(t, err)

	var summary models.DiffSummary
	require.NoError(t, json.Unmarshal(summaryData, &summary))
	assert.Equal(t, 0, summary.TotalFailed)
	assert.Empty(t, summary.Pages)
}

func TestPackSkipsCorruptReport(t *testing.T) {
	taskPath, reportDir, outDir := writeFixtures(t)
	require.NoError(t, os.WriteFile(filepath.Join(reportDir, "aaa_broken.json"), []byte("{nope"), 0644))

	output, err := runRoot(t, "pack",
		"--task", taskPath,
		"--report-dir", reportDir,
		"--out-dir", outDir,
		"--skip-backstop",
	)
	require.NoError(t, err, "output: %s", output)
	assert.Contains(t, output, "skipping report")

	summaryData, err := os.ReadFile(filepath.Join(outDir, "diff-summary.json"))
	require.NoError(t, err)

	var summary models.DiffSummary
	require.NoError(t, json.Unmarshal(summaryData, &summary))
	assert.Equal(t, 1, summary.TotalFailed)
}

func TestPackCustomPromptFile(t *testing.T) {
	taskPath, reportDir, outDir := writeFixtures(t)

	root := filepath.Dir(taskPath)
	promptPath := filepath.Join(root, "prompt.txt")
	require.NoError(t, os.WriteFile(promptPath, []byte("Custom triage instructions."), 0644))

	configPath := filepath.Join(root, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("prompt_file: "+promptPath+"\n"), 0644))

	output, err := runRoot(t, "pack",
		"--config", configPath,
		"--task", taskPath,
		"--report-dir", reportDir,
		"--out-dir", outDir,
		"--skip-backstop",
	)
	require.NoError(t, err, "output: %s", output)

	packetData, err := os.ReadFile(filepath.Join(outDir, "ai-packet.md"))
	require.NoError(t, err)
	assert.Contains(t, string(packetData), "Custom triage instructions.")
}

func TestPackRequiresTaskFlag(t *testing.T) {
	_, err := runRoot(t, "pack", "--skip-backstop")
	require.Error(t, err)
}

func TestPackOverwritesPriorOutputs(t *testing.T) {
	taskPath, reportDir, outDir := writeFixtures(t)

	for i := 0; i < 2; i++ {
		output, err := runRoot(t, "pack",
			"--task", taskPath,
			"--report-dir", reportDir,
			"--out-dir", outDir,
			"--skip-backstop",
		)
		require.NoError(t, err, "run %d output: %s", i, output)
	}

	summaryData, err := os.ReadFile(filepath.Join(outDir, "diff-summary.json"))
	require.NoError(t, err)

	var summary models.DiffSummary
	require.NoError(t, json.Unmarshal(summaryData, &summary))
	assert.Equal(t, 1, summary.TotalFailed, "second run must overwrite, not append")
}
