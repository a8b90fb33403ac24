// Package packet assembles the Markdown review packet: the triage
// prompt, the task description, the diff summary, and pointers to the
// visual-diff tool's HTML report.
package packet

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harrison/vrpack/internal/models"
	"github.com/harrison/vrpack/internal/report"
)

// DefaultPrompt is the built-in triage prompt. It instructs the reviewer
// to classify the run severity from the task scope and the diff summary.
const DefaultPrompt = `You are a visual regression triage assistant. Given a TASK description (title, labels, body),
and a visual diff summary from BackstopJS, return a JSON object:

{
 "severity": "BLOCK" | "WARN" | "OK",
 "expected_pages": string[],
 "unexpected_pages": string[],
 "reason": string
}

Rules:
- If the task description implies NO visual change (backend/API/refactor/docs), if there are visual differences reported by backstop → BLOCK.
- If the task implies SCOPED visual change (specific page/section), allow diffs only on those pages.
    - If there are extra pages with diffs → WARN and list them in unexpected_pages.
    - If only the scoped pages have diffs -> OK.
- If the task implies visual changes across the whole websites -> OK regardless of diffs.

Infer scope from the task text: explicit routes ("/pricing"), component names ("Pricing table"), or labels.
Be concise in reason. Return ONLY the JSON with the required keys.`

// Builder renders review packets. Prompt and HTMLReportDir are explicit
// configuration rather than package globals so tests can run in
// parallel with different values.
type Builder struct {
	// Prompt is the triage prompt embedded at the top of the packet.
	Prompt string

	// HTMLReportDir is where the visual-diff tool wrote its HTML
	// report, referenced in the packet for human reviewers.
	HTMLReportDir string
}

// NewBuilder creates a Builder with the default prompt.
func NewBuilder(htmlReportDir string) *Builder {
	return &Builder{
		Prompt:        DefaultPrompt,
		HTMLReportDir: htmlReportDir,
	}
}

// Build renders the packet Markdown. full may be nil, in which case the
// full-JSON section carries a placeholder explaining how to include it.
func (b *Builder) Build(runID string, generated time.Time, task *models.TaskInfo, summary *models.DiffSummary, full *report.MergedReports) (string, error) {
	summaryJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode diff summary: %w", err)
	}

	fullBlock := "_(not included—re-run with --include-full-json to embed)_"
	if full != nil {
		fullJSON, err := json.MarshalIndent(full, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode full reports: %w", err)
		}
		fullBlock = codeBlock("json", string(fullJSON))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Visual Regression Review Packet\n\n")
	fmt.Fprintf(&sb, "- Run: `%s`\n", runID)
	fmt.Fprintf(&sb, "- Generated: %s\n", generated.Format(time.RFC3339))
	fmt.Fprintf(&sb, "- Task: %s\n\n", task.Title)
	sb.WriteString("---\n\n")

	sb.WriteString(codeBlock("text", strings.TrimSpace(b.Prompt)))
	sb.WriteString("\n\n---\n\n")

	sb.WriteString("## Task (Markdown)\n")
	sb.WriteString(codeBlock("md", strings.TrimSpace(task.Raw)))
	sb.WriteString("\n\n---\n\n")

	sb.WriteString("## Diff Summary (JSON)\n")
	sb.WriteString(codeBlock("json", string(summaryJSON)))
	sb.WriteString("\n\n---\n\n")

	sb.WriteString("## Backstop Report\n")
	sb.WriteString("- Open Backstop HTML report: `npx backstop openReport`\n")
	fmt.Fprintf(&sb, "- Or browse: `%s/index.html` (local file path)\n", b.HTMLReportDir)
	sb.WriteString("\n---\n\n")

	sb.WriteString("## Optional: Full Backstop JSON (all files)\n")
	sb.WriteString(fullBlock)
	sb.WriteString("\n\n---\n")

	return sb.String(), nil
}

// codeBlock wraps content in a fenced code block with the given language.
func codeBlock(lang, content string) string {
	return fmt.Sprintf("```%s\n%s\n```", lang, content)
}
