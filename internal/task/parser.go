// Package task parses semi-structured task description documents into a
// typed record. A task document is Markdown with optional field lines:
//
//	Title: Refactor pricing table markup
//	Labels: frontend, pricing
//	Expected pages: /pricing /checkout
//	Body:
//	Free-form description...
//
// One scanning pass extracts every field, so overlapping matches cannot
// occur and an absent field is explicit in the result rather than an
// empty-string default applied somewhere downstream.
package task

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/harrison/vrpack/internal/models"
)

// NoTitle is the fallback title for documents without a Title field
// or heading.
const NoTitle = "(no title)"

// Parser parses task description documents.
type Parser struct {
	markdown goldmark.Markdown
}

// NewParser creates a task document parser.
func NewParser() *Parser {
	return &Parser{
		markdown: goldmark.New(),
	}
}

// Field line markers, matched case-insensitively at the start of a line.
// The title marker tolerates a leading "#" so "# Title: x" headings work.
var (
	titleRegex    = regexp.MustCompile(`(?i)^#?\s*Title:\s*(.+)$`)
	labelsRegex   = regexp.MustCompile(`(?i)^Labels:\s*(.+)$`)
	expectedRegex = regexp.MustCompile(`(?i)^Expected pages:\s*(.*)$`)
	bodyRegex     = regexp.MustCompile(`(?i)^Body:\s*(.*)$`)
	pageSplit     = regexp.MustCompile(`[,\s]+`)
)

// ParseFile reads and parses the task document at path.
func ParseFile(path string) (*models.TaskInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open task file: %w", err)
	}
	defer file.Close()

	p := NewParser()
	info, err := p.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse task file %s: %w", path, err)
	}
	return info, nil
}

// Parse reads a task document and extracts its fields. Field lines are
// only recognized outside fenced code blocks; the first occurrence of
// each field wins. The Body field captures everything after its marker,
// code blocks included. When no Body marker exists, Body falls back to
// the whole document.
func (p *Parser) Parse(r io.Reader) (*models.TaskInfo, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	raw := string(content)
	info := &models.TaskInfo{
		Title:         NoTitle,
		Labels:        []string{},
		ExpectedPages: []string{},
		Raw:           raw,
	}

	lines := strings.Split(raw, "\n")
	inCodeBlock := false

	for i, line := range lines {
		// Track fence state so code examples never look like fields
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCodeBlock = !inCodeBlock
			continue
		}
		if inCodeBlock {
			continue
		}

		if !info.HasTitle {
			if m := titleRegex.FindStringSubmatch(line); len(m) == 2 {
				info.Title = strings.TrimSpace(m[1])
				info.HasTitle = true
				continue
			}
		}

		if len(info.Labels) == 0 {
			if m := labelsRegex.FindStringSubmatch(line); len(m) == 2 {
				info.Labels = splitTrimmed(m[1], ",")
				continue
			}
		}

		if len(info.ExpectedPages) == 0 {
			if m := expectedRegex.FindStringSubmatch(line); len(m) == 2 {
				info.ExpectedPages = splitPages(m[1])
				continue
			}
		}

		if !info.HasBody {
			if m := bodyRegex.FindStringSubmatch(line); len(m) == 2 {
				rest := m[1]
				if i+1 < len(lines) {
					if rest != "" {
						rest += "\n"
					}
					rest += strings.Join(lines[i+1:], "\n")
				}
				info.Body = strings.TrimSpace(rest)
				info.HasBody = true
			}
		}
	}

	if !info.HasBody {
		info.Body = raw
	}

	if !info.HasTitle {
		if heading := p.firstHeading(content); heading != "" {
			info.Title = heading
			info.HasTitle = true
		}
	}

	return info, nil
}

// firstHeading walks the Markdown AST and returns the text of the first
// level-1 heading, or "" if there is none.
func (p *Parser) firstHeading(source []byte) string {
	doc := p.markdown.Parser().Parse(text.NewReader(source))

	var heading string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			heading = strings.TrimSpace(extractText(h, source))
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})

	return heading
}

// extractText extracts plain text from an AST node
func extractText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
		}
	}
	return buf.String()
}

// splitTrimmed splits s on sep, trims each part, and drops empties.
func splitTrimmed(s, sep string) []string {
	parts := strings.Split(s, sep)
	result := []string{}
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// splitPages splits an expected-pages line on commas and whitespace.
func splitPages(s string) []string {
	parts := pageSplit.Split(s, -1)
	result := []string{}
	for _, part := range parts {
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
