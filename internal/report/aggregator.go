// Package report implements the diff aggregator: it reads the JSON
// report files produced by the visual-diff tool, collects the failing
// test entries, and groups them into a bounded per-page summary.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/harrison/vrpack/internal/filelock"
	"github.com/harrison/vrpack/internal/models"
)

// Logger is the subset of logging used during aggregation.
// Report-file problems are warnings, never errors.
type Logger interface {
	LogWarn(message string)
	LogDebug(message string)
}

// Aggregator collects failing test entries from a report directory.
type Aggregator struct {
	log Logger
}

// NewAggregator creates an Aggregator. A nil logger discards messages.
func NewAggregator(log Logger) *Aggregator {
	return &Aggregator{log: log}
}

// Aggregate reads all *.json files in dir (sorted lexicographically by
// file name for determinism) and builds the diff summary. A missing or
// empty directory yields an empty summary, not an error. A report file
// that cannot be read or parsed is skipped with a warning so a single
// corrupt report never aborts aggregation.
func (a *Aggregator) Aggregate(dir string) (*models.DiffSummary, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list report files in %s: %w", dir, err)
	}
	sort.Strings(files)

	if len(files) == 0 {
		a.debugf("no report files found in %s", dir)
		return models.EmptyDiffSummary(), nil
	}

	byPage := make(map[string]*models.PageSummary)
	var pageOrder []string
	totalFailed := 0

	for _, path := range files {
		rep, err := readReport(path)
		if err != nil {
			a.warnf("skipping report %s: %v", path, err)
			continue
		}

		for _, test := range rep.Tests {
			if test.Status != "fail" {
				continue
			}

			item := models.NewFailedItem(test.Pair)
			totalFailed++

			ps, ok := byPage[item.Label]
			if !ok {
				ps = models.NewPageSummary(item.Label)
				byPage[item.Label] = ps
				pageOrder = append(pageOrder, item.Label)
			}
			ps.Add(item)
		}
	}

	summary := models.EmptyDiffSummary()
	summary.TotalFailed = totalFailed
	for _, label := range pageOrder {
		summary.Pages = append(summary.Pages, *byPage[label])
	}

	return summary, nil
}

// readReport parses one report file.
func readReport(path string) (*models.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rep models.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return &rep, nil
}

// WriteSummary persists the summary as indented JSON at path,
// atomically overwriting any prior content.
func WriteSummary(path string, summary *models.DiffSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode diff summary: %w", err)
	}

	if err := filelock.AtomicWrite(path, data); err != nil {
		return fmt.Errorf("failed to write diff summary: %w", err)
	}
	return nil
}

func (a *Aggregator) warnf(format string, args ...interface{}) {
	if a.log != nil {
		a.log.LogWarn(fmt.Sprintf(format, args...))
	}
}

func (a *Aggregator) debugf(format string, args ...interface{}) {
	if a.log != nil {
		a.log.LogDebug(fmt.Sprintf(format, args...))
	}
}
