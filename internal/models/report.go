// Package models defines the data structures shared across vrpack:
// the shape of BackstopJS report files, the aggregated diff summary,
// and the parsed task description.
package models

// Report is one JSON document emitted by BackstopJS for a test run.
// Only the fields vrpack reads are modeled; unknown fields in the
// report files are ignored by the JSON decoder.
type Report struct {
	Tests []TestResult `json:"tests"`
}

// TestResult is a single page comparison inside a report.
// Status is "pass" or "fail"; anything else is treated as a pass.
type TestResult struct {
	Status string `json:"status"`
	Pair   *Pair  `json:"pair"`
}

// Pair describes the compared page for one test result.
// All fields are optional in the report files.
type Pair struct {
	Label     string   `json:"label"`
	URL       string   `json:"url"`
	FileName  string   `json:"fileName"`
	Diff      *Diff    `json:"diff"`
	Selectors []string `json:"selectors"`
}

// Diff holds the comparison result for a pair. The mismatch percentage
// is opaque passthrough data: vrpack stores it but never interprets it.
type Diff struct {
	MisMatchPercentage *float64 `json:"misMatchPercentage"`
}

// FailedItem is the in-memory projection of one failing test result.
// It exists only during aggregation and is never persisted.
type FailedItem struct {
	Label     string
	URL       string
	FileName  string
	Mismatch  *float64
	Selectors []string
}

// NewFailedItem projects a failing test result into a FailedItem,
// applying the defaults for absent pair data: label falls back to
// "unknown" and url to the empty string. A nil pair yields an item
// with only those defaults.
func NewFailedItem(pair *Pair) FailedItem {
	item := FailedItem{
		Label: "unknown",
	}
	if pair == nil {
		return item
	}
	if pair.Label != "" {
		item.Label = pair.Label
	}
	item.URL = pair.URL
	item.FileName = pair.FileName
	item.Selectors = pair.Selectors
	if pair.Diff != nil {
		item.Mismatch = pair.Diff.MisMatchPercentage
	}
	return item
}
