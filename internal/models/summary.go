package models

// MaxSamples is the upper bound on sample file names kept per page.
// The count field always reflects the true total even when samples
// are truncated.
const MaxSamples = 5

// PageSummary aggregates the failures for one page label.
type PageSummary struct {
	Page    string   `json:"page"`
	Count   int      `json:"count"`
	Samples []string `json:"samples"`
}

// NewPageSummary creates an empty summary for a page label.
// Samples is non-nil so it marshals as [] rather than null.
func NewPageSummary(label string) *PageSummary {
	return &PageSummary{
		Page:    label,
		Samples: []string{},
	}
}

// Add records one failed item against the page: the count always
// increments, and the item's file name is kept as a sample only while
// fewer than MaxSamples have been collected.
func (ps *PageSummary) Add(item FailedItem) {
	ps.Count++
	if len(ps.Samples) < MaxSamples && item.FileName != "" {
		ps.Samples = append(ps.Samples, item.FileName)
	}
}

// DiffSummary is the aggregate written to diff-summary.json.
// Pages preserves first-seen order across report files; TotalFailed is
// the number of failed items observed, which equals the sum of the
// per-page counts.
type DiffSummary struct {
	Pages       []PageSummary `json:"pages"`
	TotalFailed int           `json:"totalFailed"`
}

// EmptyDiffSummary returns a summary with no failures. Pages is
// non-nil so an empty run still marshals as {"pages":[],"totalFailed":0}.
func EmptyDiffSummary() *DiffSummary {
	return &DiffSummary{Pages: []PageSummary{}}
}
