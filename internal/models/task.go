package models

// TaskInfo is the typed record produced by parsing a task description
// document. Absent fields are explicit: Labels and ExpectedPages are
// empty slices when their lines are missing, and HasTitle/HasBody report
// whether the corresponding field was present before fallbacks applied.
type TaskInfo struct {
	// Title is the task title, or "(no title)" when no Title field or
	// heading was found.
	Title string

	// HasTitle reports whether Title came from the document rather
	// than the fallback.
	HasTitle bool

	// Labels is the comma-separated label list, trimmed and with
	// empty entries dropped.
	Labels []string

	// ExpectedPages lists the pages the task is allowed to change,
	// split on commas and whitespace.
	ExpectedPages []string

	// Body is the content after the Body: marker, or the whole
	// document when the marker is absent.
	Body string

	// HasBody reports whether an explicit Body: field was found.
	HasBody bool

	// Raw is the full original document, embedded verbatim into the
	// review packet.
	Raw string
}
