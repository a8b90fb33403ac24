package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
)

// MergedReports embeds every report file verbatim, for the optional
// full-JSON section of the packet.
type MergedReports struct {
	Files []MergedFile `json:"files"`
}

// MergedFile is one report file entry. Content holds the raw JSON for
// readable files; Error replaces it when the file could not be read or
// is not valid JSON.
type MergedFile struct {
	File    string          `json:"file"`
	Content json.RawMessage `json:"content,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// MergeReports gathers all *.json files in dir into a single object.
// Unreadable or malformed files become error entries rather than
// aborting the merge.
func MergeReports(dir string) (*MergedReports, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	merged := &MergedReports{Files: []MergedFile{}}
	for _, path := range files {
		entry := MergedFile{File: filepath.Base(path)}

		data, err := os.ReadFile(path)
		switch {
		case err != nil:
			entry.Error = err.Error()
		case !json.Valid(data):
			entry.Error = "invalid JSON"
		default:
			entry.Content = json.RawMessage(data)
		}

		merged.Files = append(merged.Files, entry)
	}

	return merged, nil
}
