package wordcount

import (
	"encoding/json"
	"strings"
)

// JobStatus is the lifecycle state reported by the word-count service.
type JobStatus string

const (
	StatusProcessing JobStatus = "PROCESSING"
	StatusCompleted  JobStatus = "COMPLETED"
	StatusFailed     JobStatus = "FAILED"
)

// ParseStatus normalizes a status body. The service answers with a bare word,
// but some deployments JSON-encode it, so surrounding quotes are tolerated.
// Unknown values are returned upper-cased and count as terminal.
func ParseStatus(raw string) JobStatus {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, `"`) {
		var unquoted string
		if err := json.Unmarshal([]byte(trimmed), &unquoted); err == nil {
			trimmed = strings.TrimSpace(unquoted)
		}
	}
	return JobStatus(strings.ToUpper(trimmed))
}

// IsTerminal reports whether no further transitions are expected.
func (s JobStatus) IsTerminal() bool {
	return s != StatusProcessing && s != ""
}

// Succeeded reports whether the job finished with output.
func (s JobStatus) Succeeded() bool {
	return s == StatusCompleted
}

// Label is the lower-cased status word used in notifications.
func (s JobStatus) Label() string {
	return strings.ToLower(string(s))
}

// UnmarshalJSON accepts any casing and null.
func (s *JobStatus) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseStatus(raw)
	return nil
}

// WordCount is the frequency of one token in the uploaded text.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Result mirrors the payload returned by GET /upload.
type Result struct {
	Identifier   string      `json:"identifier"`
	UploadStatus JobStatus   `json:"uploadStatus"`
	WordCounts   []WordCount `json:"wordCounts"`
}

// HasData reports whether word counts are present. A null or missing array
// means the job has not produced output yet; an empty array is valid output.
func (r Result) HasData() bool {
	return r.WordCounts != nil
}

// Clone returns a copy that does not share the word-count slice.
func (r Result) Clone() Result {
	if r.WordCounts != nil {
		dup := make([]WordCount, len(r.WordCounts))
		copy(dup, r.WordCounts)
		r.WordCounts = dup
	}
	return r
}

// TotalCount sums all counts.
func (r Result) TotalCount() int {
	total := 0
	for _, wc := range r.WordCounts {
		total += wc.Count
	}
	return total
}
