package wordcount

import (
	"encoding/json"
	"testing"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in   string
		want JobStatus
	}{
		{"PROCESSING", StatusProcessing},
		{"  completed\n", StatusCompleted},
		{`"FAILED"`, StatusFailed},
		{`"weird"`, JobStatus("WEIRD")},
		{"", JobStatus("")},
	}
	for _, tc := range cases {
		if got := ParseStatus(tc.in); got != tc.want {
			t.Fatalf("ParseStatus(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestJobStatusHelpers(t *testing.T) {
	if StatusProcessing.IsTerminal() {
		t.Fatalf("PROCESSING should not be terminal")
	}
	if !StatusCompleted.IsTerminal() || !StatusFailed.IsTerminal() {
		t.Fatalf("COMPLETED and FAILED should be terminal")
	}
	if JobStatus("").IsTerminal() {
		t.Fatalf("empty status should not be terminal")
	}
	if !JobStatus("CANCELLED").IsTerminal() {
		t.Fatalf("unknown status should be terminal")
	}
	if StatusCompleted.Label() != "completed" {
		t.Fatalf("Label = %q, want completed", StatusCompleted.Label())
	}
}

func TestResult_HasDataDistinguishesNullFromEmpty(t *testing.T) {
	var pending Result
	if err := json.Unmarshal([]byte(`{"identifier":"a","uploadStatus":"PROCESSING"}`), &pending); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if pending.HasData() {
		t.Fatalf("missing wordCounts should not count as data")
	}

	var nulled Result
	if err := json.Unmarshal([]byte(`{"identifier":"a","uploadStatus":"COMPLETED","wordCounts":null}`), &nulled); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if nulled.HasData() {
		t.Fatalf("null wordCounts should not count as data")
	}

	var empty Result
	if err := json.Unmarshal([]byte(`{"identifier":"a","uploadStatus":"completed","wordCounts":[]}`), &empty); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !empty.HasData() {
		t.Fatalf("empty wordCounts array should count as data")
	}
	if empty.UploadStatus != StatusCompleted {
		t.Fatalf("UploadStatus = %q, want COMPLETED", empty.UploadStatus)
	}
}

func TestResult_CloneDoesNotShare(t *testing.T) {
	r := Result{WordCounts: []WordCount{{Word: "a", Count: 1}}}
	dup := r.Clone()
	dup.WordCounts[0].Count = 99
	if r.WordCounts[0].Count != 1 {
		t.Fatalf("Clone shares word counts")
	}
	if (Result{}).Clone().HasData() {
		t.Fatalf("Clone of empty result should stay without data")
	}
	if got := (Result{WordCounts: []WordCount{{Count: 2}, {Count: 3}}}).TotalCount(); got != 5 {
		t.Fatalf("TotalCount = %d, want 5", got)
	}
}
