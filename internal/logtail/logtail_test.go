package logtail

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{name: "zero reads nothing", maxLines: 0, expected: nil},
		{name: "negative reads nothing", maxLines: -1, expected: nil},
		{name: "read partial (5)", maxLines: 5, expected: expectedAll[5:]},
		{name: "read exactly all (10)", maxLines: 10, expected: expectedAll},
		{name: "read more than exists (20)", maxLines: 20, expected: expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "absent.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read() = %v, %v; want nil, nil", got, err)
	}
}

func TestParse_SlogTextRecord(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("upload accepted", "identifier", "job 42", "generation", 3)

	entry := Parse(strings.TrimSpace(buf.String()))
	if entry.Level != "INFO" || entry.Message != "upload accepted" {
		t.Fatalf("entry = %#v", entry)
	}
	if entry.Time.IsZero() {
		t.Fatalf("time not parsed from %q", entry.Raw)
	}
	if v, ok := entry.Attr("identifier"); !ok || v != "job 42" {
		t.Fatalf("identifier = %q, %v", v, ok)
	}
	if v, ok := entry.Attr("generation"); !ok || v != "3" {
		t.Fatalf("generation = %q, %v", v, ok)
	}
}

func TestParse_EscapedQuotes(t *testing.T) {
	entry := Parse(`level=WARN msg="status poll failed" error="api \"x\" returned status 500"`)
	if v, _ := entry.Attr("error"); v != `api "x" returned status 500` {
		t.Fatalf("error attr = %q", v)
	}
}

func TestParse_PlainLine(t *testing.T) {
	entry := Parse("  panic: something odd  ")
	if entry.Level != "" || entry.Message != "panic: something odd" {
		t.Fatalf("entry = %#v", entry)
	}
}

func TestAtLeast(t *testing.T) {
	entries := ParseAll([]string{
		"level=DEBUG msg=a",
		"level=INFO msg=b",
		"level=ERROR msg=c",
		"free text",
	})

	var got []string
	for _, e := range AtLeast(entries, "info") {
		got = append(got, e.Message)
	}
	want := []string{"b", "c", "free text"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("AtLeast = %v, want %v", got, want)
	}

	if all := AtLeast(entries, "bogus"); len(all) != len(entries) {
		t.Fatalf("unknown level should keep everything, got %d", len(all))
	}
}
