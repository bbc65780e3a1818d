// Package export turns a fetched result into its canonical JSON text and
// hands it to the clipboard or a file.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"

	"github.com/five82/wordcloud/internal/wordcount"
)

// ErrNoData is returned when the result carries no word counts yet.
var ErrNoData = errors.New("no word counts to export")

const (
	MsgCopied     = "Text successfully copied to clipboard"
	MsgCopyFailed = "Unable to copy text to clipboard."
)

// Marshal renders the word counts as a 2-space indented JSON array without
// HTML escaping or a trailing newline. The output is byte-identical for equal
// inputs.
func Marshal(result wordcount.Result) ([]byte, error) {
	if !result.HasData() {
		return nil, ErrNoData
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result.WordCounts); err != nil {
		return nil, fmt.Errorf("encode word counts: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Exporter writes canonical JSON to the system clipboard or to files.
type Exporter struct {
	writeClipboard func(string) error
}

// NewExporter returns an Exporter backed by the system clipboard.
func NewExporter() *Exporter {
	return &Exporter{writeClipboard: clipboard.WriteAll}
}

// NewExporterWith returns an Exporter that sends clipboard text to write.
func NewExporterWith(write func(string) error) *Exporter {
	return &Exporter{writeClipboard: write}
}

// CopyResult places the canonical JSON on the clipboard.
func (e *Exporter) CopyResult(result wordcount.Result) error {
	data, err := Marshal(result)
	if err != nil {
		return err
	}
	write := e.writeClipboard
	if write == nil {
		write = clipboard.WriteAll
	}
	if err := write(string(data)); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

// WriteFile stores the canonical JSON at path, creating parent directories.
func (e *Exporter) WriteFile(path string, result wordcount.Result) error {
	data, err := Marshal(result)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
