// Package logtail reads the tail of the wordcloud log file for the Logs view.
//
// # Reading
//
// Read returns the last maxLines lines using a ring buffer of maxLines
// entries, so memory stays bounded regardless of file size. A missing file
// yields nil, nil.
//
//	lines, err := logtail.Read(cfg.LogPath(), 400)
//
// # Parsing
//
// The client logs through slog's text handler:
//
//	time=2026-10-18T10:04:05.123+02:00 level=INFO msg="upload accepted" identifier=job-42 generation=1
//
// Parse splits such a line into an Entry (time, level, message, attrs).
// Quoted values are unquoted with Go string syntax. Lines that are not
// key=value records are kept verbatim as the message, so stray output never
// disappears from the view. AtLeast filters entries by minimum level.
//
// Styling is left to the UI.
package logtail
