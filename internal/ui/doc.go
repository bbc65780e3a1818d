// Package ui provides the Bubble Tea terminal interface for wordcloud.
//
// # Architecture Overview
//
// The Model owns only presentation state. Job state lives in state.Store and
// is mutated by the tracker.Controller; the UI reads it through periodic
// snapshots and a blocking notice pump, and drives the controller with
// commands that run off the update loop.
//
// # Views
//
//   - Main: job panel (file, identifier, status), word cloud and JSON result
//   - Logs: tail of the client log file with level filter and auto-tail
//
// A file picker modal and a help overlay are drawn above either view.
//
// # Event Flow
//
//  1. Run() builds the Model and starts the Bubble Tea program
//  2. tickMsg fetches a snapshot, expires toasts and refreshes the log tail
//  3. noticeMsg turns controller notices into toasts, then re-arms the pump
//  4. Key presses start uploads, tracking, fetches and exports as commands
//  5. Context cancellation quits the program
//
// # Key Bindings
//
//   - u: Choose a .txt file
//   - enter: Upload the chosen file
//   - i: Enter an identifier to track
//   - f: Fetch the word counts
//   - c/s: Copy the result JSON / save it to a file
//   - l/m: Logs / main view
//   - Space, L: Toggle auto-tail, cycle log level (log view)
//   - T: Cycle theme
//   - h/?: Toggle help
//   - e or Ctrl+C: Exit
package ui
