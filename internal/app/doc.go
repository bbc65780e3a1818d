// Package app is the composition root for wordcloud.
//
// # Overview
//
// Run wires configuration, logging, the word-count API client, the state
// store and the lifecycle controller into the TUI. RunHeadless wires the
// same pieces for one-shot commands and maps the job outcome to a process
// exit code.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> loadConfig()           config file, env, flag overrides
//	       ├─────> fileLogger()           slog text to <log_dir>/wordcloud.log
//	       ├─────> wordcount.NewClient()  HTTP client
//	       ├─────> tracker.NewController() upload, poll and fetch loops
//	       └─────> ui.Run()               Start TUI (blocks)
//
// # Headless Commands
//
//   - submit FILE: upload, poll until terminal, fetch and print the JSON
//   - status ID: poll until terminal and print the final status
//   - fetch ID: fetch with retry and print the JSON
//
// Notices go to stderr, the result JSON to stdout. Only a COMPLETED job
// exits with status 0.
//
// # Error Handling
//
// Fatal errors (returned from Run or reported before any request):
//   - Configuration file unreadable or invalid
//   - Log file cannot be created
//   - Invalid api_url
//
// Everything that happens after startup is reported as a notice by the
// controller and never aborts the program.
package app
