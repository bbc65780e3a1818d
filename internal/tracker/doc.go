// Package tracker drives a word-count job from file selection to result.
//
// A Controller owns three activities:
//
//   - Submit uploads a file and publishes the identifier the service assigns
//   - the status poll loop, started for every published identifier, queries
//     the status until it leaves PROCESSING
//   - Fetch retrieves the result, retrying while the service still reports
//     PROCESSING
//
// Track publishes an identifier typed by the user and starts the same poll
// loop.
//
// # Cancellation
//
// Each published identifier gets a fresh loop context derived from the
// controller's root context. Publishing a new identifier (or starting a new
// upload) cancels the previous one, and every state write carries the
// generation the loop was started with, so a response that arrives late is
// rejected by the store rather than overwriting the newer job. Close cancels
// the root context and waits for the loops.
//
// Loops also stop when Policy.Timeout elapses; the default is ten minutes.
//
// # Notices
//
// Outcomes the user should see are sent on Notices as Notice values. The
// channel is buffered and sends never block; a full buffer only logs.
// KindIdentifierPublished notices mark a successful upload.
package tracker
