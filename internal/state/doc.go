// Package state owns the lifecycle state of the tracked word-count job.
//
// # Overview
//
// A single Store is shared between the tracker goroutines (upload, poll,
// fetch) and the UI. Writers never assign fields directly; every change goes
// through a transition method, and readers take copies with Snapshot.
//
//	Tracker goroutines:              UI:
//	┌─────────────────────┐          ┌──────────────────┐
//	│ BeginUpload()       │          │                  │
//	│ CompleteUpload(gen) │          │                  │
//	│ ObserveStatus(gen)  │─────────→│ store.Snapshot() │
//	│ ObserveResult(gen)  │ (mutex)  │      ↓           │
//	│ Fail(gen, op, err)  │          │  render          │
//	└─────────────────────┘          └──────────────────┘
//
// # Generations
//
// Every new upload or tracked identifier bumps the generation. Transitions
// take the generation their caller was started with; when it no longer
// matches, the write is rejected with ErrStale and the snapshot is left
// untouched. A poll loop that outlives its identifier therefore cannot
// overwrite the state of the job that replaced it.
//
// # Phases
//
//	Idle ──BeginUpload──→ Uploading ──CompleteUpload──→ Tracking
//	                          │                            │
//	                          └──Fail──→ Failed ←─FAILED───┤
//	                                                       └──result──→ Ready
//
// Track jumps straight to Tracking. Status observations are monotonic: a
// terminal status is never replaced by PROCESSING.
//
// # Busy Flags
//
// Uploading, Polling and Fetching are tracked independently so the fetch
// retry loop cannot clear the flag the poll loop owns. Snapshot.Busy
// combines them.
package state
