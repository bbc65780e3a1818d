package state

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/five82/wordcloud/internal/wordcount"
)

// ErrStale is returned when an update carries a generation that has been
// superseded by a newer upload or identifier.
var ErrStale = errors.New("stale generation")

// ErrUploadInFlight is returned when an upload starts while one is running.
var ErrUploadInFlight = errors.New("upload already in progress")

// ErrForeignResult is returned when a result payload names an identifier
// other than the tracked one.
var ErrForeignResult = errors.New("result belongs to another identifier")

// Phase is the lifecycle stage of the tracked job.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseUploading
	PhaseTracking
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseUploading:
		return "uploading"
	case PhaseTracking:
		return "tracking"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Operation names one of the activities that can run for a generation.
type Operation int

const (
	OpUpload Operation = iota
	OpPoll
	OpFetch
)

func (o Operation) String() string {
	switch o {
	case OpUpload:
		return "upload"
	case OpPoll:
		return "poll"
	case OpFetch:
		return "fetch"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Snapshot represents the latest lifecycle state available to the UI.
type Snapshot struct {
	Phase         Phase
	Generation    uint64
	Identifier    string
	UploadName    string
	Status        wordcount.JobStatus
	Result        wordcount.Result
	HasResult     bool // a payload was stored for Identifier, possibly still processing
	FailureReason string

	Uploading bool
	Polling   bool
	Fetching  bool

	LastError           error
	LastUpdated         time.Time
	ConsecutiveFailures int
	Version             uint64 // bumped on every accepted change
}

// Busy reports whether any operation is running.
func (s Snapshot) Busy() bool {
	return s.Uploading || s.Polling || s.Fetching
}

// HasData reports whether word counts are ready for display.
func (s Snapshot) HasData() bool {
	return s.HasResult && s.Result.HasData()
}

// Active reports whether op is running.
func (s Snapshot) Active(op Operation) bool {
	switch op {
	case OpUpload:
		return s.Uploading
	case OpPoll:
		return s.Polling
	case OpFetch:
		return s.Fetching
	default:
		return false
	}
}

// Store owns the lifecycle state. All writes go through transition methods;
// writes that carry a superseded generation are rejected with ErrStale.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// BeginUpload starts a new generation for an upload of name. Loops bound to
// older generations become stale. The current identifier and result stay
// visible until the upload publishes a replacement.
func (s *Store) BeginUpload(name string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot.Uploading {
		return 0, ErrUploadInFlight
	}
	s.snapshot.Generation++
	s.snapshot.Phase = PhaseUploading
	s.snapshot.UploadName = name
	s.snapshot.Uploading = true
	s.snapshot.Polling = false
	s.snapshot.Fetching = false
	s.snapshot.FailureReason = ""
	s.touch()
	return s.snapshot.Generation, nil
}

// CompleteUpload publishes identifier for the upload started at gen. The
// previous result is dropped.
func (s *Store) CompleteUpload(gen uint64, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.snapshot.Generation {
		return ErrStale
	}
	s.publish(identifier)
	return nil
}

// Track publishes identifier directly (no upload) and returns its generation.
func (s *Store) Track(identifier string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Generation++
	s.publish(identifier)
	return s.snapshot.Generation
}

// Reset returns to idle under a new generation.
func (s *Store) Reset() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	gen := s.snapshot.Generation + 1
	s.snapshot = Snapshot{Generation: gen, Version: s.snapshot.Version}
	s.touch()
	return gen
}

// Begin marks op as running for gen.
func (s *Store) Begin(gen uint64, op Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.snapshot.Generation {
		return ErrStale
	}
	s.setActive(op, true)
	s.touch()
	return nil
}

// End marks op as finished for gen without recording an error.
func (s *Store) End(gen uint64, op Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.snapshot.Generation {
		return ErrStale
	}
	s.setActive(op, false)
	s.touch()
	return nil
}

// Fail marks op as finished for gen and records err. A failed upload moves
// the lifecycle to PhaseFailed; poll and fetch failures keep the phase since
// the job itself may still be healthy.
func (s *Store) Fail(gen uint64, op Operation, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.snapshot.Generation {
		return ErrStale
	}
	s.setActive(op, false)
	s.snapshot.LastError = err
	s.snapshot.ConsecutiveFailures++
	if op == OpUpload {
		s.snapshot.Phase = PhaseFailed
		if err != nil {
			s.snapshot.FailureReason = err.Error()
		}
	}
	s.touch()
	return nil
}

// ObserveStatus records a polled status for gen. A terminal status is never
// replaced by PROCESSING.
func (s *Store) ObserveStatus(gen uint64, status wordcount.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.snapshot.Generation {
		return ErrStale
	}
	s.observe(status)
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
	if status.IsTerminal() {
		s.snapshot.Polling = false
	}
	s.touch()
	return nil
}

// ObserveResult stores a result payload for gen, including intermediate
// PROCESSING echoes. A payload naming a different identifier is rejected.
// The phase becomes ready only for a COMPLETED payload with word counts.
func (s *Store) ObserveResult(gen uint64, result wordcount.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.snapshot.Generation {
		return ErrStale
	}
	if result.Identifier != "" && result.Identifier != s.snapshot.Identifier {
		return ErrForeignResult
	}
	s.snapshot.Result = result.Clone()
	s.snapshot.HasResult = true
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
	s.observe(result.UploadStatus)
	if s.snapshot.Status.IsTerminal() {
		s.snapshot.Fetching = false
	}
	s.touch()
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Result = s.snapshot.Result.Clone()
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

// Generation returns the current generation.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Generation
}

func (s *Store) publish(identifier string) {
	version := s.snapshot.Version
	s.snapshot = Snapshot{
		Phase:      PhaseTracking,
		Generation: s.snapshot.Generation,
		Identifier: identifier,
		UploadName: s.snapshot.UploadName,
		Version:    version,
	}
	s.touch()
}

// observe applies status with the monotonic rule and derives the phase.
func (s *Store) observe(status wordcount.JobStatus) {
	if status == "" {
		return
	}
	if s.snapshot.Status.IsTerminal() && !status.IsTerminal() {
		return
	}
	s.snapshot.Status = status
	switch {
	case !status.IsTerminal():
		if s.snapshot.Phase != PhaseUploading {
			s.snapshot.Phase = PhaseTracking
		}
	case status.Succeeded():
		if s.snapshot.HasResult && s.snapshot.Result.HasData() {
			s.snapshot.Phase = PhaseReady
		}
	default:
		s.snapshot.Phase = PhaseFailed
		s.snapshot.FailureReason = "file upload " + status.Label()
	}
}

func (s *Store) setActive(op Operation, active bool) {
	switch op {
	case OpUpload:
		s.snapshot.Uploading = active
	case OpPoll:
		s.snapshot.Polling = active
	case OpFetch:
		s.snapshot.Fetching = active
	}
}

func (s *Store) touch() {
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.Version++
}
