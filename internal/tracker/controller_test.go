package tracker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/five82/wordcloud/internal/state"
	"github.com/five82/wordcloud/internal/wordcount"
)

type fakeResult struct {
	result wordcount.Result
	err    error
}

// fakeAPI scripts the service. Status sequences are consumed per identifier
// and the last entry repeats; identifiers without a script report COMPLETED.
type fakeAPI struct {
	mu sync.Mutex

	uploadID   string
	uploadErr  error
	uploadGate chan struct{}

	statuses      map[string][]wordcount.JobStatus
	statusErr     error
	statusGate    map[string]chan struct{}
	statusEntered chan string

	results       []fakeResult
	resultGate    chan struct{}
	resultEntered chan struct{}

	uploads, statusCalls, resultCalls int
}

func (f *fakeAPI) Upload(ctx context.Context, path string) (string, error) {
	f.mu.Lock()
	f.uploads++
	gate := f.uploadGate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.uploadID, f.uploadErr
}

func (f *fakeAPI) FetchStatus(ctx context.Context, identifier string) (wordcount.JobStatus, error) {
	f.mu.Lock()
	f.statusCalls++
	status := wordcount.StatusCompleted
	if seq := f.statuses[identifier]; len(seq) > 0 {
		status = seq[0]
		if len(seq) > 1 {
			f.statuses[identifier] = seq[1:]
		}
	}
	gate := f.statusGate[identifier]
	entered := f.statusEntered
	err := f.statusErr
	f.mu.Unlock()

	if entered != nil {
		select {
		case entered <- identifier:
		default:
		}
	}
	if gate != nil {
		<-gate // deliberately ignores ctx to simulate a late response
	}
	if err != nil {
		return "", err
	}
	return status, nil
}

func (f *fakeAPI) FetchResult(ctx context.Context, identifier string) (wordcount.Result, error) {
	f.mu.Lock()
	f.resultCalls++
	next := fakeResult{result: wordcount.Result{Identifier: identifier, UploadStatus: wordcount.StatusCompleted, WordCounts: []wordcount.WordCount{}}}
	if len(f.results) > 0 {
		next = f.results[0]
		if len(f.results) > 1 {
			f.results = f.results[1:]
		}
	}
	gate := f.resultGate
	f.resultGate = nil
	entered := f.resultEntered
	f.mu.Unlock()

	if entered != nil {
		select {
		case entered <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		<-gate
	}
	return next.result, next.err
}

func (f *fakeAPI) calls() (uploads, statuses, results int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploads, f.statusCalls, f.resultCalls
}

func newTestController(t *testing.T, api wordcount.API, opts Options) *Controller {
	t.Helper()
	if opts.Policy == (Policy{}) {
		opts.Policy = Policy{Interval: 5 * time.Millisecond, MaxInterval: 5 * time.Millisecond, Timeout: 5 * time.Second}
	}
	c := NewController(context.Background(), api, &state.Store{}, opts)
	t.Cleanup(c.Close)
	return c
}

func waitNotice(t *testing.T, c *Controller, match func(Notice) bool) Notice {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case n := <-c.Notices():
			if match(n) {
				return n
			}
		case <-deadline:
			t.Fatalf("timed out waiting for notice")
			return Notice{}
		}
	}
}

func nextNotice(t *testing.T, c *Controller) Notice {
	t.Helper()
	return waitNotice(t, c, func(Notice) bool { return true })
}

func expectNoNotice(t *testing.T, c *Controller, d time.Duration) {
	t.Helper()
	select {
	case n := <-c.Notices():
		t.Fatalf("unexpected notice %#v", n)
	case <-time.After(d):
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func isTerminalNotice(n Notice) bool {
	return n.Status != ""
}

func TestSubmit_NoFileMakesNoCalls(t *testing.T) {
	api := &fakeAPI{}
	c := newTestController(t, api, Options{})

	_, err := c.Submit(context.Background(), "   ")
	if !errors.Is(err, ErrNoFile) {
		t.Fatalf("Submit err = %v, want ErrNoFile", err)
	}
	n := nextNotice(t, c)
	if n.Severity != SeverityError || n.Summary != "Please select a file before uploading." {
		t.Fatalf("notice = %#v", n)
	}
	if u, s, r := api.calls(); u+s+r != 0 {
		t.Fatalf("calls = %d/%d/%d, want none", u, s, r)
	}
	if snap := c.Snapshot(); snap.Phase != state.PhaseIdle || snap.Busy() {
		t.Fatalf("snapshot = %#v, want untouched idle state", snap)
	}
}

func TestSubmit_PollsUntilCompleted(t *testing.T) {
	api := &fakeAPI{
		uploadID: "job-42",
		statuses: map[string][]wordcount.JobStatus{
			"job-42": {wordcount.StatusProcessing, wordcount.StatusProcessing, wordcount.StatusCompleted},
		},
	}
	c := newTestController(t, api, Options{})

	id, err := c.Submit(context.Background(), "essay.txt")
	if err != nil || id != "job-42" {
		t.Fatalf("Submit = %q, %v; want job-42", id, err)
	}

	published := nextNotice(t, c)
	if published.Kind != KindIdentifierPublished || published.Identifier != "job-42" {
		t.Fatalf("first notice = %#v, want identifier published", published)
	}

	done := nextNotice(t, c)
	if done.Severity != SeveritySuccess || done.Summary != "File upload completed" {
		t.Fatalf("terminal notice = %#v", done)
	}
	if _, statuses, _ := api.calls(); statuses != 3 {
		t.Fatalf("status calls = %d, want 3", statuses)
	}
	expectNoNotice(t, c, 30*time.Millisecond)

	snap := c.Snapshot()
	if snap.Identifier != "job-42" || snap.Status != wordcount.StatusCompleted || snap.Polling {
		t.Fatalf("snapshot = %#v", snap)
	}
}

func TestSubmit_FailedJobNotifiesError(t *testing.T) {
	api := &fakeAPI{
		uploadID: "job-9",
		statuses: map[string][]wordcount.JobStatus{"job-9": {wordcount.StatusProcessing, wordcount.StatusFailed}},
	}
	c := newTestController(t, api, Options{})

	if _, err := c.Submit(context.Background(), "essay.txt"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	n := waitNotice(t, c, isTerminalNotice)
	if n.Severity != SeverityError || n.Summary != "File upload failed" {
		t.Fatalf("notice = %#v", n)
	}
	if snap := c.Snapshot(); snap.Phase != state.PhaseFailed {
		t.Fatalf("Phase = %v, want failed", snap.Phase)
	}
}

func TestSubmit_UnknownStatusIsTerminalError(t *testing.T) {
	api := &fakeAPI{
		uploadID: "job-x",
		statuses: map[string][]wordcount.JobStatus{"job-x": {"CANCELLED"}},
	}
	c := newTestController(t, api, Options{})

	if _, err := c.Submit(context.Background(), "essay.txt"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	n := waitNotice(t, c, isTerminalNotice)
	if n.Severity != SeverityError || n.Summary != "File upload cancelled" {
		t.Fatalf("notice = %#v", n)
	}
}

func TestSubmit_UploadErrorKeepsPreviousResult(t *testing.T) {
	uploadErr := errors.New("connection refused")
	api := &fakeAPI{uploadErr: uploadErr}
	c := newTestController(t, api, Options{})

	if err := c.Track("job-1"); err != nil {
		t.Fatalf("Track: %v", err)
	}
	waitNotice(t, c, isTerminalNotice)

	_, err := c.Submit(context.Background(), "essay.txt")
	if !errors.Is(err, uploadErr) {
		t.Fatalf("Submit err = %v, want %v", err, uploadErr)
	}
	n := nextNotice(t, c)
	if n.Severity != SeverityError || n.Summary != "File upload failed. Please try again." {
		t.Fatalf("notice = %#v", n)
	}

	snap := c.Snapshot()
	if snap.Phase != state.PhaseFailed || snap.Uploading {
		t.Fatalf("snapshot = %#v, want failed, not uploading", snap)
	}
	if snap.Identifier != "job-1" {
		t.Fatalf("Identifier = %q, want previous job-1 kept", snap.Identifier)
	}
	if _, statuses, _ := api.calls(); statuses != 1 {
		t.Fatalf("status calls = %d, want only the earlier poll", statuses)
	}
}

func TestSubmit_TooLargeMakesNoCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.txt")
	if err := os.WriteFile(path, []byte(strings.Repeat("word ", 10)), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	api := &fakeAPI{uploadID: "job-1"}
	c := newTestController(t, api, Options{MaxUploadBytes: 8})

	_, err := c.Submit(context.Background(), path)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Submit err = %v, want ErrTooLarge", err)
	}
	if n := nextNotice(t, c); !strings.HasPrefix(n.Summary, "File is too large") {
		t.Fatalf("notice = %#v", n)
	}
	if u, _, _ := api.calls(); u != 0 {
		t.Fatalf("uploads = %d, want 0", u)
	}
}

func TestSubmit_SecondUploadWhileBusy(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeAPI{uploadID: "job-1", uploadGate: gate}
	c := newTestController(t, api, Options{})

	first := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background(), "a.txt")
		first <- err
	}()
	waitFor(t, func() bool { return c.Snapshot().Uploading })

	if _, err := c.Submit(context.Background(), "b.txt"); !errors.Is(err, ErrBusy) {
		t.Fatalf("second Submit err = %v, want ErrBusy", err)
	}
	if n := nextNotice(t, c); n.Summary != "An upload is already in progress." {
		t.Fatalf("notice = %#v", n)
	}

	close(gate)
	if err := <-first; err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if u, _, _ := api.calls(); u != 1 {
		t.Fatalf("uploads = %d, want 1", u)
	}
}

func TestPoll_TransportErrorStops(t *testing.T) {
	api := &fakeAPI{statusErr: errors.New("boom")}
	c := newTestController(t, api, Options{})

	if err := c.Track("job-1"); err != nil {
		t.Fatalf("Track: %v", err)
	}
	n := nextNotice(t, c)
	if n.Severity != SeverityError || n.Message() != "Error checking upload status: boom" {
		t.Fatalf("notice = %#v", n)
	}
	time.Sleep(30 * time.Millisecond)
	if _, statuses, _ := api.calls(); statuses != 1 {
		t.Fatalf("status calls = %d, want 1 (no reschedule)", statuses)
	}
	snap := c.Snapshot()
	if snap.Polling || snap.LastError == nil {
		t.Fatalf("snapshot = %#v, want polling cleared and error recorded", snap)
	}
}

func TestPoll_StaleLoopCannotOverwrite(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeAPI{
		statuses: map[string][]wordcount.JobStatus{
			"job-1": {wordcount.StatusFailed},
			"job-2": {wordcount.StatusCompleted},
		},
		statusGate:    map[string]chan struct{}{"job-1": gate},
		statusEntered: make(chan string, 4),
	}
	c := newTestController(t, api, Options{})

	if err := c.Track("job-1"); err != nil {
		t.Fatalf("Track job-1: %v", err)
	}
	if id := <-api.statusEntered; id != "job-1" {
		t.Fatalf("first status call for %q", id)
	}
	if err := c.Track("job-2"); err != nil {
		t.Fatalf("Track job-2: %v", err)
	}

	n := waitNotice(t, c, isTerminalNotice)
	if n.Identifier != "job-2" || n.Severity != SeveritySuccess {
		t.Fatalf("notice = %#v, want success for job-2", n)
	}

	close(gate)
	expectNoNotice(t, c, 50*time.Millisecond)

	snap := c.Snapshot()
	if snap.Identifier != "job-2" || snap.Status != wordcount.StatusCompleted || snap.Phase == state.PhaseFailed {
		t.Fatalf("snapshot = %#v, stale loop leaked into job-2", snap)
	}
}

func TestPoll_DeadlineStopsLoop(t *testing.T) {
	api := &fakeAPI{statuses: map[string][]wordcount.JobStatus{"job-1": {wordcount.StatusProcessing}}}
	c := newTestController(t, api, Options{Policy: Policy{
		Interval:    5 * time.Millisecond,
		MaxInterval: 5 * time.Millisecond,
		Timeout:     30 * time.Millisecond,
	}})

	if err := c.Track("job-1"); err != nil {
		t.Fatalf("Track: %v", err)
	}
	n := nextNotice(t, c)
	if n.Severity != SeverityError || n.Summary != "Gave up waiting for job-1 after 30ms" {
		t.Fatalf("notice = %#v", n)
	}
	snap := c.Snapshot()
	if snap.Polling || snap.LastError == nil {
		t.Fatalf("snapshot = %#v, want polling cleared with error", snap)
	}
}

func TestTrack_EmptyIdentifier(t *testing.T) {
	api := &fakeAPI{}
	c := newTestController(t, api, Options{})

	if err := c.Track("  "); !errors.Is(err, ErrNoIdentifier) {
		t.Fatalf("Track err = %v, want ErrNoIdentifier", err)
	}
	if _, s, _ := api.calls(); s != 0 {
		t.Fatalf("status calls = %d, want 0", s)
	}
}

func TestFetch_NoIdentifierMakesNoCalls(t *testing.T) {
	api := &fakeAPI{}
	c := newTestController(t, api, Options{})

	if _, err := c.Fetch(context.Background()); !errors.Is(err, ErrNoIdentifier) {
		t.Fatalf("Fetch err = %v, want ErrNoIdentifier", err)
	}
	if n := nextNotice(t, c); n.Severity != SeverityError {
		t.Fatalf("notice = %#v, want error", n)
	}
	if _, _, r := api.calls(); r != 0 {
		t.Fatalf("result calls = %d, want 0", r)
	}
}

func TestFetch_RefusedWhileUploading(t *testing.T) {
	uploadGate := make(chan struct{})
	resultGate := make(chan struct{})
	api := &fakeAPI{
		uploadID:      "job-B",
		uploadGate:    uploadGate,
		resultGate:    resultGate,
		resultEntered: make(chan struct{}, 1),
	}
	c := newTestController(t, api, Options{})
	ctx := context.Background()

	if err := c.Track("job-A"); err != nil {
		t.Fatalf("Track: %v", err)
	}
	early := make(chan error, 1)
	go func() {
		_, err := c.Fetch(ctx)
		early <- err
	}()
	<-api.resultEntered

	submitted := make(chan error, 1)
	go func() {
		_, err := c.Submit(ctx, "b.txt")
		submitted <- err
	}()
	waitFor(t, func() bool { return c.Snapshot().Uploading })

	if _, err := c.Fetch(ctx); !errors.Is(err, ErrBusy) {
		t.Fatalf("Fetch during upload err = %v, want ErrBusy", err)
	}
	waitNotice(t, c, func(n Notice) bool { return n.Summary == "Wait for the upload to finish before fetching." })
	if _, _, r := api.calls(); r != 1 {
		t.Fatalf("result calls = %d, want 1", r)
	}

	close(uploadGate)
	if err := <-submitted; err != nil {
		t.Fatalf("Submit: %v", err)
	}
	close(resultGate)
	if err := <-early; !errors.Is(err, state.ErrStale) {
		t.Fatalf("early Fetch err = %v, want ErrStale", err)
	}

	snap := c.Snapshot()
	if snap.Identifier != "job-B" || snap.HasResult || snap.Phase == state.PhaseReady {
		t.Fatalf("snapshot = %#v, want job-B without a result", snap)
	}
}

func TestFetch_ResultForOtherIdentifierIsRejected(t *testing.T) {
	foreign := wordcount.Result{
		Identifier:   "job-A",
		UploadStatus: wordcount.StatusCompleted,
		WordCounts:   []wordcount.WordCount{{Word: "alpha", Count: 3}},
	}
	api := &fakeAPI{results: []fakeResult{{result: foreign}}}
	c := newTestController(t, api, Options{})

	if err := c.Track("job-B"); err != nil {
		t.Fatalf("Track: %v", err)
	}
	if _, err := c.Fetch(context.Background()); !errors.Is(err, state.ErrForeignResult) {
		t.Fatalf("Fetch err = %v, want ErrForeignResult", err)
	}
	snap := c.Snapshot()
	if snap.HasResult || snap.Fetching || snap.Phase == state.PhaseReady {
		t.Fatalf("snapshot = %#v, want no stored result", snap)
	}
}

func TestFetch_RetriesWhileProcessing(t *testing.T) {
	partial := wordcount.Result{Identifier: "job-3", UploadStatus: wordcount.StatusProcessing}
	final := wordcount.Result{
		Identifier:   "job-3",
		UploadStatus: wordcount.StatusCompleted,
		WordCounts:   []wordcount.WordCount{{Word: "go", Count: 5}, {Word: "tea", Count: 2}},
	}
	api := &fakeAPI{results: []fakeResult{{result: partial}, {result: partial}, {result: final}}}
	c := newTestController(t, api, Options{})

	if err := c.Track("job-3"); err != nil {
		t.Fatalf("Track: %v", err)
	}
	got, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got.WordCounts) != 2 || got.UploadStatus != wordcount.StatusCompleted {
		t.Fatalf("Fetch = %#v", got)
	}
	if _, _, r := api.calls(); r != 3 {
		t.Fatalf("result calls = %d, want 3", r)
	}

	snap := c.Snapshot()
	if snap.Fetching || snap.Phase != state.PhaseReady || !snap.HasData() {
		t.Fatalf("snapshot = %#v, want ready with data", snap)
	}
}

func TestFetch_ErrorClearsFetching(t *testing.T) {
	partial := wordcount.Result{Identifier: "job-4", UploadStatus: wordcount.StatusProcessing}
	api := &fakeAPI{results: []fakeResult{{result: partial}, {err: errors.New("timeout")}}}
	c := newTestController(t, api, Options{})

	if err := c.Track("job-4"); err != nil {
		t.Fatalf("Track: %v", err)
	}
	if _, err := c.Fetch(context.Background()); err == nil {
		t.Fatalf("Fetch returned nil error")
	}
	n := waitNotice(t, c, func(n Notice) bool { return n.Summary == "Error sending request:" })
	if n.Message() != "Error sending request: timeout" {
		t.Fatalf("notice = %#v", n)
	}
	snap := c.Snapshot()
	if snap.Fetching {
		t.Fatalf("Fetching still set after error")
	}
	if !snap.HasResult {
		t.Fatalf("intermediate result was not stored")
	}
}

func TestFetch_ConcurrentCallsShareOneLoop(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeAPI{resultGate: gate, resultEntered: make(chan struct{}, 1)}
	c := newTestController(t, api, Options{})

	if err := c.Track("job-5"); err != nil {
		t.Fatalf("Track: %v", err)
	}

	type outcome struct {
		result wordcount.Result
		err    error
	}
	results := make(chan outcome, 2)
	fetch := func() {
		r, err := c.Fetch(context.Background())
		results <- outcome{r, err}
	}
	go fetch()
	<-api.resultEntered
	go fetch()
	time.Sleep(30 * time.Millisecond)
	close(gate)

	for i := 0; i < 2; i++ {
		o := <-results
		if o.err != nil || o.result.Identifier != "job-5" {
			t.Fatalf("Fetch = %#v, %v", o.result, o.err)
		}
	}
	if _, _, r := api.calls(); r != 1 {
		t.Fatalf("result calls = %d, want 1", r)
	}
}

func TestClose_StopsLoops(t *testing.T) {
	api := &fakeAPI{statuses: map[string][]wordcount.JobStatus{"job-1": {wordcount.StatusProcessing}}}
	c := newTestController(t, api, Options{})

	if err := c.Track("job-1"); err != nil {
		t.Fatalf("Track: %v", err)
	}
	waitFor(t, func() bool {
		_, s, _ := api.calls()
		return s >= 2
	})
	c.Close()

	if snap := c.Snapshot(); snap.Polling {
		t.Fatalf("Polling still set after Close")
	}
	_, before, _ := api.calls()
	time.Sleep(20 * time.Millisecond)
	if _, after, _ := api.calls(); after != before {
		t.Fatalf("status calls continued after Close: %d -> %d", before, after)
	}
	if err := c.Track("job-2"); !errors.Is(err, ErrClosed) {
		t.Fatalf("Track after Close err = %v, want ErrClosed", err)
	}
	select {
	case <-c.Done():
	default:
		t.Fatalf("Done not closed after Close")
	}
}
