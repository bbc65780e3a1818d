package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/singleflight"

	"github.com/five82/wordcloud/internal/state"
	"github.com/five82/wordcloud/internal/wordcount"
)

var (
	ErrNoFile       = errors.New("no file selected")
	ErrNoIdentifier = errors.New("no identifier")
	ErrBusy         = errors.New("upload already in progress")
	ErrTooLarge     = errors.New("file too large")
	ErrClosed       = errors.New("controller closed")
)

const (
	msgNoFile         = "Please select a file before uploading."
	msgNoIdentifier   = "Please enter an identifier first."
	msgBusy           = "An upload is already in progress."
	msgFetchBusy      = "Wait for the upload to finish before fetching."
	msgUploadFailed   = "File upload failed. Please try again."
	msgStatusFailed   = "Error checking upload status:"
	msgFetchFailed    = "Error sending request:"
	defaultNoticeSize = 32
)

// Options configure a Controller.
type Options struct {
	Policy         Policy
	MaxUploadBytes int64 // zero disables the size check
	Logger         *slog.Logger
	NoticeBuffer   int
}

// Controller drives the upload, poll and fetch lifecycle of one tracked job.
// Loops started for an identifier are cancelled as soon as a newer upload or
// identifier replaces it.
type Controller struct {
	api       wordcount.API
	store     *state.Store
	policy    Policy
	maxUpload int64
	logger    *slog.Logger
	notices   chan Notice
	fetches   singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	closed     bool
	loopCtx    context.Context
	loopCancel context.CancelFunc
	wg         sync.WaitGroup
}

// NewController wires api and store. ctx bounds every loop the controller
// starts; Close cancels it.
func NewController(ctx context.Context, api wordcount.API, store *state.Store, opts Options) *Controller {
	if opts.Policy == (Policy{}) {
		opts.Policy = DefaultPolicy()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.NoticeBuffer <= 0 {
		opts.NoticeBuffer = defaultNoticeSize
	}

	root, cancel := context.WithCancel(ctx)
	loopCtx, loopCancel := context.WithCancel(root)
	return &Controller{
		api:        api,
		store:      store,
		policy:     opts.Policy,
		maxUpload:  opts.MaxUploadBytes,
		logger:     opts.Logger,
		notices:    make(chan Notice, opts.NoticeBuffer),
		ctx:        root,
		cancel:     cancel,
		loopCtx:    loopCtx,
		loopCancel: loopCancel,
	}
}

// Notices delivers user-facing notices and lifecycle events.
func (c *Controller) Notices() <-chan Notice {
	return c.notices
}

// Done is closed once the controller is closed.
func (c *Controller) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Snapshot returns the current lifecycle state.
func (c *Controller) Snapshot() state.Snapshot {
	return c.store.Snapshot()
}

// Policy returns the cadence the controller runs with.
func (c *Controller) Policy() Policy {
	return c.policy
}

// Submit uploads the file at path and, once the service assigns an
// identifier, starts polling it. It blocks for the duration of the upload.
func (c *Controller) Submit(ctx context.Context, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		c.notify(Notice{Severity: SeverityError, Summary: msgNoFile})
		return "", ErrNoFile
	}

	if c.maxUpload > 0 {
		info, err := os.Stat(path)
		if err != nil {
			c.notify(Notice{Severity: SeverityError, Summary: msgUploadFailed})
			return "", fmt.Errorf("stat upload: %w", err)
		}
		if info.Size() > c.maxUpload {
			c.notify(Notice{
				Severity: SeverityError,
				Summary: fmt.Sprintf("File is too large (%s); the limit is %s.",
					humanize.Bytes(uint64(info.Size())), humanize.Bytes(uint64(c.maxUpload))),
			})
			return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, info.Size())
		}
	}

	name := filepath.Base(path)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", ErrClosed
	}
	gen, err := c.store.BeginUpload(name)
	if err != nil {
		c.mu.Unlock()
		c.notify(Notice{Severity: SeverityInfo, Summary: msgBusy})
		return "", ErrBusy
	}
	loopCtx := c.resetLoopsLocked()
	c.mu.Unlock()

	log := c.logger.With("generation", gen, "file", name)
	log.Info("upload started")

	uploadCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(loopCtx, cancel)
	defer stop()

	started := time.Now()
	identifier, err := c.api.Upload(uploadCtx, path)
	if err != nil {
		if c.store.Fail(gen, state.OpUpload, err) != nil {
			log.Debug("upload superseded", "error", err)
			return "", fmt.Errorf("upload %s: %w", name, state.ErrStale)
		}
		log.Warn("upload failed", "error", err)
		c.notify(Notice{Severity: SeverityError, Summary: msgUploadFailed, Generation: gen})
		return "", fmt.Errorf("upload %s: %w", name, err)
	}

	if err := c.store.CompleteUpload(gen, identifier); err != nil {
		log.Debug("upload superseded", "identifier", identifier)
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	log.Info("upload accepted", "identifier", identifier, "elapsed", time.Since(started).Round(time.Millisecond))

	c.notify(Notice{
		Kind:       KindIdentifierPublished,
		Severity:   SeverityInfo,
		Summary:    "Uploaded " + name,
		Identifier: identifier,
		Generation: gen,
	})
	c.startPoll(loopCtx, gen, identifier)
	return identifier, nil
}

// Track publishes identifier without uploading and starts polling it.
func (c *Controller) Track(identifier string) error {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		c.notify(Notice{Severity: SeverityError, Summary: msgNoIdentifier})
		return ErrNoIdentifier
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	gen := c.store.Track(identifier)
	loopCtx := c.resetLoopsLocked()
	c.mu.Unlock()

	c.logger.Info("tracking identifier", "identifier", identifier, "generation", gen)
	c.startPoll(loopCtx, gen, identifier)
	return nil
}

// Fetch retrieves the result for the current identifier, retrying while the
// service reports PROCESSING. Concurrent calls for the same identifier share
// one loop. Returning early because ctx ended does not stop the shared loop.
// Fetch is refused while an upload runs, since the upload's generation does
// not belong to the identifier still on screen.
func (c *Controller) Fetch(ctx context.Context) (wordcount.Result, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return wordcount.Result{}, ErrClosed
	}
	snap := c.store.Snapshot()
	loopCtx := c.loopCtx
	c.mu.Unlock()

	if snap.Uploading {
		c.notify(Notice{Severity: SeverityInfo, Summary: msgFetchBusy})
		return wordcount.Result{}, ErrBusy
	}
	if snap.Identifier == "" {
		c.notify(Notice{Severity: SeverityError, Summary: msgNoIdentifier})
		return wordcount.Result{}, ErrNoIdentifier
	}

	gen, identifier := snap.Generation, snap.Identifier
	key := fmt.Sprintf("%d/%s", gen, identifier)
	ch := c.fetches.DoChan(key, func() (any, error) {
		if !c.track() {
			return wordcount.Result{}, ErrClosed
		}
		defer c.wg.Done()
		return c.fetch(loopCtx, gen, identifier)
	})

	select {
	case <-ctx.Done():
		return wordcount.Result{}, ctx.Err()
	case res := <-ch:
		result, _ := res.Val.(wordcount.Result)
		return result, res.Err
	}
}

// Close cancels every loop and waits for them to return.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.cancel()
	c.mu.Unlock()
	c.wg.Wait()
}

// resetLoopsLocked cancels the loops of the previous generation and returns
// the context for the new one. c.mu must be held.
func (c *Controller) resetLoopsLocked() context.Context {
	c.loopCancel()
	c.loopCtx, c.loopCancel = context.WithCancel(c.ctx)
	return c.loopCtx
}

// track registers a loop goroutine unless the controller is closed.
func (c *Controller) track() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.wg.Add(1)
	return true
}

func (c *Controller) startPoll(ctx context.Context, gen uint64, identifier string) {
	if !c.track() {
		return
	}
	go func() {
		defer c.wg.Done()
		c.poll(ctx, gen, identifier)
	}()
}

// notify never blocks; when the buffer is full the notice is only logged.
func (c *Controller) notify(n Notice) {
	if n.At.IsZero() {
		n.At = time.Now()
	}
	attrs := []any{"severity", n.Severity.String()}
	if n.Identifier != "" {
		attrs = append(attrs, "identifier", n.Identifier)
	}
	if n.Generation != 0 {
		attrs = append(attrs, "generation", n.Generation)
	}
	c.logger.Debug("notice: "+n.Message(), attrs...)

	select {
	case c.notices <- n:
	default:
		c.logger.Warn("notice dropped", append(attrs, "summary", n.Summary)...)
	}
}
