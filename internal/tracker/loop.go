package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/five82/wordcloud/internal/state"
	"github.com/five82/wordcloud/internal/wordcount"
)

// poll queries the status of identifier until it leaves PROCESSING, the
// request fails, the deadline passes or ctx is cancelled.
func (c *Controller) poll(ctx context.Context, gen uint64, identifier string) {
	if err := c.store.Begin(gen, state.OpPoll); err != nil {
		return
	}
	log := c.logger.With("identifier", identifier, "generation", gen)

	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	for attempt := 0; ; attempt++ {
		status, err := c.api.FetchStatus(ctx, identifier)
		if err != nil {
			if c.interrupted(ctx, gen, state.OpPoll, identifier) {
				return
			}
			if c.store.Fail(gen, state.OpPoll, err) == nil {
				log.Warn("status poll failed", "attempt", attempt, "error", err)
				c.notify(Notice{
					Severity:   SeverityError,
					Summary:    msgStatusFailed,
					Detail:     err.Error(),
					Identifier: identifier,
					Generation: gen,
				})
			}
			return
		}

		if err := c.store.ObserveStatus(gen, status); err != nil {
			log.Debug("status poll superseded", "status", status)
			return
		}
		log.Debug("status polled", "attempt", attempt, "status", status)

		if status.IsTerminal() {
			severity := SeverityError
			if status.Succeeded() {
				severity = SeveritySuccess
			}
			log.Info("job finished", "status", status, "attempts", attempt+1)
			c.notify(Notice{
				Severity:   severity,
				Summary:    "File upload " + status.Label(),
				Identifier: identifier,
				Generation: gen,
				Status:     status,
			})
			return
		}

		if !wait(ctx, c.policy.Delay(attempt)) {
			c.interrupted(ctx, gen, state.OpPoll, identifier)
			return
		}
	}
}

// fetch retrieves the result for identifier, storing every payload and
// retrying while the service still reports PROCESSING.
func (c *Controller) fetch(ctx context.Context, gen uint64, identifier string) (wordcount.Result, error) {
	log := c.logger.With("identifier", identifier, "generation", gen)

	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	fetching := false
	for attempt := 0; ; attempt++ {
		result, err := c.api.FetchResult(ctx, identifier)
		if err != nil {
			if c.interrupted(ctx, gen, state.OpFetch, identifier) {
				return wordcount.Result{}, fmt.Errorf("fetch %s: %w", identifier, ctx.Err())
			}
			if c.store.Fail(gen, state.OpFetch, err) == nil {
				log.Warn("result fetch failed", "attempt", attempt, "error", err)
				c.notify(Notice{
					Severity:   SeverityError,
					Summary:    msgFetchFailed,
					Detail:     err.Error(),
					Identifier: identifier,
					Generation: gen,
				})
			}
			return wordcount.Result{}, fmt.Errorf("fetch %s: %w", identifier, err)
		}

		if err := c.store.ObserveResult(gen, result); err != nil {
			if errors.Is(err, state.ErrForeignResult) {
				log.Warn("result names another identifier", "got", result.Identifier)
				_ = c.store.Fail(gen, state.OpFetch, err)
			} else {
				log.Debug("result fetch superseded", "status", result.UploadStatus)
			}
			return result, fmt.Errorf("fetch %s: %w", identifier, err)
		}

		if result.UploadStatus != wordcount.StatusProcessing {
			if fetching {
				_ = c.store.End(gen, state.OpFetch)
			}
			log.Info("result fetched", "status", result.UploadStatus, "words", len(result.WordCounts), "attempts", attempt+1)
			return result, nil
		}

		if !fetching {
			if err := c.store.Begin(gen, state.OpFetch); err != nil {
				return result, fmt.Errorf("fetch %s: %w", identifier, err)
			}
			fetching = true
		}
		log.Debug("result still processing", "attempt", attempt)

		if !wait(ctx, c.policy.Delay(attempt)) {
			c.interrupted(ctx, gen, state.OpFetch, identifier)
			return result, fmt.Errorf("fetch %s: %w", identifier, ctx.Err())
		}
	}
}

func (c *Controller) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.policy.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.policy.Timeout)
}

// interrupted reports whether ctx has ended. A passed deadline is recorded
// and announced; a plain cancellation only releases the busy flag.
func (c *Controller) interrupted(ctx context.Context, gen uint64, op state.Operation, identifier string) bool {
	err := ctx.Err()
	if err == nil {
		return false
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		_ = c.store.End(gen, op)
		return true
	}

	summary := fmt.Sprintf("Gave up waiting for %s after %s", identifier, c.policy.Timeout)
	if c.store.Fail(gen, op, errors.New(summary)) == nil {
		c.logger.Warn("deadline exceeded", "identifier", identifier, "generation", gen, "op", op.String())
		c.notify(Notice{
			Severity:   SeverityError,
			Summary:    summary,
			Identifier: identifier,
			Generation: gen,
		})
	}
	return true
}

// wait sleeps for d or until ctx ends, reporting whether the full delay
// elapsed.
func wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
