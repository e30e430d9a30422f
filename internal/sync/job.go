package sync

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/terra-clan/progress-engine/internal/models"
)

// ErrJobRunning is returned by Result before the pass has finished.
var ErrJobRunning = errors.New("sync job still running")

// Job is an observable handle on a background sync pass. Unlike a
// detached goroutine, it can be awaited and cancelled, and its outcome
// is inspectable after completion.
type Job struct {
	UserID uuid.UUID

	done   chan struct{}
	cancel context.CancelFunc
	result *models.SyncResult
	err    error
}

// Done is closed when the pass finishes.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Cancel stops the pass at its next suspension point.
func (j *Job) Cancel() {
	j.cancel()
}

// Wait blocks until the pass finishes or ctx expires.
func (j *Job) Wait(ctx context.Context) (*models.SyncResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-j.done:
		return j.result, j.err
	}
}

// Result returns the outcome once Done is closed.
func (j *Job) Result() (*models.SyncResult, error) {
	select {
	case <-j.done:
		return j.result, j.err
	default:
		return nil, ErrJobRunning
	}
}

// SyncUserAsync starts a sync pass in the background and returns its
// handle. Used for the post-registration bootstrap, where the caller
// should not wait but the outcome must stay observable.
func (o *Orchestrator) SyncUserAsync(ctx context.Context, userID uuid.UUID) *Job {
	jobCtx, cancel := context.WithCancel(ctx)
	job := &Job{
		UserID: userID,
		done:   make(chan struct{}),
		cancel: cancel,
	}

	go func() {
		defer close(job.done)
		defer cancel()

		job.result, job.err = o.SyncUser(jobCtx, userID)
		if job.err != nil {
			slog.Warn("background sync failed", "user_id", userID, "error", job.err)
		}
	}()

	return job
}
