// Package jobs is a postgres-backed outbox for outbound mail. Jobs are
// claimed one at a time and retried with exponential backoff.
package jobs

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// Queue is the slice of Repo the worker drives.
type Queue interface {
	Claim(ctx context.Context, workerID string) (*Job, error)
	MarkDone(ctx context.Context, id uint64) error
	MarkFailed(ctx context.Context, id uint64, errMsg string) error
	RetryLater(ctx context.Context, id uint64, attempts int, runAt time.Time, errMsg string) error
}

// Handler runs one job. Returning a Permanent error fails the job without
// retrying it.
type Handler func(ctx context.Context, job *Job) error

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error { return permanentError{err: err} }

type Worker struct {
	ID       string
	Queue    Queue
	Log      logrus.FieldLogger
	Interval time.Duration
	Now      func() time.Time

	handlers map[string]Handler
}

func (w *Worker) Handle(typ string, h Handler) {
	if w.handlers == nil {
		w.handlers = map[string]Handler{}
	}
	w.handlers[typ] = h
}

func (w *Worker) Run(ctx context.Context) {
	interval := w.Interval
	if interval <= 0 {
		interval = 800 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick claims and runs at most one due job. It reports whether a job ran.
func (w *Worker) Tick(ctx context.Context) bool {
	job, err := w.Queue.Claim(ctx, w.ID)
	if err != nil {
		w.logger().WithError(err).Warn("worker claim error")
		return false
	}
	if job == nil {
		return false
	}
	w.handle(ctx, job)
	return true
}

func (w *Worker) handle(ctx context.Context, job *Job) {
	log := w.logger().WithFields(logrus.Fields{"job_id": job.ID, "type": job.Type})

	h, ok := w.handlers[job.Type]
	if !ok {
		if err := w.Queue.MarkFailed(ctx, job.ID, "unknown job type"); err != nil {
			log.WithError(err).Error("mark failed")
		}
		log.Warn("unknown job type")
		return
	}

	err := h(ctx, job)
	var perm permanentError
	switch {
	case err == nil:
		if err := w.Queue.MarkDone(ctx, job.ID); err != nil {
			log.WithError(err).Error("mark done")
			return
		}
		log.Info("job done")
	case errors.As(err, &perm):
		if err := w.Queue.MarkFailed(ctx, job.ID, err.Error()); err != nil {
			log.WithError(err).Error("mark failed")
		}
		log.WithError(err).Warn("job failed")
	default:
		w.retry(ctx, log, job, err.Error())
		log.WithError(err).Warn("job will retry")
	}
}

func (w *Worker) retry(ctx context.Context, log logrus.FieldLogger, job *Job, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		if err := w.Queue.MarkFailed(ctx, job.ID, errMsg); err != nil {
			log.WithError(err).Error("mark failed")
		}
		return
	}

	if err := w.Queue.RetryLater(ctx, job.ID, attempts, w.now().Add(Backoff(attempts)), errMsg); err != nil {
		log.WithError(err).Error("schedule retry")
	}
}

// Backoff is 2^attempts seconds, capped at ten minutes.
func Backoff(attempts int) time.Duration {
	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	return time.Duration(sec) * time.Second
}

func (w *Worker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

func (w *Worker) logger() logrus.FieldLogger {
	if w.Log != nil {
		return w.Log
	}
	return logrus.StandardLogger()
}
