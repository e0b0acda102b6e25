package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meblomat/meblomat/internal/domain/job"
	"github.com/meblomat/meblomat/internal/jobs"
	"github.com/meblomat/meblomat/internal/notifications"
)

// ProcessOne claims and executes a single job. The bool reports whether a job
// was processed at all; (false, nil) means the queue was empty.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return false, nil
		}

		return false, err
	}

	start := time.Now()

	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
	}

	execErr := w.execute(ctx, j)

	if w.prom != nil {
		w.prom.JobsInFlight.Dec()
	}

	if execErr != nil {
		w.handleFailure(ctx, j, execErr)
		w.observeJob(j.Type, resultOf(j, execErr), time.Since(start))
		return true, nil
	}

	if err := w.repo.MarkDone(ctx, j.ID); err != nil {
		_ = w.repo.MarkFailed(ctx, j.ID, "mark_done_failed: "+err.Error())
		w.observeJob(j.Type, "failed", time.Since(start))
		return true, err
	}

	w.log.InfoContext(ctx, "job done", "jobId", j.ID, "type", j.Type, "attempts", j.Attempts)
	w.observeJob(j.Type, "done", time.Since(start))
	return true, nil
}

func (w *Worker) execute(ctx context.Context, j job.Job) error {
	payload, err := jobs.DecodePayload(j)

	if err != nil {
		return err
	}

	switch p := payload.(type) {
	case jobs.SendClientInvitePayload:
		return w.notifier.SendClientInvite(ctx, notifications.ClientInviteInput{
			ClientID:   p.ClientID,
			Email:      p.Email,
			ClientName: p.ClientName,
			InviteURL:  fmt.Sprintf("%s/zaproszenie/%d", w.cfg.SiteURL, p.ClientID),
		})
	default:
		return jobs.ErrInvalidJobType
	}
}

// handleFailure decides between retry with backoff and the dead-letter state.
// A malformed payload never retries: it will not get better.
func (w *Worker) handleFailure(ctx context.Context, j job.Job, execErr error) {
	permanent := errors.Is(execErr, jobs.ErrInvalidJobType) ||
		errors.Is(execErr, jobs.ErrInvalidJobPayload)

	if permanent || j.Attempts+1 >= j.MaxAttempts {
		w.log.ErrorContext(ctx, "job failed permanently",
			"jobId", j.ID, "type", j.Type, "attempts", j.Attempts, "error", execErr)

		if err := w.repo.MarkFailed(ctx, j.ID, execErr.Error()); err != nil {
			w.log.ErrorContext(ctx, "mark failed errored", "jobId", j.ID, "error", err)
		}
		return
	}

	delay := ExponentialBackoff(j.Attempts)
	runAt := time.Now().UTC().Add(delay)

	w.log.WarnContext(ctx, "job retry scheduled",
		"jobId", j.ID, "type", j.Type, "attempt", j.Attempts+1, "delay", delay, "error", execErr)

	if err := w.repo.Reschedule(ctx, j.ID, runAt, execErr.Error()); err != nil {
		w.log.ErrorContext(ctx, "reschedule errored", "jobId", j.ID, "error", err)
	}
}

func resultOf(j job.Job, execErr error) string {
	permanent := errors.Is(execErr, jobs.ErrInvalidJobType) ||
		errors.Is(execErr, jobs.ErrInvalidJobPayload)

	if permanent || j.Attempts+1 >= j.MaxAttempts {
		return "failed"
	}

	return "retry"
}

func (w *Worker) observeJob(jobType, result string, d time.Duration) {
	if w.prom == nil {
		return
	}

	w.prom.JobResults.WithLabelValues(jobType, result).Inc()
	w.prom.JobDuration.WithLabelValues(jobType, result).Observe(d.Seconds())
}
