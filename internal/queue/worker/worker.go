package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/meblomat/meblomat/internal/domain/job"
	"github.com/meblomat/meblomat/internal/notifications"
	"github.com/meblomat/meblomat/internal/observability"
)

// JobsRepository keeps this interface small so tests can fake it easily.
type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (job.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error
	RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error)
}

type Config struct {
	WorkerID     string
	PollInterval time.Duration
	LockTTL      time.Duration
	SiteURL      string
}

type Worker struct {
	cfg      Config
	repo     JobsRepository
	notifier notifications.Notifier
	log      *slog.Logger
	prom     *observability.Prom

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, repo JobsRepository, notifier notifications.Notifier, log *slog.Logger, prom *observability.Prom) *Worker {
	if cfg.WorkerID == "" {
		host, _ := os.Hostname()
		cfg.WorkerID = fmt.Sprintf("%s-%d", host, os.Getpid())
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 1 * time.Second
	}

	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 60 * time.Second
	}

	return &Worker{
		cfg:      cfg,
		repo:     repo,
		notifier: notifier,
		log:      log,
		prom:     prom,
	}
}

// Run polls for runnable jobs until the context is cancelled. After a
// successful claim it drains the queue before sleeping again, so a burst of
// invites is not throttled to one per tick.
func (w *Worker) Run(ctx context.Context) error {
	w.setReady(true)
	defer w.setReady(false)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	stale := time.NewTicker(w.cfg.LockTTL)
	defer stale.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker received shutdown signal", "workerId", w.cfg.WorkerID)
			return nil

		case <-stale.C:
			n, err := w.repo.RequeueStaleProcessing(ctx, w.cfg.LockTTL)

			if err != nil {
				w.log.ErrorContext(ctx, "requeue stale jobs failed", "error", err)
				continue
			}

			if n > 0 {
				w.log.WarnContext(ctx, "requeued stale jobs", "count", n)
			}

		case <-ticker.C:
			for {
				processed, err := w.ProcessOne(ctx)

				if err != nil {
					w.log.ErrorContext(ctx, "process job failed", "error", err)
					break
				}

				if !processed {
					break
				}
			}
		}
	}
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}
