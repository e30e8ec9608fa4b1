package async

import (
	"context"
	"time"

	"github.com/joseph-ayodele/pricelist-tracker/internal/entity"
)

// PendingLister lists pending page jobs; repository.PageJobRepository satisfies it.
type PendingLister interface {
	ListPending(ctx context.Context, limit int) ([]*entity.PageJob, error)
}

// Idle reports whether no job is waiting in the channel.
func (q *ProcessorQueue) Idle() bool { return len(q.ch) == 0 }

// Poll feeds pending jobs into the queue every interval until ctx is done.
// A tick is skipped while earlier jobs are still queued, so a pending job is
// not enqueued twice.
func (q *ProcessorQueue) Poll(ctx context.Context, jobs PendingLister, interval time.Duration, batch int) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if q.Idle() {
			q.pollOnce(ctx, jobs, batch)
		}
		select {
		case <-ctx.Done():
			q.logger.Info("poller stopped")
			return
		case <-ticker.C:
		}
	}
}

func (q *ProcessorQueue) pollOnce(ctx context.Context, jobs PendingLister, batch int) {
	pending, err := jobs.ListPending(ctx, batch)
	if err != nil {
		if ctx.Err() == nil {
			q.logger.Error("list pending page jobs failed", "error", err)
		}
		return
	}
	if len(pending) > 0 {
		q.logger.Info("enqueueing pending page jobs", "count", len(pending))
	}
	for _, job := range pending {
		if err := q.Enqueue(ctx, job.ID); err != nil {
			return
		}
	}
}
