package dispatch

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/olatide/bookingscheduler/backend/internal/domain/providers"
	"github.com/olatide/bookingscheduler/backend/internal/infrastructure/observability"
	"github.com/olatide/bookingscheduler/backend/pkg/retry"
)

// Worker drains the durable sync queue. Each dequeued notification is synced
// with the bounded retry budget; exhausted or permanent failures are dropped
// after logging, since the adapter's idempotent branching lets the next
// mutation for the same appointment re-converge.
type Worker struct {
	queue          providers.SyncQueue
	syncer         Syncer
	retryCfg       retry.Config
	dequeueTimeout time.Duration
	logger         zerolog.Logger
}

// NewWorker creates a queue worker
func NewWorker(queue providers.SyncQueue, syncer Syncer, retryCfg retry.Config) *Worker {
	return &Worker{
		queue:          queue,
		syncer:         syncer,
		retryCfg:       retryCfg,
		dequeueTimeout: 5 * time.Second,
		logger:         observability.ComponentLogger("sync_worker"),
	}
}

// Run blocks draining the queue until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Msg("Sync worker started")

	for {
		if err := ctx.Err(); err != nil {
			w.logger.Info().Msg("Sync worker stopping")
			return err
		}

		notification, err := w.queue.Dequeue(ctx, w.dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.logger.Error().Err(err).Msg("Failed to dequeue change notification")
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		if notification == nil {
			continue
		}

		SyncWithRetry(ctx, w.syncer, notification, w.retryCfg, w.logger)
	}
}
