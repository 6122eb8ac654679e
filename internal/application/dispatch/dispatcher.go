package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
	"github.com/olatide/bookingscheduler/backend/internal/domain/providers"
	"github.com/olatide/bookingscheduler/backend/internal/infrastructure/observability"
	"github.com/olatide/bookingscheduler/backend/pkg/retry"
)

// Syncer applies one change notification to the external calendar. A non-nil
// error marks the failure retryable; a failed result with nil error is
// permanent for the notification.
type Syncer interface {
	Sync(ctx context.Context, notification *entities.ChangeNotification) (entities.SyncResult, error)
}

// Dispatcher routes appointment change notifications from the event bus into
// calendar sync. In direct mode each notification is synced in its own
// goroutine; in queue mode notifications are handed to the durable queue and
// a separate worker drains them.
type Dispatcher struct {
	bus      providers.EventBus
	queue    providers.SyncQueue
	syncer   Syncer
	retryCfg retry.Config
	logger   zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher. queue may be nil for direct in-process
// dispatch.
func NewDispatcher(bus providers.EventBus, queue providers.SyncQueue, syncer Syncer, retryCfg retry.Config) *Dispatcher {
	return &Dispatcher{
		bus:      bus,
		queue:    queue,
		syncer:   syncer,
		retryCfg: retryCfg,
		logger:   observability.ComponentLogger("sync_dispatcher"),
	}
}

// Start subscribes to the appointment change channel and dispatches until
// Stop is called or the context is canceled.
func (d *Dispatcher) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	ch, err := d.bus.Subscribe(ctx, providers.EventChannelAppointmentChanges)
	if err != nil {
		cancel()
		return err
	}

	d.mu.Lock()
	d.cancel = cancel
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case notification, open := <-ch:
				if !open {
					return
				}
				d.dispatch(ctx, notification)
			}
		}
	}()

	return nil
}

// Stop cancels the subscription loop and waits for in-flight syncs.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) dispatch(ctx context.Context, notification *entities.ChangeNotification) {
	if notification == nil {
		return
	}

	if d.queue != nil {
		if err := d.queue.Enqueue(ctx, notification); err != nil {
			d.logger.Error().Err(err).
				Str("notification_id", notification.ID).
				Msg("Failed to enqueue change notification")
		}
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		SyncWithRetry(ctx, d.syncer, notification, d.retryCfg, d.logger)
	}()
}

// SyncWithRetry runs one sync with bounded exponential backoff. Only
// retryable failures re-attempt; a permanent failure or success ends the
// loop immediately.
func SyncWithRetry(ctx context.Context, syncer Syncer, notification *entities.ChangeNotification, cfg retry.Config, logger zerolog.Logger) entities.SyncResult {
	var result entities.SyncResult

	err := retry.DoWithLog(ctx, cfg, "calendar_sync", func() error {
		var syncErr error
		result, syncErr = syncer.Sync(ctx, notification)
		return syncErr
	}, func(attempt int, err error, nextDelay time.Duration) {
		logger.Warn().Err(err).
			Str("notification_id", notification.ID).
			Int("attempt", attempt).
			Dur("next_delay", nextDelay).
			Msg("Calendar sync attempt failed")
	})
	if err != nil {
		logger.Error().Err(err).
			Str("notification_id", notification.ID).
			Msg("Calendar sync gave up")
	}

	return result
}
