package providers

import (
	"context"
	"time"

	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to
// appointment change notifications.
type EventBus interface {
	// Publish publishes a change notification to all subscribers.
	Publish(ctx context.Context, channel string, event *entities.ChangeNotification) error

	// Subscribe subscribes to notifications on a channel.
	Subscribe(ctx context.Context, channel string) (<-chan *entities.ChangeNotification, error)

	// Unsubscribe unsubscribes from a channel.
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions.
	Close() error
}

// SyncQueue is the durable buffer between the change-notification boundary
// and the calendar sync worker. The adapter's idempotent branching keeps the
// external state convergent even when the same notification is delivered
// more than once.
type SyncQueue interface {
	// Enqueue appends a notification to the queue.
	Enqueue(ctx context.Context, event *entities.ChangeNotification) error

	// Dequeue pops the oldest notification, blocking up to timeout. A nil
	// notification with nil error means the timeout elapsed.
	Dequeue(ctx context.Context, timeout time.Duration) (*entities.ChangeNotification, error)
}

// Channel constants for appointment change notifications
const (
	// EventChannelAppointmentChanges is the channel for all appointment changes
	EventChannelAppointmentChanges = "appointments:changes"

	// EventChannelProfessionalPrefix is the prefix for per-professional channels
	EventChannelProfessionalPrefix = "appointments:professional:"
)

// GetProfessionalChannel returns the channel name for one professional's changes.
func GetProfessionalChannel(professionalID string) string {
	return EventChannelProfessionalPrefix + professionalID
}
