package repositories

import (
	"context"

	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
)

// WebhookEventRepository journals received change notifications so the
// webhook boundary can drop duplicate deliveries.
type WebhookEventRepository interface {
	// IsProcessed reports whether the event id has already been processed.
	IsProcessed(ctx context.Context, provider, eventID string) (bool, error)

	// Store records a received event; duplicate ids are a no-op.
	Store(ctx context.Context, event *entities.WebhookEvent) error

	// MarkProcessed flags the event as handled.
	MarkProcessed(ctx context.Context, provider, eventID string) error

	// MarkFailed records the processing error for the event.
	MarkFailed(ctx context.Context, provider, eventID string, reason string) error
}
