package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
	"github.com/olatide/bookingscheduler/backend/internal/domain/repositories"
	"github.com/olatide/bookingscheduler/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/olatide/bookingscheduler/backend/pkg/errors"
)

// WebhookEventAdapter implements the WebhookEventRepository interface
type WebhookEventAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewWebhookEventAdapter creates a new webhook event adapter
func NewWebhookEventAdapter(client *postgres.Client) repositories.WebhookEventRepository {
	return &WebhookEventAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// IsProcessed reports whether the event has already been handled
func (a *WebhookEventAdapter) IsProcessed(ctx context.Context, provider, eventID string) (bool, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).
		From("webhook_events").
		Where(goqu.Ex{
			"id":        eventID,
			"provider":  provider,
			"processed": true,
		}).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, apperrors.NewInternalError("failed to check webhook event", err)
	}

	return count > 0, nil
}

// Store journals a received event. Duplicate deliveries are a no-op.
func (a *WebhookEventAdapter) Store(ctx context.Context, event *entities.WebhookEvent) error {
	record := goqu.Record{
		"id":         event.ID,
		"provider":   event.Provider,
		"event_type": event.EventType,
		"payload":    event.Payload,
		"processed":  false,
		"created_at": time.Now(),
	}

	query, args, err := a.db.Insert("webhook_events").
		Rows(record).
		OnConflict(goqu.DoNothing()).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to store webhook event", err)
	}

	return nil
}

// MarkProcessed flags the event as handled
func (a *WebhookEventAdapter) MarkProcessed(ctx context.Context, provider, eventID string) error {
	query, args, err := a.db.Update("webhook_events").
		Set(goqu.Record{
			"processed":    true,
			"processed_at": time.Now(),
		}).
		Where(goqu.Ex{"id": eventID, "provider": provider}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to mark webhook event processed", err)
	}

	return nil
}

// MarkFailed records the processing error for the event
func (a *WebhookEventAdapter) MarkFailed(ctx context.Context, provider, eventID string, reason string) error {
	query, args, err := a.db.Update("webhook_events").
		Set(goqu.Record{"error_message": reason}).
		Where(goqu.Ex{"id": eventID, "provider": provider}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to mark webhook event failed", err)
	}

	return nil
}
