package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
	"github.com/olatide/bookingscheduler/backend/internal/domain/repositories"
	"github.com/olatide/bookingscheduler/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/olatide/bookingscheduler/backend/pkg/errors"
)

// ProfessionalAdapter implements the ProfessionalRepository interface
type ProfessionalAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewProfessionalAdapter creates a new professional adapter
func NewProfessionalAdapter(client *postgres.Client) repositories.ProfessionalRepository {
	return &ProfessionalAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a professional by ID
func (a *ProfessionalAdapter) GetByID(ctx context.Context, id string) (*entities.Professional, error) {
	query, args, err := a.db.Select(
		"id", "tenant_id", "display_name", "availability", "service_ids",
		"external_calendar_id", "external_refresh_token", "active",
		"created_at", "updated_at",
	).
		From("professionals").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	professional := &entities.Professional{}
	var availability []byte
	var serviceIDs pq.StringArray
	var externalCalendarID, externalRefreshToken sql.NullString

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&professional.ID,
		&professional.TenantID,
		&professional.DisplayName,
		&availability,
		&serviceIDs,
		&externalCalendarID,
		&externalRefreshToken,
		&professional.Active,
		&professional.CreatedAt,
		&professional.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("professional with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get professional", err)
	}

	if len(availability) > 0 {
		if err := json.Unmarshal(availability, &professional.Availability); err != nil {
			return nil, apperrors.NewInternalError("failed to decode availability", err)
		}
	}
	professional.ServiceIDs = []string(serviceIDs)
	if externalCalendarID.Valid {
		professional.ExternalCalendarID = &externalCalendarID.String
	}
	if externalRefreshToken.Valid {
		professional.ExternalRefreshToken = &externalRefreshToken.String
	}

	return professional, nil
}

// SetAvailability replaces the professional's weekly availability
func (a *ProfessionalAdapter) SetAvailability(ctx context.Context, id string, availability entities.WeeklyAvailability) error {
	encoded, err := json.Marshal(availability)
	if err != nil {
		return apperrors.NewInternalError("failed to encode availability", err)
	}

	query, args, err := a.db.Update("professionals").
		Set(goqu.Record{
			"availability": encoded,
			"updated_at":   time.Now(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update availability", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("professional with id %s not found", id))
	}

	return nil
}

// Deactivate marks a professional as inactive without removing history
func (a *ProfessionalAdapter) Deactivate(ctx context.Context, id string) error {
	query, args, err := a.db.Update("professionals").
		Set(goqu.Record{
			"active":     false,
			"updated_at": time.Now(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to deactivate professional", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("professional with id %s not found", id))
	}

	return nil
}
