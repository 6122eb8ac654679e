package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
	"github.com/olatide/bookingscheduler/backend/internal/domain/repositories"
	"github.com/olatide/bookingscheduler/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/olatide/bookingscheduler/backend/pkg/errors"
)

// uniqueViolation is the Postgres error code raised by the partial unique
// index on (professional_id, start_at) guarding concurrent bookings.
const uniqueViolation = "23505"

// AppointmentAdapter implements the AppointmentRepository interface
type AppointmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAppointmentAdapter creates a new appointment adapter
func NewAppointmentAdapter(client *postgres.Client) repositories.AppointmentRepository {
	return &AppointmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var appointmentColumns = []interface{}{
	"id", "tenant_id", "client_id", "professional_id", "service_ids",
	"start_at", "end_at", "duration_minutes", "status", "external_event_id",
	"notes", "created_at", "updated_at",
}

// Create creates a new appointment. A conflicting booking for the same
// professional and start surfaces as a conflict error.
func (a *AppointmentAdapter) Create(ctx context.Context, appointment *entities.Appointment) error {
	record := goqu.Record{
		"id":                appointment.ID,
		"tenant_id":         appointment.TenantID,
		"client_id":         appointment.ClientID,
		"professional_id":   appointment.ProfessionalID,
		"service_ids":       pq.Array(appointment.ServiceIDs),
		"start_at":          appointment.StartAt,
		"end_at":            appointment.EndAt,
		"duration_minutes":  appointment.DurationMinutes,
		"status":            appointment.Status,
		"external_event_id": appointment.ExternalEventID,
		"notes":             appointment.Notes,
		"created_at":        appointment.CreatedAt,
		"updated_at":        appointment.UpdatedAt,
	}

	query, args, err := a.db.Insert("appointments").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return apperrors.NewConflictError("slot already booked for this professional")
		}
		return apperrors.NewInternalError("failed to create appointment", err)
	}

	return nil
}

// GetByID retrieves an appointment by ID
func (a *AppointmentAdapter) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	query, args, err := a.db.Select(appointmentColumns...).
		From("appointments").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	appointment, err := scanAppointment(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get appointment", err)
	}
	return appointment, nil
}

// Update persists schedule and status changes
func (a *AppointmentAdapter) Update(ctx context.Context, appointment *entities.Appointment) error {
	appointment.UpdatedAt = time.Now()

	record := goqu.Record{
		"client_id":         appointment.ClientID,
		"service_ids":       pq.Array(appointment.ServiceIDs),
		"start_at":          appointment.StartAt,
		"end_at":            appointment.EndAt,
		"duration_minutes":  appointment.DurationMinutes,
		"status":            appointment.Status,
		"external_event_id": appointment.ExternalEventID,
		"notes":             appointment.Notes,
		"updated_at":        appointment.UpdatedAt,
	}

	query, args, err := a.db.Update("appointments").
		Set(record).
		Where(goqu.Ex{"id": appointment.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return apperrors.NewConflictError("slot already booked for this professional")
		}
		return apperrors.NewInternalError("failed to update appointment", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", appointment.ID))
	}

	return nil
}

// SetExternalEventID writes back or clears the external calendar event id
func (a *AppointmentAdapter) SetExternalEventID(ctx context.Context, id string, externalEventID *string) error {
	query, args, err := a.db.Update("appointments").
		Set(goqu.Record{
			"external_event_id": externalEventID,
			"updated_at":        time.Now(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to set external event id", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
	}

	return nil
}

// ListForProfessionalOn returns the professional's appointments whose
// interval intersects the given calendar day
func (a *AppointmentAdapter) ListForProfessionalOn(ctx context.Context, professionalID string, day time.Time) ([]*entities.Appointment, error) {
	year, month, d := day.Date()
	dayStart := time.Date(year, month, d, 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	query, args, err := a.db.Select(appointmentColumns...).
		From("appointments").
		Where(
			goqu.Ex{"professional_id": professionalID},
			goqu.C("start_at").Lt(dayEnd),
			goqu.C("end_at").Gt(dayStart),
		).
		Order(goqu.C("start_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list appointments", err)
	}
	defer rows.Close()

	var appointments []*entities.Appointment
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan appointment", err)
		}
		appointments = append(appointments, appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate appointments", err)
	}

	return appointments, nil
}

// rowScanner abstracts sql.Row and sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*entities.Appointment, error) {
	appointment := &entities.Appointment{}
	var serviceIDs pq.StringArray
	var externalEventID, notes sql.NullString

	err := row.Scan(
		&appointment.ID,
		&appointment.TenantID,
		&appointment.ClientID,
		&appointment.ProfessionalID,
		&serviceIDs,
		&appointment.StartAt,
		&appointment.EndAt,
		&appointment.DurationMinutes,
		&appointment.Status,
		&externalEventID,
		&notes,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	appointment.ServiceIDs = []string(serviceIDs)
	if externalEventID.Valid {
		appointment.ExternalEventID = &externalEventID.String
	}
	appointment.Notes = notes.String

	return appointment, nil
}
