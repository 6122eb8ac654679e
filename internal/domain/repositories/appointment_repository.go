package repositories

import (
	"context"
	"time"

	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
)

// AppointmentRepository defines the persistence interface for appointments.
// The storage layer provides the atomicity for the read-modify-write of the
// external event id and the uniqueness guard on (professional_id, start_at)
// for concurrent bookings.
type AppointmentRepository interface {
	// Create persists a new appointment. A uniqueness violation on the
	// professional/start pair surfaces as a conflict error.
	Create(ctx context.Context, appointment *entities.Appointment) error

	// GetByID retrieves an appointment by id.
	GetByID(ctx context.Context, id string) (*entities.Appointment, error)

	// Update persists schedule and status changes.
	Update(ctx context.Context, appointment *entities.Appointment) error

	// SetExternalEventID writes back (or clears, with nil) the external
	// calendar event id for the appointment.
	SetExternalEventID(ctx context.Context, id string, externalEventID *string) error

	// ListForProfessionalOn returns the professional's appointments whose
	// interval intersects the given calendar day, all statuses included.
	ListForProfessionalOn(ctx context.Context, professionalID string, day time.Time) ([]*entities.Appointment, error)
}
