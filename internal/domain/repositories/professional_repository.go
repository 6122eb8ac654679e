package repositories

import (
	"context"

	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
)

// ProfessionalRepository defines the persistence interface for professionals.
type ProfessionalRepository interface {
	// GetByID retrieves a professional by id.
	GetByID(ctx context.Context, id string) (*entities.Professional, error)

	// SetAvailability replaces the professional's weekly windows. Existing
	// appointments are immutable with respect to later availability edits.
	SetAvailability(ctx context.Context, id string, availability entities.WeeklyAvailability) error

	// Deactivate soft-deactivates the professional.
	Deactivate(ctx context.Context, id string) error
}
