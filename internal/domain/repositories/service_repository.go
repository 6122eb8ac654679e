package repositories

import (
	"context"

	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
)

// ServiceRepository defines the persistence interface for services.
type ServiceRepository interface {
	// GetByID retrieves a service by id.
	GetByID(ctx context.Context, id string) (*entities.Service, error)

	// GetByIDs retrieves services preserving the order of ids. A missing id
	// surfaces as a not-found error.
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Service, error)
}
