package repositories

import (
	"context"

	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
)

// TenantRepository defines tenant and client lookups needed to build the
// external calendar event body.
type TenantRepository interface {
	// GetTenant retrieves a tenant by id.
	GetTenant(ctx context.Context, id string) (*entities.Tenant, error)

	// GetClient retrieves a client by id.
	GetClient(ctx context.Context, id string) (*entities.Client, error)
}
