package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
	"github.com/olatide/bookingscheduler/backend/internal/domain/repositories"
	"github.com/olatide/bookingscheduler/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/olatide/bookingscheduler/backend/pkg/errors"
)

// ServiceAdapter implements the ServiceRepository interface
type ServiceAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewServiceAdapter creates a new service adapter
func NewServiceAdapter(client *postgres.Client) repositories.ServiceRepository {
	return &ServiceAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a service by ID
func (a *ServiceAdapter) GetByID(ctx context.Context, id string) (*entities.Service, error) {
	query, args, err := a.db.Select(
		"id", "tenant_id", "name", "duration_minutes", "price", "active",
		"created_at", "updated_at",
	).
		From("services").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	service := &entities.Service{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&service.ID,
		&service.TenantID,
		&service.Name,
		&service.DurationMinutes,
		&service.Price,
		&service.Active,
		&service.CreatedAt,
		&service.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("service with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get service", err)
	}

	return service, nil
}

// GetByIDs retrieves multiple services by their IDs, preserving the order of
// the requested ids. Any missing id surfaces as a not-found error.
func (a *ServiceAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Service, error) {
	if len(ids) == 0 {
		return []*entities.Service{}, nil
	}

	query, args, err := a.db.Select(
		"id", "tenant_id", "name", "duration_minutes", "price", "active",
		"created_at", "updated_at",
	).
		From("services").
		Where(goqu.Ex{"id": ids}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get services", err)
	}
	defer rows.Close()

	byID := make(map[string]*entities.Service, len(ids))
	for rows.Next() {
		service := &entities.Service{}
		err := rows.Scan(
			&service.ID,
			&service.TenantID,
			&service.Name,
			&service.DurationMinutes,
			&service.Price,
			&service.Active,
			&service.CreatedAt,
			&service.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan service", err)
		}
		byID[service.ID] = service
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate services", err)
	}

	services := make([]*entities.Service, 0, len(ids))
	for _, id := range ids {
		service, ok := byID[id]
		if !ok {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("service with id %s not found", id))
		}
		services = append(services, service)
	}

	return services, nil
}
