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

// TenantAdapter implements the TenantRepository interface
type TenantAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewTenantAdapter creates a new tenant adapter
func NewTenantAdapter(client *postgres.Client) repositories.TenantRepository {
	return &TenantAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetTenant retrieves a tenant by ID
func (a *TenantAdapter) GetTenant(ctx context.Context, id string) (*entities.Tenant, error) {
	query, args, err := a.db.Select(
		"id", "name", "address", "phone", "created_at", "updated_at",
	).
		From("tenants").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	tenant := &entities.Tenant{}
	var address, phone sql.NullString
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&tenant.ID,
		&tenant.Name,
		&address,
		&phone,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("tenant with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get tenant", err)
	}

	tenant.Address = address.String
	tenant.Phone = phone.String

	return tenant, nil
}

// GetClient retrieves a client by ID
func (a *TenantAdapter) GetClient(ctx context.Context, id string) (*entities.Client, error) {
	query, args, err := a.db.Select(
		"id", "tenant_id", "name", "email", "phone", "created_at", "updated_at",
	).
		From("clients").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	client := &entities.Client{}
	var email, phone sql.NullString
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&client.ID,
		&client.TenantID,
		&client.Name,
		&email,
		&phone,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("client with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get client", err)
	}

	client.Email = email.String
	client.Phone = phone.String

	return client, nil
}
