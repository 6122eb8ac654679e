package providers

import (
	"context"

	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
)

// IdentityResolver is the external identity provider: given a session token
// it returns the authenticated identity. The engine trusts the returned ids
// without further verification.
type IdentityResolver interface {
	Resolve(ctx context.Context, sessionToken string) (entities.Identity, error)
}

// BillingScope selects the tenants an administrative billing run covers.
type BillingScope string

const (
	BillingScopeAll    BillingScope = "ALL"
	BillingScopeSingle BillingScope = "SINGLE"
)

// BillingRunRequest parameterizes the opaque administrative billing
// operation.
type BillingRunRequest struct {
	Scope    BillingScope `json:"scope"`
	TargetID string       `json:"target_id,omitempty"`
	DryRun   bool         `json:"dry_run"`
}

// BillingRunner invokes the external billing batch job and returns a run
// identifier used only for later log retrieval.
type BillingRunner interface {
	Run(ctx context.Context, req BillingRunRequest) (string, error)
}
