package services

import (
	"context"

	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
	"github.com/olatide/bookingscheduler/backend/internal/domain/providers"
	"github.com/olatide/bookingscheduler/backend/internal/infrastructure/observability"
	apperrors "github.com/olatide/bookingscheduler/backend/pkg/errors"
)

// BillingService gates the administrative billing batch job behind elevated
// staff identity.
type BillingService struct {
	runner providers.BillingRunner
}

// NewBillingService creates a new billing service
func NewBillingService(runner providers.BillingRunner) *BillingService {
	return &BillingService{runner: runner}
}

// Run starts a billing run on behalf of the given identity and returns the
// run id for later log retrieval.
func (s *BillingService) Run(ctx context.Context, identity entities.Identity, req providers.BillingRunRequest) (string, error) {
	if identity.Kind != entities.IdentityKindStaff || !identity.Elevated {
		return "", apperrors.NewUnauthorizedError("billing runs require elevated staff access")
	}

	switch req.Scope {
	case providers.BillingScopeAll:
		if req.TargetID != "" {
			return "", apperrors.NewValidationError("target id is not allowed for an ALL scope run")
		}
	case providers.BillingScopeSingle:
		if req.TargetID == "" {
			return "", apperrors.NewValidationError("target id is required for a SINGLE scope run")
		}
	default:
		return "", apperrors.NewValidationError("unknown billing scope")
	}

	runID, err := s.runner.Run(ctx, req)
	if err != nil {
		return "", apperrors.NewExternalError("billing run failed to start", err)
	}

	observability.LoggerFromContext(ctx).Info().
		Str("run_id", runID).
		Str("scope", string(req.Scope)).
		Str("target_id", req.TargetID).
		Bool("dry_run", req.DryRun).
		Str("requested_by", identity.SubjectID).
		Msg("Billing run started")

	return runID, nil
}
