package services

import (
	"fmt"

	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
	apperrors "github.com/olatide/bookingscheduler/backend/pkg/errors"
)

// InvalidTransitionError indicates a status change the lifecycle table does
// not permit. The appointment is left untouched.
type InvalidTransitionError struct {
	From entities.AppointmentStatus
	To   entities.AppointmentStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition appointment from %s to %s", e.From, e.To)
}

// MissingDependencyError indicates an appointment references a tenant,
// client or service that no longer exists. Retrying cannot repair it; the
// referenced record has to be restored first.
type MissingDependencyError struct {
	Kind string
	ID   string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("%s %s referenced by the appointment does not exist", e.Kind, e.ID)
}

// dependencyError upgrades a not-found lookup into a MissingDependencyError.
// Other repository failures pass through untouched.
func dependencyError(kind, id string, err error) error {
	if appErr, ok := apperrors.AsAppError(err); ok && appErr.Type == apperrors.ErrorTypeNotFound {
		return &MissingDependencyError{Kind: kind, ID: id}
	}
	return err
}
