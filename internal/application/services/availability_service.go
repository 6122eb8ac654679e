package services

import (
	"context"
	"time"

	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
	"github.com/olatide/bookingscheduler/backend/internal/domain/repositories"
	"github.com/olatide/bookingscheduler/backend/internal/domain/scheduling"
	"github.com/olatide/bookingscheduler/backend/internal/infrastructure/observability"
	apperrors "github.com/olatide/bookingscheduler/backend/pkg/errors"
)

// AvailabilityService computes bookable slots for a professional and date.
type AvailabilityService struct {
	professionalRepo repositories.ProfessionalRepository
	serviceRepo      repositories.ServiceRepository
	appointmentRepo  repositories.AppointmentRepository
	metrics          *observability.Metrics
	now              func() time.Time
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(
	professionalRepo repositories.ProfessionalRepository,
	serviceRepo repositories.ServiceRepository,
	appointmentRepo repositories.AppointmentRepository,
	metrics *observability.Metrics,
) *AvailabilityService {
	return &AvailabilityService{
		professionalRepo: professionalRepo,
		serviceRepo:      serviceRepo,
		appointmentRepo:  appointmentRepo,
		metrics:          metrics,
		now:              time.Now,
	}
}

// GetAvailableSlots returns the valid booking start times for the
// professional on the given date, for the summed duration of the requested
// services. intervalMinutes <= 0 falls back to the default grid.
func (s *AvailabilityService) GetAvailableSlots(
	ctx context.Context,
	professionalID string,
	serviceIDs []string,
	date time.Time,
	intervalMinutes int,
) ([]time.Time, error) {
	started := s.now()

	professional, err := s.professionalRepo.GetByID(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	if !professional.Active {
		return nil, apperrors.NewValidationError("professional is not accepting bookings")
	}

	duration, err := s.resolveDuration(ctx, serviceIDs)
	if err != nil {
		return nil, err
	}

	existing, err := s.appointmentRepo.ListForProfessionalOn(ctx, professionalID, date)
	if err != nil {
		return nil, err
	}

	slots := scheduling.CollectSlots(professional, duration, date, existing, intervalMinutes, s.now())

	observability.RecordSlotComputation(ctx, s.metrics, time.Since(started))
	observability.LoggerFromContext(ctx).Debug().
		Str("professional_id", professionalID).
		Str("date", date.Format("2006-01-02")).
		Int("duration_minutes", duration).
		Int("slots", len(slots)).
		Msg("Computed available slots")

	return slots, nil
}

// resolveDuration sums the durations of the requested services. Inactive
// services cannot be booked.
func (s *AvailabilityService) resolveDuration(ctx context.Context, serviceIDs []string) (int, error) {
	if len(serviceIDs) == 0 {
		return 0, apperrors.NewValidationError("at least one service is required")
	}

	selected, err := s.serviceRepo.GetByIDs(ctx, serviceIDs)
	if err != nil {
		return 0, err
	}
	for _, svc := range selected {
		if !svc.Active {
			return 0, apperrors.NewValidationError("service " + svc.ID + " is not active")
		}
	}

	duration := entities.TotalDuration(selected)
	if duration <= 0 {
		return 0, apperrors.NewValidationError("selected services have no duration")
	}
	return duration, nil
}
