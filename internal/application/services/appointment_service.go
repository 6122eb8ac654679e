package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
	"github.com/olatide/bookingscheduler/backend/internal/domain/providers"
	"github.com/olatide/bookingscheduler/backend/internal/domain/repositories"
	"github.com/olatide/bookingscheduler/backend/internal/domain/scheduling"
	"github.com/olatide/bookingscheduler/backend/internal/infrastructure/observability"
	apperrors "github.com/olatide/bookingscheduler/backend/pkg/errors"
)

// allowedTransitions is the appointment lifecycle table. Completed, canceled
// and no-show are terminal.
var allowedTransitions = map[entities.AppointmentStatus][]entities.AppointmentStatus{
	entities.AppointmentStatusPending: {
		entities.AppointmentStatusConfirmed,
		entities.AppointmentStatusCanceled,
	},
	entities.AppointmentStatusConfirmed: {
		entities.AppointmentStatusInProgress,
		entities.AppointmentStatusCanceled,
		entities.AppointmentStatusNoShow,
	},
	entities.AppointmentStatusInProgress: {
		entities.AppointmentStatusCompleted,
		entities.AppointmentStatusNoShow,
	},
}

// CanTransition reports whether the lifecycle permits moving from one status
// to another.
func CanTransition(from, to entities.AppointmentStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CreateAppointmentInput carries the booking request.
type CreateAppointmentInput struct {
	TenantID       string
	ClientID       string
	ProfessionalID string
	ServiceIDs     []string
	StartAt        time.Time
	Notes          string
}

// AppointmentService handles the appointment lifecycle: booking, reschedule
// and status transitions. Every accepted mutation emits a change
// notification for the calendar sync pipeline.
type AppointmentService struct {
	repo             repositories.AppointmentRepository
	professionalRepo repositories.ProfessionalRepository
	serviceRepo      repositories.ServiceRepository
	eventBus         providers.EventBus
	now              func() time.Time
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(
	repo repositories.AppointmentRepository,
	professionalRepo repositories.ProfessionalRepository,
	serviceRepo repositories.ServiceRepository,
	eventBus providers.EventBus,
) *AppointmentService {
	return &AppointmentService{
		repo:             repo,
		professionalRepo: professionalRepo,
		serviceRepo:      serviceRepo,
		eventBus:         eventBus,
		now:              time.Now,
	}
}

// Create books a new appointment. The duration is snapshotted from the
// selected services at booking time so later catalog edits cannot shift
// existing bookings.
func (s *AppointmentService) Create(ctx context.Context, input CreateAppointmentInput) (*entities.Appointment, error) {
	professional, err := s.professionalRepo.GetByID(ctx, input.ProfessionalID)
	if err != nil {
		return nil, err
	}
	if !professional.Active {
		return nil, apperrors.NewValidationError("professional is not accepting bookings")
	}
	if professional.TenantID != input.TenantID {
		return nil, apperrors.NewValidationError("professional does not belong to this tenant")
	}

	duration, err := s.snapshotDuration(ctx, input.ServiceIDs)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.ListForProfessionalOn(ctx, input.ProfessionalID, input.StartAt)
	if err != nil {
		return nil, err
	}
	if err := scheduling.ValidateStart(professional, duration, input.StartAt, existing, "", s.now()); err != nil {
		return nil, apperrors.NewConflictError(err.Error())
	}

	now := s.now()
	appointment := &entities.Appointment{
		ID:              uuid.New().String(),
		TenantID:        input.TenantID,
		ClientID:        input.ClientID,
		ProfessionalID:  input.ProfessionalID,
		ServiceIDs:      input.ServiceIDs,
		StartAt:         input.StartAt,
		EndAt:           input.StartAt.Add(time.Duration(duration) * time.Minute),
		DurationMinutes: duration,
		Status:          entities.AppointmentStatusPending,
		Notes:           input.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, err
	}

	s.publish(ctx, entities.ChangeTypeInsert, appointment, nil)

	return appointment, nil
}

// UpdateSchedule reschedules an appointment to a new start, optionally with
// a new service composition. Only pending and confirmed appointments can be
// rescheduled.
func (s *AppointmentService) UpdateSchedule(ctx context.Context, id string, startAt time.Time, serviceIDs []string) (*entities.Appointment, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment.Status != entities.AppointmentStatusPending && appointment.Status != entities.AppointmentStatusConfirmed {
		return nil, apperrors.NewConflictError(fmt.Sprintf("cannot reschedule a %s appointment", appointment.Status))
	}

	previous := *appointment

	duration := appointment.DurationMinutes
	if len(serviceIDs) > 0 {
		duration, err = s.snapshotDuration(ctx, serviceIDs)
		if err != nil {
			return nil, err
		}
		appointment.ServiceIDs = serviceIDs
	}

	professional, err := s.professionalRepo.GetByID(ctx, appointment.ProfessionalID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.ListForProfessionalOn(ctx, appointment.ProfessionalID, startAt)
	if err != nil {
		return nil, err
	}
	if err := scheduling.ValidateStart(professional, duration, startAt, existing, appointment.ID, s.now()); err != nil {
		return nil, apperrors.NewConflictError(err.Error())
	}

	appointment.StartAt = startAt
	appointment.EndAt = startAt.Add(time.Duration(duration) * time.Minute)
	appointment.DurationMinutes = duration

	if err := s.repo.Update(ctx, appointment); err != nil {
		return nil, err
	}

	s.publish(ctx, entities.ChangeTypeUpdate, appointment, &previous)

	return appointment, nil
}

// SetStatus moves an appointment through the lifecycle. Rejected transitions
// leave the record untouched.
func (s *AppointmentService) SetStatus(ctx context.Context, id string, status entities.AppointmentStatus) (*entities.Appointment, error) {
	if !status.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown appointment status %q", status))
	}

	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(appointment.Status, status) {
		return nil, &InvalidTransitionError{From: appointment.Status, To: status}
	}

	previous := *appointment
	appointment.Status = status

	if err := s.repo.Update(ctx, appointment); err != nil {
		return nil, err
	}

	// A cancellation with no external event leaves nothing to reconcile.
	if status == entities.AppointmentStatusCanceled && appointment.ExternalEventID == nil {
		return appointment, nil
	}

	s.publish(ctx, entities.ChangeTypeUpdate, appointment, &previous)

	return appointment, nil
}

// GetByID retrieves an appointment by ID
func (s *AppointmentService) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AppointmentService) snapshotDuration(ctx context.Context, serviceIDs []string) (int, error) {
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

// publish emits a change notification on the shared and per-professional
// channels. Delivery failure is logged, not surfaced; the booking itself has
// already committed.
func (s *AppointmentService) publish(ctx context.Context, changeType entities.ChangeType, record, old *entities.Appointment) {
	if s.eventBus == nil {
		return
	}

	notification := &entities.ChangeNotification{
		ID:        uuid.New().String(),
		Type:      changeType,
		Table:     "appointments",
		Record:    record,
		OldRecord: old,
		EmittedAt: s.now(),
	}

	logger := observability.LoggerFromContext(ctx)
	for _, channel := range []string{
		providers.EventChannelAppointmentChanges,
		providers.GetProfessionalChannel(record.ProfessionalID),
	} {
		if err := s.eventBus.Publish(ctx, channel, notification); err != nil {
			logger.Error().Err(err).
				Str("channel", channel).
				Str("appointment_id", record.ID).
				Msg("Failed to publish change notification")
		}
	}
}
