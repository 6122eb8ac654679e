package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
	"github.com/olatide/bookingscheduler/backend/internal/domain/providers"
	"github.com/olatide/bookingscheduler/backend/internal/domain/repositories"
	"github.com/olatide/bookingscheduler/backend/internal/infrastructure/observability"
)

// CalendarSyncService mirrors appointment changes into the professional's
// external calendar. The branching is idempotent: replaying the same
// notification converges on the same external state.
type CalendarSyncService struct {
	appointmentRepo  repositories.AppointmentRepository
	professionalRepo repositories.ProfessionalRepository
	tenantRepo       repositories.TenantRepository
	serviceRepo      repositories.ServiceRepository
	provider         providers.CalendarProvider
	tokens           providers.TokenSource
	metrics          *observability.Metrics
}

// NewCalendarSyncService creates a new calendar sync service
func NewCalendarSyncService(
	appointmentRepo repositories.AppointmentRepository,
	professionalRepo repositories.ProfessionalRepository,
	tenantRepo repositories.TenantRepository,
	serviceRepo repositories.ServiceRepository,
	provider providers.CalendarProvider,
	tokens providers.TokenSource,
	metrics *observability.Metrics,
) *CalendarSyncService {
	return &CalendarSyncService{
		appointmentRepo:  appointmentRepo,
		professionalRepo: professionalRepo,
		tenantRepo:       tenantRepo,
		serviceRepo:      serviceRepo,
		provider:         provider,
		tokens:           tokens,
		metrics:          metrics,
	}
}

// Sync applies one change notification to the external calendar. The
// returned result is always populated. A non-nil error marks the failure as
// retryable (transport faults, provider outages, write-back failures);
// failures returned with a nil error are permanent for this notification.
func (s *CalendarSyncService) Sync(ctx context.Context, notification *entities.ChangeNotification) (entities.SyncResult, error) {
	started := time.Now()
	result, err := s.sync(ctx, notification)
	observability.RecordSyncMetric(ctx, s.metrics, string(notification.Type), string(result.Status), time.Since(started))

	logger := observability.LoggerFromContext(ctx)
	event := logger.Info()
	if result.Status == entities.SyncStatusFailed {
		event = logger.Error().Err(err)
	}
	event.
		Str("notification_id", notification.ID).
		Str("change_type", string(notification.Type)).
		Str("status", string(result.Status)).
		Str("reason", result.Reason).
		Msg("Calendar sync finished")

	return result, err
}

func (s *CalendarSyncService) sync(ctx context.Context, notification *entities.ChangeNotification) (entities.SyncResult, error) {
	snapshot := notification.Snapshot()
	if snapshot == nil {
		return failed("notification carries no appointment record"), nil
	}

	professional, err := s.professionalRepo.GetByID(ctx, snapshot.ProfessionalID)
	if err != nil {
		return failed("failed to load professional"), err
	}
	if !professional.CalendarConnected() {
		return skipped("professional has no calendar connected"), nil
	}

	// A cancellation that never reached the calendar converges without any
	// provider traffic, token exchange included.
	if snapshot.Status == entities.AppointmentStatusCanceled &&
		(snapshot.ExternalEventID == nil || *snapshot.ExternalEventID == "") {
		return ok(), nil
	}

	accessToken, err := s.tokens.AccessToken(ctx, *professional.ExternalRefreshToken)
	if err != nil {
		if errors.Is(err, providers.ErrTokenRefreshFailed) {
			return failed("token refresh rejected"), nil
		}
		return failed("token exchange unavailable"), err
	}

	calendarID := providers.DefaultCalendarID
	if professional.ExternalCalendarID != nil && *professional.ExternalCalendarID != "" {
		calendarID = *professional.ExternalCalendarID
	}

	// A canceled appointment only needs its remote trace removed.
	if snapshot.Status == entities.AppointmentStatusCanceled {
		return s.removeEvent(ctx, accessToken, calendarID, snapshot, true)
	}

	switch notification.Type {
	case entities.ChangeTypeDelete:
		// The row is gone; there is no external id to clear.
		return s.removeEvent(ctx, accessToken, calendarID, snapshot, false)

	case entities.ChangeTypeInsert, entities.ChangeTypeUpdate:
		payload, err := s.buildEventPayload(ctx, snapshot, professional)
		if err != nil {
			var missing *MissingDependencyError
			if errors.As(err, &missing) {
				return failed(missing.Error()), nil
			}
			return failed("failed to build event body"), err
		}

		if notification.Type == entities.ChangeTypeUpdate && snapshot.ExternalEventID != nil {
			if err := s.provider.PatchEvent(ctx, accessToken, calendarID, *snapshot.ExternalEventID, payload); err != nil {
				return failed("failed to patch event"), err
			}
			return ok(), nil
		}

		eventID, err := s.provider.CreateEvent(ctx, accessToken, calendarID, payload)
		if err != nil {
			return failed("failed to create event"), err
		}
		if eventID == "" {
			return failed("provider returned no event id"), nil
		}
		if err := s.appointmentRepo.SetExternalEventID(ctx, snapshot.ID, &eventID); err != nil {
			return failed("failed to store event id"), err
		}
		return ok(), nil
	}

	return failed(fmt.Sprintf("unknown change type %q", notification.Type)), nil
}

// removeEvent deletes the remote event if one exists. clearID additionally
// nils out the stored external id so a later re-activation starts clean.
func (s *CalendarSyncService) removeEvent(ctx context.Context, accessToken, calendarID string, snapshot *entities.Appointment, clearID bool) (entities.SyncResult, error) {
	if snapshot.ExternalEventID == nil || *snapshot.ExternalEventID == "" {
		return skipped("no external event to remove"), nil
	}

	if err := s.provider.DeleteEvent(ctx, accessToken, calendarID, *snapshot.ExternalEventID); err != nil {
		return failed("failed to delete event"), err
	}

	if clearID {
		if err := s.appointmentRepo.SetExternalEventID(ctx, snapshot.ID, nil); err != nil {
			return failed("failed to clear event id"), err
		}
	}
	return ok(), nil
}

// buildEventPayload renders the canonical external event body from the
// appointment snapshot.
func (s *CalendarSyncService) buildEventPayload(ctx context.Context, snapshot *entities.Appointment, professional *entities.Professional) (providers.EventPayload, error) {
	tenant, err := s.tenantRepo.GetTenant(ctx, snapshot.TenantID)
	if err != nil {
		return providers.EventPayload{}, dependencyError("tenant", snapshot.TenantID, err)
	}
	client, err := s.tenantRepo.GetClient(ctx, snapshot.ClientID)
	if err != nil {
		return providers.EventPayload{}, dependencyError("client", snapshot.ClientID, err)
	}
	selected, err := s.serviceRepo.GetByIDs(ctx, snapshot.ServiceIDs)
	if err != nil {
		return providers.EventPayload{}, dependencyError("service", strings.Join(snapshot.ServiceIDs, ","), err)
	}

	names := make([]string, 0, len(selected))
	for _, svc := range selected {
		names = append(names, svc.Name)
	}
	serviceNames := strings.Join(names, ", ")

	var description strings.Builder
	fmt.Fprintf(&description, "%s - %s\n", snapshot.StartAt.Format("15:04"), snapshot.EndAt.Format("15:04"))
	fmt.Fprintf(&description, "Professional: %s\n", professional.DisplayName)
	fmt.Fprintf(&description, "Services: %s\n", serviceNames)
	fmt.Fprintf(&description, "Total: %.2f\n", entities.TotalPrice(selected))
	fmt.Fprintf(&description, "Status: %s", snapshot.Status.Label())
	if snapshot.Notes != "" {
		fmt.Fprintf(&description, "\nNotes: %s", snapshot.Notes)
	}

	return providers.EventPayload{
		Summary:     fmt.Sprintf("%s - %s", client.Name, serviceNames),
		Location:    tenant.Address,
		Description: description.String(),
		Start:       snapshot.StartAt,
		End:         snapshot.EndAt,
	}, nil
}

func ok() entities.SyncResult {
	return entities.SyncResult{Status: entities.SyncStatusOK}
}

func skipped(reason string) entities.SyncResult {
	return entities.SyncResult{Status: entities.SyncStatusSkipped, Reason: reason}
}

func failed(reason string) entities.SyncResult {
	return entities.SyncResult{Status: entities.SyncStatusFailed, Reason: reason}
}
