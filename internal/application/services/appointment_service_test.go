package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/olatide/bookingscheduler/backend/internal/application/services"
	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
	apperrors "github.com/olatide/bookingscheduler/backend/pkg/errors"
)

// nextMonday returns a future Monday at 10:00 UTC, comfortably inside the
// fixture professional's working window.
func nextMonday() time.Time {
	t := time.Now().UTC().AddDate(0, 0, 7)
	for t.Weekday() != time.Monday {
		t = t.AddDate(0, 0, 1)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 10, 0, 0, 0, time.UTC)
}

func activeProfessional() *entities.Professional {
	return &entities.Professional{
		ID:       "pro-1",
		TenantID: "tenant-1",
		Active:   true,
		Availability: entities.WeeklyAvailability{
			entities.WeekdayMonday: {{Start: "09:00", End: "12:00", Active: true}},
		},
	}
}

func activeServices() []*entities.Service {
	return []*entities.Service{
		{ID: "svc-1", TenantID: "tenant-1", Name: "Haircut", DurationMinutes: 30, Price: 40, Active: true},
	}
}

func bookingInput(startAt time.Time) services.CreateAppointmentInput {
	return services.CreateAppointmentInput{
		TenantID:       "tenant-1",
		ClientID:       "client-1",
		ProfessionalID: "pro-1",
		ServiceIDs:     []string{"svc-1"},
		StartAt:        startAt,
	}
}

func TestAppointmentService_Create(t *testing.T) {
	t.Run("books a free slot as pending", func(t *testing.T) {
		// Arrange
		repo := new(MockAppointmentRepository)
		proRepo := new(MockProfessionalRepository)
		svcRepo := new(MockServiceRepository)
		bus := new(MockEventBus)
		service := services.NewAppointmentService(repo, proRepo, svcRepo, bus)

		startAt := nextMonday()
		proRepo.On("GetByID", mock.Anything, "pro-1").Return(activeProfessional(), nil)
		svcRepo.On("GetByIDs", mock.Anything, []string{"svc-1"}).Return(activeServices(), nil)
		repo.On("ListForProfessionalOn", mock.Anything, "pro-1", startAt).Return([]*entities.Appointment{}, nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(a *entities.Appointment) bool {
			return a.Status == entities.AppointmentStatusPending &&
				a.DurationMinutes == 30 &&
				a.EndAt.Equal(startAt.Add(30*time.Minute))
		})).Return(nil)
		bus.On("Publish", mock.Anything, mock.Anything, mock.MatchedBy(func(n *entities.ChangeNotification) bool {
			return n.Type == entities.ChangeTypeInsert && n.Record != nil
		})).Return(nil).Twice()

		// Act
		appointment, err := service.Create(context.Background(), bookingInput(startAt))

		// Assert
		require.NoError(t, err)
		assert.NotEmpty(t, appointment.ID)
		assert.Equal(t, entities.AppointmentStatusPending, appointment.Status)
		repo.AssertExpectations(t)
		bus.AssertExpectations(t)
	})

	t.Run("rejects a booked slot with a conflict", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		proRepo := new(MockProfessionalRepository)
		svcRepo := new(MockServiceRepository)
		bus := new(MockEventBus)
		service := services.NewAppointmentService(repo, proRepo, svcRepo, bus)

		startAt := nextMonday()
		taken := &entities.Appointment{
			ID:      "appt-0",
			StartAt: startAt,
			EndAt:   startAt.Add(30 * time.Minute),
			Status:  entities.AppointmentStatusConfirmed,
		}
		proRepo.On("GetByID", mock.Anything, "pro-1").Return(activeProfessional(), nil)
		svcRepo.On("GetByIDs", mock.Anything, []string{"svc-1"}).Return(activeServices(), nil)
		repo.On("ListForProfessionalOn", mock.Anything, "pro-1", startAt).Return([]*entities.Appointment{taken}, nil)

		_, err := service.Create(context.Background(), bookingInput(startAt))

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrorTypeConflict, appErr.Type)
		repo.AssertNotCalled(t, "Create")
		bus.AssertNotCalled(t, "Publish")
	})

	t.Run("rejects an inactive professional", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		proRepo := new(MockProfessionalRepository)
		svcRepo := new(MockServiceRepository)
		bus := new(MockEventBus)
		service := services.NewAppointmentService(repo, proRepo, svcRepo, bus)

		pro := activeProfessional()
		pro.Active = false
		proRepo.On("GetByID", mock.Anything, "pro-1").Return(pro, nil)

		_, err := service.Create(context.Background(), bookingInput(nextMonday()))

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	})

	t.Run("rejects an inactive service", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		proRepo := new(MockProfessionalRepository)
		svcRepo := new(MockServiceRepository)
		bus := new(MockEventBus)
		service := services.NewAppointmentService(repo, proRepo, svcRepo, bus)

		retired := activeServices()
		retired[0].Active = false
		proRepo.On("GetByID", mock.Anything, "pro-1").Return(activeProfessional(), nil)
		svcRepo.On("GetByIDs", mock.Anything, []string{"svc-1"}).Return(retired, nil)

		_, err := service.Create(context.Background(), bookingInput(nextMonday()))

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	})
}

func TestAppointmentService_SetStatus(t *testing.T) {
	existing := func(status entities.AppointmentStatus, externalEventID *string) *entities.Appointment {
		startAt := nextMonday()
		return &entities.Appointment{
			ID:              "appt-1",
			TenantID:        "tenant-1",
			ClientID:        "client-1",
			ProfessionalID:  "pro-1",
			StartAt:         startAt,
			EndAt:           startAt.Add(30 * time.Minute),
			DurationMinutes: 30,
			Status:          status,
			ExternalEventID: externalEventID,
		}
	}

	t.Run("confirms a pending appointment and publishes", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		bus := new(MockEventBus)
		service := services.NewAppointmentService(repo, new(MockProfessionalRepository), new(MockServiceRepository), bus)

		repo.On("GetByID", mock.Anything, "appt-1").Return(existing(entities.AppointmentStatusPending, nil), nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(a *entities.Appointment) bool {
			return a.Status == entities.AppointmentStatusConfirmed
		})).Return(nil)
		bus.On("Publish", mock.Anything, mock.Anything, mock.MatchedBy(func(n *entities.ChangeNotification) bool {
			return n.Type == entities.ChangeTypeUpdate &&
				n.OldRecord != nil &&
				n.OldRecord.Status == entities.AppointmentStatusPending
		})).Return(nil).Twice()

		appointment, err := service.SetStatus(context.Background(), "appt-1", entities.AppointmentStatusConfirmed)

		require.NoError(t, err)
		assert.Equal(t, entities.AppointmentStatusConfirmed, appointment.Status)
		bus.AssertExpectations(t)
	})

	t.Run("rejects a skipped transition", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		bus := new(MockEventBus)
		service := services.NewAppointmentService(repo, new(MockProfessionalRepository), new(MockServiceRepository), bus)

		repo.On("GetByID", mock.Anything, "appt-1").Return(existing(entities.AppointmentStatusPending, nil), nil)

		_, err := service.SetStatus(context.Background(), "appt-1", entities.AppointmentStatusCompleted)

		var transition *services.InvalidTransitionError
		require.ErrorAs(t, err, &transition)
		assert.Equal(t, entities.AppointmentStatusPending, transition.From)
		assert.Equal(t, entities.AppointmentStatusCompleted, transition.To)
		repo.AssertNotCalled(t, "Update")
	})

	t.Run("rejects leaving a terminal state", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		bus := new(MockEventBus)
		service := services.NewAppointmentService(repo, new(MockProfessionalRepository), new(MockServiceRepository), bus)

		repo.On("GetByID", mock.Anything, "appt-1").Return(existing(entities.AppointmentStatusCanceled, nil), nil)

		_, err := service.SetStatus(context.Background(), "appt-1", entities.AppointmentStatusConfirmed)

		var transition *services.InvalidTransitionError
		require.ErrorAs(t, err, &transition)
		assert.Equal(t, entities.AppointmentStatusCanceled, transition.From)
		repo.AssertNotCalled(t, "Update")
	})

	t.Run("cancel without external event skips publishing", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		bus := new(MockEventBus)
		service := services.NewAppointmentService(repo, new(MockProfessionalRepository), new(MockServiceRepository), bus)

		repo.On("GetByID", mock.Anything, "appt-1").Return(existing(entities.AppointmentStatusPending, nil), nil)
		repo.On("Update", mock.Anything, mock.Anything).Return(nil)

		appointment, err := service.SetStatus(context.Background(), "appt-1", entities.AppointmentStatusCanceled)

		require.NoError(t, err)
		assert.Equal(t, entities.AppointmentStatusCanceled, appointment.Status)
		bus.AssertNotCalled(t, "Publish")
	})

	t.Run("cancel with external event publishes", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		bus := new(MockEventBus)
		service := services.NewAppointmentService(repo, new(MockProfessionalRepository), new(MockServiceRepository), bus)

		eventID := "evt-1"
		repo.On("GetByID", mock.Anything, "appt-1").Return(existing(entities.AppointmentStatusConfirmed, &eventID), nil)
		repo.On("Update", mock.Anything, mock.Anything).Return(nil)
		bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()

		_, err := service.SetStatus(context.Background(), "appt-1", entities.AppointmentStatusCanceled)

		require.NoError(t, err)
		bus.AssertExpectations(t)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		service := services.NewAppointmentService(new(MockAppointmentRepository), new(MockProfessionalRepository), new(MockServiceRepository), new(MockEventBus))

		_, err := service.SetStatus(context.Background(), "appt-1", entities.AppointmentStatus("archived"))

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	})
}

func TestAppointmentService_UpdateSchedule(t *testing.T) {
	t.Run("moves a pending appointment and publishes the old record", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		proRepo := new(MockProfessionalRepository)
		svcRepo := new(MockServiceRepository)
		bus := new(MockEventBus)
		service := services.NewAppointmentService(repo, proRepo, svcRepo, bus)

		oldStart := nextMonday()
		newStart := oldStart.Add(time.Hour)
		current := &entities.Appointment{
			ID:              "appt-1",
			TenantID:        "tenant-1",
			ProfessionalID:  "pro-1",
			ServiceIDs:      []string{"svc-1"},
			StartAt:         oldStart,
			EndAt:           oldStart.Add(30 * time.Minute),
			DurationMinutes: 30,
			Status:          entities.AppointmentStatusPending,
		}

		repo.On("GetByID", mock.Anything, "appt-1").Return(current, nil)
		proRepo.On("GetByID", mock.Anything, "pro-1").Return(activeProfessional(), nil)
		repo.On("ListForProfessionalOn", mock.Anything, "pro-1", newStart).Return([]*entities.Appointment{current}, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(a *entities.Appointment) bool {
			return a.StartAt.Equal(newStart) && a.EndAt.Equal(newStart.Add(30*time.Minute))
		})).Return(nil)
		bus.On("Publish", mock.Anything, mock.Anything, mock.MatchedBy(func(n *entities.ChangeNotification) bool {
			return n.Type == entities.ChangeTypeUpdate &&
				n.OldRecord != nil &&
				n.OldRecord.StartAt.Equal(oldStart)
		})).Return(nil).Twice()

		appointment, err := service.UpdateSchedule(context.Background(), "appt-1", newStart, nil)

		require.NoError(t, err)
		assert.Equal(t, newStart, appointment.StartAt)
		repo.AssertExpectations(t)
		bus.AssertExpectations(t)
	})

	t.Run("rejects rescheduling a completed appointment", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		service := services.NewAppointmentService(repo, new(MockProfessionalRepository), new(MockServiceRepository), new(MockEventBus))

		repo.On("GetByID", mock.Anything, "appt-1").Return(&entities.Appointment{
			ID:     "appt-1",
			Status: entities.AppointmentStatusCompleted,
		}, nil)

		_, err := service.UpdateSchedule(context.Background(), "appt-1", nextMonday(), nil)

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrorTypeConflict, appErr.Type)
		repo.AssertNotCalled(t, "Update")
	})

	t.Run("re-snapshots duration when services change", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		proRepo := new(MockProfessionalRepository)
		svcRepo := new(MockServiceRepository)
		bus := new(MockEventBus)
		service := services.NewAppointmentService(repo, proRepo, svcRepo, bus)

		start := nextMonday()
		current := &entities.Appointment{
			ID:              "appt-1",
			ProfessionalID:  "pro-1",
			ServiceIDs:      []string{"svc-1"},
			StartAt:         start,
			EndAt:           start.Add(30 * time.Minute),
			DurationMinutes: 30,
			Status:          entities.AppointmentStatusConfirmed,
		}
		longer := []*entities.Service{
			{ID: "svc-2", Name: "Color", DurationMinutes: 90, Active: true},
		}

		repo.On("GetByID", mock.Anything, "appt-1").Return(current, nil)
		svcRepo.On("GetByIDs", mock.Anything, []string{"svc-2"}).Return(longer, nil)
		proRepo.On("GetByID", mock.Anything, "pro-1").Return(activeProfessional(), nil)
		repo.On("ListForProfessionalOn", mock.Anything, "pro-1", start).Return([]*entities.Appointment{current}, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(a *entities.Appointment) bool {
			return a.DurationMinutes == 90 && a.EndAt.Equal(start.Add(90*time.Minute))
		})).Return(nil)
		bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()

		appointment, err := service.UpdateSchedule(context.Background(), "appt-1", start, []string{"svc-2"})

		require.NoError(t, err)
		assert.Equal(t, 90, appointment.DurationMinutes)
		repo.AssertExpectations(t)
	})
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to entities.AppointmentStatus
		allowed  bool
	}{
		{entities.AppointmentStatusPending, entities.AppointmentStatusConfirmed, true},
		{entities.AppointmentStatusPending, entities.AppointmentStatusCanceled, true},
		{entities.AppointmentStatusPending, entities.AppointmentStatusInProgress, false},
		{entities.AppointmentStatusPending, entities.AppointmentStatusNoShow, false},
		{entities.AppointmentStatusConfirmed, entities.AppointmentStatusInProgress, true},
		{entities.AppointmentStatusConfirmed, entities.AppointmentStatusCanceled, true},
		{entities.AppointmentStatusConfirmed, entities.AppointmentStatusNoShow, true},
		{entities.AppointmentStatusConfirmed, entities.AppointmentStatusCompleted, false},
		{entities.AppointmentStatusInProgress, entities.AppointmentStatusCompleted, true},
		{entities.AppointmentStatusInProgress, entities.AppointmentStatusNoShow, true},
		{entities.AppointmentStatusInProgress, entities.AppointmentStatusCanceled, false},
		{entities.AppointmentStatusCompleted, entities.AppointmentStatusConfirmed, false},
		{entities.AppointmentStatusCanceled, entities.AppointmentStatusPending, false},
		{entities.AppointmentStatusNoShow, entities.AppointmentStatusConfirmed, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, services.CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
