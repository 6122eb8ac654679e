package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/olatide/bookingscheduler/backend/internal/api/middleware"
	"github.com/olatide/bookingscheduler/backend/internal/application/services"
	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
	apperrors "github.com/olatide/bookingscheduler/backend/pkg/errors"
)

type mockAppointmentBooker struct {
	mock.Mock
}

func (m *mockAppointmentBooker) Create(ctx context.Context, input services.CreateAppointmentInput) (*entities.Appointment, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *mockAppointmentBooker) UpdateSchedule(ctx context.Context, id string, startAt time.Time, serviceIDs []string) (*entities.Appointment, error) {
	args := m.Called(ctx, id, startAt, serviceIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *mockAppointmentBooker) SetStatus(ctx context.Context, id string, status entities.AppointmentStatus) (*entities.Appointment, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *mockAppointmentBooker) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func storedAppointment() *entities.Appointment {
	start := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	return &entities.Appointment{
		ID:             "apt-1",
		TenantID:       "tenant-1",
		ClientID:       "client-1",
		ProfessionalID: "prof-1",
		ServiceIDs:     []string{"svc-1"},
		StartAt:        start,
		EndAt:          start.Add(45 * time.Minute),
		Status:         entities.AppointmentStatusPending,
	}
}

func requestWithIdentity(method, target string, body []byte, identity entities.Identity) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	return req.WithContext(middleware.WithIdentity(req.Context(), identity))
}

func TestAppointmentHandler_BookAppointment(t *testing.T) {
	bookBody := func(t *testing.T) []byte {
		t.Helper()
		data, err := json.Marshal(map[string]interface{}{
			"tenant_id":       "tenant-1",
			"client_id":       "client-1",
			"professional_id": "prof-1",
			"service_ids":     []string{"svc-1"},
			"start_at":        "2025-03-03T10:00:00Z",
		})
		require.NoError(t, err)
		return data
	}

	t.Run("books an appointment for the caller's tenant", func(t *testing.T) {
		service := new(mockAppointmentBooker)
		handler := NewAppointmentHandler(service)
		service.On("Create", mock.Anything, mock.MatchedBy(func(input services.CreateAppointmentInput) bool {
			return input.TenantID == "tenant-1" && input.ProfessionalID == "prof-1"
		})).Return(storedAppointment(), nil)

		req := requestWithIdentity(http.MethodPost, "/api/appointments", bookBody(t), entities.ClientIdentity("client-1", "tenant-1"))
		recorder := httptest.NewRecorder()
		handler.BookAppointment(recorder, req)

		assert.Equal(t, http.StatusCreated, recorder.Code)
		var got entities.Appointment
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
		assert.Equal(t, "apt-1", got.ID)
		service.AssertExpectations(t)
	})

	t.Run("cross-tenant booking is forbidden", func(t *testing.T) {
		service := new(mockAppointmentBooker)
		handler := NewAppointmentHandler(service)

		req := requestWithIdentity(http.MethodPost, "/api/appointments", bookBody(t), entities.ClientIdentity("client-9", "tenant-other"))
		recorder := httptest.NewRecorder()
		handler.BookAppointment(recorder, req)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
		service.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing identity is forbidden", func(t *testing.T) {
		service := new(mockAppointmentBooker)
		handler := NewAppointmentHandler(service)

		req := httptest.NewRequest(http.MethodPost, "/api/appointments", bytes.NewReader(bookBody(t)))
		recorder := httptest.NewRecorder()
		handler.BookAppointment(recorder, req)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("missing required fields rejected", func(t *testing.T) {
		service := new(mockAppointmentBooker)
		handler := NewAppointmentHandler(service)
		body := []byte(`{"client_id":"client-1"}`)

		req := requestWithIdentity(http.MethodPost, "/api/appointments", body, entities.ClientIdentity("client-1", "tenant-1"))
		recorder := httptest.NewRecorder()
		handler.BookAppointment(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("slot conflict surfaces as 409", func(t *testing.T) {
		service := new(mockAppointmentBooker)
		handler := NewAppointmentHandler(service)
		service.On("Create", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewConflictError("slot already booked for this professional"))

		req := requestWithIdentity(http.MethodPost, "/api/appointments", bookBody(t), entities.ClientIdentity("client-1", "tenant-1"))
		recorder := httptest.NewRecorder()
		handler.BookAppointment(recorder, req)

		assert.Equal(t, http.StatusConflict, recorder.Code)
	})
}

func TestAppointmentHandler_GetAppointment(t *testing.T) {
	newGetRequest := func(identity entities.Identity) *http.Request {
		req := requestWithIdentity(http.MethodGet, "/api/appointments/apt-1", nil, identity)
		req.SetPathValue("id", "apt-1")
		return req
	}

	t.Run("returns the appointment for its tenant", func(t *testing.T) {
		service := new(mockAppointmentBooker)
		handler := NewAppointmentHandler(service)
		service.On("GetByID", mock.Anything, "apt-1").Return(storedAppointment(), nil)

		recorder := httptest.NewRecorder()
		handler.GetAppointment(recorder, newGetRequest(entities.StaffIdentity("staff-1", "tenant-1", false)))

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("hides the appointment from another tenant", func(t *testing.T) {
		service := new(mockAppointmentBooker)
		handler := NewAppointmentHandler(service)
		service.On("GetByID", mock.Anything, "apt-1").Return(storedAppointment(), nil)

		recorder := httptest.NewRecorder()
		handler.GetAppointment(recorder, newGetRequest(entities.StaffIdentity("staff-1", "tenant-other", false)))

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("unknown appointment is 404", func(t *testing.T) {
		service := new(mockAppointmentBooker)
		handler := NewAppointmentHandler(service)
		service.On("GetByID", mock.Anything, "apt-1").
			Return(nil, apperrors.NewNotFoundError("appointment with ID apt-1 not found"))

		recorder := httptest.NewRecorder()
		handler.GetAppointment(recorder, newGetRequest(entities.StaffIdentity("staff-1", "tenant-1", false)))

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestAppointmentHandler_SetAppointmentStatus(t *testing.T) {
	newStatusRequest := func(identity entities.Identity, status string) *http.Request {
		body := []byte(`{"status":"` + status + `"}`)
		req := requestWithIdentity(http.MethodPatch, "/api/appointments/apt-1/status", body, identity)
		req.SetPathValue("id", "apt-1")
		return req
	}

	t.Run("transitions the appointment", func(t *testing.T) {
		service := new(mockAppointmentBooker)
		handler := NewAppointmentHandler(service)
		confirmed := storedAppointment()
		confirmed.Status = entities.AppointmentStatusConfirmed
		service.On("GetByID", mock.Anything, "apt-1").Return(storedAppointment(), nil)
		service.On("SetStatus", mock.Anything, "apt-1", entities.AppointmentStatusConfirmed).Return(confirmed, nil)

		recorder := httptest.NewRecorder()
		handler.SetAppointmentStatus(recorder, newStatusRequest(entities.StaffIdentity("staff-1", "tenant-1", false), "confirmed"))

		assert.Equal(t, http.StatusOK, recorder.Code)
		service.AssertExpectations(t)
	})

	t.Run("cross-tenant transition is forbidden", func(t *testing.T) {
		service := new(mockAppointmentBooker)
		handler := NewAppointmentHandler(service)
		service.On("GetByID", mock.Anything, "apt-1").Return(storedAppointment(), nil)

		recorder := httptest.NewRecorder()
		handler.SetAppointmentStatus(recorder, newStatusRequest(entities.StaffIdentity("staff-1", "tenant-other", false), "confirmed"))

		assert.Equal(t, http.StatusForbidden, recorder.Code)
		service.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("illegal transition surfaces as 409", func(t *testing.T) {
		service := new(mockAppointmentBooker)
		handler := NewAppointmentHandler(service)
		service.On("GetByID", mock.Anything, "apt-1").Return(storedAppointment(), nil)
		service.On("SetStatus", mock.Anything, "apt-1", entities.AppointmentStatusCompleted).
			Return(nil, &services.InvalidTransitionError{
				From: entities.AppointmentStatusPending,
				To:   entities.AppointmentStatusCompleted,
			})

		recorder := httptest.NewRecorder()
		handler.SetAppointmentStatus(recorder, newStatusRequest(entities.StaffIdentity("staff-1", "tenant-1", false), "completed"))

		assert.Equal(t, http.StatusConflict, recorder.Code)
	})
}

func TestAppointmentHandler_RescheduleAppointment(t *testing.T) {
	t.Run("moves the appointment", func(t *testing.T) {
		service := new(mockAppointmentBooker)
		handler := NewAppointmentHandler(service)
		newStart := time.Date(2025, 3, 3, 11, 0, 0, 0, time.UTC)
		moved := storedAppointment()
		moved.StartAt = newStart
		moved.EndAt = newStart.Add(45 * time.Minute)
		service.On("GetByID", mock.Anything, "apt-1").Return(storedAppointment(), nil)
		service.On("UpdateSchedule", mock.Anything, "apt-1", newStart, []string(nil)).Return(moved, nil)

		body := []byte(`{"start_at":"2025-03-03T11:00:00Z"}`)
		req := requestWithIdentity(http.MethodPatch, "/api/appointments/apt-1/schedule", body, entities.ClientIdentity("client-1", "tenant-1"))
		req.SetPathValue("id", "apt-1")
		recorder := httptest.NewRecorder()
		handler.RescheduleAppointment(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		service.AssertExpectations(t)
	})

	t.Run("missing start_at rejected", func(t *testing.T) {
		service := new(mockAppointmentBooker)
		handler := NewAppointmentHandler(service)

		req := requestWithIdentity(http.MethodPatch, "/api/appointments/apt-1/schedule", []byte(`{}`), entities.ClientIdentity("client-1", "tenant-1"))
		req.SetPathValue("id", "apt-1")
		recorder := httptest.NewRecorder()
		handler.RescheduleAppointment(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		service.AssertNotCalled(t, "UpdateSchedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
