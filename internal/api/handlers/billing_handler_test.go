package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
	"github.com/olatide/bookingscheduler/backend/internal/domain/providers"
	apperrors "github.com/olatide/bookingscheduler/backend/pkg/errors"
)

type mockBillingTrigger struct {
	mock.Mock
}

func (m *mockBillingTrigger) Run(ctx context.Context, identity entities.Identity, req providers.BillingRunRequest) (string, error) {
	args := m.Called(ctx, identity, req)
	return args.String(0), args.Error(1)
}

func TestBillingHandler_StartRun(t *testing.T) {
	t.Run("accepts a run and returns the run id", func(t *testing.T) {
		service := new(mockBillingTrigger)
		handler := NewBillingHandler(service)
		identity := entities.StaffIdentity("staff-1", "tenant-1", true)
		service.On("Run", mock.Anything, identity, providers.BillingRunRequest{
			Scope:    providers.BillingScopeSingle,
			TargetID: "tenant-2",
			DryRun:   true,
		}).Return("run-42", nil)

		body := []byte(`{"scope":"SINGLE","target_id":"tenant-2","dry_run":true}`)
		req := requestWithIdentity(http.MethodPost, "/api/admin/billing/runs", body, identity)
		recorder := httptest.NewRecorder()
		handler.StartRun(recorder, req)

		assert.Equal(t, http.StatusAccepted, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"run-42"`)
		service.AssertExpectations(t)
	})

	t.Run("missing identity is unauthorized", func(t *testing.T) {
		service := new(mockBillingTrigger)
		handler := NewBillingHandler(service)

		req := httptest.NewRequest(http.MethodPost, "/api/admin/billing/runs", nil)
		recorder := httptest.NewRecorder()
		handler.StartRun(recorder, req)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		service.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("service rejection surfaces its status", func(t *testing.T) {
		service := new(mockBillingTrigger)
		handler := NewBillingHandler(service)
		identity := entities.StaffIdentity("staff-1", "tenant-1", false)
		service.On("Run", mock.Anything, identity, mock.Anything).
			Return("", apperrors.NewUnauthorizedError("billing runs require elevated staff access"))

		body := []byte(`{"scope":"ALL"}`)
		req := requestWithIdentity(http.MethodPost, "/api/admin/billing/runs", body, identity)
		recorder := httptest.NewRecorder()
		handler.StartRun(recorder, req)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}
