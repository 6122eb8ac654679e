package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olatide/bookingscheduler/backend/internal/domain/providers"
)

func testPayload() providers.EventPayload {
	start := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	return providers.EventPayload{
		Summary:     "Alex - Haircut",
		Location:    "12 Main St",
		Description: "Services: Haircut",
		Start:       start,
		End:         start.Add(45 * time.Minute),
	}
}

func TestGoogleAdapter_CreateEvent(t *testing.T) {
	t.Run("posts event and returns provider id", func(t *testing.T) {
		var gotPath, gotAuth string
		var gotBody eventBody
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			require.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			_, _ = w.Write([]byte(`{"id":"evt-1"}`))
		}))
		defer server.Close()

		adapter := NewGoogleAdapter(server.URL, 5*time.Second)

		id, err := adapter.CreateEvent(context.Background(), "at-123", "cal-1", testPayload())

		require.NoError(t, err)
		assert.Equal(t, "evt-1", id)
		assert.Equal(t, "/calendars/cal-1/events", gotPath)
		assert.Equal(t, "Bearer at-123", gotAuth)
		assert.Equal(t, "Alex - Haircut", gotBody.Summary)
		assert.Equal(t, "12 Main St", gotBody.Location)
		assert.Equal(t, "2025-03-03T10:00:00Z", gotBody.Start.DateTime)
		assert.Equal(t, "2025-03-03T10:45:00Z", gotBody.End.DateTime)
	})

	t.Run("defaults empty calendar id to primary", func(t *testing.T) {
		var gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_, _ = w.Write([]byte(`{"id":"evt-1"}`))
		}))
		defer server.Close()

		adapter := NewGoogleAdapter(server.URL, 5*time.Second)

		_, err := adapter.CreateEvent(context.Background(), "at-123", "", testPayload())

		require.NoError(t, err)
		assert.Equal(t, "/calendars/primary/events", gotPath)
	})

	t.Run("error status returns provider error with body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"insufficient permissions"}`))
		}))
		defer server.Close()

		adapter := NewGoogleAdapter(server.URL, 5*time.Second)

		_, err := adapter.CreateEvent(context.Background(), "at-123", "cal-1", testPayload())

		var provErr *ProviderError
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, "create", provErr.Op)
		assert.Equal(t, http.StatusForbidden, provErr.StatusCode)
		assert.Contains(t, provErr.Body, "insufficient permissions")
	})
}

func TestGoogleAdapter_PatchEvent(t *testing.T) {
	t.Run("patches event in place", func(t *testing.T) {
		var gotPath, gotMethod string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotMethod = r.Method
			_, _ = w.Write([]byte(`{"id":"evt-1"}`))
		}))
		defer server.Close()

		adapter := NewGoogleAdapter(server.URL, 5*time.Second)

		err := adapter.PatchEvent(context.Background(), "at-123", "cal-1", "evt-1", testPayload())

		require.NoError(t, err)
		assert.Equal(t, http.MethodPatch, gotMethod)
		assert.Equal(t, "/calendars/cal-1/events/evt-1", gotPath)
	})

	t.Run("missing event returns provider error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		adapter := NewGoogleAdapter(server.URL, 5*time.Second)

		err := adapter.PatchEvent(context.Background(), "at-123", "cal-1", "gone", testPayload())

		var provErr *ProviderError
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, "patch", provErr.Op)
		assert.Equal(t, http.StatusNotFound, provErr.StatusCode)
	})

	t.Run("escapes calendar and event ids", func(t *testing.T) {
		var gotEscaped string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotEscaped = r.URL.EscapedPath()
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		adapter := NewGoogleAdapter(server.URL, 5*time.Second)

		err := adapter.PatchEvent(context.Background(), "at-123", "team/shared", "evt 1", testPayload())

		require.NoError(t, err)
		assert.Equal(t, "/calendars/team%2Fshared/events/evt%201", gotEscaped)
	})
}

func TestGoogleAdapter_DeleteEvent(t *testing.T) {
	t.Run("deletes event", func(t *testing.T) {
		var gotMethod string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		adapter := NewGoogleAdapter(server.URL, 5*time.Second)

		err := adapter.DeleteEvent(context.Background(), "at-123", "cal-1", "evt-1")

		require.NoError(t, err)
		assert.Equal(t, http.MethodDelete, gotMethod)
	})

	t.Run("already deleted event is success", func(t *testing.T) {
		for _, status := range []int{http.StatusNotFound, http.StatusGone} {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))

			adapter := NewGoogleAdapter(server.URL, 5*time.Second)
			err := adapter.DeleteEvent(context.Background(), "at-123", "cal-1", "evt-1")
			server.Close()

			assert.NoError(t, err, "status %d", status)
		}
	})

	t.Run("server error returns provider error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		adapter := NewGoogleAdapter(server.URL, 5*time.Second)

		err := adapter.DeleteEvent(context.Background(), "at-123", "cal-1", "evt-1")

		var provErr *ProviderError
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, "delete", provErr.Op)
		assert.Equal(t, http.StatusServiceUnavailable, provErr.StatusCode)
	})
}

func TestMockAdapter(t *testing.T) {
	adapter := NewMockAdapter()
	ctx := context.Background()

	id, err := adapter.CreateEvent(ctx, "token", "cal-1", testPayload())
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, 1, adapter.Len())

	moved := testPayload()
	moved.Start = moved.Start.Add(time.Hour)
	moved.End = moved.End.Add(time.Hour)
	require.NoError(t, adapter.PatchEvent(ctx, "token", "cal-1", id, moved))

	stored, ok := adapter.Event(id)
	require.True(t, ok)
	assert.Equal(t, moved.Start, stored.Start)

	var provErr *ProviderError
	err = adapter.PatchEvent(ctx, "token", "cal-1", "unknown", moved)
	require.ErrorAs(t, err, &provErr)

	require.NoError(t, adapter.DeleteEvent(ctx, "token", "cal-1", id))
	require.NoError(t, adapter.DeleteEvent(ctx, "token", "cal-1", id))
	assert.Equal(t, 0, adapter.Len())
}
