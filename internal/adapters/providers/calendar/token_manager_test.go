package calendar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olatide/bookingscheduler/backend/internal/domain/providers"
)

func TestTokenManager_AccessToken(t *testing.T) {
	t.Run("exchanges refresh token for access token", func(t *testing.T) {
		var gotForm map[string]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			gotForm = map[string]string{
				"client_id":     r.PostFormValue("client_id"),
				"client_secret": r.PostFormValue("client_secret"),
				"refresh_token": r.PostFormValue("refresh_token"),
				"grant_type":    r.PostFormValue("grant_type"),
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"at-123","expires_in":3600}`))
		}))
		defer server.Close()

		manager := NewTokenManager(server.URL, "client-1", "secret-1", 5*time.Second)

		token, err := manager.AccessToken(context.Background(), "refresh-1")

		require.NoError(t, err)
		assert.Equal(t, "at-123", token)
		assert.Equal(t, "client-1", gotForm["client_id"])
		assert.Equal(t, "secret-1", gotForm["client_secret"])
		assert.Equal(t, "refresh-1", gotForm["refresh_token"])
		assert.Equal(t, "refresh_token", gotForm["grant_type"])
	})

	t.Run("does not cache tokens across calls", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			_, _ = w.Write([]byte(`{"access_token":"at-123"}`))
		}))
		defer server.Close()

		manager := NewTokenManager(server.URL, "client-1", "secret-1", 5*time.Second)

		_, err := manager.AccessToken(context.Background(), "refresh-1")
		require.NoError(t, err)
		_, err = manager.AccessToken(context.Background(), "refresh-1")
		require.NoError(t, err)

		assert.Equal(t, 2, calls)
	})

	t.Run("rejected grant surfaces provider reason", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Token has been revoked"}`))
		}))
		defer server.Close()

		manager := NewTokenManager(server.URL, "client-1", "secret-1", 5*time.Second)

		_, err := manager.AccessToken(context.Background(), "revoked")

		require.Error(t, err)
		var refreshErr *TokenRefreshError
		require.ErrorAs(t, err, &refreshErr)
		assert.Contains(t, refreshErr.Reason, "invalid_grant")
		assert.Contains(t, refreshErr.Reason, "Token has been revoked")
		assert.True(t, errors.Is(err, providers.ErrTokenRefreshFailed))
	})

	t.Run("error status without body detail still fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		manager := NewTokenManager(server.URL, "client-1", "secret-1", 5*time.Second)

		_, err := manager.AccessToken(context.Background(), "refresh-1")

		var refreshErr *TokenRefreshError
		require.ErrorAs(t, err, &refreshErr)
		assert.Contains(t, refreshErr.Reason, "status 500")
	})

	t.Run("success status with empty access token fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"access_token":""}`))
		}))
		defer server.Close()

		manager := NewTokenManager(server.URL, "client-1", "secret-1", 5*time.Second)

		_, err := manager.AccessToken(context.Background(), "refresh-1")

		var refreshErr *TokenRefreshError
		require.ErrorAs(t, err, &refreshErr)
		assert.Contains(t, refreshErr.Reason, "no access token")
	})

	t.Run("malformed token response fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer server.Close()

		manager := NewTokenManager(server.URL, "client-1", "secret-1", 5*time.Second)

		_, err := manager.AccessToken(context.Background(), "refresh-1")

		var refreshErr *TokenRefreshError
		require.ErrorAs(t, err, &refreshErr)
	})

	t.Run("timeout counts as refresh failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{"access_token":"too-late"}`))
		}))
		defer server.Close()

		manager := NewTokenManager(server.URL, "client-1", "secret-1", 20*time.Millisecond)

		_, err := manager.AccessToken(context.Background(), "refresh-1")

		var refreshErr *TokenRefreshError
		require.ErrorAs(t, err, &refreshErr)
		assert.True(t, errors.Is(err, providers.ErrTokenRefreshFailed))
	})
}

func TestStaticTokenSource(t *testing.T) {
	t.Run("returns configured token", func(t *testing.T) {
		source := &StaticTokenSource{Token: "fixed-token"}

		token, err := source.AccessToken(context.Background(), "any-refresh")

		require.NoError(t, err)
		assert.Equal(t, "fixed-token", token)
	})

	t.Run("falls back to development default", func(t *testing.T) {
		source := &StaticTokenSource{}

		token, err := source.AccessToken(context.Background(), "any-refresh")

		require.NoError(t, err)
		assert.Equal(t, "mock-access-token", token)
	})
}
