package calendar

import (
	"fmt"

	"github.com/olatide/bookingscheduler/backend/internal/domain/providers"
)

// TokenRefreshError indicates the provider rejected the refresh token
// exchange. Callers treat it as fatal for the sync attempt; the professional
// is left in a calendar-disconnected state until an administrator
// re-authorizes.
type TokenRefreshError struct {
	Reason string
}

func (e *TokenRefreshError) Error() string {
	return fmt.Sprintf("token refresh failed: %s", e.Reason)
}

func (e *TokenRefreshError) Unwrap() error {
	return providers.ErrTokenRefreshFailed
}

// ProviderError indicates a non-2xx response from the calendar API other
// than an already-deleted 404/410 on delete. Logged, never retried within
// the same sync attempt; the next appointment mutation re-attempts
// convergence.
type ProviderError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("calendar %s failed: status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("calendar %s failed: status %d", e.Op, e.StatusCode)
}
