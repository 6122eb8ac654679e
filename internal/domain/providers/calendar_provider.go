package providers

import (
	"context"
	"errors"
	"time"
)

// DefaultCalendarID addresses the account's primary calendar when the
// professional has none configured.
const DefaultCalendarID = "primary"

// EventPayload is the canonical external calendar event body built from an
// appointment snapshot.
type EventPayload struct {
	Summary     string    `json:"summary"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// CalendarProvider defines the wire boundary to the external calendar. All
// calls carry a short-lived access token obtained from the TokenSource.
type CalendarProvider interface {
	// CreateEvent creates an event and returns the provider-side event id.
	CreateEvent(ctx context.Context, accessToken, calendarID string, event EventPayload) (string, error)

	// PatchEvent updates an existing event in place.
	PatchEvent(ctx context.Context, accessToken, calendarID, eventID string, event EventPayload) error

	// DeleteEvent removes an event. An already-deleted event (404/410) is
	// treated as success.
	DeleteEvent(ctx context.Context, accessToken, calendarID, eventID string) error
}

// ErrTokenRefreshFailed marks a rejected refresh token exchange. Sync
// treats it as non-retryable; the professional stays disconnected until an
// administrator re-authorizes the calendar account.
var ErrTokenRefreshFailed = errors.New("token refresh failed")

// TokenSource exchanges a stored long-lived refresh token for a short-lived
// access token. Every sync performs a live exchange; there is no cross-call
// cache.
type TokenSource interface {
	AccessToken(ctx context.Context, refreshToken string) (string, error)
}
