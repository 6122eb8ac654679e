package calendar

import (
	"context"
	"fmt"
	"sync"

	"github.com/olatide/bookingscheduler/backend/internal/domain/providers"
)

// MockAdapter provides an in-memory calendar for local development and
// tests. It mimics the wire adapter's semantics: deletes of unknown events
// succeed, patches of unknown events fail.
type MockAdapter struct {
	mu     sync.Mutex
	nextID int
	events map[string]providers.EventPayload
}

// NewMockAdapter creates a mock calendar provider.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{events: make(map[string]providers.EventPayload)}
}

// CreateEvent stores the event and returns a generated id.
func (m *MockAdapter) CreateEvent(ctx context.Context, accessToken, calendarID string, event providers.EventPayload) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := fmt.Sprintf("mock-event-%d", m.nextID)
	m.events[id] = event
	return id, nil
}

// PatchEvent replaces a stored event.
func (m *MockAdapter) PatchEvent(ctx context.Context, accessToken, calendarID, eventID string, event providers.EventPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[eventID]; !ok {
		return &ProviderError{Op: "patch", StatusCode: 404}
	}
	m.events[eventID] = event
	return nil
}

// DeleteEvent removes a stored event; deleting a missing event succeeds.
func (m *MockAdapter) DeleteEvent(ctx context.Context, accessToken, calendarID, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.events, eventID)
	return nil
}

// Event returns the stored payload for assertions in tests.
func (m *MockAdapter) Event(eventID string) (providers.EventPayload, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.events[eventID]
	return event, ok
}

// Len returns the number of live events.
func (m *MockAdapter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

// StaticTokenSource returns the same access token for every refresh token;
// development use only.
type StaticTokenSource struct {
	Token string
}

// AccessToken returns the static token.
func (s *StaticTokenSource) AccessToken(ctx context.Context, refreshToken string) (string, error) {
	if s.Token == "" {
		return "mock-access-token", nil
	}
	return s.Token, nil
}
