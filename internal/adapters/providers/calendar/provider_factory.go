package calendar

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/olatide/bookingscheduler/backend/internal/domain/providers"
)

// ProviderConfig configures the calendar provider stack.
type ProviderConfig struct {
	TokenURL     string
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// NewProvider builds the calendar provider and token source. Without an
// OAuth client configured it returns the in-memory mock pair for local
// development; otherwise the wire adapter wrapped in a circuit breaker, so a
// flapping provider fails sync attempts fast instead of tying up workers.
func NewProvider(cfg ProviderConfig) (providers.CalendarProvider, providers.TokenSource) {
	if cfg.ClientID == "" {
		return NewMockAdapter(), &StaticTokenSource{}
	}

	adapter := NewGoogleAdapter(cfg.BaseURL, cfg.Timeout)
	tokens := NewTokenManager(cfg.TokenURL, cfg.ClientID, cfg.ClientSecret, cfg.Timeout)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "calendar-provider",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &BreakerProvider{inner: adapter, breaker: breaker}, tokens
}

// BreakerProvider decorates a CalendarProvider with a shared circuit
// breaker.
type BreakerProvider struct {
	inner   providers.CalendarProvider
	breaker *gobreaker.CircuitBreaker
}

func (p *BreakerProvider) CreateEvent(ctx context.Context, accessToken, calendarID string, event providers.EventPayload) (string, error) {
	id, err := p.breaker.Execute(func() (interface{}, error) {
		return p.inner.CreateEvent(ctx, accessToken, calendarID, event)
	})
	if err != nil {
		return "", err
	}
	return id.(string), nil
}

func (p *BreakerProvider) PatchEvent(ctx context.Context, accessToken, calendarID, eventID string, event providers.EventPayload) error {
	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.inner.PatchEvent(ctx, accessToken, calendarID, eventID, event)
	})
	return err
}

func (p *BreakerProvider) DeleteEvent(ctx context.Context, accessToken, calendarID, eventID string) error {
	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.inner.DeleteEvent(ctx, accessToken, calendarID, eventID)
	})
	return err
}
