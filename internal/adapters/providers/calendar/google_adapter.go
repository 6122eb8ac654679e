package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/olatide/bookingscheduler/backend/internal/domain/providers"
)

// GoogleAdapter implements CalendarProvider against the Google Calendar v3
// event wire format. All calls carry the caller-supplied access token; the
// adapter owns no credentials of its own.
type GoogleAdapter struct {
	baseURL string
	client  *http.Client
}

// NewGoogleAdapter creates a new Google Calendar adapter.
func NewGoogleAdapter(baseURL string, timeout time.Duration) providers.CalendarProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GoogleAdapter{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// eventBody is the provider-side event representation.
type eventBody struct {
	Summary     string    `json:"summary"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	Start       eventTime `json:"start"`
	End         eventTime `json:"end"`
}

type eventTime struct {
	DateTime string `json:"dateTime"`
}

func toEventBody(event providers.EventPayload) eventBody {
	return eventBody{
		Summary:     event.Summary,
		Location:    event.Location,
		Description: event.Description,
		Start:       eventTime{DateTime: event.Start.Format(time.RFC3339)},
		End:         eventTime{DateTime: event.End.Format(time.RFC3339)},
	}
}

// CreateEvent creates an event and returns the provider-side event id.
func (a *GoogleAdapter) CreateEvent(ctx context.Context, accessToken, calendarID string, event providers.EventPayload) (string, error) {
	endpoint := fmt.Sprintf("%s/calendars/%s/events", a.baseURL, url.PathEscape(a.calendarOrPrimary(calendarID)))

	resp, err := a.do(ctx, http.MethodPost, endpoint, accessToken, toEventBody(event))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading create response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &ProviderError{Op: "create", StatusCode: resp.StatusCode, Body: truncate(body)}
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("decoding create response: %w", err)
	}
	return created.ID, nil
}

// PatchEvent updates an existing event in place.
func (a *GoogleAdapter) PatchEvent(ctx context.Context, accessToken, calendarID, eventID string, event providers.EventPayload) error {
	endpoint := fmt.Sprintf("%s/calendars/%s/events/%s",
		a.baseURL, url.PathEscape(a.calendarOrPrimary(calendarID)), url.PathEscape(eventID))

	resp, err := a.do(ctx, http.MethodPatch, endpoint, accessToken, toEventBody(event))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &ProviderError{Op: "patch", StatusCode: resp.StatusCode, Body: truncate(body)}
	}
	return nil
}

// DeleteEvent removes an event. 404 and 410 mean the event is already gone
// and are treated as success.
func (a *GoogleAdapter) DeleteEvent(ctx context.Context, accessToken, calendarID, eventID string) error {
	endpoint := fmt.Sprintf("%s/calendars/%s/events/%s",
		a.baseURL, url.PathEscape(a.calendarOrPrimary(calendarID)), url.PathEscape(eventID))

	resp, err := a.do(ctx, http.MethodDelete, endpoint, accessToken, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &ProviderError{Op: "delete", StatusCode: resp.StatusCode, Body: truncate(body)}
	}
	return nil
}

func (a *GoogleAdapter) do(ctx context.Context, method, endpoint, accessToken string, payload any) (*http.Response, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling event body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return a.client.Do(req)
}

func (a *GoogleAdapter) calendarOrPrimary(calendarID string) string {
	if calendarID == "" {
		return providers.DefaultCalendarID
	}
	return calendarID
}

func truncate(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max])
	}
	return string(body)
}
