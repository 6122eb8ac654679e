package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/olatide/bookingscheduler/backend/internal/domain/providers"
)

// TokenManager exchanges a professional's long-lived refresh token for a
// short-lived access token. Every call performs a live exchange against the
// provider's token endpoint; access tokens are never cached across syncs.
type TokenManager struct {
	tokenURL     string
	clientID     string
	clientSecret string
	client       *http.Client
}

// NewTokenManager creates a token manager for the given OAuth client.
func NewTokenManager(tokenURL, clientID, clientSecret string, timeout time.Duration) providers.TokenSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TokenManager{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       &http.Client{Timeout: timeout},
	}
}

// AccessToken performs the refresh_token grant exchange.
func (m *TokenManager) AccessToken(ctx context.Context, refreshToken string) (string, error) {
	form := url.Values{}
	form.Set("client_id", m.clientID)
	form.Set("client_secret", m.clientSecret)
	form.Set("refresh_token", refreshToken)
	form.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.client.Do(req)
	if err != nil {
		// Timeouts and transport failures count as refresh failures.
		return "", &TokenRefreshError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TokenRefreshError{Reason: fmt.Sprintf("reading token response: %v", err)}
	}

	var payload struct {
		AccessToken      string `json:"access_token"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", &TokenRefreshError{Reason: fmt.Sprintf("decoding token response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || payload.Error != "" {
		reason := payload.Error
		if payload.ErrorDescription != "" {
			reason = fmt.Sprintf("%s: %s", payload.Error, payload.ErrorDescription)
		}
		if reason == "" {
			reason = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", &TokenRefreshError{Reason: reason}
	}

	if payload.AccessToken == "" {
		return "", &TokenRefreshError{Reason: "provider returned no access token"}
	}

	return payload.AccessToken, nil
}
