package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
	"github.com/olatide/bookingscheduler/backend/internal/domain/providers"
	"github.com/olatide/bookingscheduler/backend/internal/domain/repositories"
	"github.com/olatide/bookingscheduler/backend/internal/infrastructure/observability"
)

const changeProvider = "storage"

// ChangeWebhookHandler ingests appointment change notifications delivered by
// the storage layer's change-capture relay. Deliveries are at-least-once;
// the journal drops duplicates before they reach the sync pipeline.
type ChangeWebhookHandler struct {
	events        repositories.WebhookEventRepository
	bus           providers.EventBus
	signingSecret string
}

// NewChangeWebhookHandler creates a new change webhook handler
func NewChangeWebhookHandler(events repositories.WebhookEventRepository, bus providers.EventBus, signingSecret string) *ChangeWebhookHandler {
	return &ChangeWebhookHandler{
		events:        events,
		bus:           bus,
		signingSecret: signingSecret,
	}
}

// HandleChange processes POST /webhooks/appointments/changes
func (h *ChangeWebhookHandler) HandleChange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerFromContext(ctx)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	if h.signingSecret != "" && !h.verifySignature(r, body) {
		respondWithError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	var notification entities.ChangeNotification
	if err := json.Unmarshal(body, &notification); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !notification.Type.IsValid() {
		respondWithError(w, http.StatusBadRequest, "unknown change type")
		return
	}
	if notification.Snapshot() == nil {
		respondWithError(w, http.StatusBadRequest, "notification carries no appointment record")
		return
	}
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}

	processed, err := h.events.IsProcessed(ctx, changeProvider, notification.ID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if processed {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "already_processed"})
		return
	}

	if err := h.events.Store(ctx, &entities.WebhookEvent{
		ID:        notification.ID,
		Provider:  changeProvider,
		EventType: string(notification.Type),
		Payload:   body,
	}); err != nil {
		logger.Error().Err(err).Str("event_id", notification.ID).Msg("Failed to journal change notification")
	}

	if err := h.bus.Publish(ctx, providers.EventChannelAppointmentChanges, &notification); err != nil {
		if markErr := h.events.MarkFailed(ctx, changeProvider, notification.ID, err.Error()); markErr != nil {
			logger.Error().Err(markErr).Str("event_id", notification.ID).Msg("Failed to mark change notification failed")
		}
		respondWithError(w, http.StatusInternalServerError, "failed to dispatch change notification")
		return
	}

	if err := h.events.MarkProcessed(ctx, changeProvider, notification.ID); err != nil {
		logger.Error().Err(err).Str("event_id", notification.ID).Msg("Failed to mark change notification processed")
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}

func (h *ChangeWebhookHandler) verifySignature(r *http.Request, body []byte) bool {
	signature := r.Header.Get("X-Signature")
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.signingSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expected))
}
