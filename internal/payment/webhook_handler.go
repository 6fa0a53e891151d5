package payment

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	apperrors "github.com/frahmantamala/payment-service/internal"
	"github.com/frahmantamala/payment-service/internal/core/datamodel/gateway"
	"github.com/frahmantamala/payment-service/internal/stripe"
	"github.com/frahmantamala/payment-service/internal/transport"
)

type WebhookHandler struct {
	*transport.BaseHandler
	paymentService ServiceAPI
	webhookSecret  string
	logger         *slog.Logger
}

func NewWebhookHandler(baseHandler *transport.BaseHandler, paymentService ServiceAPI, webhookSecret string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler:    baseHandler,
		paymentService: paymentService,
		webhookSecret:  webhookSecret,
		logger:         logger,
	}
}

type webhookResponse struct {
	Received bool `json:"received"`
}

// HandleWebhook handles POST /api/stripe-webhook/. Signature verification
// happens before any parsing; unrecognized event kinds are acknowledged and
// ignored so the gateway does not retry them. When no signing secret is
// configured the service runs in the explicit unverified mode: every
// delivery is acknowledged and parseable events are processed best-effort.
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("webhook: failed to read body", "error", err)
		h.HandleError(w, apperrors.NewValidationError("failed to read payload", apperrors.ErrCodeInvalidPayload))
		return
	}

	if h.webhookSecret == "" {
		h.handleUnverified(w, r, payload)
		return
	}

	event, err := stripe.ConstructEvent(payload, r.Header.Get(stripe.SignatureHeader), h.webhookSecret)
	if err != nil {
		h.logger.Warn("webhook: rejected delivery", "error", err)
		h.HandleError(w, err)
		return
	}

	h.processEvent(w, r, event, true)
}

func (h *WebhookHandler) handleUnverified(w http.ResponseWriter, r *http.Request, payload []byte) {
	h.logger.Warn("webhook: no signing secret configured, accepting unverified delivery")

	event, err := stripe.ParseEvent(payload)
	if err != nil {
		// Unverified mode acknowledges everything, parseable or not.
		h.logger.Warn("webhook: unverified delivery not parseable, acknowledging anyway", "error", err)
		h.WriteJSON(w, http.StatusOK, webhookResponse{Received: true})
		return
	}

	h.processEvent(w, r, event, false)
}

func (h *WebhookHandler) processEvent(w http.ResponseWriter, r *http.Request, event *gateway.Event, verified bool) {
	switch event.Type {
	case gateway.EventIntentSucceeded, gateway.EventIntentFailed:
	default:
		h.logger.Debug("webhook: ignoring event", "event_type", event.Type, "event_id", event.ID)
		h.WriteJSON(w, http.StatusOK, webhookResponse{Received: true})
		return
	}

	var intent gateway.PaymentIntent
	if err := json.Unmarshal(event.Data.Object, &intent); err != nil {
		if !verified {
			h.WriteJSON(w, http.StatusOK, webhookResponse{Received: true})
			return
		}
		h.logger.Error("webhook: malformed intent object", "error", err, "event_id", event.ID)
		h.HandleError(w, apperrors.NewValidationError("malformed event object", apperrors.ErrCodeInvalidPayload))
		return
	}

	h.logger.Info("webhook: processing event",
		"event_type", event.Type,
		"event_id", event.ID,
		"intent_id", intent.ID,
		"verified", verified)

	if _, err := h.paymentService.ApplyIntent(r.Context(), &intent); err != nil {
		// A record we never created is a business no-op, not an error; erroring
		// here would only trigger a gateway retry storm.
		if errors.Is(err, apperrors.ErrPaymentNotFound) {
			h.logger.Warn("webhook: no matching payment record, ignoring",
				"intent_id", intent.ID,
				"event_id", event.ID)
			h.WriteJSON(w, http.StatusOK, webhookResponse{Received: true})
			return
		}

		h.logger.Error("webhook: failed to apply intent",
			"error", err,
			"intent_id", intent.ID,
			"event_id", event.ID)
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, webhookResponse{Received: true})
}
