package payment

import (
	"encoding/json"
	"log/slog"
	"net/http"

	apperrors "github.com/frahmantamala/payment-service/internal"
	"github.com/frahmantamala/payment-service/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	PaymentService ServiceAPI
	PublishableKey string
	Logger         *slog.Logger
}

func NewHandler(baseHandler *transport.BaseHandler, paymentService ServiceAPI, publishableKey string, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler:    baseHandler,
		PaymentService: paymentService,
		PublishableKey: publishableKey,
		Logger:         logger,
	}
}

// CreatePaymentIntent handles POST /api/create-payment-intent/
func (h *Handler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req CreateIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("CreatePaymentIntent: failed to parse request body", "error", err)
		h.HandleError(w, apperrors.NewValidationError("invalid request body", apperrors.ErrCodeValidationFailed))
		return
	}

	record, intent, err := h.PaymentService.CreateIntent(r.Context(), &req)
	if err != nil {
		h.Logger.Error("CreatePaymentIntent: service error",
			"error", err,
			"external_user_id", req.ExternalUserID)
		h.HandleError(w, err)
		return
	}

	h.Logger.Info("CreatePaymentIntent: intent created",
		"payment_id", record.ID,
		"intent_id", intent.ID,
		"external_user_id", req.ExternalUserID)

	h.WriteJSON(w, http.StatusCreated, CreateIntentResponse{
		Success:         true,
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		PaymentID:       record.ID,
		PublishableKey:  h.PublishableKey,
	})
}

// ConfirmPayment handles POST /api/confirm-payment/
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("ConfirmPayment: failed to parse request body", "error", err)
		h.HandleError(w, apperrors.NewValidationError("invalid request body", apperrors.ErrCodeValidationFailed))
		return
	}

	if err := req.Validate(); err != nil {
		h.Logger.Error("ConfirmPayment: validation error", "error", err)
		h.HandleError(w, err)
		return
	}

	record, err := h.PaymentService.ConfirmPayment(r.Context(), req.PaymentIntentID)
	if err != nil {
		h.Logger.Error("ConfirmPayment: service error",
			"error", err,
			"intent_id", req.PaymentIntentID)
		h.HandleError(w, err)
		return
	}

	h.Logger.Info("ConfirmPayment: payment confirmed",
		"payment_id", record.ID,
		"intent_id", req.PaymentIntentID,
		"status", record.Status)

	h.WriteJSON(w, http.StatusOK, ConfirmResponse{
		Success:       true,
		PaymentStatus: record.Status,
		PaymentMethod: record.Method,
		Message:       "Payment confirmed successfully",
	})
}
