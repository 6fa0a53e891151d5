package integration

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	apperrors "github.com/frahmantamala/payment-service/internal"
	"github.com/frahmantamala/payment-service/internal/transport"
)

type ServiceAPI interface {
	ClaimLatestPayment(ctx context.Context, externalUserID string) (*ClaimResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Logger  *slog.Logger
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Logger:      logger,
	}
}

// CheckPayment handles GET /manychat-payment-check/{fb_id}/. A won claim
// returns the record once; a concurrent or repeated poll gets a 200 with
// success=false so the chat flow can branch without treating it as an error.
func (h *Handler) CheckPayment(w http.ResponseWriter, r *http.Request) {
	externalUserID := chi.URLParam(r, "fb_id")

	claim, err := h.Service.ClaimLatestPayment(r.Context(), externalUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrPaymentAlreadyClaimed) {
			h.WriteJSON(w, http.StatusOK, NoPaymentResponse{
				Success: false,
				Message: "payment already checked",
			})
			return
		}
		if errors.Is(err, apperrors.ErrNoUnconsumedPayments) {
			h.WriteJSON(w, http.StatusNotFound, NoPaymentResponse{
				Success: false,
				Message: "no unconsumed payments",
			})
			return
		}

		h.Logger.Error("CheckPayment: service error", "error", err, "fb_id", externalUserID)
		h.HandleError(w, err)
		return
	}

	h.Logger.Info("CheckPayment: payment delivered to integration",
		"fb_id", externalUserID,
		"package", claim.Success)

	h.WriteJSON(w, http.StatusOK, claim)
}
