package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/payment-service/internal/integration"
	"github.com/frahmantamala/payment-service/internal/payment"
	"github.com/frahmantamala/payment-service/internal/transport/middleware"
	"github.com/frahmantamala/payment-service/internal/transport/swagger"
)

// RegisterAllRoutes wires every HTTP endpoint. Paths keep their historic
// shapes (trailing slashes included) because the hosted payment page, the
// gateway webhook configuration and the chat automation all point at them.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, paymentHandler *payment.Handler, webhookHandler *payment.WebhookHandler, integrationHandler *integration.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root for the swagger UI
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Get("/health", healthHandler.healthCheckHandler)
	router.Get("/ping", healthHandler.pingHandler)

	router.Route("/api", func(r chi.Router) {
		if paymentHandler != nil {
			r.Post("/create-payment-intent/", paymentHandler.CreatePaymentIntent)
			r.Post("/confirm-payment/", paymentHandler.ConfirmPayment)
		}

		if webhookHandler != nil {
			r.Post("/stripe-webhook/", webhookHandler.HandleWebhook)
		}
	})

	if integrationHandler != nil {
		router.Get("/manychat-payment-check/{fb_id}/", integrationHandler.CheckPayment)
	}
}
