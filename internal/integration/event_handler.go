package integration

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/payment-service/internal/core/events"
)

// EventHandler observes payment lifecycle events so operators can see when a
// completed payment becomes available for the chat integration to poll.
type EventHandler struct {
	logger *slog.Logger
}

func NewEventHandler(logger *slog.Logger) *EventHandler {
	return &EventHandler{logger: logger}
}

func (h *EventHandler) HandlePaymentCompleted(ctx context.Context, event events.Event) error {
	completed, ok := event.(*events.PaymentCompletedEvent)
	if !ok {
		return fmt.Errorf("expected PaymentCompletedEvent, got %T", event)
	}

	h.logger.Info("payment available for integration polling",
		"payment_id", completed.PaymentID,
		"external_user_id", completed.ExternalUserID,
		"amount_cents", completed.AmountCents,
		"method", completed.Method,
		"event_id", completed.EventID())

	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypePaymentCompleted, h.HandlePaymentCompleted)

	h.logger.Info("integration event handlers registered",
		"handlers", []string{events.EventTypePaymentCompleted})
}
