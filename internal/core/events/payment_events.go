package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePaymentCompleted = "payment.completed"
	EventTypePaymentFailed    = "payment.failed"
	EventTypePaymentClaimed   = "payment.claimed"
)

type PaymentCompletedEvent struct {
	BaseEvent
	PaymentID       int64  `json:"payment_id"`
	ExternalUserID  string `json:"external_user_id"`
	GatewayIntentID string `json:"gateway_intent_id"`
	AmountCents     int64  `json:"amount_cents"`
	Method          string `json:"method"`
}

func NewPaymentCompletedEvent(paymentID int64, externalUserID, gatewayIntentID string, amountCents int64, method string) *PaymentCompletedEvent {
	return &PaymentCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":        paymentID,
				"external_user_id":  externalUserID,
				"gateway_intent_id": gatewayIntentID,
				"amount_cents":      amountCents,
				"method":            method,
			},
		},
		PaymentID:       paymentID,
		ExternalUserID:  externalUserID,
		GatewayIntentID: gatewayIntentID,
		AmountCents:     amountCents,
		Method:          method,
	}
}

type PaymentFailedEvent struct {
	BaseEvent
	PaymentID       int64  `json:"payment_id"`
	ExternalUserID  string `json:"external_user_id"`
	GatewayIntentID string `json:"gateway_intent_id"`
	AmountCents     int64  `json:"amount_cents"`
	GatewayStatus   string `json:"gateway_status"`
}

func NewPaymentFailedEvent(paymentID int64, externalUserID, gatewayIntentID string, amountCents int64, gatewayStatus string) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentFailed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":        paymentID,
				"external_user_id":  externalUserID,
				"gateway_intent_id": gatewayIntentID,
				"amount_cents":      amountCents,
				"gateway_status":    gatewayStatus,
			},
		},
		PaymentID:       paymentID,
		ExternalUserID:  externalUserID,
		GatewayIntentID: gatewayIntentID,
		AmountCents:     amountCents,
		GatewayStatus:   gatewayStatus,
	}
}

type PaymentClaimedEvent struct {
	BaseEvent
	PaymentID      int64  `json:"payment_id"`
	ExternalUserID string `json:"external_user_id"`
	Package        string `json:"package"`
}

func NewPaymentClaimedEvent(paymentID int64, externalUserID, pkg string) *PaymentClaimedEvent {
	return &PaymentClaimedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentClaimed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":       paymentID,
				"external_user_id": externalUserID,
				"package":          pkg,
			},
		},
		PaymentID:      paymentID,
		ExternalUserID: externalUserID,
		Package:        pkg,
	}
}
