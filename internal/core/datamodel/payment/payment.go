package payment

import (
	"encoding/json"
	"time"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusRefunded  = "refunded"
)

const (
	MethodCard      = "card"
	MethodGooglePay = "google_pay"
	MethodApplePay  = "apple_pay"
)

// Payment is one charge attempt against the gateway. Rows are never deleted;
// status only moves pending -> completed/failed here (refunded is an
// administrative action outside this service).
type Payment struct {
	ID                    int64           `gorm:"primaryKey"`
	ExternalUserID        string          `gorm:"column:external_user_id;not null;index"`
	Package               string          `gorm:"column:package;not null"`
	AmountCents           int64           `gorm:"column:amount_cents;not null"`
	Currency              string          `gorm:"column:currency;not null;default:usd"`
	Description           *string         `gorm:"column:description"`
	GatewayIntentID       *string         `gorm:"column:gateway_intent_id;uniqueIndex"`
	GatewayCustomerID     *string         `gorm:"column:gateway_customer_id"`
	Status                string          `gorm:"column:status;not null;default:pending"`
	GatewayStatus         *string         `gorm:"column:gateway_status"`
	Method                *string         `gorm:"column:payment_method"`
	GatewayResponse       json.RawMessage `gorm:"column:gateway_response;type:jsonb"`
	ConsumedByIntegration bool            `gorm:"column:consumed_by_integration;not null;default:false"`
	CreatedAt             time.Time       `gorm:"column:created_at;default:now()"`
	UpdatedAt             time.Time       `gorm:"column:updated_at;default:now()"`
}

func (Payment) TableName() string {
	return "payments"
}
