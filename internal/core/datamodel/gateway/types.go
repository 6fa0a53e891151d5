package gateway

import "encoding/json"

// Intent statuses reported by the gateway. IntentStatusSucceeded and
// IntentStatusProcessing are the only ones the reconciliation engine treats
// as non-failures; the rest are listed for the granular audit column.
const (
	IntentStatusSucceeded             = "succeeded"
	IntentStatusProcessing            = "processing"
	IntentStatusRequiresPaymentMethod = "requires_payment_method"
	IntentStatusRequiresAction        = "requires_action"
	IntentStatusCanceled              = "canceled"
)

const (
	WalletGooglePay = "google_pay"
	WalletApplePay  = "apple_pay"
)

const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
)

// PaymentIntent is the gateway's representation of a charge attempt.
type PaymentIntent struct {
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	ClientSecret string            `json:"client_secret"`
	Customer     string            `json:"customer,omitempty"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Charges      ChargeList        `json:"charges"`
}

type ChargeList struct {
	Data []Charge `json:"data"`
}

type Charge struct {
	ID                   string                `json:"id"`
	Status               string                `json:"status"`
	PaymentMethodDetails *PaymentMethodDetails `json:"payment_method_details,omitempty"`
}

type PaymentMethodDetails struct {
	Type string       `json:"type"`
	Card *CardDetails `json:"card,omitempty"`
}

type CardDetails struct {
	Brand  string  `json:"brand,omitempty"`
	Last4  string  `json:"last4,omitempty"`
	Wallet *Wallet `json:"wallet,omitempty"`
}

// Wallet is a device-level payment wrapper (tap-to-pay) layered over a card.
type Wallet struct {
	Type string `json:"type"`
}

// Event is the envelope of a webhook delivery.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

type EventData struct {
	Object json.RawMessage `json:"object"`
}

// APIError is the gateway's error body for non-2xx responses.
type APIError struct {
	ErrorDetail struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateIntentParams are the inputs for opening a charge intent.
type CreateIntentParams struct {
	AmountCents int64
	Currency    string
	Description string
	Metadata    map[string]string
}
