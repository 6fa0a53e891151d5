package integration

import "github.com/shopspring/decimal"

// ClaimResponse is the body returned to the chat automation when a claim
// wins. Success carries the package label, matching what the flow builder
// keys on; the numeric amount is the major-unit value.
type ClaimResponse struct {
	Success       string          `json:"success"`
	PaymentStatus string          `json:"payment_status"`
	Amount        decimal.Decimal `json:"amount"`
}

type NoPaymentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
