package payment

import (
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/payment-service/internal/core/common/validation"
)

// DefaultCurrency applies when the payment page omits the currency. The
// stored column defaults to "usd"; this call-site default is "eur" because
// the hosted checkout is priced in euros.
const DefaultCurrency = "eur"

// DefaultPackage labels a charge that arrives without a package name.
const DefaultPackage = "Payment"

// CreateIntentRequest is the body of POST /api/create-payment-intent/.
// Amount accepts both JSON numbers and numeric strings.
type CreateIntentRequest struct {
	ExternalUserID string          `json:"fb_id"`
	Amount         decimal.Decimal `json:"amount"`
	Package        string          `json:"package"`
	Currency       string          `json:"currency"`
	Description    string          `json:"description"`
}

func (r *CreateIntentRequest) Validate() error {
	validator := validation.NewValidator()

	validator.Field("amount", r.Amount).PositiveAmount()
	validator.Field("currency", r.Currency).CurrencyCode()
	validator.Field("package", r.Package).MaxLength(100)
	validator.Field("fb_id", r.ExternalUserID).MaxLength(100)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// AmountCents converts the decimal amount to the gateway's minor-unit
// representation, truncating any sub-cent fraction.
func (r *CreateIntentRequest) AmountCents() int64 {
	return r.Amount.Mul(decimal.NewFromInt(100)).IntPart()
}

type CreateIntentResponse struct {
	Success         bool   `json:"success"`
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
	PaymentID       int64  `json:"payment_id"`
	PublishableKey  string `json:"publishable_key"`
}

// ConfirmRequest is the body of POST /api/confirm-payment/.
type ConfirmRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
}

func (r *ConfirmRequest) Validate() error {
	validator := validation.NewValidator()

	validator.Field("payment_intent_id", r.PaymentIntentID).Required()

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type ConfirmResponse struct {
	Success       bool    `json:"success"`
	PaymentStatus string  `json:"payment_status"`
	PaymentMethod *string `json:"payment_method"`
	Message       string  `json:"message"`
}
