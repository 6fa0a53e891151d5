package payment

import (
	"github.com/frahmantamala/payment-service/internal/core/datamodel/gateway"
	"github.com/frahmantamala/payment-service/internal/core/datamodel/payment"
)

// CollapseIntentStatus maps the gateway's intent status onto the local
// three-way view. Everything that is neither succeeded nor still processing
// counts as failed; the granular status is kept alongside in gateway_status
// so the collapse loses nothing internally.
func CollapseIntentStatus(intentStatus string) string {
	switch intentStatus {
	case gateway.IntentStatusSucceeded:
		return payment.StatusCompleted
	case gateway.IntentStatusProcessing:
		return payment.StatusPending
	default:
		return payment.StatusFailed
	}
}

// ClassifyMethod derives the local payment method from the intent's first
// charge. Returns nil when the intent carries no charge data or the charge
// is not card-based; the record's method stays unset in that case.
func ClassifyMethod(intent *gateway.PaymentIntent) *string {
	if intent == nil || len(intent.Charges.Data) == 0 {
		return nil
	}

	details := intent.Charges.Data[0].PaymentMethodDetails
	if details == nil || details.Type != "card" {
		return nil
	}

	method := payment.MethodCard
	if details.Card != nil && details.Card.Wallet != nil {
		switch details.Card.Wallet.Type {
		case gateway.WalletGooglePay:
			method = payment.MethodGooglePay
		case gateway.WalletApplePay:
			method = payment.MethodApplePay
		}
	}

	return &method
}
