package payment_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/payment-service/internal/core/datamodel/gateway"
	"github.com/frahmantamala/payment-service/internal/core/datamodel/payment"
	"github.com/frahmantamala/payment-service/internal/core/events"
	paymentpkg "github.com/frahmantamala/payment-service/internal/payment"
	"github.com/frahmantamala/payment-service/internal/stripe"
	"github.com/frahmantamala/payment-service/internal/transport"
)

const testWebhookSecret = "whsec_test_secret"

func eventPayload(eventType string, intent *gateway.PaymentIntent) []byte {
	object, err := json.Marshal(intent)
	Expect(err).ToNot(HaveOccurred())

	payload, err := json.Marshal(map[string]interface{}{
		"id":   "evt_1",
		"type": eventType,
		"data": map[string]interface{}{"object": json.RawMessage(object)},
	})
	Expect(err).ToNot(HaveOccurred())
	return payload
}

func signedRequest(payload []byte, secret string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/stripe-webhook/", bytes.NewReader(payload))
	if secret != "" {
		req.Header.Set(stripe.SignatureHeader, stripe.Sign(payload, secret, time.Now()))
	}
	return req
}

var _ = Describe("WebhookHandler", func() {
	var (
		repo    *mockPaymentRepository
		service *paymentpkg.PaymentService
		handler *paymentpkg.WebhookHandler
		record  *payment.Payment
	)

	BeforeEach(func() {
		repo = newMockPaymentRepository()
		service = paymentpkg.NewPaymentService(repo, &mockGateway{}, events.NewEventBus(testLogger()), testLogger())
		handler = paymentpkg.NewWebhookHandler(transport.NewBaseHandler(testLogger()), service, testWebhookSecret, testLogger())

		intentID := "pi_123"
		record = &payment.Payment{
			ExternalUserID:  "U1",
			AmountCents:     1000,
			Currency:        "usd",
			GatewayIntentID: &intentID,
			Status:          payment.StatusPending,
		}
		Expect(repo.Create(record)).To(Succeed())
	})

	It("processes a signed succeeded event", func() {
		payload := eventPayload(gateway.EventIntentSucceeded, cardIntent("pi_123", gateway.IntentStatusSucceeded, ""))
		rec := httptest.NewRecorder()

		handler.HandleWebhook(rec, signedRequest(payload, testWebhookSecret))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(record.Status).To(Equal(payment.StatusCompleted))
	})

	It("processes a signed failed event", func() {
		payload := eventPayload(gateway.EventIntentFailed, &gateway.PaymentIntent{
			ID:     "pi_123",
			Status: gateway.IntentStatusRequiresPaymentMethod,
		})
		rec := httptest.NewRecorder()

		handler.HandleWebhook(rec, signedRequest(payload, testWebhookSecret))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(record.Status).To(Equal(payment.StatusFailed))
	})

	It("rejects a delivery with a bad signature and leaves state untouched", func() {
		payload := eventPayload(gateway.EventIntentSucceeded, cardIntent("pi_123", gateway.IntentStatusSucceeded, ""))
		rec := httptest.NewRecorder()

		handler.HandleWebhook(rec, signedRequest(payload, "whsec_wrong_secret"))

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(record.Status).To(Equal(payment.StatusPending))
		Expect(repo.updates).To(BeEmpty())
	})

	It("rejects a delivery with no signature header", func() {
		payload := eventPayload(gateway.EventIntentSucceeded, cardIntent("pi_123", gateway.IntentStatusSucceeded, ""))
		rec := httptest.NewRecorder()

		handler.HandleWebhook(rec, signedRequest(payload, ""))

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(record.Status).To(Equal(payment.StatusPending))
	})

	It("acknowledges unrecognized event kinds without touching state", func() {
		payload := eventPayload("charge.refunded", cardIntent("pi_123", gateway.IntentStatusSucceeded, ""))
		rec := httptest.NewRecorder()

		handler.HandleWebhook(rec, signedRequest(payload, testWebhookSecret))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(repo.updates).To(BeEmpty())
	})

	It("acknowledges events for intents we never recorded", func() {
		payload := eventPayload(gateway.EventIntentSucceeded, cardIntent("pi_unknown", gateway.IntentStatusSucceeded, ""))
		rec := httptest.NewRecorder()

		handler.HandleWebhook(rec, signedRequest(payload, testWebhookSecret))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(repo.updates).To(BeEmpty())
	})

	It("replaying the same event converges without emitting twice", func() {
		payload := eventPayload(gateway.EventIntentSucceeded, cardIntent("pi_123", gateway.IntentStatusSucceeded, "google_pay"))

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			handler.HandleWebhook(rec, signedRequest(payload, testWebhookSecret))
			Expect(rec.Code).To(Equal(http.StatusOK))
		}

		Expect(record.Status).To(Equal(payment.StatusCompleted))
		Expect(repo.updates).To(HaveLen(2))
	})

	Describe("unverified mode", func() {
		BeforeEach(func() {
			handler = paymentpkg.NewWebhookHandler(transport.NewBaseHandler(testLogger()), service, "", testLogger())
		})

		It("processes unsigned deliveries", func() {
			payload := eventPayload(gateway.EventIntentSucceeded, cardIntent("pi_123", gateway.IntentStatusSucceeded, ""))
			rec := httptest.NewRecorder()

			handler.HandleWebhook(rec, signedRequest(payload, ""))

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(record.Status).To(Equal(payment.StatusCompleted))
		})

		It("acknowledges deliveries that do not parse", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/stripe-webhook/", bytes.NewReader([]byte("not json")))
			rec := httptest.NewRecorder()

			handler.HandleWebhook(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
		})
	})
})
