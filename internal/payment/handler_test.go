package payment_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/frahmantamala/payment-service/internal"
	"github.com/frahmantamala/payment-service/internal/core/datamodel/gateway"
	"github.com/frahmantamala/payment-service/internal/core/datamodel/payment"
	"github.com/frahmantamala/payment-service/internal/core/events"
	paymentpkg "github.com/frahmantamala/payment-service/internal/payment"
	"github.com/frahmantamala/payment-service/internal/transport"
)

var _ = Describe("PaymentHandler", func() {
	var (
		repo    *mockPaymentRepository
		gw      *mockGateway
		handler *paymentpkg.Handler
	)

	BeforeEach(func() {
		repo = newMockPaymentRepository()
		gw = &mockGateway{}
		service := paymentpkg.NewPaymentService(repo, gw, events.NewEventBus(testLogger()), testLogger())
		handler = paymentpkg.NewHandler(transport.NewBaseHandler(testLogger()), service, "pk_test_abc", testLogger())
	})

	Describe("CreatePaymentIntent", func() {
		BeforeEach(func() {
			gw.createIntent = &gateway.PaymentIntent{
				ID:           "pi_123",
				Status:       gateway.IntentStatusRequiresPaymentMethod,
				ClientSecret: "pi_123_secret_abc",
			}
		})

		It("returns 201 with the client secret and publishable key", func() {
			body := []byte(`{"fb_id":"U1","amount":"10.00","package":"gold","currency":"usd"}`)
			req := httptest.NewRequest(http.MethodPost, "/api/create-payment-intent/", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.CreatePaymentIntent(rec, req)

			Expect(rec.Code).To(Equal(http.StatusCreated))

			var resp paymentpkg.CreateIntentResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Success).To(BeTrue())
			Expect(resp.ClientSecret).To(Equal("pi_123_secret_abc"))
			Expect(resp.PaymentIntentID).To(Equal("pi_123"))
			Expect(resp.PublishableKey).To(Equal("pk_test_abc"))
			Expect(resp.PaymentID).ToNot(BeZero())
		})

		It("accepts a numeric amount as well as a string", func() {
			body := []byte(`{"fb_id":"U1","amount":12.5}`)
			req := httptest.NewRequest(http.MethodPost, "/api/create-payment-intent/", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.CreatePaymentIntent(rec, req)

			Expect(rec.Code).To(Equal(http.StatusCreated))
			Expect(gw.lastParams.AmountCents).To(Equal(int64(1250)))
		})

		It("returns 400 for a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/create-payment-intent/", bytes.NewReader([]byte("{")))
			rec := httptest.NewRecorder()

			handler.CreatePaymentIntent(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 400 for a non-positive amount", func() {
			body := []byte(`{"fb_id":"U1","amount":"0"}`)
			req := httptest.NewRequest(http.MethodPost, "/api/create-payment-intent/", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.CreatePaymentIntent(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 500 when the gateway is unreachable", func() {
			gw.createError = apperrors.NewGatewayError("gateway unreachable", errors.New("dial tcp"))

			body := []byte(`{"fb_id":"U1","amount":"10.00"}`)
			req := httptest.NewRequest(http.MethodPost, "/api/create-payment-intent/", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.CreatePaymentIntent(rec, req)

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("ConfirmPayment", func() {
		BeforeEach(func() {
			intentID := "pi_123"
			record := &payment.Payment{
				ExternalUserID:  "U1",
				AmountCents:     1000,
				GatewayIntentID: &intentID,
				Status:          payment.StatusPending,
			}
			Expect(repo.Create(record)).To(Succeed())
		})

		It("returns the collapsed status and classified method", func() {
			gw.getIntent = cardIntent("pi_123", gateway.IntentStatusSucceeded, "apple_pay")

			body := []byte(`{"payment_intent_id":"pi_123"}`)
			req := httptest.NewRequest(http.MethodPost, "/api/confirm-payment/", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.ConfirmPayment(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp paymentpkg.ConfirmResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Success).To(BeTrue())
			Expect(resp.PaymentStatus).To(Equal(payment.StatusCompleted))
			Expect(resp.PaymentMethod).ToNot(BeNil())
			Expect(*resp.PaymentMethod).To(Equal(payment.MethodApplePay))
		})

		It("returns 400 when the intent id is missing", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/confirm-payment/", bytes.NewReader([]byte(`{}`)))
			rec := httptest.NewRecorder()

			handler.ConfirmPayment(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 404 when no record matches the intent", func() {
			gw.getIntent = cardIntent("pi_unknown", gateway.IntentStatusSucceeded, "")

			body := []byte(`{"payment_intent_id":"pi_unknown"}`)
			req := httptest.NewRequest(http.MethodPost, "/api/confirm-payment/", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.ConfirmPayment(rec, req)

			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})
})
