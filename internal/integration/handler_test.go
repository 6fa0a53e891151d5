package integration_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/payment-service/internal/core/datamodel/payment"
	"github.com/frahmantamala/payment-service/internal/core/events"
	"github.com/frahmantamala/payment-service/internal/integration"
	"github.com/frahmantamala/payment-service/internal/transport"
)

var _ = Describe("Integration Handler", func() {
	var (
		repo   *mockRepository
		router chi.Router
	)

	BeforeEach(func() {
		repo = newMockRepository()
		service := integration.NewService(repo, events.NewEventBus(testLogger()), testLogger())
		handler := integration.NewHandler(transport.NewBaseHandler(testLogger()), service, testLogger())

		router = chi.NewRouter()
		router.Get("/manychat-payment-check/{fb_id}/", handler.CheckPayment)
	})

	doCheck := func(fbID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/manychat-payment-check/"+fbID+"/", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("delivers the claimed payment with its package label", func() {
		repo.add(&payment.Payment{
			ID:             1,
			ExternalUserID: "U1",
			Package:        "gold",
			AmountCents:    1000,
			Status:         payment.StatusCompleted,
			UpdatedAt:      time.Now(),
		})

		rec := doCheck("U1")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var resp map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["success"]).To(Equal("gold"))
		Expect(resp["payment_status"]).To(Equal(payment.StatusCompleted))
	})

	It("returns 404 when the user has no unconsumed payments", func() {
		rec := doCheck("U1")
		Expect(rec.Code).To(Equal(http.StatusNotFound))

		var resp integration.NoPaymentResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Success).To(BeFalse())
	})

	It("returns 200 with success=false on a repeated poll", func() {
		repo.add(&payment.Payment{
			ID:             1,
			ExternalUserID: "U1",
			Package:        "gold",
			AmountCents:    1000,
			Status:         payment.StatusCompleted,
			UpdatedAt:      time.Now(),
		})

		first := doCheck("U1")
		Expect(first.Code).To(Equal(http.StatusOK))

		// No unconsumed rows remain, so the second poll is a 404.
		second := doCheck("U1")
		Expect(second.Code).To(Equal(http.StatusNotFound))
	})

	It("returns 200 with success=false when a concurrent poll won the claim", func() {
		repo.add(&payment.Payment{
			ID:             1,
			ExternalUserID: "U1",
			Package:        "gold",
			AmountCents:    1000,
			Status:         payment.StatusCompleted,
			UpdatedAt:      time.Now(),
		})
		repo.loseClaim = true

		rec := doCheck("U1")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var resp integration.NoPaymentResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Success).To(BeFalse())
		Expect(resp.Message).To(Equal("payment already checked"))
	})
})
