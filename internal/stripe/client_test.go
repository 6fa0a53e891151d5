package stripe_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/payment-service/internal/core/datamodel/gateway"
	"github.com/frahmantamala/payment-service/internal/stripe"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

var _ = Describe("Client", func() {
	var (
		server   *httptest.Server
		client   *stripe.Client
		lastReq  *http.Request
		lastForm map[string][]string
		respond  func(w http.ResponseWriter)
	)

	BeforeEach(func() {
		respond = func(w http.ResponseWriter) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"pi_1","status":"requires_payment_method","client_secret":"pi_1_secret"}`))
		}

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.ParseForm()
			lastReq = r
			lastForm = r.PostForm
			respond(w)
		}))

		client = stripe.NewClient(stripe.Config{
			APIBaseURL:     server.URL,
			SecretKey:      "sk_test_abc",
			RequestTimeout: 5 * time.Second,
		}, testLogger())
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("CreatePaymentIntent", func() {
		It("sends form-encoded params with bearer auth", func() {
			intent, err := client.CreatePaymentIntent(context.Background(), gateway.CreateIntentParams{
				AmountCents: 1250,
				Currency:    "eur",
				Description: "gold - upgrade",
				Metadata:    map[string]string{"fb_id": "U1"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(intent.ID).To(Equal("pi_1"))
			Expect(intent.ClientSecret).To(Equal("pi_1_secret"))

			Expect(lastReq.Method).To(Equal(http.MethodPost))
			Expect(lastReq.URL.Path).To(Equal("/v1/payment_intents"))
			Expect(lastReq.Header.Get("Authorization")).To(Equal("Bearer sk_test_abc"))
			Expect(lastForm["amount"]).To(ConsistOf("1250"))
			Expect(lastForm["currency"]).To(ConsistOf("eur"))
			Expect(lastForm["payment_method_types[]"]).To(ConsistOf("card"))
			Expect(lastForm["metadata[fb_id]"]).To(ConsistOf("U1"))
		})

		It("surfaces the gateway's error message on rejection", func() {
			respond = func(w http.ResponseWriter) {
				w.WriteHeader(http.StatusPaymentRequired)
				w.Write([]byte(`{"error":{"type":"card_error","message":"Your card was declined."}}`))
			}

			_, err := client.CreatePaymentIntent(context.Background(), gateway.CreateIntentParams{
				AmountCents: 1000,
				Currency:    "eur",
			})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Your card was declined."))
		})
	})

	Describe("GetPaymentIntent", func() {
		It("requests the intent with charges expanded", func() {
			respond = func(w http.ResponseWriter) {
				w.Write([]byte(`{"id":"pi_1","status":"succeeded"}`))
			}

			intent, err := client.GetPaymentIntent(context.Background(), "pi_1")
			Expect(err).NotTo(HaveOccurred())
			Expect(intent.Status).To(Equal(gateway.IntentStatusSucceeded))

			Expect(lastReq.Method).To(Equal(http.MethodGet))
			Expect(lastReq.URL.Path).To(Equal("/v1/payment_intents/pi_1"))
			Expect(lastReq.URL.Query()["expand[]"]).To(ConsistOf("charges"))
		})

		It("rejects an empty intent id without calling the gateway", func() {
			lastReq = nil

			_, err := client.GetPaymentIntent(context.Background(), "")
			Expect(err).To(HaveOccurred())
			Expect(lastReq).To(BeNil())
		})

		It("reports the gateway as unreachable when the connection fails", func() {
			server.Close()

			_, err := client.GetPaymentIntent(context.Background(), "pi_1")
			Expect(err).To(HaveOccurred())
		})
	})
})
