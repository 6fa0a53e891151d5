package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	errors "github.com/frahmantamala/payment-service/internal"
	"github.com/frahmantamala/payment-service/internal/core/datamodel/gateway"
)

// Config is built once at startup from internal.StripeConfig and never
// mutated afterwards.
type Config struct {
	APIBaseURL     string
	SecretKey      string
	WebhookSecret  string
	RequestTimeout time.Duration
}

type Client struct {
	baseURL    string
	secretKey  string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.APIBaseURL, "/"),
		secretKey: cfg.SecretKey,
		timeout:   timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// CreatePaymentIntent opens a charge intent. The gateway expects
// form-encoded parameters with bracketed keys for nested metadata.
func (c *Client) CreatePaymentIntent(ctx context.Context, params gateway.CreateIntentParams) (*gateway.PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(params.AmountCents, 10))
	form.Set("currency", params.Currency)
	form.Set("payment_method_types[]", "card")
	if params.Description != "" {
		form.Set("description", params.Description)
	}
	for key, value := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	c.logger.Info("creating payment intent",
		"amount_cents", params.AmountCents,
		"currency", params.Currency)

	var intent gateway.PaymentIntent
	if err := c.do(ctx, http.MethodPost, "/v1/payment_intents", strings.NewReader(form.Encode()), &intent); err != nil {
		return nil, err
	}

	c.logger.Info("payment intent created",
		"intent_id", intent.ID,
		"status", intent.Status)

	return &intent, nil
}

// GetPaymentIntent fetches an intent with its charges expanded so the
// reconciliation engine can classify the payment method.
func (c *Client) GetPaymentIntent(ctx context.Context, intentID string) (*gateway.PaymentIntent, error) {
	if intentID == "" {
		return nil, errors.NewValidationError("payment_intent_id is required", errors.ErrCodeValidationFailed)
	}

	path := fmt.Sprintf("/v1/payment_intents/%s?expand[]=charges", url.PathEscape(intentID))

	var intent gateway.PaymentIntent
	if err := c.do(ctx, http.MethodGet, path, nil, &intent); err != nil {
		return nil, err
	}

	return &intent, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	ctx, cancel := errors.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.NewGatewayError("failed to build gateway request", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("gateway request failed", "method", method, "path", path, "error", err)
		return errors.NewGatewayError("payment gateway unreachable", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewGatewayError("failed to read gateway response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr gateway.APIError
		message := fmt.Sprintf("gateway returned status %d", resp.StatusCode)
		if jsonErr := json.Unmarshal(respBody, &apiErr); jsonErr == nil && apiErr.ErrorDetail.Message != "" {
			message = apiErr.ErrorDetail.Message
		}
		c.logger.Error("gateway rejected request",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"message", message)
		return errors.NewGatewayError(message, fmt.Errorf("gateway status %d", resp.StatusCode))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return errors.NewGatewayError("failed to decode gateway response", err)
		}
	}

	return nil
}
