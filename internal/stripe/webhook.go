package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	errors "github.com/frahmantamala/payment-service/internal"
	"github.com/frahmantamala/payment-service/internal/core/datamodel/gateway"
)

// SignatureHeader is the webhook signature header name.
const SignatureHeader = "Stripe-Signature"

// DefaultTolerance bounds how old a signed payload may be before it is
// rejected as a possible replay.
const DefaultTolerance = 5 * time.Minute

// ConstructEvent verifies the signature header against the raw payload and
// decodes the event envelope. The header carries a unix timestamp and one or
// more HMAC-SHA256 signatures over "<timestamp>.<payload>":
//
//	Stripe-Signature: t=1712000000,v1=5257a869e7...
//
// Any valid v1 signature within tolerance accepts the payload.
func ConstructEvent(payload []byte, header, secret string) (*gateway.Event, error) {
	if err := VerifySignature(payload, header, secret, DefaultTolerance, time.Now()); err != nil {
		return nil, err
	}
	return ParseEvent(payload)
}

// ParseEvent decodes an event envelope without verifying anything. Only the
// unverified operating mode should call this directly.
func ParseEvent(payload []byte) (*gateway.Event, error) {
	var event gateway.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, errors.NewValidationError("malformed webhook payload", errors.ErrCodeInvalidPayload).WithCause(err)
	}
	if event.Type == "" {
		return nil, errors.NewValidationError("webhook payload missing event type", errors.ErrCodeInvalidPayload)
	}
	return &event, nil
}

// VerifySignature checks the signature header against payload using secret.
// now is injected for testability.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	timestamp, signatures, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	if tolerance > 0 {
		age := now.Sub(time.Unix(timestamp, 0))
		if age > tolerance || age < -tolerance {
			return errors.NewSignatureError("webhook timestamp outside tolerance")
		}
	}

	expected := computeSignature(timestamp, payload, secret)
	for _, sig := range signatures {
		received, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(received, expected) {
			return nil
		}
	}

	return errors.NewSignatureError("webhook signature verification failed")
}

// Sign produces a signature header for payload, the counterpart of
// VerifySignature. Tests use it to build verifiable deliveries.
func Sign(payload []byte, secret string, at time.Time) string {
	timestamp := at.Unix()
	signature := computeSignature(timestamp, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(signature))
}

func computeSignature(timestamp int64, payload []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}

func parseSignatureHeader(header string) (int64, []string, error) {
	if header == "" {
		return 0, nil, errors.NewSignatureError("missing signature header")
	}

	var timestamp int64
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		pair := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(pair) != 2 {
			continue
		}
		switch pair[0] {
		case "t":
			ts, err := strconv.ParseInt(pair[1], 10, 64)
			if err != nil {
				return 0, nil, errors.NewSignatureError("invalid signature timestamp")
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, pair[1])
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return 0, nil, errors.NewSignatureError("malformed signature header")
	}

	return timestamp, signatures, nil
}
