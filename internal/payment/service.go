package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	apperrors "github.com/frahmantamala/payment-service/internal"
	"github.com/frahmantamala/payment-service/internal/core/datamodel/gateway"
	"github.com/frahmantamala/payment-service/internal/core/datamodel/payment"
	"github.com/frahmantamala/payment-service/internal/core/events"
)

// RepositoryAPI is the persistence surface the service needs.
type RepositoryAPI interface {
	Create(p *payment.Payment) error
	GetByID(id int64) (*payment.Payment, error)
	GetByIntentID(intentID string) (*payment.Payment, error)
	UpdateReconciliation(id int64, update ReconciliationUpdate) error
}

// ReconciliationUpdate carries the fields the reconciliation engine may
// change. Nil pointer fields are left untouched in the row.
type ReconciliationUpdate struct {
	Status        string
	GatewayStatus string
	Method        *string
	CustomerID    *string
	RawResponse   json.RawMessage
}

// GatewayAPI is the slice of the gateway client the service depends on.
type GatewayAPI interface {
	CreatePaymentIntent(ctx context.Context, params gateway.CreateIntentParams) (*gateway.PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, intentID string) (*gateway.PaymentIntent, error)
}

type ServiceAPI interface {
	CreateIntent(ctx context.Context, req *CreateIntentRequest) (*payment.Payment, *gateway.PaymentIntent, error)
	ConfirmPayment(ctx context.Context, intentID string) (*payment.Payment, error)
	ApplyIntent(ctx context.Context, intent *gateway.PaymentIntent) (*payment.Payment, error)
}

type PaymentService struct {
	repository RepositoryAPI
	gateway    GatewayAPI
	eventBus   *events.EventBus
	logger     *slog.Logger
}

func NewPaymentService(repository RepositoryAPI, gatewayClient GatewayAPI, eventBus *events.EventBus, logger *slog.Logger) *PaymentService {
	return &PaymentService{
		repository: repository,
		gateway:    gatewayClient,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// CreateIntent opens a charge intent at the gateway and records a pending
// payment row. Gateway calls are not deduplicated: submitting the same
// request twice opens two intents and two pending rows.
func (s *PaymentService) CreateIntent(ctx context.Context, req *CreateIntentRequest) (*payment.Payment, *gateway.PaymentIntent, error) {
	if err := req.Validate(); err != nil {
		s.logger.Error("create intent validation failed", "error", err)
		return nil, nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	pkg := req.Package
	if pkg == "" {
		pkg = DefaultPackage
	}

	amountCents := req.AmountCents()

	intent, err := s.gateway.CreatePaymentIntent(ctx, gateway.CreateIntentParams{
		AmountCents: amountCents,
		Currency:    currency,
		Description: fmt.Sprintf("%s - %s", pkg, req.Description),
		Metadata: map[string]string{
			"fb_id":       req.ExternalUserID,
			"package":     pkg,
			"description": req.Description,
		},
	})
	if err != nil {
		s.logger.Error("gateway intent creation failed",
			"error", err,
			"external_user_id", req.ExternalUserID,
			"amount_cents", amountCents)
		return nil, nil, err
	}

	intentID := intent.ID
	record := &payment.Payment{
		ExternalUserID:  req.ExternalUserID,
		Package:         pkg,
		AmountCents:     amountCents,
		Currency:        currency,
		GatewayIntentID: &intentID,
		Status:          payment.StatusPending,
	}
	if req.Description != "" {
		description := req.Description
		record.Description = &description
	}

	if err := s.repository.Create(record); err != nil {
		s.logger.Error("failed to persist payment record",
			"error", err,
			"intent_id", intent.ID)
		return nil, nil, apperrors.NewInternalError("failed to record payment", err)
	}

	s.logger.Info("payment intent recorded",
		"payment_id", record.ID,
		"intent_id", intent.ID,
		"external_user_id", req.ExternalUserID,
		"amount_cents", amountCents,
		"currency", currency)

	return record, intent, nil
}

// ConfirmPayment is the synchronous reconciliation path: the client reports
// the intent id, we fetch the authoritative state from the gateway and apply
// it to the local record.
func (s *PaymentService) ConfirmPayment(ctx context.Context, intentID string) (*payment.Payment, error) {
	intent, err := s.gateway.GetPaymentIntent(ctx, intentID)
	if err != nil {
		s.logger.Error("failed to fetch intent from gateway", "error", err, "intent_id", intentID)
		return nil, err
	}

	return s.ApplyIntent(ctx, intent)
}

// ApplyIntent reconciles one gateway intent onto the matching payment row.
// It is idempotent: replaying the same intent converges to the same state.
// Returns ErrPaymentNotFound when no row matches; the webhook path treats
// that as a no-op while the confirmation path surfaces it.
func (s *PaymentService) ApplyIntent(ctx context.Context, intent *gateway.PaymentIntent) (*payment.Payment, error) {
	if intent == nil || intent.ID == "" {
		return nil, apperrors.NewValidationError("intent payload missing id", apperrors.ErrCodeInvalidPayload)
	}

	record, err := s.repository.GetByIntentID(intent.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, apperrors.NewInternalError("failed to load payment record", err)
	}

	previousStatus := record.Status
	newStatus := CollapseIntentStatus(intent.Status)
	method := ClassifyMethod(intent)

	update := ReconciliationUpdate{
		Status:        newStatus,
		GatewayStatus: intent.Status,
		Method:        method,
	}

	if intent.Customer != "" && record.GatewayCustomerID == nil {
		customer := intent.Customer
		update.CustomerID = &customer
	}

	if raw, marshalErr := json.Marshal(intent); marshalErr == nil {
		update.RawResponse = raw
	}

	if err := s.repository.UpdateReconciliation(record.ID, update); err != nil {
		s.logger.Error("failed to update payment record",
			"error", err,
			"payment_id", record.ID,
			"intent_id", intent.ID)
		return nil, apperrors.NewInternalError("failed to update payment", err)
	}

	record.Status = newStatus
	gatewayStatus := intent.Status
	record.GatewayStatus = &gatewayStatus
	if method != nil {
		record.Method = method
	}
	if update.CustomerID != nil {
		record.GatewayCustomerID = update.CustomerID
	}

	s.logger.Info("payment reconciled",
		"payment_id", record.ID,
		"intent_id", intent.ID,
		"gateway_status", intent.Status,
		"status", newStatus)

	s.publishTransition(ctx, record, previousStatus)

	return record, nil
}

// publishTransition emits domain events only when the collapsed status
// actually changed, so webhook replays stay quiet.
func (s *PaymentService) publishTransition(ctx context.Context, record *payment.Payment, previousStatus string) {
	if s.eventBus == nil || record.Status == previousStatus {
		return
	}

	intentID := ""
	if record.GatewayIntentID != nil {
		intentID = *record.GatewayIntentID
	}

	switch record.Status {
	case payment.StatusCompleted:
		method := ""
		if record.Method != nil {
			method = *record.Method
		}
		event := events.NewPaymentCompletedEvent(record.ID, record.ExternalUserID, intentID, record.AmountCents, method)
		s.eventBus.Publish(ctx, event)
	case payment.StatusFailed:
		gatewayStatus := ""
		if record.GatewayStatus != nil {
			gatewayStatus = *record.GatewayStatus
		}
		event := events.NewPaymentFailedEvent(record.ID, record.ExternalUserID, intentID, record.AmountCents, gatewayStatus)
		s.eventBus.Publish(ctx, event)
	}
}
