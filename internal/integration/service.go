package integration

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "github.com/frahmantamala/payment-service/internal"
	"github.com/frahmantamala/payment-service/internal/core/datamodel/payment"
	"github.com/frahmantamala/payment-service/internal/core/events"
)

// RepositoryAPI is the slice of the payment repository the consumption gate
// needs.
type RepositoryAPI interface {
	LatestUnconsumed(externalUserID string) (*payment.Payment, error)
	ClaimForIntegration(id int64) (bool, error)
}

type Service struct {
	repository RepositoryAPI
	eventBus   *events.EventBus
	logger     *slog.Logger
}

func NewService(repository RepositoryAPI, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// ClaimLatestPayment finds the newest unclaimed payment for the user and
// claims it exactly once. The claim is a conditional update on the single
// row: two concurrent polls can both read the row, but only one flips the
// flag; the loser gets ErrPaymentAlreadyClaimed.
func (s *Service) ClaimLatestPayment(ctx context.Context, externalUserID string) (*ClaimResponse, error) {
	if externalUserID == "" {
		return nil, apperrors.NewValidationError("fb_id is required", apperrors.ErrCodeValidationFailed)
	}

	record, err := s.repository.LatestUnconsumed(externalUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNoUnconsumedPayments
		}
		return nil, apperrors.NewInternalError("failed to query payments", err)
	}

	claimed, err := s.repository.ClaimForIntegration(record.ID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to claim payment", err)
	}
	if !claimed {
		s.logger.Info("payment already claimed by a concurrent poll",
			"payment_id", record.ID,
			"external_user_id", externalUserID)
		return nil, apperrors.ErrPaymentAlreadyClaimed
	}

	s.logger.Info("payment claimed by integration",
		"payment_id", record.ID,
		"external_user_id", externalUserID,
		"package", record.Package,
		"status", record.Status)

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.NewPaymentClaimedEvent(record.ID, externalUserID, record.Package))
	}

	return &ClaimResponse{
		Success:       record.Package,
		PaymentStatus: record.Status,
		Amount:        decimal.NewFromInt(record.AmountCents).Div(decimal.NewFromInt(100)),
	}, nil
}
