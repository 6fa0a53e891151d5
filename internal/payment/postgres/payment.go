package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/payment-service/internal/core/datamodel/payment"
	paymentpkg "github.com/frahmantamala/payment-service/internal/payment"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{
		db: db,
	}
}

func (r *PaymentRepository) Create(p *payment.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByID(id int64) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByIntentID(intentID string) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.Where("gateway_intent_id = ?", intentID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByExternalUserID(externalUserID string) ([]*payment.Payment, error) {
	var payments []*payment.Payment
	err := r.db.Where("external_user_id = ?", externalUserID).Order("updated_at DESC").Find(&payments).Error
	return payments, err
}

// LatestUnconsumed returns the most recently updated record for the user
// that the chat integration has not claimed yet.
func (r *PaymentRepository) LatestUnconsumed(externalUserID string) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.
		Where("external_user_id = ? AND consumed_by_integration = ?", externalUserID, false).
		Order("updated_at DESC").
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ClaimForIntegration flips consumed_by_integration false -> true for one
// record. The WHERE clause makes it a compare-and-set: of N concurrent
// claims on the same row exactly one sees an affected row and wins.
func (r *PaymentRepository) ClaimForIntegration(id int64) (bool, error) {
	result := r.db.Model(&payment.Payment{}).
		Where("id = ? AND consumed_by_integration = ?", id, false).
		Updates(map[string]interface{}{
			"consumed_by_integration": true,
			"updated_at":              time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *PaymentRepository) UpdateReconciliation(id int64, update paymentpkg.ReconciliationUpdate) error {
	updates := map[string]interface{}{
		"status":         update.Status,
		"gateway_status": update.GatewayStatus,
		"updated_at":     time.Now(),
	}

	if update.Method != nil {
		updates["payment_method"] = *update.Method
	}

	if update.CustomerID != nil {
		updates["gateway_customer_id"] = *update.CustomerID
	}

	if update.RawResponse != nil {
		updates["gateway_response"] = update.RawResponse
	}

	return r.db.Model(&payment.Payment{}).Where("id = ?", id).Updates(updates).Error
}
