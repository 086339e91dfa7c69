package repository

import (
	"context"
	"reviewpromax/internal/model"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	FindForUser(ctx context.Context, paymentID, userID string) (*model.Payment, error)
	FindByPaypalID(ctx context.Context, paypalPaymentID string) (*model.Payment, error)
	ListPendingByUser(ctx context.Context, userID string) ([]*model.Payment, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Payment, error)
	RecordGatewayResult(ctx context.Context, paymentID, gatewayID, payerID string, data []byte) error
	MarkFailed(ctx context.Context, paymentID string, data []byte) error
}

type paymentRepoImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepoImpl{
		db: db,
	}
}

func (r *paymentRepoImpl) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepoImpl) FindForUser(ctx context.Context, paymentID, userID string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", paymentID, userID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepoImpl) FindByPaypalID(ctx context.Context, paypalPaymentID string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("paypal_payment_id = ?", paypalPaymentID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepoImpl) ListPendingByUser(ctx context.Context, userID string) ([]*model.Payment, error) {
	var payments []*model.Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.PaymentStatusPending).
		Order("created_at ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepoImpl) ListByUser(ctx context.Context, userID string) ([]*model.Payment, error) {
	var payments []*model.Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}

	return payments, nil
}

// RecordGatewayResult stores what the gateway told us about the payment
// without touching its status.
func (r *paymentRepoImpl) RecordGatewayResult(ctx context.Context, paymentID, gatewayID, payerID string, data []byte) error {
	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if gatewayID != "" {
		updates["paypal_payment_id"] = gatewayID
	}
	if payerID != "" {
		updates["paypal_payer_id"] = payerID
	}
	if len(data) > 0 {
		updates["payment_data"] = datatypes.JSON(data)
	}

	result := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ?", paymentID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// MarkFailed only moves pending payments; a completed payment stays completed.
func (r *paymentRepoImpl) MarkFailed(ctx context.Context, paymentID string, data []byte) error {
	updates := map[string]interface{}{
		"status":     model.PaymentStatusFailed,
		"updated_at": time.Now(),
	}
	if len(data) > 0 {
		updates["payment_data"] = datatypes.JSON(data)
	}

	return r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ? AND status = ?", paymentID, model.PaymentStatusPending).
		Updates(updates).Error
}
