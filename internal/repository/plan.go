package repository

import (
	"context"
	"fmt"
	"reviewpromax/internal/model"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreditRequest struct {
	PaymentID    string
	UserID       string
	PlanType     model.PlanType
	PlanName     string
	Amount       decimal.Decimal
	TotalReviews int
}

// PlanCreditor turns a completed payment into review credit. Credit is
// idempotent per payment id: repeated calls return the same plan id.
type PlanCreditor interface {
	Credit(ctx context.Context, req CreditRequest) (string, error)
}

type PlanRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*model.ReviewPlan, error)
	FindByPaymentID(ctx context.Context, paymentID string) (*model.ReviewPlan, error)
}

type planRepoImpl struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepoImpl{
		db: db,
	}
}

func (r *planRepoImpl) ListByUser(ctx context.Context, userID string) ([]*model.ReviewPlan, error) {
	var plans []*model.ReviewPlan
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("purchased_at DESC").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *planRepoImpl) FindByPaymentID(ctx context.Context, paymentID string) (*model.ReviewPlan, error) {
	var plan model.ReviewPlan
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		First(&plan).Error
	if err != nil {
		return nil, err
	}

	return &plan, nil
}

// NewPlanCreditor picks the crediting implementation for PLAN_CREDITING_MODE.
func NewPlanCreditor(db *gorm.DB, mode string) PlanCreditor {
	if mode == "procedure" {
		return &procedureCreditor{db: db}
	}
	return &appCreditor{db: db}
}

// appCreditor credits inside one transaction; the unique index on
// review_plans.payment_id makes a second credit a no-op.
type appCreditor struct {
	db *gorm.DB
}

func (c *appCreditor) Credit(ctx context.Context, req CreditRequest) (string, error) {
	var plan model.ReviewPlan

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		candidate := &model.ReviewPlan{
			ID:           uuid.NewString(),
			UserID:       req.UserID,
			PlanType:     req.PlanType,
			PlanName:     req.PlanName,
			TotalReviews: req.TotalReviews,
			Status:       model.PlanStatusActive,
			PaymentID:    req.PaymentID,
			PurchasedAt:  time.Now(),
		}

		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "payment_id"}},
			DoNothing: true,
		}).Create(candidate).Error
		if err != nil {
			return fmt.Errorf("insert review plan: %w", err)
		}

		if err := tx.Where("payment_id = ?", req.PaymentID).First(&plan).Error; err != nil {
			return fmt.Errorf("load review plan: %w", err)
		}

		return markPaymentCompleted(tx, req.PaymentID)
	})
	if err != nil {
		return "", err
	}

	return plan.ID, nil
}

// procedureCreditor delegates to the handle_successful_payment stored
// procedure of the hosted Postgres database.
type procedureCreditor struct {
	db *gorm.DB
}

func (c *procedureCreditor) Credit(ctx context.Context, req CreditRequest) (string, error) {
	var planID string

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Raw(
			"SELECT handle_successful_payment(?, ?, ?, ?, ?, ?)::text",
			req.PaymentID, req.UserID, string(req.PlanType), req.PlanName, req.Amount, req.TotalReviews,
		).Scan(&planID).Error
		if err != nil {
			return fmt.Errorf("call handle_successful_payment: %w", err)
		}

		return markPaymentCompleted(tx, req.PaymentID)
	})
	if err != nil {
		return "", err
	}

	return planID, nil
}

func markPaymentCompleted(tx *gorm.DB, paymentID string) error {
	result := tx.Model(&model.Payment{}).
		Where("id = ?", paymentID).
		Updates(map[string]interface{}{
			"status":     model.PaymentStatusCompleted,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("mark payment completed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
