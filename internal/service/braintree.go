package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reviewpromax/internal/client"
	"reviewpromax/internal/dto"
	"reviewpromax/internal/model"
	"reviewpromax/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CardCheckoutService interface {
	Checkout(ctx context.Context, userID string, req *dto.CardCheckoutRequest) (*dto.CardCheckoutResponse, error)
}

type cardCheckoutServiceImpl struct {
	braintreeClient client.BraintreeClient
	paymentRepo     repository.PaymentRepository
	creditor        repository.PlanCreditor
	log             *zap.Logger
}

// NewCardCheckoutService accepts a nil client when Braintree is not
// configured; Checkout then fails with ErrGatewayNotConfigured.
func NewCardCheckoutService(
	braintreeClient client.BraintreeClient,
	paymentRepo repository.PaymentRepository,
	creditor repository.PlanCreditor,
	log *zap.Logger,
) CardCheckoutService {
	return &cardCheckoutServiceImpl{
		braintreeClient: braintreeClient,
		paymentRepo:     paymentRepo,
		creditor:        creditor,
		log:             log,
	}
}

func (s *cardCheckoutServiceImpl) Checkout(ctx context.Context, userID string, req *dto.CardCheckoutRequest) (*dto.CardCheckoutResponse, error) {
	if s.braintreeClient == nil {
		return nil, ErrGatewayNotConfigured
	}
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	payment := &model.Payment{
		ID:       uuid.NewString(),
		UserID:   userID,
		PlanType: model.PlanType(req.PlanType),
		PlanName: req.PlanName,
		Amount:   req.Amount,
		Provider: model.ProviderBraintree,
		Status:   model.PaymentStatusPending,
	}
	if req.BookPrice != nil {
		payment.BookPrice = decimal.NewNullDecimal(*req.BookPrice)
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("store payment in db: %w", err)
	}

	charge, err := s.braintreeClient.Charge(ctx, req.Nonce, req.Amount, payment.ID)
	if err != nil {
		if errors.Is(err, client.ErrCardDeclined) {
			data, _ := json.Marshal(map[string]string{"error": err.Error()})
			if markErr := s.paymentRepo.MarkFailed(ctx, payment.ID, data); markErr != nil {
				s.log.Warn("mark card payment failed", zap.String("payment_id", payment.ID), zap.Error(markErr))
			}
			return nil, fmt.Errorf("%w: %w", ErrPaymentDeclined, err)
		}
		// unknown outcome: the payment stays pending for manual review
		s.log.Error("braintree charge", zap.String("payment_id", payment.ID), zap.Error(err))
		return nil, fmt.Errorf("braintree charge: %w: %w", ErrGatewayFailure, err)
	}

	data, _ := json.Marshal(map[string]string{
		"transaction_id": charge.TransactionID,
		"status":         charge.Status,
	})
	if err := s.paymentRepo.RecordGatewayResult(ctx, payment.ID, charge.TransactionID, "", data); err != nil {
		s.log.Warn("record braintree transaction", zap.String("payment_id", payment.ID), zap.Error(err))
	}

	planID, err := s.creditor.Credit(ctx, repository.CreditRequest{
		PaymentID:    payment.ID,
		UserID:       userID,
		PlanType:     payment.PlanType,
		PlanName:     payment.PlanName,
		Amount:       payment.Amount,
		TotalReviews: model.ReviewCountForPlan(payment.PlanName),
	})
	if err != nil {
		s.log.Error("credit review plan",
			zap.String("payment_id", payment.ID),
			zap.String("transaction_id", charge.TransactionID),
			zap.Error(err))
		return nil, fmt.Errorf("credit review plan: %w", err)
	}

	return &dto.CardCheckoutResponse{
		Success:       true,
		PaymentID:     payment.ID,
		TransactionID: charge.TransactionID,
		PlanID:        planID,
	}, nil
}
