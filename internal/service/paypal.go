package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reviewpromax/internal/cache"
	"reviewpromax/internal/client"
	"reviewpromax/internal/dto"
	"reviewpromax/internal/model"
	"reviewpromax/internal/repository"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaypalService interface {
	CreateOrder(ctx context.Context, userID string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error)
	CaptureOrder(ctx context.Context, userID string, req *dto.CaptureOrderRequest) (*dto.CaptureOrderResponse, error)
	ReconcilePending(ctx context.Context, userID string) (*dto.ReconcileResponse, error)
	HandleWebhook(ctx context.Context, headers http.Header, body []byte) error
}

type paypalServiceImpl struct {
	paypalClient     client.PaypalClient
	paymentRepo      repository.PaymentRepository
	creditor         repository.PlanCreditor
	webhookEventRepo repository.WebhookEventRepository
	locker           cache.Locker
	sweepLockTTL     time.Duration
	log              *zap.Logger
}

func NewPaypalService(
	paypalClient client.PaypalClient,
	paymentRepo repository.PaymentRepository,
	creditor repository.PlanCreditor,
	webhookEventRepo repository.WebhookEventRepository,
	locker cache.Locker,
	sweepLockTTL time.Duration,
	log *zap.Logger,
) PaypalService {
	return &paypalServiceImpl{
		paypalClient:     paypalClient,
		paymentRepo:      paymentRepo,
		creditor:         creditor,
		webhookEventRepo: webhookEventRepo,
		locker:           locker,
		sweepLockTTL:     sweepLockTTL,
		log:              log,
	}
}

func orderDescription(planName string, totalReviews int, planType string) string {
	return fmt.Sprintf("%s - %d Reviews (%s)", planName, totalReviews, planType)
}

// gatewayError hides PayPal's response from callers while keeping it in the
// error chain for logs. Missing credentials stay distinguishable.
func gatewayError(op string, err error) error {
	if errors.Is(err, client.ErrPaypalNotConfigured) {
		return fmt.Errorf("%s: %w", op, ErrGatewayNotConfigured)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrGatewayFailure, err)
}

// validateAmount accepts positive USD amounts with at most two decimals, so
// the stored amount is exactly what the gateway charges.
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w: amount must have at most two decimals", ErrInvalidRequest)
	}
	return nil
}

func (s *paypalServiceImpl) CreateOrder(ctx context.Context, userID string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	order, err := s.paypalClient.CreateOrder(ctx, req.Amount,
		orderDescription(req.PlanName, req.TotalReviews, req.PlanType))
	if err != nil {
		return nil, gatewayError("paypal api create order", err)
	}

	payment := &model.Payment{
		ID:              uuid.NewString(),
		UserID:          userID,
		PlanType:        model.PlanType(req.PlanType),
		PlanName:        req.PlanName,
		Amount:          req.Amount,
		Provider:        model.ProviderPaypal,
		PaypalPaymentID: order.ID,
		Status:          model.PaymentStatusPending,
		PaymentData:     datatypes.JSON(order.Raw),
	}
	if req.BookPrice != nil {
		payment.BookPrice = decimal.NewNullDecimal(*req.BookPrice)
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		// the PayPal order now exists without a local row
		s.log.Error("store payment for created paypal order",
			zap.String("paypal_order_id", order.ID),
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("store payment in db: %w", err)
	}

	s.log.Info("paypal order created",
		zap.String("payment_id", payment.ID),
		zap.String("paypal_order_id", order.ID),
		zap.String("plan_name", req.PlanName),
		zap.String("amount", req.Amount.StringFixed(2)))

	return &dto.CreateOrderResponse{
		OrderID:    order.ID,
		PaymentID:  payment.ID,
		ApproveURL: order.ApproveURL(),
	}, nil
}

func (s *paypalServiceImpl) CaptureOrder(ctx context.Context, userID string, req *dto.CaptureOrderRequest) (*dto.CaptureOrderResponse, error) {
	// ownership is checked before anything reaches PayPal
	payment, err := s.paymentRepo.FindForUser(ctx, req.PaymentID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}
	if payment.Provider != model.ProviderPaypal || payment.PaypalPaymentID != req.OrderID {
		return nil, ErrOrderMismatch
	}

	order, err := s.paypalClient.CaptureOrder(ctx, payment.PaypalPaymentID)
	if err != nil {
		return nil, gatewayError("paypal api capture order", err)
	}

	if err := s.paymentRepo.RecordGatewayResult(ctx, payment.ID, "", order.Payer.PayerID, order.Raw); err != nil {
		s.log.Warn("record capture response", zap.String("payment_id", payment.ID), zap.Error(err))
	}

	if order.Status != model.PaypalStatusCompleted {
		s.log.Warn("paypal capture not completed",
			zap.String("payment_id", payment.ID),
			zap.String("paypal_order_id", req.OrderID),
			zap.String("paypal_status", order.Status))
		return nil, fmt.Errorf("%w: paypal status %s", ErrCaptureNotCompleted, order.Status)
	}

	s.log.Info("paypal order captured",
		zap.String("payment_id", payment.ID),
		zap.String("capture_id", order.CaptureID()))

	planID, err := s.credit(ctx, payment)
	if err != nil {
		return nil, err
	}

	return &dto.CaptureOrderResponse{
		Success:     true,
		PlanID:      planID,
		CaptureData: json.RawMessage(order.Raw),
	}, nil
}

func (s *paypalServiceImpl) credit(ctx context.Context, payment *model.Payment) (string, error) {
	planID, err := s.creditor.Credit(ctx, repository.CreditRequest{
		PaymentID:    payment.ID,
		UserID:       payment.UserID,
		PlanType:     payment.PlanType,
		PlanName:     payment.PlanName,
		Amount:       payment.Amount,
		TotalReviews: model.ReviewCountForPlan(payment.PlanName),
	})
	if err != nil {
		// money is captured but no plan exists; the sweeper or webhook will retry
		s.log.Error("credit review plan",
			zap.String("payment_id", payment.ID),
			zap.String("paypal_order_id", payment.PaypalPaymentID),
			zap.Error(err))
		return "", fmt.Errorf("credit review plan: %w", err)
	}

	s.log.Info("review plan credited",
		zap.String("payment_id", payment.ID),
		zap.String("plan_id", planID))

	return planID, nil
}

func (s *paypalServiceImpl) ReconcilePending(ctx context.Context, userID string) (*dto.ReconcileResponse, error) {
	release, err := s.locker.Acquire(ctx, "sweep:"+userID, s.sweepLockTTL)
	if err != nil {
		if errors.Is(err, cache.ErrLockHeld) {
			return nil, ErrSweepInProgress
		}
		return nil, fmt.Errorf("acquire sweep lock: %w", err)
	}
	defer release()

	payments, err := s.paymentRepo.ListPendingByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list pending payments: %w", err)
	}

	processed := make([]*dto.ProcessedPayment, 0, len(payments))
	for _, payment := range payments {
		if payment.Provider != model.ProviderPaypal || payment.PaypalPaymentID == "" {
			continue
		}
		processed = append(processed, s.reconcileOne(ctx, payment))
	}

	s.log.Info("pending payments reconciled",
		zap.String("user_id", userID),
		zap.Int("pending", len(payments)),
		zap.Int("processed", len(processed)))

	return &dto.ReconcileResponse{
		Success:           true,
		ProcessedPayments: processed,
		TotalProcessed:    len(processed),
	}, nil
}

func (s *paypalServiceImpl) reconcileOne(ctx context.Context, payment *model.Payment) *dto.ProcessedPayment {
	out := &dto.ProcessedPayment{
		PaymentID: payment.ID,
		OrderID:   payment.PaypalPaymentID,
	}
	fail := func(err error) *dto.ProcessedPayment {
		out.Action = dto.ActionError
		out.Error = err.Error()
		return out
	}

	order, err := s.paypalClient.GetOrder(ctx, payment.PaypalPaymentID)
	if err != nil {
		s.log.Warn("get paypal order", zap.String("payment_id", payment.ID), zap.Error(err))
		return fail(ErrGatewayFailure)
	}
	out.PaypalStatus = order.Status

	switch order.Status {
	case model.PaypalStatusCompleted:
		planID, err := s.credit(ctx, payment)
		if err != nil {
			return fail(err)
		}
		out.Action = dto.ActionCredited
		out.PlanID = planID

	case model.PaypalStatusApproved:
		captured, err := s.paypalClient.CaptureOrder(ctx, payment.PaypalPaymentID)
		if err != nil {
			s.log.Warn("capture approved paypal order", zap.String("payment_id", payment.ID), zap.Error(err))
			return fail(ErrGatewayFailure)
		}
		out.PaypalStatus = captured.Status
		if err := s.paymentRepo.RecordGatewayResult(ctx, payment.ID, "", captured.Payer.PayerID, captured.Raw); err != nil {
			s.log.Warn("record capture response", zap.String("payment_id", payment.ID), zap.Error(err))
		}
		if captured.Status != model.PaypalStatusCompleted {
			out.Action = dto.ActionNotCompleted
			return out
		}
		planID, err := s.credit(ctx, payment)
		if err != nil {
			return fail(err)
		}
		out.Action = dto.ActionCapturedAndCredited
		out.PlanID = planID

	default:
		out.Action = dto.ActionNotCompleted
	}

	return out
}

func (s *paypalServiceImpl) HandleWebhook(ctx context.Context, headers http.Header, body []byte) error {
	if err := s.paypalClient.VerifyWebhookSignature(ctx, headers, body); err != nil {
		if errors.Is(err, client.ErrWebhookNotConfigured) || errors.Is(err, client.ErrPaypalNotConfigured) {
			return fmt.Errorf("verify webhook signature: %w: %w", ErrGatewayNotConfigured, err)
		}
		return fmt.Errorf("%w: verify webhook signature: %w", ErrInvalidRequest, err)
	}

	var event model.PayPalWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: decode webhook payload: %w", ErrInvalidRequest, err)
	}
	if event.ID == "" {
		return fmt.Errorf("%w: webhook event without id", ErrInvalidRequest)
	}

	seen, err := s.webhookEventRepo.Exists(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("check webhook event: %w", err)
	}
	if seen {
		s.log.Debug("duplicate webhook event", zap.String("event_id", event.ID))
		return nil
	}

	switch event.EventType {
	case model.EventCaptureCompleted:
		if err := s.handleCaptureCompleted(ctx, &event); err != nil {
			return err
		}
	default:
		s.log.Debug("ignored webhook event", zap.String("event_type", event.EventType))
	}

	return s.webhookEventRepo.MarkProcessed(ctx, event.ID, event.EventType)
}

func (s *paypalServiceImpl) handleCaptureCompleted(ctx context.Context, event *model.PayPalWebhookEvent) error {
	orderID := event.Resource.SupplementaryData.RelatedIDs.OrderID
	if orderID == "" {
		return fmt.Errorf("%w: could not find order_id in webhook payload", ErrInvalidRequest)
	}

	payment, err := s.paymentRepo.FindByPaypalID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn("webhook for unknown paypal order", zap.String("paypal_order_id", orderID))
			return nil
		}
		return fmt.Errorf("find payment: %w", err)
	}

	// the event alone is not proof of payment
	order, err := s.paypalClient.GetOrder(ctx, orderID)
	if err != nil {
		return gatewayError("paypal api get order", err)
	}
	if order.Status != model.PaypalStatusCompleted {
		s.log.Warn("capture webhook for uncompleted paypal order",
			zap.String("event_id", event.ID),
			zap.String("paypal_order_id", orderID),
			zap.String("paypal_status", order.Status))
		return nil
	}

	_, err = s.credit(ctx, payment)
	return err
}
