package service

import (
	"context"
	"reviewpromax/internal/model"
	"reviewpromax/internal/repository"
)

type AccountService interface {
	ListPayments(ctx context.Context, userID string) ([]*model.Payment, error)
	ListPlans(ctx context.Context, userID string) ([]*model.ReviewPlan, error)
}

type accountServiceImpl struct {
	paymentRepo repository.PaymentRepository
	planRepo    repository.PlanRepository
}

func NewAccountService(
	paymentRepo repository.PaymentRepository,
	planRepo repository.PlanRepository,
) AccountService {
	return &accountServiceImpl{
		paymentRepo: paymentRepo,
		planRepo:    planRepo,
	}
}

func (s *accountServiceImpl) ListPayments(ctx context.Context, userID string) ([]*model.Payment, error) {
	return s.paymentRepo.ListByUser(ctx, userID)
}

func (s *accountServiceImpl) ListPlans(ctx context.Context, userID string) ([]*model.ReviewPlan, error) {
	return s.planRepo.ListByUser(ctx, userID)
}
