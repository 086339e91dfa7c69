package service

import (
	"context"
	"fmt"
	"reviewpromax/internal/client"
	"reviewpromax/internal/model"
	"reviewpromax/internal/repository"

	"go.uber.org/zap"
)

type UserService interface {
	// DeleteUser checks the caller's admin role before touching any data.
	DeleteUser(ctx context.Context, callerID, userID string) error
}

type userServiceImpl struct {
	userRepo  repository.UserRepository
	authAdmin client.AuthAdminClient
	log       *zap.Logger
}

func NewUserService(
	userRepo repository.UserRepository,
	authAdmin client.AuthAdminClient,
	log *zap.Logger,
) UserService {
	return &userServiceImpl{
		userRepo:  userRepo,
		authAdmin: authAdmin,
		log:       log,
	}
}

func (s *userServiceImpl) DeleteUser(ctx context.Context, callerID, userID string) error {
	isAdmin, err := s.userRepo.HasRole(ctx, callerID, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("check admin role: %w", err)
	}
	if !isAdmin {
		return ErrForbidden
	}
	if userID == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidRequest)
	}
	if userID == callerID {
		return fmt.Errorf("%w: admins cannot delete themselves", ErrInvalidRequest)
	}

	if err := s.userRepo.DeleteCascade(ctx, userID); err != nil {
		return fmt.Errorf("delete user data: %w", err)
	}

	if err := s.authAdmin.DeleteUser(ctx, userID); err != nil {
		s.log.Error("delete auth identity after data cascade",
			zap.String("user_id", userID), zap.Error(err))
		return fmt.Errorf("delete auth user: %w", err)
	}

	s.log.Info("user deleted", zap.String("user_id", userID), zap.String("deleted_by", callerID))
	return nil
}
