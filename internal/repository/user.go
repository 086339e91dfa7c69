package repository

import (
	"context"
	"errors"
	"fmt"
	"reviewpromax/internal/model"
	"time"

	"gorm.io/gorm"
)

type UserRepository interface {
	HasRole(ctx context.Context, userID string, role model.Role) (bool, error)
	DeleteCascade(ctx context.Context, userID string) error
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepoImpl{
		db: db,
	}
}

func (r *userRepoImpl) HasRole(ctx context.Context, userID string, role model.Role) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.UserRole{}).
		Where("user_id = ? AND role = ?", userID, role).
		Count(&count).Error

	return count > 0, err
}

// DeleteCascade removes the user's rows and bans the matching customer lead.
// Payments and review plans are kept for accounting.
func (r *userRepoImpl) DeleteCascade(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile model.Profile
		err := tx.Where("id = ?", userID).First(&profile).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("load profile: %w", err)
		}

		if err := tx.Where("user_id = ?", userID).Delete(&model.Book{}).Error; err != nil {
			return fmt.Errorf("delete books: %w", err)
		}
		if err := tx.Where("id = ?", userID).Delete(&model.Profile{}).Error; err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.UserRole{}).Error; err != nil {
			return fmt.Errorf("delete roles: %w", err)
		}

		if profile.Email == "" {
			return nil
		}
		err = tx.Model(&model.CustomerLead{}).
			Where("email = ?", profile.Email).
			Updates(map[string]interface{}{
				"status":     model.LeadStatusBanned,
				"updated_at": time.Now(),
			}).Error
		if err != nil {
			return fmt.Errorf("ban customer lead: %w", err)
		}

		return nil
	})
}
