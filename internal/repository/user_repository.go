package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"studybuddy/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by email failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by id failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) Count() (int64, error) {
	var total int64
	if err := r.db.Model(&model.User{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count users failed: %w", err)
	}
	return total, nil
}

func (r *UserRepository) UpdateLastLogin(id uint, at time.Time) error {
	if err := r.db.Model(&model.User{}).Where("id = ?", id).
		Update("last_login_at", at).Error; err != nil {
		return fmt.Errorf("update last login failed: %w", err)
	}
	return nil
}

// ResetQuota writes the daily allotment and reset date in one update.
// The later decrement is a separate write; the two are not atomic.
func (r *UserRepository) ResetQuota(id uint, quota int, date string) error {
	if err := r.db.Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"daily_quota":      quota,
		"last_quota_reset": date,
	}).Error; err != nil {
		return fmt.Errorf("reset quota failed: %w", err)
	}
	return nil
}

func (r *UserRepository) DecrementQuota(id uint) error {
	if err := r.db.Model(&model.User{}).Where("id = ?", id).
		Update("daily_quota", gorm.Expr("daily_quota - 1")).Error; err != nil {
		return fmt.Errorf("decrement quota failed: %w", err)
	}
	return nil
}

func (r *UserRepository) SetPreferredPayment(id uint, method string) error {
	if err := r.db.Model(&model.User{}).Where("id = ?", id).
		Update("preferred_payment", method).Error; err != nil {
		return fmt.Errorf("set preferred payment failed: %w", err)
	}
	return nil
}

// PromoteToPro flips the plan flag; the second return reports whether a
// row was actually updated.
func (r *UserRepository) PromoteToPro(id uint) (bool, error) {
	result := r.db.Model(&model.User{}).Where("id = ?", id).Update("plan", model.PlanPro)
	if result.Error != nil {
		return false, fmt.Errorf("promote user failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
