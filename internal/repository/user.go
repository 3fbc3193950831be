package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"SafeHer/internal/model"
)

// UserRepo 用户仓储
type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// GetByPhoneHash 按手机号哈希查询，登录与注册查重用
func (r *UserRepo) GetByPhoneHash(ctx context.Context, phoneHash string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("phone_hash = ?", phoneHash).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user by phone hash: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) Update(ctx context.Context, userID int64, fields map[string]interface{}) error {
	if err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Updates(fields).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// UpdateContacts 整体替换联系人 JSONB 列
func (r *UserRepo) UpdateContacts(ctx context.Context, userID int64, contacts model.TrustedContacts) error {
	if err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Update("trusted_contacts", contacts).Error; err != nil {
		return fmt.Errorf("failed to update trusted contacts: %w", err)
	}
	return nil
}
