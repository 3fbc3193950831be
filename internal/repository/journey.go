package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"SafeHer/internal/model"
)

// JourneyRepo 行程仓储
type JourneyRepo struct {
	db *gorm.DB
}

func NewJourneyRepo(db *gorm.DB) *JourneyRepo {
	return &JourneyRepo{db: db}
}

func (r *JourneyRepo) Create(ctx context.Context, journey *model.Journey) error {
	if err := r.db.WithContext(ctx).Create(journey).Error; err != nil {
		return fmt.Errorf("failed to create journey: %w", err)
	}
	return nil
}

// GetActiveByUser 返回用户当前可监控的行程（active 或 alert），按创建时间取最新一条
func (r *JourneyRepo) GetActiveByUser(ctx context.Context, userID int64) (*model.Journey, error) {
	var journey model.Journey
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, []model.JourneyStatus{
			model.JourneyStatusActive,
			model.JourneyStatusAlert,
		}).
		Order("created_at DESC").
		First(&journey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query active journey: %w", err)
	}
	return &journey, nil
}

func (r *JourneyRepo) GetByID(ctx context.Context, journeyID int64) (*model.Journey, error) {
	var journey model.Journey
	err := r.db.WithContext(ctx).Where("id = ?", journeyID).First(&journey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query journey: %w", err)
	}
	return &journey, nil
}

// Update 部分字段更新
func (r *JourneyRepo) Update(ctx context.Context, journeyID int64, fields map[string]interface{}) error {
	if err := r.db.WithContext(ctx).
		Model(&model.Journey{}).
		Where("id = ?", journeyID).
		Updates(fields).Error; err != nil {
		return fmt.Errorf("failed to update journey: %w", err)
	}
	return nil
}

// ListByUser 按状态过滤的行程列表，创建时间倒序
func (r *JourneyRepo) ListByUser(ctx context.Context, userID int64, status model.JourneyStatus, limit int) ([]model.Journey, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var journeys []model.Journey
	if err := query.Order("created_at DESC").Limit(limit).Find(&journeys).Error; err != nil {
		return nil, fmt.Errorf("failed to list journeys: %w", err)
	}
	return journeys, nil
}

// ListOverdue 找出截止时间早于 before 的可监控行程，供兜底扫描升级
func (r *JourneyRepo) ListOverdue(ctx context.Context, before time.Time, limit int) ([]model.Journey, error) {
	if limit <= 0 {
		limit = 200
	}

	var journeys []model.Journey
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_check_in IS NOT NULL AND next_check_in < ?",
			model.JourneyStatusActive, before).
		Order("next_check_in ASC").
		Limit(limit).
		Find(&journeys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue journeys: %w", err)
	}
	return journeys, nil
}
