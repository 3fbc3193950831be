package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"SafeHer/internal/model"
)

// AlertRepo 告警仓储
type AlertRepo struct {
	db *gorm.DB
}

func NewAlertRepo(db *gorm.DB) *AlertRepo {
	return &AlertRepo{db: db}
}

func (r *AlertRepo) Create(ctx context.Context, alert *model.EmergencyAlert) error {
	if err := r.db.WithContext(ctx).Create(alert).Error; err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

func (r *AlertRepo) GetByID(ctx context.Context, alertID int64) (*model.EmergencyAlert, error) {
	var alert model.EmergencyAlert
	err := r.db.WithContext(ctx).Where("id = ?", alertID).First(&alert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query alert: %w", err)
	}
	return &alert, nil
}

// GetByClientRef 按客户端幂等令牌查询
func (r *AlertRepo) GetByClientRef(ctx context.Context, clientRef string) (*model.EmergencyAlert, error) {
	var alert model.EmergencyAlert
	err := r.db.WithContext(ctx).Where("client_ref = ?", clientRef).First(&alert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query alert by client ref: %w", err)
	}
	return &alert, nil
}

func (r *AlertRepo) Update(ctx context.Context, alertID int64, fields map[string]interface{}) error {
	if err := r.db.WithContext(ctx).
		Model(&model.EmergencyAlert{}).
		Where("id = ?", alertID).
		Updates(fields).Error; err != nil {
		return fmt.Errorf("failed to update alert: %w", err)
	}
	return nil
}

// ListByUser 按状态过滤的告警列表，创建时间倒序
func (r *AlertRepo) ListByUser(ctx context.Context, userID int64, status model.AlertStatus, limit int) ([]model.EmergencyAlert, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var alerts []model.EmergencyAlert
	if err := query.Order("created_at DESC").Limit(limit).Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}
