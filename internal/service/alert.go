package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"SafeHer/internal/cache"
	"SafeHer/internal/model"
	"SafeHer/internal/model/dto"
	"SafeHer/internal/monitor"
	"SafeHer/internal/queue"
	"SafeHer/internal/repository"
	pkgerrors "SafeHer/pkg/errors"
	"SafeHer/pkg/logger"
	"SafeHer/pkg/metrics"
	"SafeHer/pkg/snowflake"
	"SafeHer/storage/database"
)

// 告警只追加不改写，解除是独立的状态流转

type AlertService struct {
	alerts   *repository.AlertRepo
	journeys *repository.JourneyRepo
}

var (
	alertService *AlertService
	alertOnce    sync.Once
)

func Alert() *AlertService {
	alertOnce.Do(func() {
		db := database.DB()
		alertService = &AlertService{
			alerts:   repository.NewAlertRepo(db),
			journeys: repository.NewJourneyRepo(db),
		}
	})
	return alertService
}

// CreateAlert 落库并投放分发消息
// missed_checkin 告警按行程截止周期做 redis 去重，
// 客户端监控与服务端兜底谁先抢到标记谁生效
func (s *AlertService) CreateAlert(ctx context.Context, userID int64, journeyID *int64, alertType model.AlertType, lat, lng *float64) error {
	if alertType != model.AlertTypeSOS && alertType != model.AlertTypeMissedCheckIn {
		return pkgerrors.AlertTypeInvalid
	}

	if alertType == model.AlertTypeMissedCheckIn && journeyID != nil {
		journey, err := s.journeys.GetByID(ctx, *journeyID)
		if err != nil {
			return err
		}
		if journey != nil {
			ok, err := cache.TryMarkEscalation(ctx, journey.ID, journey.CheckInDeadline())
			if err != nil {
				logger.Logger.Warn("Failed to mark escalation, continuing",
					zap.Int64("journey_id", journey.ID),
					zap.Error(err),
				)
			} else if !ok {
				logger.Logger.Info("Escalation already handled for this deadline, skipping",
					zap.Int64("journey_id", journey.ID),
				)
				return nil
			}
		}
	}

	_, err := s.insertAndDispatch(ctx, userID, journeyID, alertType, lat, lng, uuid.NewString())
	return err
}

// TriggerSOS 用户主动求助，client_ref 保证重复提交幂等
func (s *AlertService) TriggerSOS(ctx context.Context, userID int64, req dto.TriggerSOSRequest) (*dto.AlertItem, error) {
	clientRef := req.ClientRef
	if clientRef == "" {
		clientRef = uuid.NewString()
	} else {
		existing, err := s.alerts.GetByClientRef(ctx, clientRef)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return alertToItem(existing), nil
		}
	}

	alert, err := s.insertAndDispatch(ctx, userID, nil, model.AlertTypeSOS, req.Latitude, req.Longitude, clientRef)
	if err != nil {
		return nil, err
	}

	if req.Source == "shake" {
		if mts := metrics.GetMetrics(); mts != nil {
			mts.RecordShakeTrigger(ctx)
		}
	}

	return alertToItem(alert), nil
}

// ResolveAlert 解除告警
func (s *AlertService) ResolveAlert(ctx context.Context, userID int64, alertID int64) (*dto.AlertItem, error) {
	alert, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert == nil || alert.UserID != userID {
		return nil, pkgerrors.AlertNotFound
	}
	if alert.Status == model.AlertStatusResolved {
		return nil, pkgerrors.AlertAlreadyResolved
	}

	now := time.Now()
	if err := s.alerts.Update(ctx, alertID, map[string]interface{}{
		"status":      model.AlertStatusResolved,
		"resolved_at": now,
	}); err != nil {
		return nil, err
	}

	alert.Status = model.AlertStatusResolved
	alert.ResolvedAt = &now
	return alertToItem(alert), nil
}

// ListAlerts 告警列表
func (s *AlertService) ListAlerts(ctx context.Context, userID int64, query dto.AlertListQuery) ([]*dto.AlertItem, error) {
	alerts, err := s.alerts.ListByUser(ctx, userID, model.AlertStatus(query.Status), query.Limit)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.AlertItem, 0, len(alerts))
	for i := range alerts {
		items = append(items, alertToItem(&alerts[i]))
	}
	return items, nil
}

// EscalateIfOverdue 兜底升级：行程超过硬截止仍未打卡时补发告警
// 由 worker 消费延迟消息触发，与客户端监控共用升级标记
func (s *AlertService) EscalateIfOverdue(ctx context.Context, journeyID int64) error {
	journey, err := s.journeys.GetByID(ctx, journeyID)
	if err != nil {
		return err
	}
	if journey == nil || !journey.IsMonitorable() {
		return nil
	}

	deadline := journey.CheckInDeadline()
	if time.Now().Before(deadline.Add(monitor.MissedDeadline)) {
		// 打卡把截止时间推后了，这条兜底消息已过时
		return nil
	}

	ok, err := cache.TryMarkEscalation(ctx, journey.ID, deadline)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := s.journeys.Update(ctx, journey.ID, map[string]interface{}{
		"status": model.JourneyStatusAlert,
	}); err != nil {
		return err
	}

	if _, err := s.insertAndDispatch(ctx, journey.UserID, &journey.ID, model.AlertTypeMissedCheckIn, nil, nil, uuid.NewString()); err != nil {
		return err
	}

	if mts := metrics.GetMetrics(); mts != nil {
		mts.RecordMissedCheckIn(ctx, "sweep")
	}

	logger.Logger.Warn("Journey escalated by sweep",
		zap.Int64("journey_id", journey.ID),
		zap.Int64("user_id", journey.UserID),
	)

	return nil
}

func (s *AlertService) insertAndDispatch(ctx context.Context, userID int64, journeyID *int64, alertType model.AlertType, lat, lng *float64, clientRef string) (*model.EmergencyAlert, error) {
	id, err := snowflake.NextID(snowflake.GeneratorTypeAlert)
	if err != nil {
		return nil, fmt.Errorf("failed to generate alert ID: %w", err)
	}

	alert := &model.EmergencyAlert{
		BaseModel: model.BaseModel{ID: id},
		UserID:    userID,
		JourneyID: journeyID,
		AlertType: alertType,
		Status:    model.AlertStatusActive,
		Latitude:  lat,
		Longitude: lng,
		ClientRef: clientRef,
	}

	if err := s.alerts.Create(ctx, alert); err != nil {
		return nil, err
	}

	if err := queue.PublishAlertDispatch(model.AlertDispatchMessage{
		AlertID:   alert.ID,
		UserID:    userID,
		AlertType: string(alertType),
	}); err != nil {
		// 分发失败不回滚告警记录，兜底扫描与人工都能看到
		logger.Logger.Error("Failed to publish alert dispatch",
			zap.Int64("alert_id", alert.ID),
			zap.Error(err),
		)
	}

	if mts := metrics.GetMetrics(); mts != nil {
		mts.RecordAlertEmitted(ctx, string(alertType))
	}

	logger.Logger.Warn("Emergency alert created",
		zap.Int64("alert_id", alert.ID),
		zap.Int64("user_id", userID),
		zap.String("alert_type", string(alertType)),
	)

	return alert, nil
}

func alertToItem(a *model.EmergencyAlert) *dto.AlertItem {
	item := &dto.AlertItem{
		ID:         strconv.FormatInt(a.ID, 10),
		AlertType:  string(a.AlertType),
		Status:     string(a.Status),
		Latitude:   a.Latitude,
		Longitude:  a.Longitude,
		CreatedAt:  a.CreatedAt,
		ResolvedAt: a.ResolvedAt,
	}
	if a.JourneyID != nil {
		item.JourneyID = strconv.FormatInt(*a.JourneyID, 10)
	}
	return item
}
