package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

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

// 行程开始后除了客户端监控，还投放一条延迟兜底消息，
// 客户端掉线时由 worker 完成升级

// sweepSlack 兜底扫描在硬截止之后再等待的余量
const sweepSlack = 60 * time.Second

type JourneyService struct {
	journeys *repository.JourneyRepo
	manager  *monitor.Manager
}

var (
	journeyService *JourneyService
	journeyOnce    sync.Once
)

func Journey() *JourneyService {
	journeyOnce.Do(func() {
		repo := repository.NewJourneyRepo(database.DB())
		journeyService = &JourneyService{
			journeys: repo,
			manager: monitor.NewManager(
				&journeyStore{repo: repo},
				Alert(),
				logger.Logger,
			),
		}
	})
	return journeyService
}

// journeyStore 行程仓储到监控器存储契约的适配
type journeyStore struct {
	repo *repository.JourneyRepo
}

func (s *journeyStore) GetActiveJourney(ctx context.Context, userID int64) (*model.Journey, error) {
	return s.repo.GetActiveByUser(ctx, userID)
}

func (s *journeyStore) UpdateJourney(ctx context.Context, journeyID int64, fields map[string]interface{}) error {
	return s.repo.Update(ctx, journeyID, fields)
}

// Manager 行程监控管理器
func (s *JourneyService) Manager() *monitor.Manager {
	return s.manager
}

// StartJourney 开始行程，同一用户同时只允许一条可监控行程
func (s *JourneyService) StartJourney(ctx context.Context, userID int64, req dto.StartJourneyRequest) (*dto.JourneyItem, error) {
	if req.Destination == "" {
		return nil, pkgerrors.DestinationRequired
	}
	if req.IntervalMinutes <= 0 {
		return nil, pkgerrors.InvalidInterval
	}

	existing, err := s.journeys.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, pkgerrors.JourneyAlreadyActive
	}

	id, err := snowflake.NextID(snowflake.GeneratorTypeJourney)
	if err != nil {
		return nil, fmt.Errorf("failed to generate journey ID: %w", err)
	}

	now := time.Now()
	nextCheckIn := now.Add(time.Duration(req.IntervalMinutes) * time.Minute)
	journey := &model.Journey{
		BaseModel:              model.BaseModel{ID: id},
		UserID:                 userID,
		Destination:            req.Destination,
		StartTime:              now,
		ExpectedArrival:        req.ExpectedArrival,
		CheckInIntervalMinutes: req.IntervalMinutes,
		NextCheckIn:            &nextCheckIn,
		Status:                 model.JourneyStatusActive,
	}

	if err := s.journeys.Create(ctx, journey); err != nil {
		return nil, err
	}

	s.scheduleSweep(journey)

	// 服务端监控兜底，客户端掉线时照样升级
	m := s.manager.Ensure(context.Background(), userID)
	m.Attach(journey)

	if mts := metrics.GetMetrics(); mts != nil {
		mts.RecordJourneyStarted(ctx)
		mts.AddActiveMonitor(ctx)
	}

	logger.Logger.Info("Journey started",
		zap.Int64("journey_id", journey.ID),
		zap.Int64("user_id", userID),
		zap.Int("interval_minutes", req.IntervalMinutes),
	)

	return journeyToItem(journey), nil
}

// GetActiveJourney 当前可监控行程，无则返回 nil
func (s *JourneyService) GetActiveJourney(ctx context.Context, userID int64) (*dto.JourneyItem, error) {
	journey, err := s.journeys.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if journey == nil {
		return nil, nil
	}
	return journeyToItem(journey), nil
}

// CheckIn 打卡，刷新截止时间并清除升级标记
func (s *JourneyService) CheckIn(ctx context.Context, userID int64, journeyID int64) (*dto.CheckInResponse, error) {
	journey, err := s.journeys.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if journey == nil || journey.ID != journeyID {
		return nil, pkgerrors.JourneyNotFound
	}

	oldDeadline := journey.CheckInDeadline()

	m := s.ensureMonitor(ctx, userID, journey)
	if err := m.CheckIn(ctx); err != nil {
		return nil, err
	}

	// 旧截止周期的升级标记作废
	if err := cache.UnmarkEscalation(ctx, journey.ID, oldDeadline); err != nil {
		logger.Logger.Warn("Failed to unmark escalation",
			zap.Int64("journey_id", journey.ID),
			zap.Error(err),
		)
	}

	refreshed, err := s.journeys.GetByID(ctx, journey.ID)
	if err != nil {
		return nil, err
	}
	if refreshed == nil {
		return nil, pkgerrors.JourneyNotFound
	}

	s.scheduleSweep(refreshed)

	if mts := metrics.GetMetrics(); mts != nil {
		mts.RecordCheckIn(ctx, "api")
	}

	resp := &dto.CheckInResponse{Status: string(refreshed.Status)}
	if refreshed.LastCheckIn != nil {
		resp.LastCheckIn = *refreshed.LastCheckIn
	}
	if refreshed.NextCheckIn != nil {
		resp.NextCheckIn = *refreshed.NextCheckIn
	}
	return resp, nil
}

// CompleteJourney 结束行程，幂等
func (s *JourneyService) CompleteJourney(ctx context.Context, userID int64, journeyID int64) error {
	journey, err := s.journeys.GetByID(ctx, journeyID)
	if err != nil {
		return err
	}
	if journey == nil || journey.UserID != userID {
		return pkgerrors.JourneyNotFound
	}
	if journey.Status == model.JourneyStatusCompleted {
		return nil
	}

	m := s.ensureMonitor(ctx, userID, journey)
	if err := m.End(ctx); err != nil {
		return err
	}
	s.manager.Remove(userID)

	if mts := metrics.GetMetrics(); mts != nil {
		mts.RemoveActiveMonitor(ctx)
	}

	logger.Logger.Info("Journey completed",
		zap.Int64("journey_id", journeyID),
		zap.Int64("user_id", userID),
	)

	return nil
}

// ListJourneys 历史行程列表
func (s *JourneyService) ListJourneys(ctx context.Context, userID int64, query dto.JourneyListQuery) ([]*dto.JourneyItem, error) {
	journeys, err := s.journeys.ListByUser(ctx, userID, model.JourneyStatus(query.Status), query.Limit)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.JourneyItem, 0, len(journeys))
	for i := range journeys {
		items = append(items, journeyToItem(&journeys[i]))
	}
	return items, nil
}

// MonitorSnapshot 监控快照，驱动客户端打卡提示
func (s *JourneyService) MonitorSnapshot(ctx context.Context, userID int64) (*dto.MonitorSnapshot, error) {
	journey, err := s.journeys.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if journey == nil {
		return nil, pkgerrors.JourneyNotFound
	}

	m := s.ensureMonitor(ctx, userID, journey)
	snap := m.Snapshot()

	return &dto.MonitorSnapshot{
		JourneyID:        strconv.FormatInt(snap.JourneyID, 10),
		State:            string(snap.State),
		RemainingSeconds: snap.RemainingSeconds,
		ShowPrompt:       snap.ShowPrompt,
		MissedCheckIns:   snap.MissedCheckIns,
	}, nil
}

// ensureMonitor 返回用户监控器，服务重启后按需重建
func (s *JourneyService) ensureMonitor(ctx context.Context, userID int64, journey *model.Journey) *monitor.Monitor {
	m := s.manager.Get(userID)
	if m == nil {
		m = s.manager.Ensure(context.Background(), userID)
		m.Attach(journey)
	}
	return m
}

// scheduleSweep 投放延迟兜底消息，硬截止加余量后触发
func (s *JourneyService) scheduleSweep(journey *model.Journey) {
	deadline := journey.CheckInDeadline().Add(monitor.MissedDeadline + sweepSlack)
	delay := time.Until(deadline)
	if delay < 0 {
		delay = 0
	}

	msg := model.JourneySweepMessage{
		JourneyID:    journey.ID,
		UserID:       journey.UserID,
		DelaySeconds: int(delay / time.Second),
	}
	if err := queue.PublishJourneySweep(msg); err != nil {
		logger.Logger.Warn("Failed to schedule journey sweep",
			zap.Int64("journey_id", journey.ID),
			zap.Error(err),
		)
	}
}

func journeyToItem(j *model.Journey) *dto.JourneyItem {
	return &dto.JourneyItem{
		ID:              strconv.FormatInt(j.ID, 10),
		Destination:     j.Destination,
		Status:          string(j.Status),
		StartTime:       j.StartTime,
		CreatedAt:       j.CreatedAt,
		ExpectedArrival: j.ExpectedArrival,
		LastCheckIn:     j.LastCheckIn,
		NextCheckIn:     j.NextCheckIn,
		IntervalMinutes: j.CheckInIntervalMinutes,
	}
}
