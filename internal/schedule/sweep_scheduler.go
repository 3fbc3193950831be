package schedule

// 兜底扫描调度器：定期扫描已过硬截止仍未打卡的行程，补发升级消息
// 覆盖延迟消息丢失和 worker 长时间离线两种情况

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"SafeHer/internal/model"
	"SafeHer/internal/monitor"
	"SafeHer/internal/queue"
	"SafeHer/internal/repository"
	"SafeHer/pkg/logger"
	"SafeHer/storage/database"
)

const sweepBatchSize = 200

var (
	sweepSchedulerOnce sync.Once
	sweepSchedulerInst *SweepScheduler
)

// SweepScheduler 兜底扫描调度器
type SweepScheduler struct {
	logger        *zap.Logger
	journeys      *repository.JourneyRepo
	jobRunning    bool
	jobMu         sync.Mutex
	lastSweepTime time.Time
}

// GetSweepScheduler 获取兜底扫描调度器单例
func GetSweepScheduler() *SweepScheduler {
	sweepSchedulerOnce.Do(func() {
		sweepSchedulerInst = &SweepScheduler{
			logger:   logger.Logger,
			journeys: repository.NewJourneyRepo(database.DB()),
		}
	})
	return sweepSchedulerInst
}

// SweepOverdueJourneys 扫描已超时行程并补发升级消息（定时任务调用）
// 升级动作本身由 worker 消费消息完成，这里只负责发现
func (s *SweepScheduler) SweepOverdueJourneys(ctx context.Context) error {
	s.jobMu.Lock()
	if s.jobRunning {
		s.jobMu.Unlock()
		s.logger.Info("Sweep job already running, skipping")
		return nil
	}
	s.jobRunning = true
	s.jobMu.Unlock()

	defer func() {
		s.jobMu.Lock()
		s.jobRunning = false
		s.jobMu.Unlock()
	}()

	startTime := time.Now()
	s.lastSweepTime = startTime

	// 硬截止 = next_check_in + MissedDeadline
	cutoff := startTime.Add(-monitor.MissedDeadline)

	journeys, err := s.journeys.ListOverdue(ctx, cutoff, sweepBatchSize)
	if err != nil {
		s.logger.Error("Failed to query overdue journeys", zap.Error(err))
		return fmt.Errorf("failed to query overdue journeys: %w", err)
	}

	if len(journeys) == 0 {
		s.logger.Info("No overdue journeys found")
		return nil
	}

	s.logger.Warn("Found overdue journeys",
		zap.Int("journey_count", len(journeys)),
	)

	failed := 0
	for i := range journeys {
		j := &journeys[i]
		// 延迟 0，worker 立即处理；是否真正升级由升级标记决定
		msg := model.JourneySweepMessage{
			JourneyID:    j.ID,
			UserID:       j.UserID,
			DelaySeconds: 0,
		}
		if err := queue.PublishJourneySweep(msg); err != nil {
			failed++
			s.logger.Error("Failed to publish sweep message",
				zap.Int64("journey_id", j.ID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Overdue journey sweep completed",
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("journey_count", len(journeys)),
		zap.Int("failed_count", failed),
	)

	if failed > 0 {
		return fmt.Errorf("sweep completed with %d publish failures", failed)
	}
	return nil
}

// Run 按固定间隔执行扫描直到 ctx 取消
func (s *SweepScheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Sweep scheduler started",
		zap.Duration("interval", interval),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweep scheduler stopped")
			return
		case <-ticker.C:
			if err := s.SweepOverdueJourneys(ctx); err != nil {
				s.logger.Error("Sweep run failed", zap.Error(err))
			}
		}
	}
}
