package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"SafeHer/internal/cache"
	"SafeHer/internal/model"
	"SafeHer/pkg/errors"
	"SafeHer/pkg/logger"
	"SafeHer/storage/mq"
)

// AlertNotifier 告警通知服务接口，worker 启动时注入
type AlertNotifier interface {
	NotifyContacts(ctx context.Context, alertID, userID int64, alertType string) error
}

// JourneyEscalator 行程升级服务接口，worker 启动时注入
type JourneyEscalator interface {
	EscalateIfOverdue(ctx context.Context, journeyID int64) error
}

var (
	alertNotifier    AlertNotifier
	journeyEscalator JourneyEscalator
)

// SetAlertNotifier 设置告警通知服务（在 worker 启动时调用）
func SetAlertNotifier(n AlertNotifier) {
	alertNotifier = n
}

// SetJourneyEscalator 设置行程升级服务（在 worker 启动时调用）
func SetJourneyEscalator(e JourneyEscalator) {
	journeyEscalator = e
}

// StartAlertDispatchConsumer 启动告警分发消费者
func StartAlertDispatchConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.AlertDispatchMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal alert dispatch message: %w", err)
		}

		// 幂等性检查，SETNX 原子占位
		processed, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
			// 检查失败时继续处理，宁可重复不可丢失
		} else if !processed {
			return &errors.SkipMessageError{Reason: fmt.Sprintf("Message %s already processed", msg.MessageID)}
		}

		logger.Logger.Info("Processing alert dispatch",
			zap.String("message_id", msg.MessageID),
			zap.Int64("alert_id", msg.AlertID),
			zap.String("alert_type", msg.AlertType),
		)

		if alertNotifier == nil {
			return fmt.Errorf("alert notifier not configured")
		}

		if err := alertNotifier.NotifyContacts(ctx, msg.AlertID, msg.UserID, msg.AlertType); err != nil {
			// 处理失败，取消占位允许重试
			if unmarkErr := cache.UnmarkMessageProcessing(ctx, msg.MessageID); unmarkErr != nil {
				logger.Logger.Warn("Failed to unmark message processing",
					zap.String("message_id", msg.MessageID),
					zap.Error(unmarkErr),
				)
			}
			return fmt.Errorf("failed to notify contacts: %w", err)
		}

		if err := cache.MarkMessageProcessed(ctx, msg.MessageID); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}

		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.AlertDispatchQueue,
		ConsumerTag:   "alert_dispatch_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// StartJourneySweepConsumer 启动行程兜底扫描消费者
func StartJourneySweepConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.JourneySweepMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal journey sweep message: %w", err)
		}

		processed, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		} else if !processed {
			return &errors.SkipMessageError{Reason: fmt.Sprintf("Message %s already processed", msg.MessageID)}
		}

		if journeyEscalator == nil {
			return fmt.Errorf("journey escalator not configured")
		}

		if err := journeyEscalator.EscalateIfOverdue(ctx, msg.JourneyID); err != nil {
			if unmarkErr := cache.UnmarkMessageProcessing(ctx, msg.MessageID); unmarkErr != nil {
				logger.Logger.Warn("Failed to unmark message processing",
					zap.String("message_id", msg.MessageID),
					zap.Error(unmarkErr),
				)
			}
			return fmt.Errorf("failed to process journey sweep: %w", err)
		}

		if err := cache.MarkMessageProcessed(ctx, msg.MessageID); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}

		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.JourneySweepQueue,
		ConsumerTag:   "journey_sweep_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}
