package queue

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"SafeHer/internal/model"
	"SafeHer/pkg/logger"
	"SafeHer/pkg/snowflake"
	"SafeHer/storage/mq"
)

// PublishAlertDispatch 发布告警分发消息，worker 消费后向联系人发送短信
func PublishAlertDispatch(msg model.AlertDispatchMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextID(snowflake.GeneratorTypeMessage)
		if err != nil {
			logger.Logger.Error("Failed to generate message ID",
				zap.Int64("alert_id", msg.AlertID),
				zap.Error(err),
			)
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = fmt.Sprintf("alert_dispatch_%d", id)
	}
	if msg.ScheduledAt == "" {
		msg.ScheduledAt = time.Now().Format(time.RFC3339)
	}

	err := mq.PublishMessage(
		mq.DirectExchange,
		mq.AlertDispatchRoutingKey,
		msg,
	)
	if err != nil {
		logger.Logger.Error("Failed to publish alert dispatch message",
			zap.String("message_id", msg.MessageID),
			zap.Int64("alert_id", msg.AlertID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published alert dispatch message",
		zap.String("message_id", msg.MessageID),
		zap.Int64("alert_id", msg.AlertID),
		zap.String("alert_type", msg.AlertType),
	)

	return nil
}

// PublishJourneySweep 发布行程兜底扫描消息（延迟消息）
// 延迟超过 24 小时受 RabbitMQ 延迟消息插件限制，调用方应改走定时扫描
func PublishJourneySweep(msg model.JourneySweepMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextID(snowflake.GeneratorTypeMessage)
		if err != nil {
			logger.Logger.Error("Failed to generate message ID",
				zap.Int64("journey_id", msg.JourneyID),
				zap.Error(err),
			)
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = fmt.Sprintf("journey_sweep_%d", id)
	}
	if msg.ScheduledAt == "" {
		msg.ScheduledAt = time.Now().Format(time.RFC3339)
	}

	delay := time.Duration(msg.DelaySeconds) * time.Second
	if delay > 24*time.Hour {
		return fmt.Errorf("delay %v exceeds 24 hours limit, use scheduled task instead", delay)
	}

	err := mq.PublishDelayedMessage(
		mq.DelayedExchange,
		mq.JourneySweepRoutingKey,
		delay,
		msg,
	)
	if err != nil {
		logger.Logger.Error("Failed to publish journey sweep message",
			zap.String("message_id", msg.MessageID),
			zap.Int64("journey_id", msg.JourneyID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published journey sweep message",
		zap.String("message_id", msg.MessageID),
		zap.Int64("journey_id", msg.JourneyID),
		zap.Duration("delay", delay),
	)

	return nil
}
