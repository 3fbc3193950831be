package cache

import (
	"context"
	"fmt"
	"time"

	"SafeHer/storage/redis"
)

const (
	messageProcessedPrefix = "message:processed"

	// ProcessingTTL 消息处理中的占位时长，超过视为处理失败可重试
	ProcessingTTL = 10 * time.Minute
	// ProcessedTTL 消息处理完成标记保留时长
	ProcessedTTL = 48 * time.Hour
)

// TryMarkMessageProcessing 尝试原子性地标记消息正在处理（SETNX）
// 返回 false 表示该消息已被其他消费者处理或处理中
func TryMarkMessageProcessing(ctx context.Context, messageID string) (bool, error) {
	key := redis.Key(messageProcessedPrefix, messageID)
	ok, err := redis.Client().SetNX(ctx, key, "processing", ProcessingTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message processing: %w", err)
	}
	return ok, nil
}

// MarkMessageProcessed 标记消息已处理，延长 TTL
func MarkMessageProcessed(ctx context.Context, messageID string) error {
	key := redis.Key(messageProcessedPrefix, messageID)
	if err := redis.Client().Set(ctx, key, "processed", ProcessedTTL).Err(); err != nil {
		return fmt.Errorf("failed to mark message processed: %w", err)
	}
	return nil
}

// UnmarkMessageProcessing 处理失败时清除占位，让消息可被重新消费
func UnmarkMessageProcessing(ctx context.Context, messageID string) error {
	key := redis.Key(messageProcessedPrefix, messageID)
	if err := redis.Client().Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to unmark message processing: %w", err)
	}
	return nil
}
