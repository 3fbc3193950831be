package cache

import (
	"context"
	"fmt"
	"time"

	"SafeHer/storage/redis"
)

const (
	// 升级去重标记：同一行程同一截止周期只升级一次
	// 客户端监控与服务端兜底扫描共用，谁先到谁生效
	escalationMarkPrefix = "journey:escalation"

	escalationTTL = 24 * time.Hour
)

// TryMarkEscalation 原子抢占某行程某截止周期的升级权（SETNX）
// 返回 true 表示抢占成功，调用方可以升级；false 表示已有人升级过
func TryMarkEscalation(ctx context.Context, journeyID int64, deadline time.Time) (bool, error) {
	key := escalationKey(journeyID, deadline)
	ok, err := redis.Client().SetNX(ctx, key, "1", escalationTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark escalation: %w", err)
	}
	return ok, nil
}

// IsEscalationMarked 检查该截止周期是否已升级
func IsEscalationMarked(ctx context.Context, journeyID int64, deadline time.Time) (bool, error) {
	key := escalationKey(journeyID, deadline)
	result, err := redis.Client().Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check escalation mark: %w", err)
	}
	return result > 0, nil
}

// UnmarkEscalation 清除升级标记（行程打卡或结束时调用）
func UnmarkEscalation(ctx context.Context, journeyID int64, deadline time.Time) error {
	key := escalationKey(journeyID, deadline)
	if err := redis.Client().Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to unmark escalation: %w", err)
	}
	return nil
}

func escalationKey(journeyID int64, deadline time.Time) string {
	return redis.Key(escalationMarkPrefix,
		fmt.Sprintf("%d", journeyID),
		fmt.Sprintf("%d", deadline.Unix()),
	)
}
