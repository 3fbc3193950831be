package model

// AlertDispatchMessage 告警分发消息，worker 消费后逐个联系人发送短信
type AlertDispatchMessage struct {
	MessageID   string `json:"message_id"` // 消息唯一ID，用于幂等性检查
	AlertID     int64  `json:"alert_id"`
	UserID      int64  `json:"user_id"`
	AlertType   string `json:"alert_type"`
	ScheduledAt string `json:"scheduled_at"`
}

// JourneySweepMessage 行程兜底扫描消息，补偿客户端掉线后的升级
type JourneySweepMessage struct {
	MessageID    string `json:"message_id"` // 消息唯一ID，用于幂等性检查
	JourneyID    int64  `json:"journey_id"`
	UserID       int64  `json:"user_id"`
	ScheduledAt  string `json:"scheduled_at"`
	DelaySeconds int    `json:"delay_seconds"`
}
