package model

import "time"

// AlertType 告警类型枚举
type AlertType string

const (
	AlertTypeSOS           AlertType = "sos"            // 用户主动求助（按钮或摇一摇）
	AlertTypeMissedCheckIn AlertType = "missed_checkin" // 行程打卡超时升级
)

// AlertStatus 告警状态枚举
type AlertStatus string

const (
	AlertStatusActive   AlertStatus = "active"
	AlertStatusResolved AlertStatus = "resolved"
)

// EmergencyAlert 紧急告警模型
// 创建后告警内容不再变更，解除是独立的状态流转

type EmergencyAlert struct {
	BaseModel
	UserID    int64       `gorm:"not null;index:idx_alerts_user_status,priority:1" json:"user_id"`
	JourneyID *int64      `gorm:"index" json:"journey_id"` // 仅 missed_checkin 告警关联行程
	AlertType AlertType   `gorm:"type:varchar(16);not null" json:"alert_type"`
	Status    AlertStatus `gorm:"type:varchar(16);not null;default:'active';index:idx_alerts_user_status,priority:2" json:"status"`
	Latitude  *float64    `json:"latitude"` // 定位可缺省，缺省时不算错误
	Longitude *float64    `json:"longitude"`
	ResolvedAt *time.Time `json:"resolved_at"`
	ClientRef string      `gorm:"type:varchar(36);uniqueIndex" json:"client_ref"` // 客户端幂等令牌
}

// TableName 指定表名
func (EmergencyAlert) TableName() string {
	return "emergency_alerts"
}
