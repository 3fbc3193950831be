package dto

import "time"

// ========== Alert 相关 DTO ==========

// TriggerSOSRequest 主动求助请求，定位可缺省
type TriggerSOSRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	ClientRef string   `json:"client_ref"` // 客户端幂等令牌，缺省时服务端生成
	Source    string   `json:"source"`     // button / shake
}

// AlertItem 告警项
type AlertItem struct {
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	ID         string     `json:"id"`
	JourneyID  string     `json:"journey_id,omitempty"`
	AlertType  string     `json:"alert_type"`
	Status     string     `json:"status"`
	Latitude   *float64   `json:"latitude,omitempty"`
	Longitude  *float64   `json:"longitude,omitempty"`
}

// AlertListQuery 告警列表查询参数
type AlertListQuery struct {
	Status string `query:"status"`
	Limit  int    `query:"limit"`
}
