package dto

import "time"

// ========== Journey 相关 DTO ==========

// JourneyItem 行程项
type JourneyItem struct {
	StartTime       time.Time  `json:"start_time"`
	CreatedAt       time.Time  `json:"created_at"`
	ExpectedArrival *time.Time `json:"expected_arrival,omitempty"`
	LastCheckIn     *time.Time `json:"last_check_in,omitempty"`
	NextCheckIn     *time.Time `json:"next_check_in,omitempty"`
	ID              string     `json:"id"`
	Destination     string     `json:"destination"`
	Status          string     `json:"status"`
	IntervalMinutes int        `json:"check_in_interval_minutes"`
}

// StartJourneyRequest 开始行程请求
type StartJourneyRequest struct {
	Destination     string     `json:"destination" binding:"required"`
	IntervalMinutes int        `json:"check_in_interval_minutes" binding:"required"`
	ExpectedArrival *time.Time `json:"expected_arrival"`
}

// CheckInResponse 打卡响应
type CheckInResponse struct {
	LastCheckIn time.Time `json:"last_check_in"`
	NextCheckIn time.Time `json:"next_check_in"`
	Status      string    `json:"status"`
}

// JourneyListQuery 行程列表查询参数
type JourneyListQuery struct {
	Status string `query:"status"`
	Limit  int    `query:"limit"`
}

// MonitorSnapshot 行程监控快照，驱动客户端打卡提示
type MonitorSnapshot struct {
	JourneyID        string `json:"journey_id"`
	State            string `json:"state"`             // awaiting / due / missed
	RemainingSeconds int64  `json:"remaining_seconds"` // 展示用，已截断为 >= 0
	ShowPrompt       bool   `json:"show_prompt"`
	MissedCheckIns   int    `json:"missed_check_ins"`
}
