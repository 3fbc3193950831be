package model

import "time"

// JourneyStatus 行程状态枚举
type JourneyStatus string

const (
	JourneyStatusActive    JourneyStatus = "active"    // 行程进行中
	JourneyStatusAlert     JourneyStatus = "alert"     // 已触发告警，行程仍在监控
	JourneyStatusCompleted JourneyStatus = "completed" // 已结束
)

// Journey 行程模型
// 同一用户同一时刻至多一条 active/alert 行程，由 service 层保证

type Journey struct {
	BaseModel
	UserID                 int64         `gorm:"not null;index:idx_journeys_user_status,priority:1" json:"user_id"`
	Destination            string        `gorm:"type:varchar(256);not null" json:"destination"`
	StartTime              time.Time     `gorm:"not null" json:"start_time"`
	ExpectedArrival        *time.Time    `json:"expected_arrival"`
	CheckInIntervalMinutes int           `gorm:"not null" json:"check_in_interval_minutes"`
	LastCheckIn            *time.Time    `json:"last_check_in"`
	NextCheckIn            *time.Time    `json:"next_check_in"`
	Status                 JourneyStatus `gorm:"type:varchar(16);not null;default:'active';index:idx_journeys_user_status,priority:2" json:"status"`
}

// TableName 指定表名
func (Journey) TableName() string {
	return "journeys"
}

// CheckInInterval 打卡间隔
func (j *Journey) CheckInInterval() time.Duration {
	return time.Duration(j.CheckInIntervalMinutes) * time.Minute
}

// CheckInDeadline 当前打卡截止时间
// next_check_in 缺失时回退为 start_time + interval
func (j *Journey) CheckInDeadline() time.Time {
	if j.NextCheckIn != nil {
		return *j.NextCheckIn
	}
	return j.StartTime.Add(j.CheckInInterval())
}

// IsMonitorable 行程是否仍需监控
func (j *Journey) IsMonitorable() bool {
	return j.Status == JourneyStatusActive || j.Status == JourneyStatusAlert
}
