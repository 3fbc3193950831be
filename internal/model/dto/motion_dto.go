package dto

// ========== Motion 相关 DTO ==========

// MotionSample 单个加速度采样，t 为客户端毫秒时间戳
type MotionSample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	T int64   `json:"t"`
}

// PushSamplesRequest 批量上报采样请求
type PushSamplesRequest struct {
	Samples []MotionSample `json:"samples" binding:"required"`
}

// PushSamplesResponse 上报结果
type PushSamplesResponse struct {
	Accepted  int  `json:"accepted"`
	Triggered bool `json:"triggered"` // 本批采样是否触发摇一摇 SOS
}

// SetMotionEnabledRequest 摇一摇 SOS 开关
type SetMotionEnabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// ReportPermissionRequest 设备上报传感器权限结果
type ReportPermissionRequest struct {
	State string `json:"state" binding:"required"` // unsupported / prompt / granted / denied
}

// MotionStatusResponse 摇一摇检测状态
type MotionStatusResponse struct {
	Enabled    bool   `json:"enabled"`
	Permission string `json:"permission"`
	Threshold  int    `json:"threshold"`
	WindowMs   int    `json:"window_ms"`
	ShakeCount int    `json:"shake_count"`
}
