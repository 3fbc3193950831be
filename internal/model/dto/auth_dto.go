package dto

// ========== Auth 相关 DTO ==========

// RegisterRequest 注册请求
type RegisterRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Nickname string `json:"nickname"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest 刷新令牌请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse 令牌响应
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // access token 有效期（秒）
}

// UpdateSettingsRequest 用户设置更新，缺省字段不变
type UpdateSettingsRequest struct {
	Nickname           *string `json:"nickname"`
	StealthModeEnabled *bool   `json:"stealth_mode_enabled"`
	ShakeToSOSEnabled  *bool   `json:"shake_to_sos_enabled"`
	ShakeThreshold     *int    `json:"shake_threshold"`
	ShakeWindowMs      *int    `json:"shake_window_ms"`
	ShakeCount         *int    `json:"shake_count"`
}

// UserProfile 用户信息
type UserProfile struct {
	PublicID           int64  `json:"public_id"`
	Nickname           string `json:"nickname"`
	PhoneMasked        string `json:"phone_masked"`
	StealthModeEnabled bool   `json:"stealth_mode_enabled"`
	ShakeToSOSEnabled  bool   `json:"shake_to_sos_enabled"`
}
