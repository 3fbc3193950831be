package dto

import "time"

// ========== Contact 相关 DTO ==========
// 联系人存储在 users.trusted_contacts JSONB 中

// ContactItem 紧急联系人项
type ContactItem struct {
	CreatedAt    time.Time `json:"created_at"`
	DisplayName  string    `json:"display_name"`
	Relationship string    `json:"relationship"`
	PhoneMasked  string    `json:"phone_masked"`
	Priority     int       `json:"priority"`
}

// CreateContactRequest 创建联系人请求
type CreateContactRequest struct {
	DisplayName  string `json:"display_name" binding:"required"`
	Relationship string `json:"relationship" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Priority     int    `json:"priority" binding:"required,min=1,max=5"`
}

// UpdateContactRequest 更新联系人请求，按 priority 定位
type UpdateContactRequest struct {
	DisplayName  string `json:"display_name,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone,omitempty"`
}
