package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// UserStatus 用户状态枚举
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"   // 正常使用
	UserStatusDisabled UserStatus = "disabled" // 已停用
)

// User 用户模型

type User struct {
	BaseModel
	PublicID     int64      `gorm:"uniqueIndex;not null" json:"public_id"`
	Nickname     string     `gorm:"type:varchar(64);not null;default:''" json:"nickname"`
	PhoneCipher  []byte     `gorm:"type:bytea" json:"-"`                // 手机号密文，不对外暴露
	PhoneHash    *string    `gorm:"uniqueIndex;type:char(64)" json:"-"` // 手机号哈希，用于查询
	PasswordHash string     `gorm:"type:varchar(128);not null" json:"-"`
	Status       UserStatus `gorm:"type:varchar(16);not null;default:'active';index:idx_users_status" json:"status"`

	TrustedContacts TrustedContacts `gorm:"type:jsonb;default:'[]'" json:"trusted_contacts"` // 紧急联系人数组（JSONB）

	// 自定义设置部分
	StealthModeEnabled bool `gorm:"not null;default:false" json:"stealth_mode_enabled"` // 隐身模式，仅客户端呈现
	ShakeToSOSEnabled  bool `gorm:"not null;default:false" json:"shake_to_sos_enabled"`
	ShakeThreshold     int  `gorm:"not null;default:15" json:"shake_threshold"`
	ShakeWindowMs      int  `gorm:"not null;default:1000" json:"shake_window_ms"`
	ShakeCount         int  `gorm:"not null;default:3" json:"shake_count"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// TrustedContacts 紧急联系人数组（JSONB）
type TrustedContacts []TrustedContact

func (c TrustedContacts) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	return json.Marshal(c)
}

func (c *TrustedContacts) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal trusted contacts value")
	}
	return json.Unmarshal(bytes, c)
}

// TrustedContact 紧急联系人结构（存储在 users.trusted_contacts JSONB 中）
type TrustedContact struct {
	DisplayName       string `json:"display_name"`
	Relationship      string `json:"relationship"`
	PhoneCipherBase64 string `json:"phone_cipher_base64"` // base64 编码的密文
	PhoneHash         string `json:"phone_hash"`
	Priority          int    `json:"priority"` // 1-5，决定通知顺序
	CreatedAt         string `json:"created_at"`
}
