package utils

import (
	"crypto/sha256"
	"encoding/hex"

	"SafeHer/config"
)

// hash 化 phone 存储，查询用密文核对，加盐避免彩虹表攻击，盐 + ":" + phone

func HashPhone(phone string) string {
	key := config.Cfg.PhoneHashSalt

	sum := sha256.Sum256([]byte(key + ":" + phone))

	return hex.EncodeToString(sum[:])
}

// MaskPhone 打码展示手机号，保留前三后四
func MaskPhone(phone string) string {
	if len(phone) < 7 {
		return "****"
	}
	return phone[:3] + "****" + phone[len(phone)-4:]
}
