package sms

import (
	"context"
	"encoding/json"
	"fmt"

	"SafeHer/config"
)

// SendAlertSMS 向单个紧急联系人发送告警短信
// alertKind: 模板中的告警类别文案（如 "SOS" / "missed check-in"）
// nickname: 求助用户昵称
func SendAlertSMS(ctx context.Context, phone, nickname, alertKind string) (*SendResponse, error) {
	cfg := config.Cfg

	param := map[string]string{
		"name": nickname,
		"kind": alertKind,
	}
	paramJSON, err := json.Marshal(param)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal template param: %w", err)
	}

	return SendSingle(ctx, phone, cfg.SMSSignName, cfg.SMSTemplateCode, string(paramJSON))
}

// SendBatchAlertSMS 向多个联系人批量发送同一条告警短信
func SendBatchAlertSMS(ctx context.Context, phones []string, nickname, alertKind string) error {
	if len(phones) == 0 {
		return fmt.Errorf("phones list is empty")
	}

	cfg := config.Cfg

	param := map[string]string{
		"name": nickname,
		"kind": alertKind,
	}
	paramJSON, err := json.Marshal(param)
	if err != nil {
		return fmt.Errorf("failed to marshal template param: %w", err)
	}

	templateParams := make([]string, len(phones))
	for i := range templateParams {
		templateParams[i] = string(paramJSON)
	}

	return SendBatch(ctx, phones, cfg.SMSSignName, cfg.SMSTemplateCode, templateParams)
}
