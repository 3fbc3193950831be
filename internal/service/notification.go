package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"SafeHer/config"
	"SafeHer/internal/model"
	"SafeHer/internal/repository"
	pkgerrors "SafeHer/pkg/errors"
	"SafeHer/pkg/logger"
	"SafeHer/pkg/metrics"
	"SafeHer/pkg/sms"
	"SafeHer/storage/database"
	"SafeHer/utils"
)

// NotificationService 告警分发：按优先级给紧急联系人发短信

type NotificationService struct {
	users *repository.UserRepo
}

var (
	notificationService *NotificationService
	notificationOnce    sync.Once
)

func Notification() *NotificationService {
	notificationOnce.Do(func() {
		notificationService = &NotificationService{
			users: repository.NewUserRepo(database.DB()),
		}
	})
	return notificationService
}

// NotifyContacts 逐个联系人发送告警短信，部分失败不中断
// 全部失败才返回错误，由消费侧决定重试
func (s *NotificationService) NotifyContacts(ctx context.Context, alertID, userID int64, alertType string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		// 用户已注销，消息无需重试
		return &pkgerrors.SkipMessageError{Reason: "user not found"}
	}

	if len(user.TrustedContacts) == 0 {
		logger.Logger.Warn("No trusted contacts to notify",
			zap.Int64("alert_id", alertID),
			zap.Int64("user_id", userID),
		)
		return nil
	}

	nickname := user.Nickname
	if nickname == "" {
		nickname = "SafeHer user"
	}
	kind := alertKindText(alertType)

	sent := 0
	for _, contact := range sortedContacts(user.TrustedContacts) {
		phone, err := utils.DecryptPhoneBase64(contact.PhoneCipherBase64)
		if err != nil {
			logger.Logger.Error("Failed to decrypt contact phone",
				zap.Int64("alert_id", alertID),
				zap.Int("priority", contact.Priority),
				zap.Error(err),
			)
			continue
		}

		start := time.Now()
		resp, err := sms.SendAlertSMS(ctx, phone, nickname, kind)
		duration := time.Since(start).Seconds()

		status := "success"
		if err != nil {
			status = "failed"
			logger.Logger.Error("Failed to send alert SMS",
				zap.Int64("alert_id", alertID),
				zap.Int("priority", contact.Priority),
				zap.Error(err),
			)
		} else {
			sent++
			logger.Logger.Info("Alert SMS sent",
				zap.Int64("alert_id", alertID),
				zap.Int("priority", contact.Priority),
				zap.String("message_id", resp.MessageID),
			)
		}

		if mts := metrics.GetMetrics(); mts != nil {
			mts.RecordSMSSent(ctx, config.Cfg.SMSTemplateCode, config.Cfg.SMSProvider, status, duration)
		}
	}

	if sent == 0 {
		return fmt.Errorf("failed to notify any contact for alert %d", alertID)
	}
	return nil
}

func alertKindText(alertType string) string {
	switch alertType {
	case string(model.AlertTypeSOS):
		return "SOS"
	case string(model.AlertTypeMissedCheckIn):
		return "missed check-in"
	default:
		return alertType
	}
}
