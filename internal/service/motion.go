package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"SafeHer/config"
	"SafeHer/internal/model/dto"
	"SafeHer/internal/motion"
	"SafeHer/internal/repository"
	pkgerrors "SafeHer/pkg/errors"
	"SafeHer/pkg/logger"
	"SafeHer/storage/database"
)

// 采样由客户端批量上报，服务端按用户路由到检测器
// 识别到手势后走与手动 SOS 相同的告警链路

type MotionService struct {
	users    *repository.UserRepo
	registry *motion.Registry
}

var (
	motionService *MotionService
	motionOnce    sync.Once
)

func Motion() *MotionService {
	motionOnce.Do(func() {
		motionService = &MotionService{
			users: repository.NewUserRepo(database.DB()),
		}
		motionService.registry = motion.NewRegistry(motionService.onShake)
	})
	return motionService
}

func (s *MotionService) onShake(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := Alert().TriggerSOS(ctx, userID, dto.TriggerSOSRequest{Source: "shake"}); err != nil {
		logger.Logger.Error("Failed to trigger SOS from shake",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return
	}

	logger.Logger.Warn("Shake gesture triggered SOS",
		zap.Int64("user_id", userID),
	)
}

// PushSamples 批量消费采样，按客户端时间戳喂给检测器
func (s *MotionService) PushSamples(ctx context.Context, userID int64, req dto.PushSamplesRequest) (*dto.PushSamplesResponse, error) {
	detector, err := s.ensureDetector(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.PushSamplesResponse{}
	for _, sample := range req.Samples {
		at := time.UnixMilli(sample.T)
		if sample.T == 0 {
			at = time.Now()
		}
		if detector.IngestAt(motion.Sample{X: sample.X, Y: sample.Y, Z: sample.Z}, at) {
			resp.Triggered = true
		}
		resp.Accepted++
	}

	return resp, nil
}

// ReportPermission 设备上报权限结果
func (s *MotionService) ReportPermission(ctx context.Context, userID int64, state string) (*dto.MotionStatusResponse, error) {
	perm := motion.PermissionState(state)
	if !perm.Valid() {
		return nil, pkgerrors.MotionPermissionDenied
	}

	detector, err := s.ensureDetector(ctx, userID)
	if err != nil {
		return nil, err
	}

	detector.SetPermission(perm)
	return s.statusOf(ctx, userID, detector)
}

// Status 摇一摇检测状态
func (s *MotionService) Status(ctx context.Context, userID int64) (*dto.MotionStatusResponse, error) {
	detector, err := s.ensureDetector(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.statusOf(ctx, userID, detector)
}

// SetEnabled 用户开关摇一摇 SOS，同步落库
func (s *MotionService) SetEnabled(ctx context.Context, userID int64, enabled bool) (*dto.MotionStatusResponse, error) {
	detector, err := s.ensureDetector(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, userID, map[string]interface{}{
		"shake_to_sos_enabled": enabled,
	}); err != nil {
		return nil, err
	}

	detector.SetEnabled(enabled)
	return s.statusOf(ctx, userID, detector)
}

// ResetDetector 丢弃用户检测器，下次上报按最新配置重建
func (s *MotionService) ResetDetector(userID int64) {
	s.registry.Remove(userID)
}

func (s *MotionService) ensureDetector(ctx context.Context, userID int64) (*motion.Detector, error) {
	if d := s.registry.Get(userID); d != nil {
		return d, nil
	}

	settings := motion.Settings{
		Enabled:    false,
		Threshold:  float64(config.Cfg.ShakeThreshold),
		WindowMs:   config.Cfg.ShakeWindowMs,
		ShakeCount: config.Cfg.ShakeCount,
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.UserNotFound
	}

	settings.Enabled = user.ShakeToSOSEnabled
	if user.ShakeThreshold > 0 {
		settings.Threshold = float64(user.ShakeThreshold)
	}
	if user.ShakeWindowMs > 0 {
		settings.WindowMs = user.ShakeWindowMs
	}
	if user.ShakeCount > 0 {
		settings.ShakeCount = user.ShakeCount
	}

	return s.registry.Ensure(userID, settings), nil
}

func (s *MotionService) statusOf(ctx context.Context, userID int64, d *motion.Detector) (*dto.MotionStatusResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.UserNotFound
	}

	return &dto.MotionStatusResponse{
		Enabled:    d.Enabled(),
		Permission: string(d.Permission()),
		Threshold:  user.ShakeThreshold,
		WindowMs:   user.ShakeWindowMs,
		ShakeCount: user.ShakeCount,
	}, nil
}
