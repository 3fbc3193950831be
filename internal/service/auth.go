package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"SafeHer/internal/model"
	"SafeHer/internal/model/dto"
	"SafeHer/internal/repository"
	pkgerrors "SafeHer/pkg/errors"
	"SafeHer/pkg/logger"
	"SafeHer/pkg/snowflake"
	"SafeHer/pkg/token"
	"SafeHer/storage/database"
	"SafeHer/utils"
)

// 手机号只存密文和哈希，明文不落库

type AuthService struct {
	users *repository.UserRepo
}

var (
	authService *AuthService
	authOnce    sync.Once
)

func Auth() *AuthService {
	authOnce.Do(func() {
		authService = &AuthService{
			users: repository.NewUserRepo(database.DB()),
		}
	})
	return authService
}

// Register 注册并返回令牌对
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.TokenResponse, error) {
	if !utils.ValidatePhone(req.Phone) {
		return nil, pkgerrors.InvalidPhone
	}

	phoneHash := utils.HashPhone(req.Phone)
	existing, err := s.users.GetByPhoneHash(ctx, phoneHash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, pkgerrors.PhoneAlreadyRegistered
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	cipher, err := utils.EncryptPhoneRaw(req.Phone)
	if err != nil {
		return nil, err
	}

	userID, err := snowflake.NextID(snowflake.GeneratorTypeUser)
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID: %w", err)
	}
	publicID, err := snowflake.NextID(snowflake.GeneratorTypeUser)
	if err != nil {
		return nil, fmt.Errorf("failed to generate public ID: %w", err)
	}

	user := &model.User{
		BaseModel:    model.BaseModel{ID: userID},
		PublicID:     publicID,
		Nickname:     req.Nickname,
		PhoneCipher:  cipher,
		PhoneHash:    &phoneHash,
		PasswordHash: passwordHash,
		Status:       model.UserStatusActive,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Logger.Info("User registered",
		zap.Int64("user_id", user.ID),
	)

	return s.issueTokens(user.ID)
}

// Login 手机号密码登录
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	if !utils.ValidatePhone(req.Phone) {
		return nil, pkgerrors.InvalidCredentials
	}

	user, err := s.users.GetByPhoneHash(ctx, utils.HashPhone(req.Phone))
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != model.UserStatusActive {
		return nil, pkgerrors.InvalidCredentials
	}

	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		return nil, pkgerrors.InvalidCredentials
	}

	return s.issueTokens(user.ID)
}

// Refresh 用 refresh token 换新令牌对
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	uid, err := token.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, pkgerrors.Unauthorized
	}

	userID, err := strconv.ParseInt(uid, 10, 64)
	if err != nil {
		return nil, pkgerrors.InvalidUserID
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != model.UserStatusActive {
		return nil, pkgerrors.Unauthorized
	}

	return s.issueTokens(user.ID)
}

// Profile 查询当前用户信息
func (s *AuthService) Profile(ctx context.Context, userID int64) (*dto.UserProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.UserNotFound
	}

	profile := &dto.UserProfile{
		PublicID:           user.PublicID,
		Nickname:           user.Nickname,
		StealthModeEnabled: user.StealthModeEnabled,
		ShakeToSOSEnabled:  user.ShakeToSOSEnabled,
	}
	if phone, err := utils.DecryptPhone(user.PhoneCipher); err == nil {
		profile.PhoneMasked = utils.MaskPhone(phone)
	}
	return profile, nil
}

func (s *AuthService) issueTokens(userID int64) (*dto.TokenResponse, error) {
	access, refresh, expiresIn, err := token.GenerateTokenPair(strconv.FormatInt(userID, 10))
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(expiresIn),
	}, nil
}

// UpdateSettings 更新用户设置，摇一摇参数变更后重建检测器
func (s *AuthService) UpdateSettings(ctx context.Context, userID int64, req dto.UpdateSettingsRequest) (*dto.UserProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.UserNotFound
	}

	fields := map[string]interface{}{}
	if req.Nickname != nil {
		fields["nickname"] = *req.Nickname
	}
	if req.StealthModeEnabled != nil {
		fields["stealth_mode_enabled"] = *req.StealthModeEnabled
	}
	if req.ShakeToSOSEnabled != nil {
		fields["shake_to_sos_enabled"] = *req.ShakeToSOSEnabled
	}
	if req.ShakeThreshold != nil && *req.ShakeThreshold > 0 {
		fields["shake_threshold"] = *req.ShakeThreshold
	}
	if req.ShakeWindowMs != nil && *req.ShakeWindowMs > 0 {
		fields["shake_window_ms"] = *req.ShakeWindowMs
	}
	if req.ShakeCount != nil && *req.ShakeCount > 0 {
		fields["shake_count"] = *req.ShakeCount
	}

	if len(fields) > 0 {
		if err := s.users.Update(ctx, userID, fields); err != nil {
			return nil, err
		}
		// 参数可能变了，下次采样按新配置重建
		Motion().ResetDetector(userID)
	}

	return s.Profile(ctx, userID)
}
