package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"SafeHer/internal/model/dto"
	"SafeHer/internal/service"
	"SafeHer/pkg/response"
)

// Register 手机号注册
func Register(ctx context.Context, c *app.RequestContext) {
	var req dto.RegisterRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	tokens, err := service.Auth().Register(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, tokens)
}

// Login 手机号密码登录
func Login(ctx context.Context, c *app.RequestContext) {
	var req dto.LoginRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	tokens, err := service.Auth().Login(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, tokens)
}

// RefreshToken 刷新令牌对
func RefreshToken(ctx context.Context, c *app.RequestContext) {
	var req dto.RefreshRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	tokens, err := service.Auth().Refresh(ctx, req.RefreshToken)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, tokens)
}
