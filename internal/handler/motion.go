package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"SafeHer/internal/model/dto"
	"SafeHer/internal/service"
	"SafeHer/pkg/response"
)

// PushMotionSamples 批量上报加速度采样
func PushMotionSamples(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}

	var req dto.PushSamplesRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	resp, err := service.Motion().PushSamples(ctx, userID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, resp)
}

// SetMotionEnabled 开关摇一摇 SOS
func SetMotionEnabled(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}

	var req dto.SetMotionEnabledRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	status, err := service.Motion().SetEnabled(ctx, userID, *req.Enabled)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, status)
}

// ReportMotionPermission 设备上报传感器权限结果
func ReportMotionPermission(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}

	var req dto.ReportPermissionRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	status, err := service.Motion().ReportPermission(ctx, userID, req.State)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, status)
}

// GetMotionStatus 摇一摇检测状态
func GetMotionStatus(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}

	status, err := service.Motion().Status(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, status)
}
