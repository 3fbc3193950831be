package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"SafeHer/internal/model/dto"
	"SafeHer/internal/service"
	pkgerrors "SafeHer/pkg/errors"
	"SafeHer/pkg/response"
)

// TriggerSOS 主动求助
func TriggerSOS(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}

	var req dto.TriggerSOSRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	alert, err := service.Alert().TriggerSOS(ctx, userID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, alert)
}

// ListAlerts 告警列表
func ListAlerts(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}

	var query dto.AlertListQuery
	if err := c.BindQuery(&query); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	items, err := service.Alert().ListAlerts(ctx, userID, query)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, items)
}

// ResolveAlert 解除告警
func ResolveAlert(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}

	alertID, ok := pathID(c, "alert_id")
	if !ok {
		response.Error(ctx, c, pkgerrors.AlertNotFound)
		return
	}

	alert, err := service.Alert().ResolveAlert(ctx, userID, alertID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, alert)
}
