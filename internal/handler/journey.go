package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"SafeHer/internal/model/dto"
	"SafeHer/internal/service"
	pkgerrors "SafeHer/pkg/errors"
	"SafeHer/pkg/response"
)

// StartJourney 开始行程
func StartJourney(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}

	var req dto.StartJourneyRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	journey, err := service.Journey().StartJourney(ctx, userID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, journey)
}

// GetActiveJourney 当前行程，无行程时 data 为 null
func GetActiveJourney(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}

	journey, err := service.Journey().GetActiveJourney(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, journey)
}

// GetMonitorSnapshot 当前行程监控快照
func GetMonitorSnapshot(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}

	snap, err := service.Journey().MonitorSnapshot(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, snap)
}

// CheckIn 行程打卡
func CheckIn(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}

	journeyID, ok := pathID(c, "journey_id")
	if !ok {
		response.Error(ctx, c, pkgerrors.JourneyNotFound)
		return
	}

	resp, err := service.Journey().CheckIn(ctx, userID, journeyID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, resp)
}

// CompleteJourney 结束行程，幂等
func CompleteJourney(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}

	journeyID, ok := pathID(c, "journey_id")
	if !ok {
		response.Error(ctx, c, pkgerrors.JourneyNotFound)
		return
	}

	if err := service.Journey().CompleteJourney(ctx, userID, journeyID); err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.NoContent(ctx, c)
}

// ListJourneys 历史行程列表
func ListJourneys(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}

	var query dto.JourneyListQuery
	if err := c.BindQuery(&query); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	items, err := service.Journey().ListJourneys(ctx, userID, query)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, items)
}
