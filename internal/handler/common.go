package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"SafeHer/internal/middleware"
	pkgerrors "SafeHer/pkg/errors"
	"SafeHer/pkg/response"
)

// currentUserID 从 JWT 上下文取用户 ID，失败时已写出响应
func currentUserID(ctx context.Context, c *app.RequestContext) (int64, bool) {
	uid, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.Unauthorized)
		return 0, false
	}

	userID, err := strconv.ParseInt(uid, 10, 64)
	if err != nil {
		response.Error(ctx, c, pkgerrors.InvalidUserID)
		return 0, false
	}
	return userID, true
}

// pathID 解析路径中的数字 ID
func pathID(c *app.RequestContext, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
