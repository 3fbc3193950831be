package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"SafeHer/internal/model/dto"
	"SafeHer/internal/service"
	pkgerrors "SafeHer/pkg/errors"
	"SafeHer/pkg/response"
)

// ListContacts 紧急联系人列表
func ListContacts(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}

	items, err := service.Contact().ListContacts(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, items)
}

// CreateContact 新增紧急联系人
func CreateContact(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}

	var req dto.CreateContactRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	item, err := service.Contact().AddContact(ctx, userID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, item)
}

// UpdateContact 更新联系人，按 priority 定位
func UpdateContact(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}

	priority, err := strconv.Atoi(c.Param("priority"))
	if err != nil {
		response.Error(ctx, c, pkgerrors.ContactNotFound)
		return
	}

	var req dto.UpdateContactRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	item, err := service.Contact().UpdateContact(ctx, userID, priority, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, item)
}

// DeleteContact 删除联系人
func DeleteContact(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(ctx, c)
	if !ok {
		return
	}

	priority, err := strconv.Atoi(c.Param("priority"))
	if err != nil {
		response.Error(ctx, c, pkgerrors.ContactNotFound)
		return
	}

	if err := service.Contact().DeleteContact(ctx, userID, priority); err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.NoContent(ctx, c)
}
