package notification

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"clipstream.com/cmd/api/handlers/common"
	"clipstream.com/cmd/notification/gateway"
	"clipstream.com/cmd/notification/service"
	"clipstream.com/pkg/errno"
	"clipstream.com/pkg/jwt"
)

var (
	store service.Store
	hub   *gateway.Hub
)

// Init wires the handler package to its collaborators.
func Init(s service.Store, h *gateway.Hub) {
	store = s
	hub = h
}

type ListParam struct {
	Cursor     string `query:"cursor"`
	Limit      int    `query:"limit"`
	UnreadOnly bool   `query:"unread_only"`
}

func List(ctx context.Context, c *app.RequestContext) {
	var param ListParam
	if err := c.BindAndValidate(&param); err != nil {
		common.SendResponse(c, errno.ParamErr.WithMessage(err.Error()), nil)
		return
	}
	userID, err := jwt.GetUserID(ctx, c)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	svc := service.NewNotificationService(ctx, store, hub)
	page, err := svc.List(ctx, userID, param.Cursor, param.Limit, param.UnreadOnly)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	common.SendResponse(c, errno.Success, page)
}

type MarkReadParam struct {
	NotificationID int64 `path:"notification_id" vd:"$>0"`
}

func MarkRead(ctx context.Context, c *app.RequestContext) {
	var param MarkReadParam
	if err := c.BindAndValidate(&param); err != nil {
		common.SendResponse(c, errno.ParamErr.WithMessage(err.Error()), nil)
		return
	}
	userID, err := jwt.GetUserID(ctx, c)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	svc := service.NewNotificationService(ctx, store, hub)
	if err := svc.MarkRead(ctx, userID, param.NotificationID); err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	common.SendResponse(c, errno.Success, nil)
}

func MarkAllRead(ctx context.Context, c *app.RequestContext) {
	userID, err := jwt.GetUserID(ctx, c)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	svc := service.NewNotificationService(ctx, store, hub)
	flipped, err := svc.MarkAllRead(ctx, userID)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	common.SendResponse(c, errno.Success, map[string]int64{"marked": flipped})
}
