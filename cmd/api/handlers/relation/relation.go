package relation

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"clipstream.com/cmd/api/handlers/common"
	"clipstream.com/cmd/relation/service"
	"clipstream.com/pkg/errno"
	"clipstream.com/pkg/jwt"
	"clipstream.com/pkg/mq"
)

var (
	store    service.Store
	producer mq.Publisher
)

// Init wires the handler package to its collaborators.
func Init(s service.Store, p mq.Publisher) {
	store = s
	producer = p
}

type FollowParam struct {
	UserID int64 `path:"user_id" vd:"$>0"`
}

type ListParam struct {
	UserID int64  `path:"user_id" vd:"$>0"`
	Cursor string `query:"cursor"`
	Limit  int    `query:"limit"`
}

func Follow(ctx context.Context, c *app.RequestContext) {
	var param FollowParam
	if err := c.BindAndValidate(&param); err != nil {
		common.SendResponse(c, errno.ParamErr.WithMessage(err.Error()), nil)
		return
	}
	userID, err := jwt.GetUserID(ctx, c)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	svc := service.NewRelationService(ctx, store, producer)
	if err := svc.Follow(ctx, userID, param.UserID); err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	common.SendResponse(c, errno.Success, nil)
}

func Unfollow(ctx context.Context, c *app.RequestContext) {
	var param FollowParam
	if err := c.BindAndValidate(&param); err != nil {
		common.SendResponse(c, errno.ParamErr.WithMessage(err.Error()), nil)
		return
	}
	userID, err := jwt.GetUserID(ctx, c)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	svc := service.NewRelationService(ctx, store, producer)
	if err := svc.Unfollow(ctx, userID, param.UserID); err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	common.SendResponse(c, errno.Success, nil)
}

// FollowState reports whether the caller follows the user in the path.
func FollowState(ctx context.Context, c *app.RequestContext) {
	var param FollowParam
	if err := c.BindAndValidate(&param); err != nil {
		common.SendResponse(c, errno.ParamErr.WithMessage(err.Error()), nil)
		return
	}
	userID, err := jwt.GetUserID(ctx, c)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	svc := service.NewRelationService(ctx, store, producer)
	following, err := svc.IsFollowing(ctx, userID, param.UserID)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	common.SendResponse(c, errno.Success, map[string]bool{"following": following})
}

func ListFollowers(ctx context.Context, c *app.RequestContext) {
	var param ListParam
	if err := c.BindAndValidate(&param); err != nil {
		common.SendResponse(c, errno.ParamErr.WithMessage(err.Error()), nil)
		return
	}
	svc := service.NewRelationService(ctx, store, producer)
	resp, err := svc.ListFollowers(ctx, param.UserID, param.Cursor, param.Limit)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	common.SendResponse(c, errno.Success, resp)
}

func ListFollowing(ctx context.Context, c *app.RequestContext) {
	var param ListParam
	if err := c.BindAndValidate(&param); err != nil {
		common.SendResponse(c, errno.ParamErr.WithMessage(err.Error()), nil)
		return
	}
	svc := service.NewRelationService(ctx, store, producer)
	resp, err := svc.ListFollowing(ctx, param.UserID, param.Cursor, param.Limit)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	common.SendResponse(c, errno.Success, resp)
}
