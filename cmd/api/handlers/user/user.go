package user

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"clipstream.com/cmd/api/handlers/common"
	"clipstream.com/cmd/user/service"
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

// Authenticate backs the JWT login flow: it validates the posted
// credentials and hands the verified user id to the middleware.
func Authenticate(ctx context.Context, c *app.RequestContext) (int64, error) {
	var param LoginParam
	if err := c.BindAndValidate(&param); err != nil {
		return 0, errno.ParamErr.WithMessage(err.Error())
	}
	svc := service.NewUserService(ctx, store)
	account, err := svc.CheckPassword(ctx, param.Username, param.Password)
	if err != nil {
		return 0, err
	}
	return account.UserID, nil
}

type LoginParam struct {
	Username string `json:"username" vd:"len($)>0"`
	Password string `json:"password" vd:"len($)>0"`
}

type RegisterParam struct {
	Username    string `json:"username" vd:"len($)>0"`
	Password    string `json:"password" vd:"len($)>0"`
	DisplayName string `json:"display_name"`
}

func Register(ctx context.Context, c *app.RequestContext) {
	var param RegisterParam
	if err := c.BindAndValidate(&param); err != nil {
		common.SendResponse(c, errno.ParamErr.WithMessage(err.Error()), nil)
		return
	}
	svc := service.NewUserService(ctx, store)
	account, err := svc.Register(ctx, param.Username, param.Password, param.DisplayName)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	token, expire, err := jwt.TokenGenerator(account.UserID)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	common.SendResponse(c, errno.Success, map[string]interface{}{
		"user":   account,
		"token":  token,
		"expire": expire,
	})
}

type ProfileParam struct {
	UserID int64 `path:"user_id" vd:"$>0"`
}

func Profile(ctx context.Context, c *app.RequestContext) {
	var param ProfileParam
	if err := c.BindAndValidate(&param); err != nil {
		common.SendResponse(c, errno.ParamErr.WithMessage(err.Error()), nil)
		return
	}
	svc := service.NewUserService(ctx, store)
	account, err := svc.GetProfile(ctx, param.UserID)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	common.SendResponse(c, errno.Success, account)
}

type UpdateProfileParam struct {
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Bio         string `json:"bio"`
}

func UpdateProfile(ctx context.Context, c *app.RequestContext) {
	var param UpdateProfileParam
	if err := c.BindAndValidate(&param); err != nil {
		common.SendResponse(c, errno.ParamErr.WithMessage(err.Error()), nil)
		return
	}
	userID, err := jwt.GetUserID(ctx, c)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	svc := service.NewUserService(ctx, store)
	if err := svc.UpdateProfile(ctx, userID, param.DisplayName, param.AvatarURL, param.Bio); err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	common.SendResponse(c, errno.Success, nil)
}

func PublishVideo(ctx context.Context, c *app.RequestContext) {
	var param service.PublishVideoRequest
	if err := c.BindAndValidate(&param); err != nil {
		common.SendResponse(c, errno.ParamErr.WithMessage(err.Error()), nil)
		return
	}
	userID, err := jwt.GetUserID(ctx, c)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	svc := service.NewVideoService(ctx, store, producer)
	video, err := svc.Publish(ctx, userID, &param)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	common.SendResponse(c, errno.Success, video)
}

type GetVideoParam struct {
	VideoID int64 `path:"video_id" vd:"$>0"`
}

// CompleteVideo marks the caller's video as done processing.
func CompleteVideo(ctx context.Context, c *app.RequestContext) {
	var param GetVideoParam
	if err := c.BindAndValidate(&param); err != nil {
		common.SendResponse(c, errno.ParamErr.WithMessage(err.Error()), nil)
		return
	}
	userID, err := jwt.GetUserID(ctx, c)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	svc := service.NewVideoService(ctx, store, producer)
	video, err := svc.Complete(ctx, userID, param.VideoID)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	common.SendResponse(c, errno.Success, video)
}

func GetVideo(ctx context.Context, c *app.RequestContext) {
	var param GetVideoParam
	if err := c.BindAndValidate(&param); err != nil {
		common.SendResponse(c, errno.ParamErr.WithMessage(err.Error()), nil)
		return
	}
	svc := service.NewVideoService(ctx, store, producer)
	video, err := svc.GetVideo(ctx, param.VideoID)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	common.SendResponse(c, errno.Success, video)
}

type ListVideosParam struct {
	UserID int64 `path:"user_id" vd:"$>0"`
	Limit  int   `query:"limit"`
	Offset int   `query:"offset"`
}

func ListVideos(ctx context.Context, c *app.RequestContext) {
	var param ListVideosParam
	if err := c.BindAndValidate(&param); err != nil {
		common.SendResponse(c, errno.ParamErr.WithMessage(err.Error()), nil)
		return
	}
	svc := service.NewVideoService(ctx, store, producer)
	videos, err := svc.ListUserVideos(ctx, param.UserID, param.Limit, param.Offset)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	common.SendResponse(c, errno.Success, map[string]interface{}{"videos": videos})
}
