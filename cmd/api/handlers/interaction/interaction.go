package interaction

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"clipstream.com/cmd/api/handlers/common"
	infraredis "clipstream.com/cmd/interaction/infras/redis"
	"clipstream.com/cmd/interaction/service"
	"clipstream.com/pkg/errno"
	"clipstream.com/pkg/jwt"
	"clipstream.com/pkg/mq"
)

var (
	store     service.Store
	likeCache *infraredis.LikeCacheManager
	producer  mq.Publisher
)

// Init wires the handler package to its collaborators. cache may be nil
// when Redis is disabled.
func Init(s service.Store, cache *infraredis.LikeCacheManager, p mq.Publisher) {
	store = s
	likeCache = cache
	producer = p
}

type LikeParam struct {
	VideoID int64 `path:"video_id" vd:"$>0"`
}

func Like(ctx context.Context, c *app.RequestContext) {
	setLike(ctx, c, true)
}

func Unlike(ctx context.Context, c *app.RequestContext) {
	setLike(ctx, c, false)
}

func setLike(ctx context.Context, c *app.RequestContext, liked bool) {
	var param LikeParam
	if err := c.BindAndValidate(&param); err != nil {
		common.SendResponse(c, errno.ParamErr.WithMessage(err.Error()), nil)
		return
	}
	userID, err := jwt.GetUserID(ctx, c)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	svc := service.NewLikeService(ctx, store, likeCache, producer)
	resp, err := svc.SetLike(ctx, userID, param.VideoID, liked)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	common.SendResponse(c, errno.Success, resp)
}

type AddCommentParam struct {
	VideoID  int64  `path:"video_id" vd:"$>0"`
	Text     string `json:"text"`
	ParentID int64  `json:"parent_id"`
}

func AddComment(ctx context.Context, c *app.RequestContext) {
	var param AddCommentParam
	if err := c.BindAndValidate(&param); err != nil {
		common.SendResponse(c, errno.ParamErr.WithMessage(err.Error()), nil)
		return
	}
	userID, err := jwt.GetUserID(ctx, c)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	svc := service.NewCommentService(ctx, store, producer)
	comment, err := svc.AddComment(ctx, userID, param.VideoID, param.Text, param.ParentID)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	common.SendResponse(c, errno.Success, comment)
}

type ListCommentsParam struct {
	VideoID int64  `path:"video_id" vd:"$>0"`
	Cursor  string `query:"cursor"`
	Limit   int    `query:"limit"`
}

func ListComments(ctx context.Context, c *app.RequestContext) {
	var param ListCommentsParam
	if err := c.BindAndValidate(&param); err != nil {
		common.SendResponse(c, errno.ParamErr.WithMessage(err.Error()), nil)
		return
	}
	svc := service.NewCommentService(ctx, store, producer)
	resp, err := svc.ListComments(ctx, param.VideoID, param.Cursor, param.Limit)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	common.SendResponse(c, errno.Success, resp)
}

type ShareParam struct {
	VideoID int64 `path:"video_id" vd:"$>0"`
}

func Share(ctx context.Context, c *app.RequestContext) {
	var param ShareParam
	if err := c.BindAndValidate(&param); err != nil {
		common.SendResponse(c, errno.ParamErr.WithMessage(err.Error()), nil)
		return
	}
	userID, err := jwt.GetUserID(ctx, c)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	svc := service.NewShareService(ctx, store, producer)
	if err := svc.AddShare(ctx, userID, param.VideoID); err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	common.SendResponse(c, errno.Success, nil)
}

type WatchParam struct {
	VideoID   int64 `path:"video_id" vd:"$>0"`
	WatchTime int64 `json:"watch_time"`
}

func Watch(ctx context.Context, c *app.RequestContext) {
	var param WatchParam
	if err := c.BindAndValidate(&param); err != nil {
		common.SendResponse(c, errno.ParamErr.WithMessage(err.Error()), nil)
		return
	}
	userID, err := jwt.GetUserID(ctx, c)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	svc := service.NewWatchService(ctx, store, producer)
	if err := svc.RecordWatch(ctx, userID, param.VideoID, param.WatchTime); err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	common.SendResponse(c, errno.Success, nil)
}
