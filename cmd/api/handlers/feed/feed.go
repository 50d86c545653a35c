package feed

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"clipstream.com/cmd/api/handlers/common"
	"clipstream.com/cmd/feed/service"
	"clipstream.com/pkg/errno"
	"clipstream.com/pkg/jwt"
)

var store service.Store

// Init wires the handler package to its collaborators.
func Init(s service.Store) {
	store = s
}

type FeedParam struct {
	Cursor   string `query:"cursor"`
	Limit    int    `query:"limit"`
	HideSeen bool   `query:"hide_seen"`
}

func Following(ctx context.Context, c *app.RequestContext) {
	serveFeed(ctx, c, func(svc *service.FeedService, userID int64, p *FeedParam) (*service.FeedPage, error) {
		return svc.FollowingFeed(ctx, userID, p.Cursor, p.Limit, p.HideSeen)
	})
}

func ForYou(ctx context.Context, c *app.RequestContext) {
	serveFeed(ctx, c, func(svc *service.FeedService, userID int64, p *FeedParam) (*service.FeedPage, error) {
		return svc.ForYouFeed(ctx, userID, p.Cursor, p.Limit, p.HideSeen)
	})
}

func serveFeed(ctx context.Context, c *app.RequestContext, fetch func(*service.FeedService, int64, *FeedParam) (*service.FeedPage, error)) {
	var param FeedParam
	if err := c.BindAndValidate(&param); err != nil {
		common.SendResponse(c, errno.ParamErr.WithMessage(err.Error()), nil)
		return
	}
	userID, err := jwt.GetUserID(ctx, c)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	svc := service.NewFeedService(ctx, store, service.WeightsFromConfig())
	page, err := fetch(svc, userID, &param)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	common.SendResponse(c, errno.Success, page)
}

type TrendingParam struct {
	Limit int `query:"limit"`
}

func Trending(ctx context.Context, c *app.RequestContext) {
	var param TrendingParam
	if err := c.BindAndValidate(&param); err != nil {
		common.SendResponse(c, errno.ParamErr.WithMessage(err.Error()), nil)
		return
	}
	hashtags, err := service.TrendingHashtags(ctx, param.Limit)
	if err != nil {
		common.SendResponse(c, err, nil)
		return
	}
	common.SendResponse(c, errno.Success, map[string]interface{}{"hashtags": hashtags})
}
