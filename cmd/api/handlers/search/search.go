package search

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"clipstream.com/cmd/api/handlers/common"
	"clipstream.com/cmd/search/service"
	"clipstream.com/pkg/constants"
	"clipstream.com/pkg/errno"
)

var searchService *service.SearchService

// Init wires the handler package. svc is nil when Elasticsearch is
// disabled; the endpoint then reports the backend as unavailable.
func Init(svc *service.SearchService) {
	searchService = svc
}

type SearchParam struct {
	Query  string `query:"q"`
	Type   string `query:"type"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

func Search(ctx context.Context, c *app.RequestContext) {
	var param SearchParam
	if err := c.BindAndValidate(&param); err != nil {
		common.SendResponse(c, errno.ParamErr.WithMessage(err.Error()), nil)
		return
	}
	if param.Query == "" {
		common.SendResponse(c, errno.ParamErr.WithMessage("q is required"), nil)
		return
	}
	limit := param.Limit
	if limit <= 0 {
		limit = constants.DefaultPageSize
	}
	if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}

	switch param.Type {
	case "users":
		users, err := service.SearchUsers(ctx, param.Query, limit)
		if err != nil {
			common.SendResponse(c, err, nil)
			return
		}
		common.SendResponse(c, errno.Success, map[string]interface{}{"users": users})
	case "hashtags":
		hashtags, err := service.SearchHashtags(ctx, param.Query, limit)
		if err != nil {
			common.SendResponse(c, err, nil)
			return
		}
		common.SendResponse(c, errno.Success, map[string]interface{}{"hashtags": hashtags})
	case "", "videos":
		if searchService == nil {
			common.SendResponse(c, errno.TransientErr.WithMessage("video search is disabled"), nil)
			return
		}
		result, err := searchService.SearchVideos(ctx, param.Query, param.Offset, limit)
		if err != nil {
			common.SendResponse(c, err, nil)
			return
		}
		common.SendResponse(c, errno.Success, result)
	default:
		common.SendResponse(c, errno.ParamErr.WithMessage("unknown search type"), nil)
	}
}
