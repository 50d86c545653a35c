package common

import (
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"clipstream.com/pkg/errno"
)

type Response struct {
	Code    int64       `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SendResponse packs any error through the taxonomy and picks the HTTP
// status from the error code.
func SendResponse(c *app.RequestContext, err error, data interface{}) {
	e := errno.ConvertErr(err)
	c.JSON(statusOf(e.ErrCode), Response{
		Code:    e.ErrCode,
		Message: e.ErrMsg,
		Data:    data,
	})
}

func statusOf(code int64) int {
	switch code {
	case errno.SuccessCode:
		return consts.StatusOK
	case errno.ParamErrCode, errno.InvalidStateCode:
		return consts.StatusBadRequest
	case errno.AuthorizationFailedCode:
		return consts.StatusUnauthorized
	case errno.RecordNotFoundCode:
		return consts.StatusNotFound
	case errno.AlreadyExistCode:
		return consts.StatusConflict
	case errno.TransientErrCode:
		return consts.StatusServiceUnavailable
	default:
		return consts.StatusInternalServerError
	}
}
