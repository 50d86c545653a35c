package errno

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

const (
	SuccessCode             = 0
	ServiceErrCode          = 10001
	ParamErrCode            = 10002
	RecordNotFoundCode      = 10003
	AlreadyExistCode        = 10004
	InvalidStateCode        = 10005
	AuthorizationFailedCode = 10006
	TransientErrCode        = 10007
)

type ErrNo struct {
	ErrCode int64
	ErrMsg  string
}

func (e ErrNo) Error() string {
	return fmt.Sprintf("err_code=%d, err_msg=%s", e.ErrCode, e.ErrMsg)
}

func NewErrNo(code int64, msg string) ErrNo {
	return ErrNo{ErrCode: code, ErrMsg: msg}
}

func (e ErrNo) WithMessage(msg string) ErrNo {
	e.ErrMsg = msg
	return e
}

var (
	Success                = NewErrNo(SuccessCode, "success")
	ServiceErr             = NewErrNo(ServiceErrCode, "service internal error")
	ParamErr               = NewErrNo(ParamErrCode, "invalid parameter")
	RecordNotFoundErr      = NewErrNo(RecordNotFoundCode, "record not found")
	AlreadyExistErr        = NewErrNo(AlreadyExistCode, "record already exists")
	InvalidStateErr        = NewErrNo(InvalidStateCode, "invalid state")
	AuthorizationFailedErr = NewErrNo(AuthorizationFailedCode, "authorization failed")
	TransientErr           = NewErrNo(TransientErrCode, "temporary failure, retry later")
)

// ConvertErr maps an arbitrary error onto the taxonomy. Storage "not found"
// and context timeouts get their own codes so callers can distinguish a bad
// reference from a retryable failure.
func ConvertErr(err error) ErrNo {
	if err == nil {
		return Success
	}
	var e ErrNo
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return RecordNotFoundErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return TransientErr.WithMessage(err.Error())
	}
	return ServiceErr.WithMessage(err.Error())
}
