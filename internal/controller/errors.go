package controller

import (
	"context"
	"errors"
	"net/http"
	"stibap_portal/internal/gateway"
	"stibap_portal/internal/util"

	"github.com/gin-gonic/gin"
)

// statusFor 把服务层错误映射为HTTP状态码与对外消息；未知错误返回 500
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, util.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, util.ErrNoSession):
		return http.StatusUnauthorized, gateway.MsgNotAuthenticated
	case errors.Is(err, util.ErrUnitNotFound), errors.Is(err, util.ErrModuleNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, util.ErrOutlineNotReady),
		errors.Is(err, util.ErrNoActiveUnit),
		errors.Is(err, util.ErrUnitAlreadyCompleted),
		errors.Is(err, util.ErrStaleResult),
		errors.Is(err, context.Canceled):
		return http.StatusConflict, err.Error()
	}

	var gerr *gateway.Error
	if !errors.As(err, &gerr) {
		return http.StatusInternalServerError, "Internal server error"
	}

	switch gerr.Kind {
	case gateway.KindValidation:
		return http.StatusBadRequest, gerr.Message
	case gateway.KindUnauthenticated:
		return http.StatusUnauthorized, gerr.Message
	case gateway.KindApplication:
		if gerr.Status >= 400 && gerr.Status < 500 {
			return gerr.Status, gerr.Message
		}
		return http.StatusUnprocessableEntity, gerr.Message
	default:
		return http.StatusBadGateway, gateway.MsgNetworkError
	}
}

func respondError(ctx *gin.Context, err error) {
	status, message := statusFor(err)
	if status == http.StatusInternalServerError {
		util.LogInternalError(ctx, err)
		return
	}
	util.Error(ctx, status, message)
}

func bindJSON(ctx *gin.Context, dst interface{}) bool {
	if err := ctx.ShouldBindJSON(dst); err != nil {
		util.BadRequest(ctx, "invalid request body")
		return false
	}
	return true
}
