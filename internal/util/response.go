package util

import (
	"net/http"
	"stibap_portal/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构，success 与后端信封保持一致
type Response struct {
	Success   bool        `json:"success"`
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func newResponse(c *gin.Context, code int, message string, data interface{}) Response {
	return Response{
		Success:   code >= 200 && code < 300,
		Code:      code,
		Message:   message,
		Data:      data,
		RequestID: c.GetHeader(RequestIDHeader),
	}
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, newResponse(c, http.StatusOK, "success", data))
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, newResponse(c, http.StatusCreated, "created", data))
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, newResponse(c, code, message, nil))
}

// ErrorWithData 失败时仍返回视图数据
func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, newResponse(c, code, message, data))
}

// Redirect 守卫重定向，Location 头与 data.location 一致
func Redirect(c *gin.Context, location string) {
	c.Header("Location", location)
	c.AbortWithStatusJSON(http.StatusFound, newResponse(c, http.StatusFound, "redirect", gin.H{"location": location}))
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.L().Error("Internal server error",
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetHeader(RequestIDHeader)),
		zap.Error(err))
	InternalServerError(c)
}
