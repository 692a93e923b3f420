package controller

import (
	"context"
	"net/http"
	"stibap_portal/internal/gateway"
	"stibap_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type BackendHealth interface {
	Health(ctx context.Context) (gateway.HealthStatus, error)
}

type HealthController struct {
	Backend BackendHealth
}

func NewHealthController(backend BackendHealth) *HealthController {
	return &HealthController{Backend: backend}
}

// @Summary 健康检查
// @Description 检查门户进程及后端服务状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	backend, err := c.Backend.Health(ctx.Request.Context())
	if err != nil {
		util.ErrorWithData(ctx, http.StatusServiceUnavailable, "Backend unavailable", gin.H{
			"status":  "degraded",
			"backend": err.Error(),
		})
		return
	}

	util.Success(ctx, gin.H{
		"status":  "ok",
		"backend": backend.Status,
	})
}
