package controller

import (
	"io"
	"stibap_portal/internal/middleware"
	"stibap_portal/internal/model"
	"stibap_portal/internal/service"
	"stibap_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	RecommendationService *service.RecommendationService
	ProgressService       *service.ProgressService
}

func NewDashboardController(recommendationService *service.RecommendationService, progressService *service.ProgressService) *DashboardController {
	return &DashboardController{
		RecommendationService: recommendationService,
		ProgressService:       progressService,
	}
}

// @Summary 获取仪表盘数据
// @Description 合并后的推荐列表、课程进度与测验统计
// @Tags 仪表盘
// @Produce json
// @Success 200 {object} util.Response
// @Router /dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)
	dashboard, err := c.RecommendationService.Dashboard(ctx.Request.Context(), user)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, dashboard)
}

// Events 以 SSE 推送本地列表变更，客户端据此重新拉取仪表盘
func (c *DashboardController) Events(ctx *gin.Context) {
	events := make(chan service.StoreEvent, 16)
	unsubscribe := c.RecommendationService.Subscribe(func(ev service.StoreEvent) {
		select {
		case events <- ev:
		default:
		}
	})
	defer unsubscribe()

	ctx.Stream(func(w io.Writer) bool {
		select {
		case ev := <-events:
			ctx.SSEvent("store", ev)
			return true
		case <-ctx.Request.Context().Done():
			return false
		}
	})
}

func (c *DashboardController) Progress(ctx *gin.Context) {
	list, err := c.ProgressService.List(ctx.Request.Context(), middleware.CurrentUser(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// @Summary 更新课程进度
// @Tags 仪表盘
// @Accept json
// @Produce json
// @Param body body model.ProgressUpdate true "进度"
// @Success 200 {object} util.Response
// @Router /progress [post]
func (c *DashboardController) UpdateProgress(ctx *gin.Context) {
	var req model.ProgressUpdate
	if !bindJSON(ctx, &req) {
		return
	}
	if err := c.ProgressService.Update(ctx.Request.Context(), middleware.CurrentUser(ctx), req); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
