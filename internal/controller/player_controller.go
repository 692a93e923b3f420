package controller

import (
	"stibap_portal/internal/service"
	"stibap_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type PlayerController struct {
	OutlineService *service.OutlineService
}

func NewPlayerController(outlineService *service.OutlineService) *PlayerController {
	return &PlayerController{OutlineService: outlineService}
}

type SelectUnitRequest struct {
	ModuleID string `json:"module_id"`
	UnitID   string `json:"unit_id" binding:"required"`
}

// @Summary 打开课程
// @Description 加载大纲与进度，自动展开第一个模块并选中第一个单元
// @Tags 播放器
// @Produce json
// @Param courseId path string true "课程ID"
// @Success 200 {object} util.Response
// @Router /player/courses/{courseId}/open [post]
func (c *PlayerController) Open(ctx *gin.Context) {
	view, err := c.OutlineService.Open(ctx.Request.Context(), ctx.Param("courseId"))
	if err != nil {
		// 加载失败时仍返回 Error 状态的视图
		if view != nil {
			status, message := statusFor(err)
			util.ErrorWithData(ctx, status, message, view)
			return
		}
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

func (c *PlayerController) View(ctx *gin.Context) {
	util.Success(ctx, c.OutlineService.View())
}

func (c *PlayerController) Retry(ctx *gin.Context) {
	view, err := c.OutlineService.Retry(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

func (c *PlayerController) Select(ctx *gin.Context) {
	var req SelectUnitRequest
	if !bindJSON(ctx, &req) {
		return
	}
	view, err := c.OutlineService.SelectUnit(req.ModuleID, req.UnitID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

func (c *PlayerController) ToggleModule(ctx *gin.Context) {
	view, err := c.OutlineService.ToggleModule(ctx.Param("moduleId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 标记当前单元完成
// @Tags 播放器
// @Produce json
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response "单元已完成"
// @Router /player/complete [post]
func (c *PlayerController) Complete(ctx *gin.Context) {
	view, err := c.OutlineService.CompleteUnit(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

func (c *PlayerController) Next(ctx *gin.Context) {
	c.move(ctx, service.DirectionNext)
}

func (c *PlayerController) Prev(ctx *gin.Context) {
	c.move(ctx, service.DirectionPrev)
}

func (c *PlayerController) move(ctx *gin.Context, dir service.Direction) {
	view, err := c.OutlineService.GoToAdjacent(dir)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}
