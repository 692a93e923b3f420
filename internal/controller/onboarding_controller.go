package controller

import (
	"stibap_portal/internal/middleware"
	"stibap_portal/internal/model"
	"stibap_portal/internal/service"
	"stibap_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type OnboardingController struct {
	OnboardingService *service.OnboardingService
}

func NewOnboardingController(onboardingService *service.OnboardingService) *OnboardingController {
	return &OnboardingController{OnboardingService: onboardingService}
}

func (c *OnboardingController) Status(ctx *gin.Context) {
	status, err := c.OnboardingService.Status(ctx.Request.Context(), middleware.CurrentUser(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, status)
}

func (c *OnboardingController) GetPreferences(ctx *gin.Context) {
	prefs, err := c.OnboardingService.Preferences(ctx.Request.Context(), middleware.CurrentUser(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, prefs)
}

func (c *OnboardingController) CreatePreferences(ctx *gin.Context) {
	var req model.Preferences
	if !bindJSON(ctx, &req) {
		return
	}
	prefs, err := c.OnboardingService.CreatePreferences(ctx.Request.Context(), middleware.CurrentUser(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, prefs)
}

func (c *OnboardingController) UpdatePreferences(ctx *gin.Context) {
	var req model.PreferencesUpdate
	if !bindJSON(ctx, &req) {
		return
	}
	prefs, err := c.OnboardingService.UpdatePreferences(ctx.Request.Context(), middleware.CurrentUser(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, prefs)
}

// @Summary 完成新手引导
// @Description 保存学习偏好并返回首批推荐课程
// @Tags 引导
// @Accept json
// @Produce json
// @Param body body model.Preferences true "学习偏好"
// @Success 200 {object} util.Response
// @Router /onboarding/complete [post]
func (c *OnboardingController) Complete(ctx *gin.Context) {
	var req model.Preferences
	if !bindJSON(ctx, &req) {
		return
	}
	result, err := c.OnboardingService.Complete(ctx.Request.Context(), middleware.CurrentUser(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
