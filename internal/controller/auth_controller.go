package controller

import (
	"stibap_portal/internal/service"
	"stibap_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// @Summary 注册新用户
// @Description 注册成功后不会自动登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body service.SignUpInput true "注册信息"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.SignUpInput
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.AuthService.SignUp(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, resp)
}

// @Summary 登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body service.SignInInput true "登录信息"
// @Success 200 {object} util.Response
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req service.SignInInput
	if !bindJSON(ctx, &req) {
		return
	}
	req.IPAddress = ctx.ClientIP()
	req.UserAgent = ctx.Request.UserAgent()

	user, err := c.AuthService.SignIn(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"user": user})
}

func (c *AuthController) Logout(ctx *gin.Context) {
	if err := c.AuthService.SignOut(ctx.Request.Context()); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Me 未登录时返回 user=null 而不是 401，便于界面判断
func (c *AuthController) Me(ctx *gin.Context) {
	util.Success(ctx, gin.H{
		"user":    c.AuthService.CurrentUser(),
		"loading": c.AuthService.Loading(),
	})
}

func (c *AuthController) Refresh(ctx *gin.Context) {
	user, err := c.AuthService.RefreshSession(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"user": user})
}

// @Summary 修改密码
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body service.PasswordChangeInput true "旧密码与新密码"
// @Success 200 {object} util.Response
// @Router /auth/password [post]
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	var req service.PasswordChangeInput
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.AuthService.UpdatePassword(ctx.Request.Context(), req); err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Password updated"})
}
