package controller

import (
	"stibap_portal/internal/middleware"
	"stibap_portal/internal/model"
	"stibap_portal/internal/service"
	"stibap_portal/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// @Summary 获取诊断测验题目
// @Tags 测验
// @Produce json
// @Param subject query string false "科目"
// @Param count query int false "题目数量"
// @Success 200 {object} util.Response
// @Router /quiz/questions [get]
func (c *QuizController) Questions(ctx *gin.Context) {
	count, _ := strconv.Atoi(ctx.Query("count"))
	questions, err := c.QuizService.Questions(ctx.Request.Context(), ctx.Query("subject"), count)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// @Summary 提交测验
// @Description 记录成绩并根据科目和分数生成推荐；推荐失败不影响提交
// @Tags 测验
// @Accept json
// @Produce json
// @Param body body service.QuizSubmission true "答案"
// @Success 200 {object} util.Response
// @Router /quiz/submit [post]
func (c *QuizController) Submit(ctx *gin.Context) {
	var req service.QuizSubmission
	if !bindJSON(ctx, &req) {
		return
	}
	outcome, err := c.QuizService.Submit(ctx.Request.Context(), middleware.CurrentUser(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, outcome)
}

func (c *QuizController) Predict(ctx *gin.Context) {
	var req model.StudentProfile
	if !bindJSON(ctx, &req) {
		return
	}
	prediction, err := c.QuizService.Predict(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, prediction)
}
