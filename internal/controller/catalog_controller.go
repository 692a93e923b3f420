package controller

import (
	"stibap_portal/internal/service"
	"stibap_portal/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CatalogController struct {
	CatalogService *service.CatalogService
}

func NewCatalogController(catalogService *service.CatalogService) *CatalogController {
	return &CatalogController{CatalogService: catalogService}
}

// @Summary 课程列表
// @Tags 课程
// @Produce json
// @Param category_id query string false "分类ID"
// @Success 200 {object} util.Response
// @Router /catalog/courses [get]
func (c *CatalogController) Courses(ctx *gin.Context) {
	courses, err := c.CatalogService.Courses(ctx.Request.Context(), ctx.Query("category_id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// @Summary 课程详情
// @Tags 课程
// @Produce json
// @Param id path string true "课程ID"
// @Param similar query int false "相似课程数量"
// @Success 200 {object} util.Response
// @Router /catalog/courses/{id} [get]
func (c *CatalogController) Course(ctx *gin.Context) {
	topK, _ := strconv.Atoi(ctx.DefaultQuery("similar", "0"))
	detail, err := c.CatalogService.Course(ctx.Request.Context(), ctx.Param("id"), topK)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

func (c *CatalogController) Categories(ctx *gin.Context) {
	mainOnly := ctx.Query("main") == "true"
	categories, err := c.CatalogService.Categories(ctx.Request.Context(), mainOnly)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, categories)
}

func (c *CatalogController) Subcategories(ctx *gin.Context) {
	categories, err := c.CatalogService.Subcategories(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, categories)
}

func (c *CatalogController) Difficulties(ctx *gin.Context) {
	difficulties, err := c.CatalogService.Difficulties(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, difficulties)
}
