package controller

import (
	"stibap_portal/internal/model"
	"stibap_portal/internal/service"
	"stibap_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	AdminService *service.AdminService
}

func NewAdminController(adminService *service.AdminService) *AdminController {
	return &AdminController{AdminService: adminService}
}

func (c *AdminController) Users(ctx *gin.Context) {
	users, err := c.AdminService.Users(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, users)
}

func (c *AdminController) UpdateUser(ctx *gin.Context) {
	var req model.AdminUserUpdate
	if !bindJSON(ctx, &req) {
		return
	}
	if err := c.AdminService.UpdateUser(ctx.Request.Context(), ctx.Param("id"), req); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

func (c *AdminController) Courses(ctx *gin.Context) {
	courses, err := c.AdminService.Courses(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

func (c *AdminController) CreateCourse(ctx *gin.Context) {
	var req model.CourseInput
	if !bindJSON(ctx, &req) {
		return
	}
	course, err := c.AdminService.CreateCourse(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

func (c *AdminController) UpdateCourse(ctx *gin.Context) {
	var req model.CourseInput
	if !bindJSON(ctx, &req) {
		return
	}
	course, err := c.AdminService.UpdateCourse(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

func (c *AdminController) DeleteCourse(ctx *gin.Context) {
	if err := c.AdminService.DeleteCourse(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 导入课程包
// @Description 上传 zip 课程包；带 course_id 时覆盖已有课程
// @Tags 管理
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "课程包"
// @Param course_id query string false "课程ID"
// @Success 200 {object} util.Response
// @Router /admin/courses/import [post]
func (c *AdminController) ImportCourse(ctx *gin.Context) {
	header, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "Please select a course package (.zip) to upload.")
		return
	}
	file, err := header.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	result, err := c.AdminService.ImportBundle(ctx.Request.Context(), header.Filename, file, ctx.Query("course_id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

func (c *AdminController) ReloadCourses(ctx *gin.Context) {
	if err := c.AdminService.ReloadCourses(ctx.Request.Context()); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Course index reloaded"})
}
