package app

import (
	"stibap_portal/internal/middleware"
	"stibap_portal/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services) {
	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要登录的路由
	authGroup := router.Group("")
	authGroup.Use(middleware.AuthGuard(s.auth))
	{
		authGroup.POST("/auth/logout", c.auth.Logout)
		authGroup.POST("/auth/refresh", c.auth.Refresh)
		authGroup.POST("/auth/password", c.auth.ChangePassword)

		onboarding := authGroup.Group("/onboarding")
		{
			onboarding.GET("/status", c.onboarding.Status)
			onboarding.GET("/preferences", c.onboarding.GetPreferences)
			onboarding.POST("/preferences", c.onboarding.CreatePreferences)
			onboarding.PUT("/preferences", c.onboarding.UpdatePreferences)
			onboarding.POST("/complete", c.onboarding.Complete)
		}

		quiz := authGroup.Group("/quiz")
		{
			quiz.GET("/questions", c.quiz.Questions)
			quiz.POST("/submit", c.quiz.Submit)
			quiz.POST("/predict", c.quiz.Predict)
		}
	}

	// 3. 需要完成引导的学生路由
	a.registerStudentRoutes(router, c, s)

	// 4. 管理员相关接口
	a.registerAdminRoutes(router, c, s)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("")
	{
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
		public.GET("/auth/me", c.auth.Me)

		catalog := public.Group("/catalog")
		{
			catalog.GET("/categories", c.catalog.Categories)
			catalog.GET("/categories/:id/subcategories", c.catalog.Subcategories)
			catalog.GET("/difficulties", c.catalog.Difficulties)
			catalog.GET("/courses", c.catalog.Courses)
			catalog.GET("/courses/:id", c.catalog.Course)
		}
	}
}

func (a *App) registerStudentRoutes(router *gin.Engine, c *controllers, s *services) {
	student := router.Group("")
	student.Use(middleware.OnboardingGuard(s.auth, s.onboarding))
	{
		student.GET("/dashboard", c.dashboard.GetDashboard)
		student.GET("/dashboard/events", c.dashboard.Events)
		student.GET("/progress", c.dashboard.Progress)
		student.POST("/progress", c.dashboard.UpdateProgress)

		player := student.Group("/player")
		{
			player.POST("/courses/:courseId/open", c.player.Open)
			player.GET("", c.player.View)
			player.POST("/retry", c.player.Retry)
			player.POST("/select", c.player.Select)
			player.POST("/modules/:moduleId/toggle", c.player.ToggleModule)
			player.POST("/complete", c.player.Complete)
			player.POST("/next", c.player.Next)
			player.POST("/prev", c.player.Prev)
		}
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, s *services) {
	admin := router.Group("/admin")
	admin.Use(middleware.AdminGuard(s.auth))
	{
		admin.GET("/users", c.admin.Users)
		admin.PUT("/users/:id", c.admin.UpdateUser)
		admin.GET("/courses", c.admin.Courses)
		admin.POST("/courses", c.admin.CreateCourse)
		admin.PUT("/courses/:id", c.admin.UpdateCourse)
		admin.DELETE("/courses/:id", c.admin.DeleteCourse)
		admin.POST("/courses/import", c.admin.ImportCourse)
		admin.POST("/reload-courses", c.admin.ReloadCourses)
	}
}
