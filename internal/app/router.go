package app

import (
	"course_exam_backend/docs"
	"course_exam_backend/internal/config"
	"course_exam_backend/internal/middleware"
	"course_exam_backend/internal/model"
	"course_exam_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 课程浏览(无需登录)
	a.registerCatalogRoutes(router, c, cfg)

	// 2. 考试与成绩(需要登录)
	a.registerExamRoutes(router, c, cfg)

	// 3. 账号与系统接口
	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.Profile)

		// 教师相关接口
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerCatalogRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	catalog := router.Group("/courses")
	catalog.Use(middleware.TryAuthMiddleware(cfg))
	{
		catalog.GET("/", c.catalog.ListCourses)
		catalog.GET("/:id/", c.catalog.GetCourse)
	}
}

func (a *App) registerExamRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	auth := middleware.AuthMiddleware(cfg)

	lessons := router.Group("/lessons")
	lessons.Use(auth)
	{
		lessons.GET("/:id/submit/", c.exam.ExamForm)
		lessons.POST("/:id/submit/", c.exam.Submit)
	}

	submissions := router.Group("/submissions")
	submissions.Use(auth)
	{
		submissions.GET("/:id/result/", c.exam.Result)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerTeacherRoutes(group *gin.RouterGroup, c *controllers) {
	teacher := group.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		teacher.POST("/courses", c.authoring.CreateCourse)
		teacher.POST("/courses/:id/lessons", c.authoring.CreateLesson)
		teacher.POST("/lessons/:id/questions", c.authoring.CreateQuestion)
		teacher.GET("/lessons/:id/submissions", c.authoring.ListSubmissions)
		teacher.DELETE("/choices/:id", c.authoring.DeleteChoice)
		teacher.DELETE("/submissions/:id", c.authoring.DeleteSubmission)
	}
}
