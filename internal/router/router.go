package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"viralyst_dev_v1_202608/internal/controller"
	"viralyst_dev_v1_202608/internal/middleware"

	_ "viralyst_dev_v1_202608/docs"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	sessionCtl *controller.SessionController,
	segmentCtl *controller.SegmentController,
	usageCtl *controller.UsageController) {
	r.Use(middleware.CORS())

	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. API 路由组
	api := r.Group("/api")
	{
		// session 创作会话
		sessions := api.Group("/sessions")
		{
			// POST /api/sessions
			sessions.POST("", sessionCtl.CreateSession)
			sessions.GET("/:session_id", sessionCtl.GetSession)

			// 整批生成带冷却，防止连点打穿配额
			sessions.POST("/:session_id/generate",
				middleware.OpRateLimit(middleware.OpTypeGenerate, 0),
				sessionCtl.Generate)

			// SSE 进度流
			sessions.GET("/:session_id/stream", sessionCtl.StreamProgress)

			// 单卡操作
			cards := sessions.Group("/:session_id/cards/:platform/:category")
			{
				cards.PATCH("", sessionCtl.UpdateCard)
				cards.POST("/refine",
					middleware.OpRateLimit(middleware.OpTypeRefine, 0),
					sessionCtl.RefineCard)
				cards.POST("/image",
					middleware.OpRateLimit(middleware.OpTypeImage, 0),
					sessionCtl.RegenerateImage)
				cards.POST("/upload", sessionCtl.SetUserImage)
			}
		}

		// segment 受众细分
		segments := api.Group("/segments")
		{
			segments.POST("/analyze",
				middleware.OpRateLimit(middleware.OpTypeSegment, 0),
				segmentCtl.AnalyzeSegments)
			segments.GET("/personas", segmentCtl.ListPersonas)
		}

		// usage AI 用量统计
		usage := api.Group("/usage")
		{
			usage.GET("", usageCtl.GetUsage)
			usage.GET("/daily", usageCtl.GetDailyUsage)
			usage.GET("/sessions/:session_id", usageCtl.GetSessionUsage)
		}
	}
}
