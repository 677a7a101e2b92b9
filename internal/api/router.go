// internal/api/router.go
package api

import (
	"fmt"

	"github.com/Corphon/StoryReelStudio/internal/config"
	"github.com/Corphon/StoryReelStudio/internal/di"
	"github.com/Corphon/StoryReelStudio/internal/services"
	"github.com/gin-gonic/gin"
)

// SetupRouter 配置HTTP路由
func SetupRouter() (*gin.Engine, error) {
	cfg := config.GetCurrentConfig()

	// 获取依赖注入容器
	container := di.GetContainer()

	// 只从容器获取服务，不再创建新实例
	characterService, ok := container.Get("character").(*services.CharacterService)
	if !ok {
		return nil, fmt.Errorf("角色服务未正确初始化")
	}

	scriptService, ok := container.Get("script").(*services.ScriptService)
	if !ok {
		return nil, fmt.Errorf("剧本服务未正确初始化")
	}

	projectService, ok := container.Get("project").(*services.ProjectService)
	if !ok {
		return nil, fmt.Errorf("项目服务未正确初始化")
	}

	exportService, ok := container.Get("export").(*services.ExportService)
	if !ok {
		return nil, fmt.Errorf("导出服务未正确初始化")
	}

	statusService, ok := container.Get("status").(*services.StatusService)
	if !ok {
		return nil, fmt.Errorf("状态服务未正确初始化")
	}

	localeService, ok := container.Get("locale").(*services.LocaleService)
	if !ok {
		return nil, fmt.Errorf("本地化服务未正确初始化")
	}

	generationService, ok := container.Get("generation").(*services.GenerationService)
	if !ok {
		return nil, fmt.Errorf("生成服务未正确初始化")
	}

	statsService, ok := container.Get("stats").(*services.StatsService)
	if !ok {
		return nil, fmt.Errorf("统计服务未正确初始化")
	}

	// 创建推送中心并订阅状态变更
	hub := NewUpdateHub()
	go hub.Run(statusService.Subscribe())

	// 创建API处理器 - 只传递从容器获取的服务
	handler := NewHandler(
		characterService,
		scriptService,
		projectService,
		exportService,
		statusService,
		localeService,
		generationService,
		statsService,
		hub,
	)

	// 创建路由
	if cfg != nil && !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// 启用CORS与请求追踪
	r.Use(corsMiddleware())
	r.Use(RequestIDMiddleware())

	// WebSocket 支持
	r.GET("/ws/updates", handler.UpdatesWebSocket)

	// ===============================
	// API路由组
	// ===============================
	api := r.Group("/api")
	api.Use(DefaultRateLimit())
	{
		// ===============================
		// 角色相关路由
		// ===============================
		charactersGroup := api.Group("/characters")
		{
			charactersGroup.GET("", handler.GetCharacters)
			charactersGroup.POST("", GenerationRateLimit(), handler.GenerateCharacter)
			charactersGroup.POST("/:id/avatar", ImageRateLimit(), handler.GenerateAvatar)
		}

		// ===============================
		// 剧本相关路由
		// ===============================
		scriptsGroup := api.Group("/scripts")
		{
			scriptsGroup.GET("", handler.GetScripts)
			scriptsGroup.POST("", GenerationRateLimit(), handler.GenerateScript)
			scriptsGroup.POST("/:id/scenes", GenerationRateLimit(), handler.AddScene)
			scriptsGroup.POST("/:id/scenes/:scene_id/storyboard", ImageRateLimit(), handler.GenerateStoryboard)
		}

		// ===============================
		// 项目导入导出路由
		// ===============================
		projectGroup := api.Group("/project")
		{
			projectGroup.GET("/export", handler.ExportProject)
			projectGroup.POST("/import", handler.ImportProject)
		}

		// ===============================
		// 语言相关路由
		// ===============================
		api.GET("/language", handler.GetLanguage)
		api.PUT("/language", handler.SetLanguage)

		// ===============================
		// 状态查询路由
		// ===============================
		api.GET("/status", handler.GetAllStatuses)
		api.GET("/status/:entity_id", handler.GetStatus)

		// ===============================
		// LLM配置相关路由
		// ===============================
		llmGroup := api.Group("/llm")
		{
			llmGroup.GET("/status", handler.GetLLMStatus)
			llmGroup.PUT("/config", handler.UpdateLLMConfig)
		}

		// ===============================
		// 统计与健康相关路由
		// ===============================
		api.GET("/stats", handler.GetStats)

		configGroup := api.Group("/config")
		{
			configGroup.GET("/health", handler.GetConfigHealth)
			configGroup.GET("/metrics", handler.GetMetrics)
		}

		// 调试路由
		api.GET("/ws/status", handler.GetWebSocketStatus)
	}

	return r, nil
}

// corsMiddleware 实现跨域资源共享
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
