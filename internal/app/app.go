// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Corphon/StoryReelStudio/internal/config"
	"github.com/Corphon/StoryReelStudio/internal/di"
	"github.com/Corphon/StoryReelStudio/internal/models"
	"github.com/Corphon/StoryReelStudio/internal/services"
	"github.com/Corphon/StoryReelStudio/internal/storage"
	"github.com/Corphon/StoryReelStudio/internal/utils"
)

// Server 服务器接口，便于测试时注入模拟实现
type Server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// App 应用实例
type App struct {
	config   *config.AppConfig
	router   http.Handler
	server   Server
	stopChan chan os.Signal
}

// 全局应用实例
var instance *App

// GetApp 获取应用单例
func GetApp() *App {
	if instance == nil {
		instance = &App{
			stopChan: make(chan os.Signal, 1),
		}
	}
	return instance
}

// Initialize 初始化应用：配置、日志、服务
func Initialize(configPath string) error {
	if err := config.InitConfig(configPath); err != nil {
		return fmt.Errorf("初始化配置失败: %w", err)
	}

	cfg := config.GetCurrentConfig()
	GetApp().config = cfg

	if err := initLogger(cfg.LogDir); err != nil {
		return fmt.Errorf("初始化日志系统失败: %w", err)
	}

	if err := InitServices(); err != nil {
		return fmt.Errorf("初始化服务失败: %w", err)
	}

	return nil
}

// initLogger 初始化日志系统，日志文件按日期命名
func initLogger(logDir string) error {
	logFile := filepath.Join(logDir, fmt.Sprintf("app_%s.log", time.Now().Format("2006-01-02")))
	return utils.InitLogger(logFile)
}

// InitServices 按依赖顺序初始化所有服务并注册到容器
func InitServices() error {
	container := di.GetContainer()
	cfg := config.GetCurrentConfig()

	// 基础服务：无依赖
	generationService := services.NewGenerationService()
	container.Register("generation", generationService)

	contractService := services.NewContractService()
	container.Register("contract", contractService)

	normalizerService := services.NewNormalizerService(nil)
	container.Register("normalizer", normalizerService)

	continuityService := services.NewContinuityService()
	container.Register("continuity", continuityService)

	projectService := services.NewProjectService()
	container.Register("project", projectService)

	statusService := services.NewStatusService()
	container.Register("status", statusService)

	localeService := services.NewLocaleService(models.Language(cfg.DefaultLanguage))
	container.Register("locale", localeService)

	// 文件存储：导出副本目录
	exportStore, err := storage.NewFileStore(filepath.Join(cfg.DataDir, "exports"))
	if err != nil {
		return fmt.Errorf("初始化导出存储失败: %w", err)
	}
	container.Register("exportStore", exportStore)

	exportService := services.NewExportService(projectService, exportStore)
	container.Register("export", exportService)

	statsStore, err := storage.NewFileStore(filepath.Join(cfg.DataDir, "stats"))
	if err != nil {
		return fmt.Errorf("初始化统计存储失败: %w", err)
	}
	statsService := services.NewStatsService(statsStore)
	container.Register("stats", statsService)

	// 编排服务：依赖基础服务
	characterService := services.NewCharacterService(
		contractService, generationService, normalizerService, projectService, statusService)
	container.Register("character", characterService)

	scriptService := services.NewScriptService(
		contractService, generationService, normalizerService, continuityService,
		projectService, statusService)
	container.Register("script", scriptService)

	utils.GetLogger().Info("服务初始化完成", map[string]interface{}{
		"services": len(container.GetNames()),
	})

	return nil
}

// SetRouter 设置HTTP路由
func (a *App) SetRouter(router http.Handler) {
	a.router = router
}

// Run 启动服务器并等待退出信号
func Run() error {
	app := GetApp()

	if app.server == nil {
		app.server = &http.Server{
			Addr:    ":" + app.config.Port,
			Handler: app.router,
		}
	}

	go func() {
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("启动服务器失败: %v", err)
		}
	}()

	signal.Notify(app.stopChan, syscall.SIGINT, syscall.SIGTERM)
	<-app.stopChan

	log.Println("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("服务器关闭失败: %w", err)
	}

	app.cleanup()
	log.Println("服务器已关闭")
	return nil
}

// cleanup 清理资源
func (a *App) cleanup() {
	container := di.GetContainer()

	if statsService, ok := container.Get("stats").(*services.StatsService); ok && statsService != nil {
		if err := statsService.Close(); err != nil {
			utils.GetLogger().Warn("关闭统计服务失败", map[string]interface{}{"error": err.Error()})
		}
	}

	utils.GetLogger().Close()
}

// GetConfig 获取应用配置
func (a *App) GetConfig() *config.AppConfig {
	return a.config
}

// GetDIContainer 获取依赖注入容器
func GetDIContainer() *di.Container {
	return di.GetContainer()
}

// IsDebugMode 检查是否为调试模式
func IsDebugMode() bool {
	if instance == nil || instance.config == nil {
		return false
	}
	return instance.config.DebugMode
}
