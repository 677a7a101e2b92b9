// internal/api/handlers.go
package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Corphon/StoryReelStudio/internal/config"
	apperrors "github.com/Corphon/StoryReelStudio/internal/errors"
	"github.com/Corphon/StoryReelStudio/internal/models"
	"github.com/Corphon/StoryReelStudio/internal/services"
	"github.com/Corphon/StoryReelStudio/internal/utils"
	"github.com/gin-gonic/gin"
)

// Handler 处理API请求
type Handler struct {
	// 核心服务
	CharacterService  *services.CharacterService  // 角色服务
	ScriptService     *services.ScriptService     // 剧本服务
	ProjectService    *services.ProjectService    // 项目存储服务
	ExportService     *services.ExportService     // 导出服务
	StatusService     *services.StatusService     // 状态跟踪服务
	LocaleService     *services.LocaleService     // 本地化服务
	GenerationService *services.GenerationService // 生成服务
	StatsService      *services.StatsService      // 统计服务
	Hub               *UpdateHub                  // WebSocket 推送中心
	Response          *ResponseHelper             // 响应助手
}

// NewHandler 创建API处理器
func NewHandler(
	characterService *services.CharacterService,
	scriptService *services.ScriptService,
	projectService *services.ProjectService,
	exportService *services.ExportService,
	statusService *services.StatusService,
	localeService *services.LocaleService,
	generationService *services.GenerationService,
	statsService *services.StatsService,
	hub *UpdateHub,
) *Handler {
	return &Handler{
		CharacterService:  characterService,
		ScriptService:     scriptService,
		ProjectService:    projectService,
		ExportService:     exportService,
		StatusService:     statusService,
		LocaleService:     localeService,
		GenerationService: generationService,
		StatsService:      statsService,
		Hub:               hub,
		Response:          NewResponseHelper(),
	}
}

// GenerateCharacterRequest 角色生成的请求结构
type GenerateCharacterRequest struct {
	Genre     string `json:"genre"`              // 类型/背景设定
	Archetype string `json:"archetype"`          // 角色原型（可选）
	Gender    string `json:"gender"`             // 性别标签
	Style     string `json:"style"`              // 视觉风格标签
	Language  string `json:"language,omitempty"` // 输出语言，缺省用当前界面语言
}

// GenerateScriptRequest 剧本生成的请求结构
type GenerateScriptRequest struct {
	Title    string   `json:"title"`              // 标题
	Premise  string   `json:"premise"`            // 故事前提
	CastIDs  []string `json:"castIds,omitempty"`  // 参演角色ID列表（可选）
	Platform string   `json:"platform"`           // 目标平台
	Format   string   `json:"format"`             // 视频形态
	Tone     string   `json:"tone"`               // 基调
	Language string   `json:"language,omitempty"` // 输出语言，缺省用当前界面语言
}

// SetLanguageRequest 切换界面语言的请求结构
type SetLanguageRequest struct {
	Language string `json:"language"`
}

// UpdateLLMConfigRequest 更新LLM配置的请求结构
type UpdateLLMConfigRequest struct {
	Provider string            `json:"provider"`
	Config   map[string]string `json:"config"`
}

// APIResponse 标准API响应格式
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"` // 用于调试和追踪
}

// APIError 标准错误格式
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ------------------------------------------------
// respondServiceError 把服务层错误翻译为HTTP状态与错误代码
func (h *Handler) respondServiceError(c *gin.Context, err error) {
	switch {
	case apperrors.IsConfigurationError(err):
		h.Response.Error(c, http.StatusServiceUnavailable, ErrorConfiguration, err.Error())
	case apperrors.IsTransportFailure(err):
		h.Response.Error(c, http.StatusBadGateway, ErrorTransportFailure, err.Error())
	case apperrors.IsMalformedResponse(err):
		h.Response.Error(c, http.StatusBadGateway, ErrorMalformedResponse, err.Error())
	case apperrors.IsNoImageProduced(err):
		h.Response.Error(c, http.StatusBadGateway, ErrorNoImageProduced, err.Error())
	case apperrors.IsInvalidProjectFile(err):
		h.Response.Error(c, http.StatusBadRequest, ErrorInvalidProjectFile, err.Error())
	case apperrors.IsNotFoundError(err):
		h.Response.Error(c, http.StatusNotFound, ErrorNotFound, err.Error())
	case apperrors.IsConflictError(err):
		h.Response.Error(c, http.StatusConflict, ErrorConflict, err.Error())
	case apperrors.IsValidationError(err):
		h.Response.Error(c, http.StatusBadRequest, ErrorValidation, err.Error())
	default:
		h.Response.InternalError(c, "内部服务错误", err.Error())
	}
}

// requestLanguage 解析请求中的语言参数，缺省用当前界面语言
func (h *Handler) requestLanguage(raw string) (models.Language, error) {
	if raw == "" {
		return h.LocaleService.Language(), nil
	}

	language := models.Language(raw)
	if !language.IsValid() {
		return "", apperrors.NewValidationError("不支持的语言: "+raw, nil)
	}
	return language, nil
}

// ========================================
// 角色相关处理器
// ========================================

// GetCharacters 获取全部角色
func (h *Handler) GetCharacters(c *gin.Context) {
	h.Response.Success(c, h.ProjectService.Characters())
}

// GenerateCharacter 生成新角色档案
func (h *Handler) GenerateCharacter(c *gin.Context) {
	var req GenerateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求格式不正确", err.Error())
		return
	}

	if req.Genre == "" {
		h.Response.BadRequest(c, "缺少genre字段")
		return
	}

	language, err := h.requestLanguage(req.Language)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	character, err := h.CharacterService.GenerateCharacter(c.Request.Context(), services.CharacterProfileParams{
		Genre:     req.Genre,
		Archetype: req.Archetype,
		Gender:    req.Gender,
		Style:     req.Style,
		Language:  language,
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.StatsService.RecordGeneration(services.StatCharacter)
	h.Hub.BroadcastEvent("character_added", character)
	h.Response.Created(c, character, "角色生成成功")
}

// GenerateAvatar 为角色生成形象图
func (h *Handler) GenerateAvatar(c *gin.Context) {
	characterID := c.Param("id")
	if characterID == "" {
		h.Response.BadRequest(c, "缺少角色ID")
		return
	}

	avatarURL, err := h.CharacterService.GenerateAvatar(c.Request.Context(), characterID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.StatsService.RecordGeneration(services.StatImage)
	h.Hub.BroadcastEvent("character_updated", gin.H{
		"id":        characterID,
		"avatarUrl": avatarURL,
	})
	h.Response.Success(c, gin.H{"avatarUrl": avatarURL}, "形象图生成成功")
}

// ========================================
// 剧本相关处理器
// ========================================

// GetScripts 获取全部剧本
func (h *Handler) GetScripts(c *gin.Context) {
	h.Response.Success(c, h.ProjectService.Scripts())
}

// GenerateScript 生成新剧本
func (h *Handler) GenerateScript(c *gin.Context) {
	var req GenerateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求格式不正确", err.Error())
		return
	}

	if req.Title == "" || req.Premise == "" {
		h.Response.BadRequest(c, "缺少title或premise字段")
		return
	}

	platform := models.Platform(req.Platform)
	if !platform.IsValid() {
		h.Response.BadRequest(c, "不支持的平台: "+req.Platform)
		return
	}

	format := models.VideoFormat(req.Format)
	if !format.IsValid() {
		h.Response.BadRequest(c, "不支持的视频形态: "+req.Format)
		return
	}

	tone := models.Tone(req.Tone)
	if !tone.IsValid() {
		h.Response.BadRequest(c, "不支持的基调: "+req.Tone)
		return
	}

	language, err := h.requestLanguage(req.Language)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	// 从项目存储解析参演角色，未知ID直接拒绝
	cast := make([]models.Character, 0, len(req.CastIDs))
	for _, id := range req.CastIDs {
		character, exists := h.ProjectService.GetCharacter(id)
		if !exists {
			h.Response.Error(c, http.StatusNotFound, ErrorCharacterNotFound,
				"角色不存在: "+id)
			return
		}
		cast = append(cast, character)
	}

	script, err := h.ScriptService.GenerateScript(c.Request.Context(), services.ScriptParams{
		Title:    req.Title,
		Premise:  req.Premise,
		Cast:     cast,
		Platform: platform,
		Format:   format,
		Tone:     tone,
		Language: language,
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.StatsService.RecordGeneration(services.StatScript)
	h.Hub.BroadcastEvent("script_added", script)
	h.Response.Created(c, script, "剧本生成成功")
}

// AddScene 为剧本续写下一个场景
func (h *Handler) AddScene(c *gin.Context) {
	scriptID := c.Param("id")
	if scriptID == "" {
		h.Response.BadRequest(c, "缺少剧本ID")
		return
	}

	scene, err := h.ScriptService.AddScene(c.Request.Context(), scriptID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.StatsService.RecordGeneration(services.StatScene)
	h.Hub.BroadcastEvent("scene_added", gin.H{
		"scriptId": scriptID,
		"scene":    scene,
	})
	h.Response.Created(c, scene, "场景续写成功")
}

// GenerateStoryboard 为场景生成分镜概念图
func (h *Handler) GenerateStoryboard(c *gin.Context) {
	scriptID := c.Param("id")
	sceneID := c.Param("scene_id")
	if scriptID == "" || sceneID == "" {
		h.Response.BadRequest(c, "缺少剧本ID或场景ID")
		return
	}

	storyboardURL, err := h.ScriptService.GenerateStoryboard(c.Request.Context(), scriptID, sceneID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.StatsService.RecordGeneration(services.StatImage)
	h.Hub.BroadcastEvent("scene_updated", gin.H{
		"scriptId":      scriptID,
		"sceneId":       sceneID,
		"storyboardUrl": storyboardURL,
	})
	h.Response.Success(c, gin.H{"storyboardUrl": storyboardURL}, "分镜图生成成功")
}

// ========================================
// 项目导入导出处理器
// ========================================

// ExportProject 导出项目为JSON文档
// save=true 时同时在服务端保留一份副本
func (h *Handler) ExportProject(c *gin.Context) {
	data, err := h.ExportService.Export()
	if err != nil {
		h.Response.Error(c, http.StatusInternalServerError, ErrorExportFailed,
			"导出项目失败", err.Error())
		return
	}

	if c.DefaultQuery("save", "false") == "true" {
		if _, err := h.ExportService.ExportToFile(); err != nil {
			h.Response.Error(c, http.StatusInternalServerError, ErrorExportFailed,
				"保存导出副本失败", err.Error())
			return
		}
	}

	filename := fmt.Sprintf("project_%s.json", time.Now().Format("20060102_150405"))
	h.Response.FileResponse(c, data, filename, "application/json; charset=utf-8")
}

// ImportProject 导入项目JSON文档
// 文档校验失败时存储保持完全不变
func (h *Handler) ImportProject(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.Response.BadRequest(c, "读取请求体失败", err.Error())
		return
	}

	if err := h.ExportService.Import(data); err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.Hub.BroadcastEvent("project_loaded", gin.H{
		"characters": len(h.ProjectService.Characters()),
		"scripts":    len(h.ProjectService.Scripts()),
	})
	h.Response.Success(c, gin.H{
		"characters": len(h.ProjectService.Characters()),
		"scripts":    len(h.ProjectService.Scripts()),
	}, h.LocaleService.T("projectLoaded"))
}

// ========================================
// 语言与状态处理器
// ========================================

// GetLanguage 获取当前界面语言与文案表
func (h *Handler) GetLanguage(c *gin.Context) {
	h.Response.Success(c, gin.H{
		"language":     h.LocaleService.Language(),
		"translations": h.LocaleService.Translations(),
	})
}

// SetLanguage 切换界面语言
func (h *Handler) SetLanguage(c *gin.Context) {
	var req SetLanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求格式不正确", err.Error())
		return
	}

	if err := h.LocaleService.SetLanguage(models.Language(req.Language)); err != nil {
		h.respondServiceError(c, err)
		return
	}

	h.Hub.BroadcastEvent("language_changed", gin.H{"language": req.Language})
	h.Response.Success(c, gin.H{
		"language":     h.LocaleService.Language(),
		"translations": h.LocaleService.Translations(),
	})
}

// GetStatus 查询单个实体的生成状态
func (h *Handler) GetStatus(c *gin.Context) {
	entityID := c.Param("entity_id")
	if entityID == "" {
		h.Response.BadRequest(c, "缺少实体ID")
		return
	}

	h.Response.Success(c, h.StatusService.Get(entityID))
}

// GetAllStatuses 查询全部非空闲状态
func (h *Handler) GetAllStatuses(c *gin.Context) {
	h.Response.Success(c, h.StatusService.All())
}

// ========================================
// LLM配置处理器
// ========================================

// GetLLMStatus 查询生成服务就绪状态
func (h *Handler) GetLLMStatus(c *gin.Context) {
	ready, state := h.GenerationService.Status()

	cfg := config.GetCurrentConfig()
	provider := ""
	model := ""
	if cfg != nil {
		provider = cfg.LLMProvider
		if cfg.LLMConfig != nil {
			model = cfg.LLMConfig["default_model"]
		}
	}

	h.Response.Success(c, gin.H{
		"ready":    ready,
		"state":    state,
		"provider": provider,
		"model":    model,
	})
}

// UpdateLLMConfig 更新LLM提供者配置并重新初始化生成服务
func (h *Handler) UpdateLLMConfig(c *gin.Context) {
	var req UpdateLLMConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求格式不正确", err.Error())
		return
	}

	if req.Provider == "" || req.Config == nil || req.Config["api_key"] == "" {
		h.Response.Error(c, http.StatusBadRequest, ErrorLLMConfigInvalid,
			"provider与config.api_key不能为空")
		return
	}

	if err := h.GenerationService.Configure(req.Provider, req.Config); err != nil {
		h.Response.Error(c, http.StatusBadRequest, ErrorLLMConfigInvalid,
			"提供者初始化失败", err.Error())
		return
	}

	if err := config.UpdateLLMConfig(req.Provider, req.Config); err != nil {
		h.Response.Error(c, http.StatusInternalServerError, ErrorLLMConfigInvalid,
			"保存配置失败", err.Error())
		return
	}

	ready, state := h.GenerationService.Status()
	h.Response.Success(c, gin.H{"ready": ready, "state": state}, "配置已更新")
}

// ========================================
// 统计与健康处理器
// ========================================

// GetStats 获取创作活动统计
func (h *Handler) GetStats(c *gin.Context) {
	h.Response.Success(c, h.StatsService.GetUsageStats())
}

// GetMetrics 获取运行指标快照
func (h *Handler) GetMetrics(c *gin.Context) {
	h.Response.Success(c, utils.GetMetricsCollector().GetMetrics())
}

// GetConfigHealth 配置健康检查
func (h *Handler) GetConfigHealth(c *gin.Context) {
	cfg := config.GetCurrentConfig()
	ready, state := h.GenerationService.Status()

	issues := make([]string, 0)
	if cfg == nil {
		issues = append(issues, "配置未加载")
	} else {
		if cfg.LLMProvider == "" {
			issues = append(issues, "未设置LLM提供者")
		}
		if cfg.LLMConfig == nil || cfg.LLMConfig["api_key"] == "" {
			issues = append(issues, "未配置API密钥")
		}
	}
	if !ready {
		issues = append(issues, "生成服务未就绪: "+state)
	}

	h.Response.Success(c, gin.H{
		"healthy": len(issues) == 0,
		"issues":  issues,
	})
}

// ========================================
// WebSocket 处理器
// ========================================

// UpdatesWebSocket 处理状态推送 WebSocket 连接
func (h *Handler) UpdatesWebSocket(c *gin.Context) {
	h.Hub.ServeUpdates(c)
}

// GetWebSocketStatus 获取 WebSocket 连接状态（调试用）
func (h *Handler) GetWebSocketStatus(c *gin.Context) {
	status := h.Hub.GetStatus()
	status["timestamp"] = time.Now().Format(time.RFC3339)

	c.JSON(http.StatusOK, status)
}
