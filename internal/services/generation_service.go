// internal/services/generation_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/Corphon/StoryReelStudio/internal/config"
	apperrors "github.com/Corphon/StoryReelStudio/internal/errors"
	"github.com/Corphon/StoryReelStudio/internal/llm"
	"github.com/Corphon/StoryReelStudio/internal/utils"

	// 注册可用的提供者
	_ "github.com/Corphon/StoryReelStudio/internal/llm/providers/google"
	_ "github.com/Corphon/StoryReelStudio/internal/llm/providers/openrouter"
)

// GenerationService 对外提供统一的生成调用：
// 执行一次请求/响应循环，强制校验响应形状，并把失败转成类型化错误。
// 本服务不做任何重试，重试策略由调用方决定。
type GenerationService struct {
	providerMutex sync.RWMutex
	provider      llm.Provider
	providerName  string
	isReady       bool
	readyState    string
}

// NewGenerationService 从当前配置创建生成服务
func NewGenerationService() *GenerationService {
	service := &GenerationService{readyState: "未初始化"}

	cfg := config.GetCurrentConfig()
	if cfg == nil {
		service.readyState = "无法读取配置"
		return service
	}

	if cfg.LLMProvider == "" || cfg.LLMConfig == nil || cfg.LLMConfig["api_key"] == "" {
		service.readyState = "API密钥未配置"
		return service
	}

	if err := service.Configure(cfg.LLMProvider, cfg.LLMConfig); err != nil {
		service.readyState = fmt.Sprintf("提供者初始化失败: %v", err)
	}

	return service
}

// NewEmptyGenerationService 创建未配置的生成服务（测试用）
func NewEmptyGenerationService() *GenerationService {
	return &GenerationService{readyState: "API密钥未配置"}
}

// Configure 切换或初始化底层提供者
func (s *GenerationService) Configure(providerName string, providerConfig map[string]string) error {
	provider, err := llm.GetProvider(providerName, providerConfig)
	if err != nil {
		return err
	}

	s.providerMutex.Lock()
	defer s.providerMutex.Unlock()

	s.provider = provider
	s.providerName = providerName
	s.isReady = true
	s.readyState = "就绪"
	return nil
}

// SetProvider 直接注入提供者实例（测试用）
func (s *GenerationService) SetProvider(provider llm.Provider) {
	s.providerMutex.Lock()
	defer s.providerMutex.Unlock()

	s.provider = provider
	s.providerName = provider.GetName()
	s.isReady = true
	s.readyState = "就绪"
}

// Status 返回服务当前的就绪状态描述
func (s *GenerationService) Status() (bool, string) {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.isReady, s.readyState
}

// currentProvider 获取当前提供者；未就绪时返回配置错误
func (s *GenerationService) currentProvider() (llm.Provider, error) {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()

	if !s.isReady || s.provider == nil {
		return nil, apperrors.NewConfigurationError(
			fmt.Sprintf("生成服务未就绪: %s", s.readyState), nil)
	}
	return s.provider, nil
}

// CreateStructured 执行一次结构化生成调用并把结果解码到 out。
// 响应为空、非JSON或缺少契约必需字段时返回 MalformedResponse；
// 远端服务故障返回 TransportFailure。
func (s *GenerationService) CreateStructured(ctx context.Context, contract *GenerationContract, out interface{}) error {
	provider, err := s.currentProvider()
	if err != nil {
		return err
	}

	req := llm.CompletionRequest{
		Prompt:         contract.Prompt,
		SystemPrompt:   contract.SystemPrompt,
		Temperature:    0.3,
		ResponseSchema: contract.ResponseSchema,
	}

	started := time.Now()
	resp, err := provider.CompleteText(ctx, req)
	if err != nil {
		utils.NewGenerationMetrics().RecordError("transport_failure", "generation")
		return apperrors.NewTransportFailure("生成请求失败", err)
	}
	utils.NewGenerationMetrics().RecordTextGeneration(
		string(contract.Kind), provider.GetName(), resp.TokensUsed, time.Since(started))

	text := cleanJSONString(resp.Text)
	if text == "" {
		return apperrors.NewMalformedResponse("生成器返回了空响应", nil)
	}

	// 先解析成字段集合，校验契约必需字段
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return apperrors.NewMalformedResponse("生成器返回的内容不是有效JSON", err)
	}

	for _, required := range contract.RequiredFields {
		raw, exists := fields[required]
		if !exists || string(raw) == "null" {
			return apperrors.NewMalformedResponse(
				fmt.Sprintf("生成结果缺少必需字段: %s", required), nil)
		}
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return apperrors.NewMalformedResponse("生成结果与目标结构不匹配", err)
	}

	utils.GetLogger().Debug("结构化生成完成", map[string]interface{}{
		"kind":   string(contract.Kind),
		"tokens": resp.TokensUsed,
	})

	return nil
}

// GenerateImage 执行一次图像生成调用，返回data URL。
// 响应不含任何内联图像时返回 NoImageProduced。
func (s *GenerationService) GenerateImage(ctx context.Context, contract *GenerationContract) (string, error) {
	provider, err := s.currentProvider()
	if err != nil {
		return "", err
	}

	started := time.Now()
	resp, err := provider.GenerateImage(ctx, llm.ImageRequest{Prompt: contract.Prompt})
	if err != nil {
		utils.NewGenerationMetrics().RecordError("transport_failure", "image")
		return "", apperrors.NewTransportFailure("图像生成请求失败", err)
	}
	utils.NewGenerationMetrics().RecordImageGeneration(provider.GetName(), time.Since(started))

	if len(resp.Images) == 0 {
		return "", apperrors.NewNoImageProduced("响应中未找到图像数据", nil)
	}

	image := resp.Images[0]
	mimeType := image.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}

	return fmt.Sprintf("data:%s;base64,%s", mimeType, image.Data), nil
}

// cleanJSONString 清理JSON字符串：去除Markdown围栏、BOM以及首个括号前的内容
func cleanJSONString(s string) string {
	if s == "" {
		return s
	}

	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)

	// 移除零宽字符及除换行/制表符外的控制字符
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
			return -1
		}
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)

	// 查找第一个 { 或 [，将其之前的内容全部丢弃
	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return strings.TrimSpace(s)
	}

	return strings.TrimSpace(s[start:])
}
