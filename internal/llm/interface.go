// internal/llm/interface.go
package llm

import (
	"context"
	"errors"
)

// 错误定义
var ErrUnknownProvider = errors.New("未知的AI提供者")

// CompletionRequest 请求参数标准化
// ResponseSchema 非空时要求提供者启用结构化输出约束
type CompletionRequest struct {
	Prompt         string                 `json:"prompt"`
	SystemPrompt   string                 `json:"system_prompt,omitempty"`
	MaxTokens      int                    `json:"max_tokens,omitempty"`
	Temperature    float32                `json:"temperature,omitempty"`
	Model          string                 `json:"model,omitempty"`
	ResponseSchema map[string]interface{} `json:"response_schema,omitempty"`
}

// CompletionResponse 响应结构标准化
type CompletionResponse struct {
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason,omitempty"`
	TokensUsed   int    `json:"tokens_used,omitempty"`
	ModelName    string `json:"model_name,omitempty"`
	ProviderName string `json:"provider_name,omitempty"`
}

// ImageRequest 图像生成请求
type ImageRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
}

// InlineImage 响应中内联返回的一张图像
type InlineImage struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"` // base64编码的图像字节
}

// ImageResponse 图像生成响应；Images 可能为空，由调用方判定
type ImageResponse struct {
	Images       []InlineImage `json:"images"`
	ModelName    string        `json:"model_name,omitempty"`
	ProviderName string        `json:"provider_name,omitempty"`
}

// Provider 定义所有LLM提供者必须实现的接口
type Provider interface {
	// 初始化提供者，传入配置
	Initialize(config map[string]string) error

	// 获取提供者名称
	GetName() string

	// 获取支持的模型列表
	GetSupportedModels() []string

	// 文本生成（支持结构化输出约束）
	CompleteText(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// 图像生成
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error)
}

// 注册表和工厂函数类型
type ProviderFactory func() Provider

var providers = make(map[string]ProviderFactory)

// Register 注册提供者工厂
func Register(name string, factory ProviderFactory) {
	providers[name] = factory
}

// GetProvider 创建指定名称的提供者实例
func GetProvider(name string, config map[string]string) (Provider, error) {
	factory, exists := providers[name]
	if !exists {
		return nil, ErrUnknownProvider
	}

	provider := factory()
	err := provider.Initialize(config)
	return provider, err
}

// ListProviders 返回所有已注册的提供者名称
func ListProviders() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	return names
}
