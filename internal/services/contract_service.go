// internal/services/contract_service.go
package services

import (
	"fmt"
	"strings"

	"github.com/Corphon/StoryReelStudio/internal/models"
)

// ContractKind 生成契约的种类
type ContractKind string

const (
	ContractCharacterProfile ContractKind = "character_profile"
	ContractScript           ContractKind = "script"
	ContractNextScene        ContractKind = "next_scene"
	ContractImage            ContractKind = "image"
)

// GenerationContract 一次生成调用的完整约束：
// 提示词、系统指令、结构化输出schema以及验收所需的必需字段集
type GenerationContract struct {
	Kind           ContractKind
	Prompt         string
	SystemPrompt   string
	ResponseSchema map[string]interface{}
	RequiredFields []string
}

// ContractService 为每种生成类型构建提示词与输出约束
type ContractService struct{}

// NewContractService 创建契约构建服务
func NewContractService() *ContractService {
	return &ContractService{}
}

// 各平台的固定指令文本（查表，不做推断）
var platformInstructions = map[models.Platform]string{
	models.PlatformYouTube:   "Optimize for YouTube (Retention, Intro, Outro).",
	models.PlatformTikTok:    "Optimize for TikTok (Trends, Fast cuts).",
	models.PlatformInstagram: "Optimize for Instagram Reels (Aesthetic, Engaging).",
	models.PlatformTwitter:   "Optimize for X/Twitter (Concise, Punchy).",
	models.PlatformLinkedIn:  "Optimize for LinkedIn (Professional, Value-driven).",
}

// 各基调的固定指令文本
var toneInstructions = map[models.Tone]string{
	models.ToneFunny:         "Tone: Funny, Humorous, Comedic.",
	models.ToneSerious:       "Tone: Serious, Formal, Grave.",
	models.ToneEducational:   "Tone: Educational, Informative.",
	models.ToneDramatic:      "Tone: Dramatic, Emotional, Intense.",
	models.ToneInspirational: "Tone: Inspirational, Motivational.",
	models.ToneCasual:        "Tone: Casual, Conversational, Vlog-style.",
}

// CharacterProfileParams 角色档案生成参数
// Gender与Style由调用方指定，生成器无权覆盖
type CharacterProfileParams struct {
	Genre     string
	Archetype string
	Gender    string
	Style     string
	Language  models.Language
}

// ScriptParams 剧本生成参数
type ScriptParams struct {
	Title    string
	Premise  string
	Cast     []models.Character
	Platform models.Platform
	Format   models.VideoFormat
	Tone     models.Tone
	Language models.Language
}

// CharacterProfile 构建角色档案生成契约
func (s *ContractService) CharacterProfile(p CharacterProfileParams) *GenerationContract {
	archetype := p.Archetype
	if archetype == "" {
		archetype = "Main Protagonist"
	}

	prompt := fmt.Sprintf(`Create a detailed character profile for a %s story.
Archetype/Role: %s.
Gender: %s.
Visual Style: %s.
%s
Include a highly descriptive 'appearance' field IN ENGLISH that describes the character in the style of %s. The 'appearance' field must stay in English even if the rest of the output is in another language.`,
		p.Genre, archetype, p.Gender, p.Style, languageInstruction(p.Language), p.Style)

	return &GenerationContract{
		Kind:   ContractCharacterProfile,
		Prompt: prompt,
		ResponseSchema: map[string]interface{}{
			"type": "OBJECT",
			"properties": map[string]interface{}{
				"name":        map[string]interface{}{"type": "STRING"},
				"role":        map[string]interface{}{"type": "STRING"},
				"age":         map[string]interface{}{"type": "INTEGER"},
				"personality": map[string]interface{}{"type": "STRING"},
				"backstory":   map[string]interface{}{"type": "STRING"},
				"appearance": map[string]interface{}{
					"type":        "STRING",
					"description": fmt.Sprintf("A detailed visual description suitable for image generation in %s style (ALWAYS IN ENGLISH)", p.Style),
				},
			},
			"required": []string{"name", "role", "age", "personality", "backstory", "appearance"},
		},
		RequiredFields: []string{"name", "role", "age", "personality", "backstory", "appearance"},
	}
}

// Script 构建剧本生成契约
// 未提供角色时退化为"自创角色"而不是失败
func (s *ContractService) Script(p ScriptParams) *GenerationContract {
	characterContext := "No specific characters provided. Create original characters suitable for the plot."
	if len(p.Cast) > 0 {
		var lines []string
		for _, c := range p.Cast {
			lines = append(lines, fmt.Sprintf("- %s (%s, %s): %s", c.Name, c.Role, c.Gender, c.Personality))
		}
		characterContext = strings.Join(lines, "\n")
	}

	var langInstruction string
	if p.Language == models.LanguageArabic {
		langInstruction = "Write the script dialogue and descriptions in ARABIC."
	} else {
		langInstruction = "Write the script in ENGLISH."
	}

	var formatInstruction string
	if p.Format == models.FormatReel || p.Format == models.FormatShort {
		formatInstruction = "Format: Vertical Short/Reel (Under 60s). Fast-paced, visual hooks."
	} else {
		formatInstruction = "Format: Long Video (YouTube). Narrative structure."
	}

	systemInstruction := fmt.Sprintf(`You are an expert screenwriter.
%s
%s
%s
%s

Generate a video script JSON with a title, logline, and a list of scenes.
For each scene, provide a 'visualPrompt' in ENGLISH. The 'visualPrompt' field must stay in English regardless of the script language.`,
		langInstruction, formatInstruction, platformInstructions[p.Platform], toneInstructions[p.Tone])

	prompt := fmt.Sprintf("Title: %q\nPremise: %s\n\nCharacters:\n%s\n", p.Title, p.Premise, characterContext)

	// scenes 只在面向模型的schema里要求；客户端不强制，
	// 生成器完全省略场景时由归一化退化为空序列
	return &GenerationContract{
		Kind:           ContractScript,
		Prompt:         prompt,
		SystemPrompt:   systemInstruction,
		ResponseSchema: scriptResponseSchema(),
		RequiredFields: []string{"title", "genre", "logline"},
	}
}

// NextScene 构建增量场景生成契约
// ctx 由连续性跟踪器计算：下一场景编号与有界的前情摘要
func (s *ContractService) NextScene(ctx SceneContext, language models.Language) *GenerationContract {
	var langInstruction string
	if language == models.LanguageArabic {
		langInstruction = "Write in ARABIC."
	} else {
		langInstruction = "Write in ENGLISH."
	}

	prompt := fmt.Sprintf(`Continue this script with Scene %d.
%s

Instruction: %s
Keep the 'visualPrompt' field in ENGLISH regardless of the language above.
Maintain strict continuity. Provide valid JSON.`,
		ctx.SceneNumber, ctx.Summary, langInstruction)

	return &GenerationContract{
		Kind:           ContractNextScene,
		Prompt:         prompt,
		ResponseSchema: sceneResponseSchema(),
		RequiredFields: []string{"sceneNumber", "location", "time", "description", "visualPrompt", "dialogue"},
	}
}

// Image 构建图像生成契约（无结构化输出，提示词直接透传）
func (s *ContractService) Image(prompt string) *GenerationContract {
	return &GenerationContract{
		Kind:   ContractImage,
		Prompt: prompt,
	}
}

// languageInstruction 角色档案的整体语言指令
func languageInstruction(language models.Language) string {
	if language == models.LanguageArabic {
		return "OUTPUT MUST BE IN ARABIC LANGUAGE."
	}
	return "OUTPUT MUST BE IN ENGLISH LANGUAGE."
}

// sceneResponseSchema 单个场景的输出schema
func sceneResponseSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"sceneNumber": map[string]interface{}{"type": "INTEGER"},
			"location":    map[string]interface{}{"type": "STRING"},
			"time":        map[string]interface{}{"type": "STRING"},
			"description": map[string]interface{}{"type": "STRING"},
			"visualPrompt": map[string]interface{}{
				"type":        "STRING",
				"description": "Visual prompt for image generator (ALWAYS ENGLISH)",
			},
			"dialogue": map[string]interface{}{
				"type": "ARRAY",
				"items": map[string]interface{}{
					"type": "OBJECT",
					"properties": map[string]interface{}{
						"speaker": map[string]interface{}{"type": "STRING"},
						"text":    map[string]interface{}{"type": "STRING"},
						"emotion": map[string]interface{}{"type": "STRING"},
					},
				},
			},
		},
		"required": []string{"sceneNumber", "location", "time", "description", "visualPrompt", "dialogue"},
	}
}

// scriptResponseSchema 完整剧本的输出schema
func scriptResponseSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"title":   map[string]interface{}{"type": "STRING"},
			"genre":   map[string]interface{}{"type": "STRING"},
			"logline": map[string]interface{}{"type": "STRING"},
			"scenes": map[string]interface{}{
				"type":  "ARRAY",
				"items": sceneResponseSchema(),
			},
		},
		"required": []string{"title", "genre", "logline", "scenes"},
	}
}
