// internal/services/normalizer_service.go
package services

import (
	"github.com/Corphon/StoryReelStudio/internal/models"
	"github.com/Corphon/StoryReelStudio/internal/utils"
	"github.com/google/uuid"
)

// IDGenerator 身份生成能力，注入后便于测试时使用确定性实现
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator 默认的UUID身份生成器
type UUIDGenerator struct{}

// NewID 生成一个全局唯一标识
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// CharacterPayload 生成器返回的原始角色数据
// gender/visualStyle 不在其中：它们由调用方指定，生成器无权提供
type CharacterPayload struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Age         int    `json:"age"`
	Personality string `json:"personality"`
	Backstory   string `json:"backstory"`
	Appearance  string `json:"appearance"`
}

// DialoguePayload 生成器返回的原始台词
type DialoguePayload struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Emotion string `json:"emotion,omitempty"`
}

// ScenePayload 生成器返回的原始场景数据
// SceneNumber 仅作参考，归一化时始终被系统编号覆盖
type ScenePayload struct {
	SceneNumber  int               `json:"sceneNumber"`
	Location     string            `json:"location"`
	Time         string            `json:"time"`
	Description  string            `json:"description"`
	VisualPrompt string            `json:"visualPrompt"`
	Dialogue     []DialoguePayload `json:"dialogue"`
}

// ScriptPayload 生成器返回的原始剧本数据
type ScriptPayload struct {
	Title   string         `json:"title"`
	Genre   string         `json:"genre"`
	Logline string         `json:"logline"`
	Scenes  []ScenePayload `json:"scenes"`
}

// NormalizerService 把通过校验的原始生成数据转换为可入库的领域实体：
// 分配身份、回填调用方参数、修正派生字段
type NormalizerService struct {
	ids IDGenerator

	// 英文专用字段违规时的上报回调，默认记录告警日志
	onLanguageViolation func(field string)
}

// NewNormalizerService 创建归一化服务
func NewNormalizerService(ids IDGenerator) *NormalizerService {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	return &NormalizerService{
		ids: ids,
		onLanguageViolation: func(field string) {
			utils.GetLogger().Warn("英文专用字段疑似被翻译", map[string]interface{}{
				"field": field,
			})
		},
	}
}

// NormalizeCharacter 生成角色实体
// Gender与VisualStyle 始终取调用方参数，忽略生成器可能的回显
func (n *NormalizerService) NormalizeCharacter(payload CharacterPayload, params CharacterProfileParams) models.Character {
	age := payload.Age
	if age < 0 {
		utils.GetLogger().Warn("生成的角色年龄为负，已重置为0", map[string]interface{}{
			"name": payload.Name,
			"age":  payload.Age,
		})
		age = 0
	}

	n.checkEnglishOnly("appearance", payload.Appearance)

	return models.Character{
		ID:          n.ids.NewID(),
		Name:        payload.Name,
		Role:        payload.Role,
		Age:         age,
		Gender:      params.Gender,
		VisualStyle: params.Style,
		Personality: payload.Personality,
		Backstory:   payload.Backstory,
		Appearance:  payload.Appearance,
	}
}

// NormalizeScript 生成剧本实体
// 平台/形态/基调/语言取自请求参数；角色快照取自请求时的演员表；
// 场景缺失时归一化为空序列，场景编号重排为1..N
func (n *NormalizerService) NormalizeScript(payload ScriptPayload, params ScriptParams) models.Script {
	scenes := make([]models.ScriptScene, 0, len(payload.Scenes))
	for i, scene := range payload.Scenes {
		scenes = append(scenes, n.NormalizeScene(scene, i+1))
	}

	cast := make([]string, 0, len(params.Cast))
	for _, c := range params.Cast {
		cast = append(cast, c.Name)
	}

	return models.Script{
		ID:         n.ids.NewID(),
		Title:      payload.Title,
		Genre:      payload.Genre,
		Logline:    payload.Logline,
		Platform:   params.Platform,
		Format:     params.Format,
		Tone:       params.Tone,
		Language:   params.Language,
		Scenes:     scenes,
		Characters: cast,
	}
}

// NormalizeScene 生成场景实体，编号以 sceneNumber 为准覆盖生成器的编号
func (n *NormalizerService) NormalizeScene(payload ScenePayload, sceneNumber int) models.ScriptScene {
	n.checkEnglishOnly("visualPrompt", payload.VisualPrompt)

	dialogue := make([]models.DialogueLine, 0, len(payload.Dialogue))
	for _, line := range payload.Dialogue {
		dialogue = append(dialogue, models.DialogueLine{
			Speaker: line.Speaker,
			Text:    line.Text,
			Emotion: line.Emotion,
		})
	}

	return models.ScriptScene{
		ID:           n.ids.NewID(),
		SceneNumber:  sceneNumber,
		Location:     payload.Location,
		Time:         payload.Time,
		Description:  payload.Description,
		VisualPrompt: payload.VisualPrompt,
		Dialogue:     dialogue,
	}
}

// checkEnglishOnly 核查必须保持英文的字段
// 该字段会直接送入图像生成，因此无论界面语言如何都不应被翻译；
// 违规只上报，从不导致归一化失败
func (n *NormalizerService) checkEnglishOnly(field, value string) {
	if !utils.LooksEnglish(value) {
		n.onLanguageViolation(field)
	}
}
