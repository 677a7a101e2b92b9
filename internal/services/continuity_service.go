// internal/services/continuity_service.go
package services

import (
	"fmt"

	"github.com/Corphon/StoryReelStudio/internal/models"
)

// SceneContext 增量生成一个场景所需的全部前情：
// 系统计算的下一场景编号，以及有界的剧情摘要（不含完整历史）
type SceneContext struct {
	SceneNumber int
	Summary     string
}

// ContinuityService 负责场景间的连续性：
// 计算下一场景编号并汇总传给生成器的最小上下文
type ContinuityService struct{}

// NewContinuityService 创建连续性服务
func NewContinuityService() *ContinuityService {
	return &ContinuityService{}
}

// NextSceneContext 计算脚本的下一场景上下文
// 摘要只包含标题/类型/基调/梗概和紧邻的前一场景，上下文有界
func (s *ContinuityService) NextSceneContext(script *models.Script) SceneContext {
	lastNumber := 0
	previous := "Start of story"

	if len(script.Scenes) > 0 {
		last := script.Scenes[len(script.Scenes)-1]
		lastNumber = last.SceneNumber
		previous = fmt.Sprintf("%s - %s", last.Location, last.Description)
	}

	summary := fmt.Sprintf(`Title: %s
Genre: %s
Tone: %s
Logline: %s

Previous Scene: %s`,
		script.Title, script.Genre, script.Tone, script.Logline, previous)

	return SceneContext{
		SceneNumber: lastNumber + 1,
		Summary:     summary,
	}
}

// AppendScene 把新场景追加到已有序列之后，返回完整的新场景数组
// 新场景的编号以上下文计算值为准，生成器自己的编号不可信
func (s *ContinuityService) AppendScene(existing []models.ScriptScene, scene models.ScriptScene, ctx SceneContext) []models.ScriptScene {
	scene.SceneNumber = ctx.SceneNumber

	scenes := make([]models.ScriptScene, 0, len(existing)+1)
	scenes = append(scenes, existing...)
	scenes = append(scenes, scene)
	return scenes
}
