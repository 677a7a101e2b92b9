// internal/services/script_service.go
package services

import (
	"context"

	apperrors "github.com/Corphon/StoryReelStudio/internal/errors"
	"github.com/Corphon/StoryReelStudio/internal/models"
	"github.com/Corphon/StoryReelStudio/internal/utils"
)

// ScriptService 剧本生成与逐场景扩写的编排层
// 增量生成经过连续性跟踪器；任何失败都不会部分写入存储
type ScriptService struct {
	Contracts  *ContractService
	Generation *GenerationService
	Normalizer *NormalizerService
	Continuity *ContinuityService
	Project    *ProjectService
	Status     *StatusService

	guard *InflightGuard
}

// NewScriptService 创建剧本服务
func NewScriptService(contracts *ContractService, generation *GenerationService,
	normalizer *NormalizerService, continuity *ContinuityService,
	project *ProjectService, status *StatusService) *ScriptService {
	return &ScriptService{
		Contracts:  contracts,
		Generation: generation,
		Normalizer: normalizer,
		Continuity: continuity,
		Project:    project,
		Status:     status,
		guard:      NewInflightGuard(),
	}
}

// GenerateScript 从标题与故事前提生成完整剧本并加入项目
// 平台/形态/基调/语言以请求参数为准；场景编号由系统重排为1..N
func (s *ScriptService) GenerateScript(ctx context.Context, params ScriptParams) (models.Script, error) {
	s.Status.Set(StatusKeyScripts, models.StatusLoading, "")

	contract := s.Contracts.Script(params)

	var payload ScriptPayload
	if err := s.Generation.CreateStructured(ctx, contract, &payload); err != nil {
		s.Status.Set(StatusKeyScripts, models.StatusError, err.Error())
		return models.Script{}, err
	}

	script := s.Normalizer.NormalizeScript(payload, params)
	if err := s.Project.AddScript(script); err != nil {
		s.Status.Set(StatusKeyScripts, models.StatusError, err.Error())
		return models.Script{}, err
	}

	s.Status.Set(StatusKeyScripts, models.StatusSuccess, "")
	utils.GetLogger().Info("剧本生成完成", map[string]interface{}{
		"id":     script.ID,
		"title":  script.Title,
		"scenes": len(script.Scenes),
	})

	return script, nil
}

// AddScene 为剧本续写下一个场景
// 同一剧本同时只允许一个在途续写操作，重复请求返回冲突；
// 生成器给出的场景编号始终被连续性跟踪器的计算值覆盖
func (s *ScriptService) AddScene(ctx context.Context, scriptID string) (models.ScriptScene, error) {
	script, exists := s.Project.GetScript(scriptID)
	if !exists {
		return models.ScriptScene{}, apperrors.NewNotFoundError("剧本不存在: "+scriptID, nil)
	}

	if err := s.guard.Begin(scriptID); err != nil {
		return models.ScriptScene{}, err
	}
	defer s.guard.End(scriptID)

	s.Status.Set(scriptID, models.StatusLoading, "")

	sceneCtx := s.Continuity.NextSceneContext(&script)
	contract := s.Contracts.NextScene(sceneCtx, script.Language)

	var payload ScenePayload
	if err := s.Generation.CreateStructured(ctx, contract, &payload); err != nil {
		s.Status.Set(scriptID, models.StatusError, err.Error())
		return models.ScriptScene{}, err
	}

	scene := s.Normalizer.NormalizeScene(payload, sceneCtx.SceneNumber)

	// 写入前取最新快照，避免覆盖生成期间发生的其他字段更新
	latest, exists := s.Project.GetScript(scriptID)
	if !exists {
		s.Status.Set(scriptID, models.StatusError, "剧本已不存在")
		return models.ScriptScene{}, apperrors.NewNotFoundError("剧本不存在: "+scriptID, nil)
	}

	scenes := s.Continuity.AppendScene(latest.Scenes, scene, sceneCtx)
	s.Project.UpdateScript(scriptID, ScriptUpdate{Scenes: scenes})
	s.Status.Set(scriptID, models.StatusSuccess, "")

	utils.GetLogger().Info("场景续写完成", map[string]interface{}{
		"script": scriptID,
		"scene":  scene.SceneNumber,
	})

	return scene, nil
}

// GenerateStoryboard 为指定场景生成分镜概念图
// 同一场景同时只允许一个在途图像操作；状态按场景标识跟踪
func (s *ScriptService) GenerateStoryboard(ctx context.Context, scriptID, sceneID string) (string, error) {
	script, exists := s.Project.GetScript(scriptID)
	if !exists {
		return "", apperrors.NewNotFoundError("剧本不存在: "+scriptID, nil)
	}

	var visualPrompt string
	found := false
	for _, scene := range script.Scenes {
		if scene.ID == sceneID {
			visualPrompt = scene.VisualPrompt
			found = true
			break
		}
	}
	if !found {
		return "", apperrors.NewNotFoundError("场景不存在: "+sceneID, nil)
	}

	if err := s.guard.Begin(sceneID); err != nil {
		return "", err
	}
	defer s.guard.End(sceneID)

	s.Status.Set(sceneID, models.StatusLoading, "")

	contract := s.Contracts.Image(visualPrompt)
	storyboardURL, err := s.Generation.GenerateImage(ctx, contract)
	if err != nil {
		s.Status.Set(sceneID, models.StatusError, err.Error())
		return "", err
	}

	s.Project.UpdateSceneStoryboard(scriptID, sceneID, storyboardURL)
	s.Status.Set(sceneID, models.StatusSuccess, "")

	return storyboardURL, nil
}
