// internal/services/character_service.go
package services

import (
	"context"

	apperrors "github.com/Corphon/StoryReelStudio/internal/errors"
	"github.com/Corphon/StoryReelStudio/internal/models"
	"github.com/Corphon/StoryReelStudio/internal/utils"
)

// 创建类操作在状态服务中使用的分组键
const (
	StatusKeyCharacters = "characters"
	StatusKeyScripts    = "scripts"
)

// CharacterService 角色生成的编排层：
// 契约构建 → 生成调用 → 归一化 → 入库，失败时不产生任何存储变更
type CharacterService struct {
	Contracts  *ContractService
	Generation *GenerationService
	Normalizer *NormalizerService
	Project    *ProjectService
	Status     *StatusService

	guard *InflightGuard
}

// NewCharacterService 创建角色服务
func NewCharacterService(contracts *ContractService, generation *GenerationService,
	normalizer *NormalizerService, project *ProjectService, status *StatusService) *CharacterService {
	return &CharacterService{
		Contracts:  contracts,
		Generation: generation,
		Normalizer: normalizer,
		Project:    project,
		Status:     status,
		guard:      NewInflightGuard(),
	}
}

// GenerateCharacter 生成一个新角色档案并加入项目
// 只有完整归一化成功后才会触发存储变更
func (s *CharacterService) GenerateCharacter(ctx context.Context, params CharacterProfileParams) (models.Character, error) {
	s.Status.Set(StatusKeyCharacters, models.StatusLoading, "")

	contract := s.Contracts.CharacterProfile(params)

	var payload CharacterPayload
	if err := s.Generation.CreateStructured(ctx, contract, &payload); err != nil {
		s.Status.Set(StatusKeyCharacters, models.StatusError, err.Error())
		return models.Character{}, err
	}

	character := s.Normalizer.NormalizeCharacter(payload, params)
	if err := s.Project.AddCharacter(character); err != nil {
		s.Status.Set(StatusKeyCharacters, models.StatusError, err.Error())
		return models.Character{}, err
	}

	s.Status.Set(StatusKeyCharacters, models.StatusSuccess, "")
	utils.GetLogger().Info("角色生成完成", map[string]interface{}{
		"id":   character.ID,
		"name": character.Name,
	})

	return character, nil
}

// GenerateAvatar 为指定角色生成形象图并附加到实体上
// 同一角色同时只允许一个在途图像操作；状态按角色标识跟踪
func (s *CharacterService) GenerateAvatar(ctx context.Context, characterID string) (string, error) {
	character, exists := s.Project.GetCharacter(characterID)
	if !exists {
		return "", apperrors.NewNotFoundError("角色不存在: "+characterID, nil)
	}

	if err := s.guard.Begin(characterID); err != nil {
		return "", err
	}
	defer s.guard.End(characterID)

	s.Status.Set(characterID, models.StatusLoading, "")

	contract := s.Contracts.Image(character.Appearance)
	avatarURL, err := s.Generation.GenerateImage(ctx, contract)
	if err != nil {
		s.Status.Set(characterID, models.StatusError, err.Error())
		return "", err
	}

	s.Project.UpdateCharacter(characterID, CharacterUpdate{AvatarURL: &avatarURL})
	s.Status.Set(characterID, models.StatusSuccess, "")

	return avatarURL, nil
}
