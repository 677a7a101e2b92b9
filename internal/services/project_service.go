// internal/services/project_service.go
package services

import (
	"fmt"
	"sync"

	apperrors "github.com/Corphon/StoryReelStudio/internal/errors"
	"github.com/Corphon/StoryReelStudio/internal/models"
)

// CharacterUpdate 角色的部分字段更新，nil字段保持不变
type CharacterUpdate struct {
	Name        *string
	Role        *string
	Age         *int
	Gender      *string
	VisualStyle *string
	Personality *string
	Backstory   *string
	Appearance  *string
	AvatarURL   *string
}

// ScriptUpdate 剧本的部分字段更新，nil字段保持不变
// Scenes 非nil时整体替换场景数组（追加场景由调用方构造完整新数组，
// 存储层不提供数组追加语义，避免嵌套集合的部分更新歧义）
type ScriptUpdate struct {
	Title   *string
	Genre   *string
	Logline *string
	Scenes  []models.ScriptScene
}

// ProjectService 会话期间所有角色与剧本的唯一权威集合
// 实体只能通过本服务的操作修改；读取返回的都是独立快照
type ProjectService struct {
	mutex      sync.RWMutex
	characters []models.Character
	scripts    []models.Script
}

// NewProjectService 创建项目存储服务
func NewProjectService() *ProjectService {
	return &ProjectService{
		characters: make([]models.Character, 0),
		scripts:    make([]models.Script, 0),
	}
}

// AddCharacter 新角色置于集合头部（最新在前是展示契约）
// 标识重复时拒绝，保证集合中不存在同ID实体
func (s *ProjectService) AddCharacter(c models.Character) error {
	if c.ID == "" {
		return apperrors.NewValidationError("角色缺少标识", nil)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i := range s.characters {
		if s.characters[i].ID == c.ID {
			return apperrors.NewConflictError(fmt.Sprintf("角色标识已存在: %s", c.ID), nil)
		}
	}

	s.characters = append([]models.Character{c}, s.characters...)
	return nil
}

// UpdateCharacter 合并部分字段到指定角色；标识不存在时为无操作
func (s *ProjectService) UpdateCharacter(id string, update CharacterUpdate) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i := range s.characters {
		if s.characters[i].ID != id {
			continue
		}

		c := &s.characters[i]
		if update.Name != nil {
			c.Name = *update.Name
		}
		if update.Role != nil {
			c.Role = *update.Role
		}
		if update.Age != nil {
			c.Age = *update.Age
		}
		if update.Gender != nil {
			c.Gender = *update.Gender
		}
		if update.VisualStyle != nil {
			c.VisualStyle = *update.VisualStyle
		}
		if update.Personality != nil {
			c.Personality = *update.Personality
		}
		if update.Backstory != nil {
			c.Backstory = *update.Backstory
		}
		if update.Appearance != nil {
			c.Appearance = *update.Appearance
		}
		if update.AvatarURL != nil {
			c.AvatarURL = *update.AvatarURL
		}
		return
	}
}

// AddScript 新剧本置于集合头部
func (s *ProjectService) AddScript(script models.Script) error {
	if script.ID == "" {
		return apperrors.NewValidationError("剧本缺少标识", nil)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i := range s.scripts {
		if s.scripts[i].ID == script.ID {
			return apperrors.NewConflictError(fmt.Sprintf("剧本标识已存在: %s", script.ID), nil)
		}
	}

	s.scripts = append([]models.Script{script.Clone()}, s.scripts...)
	return nil
}

// UpdateScript 合并部分字段到指定剧本；标识不存在时为无操作
func (s *ProjectService) UpdateScript(id string, update ScriptUpdate) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i := range s.scripts {
		if s.scripts[i].ID != id {
			continue
		}

		script := &s.scripts[i]
		if update.Title != nil {
			script.Title = *update.Title
		}
		if update.Genre != nil {
			script.Genre = *update.Genre
		}
		if update.Logline != nil {
			script.Logline = *update.Logline
		}
		if update.Scenes != nil {
			replacement := models.Script{Scenes: update.Scenes}
			script.Scenes = replacement.Clone().Scenes
		}
		return
	}
}

// UpdateSceneStoryboard 为指定场景附加分镜图引用；场景不存在时为无操作
func (s *ProjectService) UpdateSceneStoryboard(scriptID, sceneID, storyboardURL string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i := range s.scripts {
		if s.scripts[i].ID != scriptID {
			continue
		}
		for j := range s.scripts[i].Scenes {
			if s.scripts[i].Scenes[j].ID == sceneID {
				s.scripts[i].Scenes[j].StoryboardURL = storyboardURL
				return
			}
		}
		return
	}
}

// Characters 返回全部角色的快照，最新在前
func (s *ProjectService) Characters() []models.Character {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]models.Character, len(s.characters))
	copy(out, s.characters)
	return out
}

// Scripts 返回全部剧本的深拷贝快照，最新在前
func (s *ProjectService) Scripts() []models.Script {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]models.Script, 0, len(s.scripts))
	for i := range s.scripts {
		out = append(out, s.scripts[i].Clone())
	}
	return out
}

// GetCharacter 按标识查找角色快照
func (s *ProjectService) GetCharacter(id string) (models.Character, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for i := range s.characters {
		if s.characters[i].ID == id {
			return s.characters[i].Clone(), true
		}
	}
	return models.Character{}, false
}

// GetScript 按标识查找剧本快照
func (s *ProjectService) GetScript(id string) (models.Script, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for i := range s.scripts {
		if s.scripts[i].ID == id {
			return s.scripts[i].Clone(), true
		}
	}
	return models.Script{}, false
}

// LoadProject 整体替换文档中出现的集合；缺席的集合保持不变
// （只含角色的项目文件不会清空现有剧本）
// 先校验再应用：任何一个集合存在重复标识时整体拒绝，存储保持原状
func (s *ProjectService) LoadProject(characters []models.Character, scripts []models.Script, hasCharacters, hasScripts bool) error {
	if hasCharacters {
		if err := checkDuplicateCharacterIDs(characters); err != nil {
			return err
		}
	}
	if hasScripts {
		if err := checkDuplicateScriptIDs(scripts); err != nil {
			return err
		}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if hasCharacters {
		replacement := make([]models.Character, len(characters))
		copy(replacement, characters)
		s.characters = replacement
	}
	if hasScripts {
		replacement := make([]models.Script, 0, len(scripts))
		for i := range scripts {
			replacement = append(replacement, scripts[i].Clone())
		}
		s.scripts = replacement
	}

	return nil
}

func checkDuplicateCharacterIDs(characters []models.Character) error {
	seen := make(map[string]bool, len(characters))
	for i := range characters {
		if seen[characters[i].ID] {
			return apperrors.NewInvalidProjectFile(
				fmt.Sprintf("项目文件中存在重复的角色标识: %s", characters[i].ID), nil)
		}
		seen[characters[i].ID] = true
	}
	return nil
}

func checkDuplicateScriptIDs(scripts []models.Script) error {
	seen := make(map[string]bool, len(scripts))
	for i := range scripts {
		if seen[scripts[i].ID] {
			return apperrors.NewInvalidProjectFile(
				fmt.Sprintf("项目文件中存在重复的剧本标识: %s", scripts[i].ID), nil)
		}
		seen[scripts[i].ID] = true
	}
	return nil
}
