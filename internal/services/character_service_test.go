// internal/services/character_service_test.go
package services

import (
	"context"
	"testing"

	apperrors "github.com/Corphon/StoryReelStudio/internal/errors"
	"github.com/Corphon/StoryReelStudio/internal/llm"
	"github.com/Corphon/StoryReelStudio/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCharacterTestService 组装角色服务及其依赖
func newCharacterTestService(p llm.Provider) (*CharacterService, *ProjectService, *StatusService) {
	project := NewProjectService()
	status := NewStatusService()
	service := NewCharacterService(
		NewContractService(), newTestGeneration(p),
		NewNormalizerService(&seqIDs{}), project, status)
	return service, project, status
}

const characterJSON = `{
	"name": "Zain",
	"role": "Hero",
	"age": 27,
	"personality": "Stubborn but loyal",
	"backstory": "Raised in the old market district",
	"appearance": "tall courier in a dusty cloak"
}`

func TestGenerateCharacterAddsToProject(t *testing.T) {
	provider := textProvider(characterJSON)
	service, project, status := newCharacterTestService(provider)

	character, err := service.GenerateCharacter(context.Background(), CharacterProfileParams{
		Genre:    "Fantasy",
		Gender:   "Male",
		Style:    "Realistic",
		Language: models.LanguageEnglish,
	})

	require.NoError(t, err)
	assert.Equal(t, "Zain", character.Name)
	assert.Equal(t, "Male", character.Gender)
	assert.Equal(t, "Realistic", character.VisualStyle)

	characters := project.Characters()
	require.Len(t, characters, 1)
	assert.Equal(t, character.ID, characters[0].ID)

	assert.Equal(t, models.StatusSuccess, status.Get(StatusKeyCharacters).Status)
	assert.Contains(t, provider.lastText.Prompt, "Fantasy")
}

func TestGenerateCharacterFailureLeavesProjectUntouched(t *testing.T) {
	// 缺少必需字段，归一化之前就该失败
	service, project, status := newCharacterTestService(textProvider(`{"name": "Zain"}`))

	_, err := service.GenerateCharacter(context.Background(), CharacterProfileParams{Genre: "Fantasy"})

	require.Error(t, err)
	assert.True(t, apperrors.IsMalformedResponse(err))
	assert.Empty(t, project.Characters())

	state := status.Get(StatusKeyCharacters)
	assert.Equal(t, models.StatusError, state.Status)
	assert.NotEmpty(t, state.Message)
}

func TestGenerateAvatarAttachesURL(t *testing.T) {
	service, project, status := newCharacterTestService(imageProvider("image/png", "aGVsbG8="))
	require.NoError(t, project.AddCharacter(models.Character{
		ID: "c1", Name: "Zain", Appearance: "tall courier in a dusty cloak",
	}))

	url, err := service.GenerateAvatar(context.Background(), "c1")

	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", url)

	character, _ := project.GetCharacter("c1")
	assert.Equal(t, url, character.AvatarURL)
	assert.Equal(t, models.StatusSuccess, status.Get("c1").Status)
}

func TestGenerateAvatarUsesAppearanceAsPrompt(t *testing.T) {
	provider := imageProvider("image/png", "aGVsbG8=")
	service, project, _ := newCharacterTestService(provider)
	require.NoError(t, project.AddCharacter(models.Character{
		ID: "c1", Appearance: "tall courier in a dusty cloak",
	}))

	_, err := service.GenerateAvatar(context.Background(), "c1")

	require.NoError(t, err)
	assert.Equal(t, "tall courier in a dusty cloak", provider.lastImage.Prompt)
}

func TestGenerateAvatarUnknownCharacter(t *testing.T) {
	service, _, _ := newCharacterTestService(&fakeProvider{})

	_, err := service.GenerateAvatar(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestGenerateAvatarRejectsConcurrentRequest(t *testing.T) {
	service, project, _ := newCharacterTestService(imageProvider("image/png", "aGVsbG8="))
	require.NoError(t, project.AddCharacter(models.Character{ID: "c1"}))

	// 模拟同一角色已有在途操作
	require.NoError(t, service.guard.Begin("c1"))
	defer service.guard.End("c1")

	_, err := service.GenerateAvatar(context.Background(), "c1")

	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))

	character, _ := project.GetCharacter("c1")
	assert.Empty(t, character.AvatarURL)
}

func TestGenerateAvatarFailureKeepsCharacter(t *testing.T) {
	service, project, status := newCharacterTestService(&fakeProvider{})
	require.NoError(t, project.AddCharacter(models.Character{ID: "c1", Name: "Zain"}))

	_, err := service.GenerateAvatar(context.Background(), "c1")

	require.Error(t, err)
	assert.True(t, apperrors.IsNoImageProduced(err))

	character, exists := project.GetCharacter("c1")
	require.True(t, exists)
	assert.Empty(t, character.AvatarURL)
	assert.Equal(t, models.StatusError, status.Get("c1").Status)

	// 失败后守卫释放，可再次尝试
	assert.False(t, service.guard.IsInflight("c1"))
}
