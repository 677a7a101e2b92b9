// internal/services/script_service_test.go
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

// newScriptTestService 组装剧本服务及其依赖
func newScriptTestService(p llm.Provider) (*ScriptService, *ProjectService, *StatusService) {
	project := NewProjectService()
	status := NewStatusService()
	service := NewScriptService(
		NewContractService(), newTestGeneration(p),
		NewNormalizerService(&seqIDs{}), NewContinuityService(), project, status)
	return service, project, status
}

const scriptJSON = `{
	"title": "Desert Run",
	"genre": "Action",
	"logline": "A courier races the sunset.",
	"scenes": [
		{"sceneNumber": 9, "location": "Market", "time": "Day",
		 "description": "The chase begins.", "visualPrompt": "crowded market chase",
		 "dialogue": [{"speaker": "Zain", "text": "Go!"}]},
		{"sceneNumber": 3, "location": "Rooftop", "time": "Dusk",
		 "description": "A narrow escape.", "visualPrompt": "rooftop silhouette at dusk",
		 "dialogue": []}
	]
}`

const sceneJSON = `{
	"sceneNumber": 42,
	"location": "Oasis",
	"time": "Night",
	"description": "A moment of rest.",
	"visualPrompt": "moonlit oasis, palm shadows",
	"dialogue": [{"speaker": "Zain", "text": "Almost there."}]
}`

func TestGenerateScriptAddsToProject(t *testing.T) {
	provider := textProvider(scriptJSON)
	service, project, status := newScriptTestService(provider)

	script, err := service.GenerateScript(context.Background(), ScriptParams{
		Title:    "Desert Run",
		Premise:  "A courier races the sunset.",
		Platform: models.PlatformTikTok,
		Format:   models.FormatReel,
		Tone:     models.ToneDramatic,
		Language: models.LanguageArabic,
	})

	require.NoError(t, err)
	assert.Equal(t, "Desert Run", script.Title)
	assert.Equal(t, models.PlatformTikTok, script.Platform)
	assert.Equal(t, models.LanguageArabic, script.Language)

	// 编号重排为1..N
	require.Len(t, script.Scenes, 2)
	assert.Equal(t, 1, script.Scenes[0].SceneNumber)
	assert.Equal(t, 2, script.Scenes[1].SceneNumber)

	assert.Len(t, project.Scripts(), 1)
	assert.Equal(t, models.StatusSuccess, status.Get(StatusKeyScripts).Status)
}

func TestGenerateScriptWithoutScenesYieldsEmptyScript(t *testing.T) {
	// 生成器完全省略scenes时退化为空剧本，而不是失败
	provider := textProvider(`{"title": "Desert Run", "genre": "Action", "logline": "A courier races the sunset."}`)
	service, project, status := newScriptTestService(provider)

	script, err := service.GenerateScript(context.Background(), ScriptParams{Title: "Desert Run"})

	require.NoError(t, err)
	assert.NotNil(t, script.Scenes)
	assert.Empty(t, script.Scenes)

	stored, exists := project.GetScript(script.ID)
	require.True(t, exists)
	assert.Empty(t, stored.Scenes)
	assert.Equal(t, models.StatusSuccess, status.Get(StatusKeyScripts).Status)
}

func TestGenerateScriptFailureLeavesProjectUntouched(t *testing.T) {
	service, project, status := newScriptTestService(textProvider(`{"title": "Only"}`))

	_, err := service.GenerateScript(context.Background(), ScriptParams{Title: "Only"})

	require.Error(t, err)
	assert.True(t, apperrors.IsMalformedResponse(err))
	assert.Empty(t, project.Scripts())
	assert.Equal(t, models.StatusError, status.Get(StatusKeyScripts).Status)
}

func TestAddSceneAppendsWithComputedNumber(t *testing.T) {
	provider := textProvider(sceneJSON)
	service, project, status := newScriptTestService(provider)
	require.NoError(t, project.AddScript(models.Script{
		ID:    "s1",
		Title: "Desert Run",
		Scenes: []models.ScriptScene{
			{ID: "sc1", SceneNumber: 1, Location: "Market"},
			{ID: "sc2", SceneNumber: 2, Location: "Rooftop", Description: "A narrow escape."},
		},
	}))

	scene, err := service.AddScene(context.Background(), "s1")

	require.NoError(t, err)
	// 生成器声称第42场，以连续性跟踪器的计算值为准
	assert.Equal(t, 3, scene.SceneNumber)
	assert.Equal(t, "Oasis", scene.Location)

	script, _ := project.GetScript("s1")
	require.Len(t, script.Scenes, 3)
	assert.Equal(t, scene.ID, script.Scenes[2].ID)

	assert.Contains(t, provider.lastText.Prompt, "Continue this script with Scene 3.")
	assert.Contains(t, provider.lastText.Prompt, "Rooftop - A narrow escape.")
	assert.Equal(t, models.StatusSuccess, status.Get("s1").Status)
}

func TestAddSceneUnknownScript(t *testing.T) {
	service, _, _ := newScriptTestService(&fakeProvider{})

	_, err := service.AddScene(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestAddSceneRejectsConcurrentRequest(t *testing.T) {
	service, project, _ := newScriptTestService(textProvider(sceneJSON))
	require.NoError(t, project.AddScript(models.Script{ID: "s1"}))

	// 模拟同一剧本已有在途续写
	require.NoError(t, service.guard.Begin("s1"))
	defer service.guard.End("s1")

	_, err := service.AddScene(context.Background(), "s1")

	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))

	script, _ := project.GetScript("s1")
	assert.Empty(t, script.Scenes)
}

func TestAddSceneFailureLeavesScenesUntouched(t *testing.T) {
	service, project, status := newScriptTestService(textProvider("not json"))
	require.NoError(t, project.AddScript(models.Script{
		ID:     "s1",
		Scenes: []models.ScriptScene{{ID: "sc1", SceneNumber: 1}},
	}))

	_, err := service.AddScene(context.Background(), "s1")

	require.Error(t, err)
	assert.True(t, apperrors.IsMalformedResponse(err))

	script, _ := project.GetScript("s1")
	assert.Len(t, script.Scenes, 1)
	assert.Equal(t, models.StatusError, status.Get("s1").Status)
	assert.False(t, service.guard.IsInflight("s1"))
}

func TestGenerateStoryboardAttachesURL(t *testing.T) {
	provider := imageProvider("image/png", "aGVsbG8=")
	service, project, status := newScriptTestService(provider)
	require.NoError(t, project.AddScript(models.Script{
		ID: "s1",
		Scenes: []models.ScriptScene{{
			ID: "sc1", SceneNumber: 1, VisualPrompt: "moonlit oasis, palm shadows",
		}},
	}))

	url, err := service.GenerateStoryboard(context.Background(), "s1", "sc1")

	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", url)
	assert.Equal(t, "moonlit oasis, palm shadows", provider.lastImage.Prompt)

	script, _ := project.GetScript("s1")
	assert.Equal(t, url, script.Scenes[0].StoryboardURL)
	assert.Equal(t, models.StatusSuccess, status.Get("sc1").Status)
}

func TestGenerateStoryboardUnknownScene(t *testing.T) {
	service, project, _ := newScriptTestService(&fakeProvider{})
	require.NoError(t, project.AddScript(models.Script{ID: "s1"}))

	_, err := service.GenerateStoryboard(context.Background(), "s1", "missing")

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestGenerateStoryboardUnknownScript(t *testing.T) {
	service, _, _ := newScriptTestService(&fakeProvider{})

	_, err := service.GenerateStoryboard(context.Background(), "missing", "sc1")

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFoundError(err))
}
