// internal/services/normalizer_service_test.go
package services

import (
	"testing"

	"github.com/Corphon/StoryReelStudio/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCharacterStampsCallerParams(t *testing.T) {
	normalizer := NewNormalizerService(&seqIDs{})

	character := normalizer.NormalizeCharacter(
		CharacterPayload{Name: "Zain", Role: "Hero", Age: 27, Appearance: "tall, cloaked"},
		CharacterProfileParams{Gender: "Male", Style: "Anime"})

	assert.Equal(t, "id-1", character.ID)
	assert.Equal(t, "Zain", character.Name)
	// 性别与画风来自调用方，生成器无权提供
	assert.Equal(t, "Male", character.Gender)
	assert.Equal(t, "Anime", character.VisualStyle)
	assert.Empty(t, character.AvatarURL)
}

func TestNormalizeCharacterClampsNegativeAge(t *testing.T) {
	normalizer := NewNormalizerService(&seqIDs{})

	character := normalizer.NormalizeCharacter(
		CharacterPayload{Name: "Glitch", Age: -5},
		CharacterProfileParams{})

	assert.Equal(t, 0, character.Age)
}

func TestNormalizeScriptRenumbersScenes(t *testing.T) {
	normalizer := NewNormalizerService(&seqIDs{})

	payload := ScriptPayload{
		Title:   "Desert Run",
		Genre:   "Action",
		Logline: "A courier races the sunset.",
		Scenes: []ScenePayload{
			{SceneNumber: 7, Location: "Market"},
			{SceneNumber: 7, Location: "Rooftop"},
			{SceneNumber: 2, Location: "Alley"},
		},
	}
	params := ScriptParams{
		Cast:     []models.Character{{Name: "Zain"}, {Name: "Mara"}},
		Platform: models.PlatformTikTok,
		Format:   models.FormatReel,
		Tone:     models.ToneFunny,
		Language: models.LanguageArabic,
	}

	script := normalizer.NormalizeScript(payload, params)

	// 生成器的场景编号不可信，一律重排为1..N
	require.Len(t, script.Scenes, 3)
	for i, scene := range script.Scenes {
		assert.Equal(t, i+1, scene.SceneNumber)
		assert.NotEmpty(t, scene.ID)
	}

	assert.Equal(t, models.PlatformTikTok, script.Platform)
	assert.Equal(t, models.FormatReel, script.Format)
	assert.Equal(t, models.ToneFunny, script.Tone)
	assert.Equal(t, models.LanguageArabic, script.Language)
	// 角色快照只存名字
	assert.Equal(t, []string{"Zain", "Mara"}, script.Characters)
}

func TestNormalizeScriptWithoutScenes(t *testing.T) {
	normalizer := NewNormalizerService(&seqIDs{})

	script := normalizer.NormalizeScript(ScriptPayload{Title: "Empty"}, ScriptParams{})

	assert.NotNil(t, script.Scenes)
	assert.Empty(t, script.Scenes)
}

func TestNormalizeFlagsTranslatedEnglishOnlyFields(t *testing.T) {
	normalizer := NewNormalizerService(&seqIDs{})

	var flagged []string
	normalizer.onLanguageViolation = func(field string) {
		flagged = append(flagged, field)
	}

	// appearance 与 visualPrompt 被翻译成阿拉伯语时要被标记，但归一化仍然成功
	character := normalizer.NormalizeCharacter(
		CharacterPayload{Name: "Zain", Appearance: "رجل طويل يرتدي عباءة"},
		CharacterProfileParams{})
	script := normalizer.NormalizeScript(ScriptPayload{
		Title:  "Desert Run",
		Scenes: []ScenePayload{{Location: "Market", VisualPrompt: "سوق مزدحم عند الغروب"}},
	}, ScriptParams{})

	assert.Equal(t, []string{"appearance", "visualPrompt"}, flagged)
	assert.Equal(t, "رجل طويل يرتدي عباءة", character.Appearance)
	require.Len(t, script.Scenes, 1)
	assert.Equal(t, "سوق مزدحم عند الغروب", script.Scenes[0].VisualPrompt)
}

func TestNormalizeDoesNotFlagEnglishFields(t *testing.T) {
	normalizer := NewNormalizerService(&seqIDs{})

	var flagged []string
	normalizer.onLanguageViolation = func(field string) {
		flagged = append(flagged, field)
	}

	normalizer.NormalizeCharacter(
		CharacterPayload{Name: "Zain", Appearance: "a tall cloaked courier"},
		CharacterProfileParams{})
	normalizer.NormalizeScene(ScenePayload{VisualPrompt: "crowded market at dusk"}, 1)

	assert.Empty(t, flagged)
}

func TestNormalizeSceneOverridesNumber(t *testing.T) {
	normalizer := NewNormalizerService(&seqIDs{})

	scene := normalizer.NormalizeScene(ScenePayload{
		SceneNumber:  99,
		Location:     "Rooftop",
		Time:         "Night",
		VisualPrompt: "rooftop chase at night",
		Dialogue:     []DialoguePayload{{Speaker: "Zain", Text: "Jump!", Emotion: "tense"}},
	}, 3)

	assert.Equal(t, 3, scene.SceneNumber)
	assert.Equal(t, "Rooftop", scene.Location)
	require.Len(t, scene.Dialogue, 1)
	assert.Equal(t, "Jump!", scene.Dialogue[0].Text)
	assert.Equal(t, "tense", scene.Dialogue[0].Emotion)
}
