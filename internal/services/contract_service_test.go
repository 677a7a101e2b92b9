// internal/services/contract_service_test.go
package services

import (
	"testing"

	"github.com/Corphon/StoryReelStudio/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharacterProfileContract(t *testing.T) {
	contracts := NewContractService()

	contract := contracts.CharacterProfile(CharacterProfileParams{
		Genre:    "Cyberpunk Noir",
		Gender:   "Female",
		Style:    "Anime",
		Language: models.LanguageArabic,
	})

	assert.Equal(t, ContractCharacterProfile, contract.Kind)
	assert.Contains(t, contract.Prompt, "Cyberpunk Noir")
	assert.Contains(t, contract.Prompt, "Gender: Female.")
	assert.Contains(t, contract.Prompt, "OUTPUT MUST BE IN ARABIC LANGUAGE.")
	// appearance 字段无论输出语言如何都要求英文
	assert.Contains(t, contract.Prompt, "IN ENGLISH")
	assert.Equal(t,
		[]string{"name", "role", "age", "personality", "backstory", "appearance"},
		contract.RequiredFields)
}

func TestCharacterProfileDefaultArchetype(t *testing.T) {
	contracts := NewContractService()

	contract := contracts.CharacterProfile(CharacterProfileParams{Genre: "Fantasy"})

	assert.Contains(t, contract.Prompt, "Archetype/Role: Main Protagonist.")
}

func TestScriptContractWithCast(t *testing.T) {
	contracts := NewContractService()

	contract := contracts.Script(ScriptParams{
		Title:   "Desert Run",
		Premise: "A courier races the sunset.",
		Cast: []models.Character{
			{Name: "Zain", Role: "Hero", Gender: "Male", Personality: "Stubborn"},
		},
		Platform: models.PlatformTikTok,
		Format:   models.FormatReel,
		Tone:     models.ToneFunny,
		Language: models.LanguageEnglish,
	})

	assert.Equal(t, ContractScript, contract.Kind)
	assert.Contains(t, contract.Prompt, `Title: "Desert Run"`)
	assert.Contains(t, contract.Prompt, "- Zain (Hero, Male): Stubborn")
	assert.Contains(t, contract.SystemPrompt, "Write the script in ENGLISH.")
	assert.Contains(t, contract.SystemPrompt, "Vertical Short/Reel (Under 60s)")
	assert.Contains(t, contract.SystemPrompt, "Optimize for TikTok")
	assert.Contains(t, contract.SystemPrompt, "Tone: Funny, Humorous, Comedic.")
	// scenes 只在schema里约束模型，客户端不作为必需字段校验
	assert.Equal(t, []string{"title", "genre", "logline"}, contract.RequiredFields)
	assert.Contains(t, contract.ResponseSchema["required"], "scenes")
}

func TestScriptContractDegradesWithoutCast(t *testing.T) {
	contracts := NewContractService()

	contract := contracts.Script(ScriptParams{
		Title:    "Solo",
		Platform: models.PlatformYouTube,
		Format:   models.FormatLong,
		Tone:     models.ToneSerious,
		Language: models.LanguageArabic,
	})

	// 无演员表时退化为自创角色，而不是失败
	assert.Contains(t, contract.Prompt,
		"No specific characters provided. Create original characters suitable for the plot.")
	assert.Contains(t, contract.SystemPrompt, "Write the script dialogue and descriptions in ARABIC.")
	assert.Contains(t, contract.SystemPrompt, "Long Video (YouTube)")
}

func TestNextSceneContract(t *testing.T) {
	contracts := NewContractService()

	contract := contracts.NextScene(SceneContext{
		SceneNumber: 4,
		Summary:     "Title: Desert Run\nPrevious Scene: Rooftop - A narrow escape.",
	}, models.LanguageArabic)

	assert.Equal(t, ContractNextScene, contract.Kind)
	assert.Contains(t, contract.Prompt, "Continue this script with Scene 4.")
	assert.Contains(t, contract.Prompt, "Rooftop - A narrow escape.")
	assert.Contains(t, contract.Prompt, "Write in ARABIC.")
	assert.Equal(t,
		[]string{"sceneNumber", "location", "time", "description", "visualPrompt", "dialogue"},
		contract.RequiredFields)
	require.NotNil(t, contract.ResponseSchema)
}

func TestImageContractPassesPromptThrough(t *testing.T) {
	contracts := NewContractService()

	contract := contracts.Image("a cloaked courier at dusk")

	assert.Equal(t, ContractImage, contract.Kind)
	assert.Equal(t, "a cloaked courier at dusk", contract.Prompt)
	assert.Nil(t, contract.ResponseSchema)
	assert.Empty(t, contract.RequiredFields)
}
