// internal/services/continuity_service_test.go
package services

import (
	"testing"

	"github.com/Corphon/StoryReelStudio/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextSceneContextEmptyScript(t *testing.T) {
	continuity := NewContinuityService()
	script := models.Script{
		Title:   "Desert Run",
		Genre:   "Action",
		Tone:    models.ToneDramatic,
		Logline: "A courier races the sunset.",
	}

	ctx := continuity.NextSceneContext(&script)

	assert.Equal(t, 1, ctx.SceneNumber)
	assert.Contains(t, ctx.Summary, "Start of story")
	assert.Contains(t, ctx.Summary, "Desert Run")
	assert.Contains(t, ctx.Summary, "A courier races the sunset.")
}

func TestNextSceneContextUsesLastScene(t *testing.T) {
	continuity := NewContinuityService()
	script := models.Script{
		Title: "Desert Run",
		Scenes: []models.ScriptScene{
			{SceneNumber: 1, Location: "Market", Description: "The chase begins."},
			{SceneNumber: 2, Location: "Rooftop", Description: "A narrow escape."},
		},
	}

	ctx := continuity.NextSceneContext(&script)

	assert.Equal(t, 3, ctx.SceneNumber)
	assert.Contains(t, ctx.Summary, "Rooftop - A narrow escape.")
	// 摘要只带紧邻的前一场景，不含完整历史
	assert.NotContains(t, ctx.Summary, "The chase begins.")
}

func TestAppendSceneForcesComputedNumber(t *testing.T) {
	continuity := NewContinuityService()
	existing := []models.ScriptScene{{ID: "sc1", SceneNumber: 1}}

	// 生成器声称自己是第99场，编号必须被覆盖
	scene := models.ScriptScene{ID: "sc2", SceneNumber: 99}
	scenes := continuity.AppendScene(existing, scene, SceneContext{SceneNumber: 2})

	require.Len(t, scenes, 2)
	assert.Equal(t, "sc2", scenes[1].ID)
	assert.Equal(t, 2, scenes[1].SceneNumber)

	// 原数组不被修改
	require.Len(t, existing, 1)
}
