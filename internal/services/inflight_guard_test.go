// internal/services/inflight_guard_test.go
package services

import (
	"testing"
	"time"

	apperrors "github.com/Corphon/StoryReelStudio/internal/errors"
	"github.com/Corphon/StoryReelStudio/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardRejectsSecondBegin(t *testing.T) {
	guard := NewInflightGuard()

	require.NoError(t, guard.Begin("e1"))
	err := guard.Begin("e1")

	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))
	assert.True(t, guard.IsInflight("e1"))
}

func TestGuardAllowsAfterEnd(t *testing.T) {
	guard := NewInflightGuard()

	require.NoError(t, guard.Begin("e1"))
	guard.End("e1")

	assert.False(t, guard.IsInflight("e1"))
	assert.NoError(t, guard.Begin("e1"))
}

func TestGuardEntitiesAreIndependent(t *testing.T) {
	guard := NewInflightGuard()

	require.NoError(t, guard.Begin("e1"))
	assert.NoError(t, guard.Begin("e2"))
}

func TestGuardTracksInflightGauge(t *testing.T) {
	guard := NewInflightGuard()
	metrics := utils.GetMetricsCollector()
	base := metrics.GetGauge("inflight_generations")

	require.NoError(t, guard.Begin("g1"))
	require.NoError(t, guard.Begin("g2"))
	assert.Equal(t, base+2, metrics.GetGauge("inflight_generations"))

	// 重复的End不重复计数
	guard.End("g1")
	guard.End("g1")
	assert.Equal(t, base+1, metrics.GetGauge("inflight_generations"))

	guard.End("g2")
	assert.Equal(t, base, metrics.GetGauge("inflight_generations"))
}

func TestGuardReclaimsStaleEntry(t *testing.T) {
	guard := NewInflightGuard()
	guard.staleTTL = time.Millisecond

	require.NoError(t, guard.Begin("e1"))
	time.Sleep(5 * time.Millisecond)

	// 超过TTL的槽位视为失效，允许接管
	assert.False(t, guard.IsInflight("e1"))
	assert.NoError(t, guard.Begin("e1"))
}
