// internal/services/inflight_guard.go
package services

import (
	"fmt"
	"sync"
	"time"

	apperrors "github.com/Corphon/StoryReelStudio/internal/errors"
	"github.com/Corphon/StoryReelStudio/internal/utils"
)

// 在途生成操作总数的仪表名
const gaugeInflightGenerations = "inflight_generations"

// InflightGuard 保证同一实体同时最多只有一个在途生成操作
// 操作仍在进行时的重复请求被拒绝，而不是悄悄覆盖前一个槽位
type InflightGuard struct {
	mutex    sync.Mutex
	inflight map[string]time.Time
	staleTTL time.Duration
}

// NewInflightGuard 创建在途操作守卫
func NewInflightGuard() *InflightGuard {
	return &InflightGuard{
		inflight: make(map[string]time.Time),
		staleTTL: 10 * time.Minute,
	}
}

// Begin 标记实体的一个操作开始
// 已有在途操作时返回冲突错误；超过TTL的陈旧记录视为已失效，允许接管
func (g *InflightGuard) Begin(entityID string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if started, exists := g.inflight[entityID]; exists {
		if time.Since(started) < g.staleTTL {
			return apperrors.NewConflictError(
				fmt.Sprintf("实体已有进行中的生成操作: %s", entityID), nil)
		}
		// 接管陈旧槽位，计数不变
	} else {
		utils.GetMetricsCollector().IncGauge(gaugeInflightGenerations)
	}

	g.inflight[entityID] = time.Now()
	return nil
}

// End 标记实体的操作结束
func (g *InflightGuard) End(entityID string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, exists := g.inflight[entityID]; exists {
		delete(g.inflight, entityID)
		utils.GetMetricsCollector().DecGauge(gaugeInflightGenerations)
	}
}

// IsInflight 查询实体是否有在途操作
func (g *InflightGuard) IsInflight(entityID string) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	started, exists := g.inflight[entityID]
	return exists && time.Since(started) < g.staleTTL
}
