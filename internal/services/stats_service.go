// internal/services/stats_service.go
package services

import (
	"encoding/json"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/Corphon/StoryReelStudio/internal/storage"
)

// UsageStats 创作活动统计
type UsageStats struct {
	CharactersGenerated int            `json:"characters_generated"`
	ScriptsGenerated    int            `json:"scripts_generated"`
	ScenesGenerated     int            `json:"scenes_generated"`
	ImagesGenerated     int            `json:"images_generated"`
	DailyStats          map[string]int `json:"daily_stats"`   // 日期 -> 生成操作数
	MonthlyStats        map[string]int `json:"monthly_stats"` // 月份 -> 生成操作数
	LastUpdated         time.Time      `json:"last_updated"`
}

// 统计中跟踪的生成类别
const (
	StatCharacter = "character"
	StatScript    = "script"
	StatScene     = "scene"
	StatImage     = "image"
)

// StatsService 跟踪并持久化创作活动统计
// 采用批量保存：写入先落到内存，按固定间隔刷盘
type StatsService struct {
	files       *storage.FileStore
	statsFile   string
	mutex       sync.Mutex
	cachedStats *UsageStats

	// 批量保存控制
	isDirty      bool
	lastSaveTime time.Time
	saveInterval time.Duration
}

// NewStatsService 创建统计服务
// files 可为nil，此时统计只保留在内存中
func NewStatsService(files *storage.FileStore) *StatsService {
	service := &StatsService{
		files:        files,
		statsFile:    "usage_stats.json",
		saveInterval: 30 * time.Second,
	}

	service.startPeriodicSave()
	return service
}

// initStatsUnlocked 初始化统计数据（无锁版本）
func (s *StatsService) initStatsUnlocked() {
	if loadedStats, err := s.loadStats(); err == nil {
		s.cachedStats = loadedStats
		return
	}

	s.cachedStats = &UsageStats{
		DailyStats:   make(map[string]int),
		MonthlyStats: make(map[string]int),
		LastUpdated:  time.Now(),
	}
}

// loadStats 从文件加载统计数据
func (s *StatsService) loadStats() (*UsageStats, error) {
	if s.files == nil {
		return nil, fmt.Errorf("未配置文件存储")
	}

	data, err := s.files.Load(s.statsFile)
	if err != nil {
		return nil, fmt.Errorf("读取统计文件失败: %w", err)
	}

	var stats UsageStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("解析统计数据失败: %w", err)
	}

	if stats.DailyStats == nil {
		stats.DailyStats = make(map[string]int)
	}
	if stats.MonthlyStats == nil {
		stats.MonthlyStats = make(map[string]int)
	}

	return &stats, nil
}

// saveStatsImmediate 立即保存（调用方须持有锁）
func (s *StatsService) saveStatsImmediate() error {
	if !s.isDirty || s.files == nil {
		return nil
	}

	data, err := json.MarshalIndent(s.cachedStats, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化统计数据失败: %w", err)
	}

	if err := s.files.Save(s.statsFile, data); err != nil {
		return err
	}

	s.isDirty = false
	s.lastSaveTime = time.Now()
	return nil
}

// startPeriodicSave 定时保存机制
func (s *StatsService) startPeriodicSave() {
	go func() {
		ticker := time.NewTicker(s.saveInterval)
		defer ticker.Stop()

		for range ticker.C {
			s.mutex.Lock()
			if err := s.saveStatsImmediate(); err != nil {
				fmt.Printf("警告: 定时保存统计数据失败: %v\n", err)
			}
			s.mutex.Unlock()
		}
	}()
}

// RecordGeneration 记录一次成功的生成操作
func (s *StatsService) RecordGeneration(kind string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.cachedStats == nil {
		s.initStatsUnlocked()
	}

	switch kind {
	case StatCharacter:
		s.cachedStats.CharactersGenerated++
	case StatScript:
		s.cachedStats.ScriptsGenerated++
	case StatScene:
		s.cachedStats.ScenesGenerated++
	case StatImage:
		s.cachedStats.ImagesGenerated++
	}

	now := time.Now()
	s.cachedStats.DailyStats[now.Format("2006-01-02")]++
	s.cachedStats.MonthlyStats[now.Format("2006-01")]++
	s.cachedStats.LastUpdated = now
	s.isDirty = true

	if now.Sub(s.lastSaveTime) > s.saveInterval {
		if err := s.saveStatsImmediate(); err != nil {
			fmt.Printf("警告: 保存统计数据失败: %v\n", err)
		}
	}
}

// GetUsageStats 获取统计数据的深度副本
func (s *StatsService) GetUsageStats() *UsageStats {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.cachedStats == nil {
		s.initStatsUnlocked()
	}

	return &UsageStats{
		CharactersGenerated: s.cachedStats.CharactersGenerated,
		ScriptsGenerated:    s.cachedStats.ScriptsGenerated,
		ScenesGenerated:     s.cachedStats.ScenesGenerated,
		ImagesGenerated:     s.cachedStats.ImagesGenerated,
		DailyStats:          copyIntMap(s.cachedStats.DailyStats),
		MonthlyStats:        copyIntMap(s.cachedStats.MonthlyStats),
		LastUpdated:         s.cachedStats.LastUpdated,
	}
}

// copyIntMap 映射复制
func copyIntMap(original map[string]int) map[string]int {
	if original == nil {
		return make(map[string]int)
	}

	out := make(map[string]int, len(original))
	maps.Copy(out, original)
	return out
}

// ResetStats 重置统计数据（仅用于测试或管理目的）
func (s *StatsService) ResetStats() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.cachedStats = &UsageStats{
		DailyStats:   make(map[string]int),
		MonthlyStats: make(map[string]int),
		LastUpdated:  time.Now(),
	}
	s.isDirty = true

	return s.saveStatsImmediate()
}

// Close 关闭前保存未落盘的数据
func (s *StatsService) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.saveStatsImmediate()
}
