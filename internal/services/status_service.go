// internal/services/status_service.go
package services

import (
	"sync"
	"time"

	"github.com/Corphon/StoryReelStudio/internal/models"
)

// StatusUpdate 一次生成操作的状态变更通知
type StatusUpdate struct {
	EntityID string                  `json:"entity_id"`
	Status   models.GenerationStatus `json:"status"`
	Message  string                  `json:"message,omitempty"`
}

// entityStatus 单个实体的状态记录
type entityStatus struct {
	status  models.GenerationStatus
	message string
	updated time.Time
}

// StatusService 按实体标识跟踪每个生成操作的状态
// 一个实体的失败只影响它自己的槽位，不会波及其他操作
type StatusService struct {
	statuses    map[string]*entityStatus
	subscribers map[chan StatusUpdate]bool
	mutex       sync.RWMutex
}

// NewStatusService 创建状态跟踪服务
func NewStatusService() *StatusService {
	return &StatusService{
		statuses:    make(map[string]*entityStatus),
		subscribers: make(map[chan StatusUpdate]bool),
	}
}

// Set 更新指定实体的状态并通知所有订阅者
func (s *StatusService) Set(entityID string, status models.GenerationStatus, message string) {
	s.mutex.Lock()
	s.statuses[entityID] = &entityStatus{
		status:  status,
		message: message,
		updated: time.Now(),
	}

	update := StatusUpdate{
		EntityID: entityID,
		Status:   status,
		Message:  message,
	}

	for subscriber := range s.subscribers {
		// 非阻塞发送，通道已满则跳过
		select {
		case subscriber <- update:
		default:
		}
	}
	s.mutex.Unlock()
}

// Get 查询指定实体的状态，未知实体为 idle
func (s *StatusService) Get(entityID string) StatusUpdate {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if st, exists := s.statuses[entityID]; exists {
		return StatusUpdate{
			EntityID: entityID,
			Status:   st.status,
			Message:  st.message,
		}
	}

	return StatusUpdate{EntityID: entityID, Status: models.StatusIdle}
}

// All 返回当前全部非空闲状态的快照
func (s *StatusService) All() []StatusUpdate {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]StatusUpdate, 0, len(s.statuses))
	for id, st := range s.statuses {
		out = append(out, StatusUpdate{
			EntityID: id,
			Status:   st.status,
			Message:  st.message,
		})
	}
	return out
}

// Subscribe 订阅状态变更
func (s *StatusService) Subscribe() chan StatusUpdate {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	// 缓冲区设为16以避免阻塞发布方
	subscriber := make(chan StatusUpdate, 16)
	s.subscribers[subscriber] = true
	return subscriber
}

// Unsubscribe 取消订阅
func (s *StatusService) Unsubscribe(subscriber chan StatusUpdate) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.subscribers[subscriber] {
		delete(s.subscribers, subscriber)
		close(subscriber)
	}
}

// CleanupSettled 清理长时间未变化的终态记录
func (s *StatusService) CleanupSettled(maxAge time.Duration) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now()
	for id, st := range s.statuses {
		settled := st.status == models.StatusSuccess || st.status == models.StatusError
		if settled && now.Sub(st.updated) > maxAge {
			delete(s.statuses, id)
		}
	}
}
