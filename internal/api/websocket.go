// internal/api/websocket.go
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Corphon/StoryReelStudio/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WebSocket 升级器配置
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 在生产环境中应该进行更严格的检查
		return true
	},
}

// WebSocketConnection 定义 WebSocket 连接的接口
type WebSocketConnection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
}

// UpdateClient 表示一个订阅状态推送的 WebSocket 客户端
type UpdateClient struct {
	conn      WebSocketConnection
	send      chan []byte
	closed    int32     // 原子操作标志，0=开启，1=关闭
	lastPing  time.Time // 最后一次ping时间
	createdAt time.Time // 创建时间
}

// UpdateHub 管理所有状态推送连接
// 订阅状态服务的变更通知并广播给全部客户端
type UpdateHub struct {
	clients       map[WebSocketConnection]*UpdateClient
	broadcast     chan []byte
	register      chan *UpdateClient
	unregister    chan *UpdateClient
	shutdown      chan bool
	mutex         sync.RWMutex
	pingTimeout   time.Duration
	cleanupTicker *time.Ticker
}

// NewUpdateHub 创建状态推送中心
func NewUpdateHub() *UpdateHub {
	return &UpdateHub{
		clients:     make(map[WebSocketConnection]*UpdateClient),
		broadcast:   make(chan []byte, 256),
		register:    make(chan *UpdateClient, 256),
		unregister:  make(chan *UpdateClient, 256),
		shutdown:    make(chan bool, 1),
		pingTimeout: 60 * time.Second,
	}
}

// ========================================
// UpdateClient 方法
// ========================================

// Close 安全关闭客户端连接
func (client *UpdateClient) Close() {
	if atomic.CompareAndSwapInt32(&client.closed, 0, 1) {
		// 只设置关闭标志并断开连接；send 通道保持开启，交由GC回收
		if client.conn != nil {
			client.conn.Close()
		}
	}
}

// IsClosed 检查连接是否已关闭
func (client *UpdateClient) IsClosed() bool {
	return atomic.LoadInt32(&client.closed) == 1
}

// UpdatePing 更新最后ping时间
func (client *UpdateClient) UpdatePing() {
	client.lastPing = time.Now()
}

// IsExpired 检查连接是否超时
func (client *UpdateClient) IsExpired(timeout time.Duration) bool {
	if timeout <= 0 {
		return true
	}
	return time.Since(client.lastPing) > timeout
}

// ========================================
// UpdateHub 方法
// ========================================

// Run 运行推送中心主循环
// updates 为状态服务的订阅通道，收到的每条变更都会广播给所有客户端
func (hub *UpdateHub) Run(updates <-chan services.StatusUpdate) {
	hub.cleanupTicker = time.NewTicker(30 * time.Second)
	defer hub.cleanupTicker.Stop()

	for {
		select {
		case client := <-hub.register:
			hub.registerClient(client)

		case client := <-hub.unregister:
			hub.unregisterClient(client)

		case update, ok := <-updates:
			if !ok {
				hub.shutdownClients()
				return
			}
			hub.BroadcastEvent("status_update", update)

		case <-hub.cleanupTicker.C:
			hub.cleanupExpiredConnections()

		case message := <-hub.broadcast:
			hub.broadcastMessage(message)

		case <-hub.shutdown:
			hub.shutdownClients()
			return
		}
	}
}

// Stop 请求关闭推送中心
func (hub *UpdateHub) Stop() {
	select {
	case hub.shutdown <- true:
	default:
	}
}

// registerClient 注册新客户端
func (hub *UpdateHub) registerClient(client *UpdateClient) {
	if client == nil {
		return
	}

	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	hub.clients[client.conn] = client
	client.UpdatePing()

	log.Printf("✅ WebSocket 客户端已连接 (当前连接数: %d)", len(hub.clients))
}

// unregisterClient 安全注销客户端
func (hub *UpdateHub) unregisterClient(client *UpdateClient) {
	if client == nil {
		return
	}

	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	delete(hub.clients, client.conn)

	if !client.IsClosed() {
		client.Close()
	}

	log.Printf("🔌 WebSocket 客户端已断开 (当前连接数: %d)", len(hub.clients))
}

// cleanupExpiredConnections 清理过期和死连接
func (hub *UpdateHub) cleanupExpiredConnections() {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	for conn, client := range hub.clients {
		if client.IsClosed() || client.IsExpired(hub.pingTimeout) {
			delete(hub.clients, conn)
			if !client.IsClosed() {
				client.Close()
			}
		}
	}
}

// BroadcastEvent 向所有客户端广播一个带类型标签的事件
func (hub *UpdateHub) BroadcastEvent(eventType string, payload interface{}) {
	message := map[string]interface{}{
		"type":      eventType,
		"payload":   payload,
		"timestamp": time.Now().Format(time.RFC3339),
	}

	msgBytes, err := json.Marshal(message)
	if err != nil {
		log.Printf("❌ 序列化广播消息失败: %v", err)
		return
	}

	select {
	case hub.broadcast <- msgBytes:
	default:
		// 广播队列满时丢弃，状态快照可通过查询接口补齐
	}
}

// broadcastMessage 广播消息到全部客户端
func (hub *UpdateHub) broadcastMessage(message []byte) {
	hub.mutex.RLock()
	clients := make([]*UpdateClient, 0, len(hub.clients))
	for _, client := range hub.clients {
		if !client.IsClosed() {
			clients = append(clients, client)
		}
	}
	hub.mutex.RUnlock()

	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			// 队列满，关闭慢客户端
			client.Close()
			select {
			case hub.unregister <- client:
			default:
			}
		}
	}
}

// shutdownClients 关闭全部客户端连接
func (hub *UpdateHub) shutdownClients() {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	for _, client := range hub.clients {
		client.Close()
	}
	hub.clients = make(map[WebSocketConnection]*UpdateClient)
}

// GetStatus 获取推送中心状态
func (hub *UpdateHub) GetStatus() map[string]interface{} {
	hub.mutex.RLock()
	defer hub.mutex.RUnlock()

	active := 0
	clients := make([]interface{}, 0)
	for _, client := range hub.clients {
		if client != nil && !client.IsClosed() {
			active++
			clients = append(clients, map[string]interface{}{
				"connected_at": client.createdAt.Format(time.RFC3339),
				"last_ping":    client.lastPing.Format(time.RFC3339),
			})
		}
	}

	return map[string]interface{}{
		"total_connections": active,
		"clients":           clients,
	}
}

// ServeUpdates 处理 /ws/updates 的连接升级与读写循环
func (hub *UpdateHub) ServeUpdates(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ WebSocket 升级失败: %v", err)
		return
	}

	client := &UpdateClient{
		conn:      conn,
		send:      make(chan []byte, 64),
		lastPing:  time.Now(),
		createdAt: time.Now(),
	}

	hub.register <- client

	go hub.writePump(client)
	go hub.readPump(client)
}

// readPump 读取循环：只处理 ping/pong 与关闭
func (hub *UpdateHub) readPump(client *UpdateClient) {
	defer func() {
		hub.unregister <- client
	}()

	client.conn.SetReadDeadline(time.Now().Add(hub.pingTimeout))
	client.conn.SetPongHandler(func(string) error {
		client.UpdatePing()
		client.conn.SetReadDeadline(time.Now().Add(hub.pingTimeout))
		return nil
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
		client.UpdatePing()
		client.conn.SetReadDeadline(time.Now().Add(hub.pingTimeout))
	}
}

// writePump 写入循环：发送广播消息并定期探活
// send 通道从不关闭，退出后由GC回收；关闭它会与广播侧的投递竞争
func (hub *UpdateHub) writePump(client *UpdateClient) {
	pingTicker := time.NewTicker(hub.pingTimeout / 2)
	defer func() {
		pingTicker.Stop()
		client.Close()
	}()

	for {
		select {
		case message := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-pingTicker.C:
			if client.IsClosed() {
				return
			}
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
