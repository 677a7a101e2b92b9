// internal/api/websocket_test.go
package api

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Corphon/StoryReelStudio/internal/models"
	"github.com/Corphon/StoryReelStudio/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn 仅满足接口，不做真实IO
type fakeConn struct{}

func (fakeConn) WriteMessage(messageType int, data []byte) error { return nil }
func (fakeConn) ReadMessage() (int, []byte, error)               { return 0, nil, nil }
func (fakeConn) Close() error                                    { return nil }
func (fakeConn) SetReadDeadline(t time.Time) error               { return nil }
func (fakeConn) SetWriteDeadline(t time.Time) error              { return nil }
func (fakeConn) SetPongHandler(h func(appData string) error)     {}

func newFakeClient() *UpdateClient {
	return &UpdateClient{
		conn:      fakeConn{},
		send:      make(chan []byte, 16),
		lastPing:  time.Now(),
		createdAt: time.Now(),
	}
}

// receiveEvent 从客户端队列读取并解码一条事件
func receiveEvent(t *testing.T, client *UpdateClient) map[string]interface{} {
	t.Helper()
	select {
	case raw := <-client.send:
		var event map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("未收到广播事件")
		return nil
	}
}

func TestHubBroadcastsStatusUpdates(t *testing.T) {
	status := services.NewStatusService()
	updates := status.Subscribe()

	hub := NewUpdateHub()
	go hub.Run(updates)
	defer hub.Stop()

	client := newFakeClient()
	hub.register <- client

	// 等待注册完成后再触发状态变更
	require.Eventually(t, func() bool {
		return hub.GetStatus()["total_connections"] == 1
	}, time.Second, 5*time.Millisecond)

	status.Set("s1", models.StatusLoading, "")

	event := receiveEvent(t, client)
	assert.Equal(t, "status_update", event["type"])
	assert.NotEmpty(t, event["timestamp"])

	payload, ok := event["payload"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "s1", payload["entity_id"])
	assert.Equal(t, "loading", payload["status"])
}

func TestHubBroadcastEventWrapsPayload(t *testing.T) {
	hub := NewUpdateHub()
	go hub.Run(make(chan services.StatusUpdate))
	defer hub.Stop()

	client := newFakeClient()
	hub.register <- client
	require.Eventually(t, func() bool {
		return hub.GetStatus()["total_connections"] == 1
	}, time.Second, 5*time.Millisecond)

	hub.BroadcastEvent("character_added", map[string]string{"id": "c1"})

	event := receiveEvent(t, client)
	assert.Equal(t, "character_added", event["type"])

	payload, ok := event["payload"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "c1", payload["id"])
}

func TestHubUnregisterRemovesClient(t *testing.T) {
	hub := NewUpdateHub()
	go hub.Run(make(chan services.StatusUpdate))
	defer hub.Stop()

	client := newFakeClient()
	hub.register <- client
	require.Eventually(t, func() bool {
		return hub.GetStatus()["total_connections"] == 1
	}, time.Second, 5*time.Millisecond)

	hub.unregister <- client
	require.Eventually(t, func() bool {
		return hub.GetStatus()["total_connections"] == 0
	}, time.Second, 5*time.Millisecond)

	assert.True(t, client.IsClosed())
}

// errConn 写入即失败，用于触发写循环退出
type errConn struct {
	fakeConn
}

func (errConn) WriteMessage(messageType int, data []byte) error {
	return errors.New("broken pipe")
}

func TestWritePumpExitLeavesSendChannelOpen(t *testing.T) {
	hub := NewUpdateHub()
	client := &UpdateClient{
		conn:      errConn{},
		send:      make(chan []byte, 16),
		lastPing:  time.Now(),
		createdAt: time.Now(),
	}

	done := make(chan struct{})
	go func() {
		hub.writePump(client)
		close(done)
	}()

	client.send <- []byte(`{"type":"status_update"}`)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("写循环未在写入失败后退出")
	}
	require.True(t, client.IsClosed())

	// 写循环退出后通道仍然开启，广播侧迟到的投递不会触发panic
	assert.NotPanics(t, func() {
		client.send <- []byte(`{"type":"late"}`)
	})
}

func TestHubStopClosesClients(t *testing.T) {
	hub := NewUpdateHub()
	done := make(chan struct{})
	go func() {
		hub.Run(make(chan services.StatusUpdate))
		close(done)
	}()

	client := newFakeClient()
	hub.register <- client
	require.Eventually(t, func() bool {
		return hub.GetStatus()["total_connections"] == 1
	}, time.Second, 5*time.Millisecond)

	hub.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("推送中心未能按请求停止")
	}
	assert.True(t, client.IsClosed())
}
