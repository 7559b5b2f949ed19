/*
 * @author: sun977
 * @date: 2025.09.06
 * @description: 连接登记中心测试
 */
package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"meghamaster/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn 测试用传输替身,记录全部写出帧
type fakeConn struct {
	mu         sync.Mutex
	frames     [][]byte
	writeErr   error
	closeCalls int
	readCh     chan []byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{readCh: make(chan []byte, 16)}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	data, ok := <-c.readCh
	if !ok {
		return 0, nil, errors.New("connection closed")
	}
	return 1, data, nil
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	c.frames = append(c.frames, buf)
	return nil
}

func (c *fakeConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(t time.Time) error { return nil }
func (c *fakeConn) SetReadLimit(limit int64)           {}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeCalls++
	return nil
}

func (c *fakeConn) frameCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func (c *fakeConn) lastFrame(t *testing.T) *model.WSMessage {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.frames)

	var msg model.WSMessage
	require.NoError(t, json.Unmarshal(c.frames[len(c.frames)-1], &msg))
	return &msg
}

func registerTestClient(t *testing.T, hub *Hub, id string) (*Client, *fakeConn) {
	t.Helper()
	conn := newFakeConn()
	client := NewClient(id, 1, "forecaster", conn, hub, time.Minute, 512)
	require.NoError(t, hub.Register(client))
	return client, conn
}

func TestRegisterSendsConnectionAck(t *testing.T) {
	hub := NewHub(time.Second)

	_, conn := registerTestClient(t, hub, "conn-1")

	assert.Equal(t, 1, hub.ClientCount())
	require.Equal(t, 1, conn.frameCount())

	ack := conn.lastFrame(t)
	assert.Equal(t, model.WSTypeConnection, ack.Type)
	assert.Equal(t, "connected", ack.Status)
	assert.NotEmpty(t, ack.Timestamp)
}

func TestRegisterAckFailureDropsClient(t *testing.T) {
	hub := NewHub(time.Second)

	conn := newFakeConn()
	conn.writeErr = errors.New("broken pipe")
	client := NewClient("conn-1", 1, "forecaster", conn, hub, time.Minute, 512)

	err := hub.Register(client)
	require.Error(t, err)
	assert.Equal(t, 0, hub.ClientCount())
	assert.Equal(t, 1, conn.closeCalls)
}

func TestBroadcastFanout(t *testing.T) {
	hub := NewHub(time.Second)

	conns := make([]*fakeConn, 0, 3)
	for i := 0; i < 3; i++ {
		_, conn := registerTestClient(t, hub, fmt.Sprintf("conn-%d", i))
		conns = append(conns, conn)
	}

	delivered, failed := hub.Broadcast(&model.WSMessage{
		Type:      model.WSTypeUpdate,
		Timestamp: "2025-09-06 12:00:00.000",
	})

	assert.Equal(t, 3, delivered)
	assert.Equal(t, 0, failed)

	for _, conn := range conns {
		// 连接确认 + 一条update
		assert.Equal(t, 2, conn.frameCount())
		assert.Equal(t, model.WSTypeUpdate, conn.lastFrame(t).Type)
	}
}

func TestBroadcastFailureIsolation(t *testing.T) {
	hub := NewHub(time.Second)

	_, healthy1 := registerTestClient(t, hub, "conn-1")
	_, broken := registerTestClient(t, hub, "conn-2")
	_, healthy2 := registerTestClient(t, hub, "conn-3")

	// 注册完成后连接损坏
	broken.mu.Lock()
	broken.writeErr = errors.New("broken pipe")
	broken.mu.Unlock()

	delivered, failed := hub.Broadcast(&model.WSMessage{Type: model.WSTypeUpdate})

	// 单连接失败不影响其他连接
	assert.Equal(t, 2, delivered)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 2, hub.ClientCount())

	assert.Equal(t, 2, healthy1.frameCount())
	assert.Equal(t, 2, healthy2.frameCount())
	assert.Equal(t, 1, broken.closeCalls)
}

func TestDeregisterIdempotent(t *testing.T) {
	hub := NewHub(time.Second)

	client, conn := registerTestClient(t, hub, "conn-1")

	hub.Deregister(client)
	hub.Deregister(client)

	assert.Equal(t, 0, hub.ClientCount())
	assert.Equal(t, 1, conn.closeCalls)
}

func TestNoSendAfterDeregister(t *testing.T) {
	hub := NewHub(time.Second)

	client, conn := registerTestClient(t, hub, "conn-1")
	framesBefore := conn.frameCount()

	hub.Deregister(client)

	delivered, failed := hub.Broadcast(&model.WSMessage{Type: model.WSTypeUpdate})
	assert.Equal(t, 0, delivered)
	assert.Equal(t, 0, failed)
	assert.Equal(t, framesBefore, conn.frameCount())
}

func TestCloseAll(t *testing.T) {
	hub := NewHub(time.Second)

	_, conn1 := registerTestClient(t, hub, "conn-1")
	_, conn2 := registerTestClient(t, hub, "conn-2")

	hub.CloseAll()

	assert.Equal(t, 0, hub.ClientCount())
	assert.Equal(t, 1, conn1.closeCalls)
	assert.Equal(t, 1, conn2.closeCalls)
}

func TestReadLoopPingPong(t *testing.T) {
	hub := NewHub(time.Second)

	client, conn := registerTestClient(t, hub, "conn-1")

	done := make(chan struct{})
	go func() {
		client.ReadLoop(time.Second)
		close(done)
	}()

	// 畸形入站被忽略,连接保持
	conn.readCh <- []byte("not-json")
	// ping得到pong应答
	conn.readCh <- []byte(`{"type":"ping"}`)
	// 未知类型被忽略
	conn.readCh <- []byte(`{"type":"subscribe"}`)

	require.Eventually(t, func() bool {
		return conn.frameCount() >= 2
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, model.WSTypePong, conn.lastFrame(t).Type)
	assert.Equal(t, 1, hub.ClientCount())

	// 读端关闭后连接被注销
	close(conn.readCh)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("read loop did not exit")
	}
	assert.Equal(t, 0, hub.ClientCount())
}
