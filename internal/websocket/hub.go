/*
 * @author: sun977
 * @date: 2025.09.05
 * @description: WebSocket连接登记中心
 * @func:
 * 1.Register 登记新连接并下发连接确认
 * 2.Deregister 注销连接(幂等,注销后不再收到任何推送)
 * 3.Broadcast 向全部已登记连接扇出消息,单连接失败不影响其他连接
 */
package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"meghamaster/internal/model"
	"meghamaster/internal/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Hub WebSocket连接登记中心
// 所有读写都经过互斥锁,广播时按当前登记集合快照扇出
type Hub struct {
	mu        sync.RWMutex
	clients   map[string]*Client // 连接ID -> 客户端
	writeWait time.Duration      // 单次写入超时
}

// NewHub 创建连接登记中心实例
func NewHub(writeWait time.Duration) *Hub {
	if writeWait <= 0 {
		writeWait = 10 * time.Second
	}
	return &Hub{
		clients:   make(map[string]*Client),
		writeWait: writeWait,
	}
}

// Register 登记新连接并下发连接确认消息
// 确认消息下发失败时立即注销该连接
func (h *Hub) Register(client *Client) error {
	h.mu.Lock()
	h.clients[client.ID] = client
	count := len(h.clients)
	h.mu.Unlock()

	logger.WithFields(logrus.Fields{
		"connection_id": client.ID,
		"user_id":       client.UserID,
		"client_count":  count,
		"timestamp":     logger.NowFormatted(),
	}).Info("websocket client registered")

	ack := &model.WSMessage{
		Type:      model.WSTypeConnection,
		Status:    "connected",
		Timestamp: logger.NowFormatted(),
	}
	if err := client.WriteMessage(ack, h.writeWait); err != nil {
		h.Deregister(client)
		return err
	}
	return nil
}

// Deregister 注销连接
// 可重复调用,只有首次生效;注销后该连接不再出现在任何广播中
func (h *Hub) Deregister(client *Client) {
	client.closeOnce.Do(func() {
		h.mu.Lock()
		delete(h.clients, client.ID)
		count := len(h.clients)
		h.mu.Unlock()

		client.conn.Close()

		logger.WithFields(logrus.Fields{
			"connection_id": client.ID,
			"user_id":       client.UserID,
			"client_count":  count,
			"timestamp":     logger.NowFormatted(),
		}).Info("websocket client deregistered")
	})
}

// Broadcast 向全部已登记连接推送消息
// 序列化一次,逐连接下发;写失败的连接被注销,其余连接继续接收
// 返回成功下发数与失败数
func (h *Hub) Broadcast(message *model.WSMessage) (delivered int, failed int) {
	data, err := json.Marshal(message)
	if err != nil {
		logger.LogError(err, "", 0, "", "websocket.broadcast", "HUB", map[string]interface{}{
			"operation": "marshal_broadcast",
		})
		return 0, 0
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if err := client.WriteRaw(data, h.writeWait); err != nil {
			failed++
			logger.WithFields(logrus.Fields{
				"connection_id": client.ID,
				"user_id":       client.UserID,
				"error":         err.Error(),
				"timestamp":     logger.NowFormatted(),
			}).Warn("websocket broadcast write failed, dropping client")
			h.Deregister(client)
			continue
		}
		delivered++
	}
	return delivered, failed
}

// ClientCount 当前已登记连接数
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll 注销全部连接,服务停机时调用
func (h *Hub) CloseAll() {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		h.Deregister(client)
	}
}
