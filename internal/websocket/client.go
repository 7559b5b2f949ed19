/*
 * @author: sun977
 * @date: 2025.09.05
 * @description: WebSocket客户端连接封装
 * @func:
 * 1.Conn 传输层接口(gorilla连接与测试替身均可实现)
 * 2.Client 单个已登记连接,写互斥+读循环
 * 3.ReadLoop 处理ping心跳,忽略畸形入站,空闲超时断开
 */
package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"meghamaster/internal/model"
	"meghamaster/internal/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Conn WebSocket传输层接口
// *websocket.Conn直接满足该接口
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	Close() error
}

// Client 单个已登记的WebSocket连接
type Client struct {
	ID       string // 连接唯一标识
	UserID   uint   // 连接归属用户
	Username string // 用户名

	conn      Conn
	hub       *Hub
	writeMu   sync.Mutex // 串行化并发写
	closeOnce sync.Once  // 保证注销只生效一次

	idleTimeout    time.Duration // 空闲超时,无入站消息则断开
	maxMessageSize int64         // 入站消息大小上限
}

// NewClient 创建客户端连接实例
func NewClient(id string, userID uint, username string, conn Conn, hub *Hub, idleTimeout time.Duration, maxMessageSize int64) *Client {
	if idleTimeout <= 0 {
		idleTimeout = 90 * time.Second
	}
	if maxMessageSize <= 0 {
		maxMessageSize = 512
	}
	return &Client{
		ID:             id,
		UserID:         userID,
		Username:       username,
		conn:           conn,
		hub:            hub,
		idleTimeout:    idleTimeout,
		maxMessageSize: maxMessageSize,
	}
}

// WriteMessage 序列化并写出一条消息
func (c *Client) WriteMessage(message *model.WSMessage, writeWait time.Duration) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return c.WriteRaw(data, writeWait)
}

// WriteRaw 写出已序列化的消息字节
// 写入持锁,保证广播与心跳应答不交叉
func (c *Client) WriteRaw(data []byte, writeWait time.Duration) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// ReadLoop 连接读循环,在独立goroutine中运行
// 入站仅识别ping心跳;畸形消息记录后忽略;读错误或空闲超时后注销连接
func (c *Client) ReadLoop(writeWait time.Duration) {
	defer c.hub.Deregister(c)

	c.conn.SetReadLimit(c.maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(c.idleTimeout)); err != nil {
		return
	}

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WithFields(logrus.Fields{
					"connection_id": c.ID,
					"user_id":       c.UserID,
					"error":         err.Error(),
					"timestamp":     logger.NowFormatted(),
				}).Warn("websocket read error")
			}
			return
		}

		// 收到任何入站消息都刷新空闲计时
		if err := c.conn.SetReadDeadline(time.Now().Add(c.idleTimeout)); err != nil {
			return
		}

		var inbound model.WSInbound
		if err := json.Unmarshal(data, &inbound); err != nil {
			logger.WithFields(logrus.Fields{
				"connection_id": c.ID,
				"timestamp":     logger.NowFormatted(),
			}).Debug("ignoring malformed websocket message")
			continue
		}

		if inbound.Type == model.WSTypePing {
			pong := &model.WSMessage{
				Type:      model.WSTypePong,
				Timestamp: logger.NowFormatted(),
			}
			if err := c.WriteMessage(pong, writeWait); err != nil {
				return
			}
		}
		// 其他消息类型忽略,连接保持
	}
}
