/*
 * @author: sun977
 * @date: 2025.09.05
 * @description: WebSocket接入HTTP处理器
 * @func:
 * 1.GET /ws?token=xxx 会话门禁通过后升级为WebSocket并登记连接
 */
package dashboard

import (
	"net/http"

	"meghamaster/internal/config"
	"meghamaster/internal/model"
	"meghamaster/internal/pkg/logger"
	"meghamaster/internal/service/auth"
	ws "meghamaster/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// WSHandler WebSocket接入处理器
type WSHandler struct {
	sessionService *auth.SessionService
	hub            *ws.Hub
	upgrader       websocket.Upgrader
	wsConfig       config.WebSocketConfig
}

// NewWSHandler 创建WebSocket接入处理器实例
func NewWSHandler(sessionService *auth.SessionService, hub *ws.Hub, wsConfig config.WebSocketConfig) *WSHandler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  wsConfig.ReadBufferSize,
		WriteBufferSize: wsConfig.WriteBufferSize,
	}
	if !wsConfig.CheckOrigin {
		// 仪表盘与接入端同源部署时关闭来源检查
		upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	}
	return &WSHandler{
		sessionService: sessionService,
		hub:            hub,
		upgrader:       upgrader,
		wsConfig:       wsConfig,
	}
}

// HandleConnection 处理WebSocket接入请求
// @route GET /ws?token=xxx
// 门禁失败返回401且不升级;升级失败由gorilla写入HTTP错误响应
func (h *WSHandler) HandleConnection(c *gin.Context) {
	token := c.Query("token")
	claims, err := h.sessionService.ValidateSession(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, model.APIResponse{
			Code:    http.StatusUnauthorized,
			Status:  "error",
			Message: "unauthorized",
		})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.LogError(err, c.GetHeader("X-Request-ID"), claims.UserID, c.ClientIP(), c.Request.URL.Path, "GET", map[string]interface{}{
			"operation": "websocket_upgrade",
			"func_name": "handler.dashboard.ws.HandleConnection",
			"timestamp": logger.NowFormatted(),
		})
		return
	}

	client := ws.NewClient(uuid.New().String(), claims.UserID, claims.Username, conn, h.hub, h.wsConfig.IdleTimeout, h.wsConfig.MaxMessageSize)
	if err := h.hub.Register(client); err != nil {
		logger.WithFields(logrus.Fields{
			"connection_id": client.ID,
			"user_id":       claims.UserID,
			"error":         err.Error(),
			"timestamp":     logger.NowFormatted(),
		}).Warn("websocket connection ack failed")
		return
	}

	// 登记成功后记录会话来源,读取失败只记日志不影响连接
	if session, err := h.sessionService.GetSessionData(c.Request.Context(), claims.UserID); err == nil {
		logger.LogBusinessOperation("websocket_connect", claims.UserID, claims.Username, c.ClientIP(), "", "success", "dashboard connection established", map[string]interface{}{
			"connection_id": client.ID,
			"login_at":      session.LoginAt,
			"login_ip":      session.ClientIP,
			"user_agent":    session.UserAgent,
		})
	} else {
		logger.WithFields(logrus.Fields{
			"connection_id": client.ID,
			"user_id":       claims.UserID,
			"error":         err.Error(),
		}).Debug("session origin lookup failed")
	}

	go client.ReadLoop(h.wsConfig.WriteWait)
}
