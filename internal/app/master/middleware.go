/*
 * @author: sun977
 * @date: 2025.09.05
 * @description: 中间件管理器
 * @func:
 * 1.GinSessionAuthMiddleware 会话门禁中间件(Bearer令牌)
 * 2.GinCORSMiddleware CORS中间件
 * 3.GinLoggingMiddleware 访问日志中间件
 */
package master

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"meghamaster/internal/config"
	"meghamaster/internal/model"
	"meghamaster/internal/pkg/logger"
	"meghamaster/internal/service/auth"

	"github.com/gin-gonic/gin"
)

// MiddlewareManager 中间件管理器
type MiddlewareManager struct {
	sessionService *auth.SessionService
	corsConfig     config.CORSConfig
}

// NewMiddlewareManager 创建中间件管理器
func NewMiddlewareManager(sessionService *auth.SessionService, corsConfig config.CORSConfig) *MiddlewareManager {
	return &MiddlewareManager{
		sessionService: sessionService,
		corsConfig:     corsConfig,
	}
}

// GinSessionAuthMiddleware 会话门禁中间件
// 从Authorization头提取Bearer令牌,校验通过后将用户信息写入上下文
func (m *MiddlewareManager) GinSessionAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := m.extractTokenFromHeader(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, model.APIResponse{
				Code:    http.StatusUnauthorized,
				Status:  "error",
				Message: "missing or invalid authorization header",
			})
			c.Abort()
			return
		}

		claims, err := m.sessionService.ValidateSession(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, model.APIResponse{
				Code:    http.StatusUnauthorized,
				Status:  "error",
				Message: "invalid or expired session",
			})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Next()
	}
}

// GinCORSMiddleware CORS中间件
func (m *MiddlewareManager) GinCORSMiddleware() gin.HandlerFunc {
	allowOrigins := "*"
	if len(m.corsConfig.AllowOrigins) > 0 {
		allowOrigins = strings.Join(m.corsConfig.AllowOrigins, ", ")
	}
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowOrigins)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		// 处理预检请求
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

// GinLoggingMiddleware 访问日志中间件
func (m *MiddlewareManager) GinLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		userID := uint(0)
		username := ""
		if uid, exists := c.Get("user_id"); exists {
			if uidUint, ok := uid.(uint); ok {
				userID = uidUint
			}
		}
		if uname, exists := c.Get("username"); exists {
			if unameStr, ok := uname.(string); ok {
				username = unameStr
			}
		}

		logger.LogBusinessOperation("http_request", userID, username, c.ClientIP(), c.GetHeader("X-Request-ID"), "info", "api request", map[string]interface{}{
			"method":        c.Request.Method,
			"url":           c.Request.URL.String(),
			"status_code":   statusCode,
			"duration_ms":   duration.Milliseconds(),
			"user_agent":    c.Request.UserAgent(),
			"request_size":  c.Request.ContentLength,
			"response_size": int64(c.Writer.Size()),
			"timestamp":     logger.NowFormatted(),
		})

		if statusCode >= 500 {
			errorMsg := ""
			if errs := c.Errors; len(errs) > 0 {
				errorMsg = errs.String()
			}
			logger.LogError(fmt.Errorf("HTTP %d: %s", statusCode, errorMsg), c.GetHeader("X-Request-ID"), userID, c.ClientIP(), c.Request.URL.String(), c.Request.Method, map[string]interface{}{
				"operation":   "http_request",
				"status_code": statusCode,
				"timestamp":   logger.NowFormatted(),
			})
		}
	}
}

// GinRecoveryMiddleware panic恢复中间件
func (m *MiddlewareManager) GinRecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.LogError(fmt.Errorf("panic recovered: %v", recovered), c.GetHeader("X-Request-ID"), 0, c.ClientIP(), c.Request.URL.String(), c.Request.Method, map[string]interface{}{
			"operation": "panic_recovery",
			"timestamp": logger.NowFormatted(),
		})
		c.JSON(http.StatusInternalServerError, model.APIResponse{
			Code:    http.StatusInternalServerError,
			Status:  "error",
			Message: "internal server error",
		})
	})
}

// extractTokenFromHeader 从Authorization头提取Bearer令牌
func (m *MiddlewareManager) extractTokenFromHeader(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("authorization header is empty")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", fmt.Errorf("authorization header format must be 'Bearer {token}'")
	}
	return parts[1], nil
}
