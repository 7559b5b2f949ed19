/*
 * @author: sun977
 * @date: 2025.09.05
 * @description: 气象预警HTTP接口处理器
 * @func:
 * 1.POST /api/v1/alerts 创建预警
 * 2.GET  /api/v1/alerts/active 查询有效预警列表
 * 3.POST /api/v1/alerts/:id/deactivate 停用预警
 */
package dashboard

import (
	"net/http"
	"strconv"

	"meghamaster/internal/model"
	"meghamaster/internal/pkg/logger"
	"meghamaster/internal/service/weather"

	"github.com/gin-gonic/gin"
)

// AlertHandler 气象预警处理器
type AlertHandler struct {
	alertService *weather.AlertService
}

// NewAlertHandler 创建气象预警处理器实例
func NewAlertHandler(alertService *weather.AlertService) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
	}
}

// CreateAlert 创建气象预警
// @route POST /api/v1/alerts
func (h *AlertHandler) CreateAlert(c *gin.Context) {
	clientIP := c.ClientIP()
	requestID := c.GetHeader("X-Request-ID")
	urlPath := c.Request.URL.String()

	var req model.CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.LogError(err, requestID, 0, clientIP, urlPath, "POST", map[string]interface{}{
			"operation": "create_alert",
			"option":    "ShouldBindJSON",
			"func_name": "handler.dashboard.alert.CreateAlert",
			"timestamp": logger.NowFormatted(),
		})
		c.JSON(http.StatusBadRequest, model.APIResponse{
			Code:    http.StatusBadRequest,
			Status:  "error",
			Message: "invalid request body",
			Error:   err.Error(),
		})
		return
	}

	alert, err := h.alertService.CreateAlert(c.Request.Context(), &req)
	if err != nil {
		h.writeServiceError(c, "create alert failed", err, "create_alert")
		return
	}

	c.JSON(http.StatusCreated, model.APIResponse{
		Code:    http.StatusCreated,
		Status:  "success",
		Message: "alert created",
		Data:    alert,
	})
}

// ListActiveAlerts 查询当前有效预警列表
// @route GET /api/v1/alerts/active
func (h *AlertHandler) ListActiveAlerts(c *gin.Context) {
	alerts, err := h.alertService.ListActiveAlerts(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, "list active alerts failed", err, "list_active_alerts")
		return
	}

	list := make([]model.WeatherAlert, 0, len(alerts))
	for _, alert := range alerts {
		list = append(list, *alert)
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "active alerts retrieved",
		Data: model.AlertListResponse{
			Alerts: list,
			Count:  len(list),
		},
	})
}

// DeactivateAlert 停用指定预警
// @route POST /api/v1/alerts/:id/deactivate
func (h *AlertHandler) DeactivateAlert(c *gin.Context) {
	idParam := c.Param("id")
	alertID, err := strconv.ParseUint(idParam, 10, 32)
	if err != nil || alertID == 0 {
		c.JSON(http.StatusBadRequest, model.APIResponse{
			Code:    http.StatusBadRequest,
			Status:  "error",
			Message: "invalid alert id",
		})
		return
	}

	if err := h.alertService.DeactivateAlert(c.Request.Context(), uint(alertID)); err != nil {
		h.writeServiceError(c, "deactivate alert failed", err, "deactivate_alert")
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "alert deactivated",
	})
}

// writeServiceError 将服务层错误映射为HTTP响应
func (h *AlertHandler) writeServiceError(c *gin.Context, message string, err error, operation string) {
	statusCode := http.StatusInternalServerError
	if weather.IsValidationError(err) {
		statusCode = http.StatusBadRequest
	} else if weather.IsTransientStoreError(err) {
		statusCode = http.StatusServiceUnavailable
	}

	logger.LogError(err, c.GetHeader("X-Request-ID"), 0, c.ClientIP(), c.Request.URL.String(), c.Request.Method, map[string]interface{}{
		"operation": operation,
		"func_name": "handler.dashboard.alert",
		"timestamp": logger.NowFormatted(),
	})

	c.JSON(statusCode, model.APIResponse{
		Code:    statusCode,
		Status:  "error",
		Message: message,
		Error:   err.Error(),
	})
}
