/*
 * @author: sun977
 * @date: 2025.09.05
 * @description: 指标与天气形势HTTP接口处理器
 * @func:
 * 1.GET  /api/v1/metrics 模型指标快照
 * 2.GET  /api/v1/weather/patterns 天气形势快照
 * 3.POST /api/v1/weather/observations 上报近期形势观测
 * 4.GET  /api/v1/system/broadcast/stats 广播调度统计
 */
package dashboard

import (
	"net/http"

	"meghamaster/internal/model"
	"meghamaster/internal/pkg/logger"
	"meghamaster/internal/service/weather"
	"meghamaster/internal/websocket"

	"github.com/gin-gonic/gin"
)

// MetricsHandler 指标聚合处理器
type MetricsHandler struct {
	metricsService *weather.MetricsService
	scheduler      *websocket.BroadcastScheduler
}

// NewMetricsHandler 创建指标聚合处理器实例
func NewMetricsHandler(metricsService *weather.MetricsService, scheduler *websocket.BroadcastScheduler) *MetricsHandler {
	return &MetricsHandler{
		metricsService: metricsService,
		scheduler:      scheduler,
	}
}

// GetMetrics 查询模型指标快照
// @route GET /api/v1/metrics
func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	snapshot, err := h.metricsService.ComputeMetrics(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, "compute metrics failed", err, "compute_metrics")
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "metrics computed",
		Data:    snapshot,
	})
}

// GetWeatherPatterns 查询天气形势快照
// @route GET /api/v1/weather/patterns
func (h *MetricsHandler) GetWeatherPatterns(c *gin.Context) {
	snapshot, err := h.metricsService.ComputeWeatherPatterns(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, "compute weather patterns failed", err, "compute_weather_patterns")
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "weather patterns computed",
		Data:    snapshot,
	})
}

// ReportObservation 上报近期形势观测
// @route POST /api/v1/weather/observations
func (h *MetricsHandler) ReportObservation(c *gin.Context) {
	var req model.ReportObservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.LogError(err, c.GetHeader("X-Request-ID"), 0, c.ClientIP(), c.Request.URL.String(), "POST", map[string]interface{}{
			"operation": "report_observation",
			"option":    "ShouldBindJSON",
			"func_name": "handler.dashboard.metrics.ReportObservation",
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

	obs, err := h.metricsService.ReportObservation(c.Request.Context(), &req)
	if err != nil {
		h.writeServiceError(c, "report observation failed", err, "report_observation")
		return
	}

	c.JSON(http.StatusCreated, model.APIResponse{
		Code:    http.StatusCreated,
		Status:  "success",
		Message: "observation recorded",
		Data:    obs,
	})
}

// GetBroadcastStats 查询广播调度统计
// @route GET /api/v1/system/broadcast/stats
func (h *MetricsHandler) GetBroadcastStats(c *gin.Context) {
	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "broadcast stats retrieved",
		Data:    h.scheduler.Stats(),
	})
}

// writeServiceError 将服务层错误映射为HTTP响应
func (h *MetricsHandler) writeServiceError(c *gin.Context, message string, err error, operation string) {
	statusCode := http.StatusInternalServerError
	if weather.IsValidationError(err) {
		statusCode = http.StatusBadRequest
	} else if weather.IsTransientStoreError(err) {
		statusCode = http.StatusServiceUnavailable
	}

	logger.LogError(err, c.GetHeader("X-Request-ID"), 0, c.ClientIP(), c.Request.URL.String(), c.Request.Method, map[string]interface{}{
		"operation": operation,
		"func_name": "handler.dashboard.metrics",
		"timestamp": logger.NowFormatted(),
	})

	c.JSON(statusCode, model.APIResponse{
		Code:    statusCode,
		Status:  "error",
		Message: message,
		Error:   err.Error(),
	})
}
