/*
 * @author: sun977
 * @date: 2025.09.05
 * @description: ML模型状态HTTP接口处理器
 * @func:
 * 1.GET  /api/v1/models 查询全部模型状态
 * 2.POST /api/v1/models 登记或更新模型状态
 * 3.POST /api/v1/models/:name/train 标记训练中
 * 4.POST /api/v1/models/:name/predict 记录一次预测调用
 */
package dashboard

import (
	"net/http"

	"meghamaster/internal/model"
	"meghamaster/internal/pkg/logger"
	"meghamaster/internal/service/weather"

	"github.com/gin-gonic/gin"
)

// ModelStatusHandler ML模型状态处理器
type ModelStatusHandler struct {
	statusService *weather.ModelStatusService
}

// NewModelStatusHandler 创建ML模型状态处理器实例
func NewModelStatusHandler(statusService *weather.ModelStatusService) *ModelStatusHandler {
	return &ModelStatusHandler{
		statusService: statusService,
	}
}

// ListModelStatuses 查询全部模型状态
// @route GET /api/v1/models
func (h *ModelStatusHandler) ListModelStatuses(c *gin.Context) {
	statuses, err := h.statusService.GetAllModelStatuses(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, "list model statuses failed", err, "list_model_statuses")
		return
	}

	list := make([]model.ModelStatus, 0, len(statuses))
	for _, status := range statuses {
		list = append(list, *status)
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "model statuses retrieved",
		Data: model.ModelStatusListResponse{
			Models: list,
			Count:  len(list),
		},
	})
}

// UpsertModelStatus 登记或更新模型状态
// @route POST /api/v1/models
func (h *ModelStatusHandler) UpsertModelStatus(c *gin.Context) {
	clientIP := c.ClientIP()
	requestID := c.GetHeader("X-Request-ID")
	urlPath := c.Request.URL.String()

	var req model.UpsertModelStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.LogError(err, requestID, 0, clientIP, urlPath, "POST", map[string]interface{}{
			"operation": "upsert_model_status",
			"option":    "ShouldBindJSON",
			"func_name": "handler.dashboard.mlstatus.UpsertModelStatus",
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

	status, err := h.statusService.UpsertModelStatus(c.Request.Context(), &req)
	if err != nil {
		h.writeServiceError(c, "upsert model status failed", err, "upsert_model_status")
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "model status upserted",
		Data:    status,
	})
}

// MarkTraining 标记指定模型进入训练状态
// @route POST /api/v1/models/:name/train
func (h *ModelStatusHandler) MarkTraining(c *gin.Context) {
	name := c.Param("name")

	status, err := h.statusService.MarkTraining(c.Request.Context(), name)
	if err != nil {
		h.writeServiceError(c, "mark training failed", err, "mark_training")
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "model marked as training",
		Data:    status,
	})
}

// RecordPrediction 记录一次预测调用
// @route POST /api/v1/models/:name/predict
func (h *ModelStatusHandler) RecordPrediction(c *gin.Context) {
	name := c.Param("name")

	total, err := h.statusService.RecordPrediction(c.Request.Context(), name)
	if err != nil {
		h.writeServiceError(c, "record prediction failed", err, "record_prediction")
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "prediction recorded",
		Data: map[string]interface{}{
			"model_name":        name,
			"total_predictions": total,
		},
	})
}

// writeServiceError 将服务层错误映射为HTTP响应
func (h *ModelStatusHandler) writeServiceError(c *gin.Context, message string, err error, operation string) {
	statusCode := http.StatusInternalServerError
	if weather.IsValidationError(err) {
		statusCode = http.StatusBadRequest
	} else if weather.IsTransientStoreError(err) {
		statusCode = http.StatusServiceUnavailable
	}

	logger.LogError(err, c.GetHeader("X-Request-ID"), 0, c.ClientIP(), c.Request.URL.String(), c.Request.Method, map[string]interface{}{
		"operation": operation,
		"func_name": "handler.dashboard.mlstatus",
		"timestamp": logger.NowFormatted(),
	})

	c.JSON(statusCode, model.APIResponse{
		Code:    statusCode,
		Status:  "error",
		Message: message,
		Error:   err.Error(),
	})
}
