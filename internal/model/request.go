/**
 * 模型:请求模型
 * @author: sun977
 * @date: 2025.08.29
 * @description: API请求数据模型，包含各种业务操作的请求结构体
 * @func: 各种Request结构体定义
 */
package model

import "time"

// CreateAlertRequest 创建气象预警请求结构
type CreateAlertRequest struct {
	AlertType   AlertType     `json:"alert_type" validate:"required"`          // 预警类型，必填
	Severity    AlertSeverity `json:"severity" validate:"required"`            // 预警等级，必填
	Region      string        `json:"region" validate:"required"`              // 影响区域，必填
	Description string        `json:"description"`                             // 预警描述，可选
	Confidence  float64       `json:"confidence" validate:"gte=0,lte=1"`       // 置信度，必须在[0,1]内
	Latitude    *float64      `json:"latitude"`                                // 纬度，可选
	Longitude   *float64      `json:"longitude"`                               // 经度，可选
	ExpiresAt   *time.Time    `json:"expires_at"`                              // 过期时间，可选
}

// UpsertModelStatusRequest 模型状态上报请求结构
type UpsertModelStatusRequest struct {
	Name      string     `json:"name" validate:"required"`                            // 模型名，必填，唯一键
	ModelType ModelType  `json:"model_type" validate:"required"`                      // 模型类型，必填
	Status    ModelState `json:"status" validate:"required"`                          // 模型状态，必填
	Accuracy  *float64   `json:"accuracy" validate:"omitempty,gte=0,lte=1"`           // 准确率，可选
	Version   string     `json:"version"`                                             // 版本号，可选
	Metadata  JSONMap    `json:"metadata"`                                            // 元数据，可选
}

// ReportObservationRequest 协作方上报近期观测请求结构
type ReportObservationRequest struct {
	Pattern    string  `json:"pattern" validate:"required"`       // 形势标签，必填
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"` // 观测置信度
}
