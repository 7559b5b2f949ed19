/**
 * 模型:聚合快照与实时消息模型
 * @author: sun977
 * @date: 2025.08.29
 * @description: 读侧聚合快照(不落库)与WebSocket消息结构
 * @func: MetricsSnapshot / WeatherPatternSnapshot / WSMessage 等
 */
package model

import (
	"time"
)

// MetricsSnapshot 模型指标快照
// 每次读取时从当前ModelStatus行重新计算，从不持久化
type MetricsSnapshot struct {
	TotalModels      int       `json:"total_models"`      // 模型总数
	ActiveModels     int       `json:"active_models"`     // 运行中模型数
	AverageAccuracy  float64   `json:"average_accuracy"`  // 运行中模型准确率均值，空集合时为0
	SystemLoad       float64   `json:"system_load"`       // 系统负载，由协作方提供
	TotalPredictions int64     `json:"total_predictions"` // 累计预测次数，由协作方提供
	Timestamp        time.Time `json:"timestamp"`         // 快照时间
}

// WeatherPatternSnapshot 天气形势快照
// 每次读取时重新计算，从不持久化
type WeatherPatternSnapshot struct {
	ActivePatterns  int       `json:"active_patterns"`  // 近期观测到的形势数
	SystemsDetected int       `json:"systems_detected"` // 当前有效预警数
	Confidence      float64   `json:"confidence"`       // 聚合置信度，空集合时为0
	LastUpdate      time.Time `json:"last_update"`      // 快照时间
}

// PatternObservation 协作方上报的近期形势观测
type PatternObservation struct {
	Pattern    string    `json:"pattern"`     // 形势标签(如 squall_line / frontal_system)
	Confidence float64   `json:"confidence"`  // 观测置信度
	ObservedAt time.Time `json:"observed_at"` // 观测时间
}

// WebSocket消息类型
const (
	WSTypeConnection = "connection" // 连接确认
	WSTypeUpdate     = "update"     // 周期快照推送
	WSTypePing       = "ping"       // 客户端心跳
	WSTypePong       = "pong"       // 心跳应答
)

// WSMessage 出站WebSocket消息信封
type WSMessage struct {
	Type      string      `json:"type"`                // 消息类型
	Status    string      `json:"status,omitempty"`    // 连接确认时为"connected"
	Data      interface{} `json:"data,omitempty"`      // update消息的负载
	Timestamp string      `json:"timestamp,omitempty"` // 时间戳
}

// WSInbound 入站WebSocket控制消息
type WSInbound struct {
	Type string `json:"type"` // 目前仅支持"ping"
}

// UpdatePayload update消息的data负载
type UpdatePayload struct {
	MLMetrics       *MetricsSnapshot        `json:"mlMetrics"`       // 模型指标快照
	WeatherPatterns *WeatherPatternSnapshot `json:"weatherPatterns"` // 天气形势快照
	Timestamp       string                  `json:"timestamp"`       // 快照时间戳
}
