/**
 * 模型:响应模型
 * @author: sun977
 * @date: 2025.08.29
 * @description: API响应数据模型，包含各种业务操作的响应结构体
 * @func: 各种Response结构体定义
 */
package model

// APIResponse 通用API响应结构
type APIResponse struct {
	Code    int         `json:"code,omitempty"`  // 响应状态码，可选
	Status  string      `json:"status"`          // 响应状态："success" 或 "error"
	Message string      `json:"message"`         // 响应消息
	Data    interface{} `json:"data,omitempty"`  // 响应数据，可选
	Error   string      `json:"error,omitempty"` // 错误信息，可选
}

// AlertListResponse 预警列表响应结构
type AlertListResponse struct {
	Alerts []WeatherAlert `json:"alerts"` // 预警列表，最近创建的在前
	Count  int            `json:"count"`  // 列表长度
}

// ModelStatusListResponse 模型状态列表响应结构
type ModelStatusListResponse struct {
	Models []ModelStatus `json:"models"` // 模型状态列表，按名称升序
	Count  int           `json:"count"`  // 列表长度
}

// BroadcastStatsResponse 广播调度统计响应结构
type BroadcastStatsResponse struct {
	TicksTotal      uint64 `json:"ticks_total"`      // 已执行的广播周期数
	TicksSkipped    uint64 `json:"ticks_skipped"`    // 因快照计算失败而跳过的周期数
	LastSkipReason  string `json:"last_skip_reason"` // 最近一次跳过原因，无则为空
	ConnectedCount  int    `json:"connected_count"`  // 当前在线连接数
	IntervalSeconds int    `json:"interval_seconds"` // 广播周期(秒)
}
