/**
 * 模型:气象预警模型
 * @author: sun977
 * @date: 2025.08.29
 * @description: 气象预警数据模型,由气象分析协作方创建,创建后除active标志外不再变更
 * @func: WeatherAlert 结构体及相关方法
 */
package model

import (
	"time"
)

// AlertType 预警类型枚举
type AlertType string

const (
	AlertTypeThunderstorm AlertType = "thunderstorm" // 雷暴
	AlertTypeHeavyRain    AlertType = "heavy_rain"   // 强降雨
	AlertTypeHighWind     AlertType = "high_wind"    // 大风
	AlertTypeOther        AlertType = "other"        // 其他
)

// IsValid 判断预警类型是否合法
func (t AlertType) IsValid() bool {
	switch t {
	case AlertTypeThunderstorm, AlertTypeHeavyRain, AlertTypeHighWind, AlertTypeOther:
		return true
	}
	return false
}

// AlertSeverity 预警等级枚举
type AlertSeverity string

const (
	AlertSeveritySevere   AlertSeverity = "severe"   // 严重
	AlertSeverityModerate AlertSeverity = "moderate" // 中等
	AlertSeverityLow      AlertSeverity = "low"      // 轻微
)

// IsValid 判断预警等级是否合法
func (s AlertSeverity) IsValid() bool {
	switch s {
	case AlertSeveritySevere, AlertSeverityModerate, AlertSeverityLow:
		return true
	}
	return false
}

// WeatherAlert 气象预警模型
// 注意:存储的active标志本身不具备权威性,有效预警必须通过
// 仓库层的有效性查询(active且未过期)获取,不要直接读取该标志
type WeatherAlert struct {
	ID          uint          `json:"id" gorm:"primaryKey;autoIncrement"`                                           // 预警唯一标识ID，主键自增
	AlertType   AlertType     `json:"alert_type" gorm:"not null;size:30;index" validate:"required"`                 // 预警类型
	Severity    AlertSeverity `json:"severity" gorm:"not null;size:20" validate:"required"`                         // 预警等级
	Region      string        `json:"region" gorm:"not null;size:100" validate:"required"`                          // 影响区域，自由文本
	Description string        `json:"description" gorm:"size:500"`                                                  // 预警描述
	Confidence  float64       `json:"confidence" gorm:"not null;comment:置信度,闭区间[0,1]" validate:"gte=0,lte=1"`      // 置信度
	Latitude    *float64      `json:"latitude,omitempty" gorm:"comment:纬度,可为空"`                                    // 纬度，可选
	Longitude   *float64      `json:"longitude,omitempty" gorm:"comment:经度,可为空"`                                   // 经度，可选
	Active      bool          `json:"active" gorm:"default:true;index;comment:激活标志,默认true"`                        // 激活标志
	ExpiresAt   *time.Time    `json:"expires_at,omitempty" gorm:"index;comment:过期时间,可为空"`                          // 过期时间，可选
	CreatedAt   time.Time     `json:"created_at"`                                                                   // 创建时间，创建后不可变
}

// TableName 指定气象预警表名
func (WeatherAlert) TableName() string {
	return "weather_alerts"
}

// IsEffectivelyActive 计算预警在指定时刻是否有效
// 有效 = active标志为true 且 (无过期时间 或 尚未过期)
func (a *WeatherAlert) IsEffectivelyActive(now time.Time) bool {
	if !a.Active {
		return false
	}
	if a.ExpiresAt == nil {
		return true
	}
	return now.Before(*a.ExpiresAt)
}
