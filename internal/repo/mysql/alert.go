/*
 * 预警仓库层:气象预警数据访问
 * @author: sun977
 * @date: 2025.09.11
 * @description: 单纯数据访问,不应该包含业务逻辑
 * @func:
 * 1.创建预警
 * 2.查询有效预警列表
 * 3.预警失活
 */

//  基础CRUD操作:
//  	CreateAlert - 创建预警
//  	GetAlertByID - 根据ID获取预警
//  	ListActive - 查询有效预警(active且未过期),最近创建的在前
//  	DeactivateAlert - 清除active标志(创建后唯一允许的变更)
//  注意:
//  	预警在范围内从不物理删除,保留策略是外部职责
//  	有效性在读取时计算,不依赖后台任务翻转存储标志

package mysql

import (
	"context"
	"time"

	"meghamaster/internal/model"
	"meghamaster/internal/pkg/logger"

	"gorm.io/gorm"
)

// AlertRepository 预警仓库结构体
// 负责处理气象预警相关的数据访问，不包含业务逻辑
type AlertRepository struct {
	db *gorm.DB // 数据库连接
}

// NewAlertRepository 创建预警仓库实例
// 注入数据库连接，专注于数据访问操作
func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{
		db: db,
	}
}

// CreateAlert 创建预警（纯数据访问）
// 直接将预警数据插入数据库，不包含业务逻辑验证
func (r *AlertRepository) CreateAlert(ctx context.Context, alert *model.WeatherAlert) error {
	result := r.db.WithContext(ctx).Create(alert)
	if result.Error != nil {
		logger.LogError(result.Error, "", 0, "", "alert_create", "POST", map[string]interface{}{
			"operation":  "create_alert",
			"alert_type": alert.AlertType,
			"region":     alert.Region,
			"timestamp":  logger.NowFormatted(),
		})
		return result.Error
	}
	return nil
}

// GetAlertByID 根据ID获取预警
func (r *AlertRepository) GetAlertByID(ctx context.Context, id uint) (*model.WeatherAlert, error) {
	var alert model.WeatherAlert
	err := r.db.WithContext(ctx).First(&alert, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil // 返回 nil 而不是错误，让业务层处理
		}
		logger.LogError(err, "", id, "", "alert_get", "GET", map[string]interface{}{
			"operation": "get_alert_by_id",
			"timestamp": logger.NowFormatted(),
		})
		return nil, err
	}
	return &alert, nil
}

// ListActive 查询有效预警列表
// 有效性在查询中计算: active = true 且 (无过期时间 或 now < expires_at)
// 最近创建的排在前面
func (r *AlertRepository) ListActive(ctx context.Context, now time.Time) ([]*model.WeatherAlert, error) {
	var alerts []*model.WeatherAlert
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("created_at DESC").
		Find(&alerts).Error
	if err != nil {
		logger.LogError(err, "", 0, "", "alert_list_active", "GET", map[string]interface{}{
			"operation": "list_active_alerts",
			"timestamp": logger.NowFormatted(),
		})
		return nil, err
	}
	return alerts, nil
}

// CountActive 统计有效预警数量
func (r *AlertRepository) CountActive(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.WeatherAlert{}).
		Where("active = ?", true).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Count(&count).Error
	return count, err
}

// DeactivateAlert 清除预警的active标志
// 幂等操作，对已失活的预警再次调用不会报错
func (r *AlertRepository) DeactivateAlert(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&model.WeatherAlert{}).
		Where("id = ?", id).
		Update("active", false)
	if result.Error != nil {
		logger.LogError(result.Error, "", id, "", "alert_deactivate", "POST", map[string]interface{}{
			"operation": "deactivate_alert",
			"timestamp": logger.NowFormatted(),
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		// MySQL对值未变化的更新报告0行,需要区分"行不存在"和"已经失活"
		alert, err := r.GetAlertByID(ctx, id)
		if err != nil {
			return err
		}
		if alert == nil {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}
