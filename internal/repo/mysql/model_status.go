/*
 * 模型状态仓库层:模型状态数据访问
 * @author: sun977
 * @date: 2025.09.11
 * @description: 单纯数据访问,不应该包含业务逻辑
 * @func:
 * 1.按名称upsert模型状态
 * 2.查询全部模型状态
 */

//  基础CRUD操作:
//  	UpsertModelStatus - 按名称插入或原地更新(唯一索引+ON CONFLICT保证并发下单行)
//  	GetModelStatusByName - 根据名称获取模型状态
//  	GetAllModelStatuses - 查询全部模型状态,按名称升序
//  	CountModelStatuses - 统计模型总数

package mysql

import (
	"context"
	"time"

	"meghamaster/internal/model"
	"meghamaster/internal/pkg/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ModelStatusRepository 模型状态仓库结构体
// 负责处理模型状态相关的数据访问，不包含业务逻辑
type ModelStatusRepository struct {
	db *gorm.DB // 数据库连接
}

// NewModelStatusRepository 创建模型状态仓库实例
func NewModelStatusRepository(db *gorm.DB) *ModelStatusRepository {
	return &ModelStatusRepository{
		db: db,
	}
}

// UpsertModelStatus 按名称插入或更新模型状态
// name上有唯一索引,并发upsert同名模型在数据库层串行化,登记表中永远只有一行
// updated_at在每次upsert时刷新
func (r *ModelStatusRepository) UpsertModelStatus(ctx context.Context, status *model.ModelStatus) error {
	status.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"model_type", "status", "accuracy", "version", "metadata", "updated_at",
		}),
	}).Create(status).Error
	if err != nil {
		logger.LogError(err, "", 0, "", "model_status_upsert", "POST", map[string]interface{}{
			"operation": "upsert_model_status",
			"name":      status.Name,
			"timestamp": logger.NowFormatted(),
		})
		return err
	}
	return nil
}

// UpdateModelState 按名称覆盖模型状态字段,其余列不动
// 返回gorm.ErrRecordNotFound表示该模型未登记
func (r *ModelStatusRepository) UpdateModelState(ctx context.Context, name string, state model.ModelState) error {
	result := r.db.WithContext(ctx).Model(&model.ModelStatus{}).
		Where("name = ?", name).
		Updates(map[string]interface{}{
			"status":     state,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		logger.LogError(result.Error, "", 0, "", "model_status_update_state", "POST", map[string]interface{}{
			"operation": "update_model_state",
			"name":      name,
			"timestamp": logger.NowFormatted(),
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetModelStatusByName 根据名称获取模型状态
func (r *ModelStatusRepository) GetModelStatusByName(ctx context.Context, name string) (*model.ModelStatus, error) {
	var status model.ModelStatus
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&status).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil // 返回 nil 而不是错误，让业务层处理
		}
		logger.LogError(err, "", 0, "", "model_status_get", "GET", map[string]interface{}{
			"operation": "get_model_status_by_name",
			"name":      name,
			"timestamp": logger.NowFormatted(),
		})
		return nil, err
	}
	return &status, nil
}

// GetAllModelStatuses 查询全部模型状态
// 按名称升序返回，保证展示和测试的确定性
func (r *ModelStatusRepository) GetAllModelStatuses(ctx context.Context) ([]*model.ModelStatus, error) {
	var statuses []*model.ModelStatus
	err := r.db.WithContext(ctx).Order("name ASC").Find(&statuses).Error
	if err != nil {
		logger.LogError(err, "", 0, "", "model_status_list", "GET", map[string]interface{}{
			"operation": "get_all_model_statuses",
			"timestamp": logger.NowFormatted(),
		})
		return nil, err
	}
	return statuses, nil
}

// CountModelStatuses 统计模型总数
func (r *ModelStatusRepository) CountModelStatuses(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ModelStatus{}).Count(&count).Error
	return count, err
}
