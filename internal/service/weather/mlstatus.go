/*
 * @author: sun977
 * @date: 2025.09.04
 * @description: ML模型状态服务层
 * @func:
 * 1.登记或更新模型状态(按模型名upsert)
 * 2.查询全部模型状态
 * 3.标记模型进入训练/恢复运行
 * 4.记录一次预测调用
 */
package weather

import (
	"context"
	"errors"
	"strings"

	"meghamaster/internal/model"
	"meghamaster/internal/pkg/logger"
	"meghamaster/internal/repo/mysql"
	redisRepo "meghamaster/internal/repo/redis"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ModelStatusService ML模型状态服务
type ModelStatusService struct {
	statusRepo    *mysql.ModelStatusRepository
	telemetryRepo *redisRepo.TelemetryRepository
}

// NewModelStatusService 创建ML模型状态服务实例
func NewModelStatusService(statusRepo *mysql.ModelStatusRepository, telemetryRepo *redisRepo.TelemetryRepository) *ModelStatusService {
	return &ModelStatusService{
		statusRepo:    statusRepo,
		telemetryRepo: telemetryRepo,
	}
}

// UpsertModelStatus 登记或更新模型状态
// 同名模型原地覆盖,不产生新行;状态覆盖无转移约束
func (s *ModelStatusService) UpsertModelStatus(ctx context.Context, req *model.UpsertModelStatusRequest) (*model.ModelStatus, error) {
	if err := s.validateUpsertRequest(req); err != nil {
		return nil, err
	}

	status := &model.ModelStatus{
		Name:      strings.TrimSpace(req.Name),
		ModelType: req.ModelType,
		Status:    req.Status,
		Accuracy:  req.Accuracy,
		Version:   req.Version,
		Metadata:  req.Metadata,
	}

	if err := s.statusRepo.UpsertModelStatus(ctx, status); err != nil {
		logger.LogError(err, "", 0, "", "weather.mlstatus.upsert", "SERVICE", map[string]interface{}{
			"operation":  "upsert_model_status",
			"model_name": req.Name,
		})
		return nil, NewTransientStoreError("upsert_model_status", err)
	}

	// upsert后按名字回读,保证返回的是落库后的最新行(包含ID和时间戳)
	saved, err := s.statusRepo.GetModelStatusByName(ctx, status.Name)
	if err != nil {
		return nil, NewTransientStoreError("get_model_status", err)
	}
	if saved == nil {
		saved = status
	}

	logger.LogBusinessOperation("upsert_model_status", 0, "system", "", "", "success", "model status upserted", map[string]interface{}{
		"model_name": saved.Name,
		"model_type": string(saved.ModelType),
		"status":     string(saved.Status),
	})

	return saved, nil
}

// GetAllModelStatuses 查询全部模型状态
func (s *ModelStatusService) GetAllModelStatuses(ctx context.Context) ([]*model.ModelStatus, error) {
	statuses, err := s.statusRepo.GetAllModelStatuses(ctx)
	if err != nil {
		return nil, NewTransientStoreError("list_model_statuses", err)
	}
	return statuses, nil
}

// GetModelStatusByName 按模型名查询模型状态,不存在时返回nil
func (s *ModelStatusService) GetModelStatusByName(ctx context.Context, name string) (*model.ModelStatus, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewValidationError("name", "model name is required")
	}
	status, err := s.statusRepo.GetModelStatusByName(ctx, name)
	if err != nil {
		return nil, NewTransientStoreError("get_model_status", err)
	}
	return status, nil
}

// MarkTraining 将指定模型标记为训练中
// 模型不存在时返回ValidationError
func (s *ModelStatusService) MarkTraining(ctx context.Context, name string) (*model.ModelStatus, error) {
	return s.overrideState(ctx, name, model.ModelStateTraining)
}

// MarkActive 将指定模型标记为运行中(训练完成后恢复)
func (s *ModelStatusService) MarkActive(ctx context.Context, name string) (*model.ModelStatus, error) {
	return s.overrideState(ctx, name, model.ModelStateActive)
}

// overrideState 覆盖指定模型的状态字段,其余字段保持不变
func (s *ModelStatusService) overrideState(ctx context.Context, name string, state model.ModelState) (*model.ModelStatus, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewValidationError("name", "model name is required")
	}

	if err := s.statusRepo.UpdateModelState(ctx, name, state); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("name", "model not found")
		}
		return nil, NewTransientStoreError("update_model_state", err)
	}

	status, err := s.statusRepo.GetModelStatusByName(ctx, name)
	if err != nil {
		return nil, NewTransientStoreError("get_model_status", err)
	}

	logger.WithFields(logrus.Fields{
		"operation":  "override_model_state",
		"model_name": name,
		"new_state":  string(state),
		"timestamp":  logger.NowFormatted(),
	}).Info("model state overridden")

	return status, nil
}

// RecordPrediction 记录一次预测调用
// 预测计数进入遥测存储,供指标聚合读取;模型必须存在且处于运行状态
func (s *ModelStatusService) RecordPrediction(ctx context.Context, name string) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, NewValidationError("name", "model name is required")
	}

	status, err := s.statusRepo.GetModelStatusByName(ctx, name)
	if err != nil {
		return 0, NewTransientStoreError("get_model_status", err)
	}
	if status == nil {
		return 0, NewValidationError("name", "model not found")
	}
	if !status.IsActive() {
		return 0, NewValidationError("status", "model is not active")
	}

	total, err := s.telemetryRepo.IncrPredictionCount(ctx)
	if err != nil {
		return 0, NewTransientStoreError("incr_prediction_count", err)
	}
	return total, nil
}

// validateUpsertRequest 校验模型状态登记请求
func (s *ModelStatusService) validateUpsertRequest(req *model.UpsertModelStatusRequest) error {
	if req == nil {
		return NewValidationError("request", "request body is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return NewValidationError("name", "model name is required")
	}
	if !req.ModelType.IsValid() {
		return NewValidationError("model_type", "must be one of: LSTM, CNN, Transformer")
	}
	if !req.Status.IsValid() {
		return NewValidationError("status", "must be one of: active, training, offline")
	}
	if req.Accuracy != nil && (*req.Accuracy < 0 || *req.Accuracy > 1) {
		return NewValidationError("accuracy", "must be within [0, 1]")
	}
	return nil
}
