/*
 * @author: sun977
 * @date: 2025.09.04
 * @description: 指标聚合服务层,纯读侧派生,不落库
 * @func:
 * 1.计算模型指标快照(总数/运行数/平均准确率/系统负载/预测计数)
 * 2.计算天气形势快照(近期观测数/有效预警数/聚合置信度)
 * 3.上报近期形势观测
 */
package weather

import (
	"context"
	"strings"
	"time"

	"meghamaster/internal/model"
	"meghamaster/internal/pkg/logger"
	"meghamaster/internal/repo/mysql"
	redisRepo "meghamaster/internal/repo/redis"

	"github.com/shirou/gopsutil/v4/load"
)

// SystemLoadFunc 系统负载采集函数,测试时可替换
type SystemLoadFunc func() float64

// defaultSystemLoad 采集1分钟平均负载,失败时返回0
func defaultSystemLoad() float64 {
	avg, err := load.Avg()
	if err != nil {
		return 0
	}
	return avg.Load1
}

// MetricsService 指标聚合服务
// 快照每次读取时从当前状态重新计算,服务本身不持有任何累计状态
type MetricsService struct {
	statusRepo    *mysql.ModelStatusRepository
	alertRepo     *mysql.AlertRepository
	telemetryRepo *redisRepo.TelemetryRepository
	systemLoad    SystemLoadFunc
}

// NewMetricsService 创建指标聚合服务实例
func NewMetricsService(statusRepo *mysql.ModelStatusRepository, alertRepo *mysql.AlertRepository, telemetryRepo *redisRepo.TelemetryRepository) *MetricsService {
	return &MetricsService{
		statusRepo:    statusRepo,
		alertRepo:     alertRepo,
		telemetryRepo: telemetryRepo,
		systemLoad:    defaultSystemLoad,
	}
}

// SetSystemLoadFunc 替换系统负载采集函数
func (s *MetricsService) SetSystemLoadFunc(fn SystemLoadFunc) {
	if fn != nil {
		s.systemLoad = fn
	}
}

// ComputeMetrics 计算模型指标快照
// 平均准确率只统计运行中且填写了准确率的模型;该子集为空时均值为0,不报错
func (s *MetricsService) ComputeMetrics(ctx context.Context) (*model.MetricsSnapshot, error) {
	statuses, err := s.statusRepo.GetAllModelStatuses(ctx)
	if err != nil {
		return nil, NewTransientStoreError("list_model_statuses", err)
	}

	snapshot := &model.MetricsSnapshot{
		TotalModels: len(statuses),
		SystemLoad:  s.systemLoad(),
		Timestamp:   time.Now(),
	}

	var accuracySum float64
	var accuracyCount int
	for _, status := range statuses {
		if !status.IsActive() {
			continue
		}
		snapshot.ActiveModels++
		if status.Accuracy != nil {
			accuracySum += *status.Accuracy
			accuracyCount++
		}
	}
	if accuracyCount > 0 {
		snapshot.AverageAccuracy = accuracySum / float64(accuracyCount)
	}

	// 预测计数来自遥测存储,读取失败降级为0而不是让整个快照失败
	total, err := s.telemetryRepo.GetPredictionCount(ctx)
	if err != nil {
		logger.LogError(err, "", 0, "", "weather.metrics.predictions", "SERVICE", map[string]interface{}{
			"operation": "get_prediction_count",
		})
	} else {
		snapshot.TotalPredictions = total
	}

	return snapshot, nil
}

// ComputeWeatherPatterns 计算天气形势快照
// 近期观测为空时形势数与置信度均为0,有效预警数仍照常统计
func (s *MetricsService) ComputeWeatherPatterns(ctx context.Context) (*model.WeatherPatternSnapshot, error) {
	activeCount, err := s.alertRepo.CountActive(ctx, time.Now())
	if err != nil {
		return nil, NewTransientStoreError("count_active_alerts", err)
	}

	snapshot := &model.WeatherPatternSnapshot{
		SystemsDetected: int(activeCount),
		LastUpdate:      time.Now(),
	}

	observations, err := s.telemetryRepo.GetRecentObservations(ctx)
	if err != nil {
		logger.LogError(err, "", 0, "", "weather.metrics.observations", "SERVICE", map[string]interface{}{
			"operation": "get_recent_observations",
		})
		return snapshot, nil
	}

	snapshot.ActivePatterns = len(observations)
	if len(observations) > 0 {
		var confidenceSum float64
		for _, obs := range observations {
			confidenceSum += obs.Confidence
		}
		snapshot.Confidence = confidenceSum / float64(len(observations))
	}

	return snapshot, nil
}

// ReportObservation 记录协作方上报的近期形势观测
func (s *MetricsService) ReportObservation(ctx context.Context, req *model.ReportObservationRequest) (*model.PatternObservation, error) {
	if req == nil {
		return nil, NewValidationError("request", "request body is required")
	}
	if strings.TrimSpace(req.Pattern) == "" {
		return nil, NewValidationError("pattern", "pattern is required")
	}
	if req.Confidence < 0 || req.Confidence > 1 {
		return nil, NewValidationError("confidence", "must be within [0, 1]")
	}

	obs := &model.PatternObservation{
		Pattern:    strings.TrimSpace(req.Pattern),
		Confidence: req.Confidence,
		ObservedAt: time.Now(),
	}
	if err := s.telemetryRepo.PushObservation(ctx, obs); err != nil {
		return nil, NewTransientStoreError("push_observation", err)
	}
	return obs, nil
}
