/*
 * @author: sun977
 * @date: 2025.09.06
 * @description: 指标聚合服务测试
 */
package weather

import (
	"context"
	"testing"
	"time"

	"meghamaster/internal/model"
	"meghamaster/internal/repo/mysql"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMetricsService(t *testing.T) (*MetricsService, *ModelStatusService, *AlertService, *gorm.DB) {
	db := setupTestDB(t)
	alertRepo := mysql.NewAlertRepository(db)
	statusRepo := mysql.NewModelStatusRepository(db)
	telemetryRepo := unreachableTelemetryRepo()

	metricsSvc := NewMetricsService(statusRepo, alertRepo, telemetryRepo)
	metricsSvc.SetSystemLoadFunc(func() float64 { return 0.42 })

	return metricsSvc,
		NewModelStatusService(statusRepo, telemetryRepo),
		NewAlertService(alertRepo),
		db
}

func upsertModel(t *testing.T, svc *ModelStatusService, name string, state model.ModelState, accuracy *float64) {
	t.Helper()
	_, err := svc.UpsertModelStatus(context.Background(), &model.UpsertModelStatusRequest{
		Name:      name,
		ModelType: model.ModelTypeLSTM,
		Status:    state,
		Accuracy:  accuracy,
	})
	require.NoError(t, err)
}

func floatPtr(v float64) *float64 { return &v }

func TestComputeMetricsAveragesActiveModels(t *testing.T) {
	metricsSvc, statusSvc, _, _ := newMetricsService(t)
	ctx := context.Background()

	upsertModel(t, statusSvc, "lstm-precipitation-v2", model.ModelStateActive, floatPtr(0.947))
	upsertModel(t, statusSvc, "cnn-radar-v1", model.ModelStateActive, floatPtr(0.889))
	// 离线模型的准确率不参与均值
	upsertModel(t, statusSvc, "transformer-fusion", model.ModelStateOffline, floatPtr(0.999))

	snapshot, err := metricsSvc.ComputeMetrics(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, snapshot.TotalModels)
	assert.Equal(t, 2, snapshot.ActiveModels)
	assert.InDelta(t, 0.918, snapshot.AverageAccuracy, 1e-9)
	assert.Equal(t, 0.42, snapshot.SystemLoad)
	assert.WithinDuration(t, time.Now(), snapshot.Timestamp, 5*time.Second)
}

func TestComputeMetricsMixedStates(t *testing.T) {
	metricsSvc, statusSvc, _, _ := newMetricsService(t)
	ctx := context.Background()

	upsertModel(t, statusSvc, "weather-lstm-v2", model.ModelStateActive, floatPtr(0.947))
	upsertModel(t, statusSvc, "satellite-cnn-v3", model.ModelStateTraining, floatPtr(0.889))

	snapshot, err := metricsSvc.ComputeMetrics(ctx)
	require.NoError(t, err)

	// 训练中模型计入总数但不计入运行数和均值
	assert.Equal(t, 2, snapshot.TotalModels)
	assert.Equal(t, 1, snapshot.ActiveModels)
	assert.InDelta(t, 0.947, snapshot.AverageAccuracy, 1e-9)
}

func TestComputeMetricsSkipsNilAccuracy(t *testing.T) {
	metricsSvc, statusSvc, _, _ := newMetricsService(t)

	upsertModel(t, statusSvc, "lstm-precipitation-v2", model.ModelStateActive, floatPtr(0.9))
	// 运行中但未上报准确率:计入active数,不计入均值
	upsertModel(t, statusSvc, "cnn-radar-v1", model.ModelStateActive, nil)

	snapshot, err := metricsSvc.ComputeMetrics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, snapshot.ActiveModels)
	assert.InDelta(t, 0.9, snapshot.AverageAccuracy, 1e-9)
}

func TestComputeMetricsEmptyActiveSubset(t *testing.T) {
	metricsSvc, statusSvc, _, _ := newMetricsService(t)

	upsertModel(t, statusSvc, "transformer-fusion", model.ModelStateTraining, floatPtr(0.95))

	snapshot, err := metricsSvc.ComputeMetrics(context.Background())
	require.NoError(t, err)

	// 运行中子集为空:均值为0,不报错
	assert.Equal(t, 1, snapshot.TotalModels)
	assert.Equal(t, 0, snapshot.ActiveModels)
	assert.Equal(t, 0.0, snapshot.AverageAccuracy)
}

func TestComputeMetricsEmptyRegistry(t *testing.T) {
	metricsSvc, _, _, _ := newMetricsService(t)

	snapshot, err := metricsSvc.ComputeMetrics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, snapshot.TotalModels)
	assert.Equal(t, 0, snapshot.ActiveModels)
	assert.Equal(t, 0.0, snapshot.AverageAccuracy)
}

func TestComputeMetricsDegradesWhenTelemetryDown(t *testing.T) {
	metricsSvc, statusSvc, _, _ := newMetricsService(t)

	upsertModel(t, statusSvc, "lstm-precipitation-v2", model.ModelStateActive, floatPtr(0.9))

	// 遥测存储不可达:预测计数降级为0,快照本身仍然可用
	snapshot, err := metricsSvc.ComputeMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), snapshot.TotalPredictions)
	assert.Equal(t, 1, snapshot.ActiveModels)
}

func TestComputeWeatherPatternsCountsActiveAlerts(t *testing.T) {
	metricsSvc, _, alertSvc, db := newMetricsService(t)
	ctx := context.Background()

	_, err := alertSvc.CreateAlert(ctx, validAlertRequest())
	require.NoError(t, err)

	// 已过期预警不计入systems_detected
	past := time.Now().Add(-time.Minute)
	expired := &model.WeatherAlert{
		AlertType:  model.AlertTypeHeavyRain,
		Severity:   model.AlertSeverityModerate,
		Region:     "华南地区",
		Confidence: 0.8,
		Active:     true,
		ExpiresAt:  &past,
	}
	require.NoError(t, db.Create(expired).Error)

	snapshot, err := metricsSvc.ComputeWeatherPatterns(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, snapshot.SystemsDetected)
	// 观测存储不可达:近期观测为空,形势数与置信度为0
	assert.Equal(t, 0, snapshot.ActivePatterns)
	assert.Equal(t, 0.0, snapshot.Confidence)
	assert.WithinDuration(t, time.Now(), snapshot.LastUpdate, 5*time.Second)
}

func TestReportObservationValidation(t *testing.T) {
	metricsSvc, _, _, _ := newMetricsService(t)
	ctx := context.Background()

	_, err := metricsSvc.ReportObservation(ctx, &model.ReportObservationRequest{Pattern: "", Confidence: 0.5})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	_, err = metricsSvc.ReportObservation(ctx, &model.ReportObservationRequest{Pattern: "squall_line", Confidence: 1.2})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	// 合法请求打到不可达存储:可重试失败
	_, err = metricsSvc.ReportObservation(ctx, &model.ReportObservationRequest{Pattern: "squall_line", Confidence: 0.8})
	require.Error(t, err)
	assert.True(t, IsTransientStoreError(err))
}
