/*
 * @author: sun977
 * @date: 2025.09.06
 * @description: 天气预警服务测试
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
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB 创建内存sqlite数据库并建表
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// 内存库只允许一个连接,避免连接池拿到空库
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.WeatherAlert{}, &model.ModelStatus{}))
	return db
}

func newAlertService(t *testing.T) (*AlertService, *gorm.DB) {
	db := setupTestDB(t)
	return NewAlertService(mysql.NewAlertRepository(db)), db
}

func validAlertRequest() *model.CreateAlertRequest {
	return &model.CreateAlertRequest{
		AlertType:   model.AlertTypeThunderstorm,
		Severity:    model.AlertSeveritySevere,
		Region:      "华东地区",
		Description: "强雷暴云团正在逼近",
		Confidence:  0.92,
	}
}

func TestCreateAlert(t *testing.T) {
	svc, _ := newAlertService(t)
	ctx := context.Background()

	alert, err := svc.CreateAlert(ctx, validAlertRequest())
	require.NoError(t, err)
	require.NotNil(t, alert)

	assert.NotZero(t, alert.ID)
	assert.True(t, alert.Active)
	assert.Equal(t, model.AlertTypeThunderstorm, alert.AlertType)
	assert.Equal(t, 0.92, alert.Confidence)
	assert.Nil(t, alert.ExpiresAt)
}

func TestCreateAlertAlreadyExpired(t *testing.T) {
	svc, db := newAlertService(t)
	ctx := context.Background()

	// 生成侧与提交之间可能已过期,创建不拒绝,由读取侧过滤
	past := time.Now().Add(-time.Second)
	req := validAlertRequest()
	req.ExpiresAt = &past

	alert, err := svc.CreateAlert(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.NotZero(t, alert.ID)

	alerts, err := svc.ListActiveAlerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, alerts)

	// 存储行原样保留
	var stored model.WeatherAlert
	require.NoError(t, db.First(&stored, alert.ID).Error)
	assert.True(t, stored.Active)
}

func TestCreateAlertValidation(t *testing.T) {
	svc, _ := newAlertService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*model.CreateAlertRequest)
		field  string
	}{
		{"invalid type", func(r *model.CreateAlertRequest) { r.AlertType = "tsunami" }, "alert_type"},
		{"invalid severity", func(r *model.CreateAlertRequest) { r.Severity = "extreme" }, "severity"},
		{"empty region", func(r *model.CreateAlertRequest) { r.Region = "  " }, "region"},
		{"confidence above one", func(r *model.CreateAlertRequest) { r.Confidence = 1.5 }, "confidence"},
		{"confidence negative", func(r *model.CreateAlertRequest) { r.Confidence = -0.1 }, "confidence"},
		{"latitude out of range", func(r *model.CreateAlertRequest) {
			lat := 91.0
			r.Latitude = &lat
		}, "latitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validAlertRequest()
			tt.mutate(req)

			alert, err := svc.CreateAlert(ctx, req)
			assert.Nil(t, alert)
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	// 校验失败不落库
	alerts, err := svc.ListActiveAlerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestListActiveAlertsFiltersExpired(t *testing.T) {
	svc, db := newAlertService(t)
	ctx := context.Background()

	// 有效:无过期时间
	noExpiry, err := svc.CreateAlert(ctx, validAlertRequest())
	require.NoError(t, err)

	// 有效:未来过期
	future := time.Now().Add(time.Hour)
	req := validAlertRequest()
	req.ExpiresAt = &future
	notExpired, err := svc.CreateAlert(ctx, req)
	require.NoError(t, err)

	// 已过期:过期时间在过去,创建成功但列表不可见
	past := time.Now().Add(-time.Minute)
	expiredReq := validAlertRequest()
	expiredReq.AlertType = model.AlertTypeHeavyRain
	expiredReq.Severity = model.AlertSeverityModerate
	expiredReq.Region = "华南地区"
	expiredReq.ExpiresAt = &past
	expired, err := svc.CreateAlert(ctx, expiredReq)
	require.NoError(t, err)

	alerts, err := svc.ListActiveAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	ids := []uint{alerts[0].ID, alerts[1].ID}
	assert.Contains(t, ids, noExpiry.ID)
	assert.Contains(t, ids, notExpired.ID)
	assert.NotContains(t, ids, expired.ID)

	// 过期预警的存储行保持不变,仅在读取时被过滤
	var stored model.WeatherAlert
	require.NoError(t, db.First(&stored, expired.ID).Error)
	assert.True(t, stored.Active)

	count, err := svc.CountActiveAlerts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestDeactivateAlert(t *testing.T) {
	svc, _ := newAlertService(t)
	ctx := context.Background()

	alert, err := svc.CreateAlert(ctx, validAlertRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateAlert(ctx, alert.ID))

	alerts, err := svc.ListActiveAlerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, alerts)

	// 停用是幂等的,重复停用不报错
	require.NoError(t, svc.DeactivateAlert(ctx, alert.ID))
}

func TestDeactivateAlertNotFound(t *testing.T) {
	svc, _ := newAlertService(t)

	err := svc.DeactivateAlert(context.Background(), 9999)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "id", ve.Field)
}

func TestListActiveAlertsNewestFirst(t *testing.T) {
	svc, db := newAlertService(t)
	ctx := context.Background()

	// 控制created_at保证排序可断言
	older := &model.WeatherAlert{
		AlertType:  model.AlertTypeHighWind,
		Severity:   model.AlertSeverityLow,
		Region:     "西北地区",
		Confidence: 0.7,
		Active:     true,
		CreatedAt:  time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(older).Error)

	newer, err := svc.CreateAlert(ctx, validAlertRequest())
	require.NoError(t, err)

	alerts, err := svc.ListActiveAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, newer.ID, alerts[0].ID)
	assert.Equal(t, older.ID, alerts[1].ID)
}
