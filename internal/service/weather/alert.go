/*
 * @author: sun977
 * @date: 2025.09.04
 * @description: 天气预警服务层
 * @func:
 * 1.创建预警(含参数校验)
 * 2.查询有效预警列表(读取时过滤过期)
 * 3.停用预警
 */
package weather

import (
	"context"
	"errors"
	"strings"
	"time"

	"meghamaster/internal/model"
	"meghamaster/internal/pkg/logger"
	"meghamaster/internal/repo/mysql"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AlertService 天气预警服务
type AlertService struct {
	alertRepo *mysql.AlertRepository
}

// NewAlertService 创建天气预警服务实例
func NewAlertService(alertRepo *mysql.AlertRepository) *AlertService {
	return &AlertService{
		alertRepo: alertRepo,
	}
}

// CreateAlert 创建天气预警
// 校验失败同步返回ValidationError,不落库
func (s *AlertService) CreateAlert(ctx context.Context, req *model.CreateAlertRequest) (*model.WeatherAlert, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	alert := &model.WeatherAlert{
		AlertType:   req.AlertType,
		Severity:    req.Severity,
		Region:      req.Region,
		Description: req.Description,
		Confidence:  req.Confidence,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Active:      true,
		ExpiresAt:   req.ExpiresAt,
	}

	if err := s.alertRepo.CreateAlert(ctx, alert); err != nil {
		logger.LogError(err, "", 0, "", "weather.alert.create", "SERVICE", map[string]interface{}{
			"operation":  "create_alert",
			"alert_type": string(req.AlertType),
			"region":     req.Region,
		})
		return nil, NewTransientStoreError("create_alert", err)
	}

	logger.LogBusinessOperation("create_alert", 0, "system", "", "", "success", "weather alert created", map[string]interface{}{
		"alert_id":   alert.ID,
		"alert_type": string(alert.AlertType),
		"severity":   string(alert.Severity),
		"region":     alert.Region,
	})

	return alert, nil
}

// ListActiveAlerts 查询当前有效的预警列表
// 有效 = active标志为真 且 (无过期时间 或 过期时间晚于当前时刻)
// 过期预警在读取时被过滤,不修改存储状态
func (s *AlertService) ListActiveAlerts(ctx context.Context) ([]*model.WeatherAlert, error) {
	alerts, err := s.alertRepo.ListActive(ctx, time.Now())
	if err != nil {
		return nil, NewTransientStoreError("list_active_alerts", err)
	}
	return alerts, nil
}

// CountActiveAlerts 统计当前有效预警数量
func (s *AlertService) CountActiveAlerts(ctx context.Context) (int64, error) {
	count, err := s.alertRepo.CountActive(ctx, time.Now())
	if err != nil {
		return 0, NewTransientStoreError("count_active_alerts", err)
	}
	return count, nil
}

// DeactivateAlert 停用指定预警
// 预警不存在时返回ValidationError
func (s *AlertService) DeactivateAlert(ctx context.Context, alertID uint) error {
	if alertID == 0 {
		return NewValidationError("id", "alert id is required")
	}

	if err := s.alertRepo.DeactivateAlert(ctx, alertID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewValidationError("id", "alert not found")
		}
		return NewTransientStoreError("deactivate_alert", err)
	}

	logger.WithFields(logrus.Fields{
		"operation": "deactivate_alert",
		"alert_id":  alertID,
		"timestamp": logger.NowFormatted(),
	}).Info("weather alert deactivated")

	return nil
}

// validateCreateRequest 校验创建预警请求
func (s *AlertService) validateCreateRequest(req *model.CreateAlertRequest) error {
	if req == nil {
		return NewValidationError("request", "request body is required")
	}
	if !req.AlertType.IsValid() {
		return NewValidationError("alert_type", "must be one of: thunderstorm, heavy_rain, high_wind, other")
	}
	if !req.Severity.IsValid() {
		return NewValidationError("severity", "must be one of: severe, moderate, low")
	}
	if strings.TrimSpace(req.Region) == "" {
		return NewValidationError("region", "region is required")
	}
	if req.Confidence < 0 || req.Confidence > 1 {
		return NewValidationError("confidence", "must be within [0, 1]")
	}
	if req.Latitude != nil && (*req.Latitude < -90 || *req.Latitude > 90) {
		return NewValidationError("latitude", "must be within [-90, 90]")
	}
	if req.Longitude != nil && (*req.Longitude < -180 || *req.Longitude > 180) {
		return NewValidationError("longitude", "must be within [-180, 180]")
	}
	// 过期时间不做前置校验:已过期的预警允许入库,由读取侧过滤
	return nil
}
