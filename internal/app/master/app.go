/*
 * @author: sun977
 * @date: 2025.09.05
 * @description: 应用程序装配与生命周期管理
 * @func:
 * 1.NewApp 加载配置、初始化日志/存储连接、自动建表、装配路由与广播调度器
 * 2.Start 启动广播调度器与配置热加载
 * 3.Stop 停止调度器、注销全部连接、关闭存储连接
 */
package master

import (
	"context"
	"fmt"

	"meghamaster/internal/config"
	"meghamaster/internal/model"
	"meghamaster/internal/pkg/database"
	"meghamaster/internal/pkg/logger"
	"meghamaster/internal/repo/mysql"
	redisRepo "meghamaster/internal/repo/redis"
	weatherService "meghamaster/internal/service/weather"
	ws "meghamaster/internal/websocket"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App 应用程序结构体
type App struct {
	config      *config.Config
	router      *Router
	db          *gorm.DB
	redisClient *redis.Client
	hub         *ws.Hub
	scheduler   *ws.BroadcastScheduler
	watcher     *config.ConfigWatcher
}

// NewApp 创建新的应用程序实例
func NewApp(configPath, env string) (*App, error) {
	// 加载配置
	cfg, err := config.LoadConfig(configPath, env)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 初始化日志
	logManager, err := logger.InitLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	// 初始化存储连接
	db, err := database.NewMySQLConnection(&cfg.Database.MySQL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect mysql: %w", err)
	}

	redisClient, err := database.NewRedisConnection(&cfg.Database.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}

	// 自动建表
	if err := db.AutoMigrate(&model.WeatherAlert{}, &model.ModelStatus{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// 快照计算服务(路由与广播调度器共用同一实例)
	alertRepo := mysql.NewAlertRepository(db)
	statusRepo := mysql.NewModelStatusRepository(db)
	telemetryRepo := redisRepo.NewTelemetryRepository(redisClient, cfg.Weather.ObservationMax, cfg.Weather.ObservationTTL)
	metricsService := weatherService.NewMetricsService(statusRepo, alertRepo, telemetryRepo)

	// 连接登记中心与广播调度器
	hub := ws.NewHub(cfg.WebSocket.WriteWait)
	scheduler := ws.NewBroadcastScheduler(hub, metricsService, cfg.Broadcast.Interval)

	// 装配路由
	router := NewRouter(cfg, db, redisClient, hub, scheduler, metricsService)
	router.SetupRoutes()

	app := &App{
		config:      cfg,
		router:      router,
		db:          db,
		redisClient: redisClient,
		hub:         hub,
		scheduler:   scheduler,
	}

	// 配置热加载(目前仅支持日志级别动态调整)
	watcher, err := config.NewConfigWatcher(configPath, env)
	if err != nil {
		logger.LogSystemEvent("config", "watcher_init_failed", "config hot reload disabled", logrus.WarnLevel, map[string]interface{}{
			"reason": err.Error(),
		})
	} else {
		watcher.AddCallback(func(oldCfg, newCfg *config.Config) error {
			if oldCfg.Log.Level != newCfg.Log.Level {
				return logManager.UpdateLevel(newCfg.Log.Level)
			}
			return nil
		})
		app.watcher = watcher
	}

	return app, nil
}

// Start 启动后台组件
func (a *App) Start(ctx context.Context) error {
	a.scheduler.Start(ctx)

	if a.watcher != nil {
		if err := a.watcher.Start(); err != nil {
			logger.LogSystemEvent("config", "watcher_start_failed", "config hot reload disabled", logrus.WarnLevel, map[string]interface{}{
				"reason": err.Error(),
			})
		}
	}

	logger.LogSystemEvent("app", "started", "application components started", logrus.InfoLevel, map[string]interface{}{
		"app_name": a.config.App.Name,
		"version":  a.config.App.Version,
	})
	return nil
}

// Stop 停止后台组件并释放资源
func (a *App) Stop() error {
	if a.watcher != nil {
		a.watcher.Stop()
	}

	a.scheduler.Stop()
	a.hub.CloseAll()

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			logger.LogSystemEvent("app", "redis_close_failed", "failed to close redis client", logrus.WarnLevel, map[string]interface{}{
				"reason": err.Error(),
			})
		}
	}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.LogSystemEvent("app", "mysql_close_failed", "failed to close mysql connection", logrus.WarnLevel, map[string]interface{}{
					"reason": err.Error(),
				})
			}
		}
	}

	logger.LogSystemEvent("app", "stopped", "application components stopped", logrus.InfoLevel, nil)
	return nil
}

// GetConfig 获取应用配置
func (a *App) GetConfig() *config.Config {
	return a.config
}

// GetRouter 获取路由器实例
func (a *App) GetRouter() *Router {
	return a.router
}
