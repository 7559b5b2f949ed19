/*
 * @author: sun977
 * @date: 2025.09.05
 * @description: 路由管理器,负责依赖装配和路由注册
 * @func:
 * 1.NewRouter 仓库->服务->处理器逐层装配
 * 2.SetupRoutes 注册HTTP与WebSocket路由
 */
package master

import (
	"net/http"
	"time"

	"meghamaster/internal/config"
	dashboardHandler "meghamaster/internal/handler/dashboard"
	authPkg "meghamaster/internal/pkg/auth"
	"meghamaster/internal/repo/mysql"
	redisRepo "meghamaster/internal/repo/redis"
	authService "meghamaster/internal/service/auth"
	weatherService "meghamaster/internal/service/weather"
	ws "meghamaster/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Router 路由管理器
type Router struct {
	engine             *gin.Engine
	middlewareManager  *MiddlewareManager
	alertHandler       *dashboardHandler.AlertHandler
	modelStatusHandler *dashboardHandler.ModelStatusHandler
	metricsHandler     *dashboardHandler.MetricsHandler
	wsHandler          *dashboardHandler.WSHandler
	statusRepo         *mysql.ModelStatusRepository
	wsPath             string
}

// NewRouter 创建路由管理器实例
// 广播调度器由调用方持有生命周期,这里只负责装配
func NewRouter(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, hub *ws.Hub, scheduler *ws.BroadcastScheduler, metricsService *weatherService.MetricsService) *Router {
	// 初始化工具包
	jwtManager := authPkg.NewJWTManager(cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer, time.Duration(cfg.Session.MaxAge)*time.Second)

	// 仓库层
	alertRepo := mysql.NewAlertRepository(db)
	statusRepo := mysql.NewModelStatusRepository(db)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Session.KeyPrefix)
	telemetryRepo := redisRepo.NewTelemetryRepository(redisClient, cfg.Weather.ObservationMax, cfg.Weather.ObservationTTL)

	// 服务层
	alertService := weatherService.NewAlertService(alertRepo)
	statusService := weatherService.NewModelStatusService(statusRepo, telemetryRepo)
	sessionService := authService.NewSessionService(jwtManager, sessionRepo)

	// 中间件管理器
	middlewareManager := NewMiddlewareManager(sessionService, cfg.Security.CORS)

	// 处理器(控制器是服务集合,先初始化服务,然后服务装填成控制器)
	alertHandler := dashboardHandler.NewAlertHandler(alertService)
	modelStatusHandler := dashboardHandler.NewModelStatusHandler(statusService)
	metricsHandler := dashboardHandler.NewMetricsHandler(metricsService, scheduler)
	wsHandler := dashboardHandler.NewWSHandler(sessionService, hub, cfg.WebSocket)

	// 创建Gin引擎
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	return &Router{
		engine:             engine,
		middlewareManager:  middlewareManager,
		alertHandler:       alertHandler,
		modelStatusHandler: modelStatusHandler,
		metricsHandler:     metricsHandler,
		wsHandler:          wsHandler,
		statusRepo:         statusRepo,
		wsPath:             cfg.WebSocket.Path,
	}
}

// SetupRoutes 设置路由
func (r *Router) SetupRoutes() {
	// 全局中间件
	r.engine.Use(r.middlewareManager.GinRecoveryMiddleware())
	r.engine.Use(r.middlewareManager.GinCORSMiddleware())
	r.engine.Use(r.middlewareManager.GinLoggingMiddleware())

	api := r.engine.Group("/api")
	v1 := api.Group("/v1")

	// 健康检查路由(无需门禁,先于会话中间件注册)
	r.setupHealthRoutes(v1)

	// 业务路由(需要会话门禁)
	r.setupDashboardRoutes(v1)

	// WebSocket接入(门禁在处理器内完成,令牌经query参数传递)
	wsPath := r.wsPath
	if wsPath == "" {
		wsPath = "/ws"
	}
	r.engine.GET(wsPath, r.wsHandler.HandleConnection)
}

// setupDashboardRoutes 设置仪表盘业务路由
func (r *Router) setupDashboardRoutes(v1 *gin.RouterGroup) {
	v1.Use(r.middlewareManager.GinSessionAuthMiddleware())

	// 气象预警
	alerts := v1.Group("/alerts")
	{
		alerts.POST("", r.alertHandler.CreateAlert)                    // 创建预警
		alerts.GET("/active", r.alertHandler.ListActiveAlerts)         // 查询有效预警列表
		alerts.POST("/:id/deactivate", r.alertHandler.DeactivateAlert) // 停用预警
	}

	// ML模型状态
	models := v1.Group("/models")
	{
		models.GET("", r.modelStatusHandler.ListModelStatuses)           // 查询全部模型状态
		models.POST("", r.modelStatusHandler.UpsertModelStatus)          // 登记或更新模型状态
		models.POST("/:name/train", r.modelStatusHandler.MarkTraining)   // 标记训练中
		models.POST("/:name/predict", r.modelStatusHandler.RecordPrediction) // 记录预测调用
	}

	// 指标与天气形势
	v1.GET("/metrics", r.metricsHandler.GetMetrics)                       // 模型指标快照
	v1.GET("/weather/patterns", r.metricsHandler.GetWeatherPatterns)      // 天气形势快照
	v1.POST("/weather/observations", r.metricsHandler.ReportObservation)  // 上报近期观测
	v1.GET("/system/broadcast/stats", r.metricsHandler.GetBroadcastStats) // 广播调度统计
}

// setupHealthRoutes 设置健康检查路由
// 顺带对数据库探活:统计失败时报告degraded
func (r *Router) setupHealthRoutes(v1 *gin.RouterGroup) {
	v1.GET("/health", func(c *gin.Context) {
		modelCount, err := r.statusRepo.CountModelStatuses(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "degraded",
				"timestamp": time.Now().Unix(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":            "ok",
			"models_registered": modelCount,
			"timestamp":         time.Now().Unix(),
		})
	})
}

// GetEngine 获取Gin引擎
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
