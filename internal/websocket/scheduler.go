/*
 * @author: sun977
 * @date: 2025.09.05
 * @description: 周期快照广播调度器
 * @func:
 * 1.Start/Stop 固定周期触发,停机优雅退出
 * 2.runTick 计算快照对并扇出;任一快照失败则跳过本周期,计数并记录原因
 * 3.Stats 暴露周期计数与最近跳过原因
 */
package websocket

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"meghamaster/internal/model"
	"meghamaster/internal/pkg/logger"

	"github.com/sirupsen/logrus"
)

// SnapshotProvider 快照计算接口,由指标聚合服务实现
type SnapshotProvider interface {
	ComputeMetrics(ctx context.Context) (*model.MetricsSnapshot, error)
	ComputeWeatherPatterns(ctx context.Context) (*model.WeatherPatternSnapshot, error)
}

// BroadcastScheduler 周期快照广播调度器
// 每个周期计算一次快照对并广播;计算失败跳过本周期,下个周期正常重试
type BroadcastScheduler struct {
	hub      *Hub
	provider SnapshotProvider
	interval time.Duration

	ticksTotal   atomic.Uint64 // 成功广播的周期数
	ticksSkipped atomic.Uint64 // 跳过的周期数

	skipMu         sync.RWMutex
	lastSkipReason string // 最近一次跳过原因

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewBroadcastScheduler 创建广播调度器实例
func NewBroadcastScheduler(hub *Hub, provider SnapshotProvider, interval time.Duration) *BroadcastScheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &BroadcastScheduler{
		hub:      hub,
		provider: provider,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start 启动调度循环
func (s *BroadcastScheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.loop(ctx)

	logger.LogSystemEvent("broadcast", "scheduler_started", "snapshot broadcast scheduler started", logrus.InfoLevel, map[string]interface{}{
		"interval": s.interval.String(),
	})
}

// Stop 停止调度循环并等待退出
func (s *BroadcastScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()

	logger.LogSystemEvent("broadcast", "scheduler_stopped", "snapshot broadcast scheduler stopped", logrus.InfoLevel, nil)
}

// loop 调度主循环
func (s *BroadcastScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunTick(ctx)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// RunTick 执行一个广播周期
// 两个快照都计算成功才广播;任一失败则整个周期跳过,不发送部分数据
func (s *BroadcastScheduler) RunTick(ctx context.Context) {
	metrics, err := s.provider.ComputeMetrics(ctx)
	if err != nil {
		s.skipTick("compute_metrics: " + err.Error())
		return
	}

	patterns, err := s.provider.ComputeWeatherPatterns(ctx)
	if err != nil {
		s.skipTick("compute_weather_patterns: " + err.Error())
		return
	}

	now := logger.NowFormatted()
	message := &model.WSMessage{
		Type: model.WSTypeUpdate,
		Data: &model.UpdatePayload{
			MLMetrics:       metrics,
			WeatherPatterns: patterns,
			Timestamp:       now,
		},
		Timestamp: now,
	}

	delivered, failed := s.hub.Broadcast(message)
	s.ticksTotal.Add(1)

	logger.WithFields(logrus.Fields{
		"delivered": delivered,
		"failed":    failed,
		"timestamp": now,
	}).Debug("snapshot broadcast tick completed")
}

// skipTick 记录一次跳过的周期
func (s *BroadcastScheduler) skipTick(reason string) {
	s.ticksSkipped.Add(1)
	s.skipMu.Lock()
	s.lastSkipReason = reason
	s.skipMu.Unlock()

	logger.LogSystemEvent("broadcast", "tick_skipped", "snapshot computation failed, skipping broadcast tick", logrus.WarnLevel, map[string]interface{}{
		"reason":        reason,
		"ticks_skipped": s.ticksSkipped.Load(),
	})
}

// Stats 当前调度统计
func (s *BroadcastScheduler) Stats() *model.BroadcastStatsResponse {
	s.skipMu.RLock()
	reason := s.lastSkipReason
	s.skipMu.RUnlock()

	return &model.BroadcastStatsResponse{
		TicksTotal:      s.ticksTotal.Load(),
		TicksSkipped:    s.ticksSkipped.Load(),
		LastSkipReason:  reason,
		ConnectedCount:  s.hub.ClientCount(),
		IntervalSeconds: int(s.interval / time.Second),
	}
}
