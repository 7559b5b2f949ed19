/*
 * @author: sun977
 * @date: 2025.09.06
 * @description: 快照广播调度器测试
 */
package websocket

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"meghamaster/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider 测试用快照提供方
type fakeProvider struct {
	mu          sync.Mutex
	metricsErr  error
	patternsErr error
}

func (p *fakeProvider) setMetricsErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.metricsErr = err
}

func (p *fakeProvider) ComputeMetrics(ctx context.Context) (*model.MetricsSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.metricsErr != nil {
		return nil, p.metricsErr
	}
	return &model.MetricsSnapshot{
		TotalModels:     3,
		ActiveModels:    2,
		AverageAccuracy: 0.918,
		SystemLoad:      0.42,
		Timestamp:       time.Now(),
	}, nil
}

func (p *fakeProvider) ComputeWeatherPatterns(ctx context.Context) (*model.WeatherPatternSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.patternsErr != nil {
		return nil, p.patternsErr
	}
	return &model.WeatherPatternSnapshot{
		ActivePatterns:  2,
		SystemsDetected: 1,
		Confidence:      0.85,
		LastUpdate:      time.Now(),
	}, nil
}

func TestRunTickBroadcastsSnapshotPair(t *testing.T) {
	hub := NewHub(time.Second)
	provider := &fakeProvider{}
	scheduler := NewBroadcastScheduler(hub, provider, 30*time.Second)

	conns := make([]*fakeConn, 0, 3)
	for _, id := range []string{"conn-1", "conn-2", "conn-3"} {
		_, conn := registerTestClient(t, hub, id)
		conns = append(conns, conn)
	}

	scheduler.RunTick(context.Background())

	for _, conn := range conns {
		require.Equal(t, 2, conn.frameCount())
		msg := conn.lastFrame(t)
		assert.Equal(t, model.WSTypeUpdate, msg.Type)
		assert.NotEmpty(t, msg.Timestamp)

		// data里同时带有模型指标和天气形势
		data, ok := msg.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Contains(t, data, "mlMetrics")
		assert.Contains(t, data, "weatherPatterns")
	}

	stats := scheduler.Stats()
	assert.Equal(t, uint64(1), stats.TicksTotal)
	assert.Equal(t, uint64(0), stats.TicksSkipped)
	assert.Equal(t, 3, stats.ConnectedCount)
	assert.Equal(t, 30, stats.IntervalSeconds)
}

func TestRunTickSkipsOnSnapshotError(t *testing.T) {
	hub := NewHub(time.Second)
	provider := &fakeProvider{}
	scheduler := NewBroadcastScheduler(hub, provider, 30*time.Second)

	_, conn := registerTestClient(t, hub, "conn-1")
	framesBefore := conn.frameCount()

	provider.setMetricsErr(errors.New("store unavailable during list_model_statuses"))
	scheduler.RunTick(context.Background())

	// 快照失败:本周期整体跳过,不发送部分数据
	assert.Equal(t, framesBefore, conn.frameCount())

	stats := scheduler.Stats()
	assert.Equal(t, uint64(0), stats.TicksTotal)
	assert.Equal(t, uint64(1), stats.TicksSkipped)
	assert.Contains(t, stats.LastSkipReason, "compute_metrics")

	// 故障恢复后下一周期正常广播
	provider.setMetricsErr(nil)
	scheduler.RunTick(context.Background())

	assert.Equal(t, framesBefore+1, conn.frameCount())
	stats = scheduler.Stats()
	assert.Equal(t, uint64(1), stats.TicksTotal)
	assert.Equal(t, uint64(1), stats.TicksSkipped)
}

func TestRunTickPatternsErrorAlsoSkips(t *testing.T) {
	hub := NewHub(time.Second)
	provider := &fakeProvider{patternsErr: errors.New("redis connection refused")}
	scheduler := NewBroadcastScheduler(hub, provider, 30*time.Second)

	_, conn := registerTestClient(t, hub, "conn-1")
	framesBefore := conn.frameCount()

	scheduler.RunTick(context.Background())

	assert.Equal(t, framesBefore, conn.frameCount())
	assert.Contains(t, scheduler.Stats().LastSkipReason, "compute_weather_patterns")
}

func TestRunTickWithoutClients(t *testing.T) {
	hub := NewHub(time.Second)
	scheduler := NewBroadcastScheduler(hub, &fakeProvider{}, 30*time.Second)

	// 没有连接时周期照常执行,只是无人接收
	scheduler.RunTick(context.Background())

	stats := scheduler.Stats()
	assert.Equal(t, uint64(1), stats.TicksTotal)
	assert.Equal(t, 0, stats.ConnectedCount)
}

func TestSchedulerStartStop(t *testing.T) {
	hub := NewHub(time.Second)
	provider := &fakeProvider{}
	scheduler := NewBroadcastScheduler(hub, provider, 20*time.Millisecond)

	_, conn := registerTestClient(t, hub, "conn-1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler.Start(ctx)

	require.Eventually(t, func() bool {
		return scheduler.Stats().TicksTotal >= 2
	}, 2*time.Second, 10*time.Millisecond)

	scheduler.Stop()
	ticksAtStop := scheduler.Stats().TicksTotal
	framesAtStop := conn.frameCount()

	// 停止后不再产生新的周期
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, ticksAtStop, scheduler.Stats().TicksTotal)
	assert.Equal(t, framesAtStop, conn.frameCount())
}

func TestSchedulerStopIdempotent(t *testing.T) {
	hub := NewHub(time.Second)
	scheduler := NewBroadcastScheduler(hub, &fakeProvider{}, time.Second)

	scheduler.Start(context.Background())
	scheduler.Stop()
	scheduler.Stop()
}

func TestSchedulerDefaultInterval(t *testing.T) {
	hub := NewHub(time.Second)
	scheduler := NewBroadcastScheduler(hub, &fakeProvider{}, 0)

	assert.Equal(t, 30, scheduler.Stats().IntervalSeconds)
}
