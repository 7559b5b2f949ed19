/**
 * 遥测仓库层:协作方计数与近期观测数据访问
 * @author: sun977
 * @date: 2025.09.05
 * @description: 遥测数据交互层(Redis存储)
 * @func:
 * 1.累计预测次数计数器
 * 2.近期形势观测(定长列表+TTL)
 */
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"meghamaster/internal/model"

	"github.com/go-redis/redis/v8"
)

const (
	predictionCountKey = "telemetry:predictions:total" // 累计预测次数
	observationListKey = "telemetry:observations"      // 近期形势观测列表
)

// TelemetryRepository Redis遥测存储库
type TelemetryRepository struct {
	client         *redis.Client
	observationMax int           // 观测列表长度上限
	observationTTL time.Duration // 观测列表保留时间
}

// NewTelemetryRepository 创建遥测存储库实例
func NewTelemetryRepository(client *redis.Client, observationMax int, observationTTL time.Duration) *TelemetryRepository {
	return &TelemetryRepository{
		client:         client,
		observationMax: observationMax,
		observationTTL: observationTTL,
	}
}

// IncrPredictionCount 预测事件计数+1,返回累计值
func (r *TelemetryRepository) IncrPredictionCount(ctx context.Context) (int64, error) {
	count, err := r.client.Incr(ctx, predictionCountKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment prediction count: %w", err)
	}
	return count, nil
}

// GetPredictionCount 获取累计预测次数
// 键不存在时返回0(尚无预测事件)
func (r *TelemetryRepository) GetPredictionCount(ctx context.Context) (int64, error) {
	count, err := r.client.Get(ctx, predictionCountKey).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get prediction count: %w", err)
	}
	return count, nil
}

// PushObservation 写入一条近期形势观测
// 列表左进右裁,长度封顶,整个列表带TTL
func (r *TelemetryRepository) PushObservation(ctx context.Context, obs *model.PatternObservation) error {
	data, err := json.Marshal(obs)
	if err != nil {
		return fmt.Errorf("failed to marshal observation: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, observationListKey, data)
	pipe.LTrim(ctx, observationListKey, 0, int64(r.observationMax-1))
	pipe.Expire(ctx, observationListKey, r.observationTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push observation: %w", err)
	}
	return nil
}

// GetRecentObservations 读取近期形势观测
// 空列表返回空切片而不是错误
func (r *TelemetryRepository) GetRecentObservations(ctx context.Context) ([]*model.PatternObservation, error) {
	items, err := r.client.LRange(ctx, observationListKey, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recent observations: %w", err)
	}

	observations := make([]*model.PatternObservation, 0, len(items))
	for _, item := range items {
		var obs model.PatternObservation
		if err := json.Unmarshal([]byte(item), &obs); err != nil {
			// 单条解析失败不影响其余观测
			continue
		}
		observations = append(observations, &obs)
	}
	return observations, nil
}
