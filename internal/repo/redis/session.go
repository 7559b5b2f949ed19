/**
 * 会话仓库层:会话数据访问
 * @author: sun977
 * @date: 2025.09.05
 * @description: 会话数据交互层(Redis存储)
 * @func: 单纯数据访问,不应该包含业务逻辑
 * @note: 会话由外部认证系统写入,本服务只做读取与存在性检查,从不创建或续期
 */
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"meghamaster/internal/model"

	"github.com/go-redis/redis/v8"
)

// ErrSessionNotFound 会话不存在
var ErrSessionNotFound = fmt.Errorf("session not found")

// SessionRepository Redis会话存储库
type SessionRepository struct {
	client    *redis.Client
	keyPrefix string
}

// NewSessionRepository 创建会话存储库实例
func NewSessionRepository(client *redis.Client, keyPrefix string) *SessionRepository {
	if keyPrefix == "" {
		keyPrefix = "session:user:"
	}
	return &SessionRepository{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// getSessionKey 生成会话键[KEY:session:user:{userID}]
func (r *SessionRepository) getSessionKey(userID uint) string {
	return fmt.Sprintf("%s%d", r.keyPrefix, userID)
}

// GetSession 获取用户会话信息
func (r *SessionRepository) GetSession(ctx context.Context, userID uint) (*model.SessionData, error) {
	sessionKey := r.getSessionKey(userID)

	// 从Redis获取数据
	data, err := r.client.Get(ctx, sessionKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	// 反序列化会话数据
	var sessionData model.SessionData
	err = json.Unmarshal([]byte(data), &sessionData)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	return &sessionData, nil
}

// SessionExists 检查用户会话是否存在
func (r *SessionRepository) SessionExists(ctx context.Context, userID uint) (bool, error) {
	sessionKey := r.getSessionKey(userID)

	count, err := r.client.Exists(ctx, sessionKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session existence: %w", err)
	}

	return count > 0, nil
}
