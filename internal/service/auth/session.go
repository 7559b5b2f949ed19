/*
 * @author: sun977
 * @date: 2025.09.04
 * @description: 会话门禁服务,只做通过/拒绝判定,不签发凭证
 * @func:
 * 1.ValidateSession 校验令牌并确认Redis中会话仍然存在
 */
package auth

import (
	"context"
	"errors"

	"meghamaster/internal/model"
	"meghamaster/internal/pkg/auth"
	"meghamaster/internal/pkg/logger"
	redisRepo "meghamaster/internal/repo/redis"

	"github.com/sirupsen/logrus"
)

// ErrUnauthorized 会话校验未通过
// 令牌缺失、非法、过期、会话不存在统一归并为该错误,不向调用方区分原因
var ErrUnauthorized = errors.New("unauthorized")

// SessionService 会话门禁服务
// 凭证由外部认证系统签发,本服务只读校验
type SessionService struct {
	jwtManager  *auth.JWTManager
	sessionRepo *redisRepo.SessionRepository
}

// NewSessionService 创建会话门禁服务实例
func NewSessionService(jwtManager *auth.JWTManager, sessionRepo *redisRepo.SessionRepository) *SessionService {
	return &SessionService{
		jwtManager:  jwtManager,
		sessionRepo: sessionRepo,
	}
}

// ValidateSession 校验会话令牌
// 通过返回令牌声明,失败一律返回ErrUnauthorized
func (s *SessionService) ValidateSession(ctx context.Context, token string) (*auth.JWTClaims, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	claims, err := s.jwtManager.ValidateAccessToken(token)
	if err != nil {
		logger.LogSystemEvent("auth", "token_rejected", "access token validation failed", logrus.WarnLevel, map[string]interface{}{
			"reason": err.Error(),
		})
		return nil, ErrUnauthorized
	}

	exists, err := s.sessionRepo.SessionExists(ctx, claims.UserID)
	if err != nil {
		// 会话存储不可用时拒绝而不是放行
		logger.LogSystemEvent("auth", "session_check_failed", "session store unavailable", logrus.ErrorLevel, map[string]interface{}{
			"user_id": claims.UserID,
			"reason":  err.Error(),
		})
		return nil, ErrUnauthorized
	}
	if !exists {
		return nil, ErrUnauthorized
	}

	return claims, nil
}

// GetSessionData 读取会话详情,供连接登记时记录来源信息
func (s *SessionService) GetSessionData(ctx context.Context, userID uint) (*model.SessionData, error) {
	data, err := s.sessionRepo.GetSession(ctx, userID)
	if err != nil {
		if errors.Is(err, redisRepo.ErrSessionNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return data, nil
}
