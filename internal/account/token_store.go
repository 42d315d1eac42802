package account

import (
	"context"
	"fmt"
	"time"

	"terminal-terrace/sse-share/pkg/database"
)

// RevokedTokenPrefix 已注销令牌的 Redis key 前缀
const RevokedTokenPrefix = "revoked_token:"

// TokenStore 基于 Redis 的令牌注销记录
// key 的过期时间与令牌剩余有效期一致，过期后自然失效
type TokenStore struct {
	redis *database.RedisClient
}

// NewTokenStore 创建令牌存储实例
func NewTokenStore(redisClient *database.RedisClient) *TokenStore {
	return &TokenStore{redis: redisClient}
}

// Revoke 注销令牌
func (s *TokenStore) Revoke(ctx context.Context, tokenID string, userID uint, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	key := RevokedTokenPrefix + tokenID

	if err := s.redis.HSet(ctx, key, map[string]interface{}{
		"user_id":    userID,
		"revoked_at": time.Now().Unix(),
	}).Err(); err != nil {
		return fmt.Errorf("store revoked token: %w", err)
	}

	if err := s.redis.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("set revoked token expiration: %w", err)
	}
	return nil
}

// IsRevoked 令牌是否已注销
func (s *TokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.redis.Exists(ctx, RevokedTokenPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}
