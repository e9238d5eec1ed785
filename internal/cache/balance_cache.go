// Package cache provides the optional Redis-backed materialized balance
// cache. Entries are whole derived balances keyed per member and are
// deleted, never patched, when that member's ledger changes; the
// transaction history remains the only source of truth.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"kikoba-backend/internal/domain"
	"kikoba-backend/internal/logger"
)

const balanceTTL = 10 * time.Minute

type RedisBalanceCache struct {
	client *redis.Client
}

func NewRedisBalanceCache(client *redis.Client) *RedisBalanceCache {
	return &RedisBalanceCache{client: client}
}

func balanceKey(memberID string) string {
	return fmt.Sprintf("balance:%s", memberID)
}

func (c *RedisBalanceCache) GetMemberBalance(ctx context.Context, memberID string) (*domain.MemberBalance, bool) {
	data, err := c.client.Get(ctx, balanceKey(memberID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("Balance cache read failed", "member_id", memberID, "error", err)
		}
		return nil, false
	}
	var balance domain.MemberBalance
	if err := json.Unmarshal(data, &balance); err != nil {
		logger.Warn("Balance cache entry is corrupt, dropping it", "member_id", memberID, "error", err)
		c.Invalidate(ctx, memberID)
		return nil, false
	}
	return &balance, true
}

func (c *RedisBalanceCache) SetMemberBalance(ctx context.Context, balance *domain.MemberBalance) {
	data, err := json.Marshal(balance)
	if err != nil {
		logger.Warn("Failed to marshal balance for cache", "member_id", balance.MemberID, "error", err)
		return
	}
	if err := c.client.Set(ctx, balanceKey(balance.MemberID), data, balanceTTL).Err(); err != nil {
		logger.Warn("Balance cache write failed", "member_id", balance.MemberID, "error", err)
	}
}

func (c *RedisBalanceCache) Invalidate(ctx context.Context, memberID string) {
	if err := c.client.Del(ctx, balanceKey(memberID)).Err(); err != nil {
		logger.Warn("Balance cache invalidation failed", "member_id", memberID, "error", err)
	}
}

// Noop is used when the cache is disabled: every read misses and every
// write is dropped.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) GetMemberBalance(context.Context, string) (*domain.MemberBalance, bool) { return nil, false }
func (Noop) SetMemberBalance(context.Context, *domain.MemberBalance)                {}
func (Noop) Invalidate(context.Context, string)                                     {}
