package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"

	vo "github.com/turnex-app/turnex/internal/domain/subscription/valueobjects"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

const (
	planLimitKeyPrefix = "plan:limits:"
	basePlanLimitTTL   = 60 * time.Minute
	planLimitTTLJitter = 20 * time.Minute // TTL range: 60-80 min (anti-stampede)
)

// RedisPlanLimitCache caches per-plan resource limits in Redis. Plans change
// rarely, so a long randomized TTL is enough; writes through the admin path
// call Invalidate.
type RedisPlanLimitCache struct {
	client *redis.Client
	logger logger.Interface
}

func NewRedisPlanLimitCache(client *redis.Client, logger logger.Interface) *RedisPlanLimitCache {
	return &RedisPlanLimitCache{
		client: client,
		logger: logger,
	}
}

func (c *RedisPlanLimitCache) key(planID uint) string {
	return fmt.Sprintf("%s%d", planLimitKeyPrefix, planID)
}

// Get returns the cached limits for a plan. Errors degrade to a miss so the
// caller falls through to the database.
func (c *RedisPlanLimitCache) Get(ctx context.Context, planID uint) (*vo.ResourceLimits, bool) {
	raw, err := c.client.Get(ctx, c.key(planID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warnw("failed to read plan limits from cache",
				"plan_id", planID,
				"error", err,
			)
		}
		return nil, false
	}

	var limits vo.ResourceLimits
	if err := json.Unmarshal(raw, &limits); err != nil {
		c.logger.Warnw("corrupt plan limits cache entry, treating as miss",
			"plan_id", planID,
			"error", err,
		)
		return nil, false
	}

	return &limits, true
}

// Set stores the limits for a plan. Failures are logged and swallowed; the
// cache is an optimization, not a source of truth.
func (c *RedisPlanLimitCache) Set(ctx context.Context, planID uint, limits vo.ResourceLimits) {
	raw, err := json.Marshal(limits)
	if err != nil {
		c.logger.Warnw("failed to encode plan limits for cache",
			"plan_id", planID,
			"error", err,
		)
		return
	}

	if err := c.client.Set(ctx, c.key(planID), raw, planLimitTTLWithJitter()).Err(); err != nil {
		c.logger.Warnw("failed to cache plan limits",
			"plan_id", planID,
			"error", err,
		)
		return
	}

	c.logger.Debugw("plan limits cached", "plan_id", planID)
}

// Invalidate removes a plan's cached limits after a plan update.
func (c *RedisPlanLimitCache) Invalidate(ctx context.Context, planID uint) {
	if err := c.client.Del(ctx, c.key(planID)).Err(); err != nil {
		c.logger.Warnw("failed to invalidate plan limits cache",
			"plan_id", planID,
			"error", err,
		)
		return
	}

	c.logger.Debugw("plan limits cache invalidated", "plan_id", planID)
}

// planLimitTTLWithJitter randomizes the TTL to prevent cache stampede.
func planLimitTTLWithJitter() time.Duration {
	jitter := time.Duration(rand.Int64N(int64(planLimitTTLJitter)))
	return basePlanLimitTTL + jitter
}
