package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/auditready/auditready-backend/internal/domain/guidance"
)

// GuidanceCache is the cache-aside store for published guidance versions,
// keyed by unified requirement. Published guidance is the hottest read path
// in the product and changes only on publish or archive, so the entries
// are invalidated by those two writes rather than relying on short TTLs.
//
// Cache failures degrade to repository reads; they are logged, never
// surfaced to the caller.
type GuidanceCache struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewGuidanceCache creates a published-guidance cache
func NewGuidanceCache(client *redis.Client, logger *zap.Logger, ttl time.Duration) *GuidanceCache {
	return &GuidanceCache{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

// Get returns the cached published version for the requirement, if any
func (c *GuidanceCache) Get(ctx context.Context, unifiedRequirementID uuid.UUID) (*guidance.Version, bool) {
	data, err := c.client.Get(ctx, c.key(unifiedRequirementID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("guidance cache read failed",
				zap.String("unified_requirement_id", unifiedRequirementID.String()),
				zap.Error(err),
			)
		}
		return nil, false
	}

	var version guidance.Version
	if err := json.Unmarshal(data, &version); err != nil {
		c.logger.Warn("guidance cache entry corrupt, dropping",
			zap.String("unified_requirement_id", unifiedRequirementID.String()),
			zap.Error(err),
		)
		c.client.Del(ctx, c.key(unifiedRequirementID))
		return nil, false
	}
	return &version, true
}

// Set stores the published version
func (c *GuidanceCache) Set(ctx context.Context, v *guidance.Version) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("guidance cache marshal failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.key(v.UnifiedRequirementID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("guidance cache write failed",
			zap.String("unified_requirement_id", v.UnifiedRequirementID.String()),
			zap.Error(err),
		)
	}
}

// Invalidate drops the requirement's cached entry
func (c *GuidanceCache) Invalidate(ctx context.Context, unifiedRequirementID uuid.UUID) {
	if err := c.client.Del(ctx, c.key(unifiedRequirementID)).Err(); err != nil {
		c.logger.Warn("guidance cache invalidation failed",
			zap.String("unified_requirement_id", unifiedRequirementID.String()),
			zap.Error(err),
		)
	}
}

func (c *GuidanceCache) key(unifiedRequirementID uuid.UUID) string {
	return "guidance:published:" + unifiedRequirementID.String()
}
