package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/misd-it/misdesk/internal/domain"
)

const roleCacheTTL = 5 * time.Minute

// cachedPrincipal is the Redis representation of a resolved profile.
// The password hash is never cached.
type cachedPrincipal struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name"`
	Roles       []string `json:"roles"`
}

// RoleCache stores resolved profiles in Redis so the resolver does not
// hit Postgres on every request. Mutations of a profile's roles and
// profile deletion must invalidate its entry.
type RoleCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRoleCache builds a cache over the shared Redis client. Returns nil
// when Redis is not configured; the resolver treats a nil cache as a
// pass-through.
func NewRoleCache(r *Redis, logger *zap.Logger) *RoleCache {
	if r == nil || r.Client == nil {
		return nil
	}
	return &RoleCache{client: r.Client, logger: logger}
}

func roleCacheKey(profileID string) string {
	return "misdesk:roles:" + profileID
}

// Get returns the cached profile, if present.
func (c *RoleCache) Get(ctx context.Context, profileID string) (*domain.Profile, bool) {
	raw, err := c.client.Get(ctx, roleCacheKey(profileID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("role cache get failed", zap.Error(err))
		}
		return nil, false
	}
	var entry cachedPrincipal
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, false
	}
	return &domain.Profile{
		ID:          entry.ID,
		Email:       entry.Email,
		DisplayName: entry.DisplayName,
		Roles:       entry.Roles,
	}, true
}

// Set stores the profile with a short TTL.
func (c *RoleCache) Set(ctx context.Context, profileID string, profile *domain.Profile) {
	if profile == nil {
		return
	}
	raw, err := json.Marshal(cachedPrincipal{
		ID:          profile.ID,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
		Roles:       profile.Roles,
	})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, roleCacheKey(profileID), raw, roleCacheTTL).Err(); err != nil {
		c.logger.Warn("role cache set failed", zap.Error(err))
	}
}

// Invalidate removes the cached entry for the profile.
func (c *RoleCache) Invalidate(ctx context.Context, profileID string) {
	if err := c.client.Del(ctx, roleCacheKey(profileID)).Err(); err != nil {
		c.logger.Warn("role cache invalidate failed", zap.Error(err))
	}
}
