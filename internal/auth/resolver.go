package auth

import (
	"context"

	"go.uber.org/zap"

	"github.com/misd-it/misdesk/internal/domain"
)

// ProfileSource loads staff profiles for principal resolution.
type ProfileSource interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
}

// RoleCache caches resolved profiles per profile id. Entries carry no
// password hash.
type RoleCache interface {
	Get(ctx context.Context, profileID string) (*domain.Profile, bool)
	Set(ctx context.Context, profileID string, profile *domain.Profile)
	Invalidate(ctx context.Context, profileID string)
}

// Resolver maps an authenticated profile id to its permission set.
// Resolution happens once per request; the resulting Principal is passed
// explicitly to every gated operation.
type Resolver struct {
	profiles ProfileSource
	cache    RoleCache
	logger   *zap.Logger
}

// NewResolver constructs a resolver. cache may be nil.
func NewResolver(profiles ProfileSource, cache RoleCache, logger *zap.Logger) *Resolver {
	return &Resolver{profiles: profiles, cache: cache, logger: logger}
}

// Resolve returns the profile and its permission set. A live cache entry
// answers without touching Postgres; a miss loads the profile and fills
// the cache. Any failure yields an empty set: gated operations must then
// deny. Fails closed, never open.
func (r *Resolver) Resolve(ctx context.Context, profileID string) (*domain.Profile, PermissionSet) {
	if profileID == "" {
		return nil, PermissionSet{}
	}

	var profile *domain.Profile
	if r.cache != nil {
		if cached, ok := r.cache.Get(ctx, profileID); ok {
			profile = cached
		}
	}
	if profile == nil {
		loaded, err := r.profiles.GetByID(ctx, profileID)
		if err != nil {
			r.logger.Warn("principal resolution failed", zap.String("profile_id", profileID), zap.Error(err))
			return nil, PermissionSet{}
		}
		profile = loaded
		if r.cache != nil {
			r.cache.Set(ctx, profileID, profile)
		}
	}

	perms, unknown := ParsePermissions(profile.Roles)
	if len(unknown) > 0 {
		r.logger.Warn("dropping unknown role strings",
			zap.String("profile_id", profileID),
			zap.Strings("roles", unknown))
	}
	return profile, perms
}

// InvalidateRoles drops any cached role set for the profile.
func (r *Resolver) InvalidateRoles(ctx context.Context, profileID string) {
	if r.cache != nil {
		r.cache.Invalidate(ctx, profileID)
	}
}
