// Package authz decides whether an acting user may edit or delete an artist
// record, combining role lookups (with an explicit cache) and artist
// ownership checks.
package authz

import (
	"context"

	"github.com/Tantanok221/douren/internal/cache"
)

const roleKeyPrefix = "role:"

// RoleCache caches role lookups per user id. It is constructed once per
// process and passed by reference; entries never expire on their own and are
// removed only through Invalidate or ClearAll. Failing to invalidate after a
// role change serves stale permissions, which is a correctness bug.
type RoleCache struct {
	cache *cache.TypedCache[string]
}

// NewRoleCache creates a role cache over the given backend (in-process
// memory, or Redis when multiple API processes share role state).
func NewRoleCache(backend cache.Cache) *RoleCache {
	return &RoleCache{cache: cache.NewTypedCache[string](backend, 0)}
}

// Get returns the cached role for a user, if present.
func (rc *RoleCache) Get(ctx context.Context, userID string) (string, bool) {
	return rc.cache.Get(ctx, roleKeyPrefix+userID)
}

// Set stores a user's role.
func (rc *RoleCache) Set(ctx context.Context, userID, role string) error {
	return rc.cache.Set(ctx, roleKeyPrefix+userID, role)
}

// Invalidate drops a user's cached role. Must be called whenever a role is
// administratively changed, before the new role is written (invalidate-then-
// write: a racing request falls back to a fresh lookup rather than reading a
// stale entry).
func (rc *RoleCache) Invalidate(ctx context.Context, userID string) error {
	return rc.cache.Delete(ctx, roleKeyPrefix+userID)
}

// ClearAll drops every cached role.
func (rc *RoleCache) ClearAll(ctx context.Context) error {
	return rc.cache.Clear(ctx)
}
