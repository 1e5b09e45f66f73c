package authz

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Tantanok221/douren/internal/apperror"
	"github.com/Tantanok221/douren/internal/model"
)

// Store is the subset of the query layer the guard needs.
type Store interface {
	GetUserRole(ctx context.Context, userID string) (string, error)
	GetArtistOwner(ctx context.Context, artistID int64) (sql.NullString, error)
}

// Denial messages are distinct per operation so clients can show a specific
// reason, but deliberately generic about the artist itself: a missing artist
// and someone else's artist produce the same response.
const (
	msgForbiddenEdit   = "you do not have permission to edit this artist"
	msgForbiddenDelete = "you do not have permission to delete this artist"
)

// Guard performs edit/delete permission checks.
type Guard struct {
	store Store
	roles *RoleCache
}

// NewGuard creates a guard over the given store and role cache.
func NewGuard(store Store, roles *RoleCache) *Guard {
	return &Guard{store: store, roles: roles}
}

// CanEdit returns nil if userID may edit the artist, or a forbidden error.
func (g *Guard) CanEdit(ctx context.Context, userID string, artistID int64) error {
	return g.check(ctx, userID, artistID, msgForbiddenEdit)
}

// CanDelete returns nil if userID may delete the artist, or a forbidden
// error. Delete permission uses the same rules as edit.
func (g *Guard) CanDelete(ctx context.Context, userID string, artistID int64) error {
	return g.check(ctx, userID, artistID, msgForbiddenDelete)
}

// check resolves the actor's role and the artist's owner concurrently (the
// reads are independent), then decides. Both lookups must complete before the
// decision; the first lookup error aborts the whole check.
func (g *Guard) check(ctx context.Context, userID string, artistID int64, denyMsg string) error {
	var (
		role        string
		owner       sql.NullString
		artistFound bool
	)

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		r, err := g.resolveRole(egCtx, userID)
		if err != nil {
			return err
		}
		role = r
		return nil
	})

	eg.Go(func() error {
		o, err := g.store.GetArtistOwner(egCtx, artistID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil // missing artist: decided below, not a transport error
		}
		if err != nil {
			return apperror.Upstream("looking up artist owner", err)
		}
		owner = o
		artistFound = true
		return nil
	})

	if err := eg.Wait(); err != nil {
		return err
	}

	if role == model.RoleAdmin {
		return nil
	}
	if !artistFound {
		return apperror.Forbidden(denyMsg)
	}
	// Legacy artists (no owner) are editable only by admins.
	if !owner.Valid || owner.String != userID {
		return apperror.Forbidden(denyMsg)
	}
	return nil
}

// resolveRole returns the user's role, consulting the cache first. A missing
// role record means the default "user" role.
func (g *Guard) resolveRole(ctx context.Context, userID string) (string, error) {
	if role, ok := g.roles.Get(ctx, userID); ok {
		return role, nil
	}

	role, err := g.store.GetUserRole(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		role = model.RoleUser
	} else if err != nil {
		return "", apperror.Upstream("looking up user role", err)
	}

	if err := g.roles.Set(ctx, userID, role); err != nil {
		return "", fmt.Errorf("caching role for %s: %w", userID, err)
	}
	return role, nil
}

// InvalidateRole drops the cached role for a user. Call before persisting a
// role change.
func (g *Guard) InvalidateRole(ctx context.Context, userID string) error {
	return g.roles.Invalidate(ctx, userID)
}
