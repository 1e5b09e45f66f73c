// Package model defines domain models and types used throughout the
// application including Artist, Tag, Event, and user/role structures.
package model

import (
	"database/sql"
	"strings"
	"time"
)

// Artist represents an exhibitor/creator profile.
type Artist struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Introduce   string         `json:"introduce"`
	PhotoURL    sql.NullString `json:"photo_url"`
	OwnerUserID sql.NullString `json:"owner_user_id"`
	Tags        string         `json:"tags"` // denormalized comma-joined tag names
	Slug        string         `json:"slug"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// IsLegacy reports whether the artist has no owning user.
// Legacy artists are editable only by admins.
func (a *Artist) IsLegacy() bool {
	return !a.OwnerUserID.Valid
}

// TagList returns the denormalized tag string split into individual names.
func (a *Artist) TagList() []string {
	if a.Tags == "" {
		return nil
	}
	parts := strings.Split(a.Tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Product belongs to one artist.
type Product struct {
	ID        int64          `json:"id"`
	ArtistID  int64          `json:"artist_id"`
	Thumbnail string         `json:"thumbnail"`
	Preview   sql.NullString `json:"preview"`
	Title     sql.NullString `json:"title"`
	Tag       sql.NullString `json:"tag"`
}
