package model

import "database/sql"

// Event is a convention with a unique name.
type Event struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Booth links an artist to an event with per-day location strings.
// Conventions run up to three exhibition days.
type Booth struct {
	EventID       int64          `json:"event_id"`
	ArtistID      int64          `json:"artist_id"`
	LocationDay01 sql.NullString `json:"location_day01"`
	LocationDay02 sql.NullString `json:"location_day02"`
	LocationDay03 sql.NullString `json:"location_day03"`
	DM            sql.NullString `json:"dm"` // preview/direct-message text blob
}

// Owner is a static site-owner profile entry, not a user account.
type Owner struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Twitter     sql.NullString `json:"twitter"`
	GitHub      sql.NullString `json:"github"`
}
