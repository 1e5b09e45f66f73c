package model

import (
	"database/sql"
	"time"
)

// User roles. A user without a role record has RoleUser implicitly.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an authenticated account.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Never expose in JSON
	Name         string       `json:"name"`
	CreatedAt    time.Time    `json:"created_at"`
	LastLoginAt  sql.NullTime `json:"last_login_at,omitempty"`
}

// Invite is a single-use registration code.
type Invite struct {
	Code      string         `json:"code"`
	CreatedBy string         `json:"created_by"`
	UsedBy    sql.NullString `json:"used_by"`
	ExpiresAt time.Time      `json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
}

// IsUsable reports whether the invite can still redeem a registration at t.
func (i *Invite) IsUsable(t time.Time) bool {
	return !i.UsedBy.Valid && t.Before(i.ExpiresAt)
}
