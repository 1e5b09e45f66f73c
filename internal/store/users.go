package store

import (
	"context"
	"time"

	"github.com/Tantanok221/douren/internal/model"
)

// CreateUserParams holds the fields for a new user row.
type CreateUserParams struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
}

const createUser = `
INSERT INTO users (id, email, password_hash, name)
VALUES (?, ?, ?, ?)
RETURNING id, email, password_hash, name, created_at, last_login_at
`

// CreateUser inserts a user account.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	row := q.db.QueryRowContext(ctx, createUser, arg.ID, arg.Email, arg.PasswordHash, arg.Name)
	return scanUser(row)
}

const getUserByID = `
SELECT id, email, password_hash, name, created_at, last_login_at FROM users WHERE id = ?
`

// GetUserByID fetches a user by id.
func (q *Queries) GetUserByID(ctx context.Context, id string) (model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

const getUserByEmail = `
SELECT id, email, password_hash, name, created_at, last_login_at FROM users WHERE email = ?
`

// GetUserByEmail fetches a user by email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const updateUserLastLogin = `
UPDATE users SET last_login_at = ? WHERE id = ?
`

// UpdateUserLastLogin records a successful login time.
func (q *Queries) UpdateUserLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := q.db.ExecContext(ctx, updateUserLastLogin, at, id)
	return err
}

const updateUserPassword = `
UPDATE users SET password_hash = ? WHERE id = ?
`

// UpdateUserPassword replaces a user's password hash, used when login finds
// a hash created with outdated parameters.
func (q *Queries) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	_, err := q.db.ExecContext(ctx, updateUserPassword, passwordHash, id)
	return err
}

const getUserRole = `
SELECT role FROM user_role WHERE user_id = ?
`

// GetUserRole fetches a user's role record. Callers treat sql.ErrNoRows as
// the implicit default role.
func (q *Queries) GetUserRole(ctx context.Context, userID string) (string, error) {
	var role string
	err := q.db.QueryRowContext(ctx, getUserRole, userID).Scan(&role)
	return role, err
}

const setUserRole = `
INSERT INTO user_role (user_id, role) VALUES (?, ?)
ON CONFLICT (user_id) DO UPDATE SET role = excluded.role
`

// SetUserRole creates or replaces a user's role record.
func (q *Queries) SetUserRole(ctx context.Context, userID, role string) error {
	_, err := q.db.ExecContext(ctx, setUserRole, userID, role)
	return err
}

const createInvite = `
INSERT INTO invite (code, created_by, expires_at)
VALUES (?, ?, ?)
RETURNING code, created_by, used_by, expires_at, created_at
`

// CreateInvite mints an invite code.
func (q *Queries) CreateInvite(ctx context.Context, code, createdBy string, expiresAt time.Time) (model.Invite, error) {
	var inv model.Invite
	err := q.db.QueryRowContext(ctx, createInvite, code, createdBy, expiresAt).
		Scan(&inv.Code, &inv.CreatedBy, &inv.UsedBy, &inv.ExpiresAt, &inv.CreatedAt)
	return inv, err
}

const getInvite = `
SELECT code, created_by, used_by, expires_at, created_at FROM invite WHERE code = ?
`

// GetInvite fetches an invite by code.
func (q *Queries) GetInvite(ctx context.Context, code string) (model.Invite, error) {
	var inv model.Invite
	err := q.db.QueryRowContext(ctx, getInvite, code).
		Scan(&inv.Code, &inv.CreatedBy, &inv.UsedBy, &inv.ExpiresAt, &inv.CreatedAt)
	return inv, err
}

const markInviteUsed = `
UPDATE invite SET used_by = ? WHERE code = ? AND used_by IS NULL
`

// MarkInviteUsed consumes an invite. Returns the number of rows updated; 0
// means the code was already used or does not exist.
func (q *Queries) MarkInviteUsed(ctx context.Context, code, usedBy string) (int64, error) {
	res, err := q.db.ExecContext(ctx, markInviteUsed, usedBy, code)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.CreatedAt, &u.LastLoginAt)
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}
