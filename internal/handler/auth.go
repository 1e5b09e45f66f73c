package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Tantanok221/douren/internal/apperror"
	"github.com/Tantanok221/douren/internal/auth"
	"github.com/Tantanok221/douren/internal/middleware"
	"github.com/Tantanok221/douren/internal/model"
	"github.com/Tantanok221/douren/internal/store"
)

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func toUserResponse(u model.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

// Register creates an account from a valid invite and signs the new user in.
// The invite is consumed in the same transaction that creates the user, so a
// code can never mint two accounts.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		Name       string `json:"name"`
		InviteCode string `json:"invite_code"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	switch {
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		writeError(w, r, apperror.Validation("a valid email is required"))
		return
	case len(req.Password) < 8:
		writeError(w, r, apperror.Validation("password must be at least 8 characters"))
		return
	case req.Name == "":
		writeError(w, r, apperror.Validation("name is required"))
		return
	case req.InviteCode == "":
		writeError(w, r, apperror.Validation("invite_code is required"))
		return
	}

	invite, err := h.queries.GetInvite(r.Context(), req.InviteCode)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, r, apperror.Validation("invalid invite code"))
		return
	}
	if err != nil {
		writeError(w, r, apperror.Upstream("looking up invite", err))
		return
	}
	if !invite.IsUsable(time.Now()) {
		writeError(w, r, apperror.Validation("invite code is expired or already used"))
		return
	}

	if _, err := h.queries.GetUserByEmail(r.Context(), req.Email); err == nil {
		writeError(w, r, apperror.Validation("email is already registered"))
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		writeError(w, r, apperror.Upstream("looking up email", err))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, apperror.Upstream("hashing password", err))
		return
	}

	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		writeError(w, r, apperror.Upstream("starting transaction", err))
		return
	}
	defer func() { _ = tx.Rollback() }()

	qtx := h.queries.WithTx(tx)
	user, err := qtx.CreateUser(r.Context(), store.CreateUserParams{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
	})
	if err != nil {
		writeError(w, r, apperror.Upstream("creating user", err))
		return
	}

	used, err := qtx.MarkInviteUsed(r.Context(), invite.Code, user.ID)
	if err != nil {
		writeError(w, r, apperror.Upstream("consuming invite", err))
		return
	}
	if used == 0 {
		// Lost the race for the code; the rollback discards the user.
		writeError(w, r, apperror.Validation("invite code is expired or already used"))
		return
	}

	if err := tx.Commit(); err != nil {
		writeError(w, r, apperror.Upstream("committing registration", err))
		return
	}

	if err := h.signIn(r, user.ID); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// Login verifies credentials and issues a session. The response never says
// whether the email or the password was wrong.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.queries.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, r, apperror.Unauthorized("invalid email or password"))
		return
	}
	if err != nil {
		writeError(w, r, apperror.Upstream("looking up user", err))
		return
	}

	ok, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		writeError(w, r, apperror.Unauthorized("invalid email or password"))
		return
	}

	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, hashErr := auth.HashPassword(req.Password); hashErr == nil {
			if err := h.queries.UpdateUserPassword(r.Context(), user.ID, newHash); err != nil {
				slog.Warn("password rehash failed", "user_id", user.ID, "error", err)
			}
		}
	}

	if err := h.queries.UpdateUserLastLogin(r.Context(), user.ID, time.Now()); err != nil {
		slog.Warn("recording last login failed", "user_id", user.ID, "error", err)
	}

	if err := h.signIn(r, user.ID); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// Logout destroys the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context()); err != nil {
		writeError(w, r, apperror.Upstream("destroying session", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// signIn rotates the session token before binding it to the user, closing
// the session-fixation window.
func (h *Handler) signIn(r *http.Request, userID string) error {
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		return apperror.Upstream("renewing session", err)
	}
	h.sessions.Put(r.Context(), middleware.SessionKeyUserID, userID)
	return nil
}
