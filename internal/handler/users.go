package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Tantanok221/douren/internal/apperror"
	"github.com/Tantanok221/douren/internal/middleware"
	"github.com/Tantanok221/douren/internal/model"
)

const inviteLifetime = 7 * 24 * time.Hour

// GetRole serves the current user's role. A missing role record is the
// implicit default role, not an error.
func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	role, err := h.queries.GetUserRole(r.Context(), userID)
	if errors.Is(err, sql.ErrNoRows) {
		role = model.RoleUser
	} else if err != nil {
		writeError(w, r, apperror.Upstream("looking up user role", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"user_id": userID, "role": role})
}

// PutRole updates a user's role. Admin only. The cached role is invalidated
// before the write so a stale grant can never outlive the change.
func (h *Handler) PutRole(w http.ResponseWriter, r *http.Request) {
	if err := h.requireAdmin(r, middleware.GetUserID(r)); err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		UserID string `json:"user_id"`
		Role   string `json:"role"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.UserID == "" {
		writeError(w, r, apperror.Validation("user_id is required"))
		return
	}
	if req.Role != model.RoleAdmin && req.Role != model.RoleUser {
		writeError(w, r, apperror.Validation("role must be admin or user"))
		return
	}

	if _, err := h.queries.GetUserByID(r.Context(), req.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, r, apperror.NotFound("user not found"))
			return
		}
		writeError(w, r, apperror.Upstream("looking up user", err))
		return
	}

	// Invalidate first: a crash between the two steps leaves a cache miss,
	// never a stale role.
	if err := h.guard.InvalidateRole(r.Context(), req.UserID); err != nil {
		writeError(w, r, apperror.Upstream("invalidating cached role", err))
		return
	}
	if err := h.queries.SetUserRole(r.Context(), req.UserID, req.Role); err != nil {
		writeError(w, r, apperror.Upstream("saving user role", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"user_id": req.UserID, "role": req.Role})
}

// GetInvite reports whether an invite code can still be redeemed. The code
// itself is the secret, so this endpoint is public for the signup form.
func (h *Handler) GetInvite(w http.ResponseWriter, r *http.Request) {
	invite, err := h.queries.GetInvite(r.Context(), chi.URLParam(r, "code"))
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, r, apperror.NotFound("invite not found"))
		return
	}
	if err != nil {
		writeError(w, r, apperror.Upstream("looking up invite", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"code":   invite.Code,
		"usable": invite.IsUsable(time.Now()),
	})
}

// CreateInvite mints a new single-use invite code. Admin only.
func (h *Handler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if err := h.requireAdmin(r, userID); err != nil {
		writeError(w, r, err)
		return
	}

	invite, err := h.queries.CreateInvite(r.Context(),
		uuid.NewString(), userID, time.Now().Add(inviteLifetime))
	if err != nil {
		writeError(w, r, apperror.Upstream("creating invite", err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"code":       invite.Code,
		"expires_at": invite.ExpiresAt,
	})
}
