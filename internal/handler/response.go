package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Tantanok221/douren/internal/apperror"
	"github.com/Tantanok221/douren/internal/middleware"
)

// writeJSON writes a JSON success response.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error onto the JSON envelope. Errors outside the
// taxonomy become opaque 500s; their detail is logged, never sent.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		if appErr.Code == apperror.CodeUpstream {
			slog.Error("upstream failure", "path", r.URL.Path, "error", err)
		}
		middleware.WriteAPIError(w, appErr.Status, appErr.Code, appErr.Message, nil)
		return
	}

	slog.Error("unhandled error", "path", r.URL.Path, "error", err)
	middleware.WriteAPIError(w, http.StatusInternalServerError, "internal_error",
		"Internal server error", nil)
}

// decodeBody decodes a JSON request body into dst, rejecting unknown fields.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.Validation("invalid request body")
	}
	return nil
}

// nullStr converts a NullString to a JSON-friendly pointer.
func nullStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
