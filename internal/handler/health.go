package handler

import (
	"net/http"

	"github.com/Tantanok221/douren/internal/apperror"
)

// Healthz reports liveness, including a database ping.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		writeError(w, r, apperror.Upstream("database unreachable", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
