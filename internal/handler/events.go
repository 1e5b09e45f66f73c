package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Tantanok221/douren/internal/apperror"
	"github.com/Tantanok221/douren/internal/middleware"
	"github.com/Tantanok221/douren/internal/model"
	"github.com/Tantanok221/douren/internal/store"
	"github.com/Tantanok221/douren/internal/util"
)

// ListEvents serves all events, newest first.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.queries.ListEvents(r.Context())
	if err != nil {
		writeError(w, r, apperror.Upstream("listing events", err))
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": events})
}

type boothResponse struct {
	LocationDay01 *string `json:"location_day01"`
	LocationDay02 *string `json:"location_day02"`
	LocationDay03 *string `json:"location_day03"`
	DM            *string `json:"dm"`
}

type eventArtistResponse struct {
	artistResponse
	Booth boothResponse `json:"booth"`
}

// ListEventArtists serves the artists exhibiting at an event, with their
// booth locations. An optional day filter keeps only artists present on that
// exhibition day.
func (h *Handler) ListEventArtists(w http.ResponseWriter, r *http.Request) {
	event, err := h.queries.GetEventByName(r.Context(), chi.URLParam(r, "name"))
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, r, apperror.NotFound("event not found"))
		return
	}
	if err != nil {
		writeError(w, r, apperror.Upstream("loading event", err))
		return
	}

	base := store.ArtistBuilder().
		Join("JOIN Event_Artist ON Event_Artist.Artist_ID = Author_Main.UUID").
		FilterByEventID(event.ID)

	if col, ok := dayLocationColumns[r.URL.Query().Get("day")]; ok {
		base = base.WhereNotNull(col)
	}

	artists, err := h.queries.QueryArtists(r.Context(), base.Build())
	if err != nil {
		writeError(w, r, apperror.Upstream("listing event artists", err))
		return
	}

	booths, err := h.queries.ListBoothsByEvent(r.Context(), event.ID)
	if err != nil {
		writeError(w, r, apperror.Upstream("listing booths", err))
		return
	}
	boothByArtist := make(map[int64]model.Booth, len(booths))
	for _, b := range booths {
		boothByArtist[b.ArtistID] = b
	}

	resp := make([]eventArtistResponse, 0, len(artists))
	for _, a := range artists {
		b := boothByArtist[a.ID]
		resp = append(resp, eventArtistResponse{
			artistResponse: toArtistResponse(a),
			Booth: boothResponse{
				LocationDay01: nullStr(b.LocationDay01),
				LocationDay02: nullStr(b.LocationDay02),
				LocationDay03: nullStr(b.LocationDay03),
				DM:            nullStr(b.DM),
			},
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"event": event, "data": resp})
}

// CreateEvent creates a new event. Admin only.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.requireAdmin(r, middleware.GetUserID(r)); err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, r, apperror.Validation("event name is required"))
		return
	}

	event, err := h.queries.CreateEvent(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, apperror.Upstream("creating event", err))
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// UpsertBooth assigns or replaces an artist's booth at an event. The same
// guard as profile edits decides permission.
func (h *Handler) UpsertBooth(w http.ResponseWriter, r *http.Request) {
	artistID, err := artistIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.guard.CanEdit(r.Context(), middleware.GetUserID(r), artistID); err != nil {
		writeError(w, r, err)
		return
	}

	event, err := h.queries.GetEventByName(r.Context(), chi.URLParam(r, "name"))
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, r, apperror.NotFound("event not found"))
		return
	}
	if err != nil {
		writeError(w, r, apperror.Upstream("loading event", err))
		return
	}

	var req struct {
		LocationDay01 *string `json:"location_day01"`
		LocationDay02 *string `json:"location_day02"`
		LocationDay03 *string `json:"location_day03"`
		DM            *string `json:"dm"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.DM != nil {
		sanitized := h.ugcPolicy.Sanitize(*req.DM)
		req.DM = &sanitized
	}

	err = h.queries.UpsertBooth(r.Context(), store.UpsertBoothParams{
		EventID:       event.ID,
		ArtistID:      artistID,
		LocationDay01: util.NullStringFromPtr(req.LocationDay01),
		LocationDay02: util.NullStringFromPtr(req.LocationDay02),
		LocationDay03: util.NullStringFromPtr(req.LocationDay03),
		DM:            util.NullStringFromPtr(req.DM),
	})
	if err != nil {
		writeError(w, r, apperror.Upstream("saving booth", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListOwners serves the static site-owner profiles.
func (h *Handler) ListOwners(w http.ResponseWriter, r *http.Request) {
	owners, err := h.queries.ListOwners(r.Context())
	if err != nil {
		writeError(w, r, apperror.Upstream("listing owners", err))
		return
	}

	type ownerResponse struct {
		ID          int64   `json:"id"`
		Name        string  `json:"name"`
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Twitter     *string `json:"twitter"`
		GitHub      *string `json:"github"`
	}
	resp := make([]ownerResponse, 0, len(owners))
	for _, o := range owners {
		resp = append(resp, ownerResponse{
			ID:          o.ID,
			Name:        o.Name,
			Title:       o.Title,
			Description: o.Description,
			Twitter:     nullStr(o.Twitter),
			GitHub:      nullStr(o.GitHub),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

// ListTags serves all live tags in display-rank order.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.queries.ListTags(r.Context())
	if err != nil {
		writeError(w, r, apperror.Upstream("listing tags", err))
		return
	}
	if tags == nil {
		tags = []model.Tag{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": tags})
}
