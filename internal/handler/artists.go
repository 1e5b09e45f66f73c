package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Tantanok221/douren/internal/apperror"
	"github.com/Tantanok221/douren/internal/directory"
	"github.com/Tantanok221/douren/internal/middleware"
	"github.com/Tantanok221/douren/internal/model"
	"github.com/Tantanok221/douren/internal/query"
	"github.com/Tantanok221/douren/internal/store"
	"github.com/Tantanok221/douren/internal/util"
)

const defaultPageSize = 40

// Columns the directory endpoint accepts for sorting and searching. Anything
// else falls back to the default so raw query params never reach the SQL text.
var (
	sortColumns = map[string]string{
		"Author_Main.Author":     "Author_Main.Author",
		"Author_Main.UUID":       "Author_Main.UUID",
		"Author_Main.Created_At": "Author_Main.Created_At",
	}
	searchColumns = map[string]string{
		directory.SearchTable: directory.SearchTable,
		"Author_Main.Tags":    "Author_Main.Tags",
	}
	dayLocationColumns = map[string]string{
		"day1": "Event_Artist.Location_Day01",
		"day2": "Event_Artist.Location_Day02",
		"day3": "Event_Artist.Location_Day03",
	}
)

type artistResponse struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Introduce string   `json:"introduce"`
	PhotoURL  *string  `json:"photo_url"`
	Tags      []string `json:"tags"`
	Slug      string   `json:"slug"`
	Owned     bool     `json:"owned"`
}

func toArtistResponse(a model.Artist) artistResponse {
	return artistResponse{
		ID:        a.ID,
		Name:      a.Name,
		Introduce: a.Introduce,
		PhotoURL:  nullStr(a.PhotoURL),
		Tags:      a.TagList(),
		Slug:      a.Slug,
		Owned:     !a.IsLegacy(),
	}
}

type artistListResponse struct {
	Data       []artistResponse `json:"data"`
	Total      int64            `json:"total"`
	Page       int64            `json:"page"`
	PageSize   int64            `json:"page_size"`
	TotalPages int64            `json:"total_pages"`
}

// ListArtists serves the paginated directory. Filter state arrives as query
// params and goes through the same normalization the frontend store applies,
// so both sides agree on sentinel and day-label handling.
func (h *Handler) ListArtists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := util.ParseInt64Positive(q.Get("page"), 1)
	params := directory.Normalize(directory.FilterState{
		Day:    q.Get("day"),
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
		Tag:    q.Get("tag"),
		Page:   int(page),
	})

	searchCol := params.SearchTable
	if col, ok := searchColumns[q.Get("searchTable")]; ok {
		searchCol = col
	}

	base := store.ArtistBuilder()

	if params.Search != "" {
		base = base.SearchILike("%"+params.Search+"%", searchCol)
	}

	conds := query.TagConditions(params.Tag, "Author_Main.Tags")
	ptrs := make([]*query.Predicate, len(conds))
	for i := range conds {
		ptrs[i] = &conds[i]
	}
	base = base.WithAndFilters(ptrs...)

	if col, ok := dayLocationColumns[params.Day]; ok {
		base = base.
			Join("JOIN Event_Artist ON Event_Artist.Artist_ID = Author_Main.UUID").
			WhereNotNull(col)
	}

	total, err := h.queries.CountArtists(r.Context(), base.BuildCount())
	if err != nil {
		writeError(w, r, apperror.Upstream("counting artists", err))
		return
	}

	sortCol, sortDir := parseSort(params.Sort)
	listQuery := base.
		OrderBy(sortDir, sortCol).
		Paginate(page, defaultPageSize).
		Build()

	artists, err := h.queries.QueryArtists(r.Context(), listQuery)
	if err != nil {
		writeError(w, r, apperror.Upstream("listing artists", err))
		return
	}

	resp := artistListResponse{
		Data:       make([]artistResponse, 0, len(artists)),
		Total:      total,
		Page:       page,
		PageSize:   defaultPageSize,
		TotalPages: (total + defaultPageSize - 1) / defaultPageSize,
	}
	for _, a := range artists {
		resp.Data = append(resp.Data, toArtistResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

// parseSort splits a "column,direction" sort param, falling back to newest
// first when the column is not recognized.
func parseSort(s string) (column, direction string) {
	col, dir, _ := strings.Cut(s, ",")
	if allowed, ok := sortColumns[col]; ok {
		if !strings.EqualFold(dir, query.OrderDesc) {
			dir = query.OrderAsc
		}
		return allowed, dir
	}
	return "Author_Main.UUID", query.OrderDesc
}

// GetArtist serves a single artist profile.
func (h *Handler) GetArtist(w http.ResponseWriter, r *http.Request) {
	id, err := artistIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	artist, err := h.queries.GetArtistByID(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, r, apperror.NotFound("artist not found"))
		return
	}
	if err != nil {
		writeError(w, r, apperror.Upstream("loading artist", err))
		return
	}

	writeJSON(w, http.StatusOK, toArtistResponse(artist))
}

// GetMyArtist serves the artist profile owned by the current user.
func (h *Handler) GetMyArtist(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	artist, err := h.queries.GetArtistByOwner(r.Context(), userID)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, r, apperror.NotFound("you have no artist profile"))
		return
	}
	if err != nil {
		writeError(w, r, apperror.Upstream("loading artist", err))
		return
	}

	writeJSON(w, http.StatusOK, toArtistResponse(artist))
}

type artistRequest struct {
	Name      string   `json:"name"`
	Introduce string   `json:"introduce"`
	PhotoURL  *string  `json:"photo_url"`
	Tags      []string `json:"tags"`
}

func (req *artistRequest) validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return apperror.Validation("name is required")
	}
	if len(req.Tags) > 20 {
		return apperror.Validation("too many tags")
	}
	return nil
}

// CreateArtist creates an artist profile owned by the current user.
func (h *Handler) CreateArtist(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	var req artistRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	artist, err := h.queries.CreateArtist(r.Context(), store.CreateArtistParams{
		Author:    strings.TrimSpace(req.Name),
		Introduce: h.ugcPolicy.Sanitize(req.Introduce),
		Photo:     util.NullStringFromPtr(req.PhotoURL),
		OwnerID:   util.NullStringFromValue(userID),
		Tags:      strings.Join(req.Tags, ","),
		Slug:      artistSlug(req.Name),
	})
	if err != nil {
		writeError(w, r, apperror.Upstream("creating artist", err))
		return
	}

	if err := h.syncTags(r, artist.ID, req.Tags); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toArtistResponse(artist))
}

// UpdateArtist updates an artist profile. The guard decides permission.
func (h *Handler) UpdateArtist(w http.ResponseWriter, r *http.Request) {
	id, err := artistIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.guard.CanEdit(r.Context(), middleware.GetUserID(r), id); err != nil {
		writeError(w, r, err)
		return
	}

	var req artistRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	artist, err := h.queries.UpdateArtist(r.Context(), store.UpdateArtistParams{
		ID:        id,
		Author:    strings.TrimSpace(req.Name),
		Introduce: h.ugcPolicy.Sanitize(req.Introduce),
		Photo:     util.NullStringFromPtr(req.PhotoURL),
		Tags:      strings.Join(req.Tags, ","),
		Slug:      artistSlug(req.Name),
	})
	if errors.Is(err, sql.ErrNoRows) {
		// Artist deleted between the guard check and the update.
		writeError(w, r, apperror.NotFound("artist not found"))
		return
	}
	if err != nil {
		writeError(w, r, apperror.Upstream("updating artist", err))
		return
	}

	if err := h.syncTags(r, artist.ID, req.Tags); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toArtistResponse(artist))
}

// DeleteArtist removes an artist profile. The guard decides permission.
func (h *Handler) DeleteArtist(w http.ResponseWriter, r *http.Request) {
	id, err := artistIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.guard.CanDelete(r.Context(), middleware.GetUserID(r), id); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.queries.DeleteArtist(r.Context(), id); err != nil {
		writeError(w, r, apperror.Upstream("deleting artist", err))
		return
	}
	if err := h.queries.RecomputeTagCounts(r.Context()); err != nil {
		writeError(w, r, apperror.Upstream("recomputing tag counts", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// syncTags rewrites the artist's junction rows and refreshes tag counts and
// ranks so unused tags disappear immediately.
func (h *Handler) syncTags(r *http.Request, artistID int64, tags []string) error {
	if err := h.queries.ReplaceArtistTags(r.Context(), artistID, tags); err != nil {
		return apperror.Upstream("saving artist tags", err)
	}
	if err := h.queries.RecomputeTagCounts(r.Context()); err != nil {
		return apperror.Upstream("recomputing tag counts", err)
	}
	return nil
}

func artistIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperror.Validation("invalid artist id")
	}
	return id, nil
}

// artistSlug derives a URL slug from the artist name, with a random fallback
// for names that normalize to nothing.
func artistSlug(name string) string {
	if slug := util.Slugify(name); slug != "" {
		return slug
	}
	return "artist-" + uuid.NewString()[:8]
}
