package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Tantanok221/douren/internal/apperror"
	"github.com/Tantanok221/douren/internal/middleware"
	"github.com/Tantanok221/douren/internal/model"
	"github.com/Tantanok221/douren/internal/store"
	"github.com/Tantanok221/douren/internal/util"
)

type productResponse struct {
	ID        int64   `json:"id"`
	ArtistID  int64   `json:"artist_id"`
	Thumbnail string  `json:"thumbnail"`
	Preview   *string `json:"preview"`
	Title     *string `json:"title"`
	Tag       *string `json:"tag"`
}

func toProductResponse(p model.Product) productResponse {
	return productResponse{
		ID:        p.ID,
		ArtistID:  p.ArtistID,
		Thumbnail: p.Thumbnail,
		Preview:   nullStr(p.Preview),
		Title:     nullStr(p.Title),
		Tag:       nullStr(p.Tag),
	}
}

// ListProducts serves an artist's products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	artistID, err := artistIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	products, err := h.queries.ListProductsByArtist(r.Context(), artistID)
	if err != nil {
		writeError(w, r, apperror.Upstream("listing products", err))
		return
	}

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

// CreateProduct adds a product to an artist. The profile guard decides
// permission since products hang off the profile.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	artistID, err := artistIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.guard.CanEdit(r.Context(), middleware.GetUserID(r), artistID); err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		Thumbnail string  `json:"thumbnail"`
		Preview   *string `json:"preview"`
		Title     *string `json:"title"`
		Tag       *string `json:"tag"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Thumbnail) == "" {
		writeError(w, r, apperror.Validation("thumbnail is required"))
		return
	}

	product, err := h.queries.CreateProduct(r.Context(), store.CreateProductParams{
		ArtistID:  artistID,
		Thumbnail: req.Thumbnail,
		Preview:   util.NullStringFromPtr(req.Preview),
		Title:     util.NullStringFromPtr(req.Title),
		Tag:       util.NullStringFromPtr(req.Tag),
	})
	if err != nil {
		writeError(w, r, apperror.Upstream("creating product", err))
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

// DeleteProduct removes one of an artist's products.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	artistID, err := artistIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID < 1 {
		writeError(w, r, apperror.Validation("invalid product id"))
		return
	}

	if err := h.guard.CanDelete(r.Context(), middleware.GetUserID(r), artistID); err != nil {
		writeError(w, r, err)
		return
	}

	removed, err := h.queries.DeleteProduct(r.Context(), productID, artistID)
	if err != nil {
		writeError(w, r, apperror.Upstream("deleting product", err))
		return
	}
	if removed == 0 {
		writeError(w, r, apperror.NotFound("product not found"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
