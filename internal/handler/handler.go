// Package handler implements the JSON API: the artist directory, artist and
// product mutations, events and booths, invites, accounts, and image uploads.
package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"

	"github.com/Tantanok221/douren/internal/apperror"
	"github.com/Tantanok221/douren/internal/authz"
	"github.com/Tantanok221/douren/internal/imagecdn"
	"github.com/Tantanok221/douren/internal/middleware"
	"github.com/Tantanok221/douren/internal/model"
	"github.com/Tantanok221/douren/internal/store"
)

// Handler carries the dependencies shared by all API endpoints.
type Handler struct {
	db         *sql.DB
	queries    *store.Queries
	guard      *authz.Guard
	sessions   *scs.SessionManager
	images     *imagecdn.Client
	loginLimit *middleware.LoginProtection
	ugcPolicy  *bluemonday.Policy
}

// New creates a handler. The images client may be nil when no image host is
// configured; uploads then fail with an upstream error.
func New(db *sql.DB, queries *store.Queries, guard *authz.Guard,
	sessions *scs.SessionManager, images *imagecdn.Client,
	loginLimit *middleware.LoginProtection) *Handler {
	return &Handler{
		db:         db,
		queries:    queries,
		guard:      guard,
		sessions:   sessions,
		images:     images,
		loginLimit: loginLimit,
		ugcPolicy:  bluemonday.UGCPolicy(),
	}
}

// Routes registers every endpoint on the router. Session loading, CORS and
// rate limiting wrap the router in main.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Get("/artist", h.ListArtists)
		r.Get("/artist/{id}", h.GetArtist)
		r.Get("/artist/{id}/product", h.ListProducts)
		r.Get("/tag", h.ListTags)
		r.Get("/event", h.ListEvents)
		r.Get("/event/{name}/artist", h.ListEventArtists)
		r.Get("/owner", h.ListOwners)
		r.Get("/invite/{code}", h.GetInvite)

		r.Post("/auth/register", h.Register)
		r.With(h.loginLimit.Middleware()).Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)

			r.Post("/auth/logout", h.Logout)
			r.Get("/me/artist", h.GetMyArtist)
			r.Post("/artist", h.CreateArtist)
			r.Put("/artist/{id}", h.UpdateArtist)
			r.Delete("/artist/{id}", h.DeleteArtist)
			r.Post("/artist/{id}/product", h.CreateProduct)
			r.Delete("/artist/{id}/product/{productID}", h.DeleteProduct)
			r.Post("/event", h.CreateEvent)
			r.Put("/event/{name}/artist/{id}", h.UpsertBooth)
			r.Get("/user/role", h.GetRole)
			r.Put("/user/role", h.PutRole)
			r.Post("/invite", h.CreateInvite)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Post("/image", h.UploadImage)
	})
}

// requireAdmin returns nil when userID holds the admin role.
func (h *Handler) requireAdmin(r *http.Request, userID string) error {
	role, err := h.queries.GetUserRole(r.Context(), userID)
	if errors.Is(err, sql.ErrNoRows) {
		role = model.RoleUser
	} else if err != nil {
		return apperror.Upstream("looking up user role", err)
	}
	if role != model.RoleAdmin {
		return apperror.Forbidden("admin access required")
	}
	return nil
}
