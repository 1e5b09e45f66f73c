package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Tantanok221/douren/internal/auth"
	"github.com/Tantanok221/douren/internal/authz"
	"github.com/Tantanok221/douren/internal/cache"
	"github.com/Tantanok221/douren/internal/middleware"
	"github.com/Tantanok221/douren/internal/model"
	"github.com/Tantanok221/douren/internal/store"
)

// testEnv runs the full stack against an in-memory database: real router,
// real sessions, real guard. Only the image host is absent.
type testEnv struct {
	t       *testing.T
	server  *httptest.Server
	client  *http.Client
	queries *store.Queries
	guard   *authz.Guard
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	if err := store.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	queries := store.New(db)
	roleCache := authz.NewRoleCache(cache.NewMemoryCache())
	guard := authz.NewGuard(queries, roleCache)

	sm := scs.New()
	loginLimit := middleware.NewLoginProtection(1000, 1000)

	h := New(db, queries, guard, sm, nil, loginLimit)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Use(middleware.LoadUser(sm, queries))
	h.Routes(r)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}

	return &testEnv{
		t:       t,
		server:  server,
		client:  &http.Client{Jar: jar},
		queries: queries,
		guard:   guard,
	}
}

func (e *testEnv) do(method, path string, body any) *http.Response {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			e.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		e.t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		e.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// seedUser creates an account directly in the store and returns its id.
func (e *testEnv) seedUser(email, password string) string {
	e.t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		e.t.Fatalf("hash password: %v", err)
	}
	u, err := e.queries.CreateUser(context.Background(), store.CreateUserParams{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         "Test User",
	})
	if err != nil {
		e.t.Fatalf("seed user: %v", err)
	}
	return u.ID
}

func (e *testEnv) seedAdmin(email, password string) string {
	e.t.Helper()
	id := e.seedUser(email, password)
	if err := e.queries.SetUserRole(context.Background(), id, model.RoleAdmin); err != nil {
		e.t.Fatalf("seed admin role: %v", err)
	}
	return id
}

func (e *testEnv) login(email, password string) {
	e.t.Helper()
	resp := e.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		e.t.Fatalf("login %s: status %d", email, resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(http.MethodGet, "/healthz", nil)
	body := decode[map[string]string](t, resp)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("healthz: status %d body %v", resp.StatusCode, body)
	}
}

func TestAuthFlow(t *testing.T) {
	e := newTestEnv(t)
	e.seedAdmin("admin@example.com", "admin-password")

	// Anonymous users cannot mint invites.
	resp := e.do(http.MethodPost, "/api/invite", nil)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous invite: status %d, want 401", resp.StatusCode)
	}

	e.login("admin@example.com", "admin-password")

	resp = e.do(http.MethodPost, "/api/invite", nil)
	invite := decode[map[string]any](t, resp)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create invite: status %d", resp.StatusCode)
	}
	code, _ := invite["code"].(string)
	if code == "" {
		t.Fatal("create invite: empty code")
	}

	resp = e.do(http.MethodGet, "/api/invite/"+code, nil)
	check := decode[map[string]any](t, resp)
	if usable, _ := check["usable"].(bool); !usable {
		t.Fatalf("fresh invite not usable: %v", check)
	}

	resp = e.do(http.MethodPost, "/api/auth/logout", nil)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout: status %d", resp.StatusCode)
	}

	// Register with the invite.
	resp = e.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email":       "artist@example.com",
		"password":    "secret-password",
		"name":        "Artist",
		"invite_code": code,
	})
	user := decode[userResponse](t, resp)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: status %d", resp.StatusCode)
	}
	if user.Email != "artist@example.com" {
		t.Errorf("registered email = %q", user.Email)
	}

	// The invite is spent now.
	resp = e.do(http.MethodGet, "/api/invite/"+code, nil)
	check = decode[map[string]any](t, resp)
	if usable, _ := check["usable"].(bool); usable {
		t.Error("consumed invite still reported usable")
	}

	resp = e.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email":       "second@example.com",
		"password":    "secret-password",
		"name":        "Second",
		"invite_code": code,
	})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("reusing invite: status %d, want 400", resp.StatusCode)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser("user@example.com", "right-password")

	for _, creds := range []map[string]string{
		{"email": "user@example.com", "password": "wrong"},
		{"email": "ghost@example.com", "password": "right-password"},
	} {
		resp := e.do(http.MethodPost, "/api/auth/login", creds)
		body := decode[middleware.APIError](t, resp)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("login %v: status %d, want 401", creds["email"], resp.StatusCode)
		}
		if body.Error.Code != "unauthorized" {
			t.Errorf("login %v: code %q", creds["email"], body.Error.Code)
		}
	}
}

func TestArtistCRUD(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser("owner@example.com", "owner-password")
	e.login("owner@example.com", "owner-password")

	resp := e.do(http.MethodPost, "/api/artist", map[string]any{
		"name":      "墨魚工坊",
		"introduce": "<p>原創插畫</p><script>alert(1)</script>",
		"tags":      []string{"原創", "插畫"},
	})
	created := decode[artistResponse](t, resp)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create artist: status %d", resp.StatusCode)
	}
	if created.ID == 0 {
		t.Fatal("create artist: zero id")
	}
	if len(created.Tags) != 2 {
		t.Errorf("tags = %v", created.Tags)
	}

	// Script content stripped by the UGC policy.
	if got := created.Introduce; got != "<p>原創插畫</p>" {
		t.Errorf("sanitized introduce = %q", got)
	}

	resp = e.do(http.MethodGet, "/api/me/artist", nil)
	mine := decode[artistResponse](t, resp)
	if mine.ID != created.ID {
		t.Errorf("me/artist id = %d, want %d", mine.ID, created.ID)
	}

	// Tag table reflects the mutation.
	resp = e.do(http.MethodGet, "/api/tag", nil)
	tagList := decode[struct {
		Data []model.Tag `json:"data"`
	}](t, resp)
	if len(tagList.Data) != 2 {
		t.Fatalf("tag list = %v", tagList.Data)
	}

	resp = e.do(http.MethodPut, "/api/artist/"+itoa(created.ID), map[string]any{
		"name":      "墨魚工坊",
		"introduce": "updated",
		"tags":      []string{"原創"},
	})
	updated := decode[artistResponse](t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update artist: status %d", resp.StatusCode)
	}
	if len(updated.Tags) != 1 {
		t.Errorf("updated tags = %v", updated.Tags)
	}

	// The dropped tag is pruned from the tag table.
	resp = e.do(http.MethodGet, "/api/tag", nil)
	tagList = decode[struct {
		Data []model.Tag `json:"data"`
	}](t, resp)
	if len(tagList.Data) != 1 || tagList.Data[0].Name != "原創" {
		t.Errorf("tag list after update = %v", tagList.Data)
	}

	resp = e.do(http.MethodDelete, "/api/artist/"+itoa(created.ID), nil)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete artist: status %d", resp.StatusCode)
	}

	resp = e.do(http.MethodGet, "/api/artist/"+itoa(created.ID), nil)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("deleted artist fetch: status %d, want 404", resp.StatusCode)
	}
}

func TestArtistMutationForbiddenForNonOwner(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser("owner@example.com", "owner-password")
	e.seedUser("other@example.com", "other-password")

	e.login("owner@example.com", "owner-password")
	resp := e.do(http.MethodPost, "/api/artist", map[string]any{
		"name": "Owned Circle",
		"tags": []string{"原創"},
	})
	created := decode[artistResponse](t, resp)

	e.login("other@example.com", "other-password")
	resp = e.do(http.MethodPut, "/api/artist/"+itoa(created.ID), map[string]any{
		"name": "Hijacked",
	})
	body := decode[middleware.APIError](t, resp)
	if resp.StatusCode != http.StatusForbidden || body.Error.Code != "forbidden" {
		t.Errorf("non-owner edit: status %d code %q", resp.StatusCode, body.Error.Code)
	}

	// A missing artist produces the same response as someone else's.
	resp = e.do(http.MethodPut, "/api/artist/999999", map[string]any{"name": "X"})
	missing := decode[middleware.APIError](t, resp)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("missing artist edit: status %d, want 403", resp.StatusCode)
	}
	if missing.Error.Message != body.Error.Message {
		t.Errorf("missing artist leaks existence: %q vs %q",
			missing.Error.Message, body.Error.Message)
	}
}

func TestAdminCanEditAnyArtist(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser("owner@example.com", "owner-password")
	e.seedAdmin("admin@example.com", "admin-password")

	e.login("owner@example.com", "owner-password")
	resp := e.do(http.MethodPost, "/api/artist", map[string]any{"name": "Circle"})
	created := decode[artistResponse](t, resp)

	e.login("admin@example.com", "admin-password")
	resp = e.do(http.MethodPut, "/api/artist/"+itoa(created.ID), map[string]any{
		"name": "Renamed by admin",
	})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("admin edit: status %d, want 200", resp.StatusCode)
	}
}

func TestRoleUpdateVisibleToGuard(t *testing.T) {
	e := newTestEnv(t)
	e.seedAdmin("admin@example.com", "admin-password")
	userID := e.seedUser("user@example.com", "user-password")

	// Seed a legacy artist with no owner; only admins may touch it.
	legacy, err := e.queries.CreateArtist(context.Background(), store.CreateArtistParams{
		Author: "Legacy Circle",
	})
	if err != nil {
		t.Fatalf("seed artist: %v", err)
	}

	e.login("user@example.com", "user-password")

	resp := e.do(http.MethodGet, "/api/user/role", nil)
	role := decode[map[string]string](t, resp)
	if role["role"] != model.RoleUser {
		t.Fatalf("default role = %q", role["role"])
	}

	resp = e.do(http.MethodPut, "/api/artist/"+itoa(legacy.ID), map[string]any{"name": "Taken over"})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("user edit of legacy artist: status %d, want 403", resp.StatusCode)
	}

	// Promote via the API as admin; the guard must see the change.
	e2 := e.withFreshClient()
	e2.login("admin@example.com", "admin-password")
	resp = e2.do(http.MethodPut, "/api/user/role", map[string]string{
		"user_id": userID,
		"role":    model.RoleAdmin,
	})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("promote: status %d", resp.StatusCode)
	}

	resp = e.do(http.MethodPut, "/api/artist/"+itoa(legacy.ID), map[string]any{"name": "Taken over"})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("promoted user edit: status %d, want 200", resp.StatusCode)
	}
}

// withFreshClient returns a view of the same server with its own cookie jar,
// for driving a second concurrent session.
func (e *testEnv) withFreshClient() *testEnv {
	e.t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		e.t.Fatalf("cookie jar: %v", err)
	}
	clone := *e
	clone.client = &http.Client{Jar: jar}
	return &clone
}

func TestRoleUpdateRequiresAdmin(t *testing.T) {
	e := newTestEnv(t)
	userID := e.seedUser("user@example.com", "user-password")
	e.login("user@example.com", "user-password")

	resp := e.do(http.MethodPut, "/api/user/role", map[string]string{
		"user_id": userID,
		"role":    model.RoleAdmin,
	})
	body := decode[middleware.APIError](t, resp)
	if resp.StatusCode != http.StatusForbidden || body.Error.Code != "forbidden" {
		t.Errorf("self-promotion: status %d code %q", resp.StatusCode, body.Error.Code)
	}
}

func TestInviteExpiry(t *testing.T) {
	e := newTestEnv(t)
	adminID := e.seedAdmin("admin@example.com", "admin-password")

	code := uuid.NewString()
	_, err := e.queries.CreateInvite(context.Background(), code, adminID,
		time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("seed invite: %v", err)
	}

	resp := e.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email":       "late@example.com",
		"password":    "secret-password",
		"name":        "Late",
		"invite_code": code,
	})
	body := decode[middleware.APIError](t, resp)
	if resp.StatusCode != http.StatusBadRequest || body.Error.Code != "validation" {
		t.Errorf("expired invite: status %d code %q", resp.StatusCode, body.Error.Code)
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
