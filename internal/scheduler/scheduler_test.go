package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/Tantanok221/douren/internal/middleware"
	"github.com/Tantanok221/douren/internal/ratelimit"
	"github.com/Tantanok221/douren/internal/store"
)

func setupTestDB(t *testing.T) *sql.DB {
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
	return db
}

func TestStartStop(t *testing.T) {
	queries := store.New(setupTestDB(t))
	limiter := ratelimit.New(time.Minute, 10, nil)
	loginLimit := middleware.NewLoginProtection(1, 5)

	s := New(queries, limiter, loginLimit, slog.Default())
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	s.Stop()
}

func TestReconcileTagsPrunesOrphans(t *testing.T) {
	db := setupTestDB(t)
	queries := store.New(db)

	// A tag row with no junction entries should disappear.
	if _, err := db.Exec(
		`INSERT INTO Tag (Tag, Count, Tag_Index) VALUES ('孤兒', 3, 0)`); err != nil {
		t.Fatalf("seed tag: %v", err)
	}

	s := New(queries, ratelimit.New(time.Minute, 10, nil),
		middleware.NewLoginProtection(1, 5), slog.Default())
	s.reconcileTags()

	count, err := queries.CountTags(context.Background())
	if err != nil {
		t.Fatalf("CountTags: %v", err)
	}
	if count != 0 {
		t.Errorf("orphan tag survived reconciliation, count = %d", count)
	}
}

func TestSweepLimiters(t *testing.T) {
	limiter := ratelimit.New(time.Minute, 10, nil)
	limiter.Allow("a")
	limiter.Allow("b")

	s := New(nil, limiter, middleware.NewLoginProtection(1, 5), slog.Default())

	// Under the threshold nothing is cleared.
	s.sweepLimiters()
	if limiter.Len() != 2 {
		t.Errorf("limiter entries = %d, want 2", limiter.Len())
	}
}
