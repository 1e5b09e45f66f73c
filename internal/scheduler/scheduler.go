// Package scheduler runs background maintenance: tag count reconciliation
// and limiter cache pressure relief.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Tantanok221/douren/internal/middleware"
	"github.com/Tantanok221/douren/internal/ratelimit"
	"github.com/Tantanok221/douren/internal/store"
)

// maxLimiterEntries bounds the rate-limit maps between sweeps. The limiter
// never evicts idle keys on its own, so the sweep is the only pressure valve.
const maxLimiterEntries = 100_000

// Scheduler owns the cron runner and its maintenance jobs.
type Scheduler struct {
	queries    *store.Queries
	limiter    *ratelimit.FixedWindow
	loginLimit *middleware.LoginProtection
	cron       *cron.Cron
	logger     *slog.Logger
}

// New creates a scheduler over the query layer and the two limiter caches.
func New(queries *store.Queries, limiter *ratelimit.FixedWindow,
	loginLimit *middleware.LoginProtection, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		queries:    queries,
		limiter:    limiter,
		loginLimit: loginLimit,
		cron:       cron.New(),
		logger:     logger,
	}
}

// Start registers the jobs and begins the cron runner. Tag reconciliation
// runs nightly as a safety net behind the per-mutation recompute; the limiter
// sweep runs hourly.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("30 4 * * *", s.reconcileTags); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 * * * *", s.sweepLimiters); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) reconcileTags() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.queries.RecomputeTagCounts(ctx); err != nil {
		s.logger.Error("tag reconciliation failed", "error", err)
		return
	}
	s.logger.Info("tag counts reconciled")
}

func (s *Scheduler) sweepLimiters() {
	if s.limiter.ClearIfExceeds(maxLimiterEntries) {
		s.logger.Warn("rate limiter map cleared", "threshold", maxLimiterEntries)
	}
	if s.loginLimit.Shrink(maxLimiterEntries) {
		s.logger.Warn("login limiter cache cleared", "threshold", maxLimiterEntries)
	}
}
