package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nflpickem/pool/internal/config"
	"nflpickem/pool/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// syncTimeout bounds one sync pass; a wedged feed call must not hold
// the debounce lock into the next window tick.
const syncTimeout = 2 * time.Minute

// Scheduler drives background syncs around the NFL broadcast schedule:
// tight polling during the Thursday, Sunday, and Monday game windows,
// plus a nightly reconciliation pass that re-grades everything.
// All window crons are evaluated in Eastern time.
type Scheduler struct {
	cfg  *config.Config
	svc  *service.Service
	cron *cron.Cron

	// mu debounces overlapping runs; a tick that fires while a sync is
	// still in flight is skipped, not queued.
	mu sync.Mutex
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, svc *service.Service) *Scheduler {
	return &Scheduler{
		cfg: cfg,
		svc: svc,
	}
}

// Start registers the cron entries and starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	eastern, err := time.LoadLocation("America/New_York")
	if err != nil {
		return fmt.Errorf("failed to load Eastern timezone: %w", err)
	}

	s.cron = cron.New(cron.WithLocation(eastern))

	windows := []struct {
		name string
		spec string
	}{
		{"thursday_window", s.cfg.ThursdayWindowCron},
		{"sunday_window", s.cfg.SundayWindowCron},
		{"monday_window", s.cfg.MondayWindowCron},
	}

	for _, w := range windows {
		name := w.name
		if _, err := s.cron.AddFunc(w.spec, func() {
			s.runSync(ctx, name)
		}); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", name, err)
		}
		log.Info().Str("window", w.name).Str("schedule", w.spec).Msg("Game window scheduled")
	}

	if _, err := s.cron.AddFunc(s.cfg.ReconcileCron, func() {
		s.runReconcile(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule reconciliation: %w", err)
	}
	log.Info().Str("schedule", s.cfg.ReconcileCron).Msg("Nightly reconciliation scheduled")

	s.cron.Start()
	log.Info().Msg("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	log.Info().Msg("Scheduler stopped")
}

// runSync performs one forced sync of the current week
func (s *Scheduler) runSync(ctx context.Context, window string) {
	if !s.mu.TryLock() {
		log.Debug().Str("window", window).Msg("Sync already in flight, skipping tick")
		return
	}
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	log.Debug().Str("window", window).Msg("Game window sync starting")
	if _, err := s.svc.SyncWeek(ctx, nil, true); err != nil {
		log.Error().Err(err).Str("window", window).Msg("Game window sync failed")
	}
}

// runReconcile performs the nightly catch-up: a forced sync of the
// current week followed by a full rescore, repairing anything a missed
// window or late score correction left behind.
func (s *Scheduler) runReconcile(ctx context.Context) {
	if !s.mu.TryLock() {
		log.Warn().Msg("Sync in flight during reconciliation window, skipping")
		return
	}
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	log.Info().Msg("Nightly reconciliation starting")
	if _, err := s.svc.SyncWeek(ctx, nil, true); err != nil {
		log.Error().Err(err).Msg("Reconciliation sync failed")
	}

	changed, err := s.svc.ScoreAllFinished(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Reconciliation rescore failed")
		return
	}
	log.Info().Int("changed", changed).Msg("Nightly reconciliation complete")
}
