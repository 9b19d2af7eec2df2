package rollup

import (
	"context"
	"log/slog"
	"time"

	"github.com/thosangs/revroll/internal/core/storage"
	"github.com/thosangs/revroll/internal/core/summary"
)

// Scheduler runs aggregation jobs on a periodic interval, one profile at a
// time. Stateless between ticks: each run independently plans its window
// from current store state. Single-writer by construction — profiles run
// sequentially and a tick never overlaps a still-running tick because runs
// execute inline in the ticker loop.
type Scheduler struct {
	interval time.Duration
	source   storage.OrderStore
	store    storage.SummaryStore
	profiles []summary.Profile
}

// NewScheduler creates a cron-style scheduler over a set of summary profiles.
func NewScheduler(
	interval time.Duration,
	source storage.OrderStore,
	store storage.SummaryStore,
	profiles []summary.Profile,
) *Scheduler {
	return &Scheduler{
		interval: interval,
		source:   source,
		store:    store,
		profiles: profiles,
	}
}

// Start begins periodic aggregation. Runs until context is cancelled, then
// performs one final pass so facts ingested just before shutdown are
// summarized.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("[Scheduler] Starting rollup scheduler",
		"interval", s.interval,
		"profiles", len(s.profiles),
	)

	// Initial pass so a fresh deployment has summaries before the first tick.
	s.runAll(ctx)

	for {
		select {
		case <-ticker.C:
			s.runAll(ctx)
		case <-ctx.Done():
			slog.Info("[Scheduler] Stopping (context cancelled)")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			slog.Info("[Scheduler] Running final pass before shutdown...")
			s.runAll(shutdownCtx)
			slog.Info("[Scheduler] Final pass complete")

			return nil
		}
	}
}

// runAll runs every profile to completion, sequentially. A failed run is
// logged and skipped; the next tick re-plans from store state, which is the
// whole retry policy — failed runs commit nothing.
func (s *Scheduler) runAll(ctx context.Context) {
	for _, profile := range s.profiles {
		select {
		case <-ctx.Done():
			slog.Info("[Scheduler] Pass interrupted by context cancellation", "pending_profile", profile.Name)
			return
		default:
		}

		if _, err := Run(ctx, s.source, s.store, profile); err != nil {
			slog.Error("[Scheduler] Rollup run failed",
				"model", profile.Name,
				"error", err,
			)
		}
	}
}
