package session

import (
	"context"
	"log/slog"
	"time"
)

// Purger removes temp files older than a cutoff.
type Purger interface {
	PurgeOlderThan(cutoff time.Time) (int, error)
}

// Sweeper periodically ends expired sessions. A temp file older than the
// session TTL cannot belong to a live session, so those are purged too.
type Sweeper struct {
	manager  *Manager
	temp     Purger
	interval time.Duration
	logger   *slog.Logger
}

func NewSweeper(manager *Manager, temp Purger, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		manager:  manager,
		temp:     temp,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled.
func (w *Sweeper) Run(ctx context.Context) {
	w.logger.Info("starting session sweeper", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("session sweeper stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Sweeper) sweep(ctx context.Context) {
	n, err := w.manager.SweepExpired(ctx)
	if err != nil {
		w.logger.Error("session sweep failed", "error", err)
	} else if n > 0 {
		w.logger.Info("expired sessions ended", "count", n)
	}

	if w.temp == nil {
		return
	}
	purged, err := w.temp.PurgeOlderThan(w.manager.now().Add(-w.manager.TTL()))
	if err != nil {
		w.logger.Error("temp upload purge failed", "error", err)
	} else if purged > 0 {
		w.logger.Info("stale temp uploads purged", "count", purged)
	}
}
