package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

type Refresher interface {
	Refresh(ctx context.Context) (*Snapshot, error)
}

// Warmer reloads the snapshot on a schedule so renders rarely wait for the query.
type Warmer struct {
	log       *slog.Logger
	refresher Refresher
	interval  time.Duration
}

func NewWarmer(log *slog.Logger, refresher Refresher, interval time.Duration) *Warmer {
	return &Warmer{log: log, refresher: refresher, interval: interval}
}

// Run blocks until ctx is done. The first refresh happens immediately.
func (w *Warmer) Run(ctx context.Context) error {
	const op = "snapshot.Warmer.Run"

	if w.interval <= 0 {
		return fmt.Errorf("%s: interval must be positive, got %s", op, w.interval)
	}

	scheduler := gocron.NewScheduler(time.UTC)

	_, err := scheduler.Every(w.interval).Do(func() {
		refreshCtx, cancel := context.WithTimeout(ctx, w.interval)
		defer cancel()

		if _, err := w.refresher.Refresh(refreshCtx); err != nil {
			w.log.Error("scheduled snapshot refresh failed", slog.String("op", op), slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	w.log.Info("snapshot warmer started", slog.Duration("interval", w.interval))
	scheduler.StartAsync()

	<-ctx.Done()

	scheduler.Stop()
	w.log.Info("snapshot warmer stopped")

	return nil
}
