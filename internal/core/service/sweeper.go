package service

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper runs the stale-session sweep on a fixed interval, plus once
// shortly after startup to clear directories left behind by a previous
// process.
type Sweeper struct {
	service  *LinkService
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSweeper creates a Sweeper over the given service.
func NewSweeper(service *LinkService, interval time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the background sweep loop. Call Stop to end it.
func (w *Sweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.run(ctx)
}

// Stop ends the sweep loop and waits for the current pass to finish.
func (w *Sweeper) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}

func (w *Sweeper) run(ctx context.Context) {
	defer close(w.done)

	// Initial pass catches stores orphaned by a previous run.
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Sweeper) sweep(ctx context.Context) {
	cleaned, err := w.service.CleanupStale(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("stale sweep failed", "error", err)
		}
		return
	}
	if cleaned > 0 {
		w.logger.Info("stale sweep completed", "cleaned", cleaned)
	}
}
