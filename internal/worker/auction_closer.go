// Package worker holds the background jobs started next to the HTTP server.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"artmarket/internal/service"
)

// Closer is the part of the auction service the closer drives.
type Closer interface {
	CloseExpired(ctx context.Context) (*service.CloseSummary, error)
}

// AuctionCloser periodically activates scheduled auctions whose start has
// passed and settles the ones whose end has passed.
type AuctionCloser struct {
	closer   Closer
	interval time.Duration
	log      *zap.Logger
}

func NewAuctionCloser(closer Closer, interval time.Duration, log *zap.Logger) *AuctionCloser {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &AuctionCloser{closer: closer, interval: interval, log: log}
}

// Run performs a pass immediately and then one per interval until ctx is cancelled.
func (w *AuctionCloser) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("auction_closer_started", zap.Duration("interval", w.interval))
	w.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info("auction_closer_stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single pass. Errors are logged; the next tick retries.
func (w *AuctionCloser) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	sum, err := w.closer.CloseExpired(ctx)
	if err != nil {
		w.log.Error("auction_close_failed", zap.Error(err))
	}
	if sum != nil && (sum.Activated > 0 || sum.Settled > 0) {
		w.log.Info("auction_close_pass",
			zap.Int("activated", sum.Activated),
			zap.Int("settled", sum.Settled),
			zap.Int("sold", sum.Sold),
		)
	}
}
