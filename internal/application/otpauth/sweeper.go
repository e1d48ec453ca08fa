package otpauth

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically evicts expired pending verifications. Backends with
// native TTL eviction still run it harmlessly; their DeleteExpired is a no-op.
type Sweeper struct {
	pending  PendingStore
	interval time.Duration
}

func NewSweeper(pending PendingStore, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{pending: pending, interval: interval}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.pending.DeleteExpired(ctx)
			if err != nil {
				slog.Warn("sweep failed", "err", err)
				continue
			}
			if n > 0 {
				slog.Info("swept expired verification codes", "count", n)
			}
		}
	}
}
