package main

import (
	"context"
	"log/slog"
	"time"
)

const sessionSweepInterval = time.Hour

type purgeFunc func(ctx context.Context, cutoff time.Time) (int64, error)

// sweepSessions purges dead sessions every interval until ctx ends.
func sweepSessions(ctx context.Context, interval time.Duration, purge purgeFunc, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := purge(ctx, time.Now())
			if err != nil {
				if ctx.Err() == nil {
					logger.Warn("session sweep failed", "err", err)
				}
				continue
			}
			if n > 0 {
				logger.Info("sessions purged", "count", n)
			}
		}
	}
}
