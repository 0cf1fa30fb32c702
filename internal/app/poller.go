package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/five82/roster/internal/syncer"
)

const maxBackoff = 5 * time.Minute

// reloader is the part of the Syncer the background reload needs.
type reloader interface {
	Reload(ctx context.Context) syncer.LoadResult
}

// StartPoller reloads the list and statistics every interval until ctx is
// cancelled. Consecutive failures back the interval off. It returns
// immediately; a non-positive interval disables polling.
func StartPoller(ctx context.Context, r reloader, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("poller")

	go func() {
		failures := 0
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			res := r.Reload(ctx)
			if ctx.Err() != nil {
				return
			}
			if res.ListErr != nil || res.StatsErr != nil {
				failures++
			} else {
				failures = 0
			}

			next := calculateBackoff(failures, interval)
			if failures > 0 {
				logger.Debug("reload failed, backing off",
					zap.Int("failures", failures),
					zap.Duration("next", next))
			}
			timer.Reset(next)
		}
	}()
}

// calculateBackoff doubles interval per consecutive failure, capped at
// maxBackoff. An interval already above the cap is used as is.
func calculateBackoff(failures int, interval time.Duration) time.Duration {
	if failures <= 0 || interval >= maxBackoff {
		return interval
	}
	backoff := interval
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
