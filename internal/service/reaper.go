package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StartSessionReaper closes sessions idle longer than ttl every interval
// until ctx is done. A non-positive interval disables the reaper.
func StartSessionReaper(
	ctx context.Context,
	svc *VaultService,
	interval time.Duration,
	ttl time.Duration,
	log *zap.Logger,
) {
	if interval <= 0 {
		log.Warn("session reaper disabled", zap.Duration("interval", interval))
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := svc.Reap(ttl); n > 0 {
					log.Info("closed idle sessions", zap.Int("closed", n), zap.Int("open", svc.OpenSessions()))
				}
			}
		}
	}()
}
