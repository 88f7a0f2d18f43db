package cart

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Reaper periodically releases stock held by abandoned cart items. Without
// it a reservation made at add-time is held until checkout or removal,
// however long that takes.
type Reaper struct {
	repo     Repository
	ttl      time.Duration
	interval time.Duration
	log      *zap.Logger
}

func NewReaper(repo Repository, ttl, interval time.Duration, log *zap.Logger) *Reaper {
	return &Reaper{repo: repo, ttl: ttl, interval: interval, log: log}
}

// Run sweeps until ctx is cancelled. A zero TTL disables the reaper.
func (r *Reaper) Run(ctx context.Context) {
	if r.ttl <= 0 {
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			released, err := r.repo.ReleaseExpired(time.Now().Add(-r.ttl))
			if err != nil {
				r.log.Error("failed to release expired reservations", zap.Error(err))
				continue
			}
			if released > 0 {
				r.log.Info("released expired cart reservations", zap.Int("items", released))
			}
		}
	}
}
