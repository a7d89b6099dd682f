package maintenance

import (
	"context"
	"log/slog"
	"time"
)

// Expirer drops entries that have outlived their TTL. *state.Window
// satisfies it.
type Expirer interface {
	SweepExpired() int
}

// Sweeper calls SweepExpired on a fixed interval. The window never expires
// entries on its own.
type Sweeper struct {
	expirer  Expirer
	interval time.Duration
	logger   *slog.Logger
}

func NewSweeper(expirer Expirer, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		expirer:  expirer,
		interval: interval,
		logger:   logger,
	}
}

func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	if removed := s.expirer.SweepExpired(); removed > 0 {
		s.logger.Debug("expired actions removed", "count", removed)
	}
}
