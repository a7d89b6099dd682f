package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/toptracker/internal/config"
	"github.com/toptracker/internal/state"
)

// Recorder receives player actions. *state.Window satisfies it.
type Recorder interface {
	Record(playerID state.PlayerID, kind state.ActionKind)
}

// Simulator feeds synthetic player actions into a Recorder. All workers
// share one rate limiter, so EventsPerSecond is a global rate.
type Simulator struct {
	recorder    Recorder
	rateLimiter *rate.Limiter
	workers     int
	players     uint64
	kinds       []state.ActionKind
	seed        uint64
	logger      *slog.Logger
	produced    atomic.Uint64
}

func NewSimulator(cfg config.SimulatorConfig, recorder Recorder, logger *slog.Logger) (*Simulator, error) {
	kinds, err := cfg.ActionKinds()
	if err != nil {
		return nil, fmt.Errorf("failed to configure simulator: %w", err)
	}
	if cfg.Workers < 1 || cfg.Players < 1 || cfg.Burst < 1 {
		return nil, errors.New("failed to configure simulator: workers, players and burst must be positive")
	}

	return &Simulator{
		recorder:    recorder,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.EventsPerSecond), cfg.Burst),
		workers:     cfg.Workers,
		players:     cfg.Players,
		kinds:       kinds,
		seed:        uint64(time.Now().UnixNano()),
		logger:      logger,
	}, nil
}

// Produced reports how many actions have been recorded so far.
func (s *Simulator) Produced() uint64 {
	return s.produced.Load()
}

// Run blocks until ctx is cancelled, then returns ctx.Err().
func (s *Simulator) Run(ctx context.Context) error {
	s.logger.Info("simulator starting",
		"workers", s.workers,
		"players", s.players,
		"events_per_second", float64(s.rateLimiter.Limit()),
	)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.workers; i++ {
		rng := rand.New(rand.NewPCG(s.seed, uint64(i)))
		g.Go(func() error {
			return s.produce(gctx, rng)
		})
	}

	err := g.Wait()
	s.logger.Info("simulator stopped", "produced", s.Produced())
	return err
}

func (s *Simulator) produce(ctx context.Context, rng *rand.Rand) error {
	for {
		if err := s.rateLimiter.Wait(ctx); err != nil {
			// Wait gives up early when the next token lies past the deadline.
			<-ctx.Done()
			return ctx.Err()
		}

		playerID := state.PlayerID(rng.Uint64N(s.players) + 1)
		kind := s.kinds[rng.IntN(len(s.kinds))]
		s.recorder.Record(playerID, kind)
		s.produced.Add(1)
	}
}
