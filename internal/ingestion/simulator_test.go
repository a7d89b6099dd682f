package ingestion

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/toptracker/internal/config"
	"github.com/toptracker/internal/state"
)

type recorded struct {
	playerID state.PlayerID
	kind     state.ActionKind
}

type fakeRecorder struct {
	mu      sync.Mutex
	actions []recorded
	target  int
	reached chan struct{}
}

func newFakeRecorder(target int) *fakeRecorder {
	return &fakeRecorder{target: target, reached: make(chan struct{})}
}

func (r *fakeRecorder) Record(playerID state.PlayerID, kind state.ActionKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, recorded{playerID, kind})
	if len(r.actions) == r.target {
		close(r.reached)
	}
}

func (r *fakeRecorder) all() []recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recorded(nil), r.actions...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSimulatorConfig() config.SimulatorConfig {
	return config.SimulatorConfig{
		Enabled:         true,
		Workers:         3,
		Players:         5,
		EventsPerSecond: 2000,
		Burst:           10,
		Kinds:           []string{"BUY", "LOSE"},
	}
}

func TestSimulatorRecordsUntilCancelled(t *testing.T) {
	rec := newFakeRecorder(50)
	sim, err := NewSimulator(testSimulatorConfig(), rec, discardLogger())
	if err != nil {
		t.Fatalf("new simulator: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- sim.Run(ctx) }()

	select {
	case <-rec.reached:
	case <-time.After(5 * time.Second):
		t.Fatal("simulator did not record enough actions")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("simulator did not stop after cancel")
	}

	actions := rec.all()
	if uint64(len(actions)) != sim.Produced() {
		t.Fatalf("produced %d but recorder saw %d", sim.Produced(), len(actions))
	}
	for _, a := range actions {
		if a.playerID < 1 || a.playerID > 5 {
			t.Fatalf("player id %d out of range", a.playerID)
		}
		if a.kind != state.ActionBuy && a.kind != state.ActionLose {
			t.Fatalf("unexpected kind %s", a.kind)
		}
	}
}

func TestSimulatorFeedsWindow(t *testing.T) {
	cfg := testSimulatorConfig()
	window := state.NewWindow(time.Minute, 20)
	sim, err := NewSimulator(cfg, window, discardLogger())
	if err != nil {
		t.Fatalf("new simulator: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := sim.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if window.Len() == 0 {
		t.Fatal("expected window to receive actions")
	}
	if window.Len() > window.Capacity() {
		t.Fatalf("window exceeded capacity: %d", window.Len())
	}
}

func TestNewSimulatorRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.SimulatorConfig)
	}{
		{name: "unknown kind", mutate: func(c *config.SimulatorConfig) { c.Kinds = []string{"HOLD"} }},
		{name: "no kinds", mutate: func(c *config.SimulatorConfig) { c.Kinds = nil }},
		{name: "no workers", mutate: func(c *config.SimulatorConfig) { c.Workers = 0 }},
		{name: "no players", mutate: func(c *config.SimulatorConfig) { c.Players = 0 }},
		{name: "no burst", mutate: func(c *config.SimulatorConfig) { c.Burst = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testSimulatorConfig()
			tt.mutate(&cfg)
			if _, err := NewSimulator(cfg, newFakeRecorder(1), discardLogger()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
