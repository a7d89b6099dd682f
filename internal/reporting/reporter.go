package reporting

import (
	"context"
	"log/slog"
	"time"

	"github.com/toptracker/internal/state"
)

// Snapshotter is the read side of *state.Window used by the reporter.
type Snapshotter interface {
	Snapshot() []state.Action
	Capacity() int
}

// Summary describes the window contents at one instant.
type Summary struct {
	Size      int
	Capacity  int
	Players   int
	ByKind    map[state.ActionKind]int
	OldestAge time.Duration
	NewestAge time.Duration
}

// Summarize expects actions ordered oldest first, as Snapshot returns them.
func Summarize(actions []state.Action, capacity int, now time.Time) Summary {
	sum := Summary{
		Size:     len(actions),
		Capacity: capacity,
		ByKind:   make(map[state.ActionKind]int, len(state.AllActionKinds())),
	}
	if len(actions) == 0 {
		return sum
	}

	players := make(map[state.PlayerID]struct{})
	for _, a := range actions {
		sum.ByKind[a.Kind()]++
		players[a.PlayerID()] = struct{}{}
	}
	sum.Players = len(players)
	sum.OldestAge = now.Sub(actions[0].ObservedAt())
	sum.NewestAge = now.Sub(actions[len(actions)-1].ObservedAt())
	return sum
}

// LogAttrs renders the summary as structured log attributes.
func (s Summary) LogAttrs() []any {
	attrs := []any{
		slog.Int("size", s.Size),
		slog.Int("capacity", s.Capacity),
		slog.Int("players", s.Players),
	}
	for _, k := range state.AllActionKinds() {
		attrs = append(attrs, slog.Int(k.String(), s.ByKind[k]))
	}
	if s.Size > 0 {
		attrs = append(attrs,
			slog.Duration("oldest_age", s.OldestAge),
			slog.Duration("newest_age", s.NewestAge),
		)
	}
	return attrs
}

type Reporter struct {
	source   Snapshotter
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewReporter(source Snapshotter, interval time.Duration, logger *slog.Logger) *Reporter {
	return &Reporter{
		source:   source,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run logs a summary every interval and a final one on shutdown.
func (r *Reporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Report()
			return ctx.Err()
		case <-ticker.C:
			r.Report()
		}
	}
}

func (r *Reporter) Report() Summary {
	sum := Summarize(r.source.Snapshot(), r.source.Capacity(), r.now())
	r.logger.Info("window summary", sum.LogAttrs()...)
	return sum
}
