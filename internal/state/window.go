// Package state keeps a bounded, time-ordered window of recent player actions.
package state

import (
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"
)

// Entry is one element of a RecordBatch call.
type Entry struct {
	PlayerID PlayerID
	Kind     ActionKind
}

type Option func(*Window)

// WithClock replaces the clock used to stamp recorded actions.
func WithClock(clock Clock) Option {
	return func(w *Window) {
		w.clock = clock
	}
}

// Window keeps the most recent player actions, oldest first. It drops the
// oldest action when full, and drops actions older than its TTL when
// SweepExpired is called. Nothing is expired in the background.
//
// A Window must be created with NewWindow.
type Window struct {
	mu       sync.Mutex
	actions  []Action // sorted by observedAt, oldest first
	ttl      time.Duration
	capacity int
	clock    Clock
}

// NewWindow panics if capacity is below one or ttl is negative.
func NewWindow(ttl time.Duration, capacity int, opts ...Option) *Window {
	if capacity < 1 {
		panic(fmt.Sprintf("state: window capacity must be at least 1, got %d", capacity))
	}
	if ttl < 0 {
		panic(fmt.Sprintf("state: window ttl must not be negative, got %v", ttl))
	}

	w := &Window{
		actions:  make([]Action, 0, capacity),
		ttl:      ttl,
		capacity: capacity,
		clock:    SystemClock,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Record appends a freshly stamped action, evicting the oldest one first if
// the window is full.
func (w *Window) Record(playerID PlayerID, kind ActionKind) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.actions) == w.capacity {
		w.actions = w.actions[1:]
	}
	w.actions = append(w.actions, NewActionWithClock(w.clock, playerID, kind))
}

// RecordBatch appends entries in order under a single clock reading. As
// many of the oldest actions as needed are evicted to stay within
// capacity; if the batch alone is larger, only its tail is kept.
func (w *Window) RecordBatch(entries []Entry) {
	if len(entries) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.clock.Now()
	for _, e := range entries {
		w.actions = append(w.actions, Action{playerID: e.PlayerID, kind: e.Kind, observedAt: now})
	}
	if over := len(w.actions) - w.capacity; over > 0 {
		w.actions = w.actions[over:]
	}
}

// SweepExpired removes every action observed strictly before now-TTL and
// returns how many were removed.
func (w *Window) SweepExpired() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	if debugChecks {
		assertSorted(w.actions)
	}

	cutoff := w.clock.Now().Add(-w.ttl)
	keepFrom := sort.Search(len(w.actions), func(i int) bool {
		return !w.actions[i].observedAt.Before(cutoff)
	})
	if keepFrom == 0 {
		return 0
	}

	w.actions = w.actions[keepFrom:]
	return keepFrom
}

// View returns the live contents without copying. The lock is held only
// while the slice header is read, so the result must not be used while
// another goroutine may call Record, RecordBatch or SweepExpired. Callers
// must not modify it. Use Snapshot when that cannot be guaranteed.
func (w *Window) View() []Action {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.actions
}

// Snapshot returns an independent copy of the current contents.
func (w *Window) Snapshot() []Action {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.actions)
}

func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.actions)
}

func (w *Window) Capacity() int {
	return w.capacity
}

func (w *Window) TTL() time.Duration {
	return w.ttl
}

func assertSorted(actions []Action) {
	sorted := slices.IsSortedFunc(actions, func(a, b Action) int {
		return a.observedAt.Compare(b.observedAt)
	})
	if !sorted {
		panic("state: window actions are not ordered by observation time")
	}
}
