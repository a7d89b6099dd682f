//go:build toptrackerdebug

package state

import (
	"testing"
	"time"
)

func TestSweepExpiredPanicsOnUnorderedActions(t *testing.T) {
	clock := newFakeClock()
	w := NewWindow(time.Minute, 10, WithClock(clock))

	w.Record(1, ActionBuy)
	clock.Advance(-time.Second) // misbehaving clock
	w.Record(2, ActionSell)

	defer func() {
		if recover() == nil {
			t.Fatal("expected ordering assertion to panic")
		}
	}()
	w.SweepExpired()
}
