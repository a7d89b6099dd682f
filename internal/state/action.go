package state

import (
	"fmt"
	"strings"
	"time"
)

type PlayerID uint64

// ActionKind is the closed set of things a player can do.
type ActionKind uint8

const (
	ActionBuy ActionKind = iota
	ActionSell
	ActionWin
	ActionLose
)

var actionKindNames = [...]string{
	ActionBuy:  "BUY",
	ActionSell: "SELL",
	ActionWin:  "WIN",
	ActionLose: "LOSE",
}

// AllActionKinds lists every valid kind in declaration order.
func AllActionKinds() []ActionKind {
	return []ActionKind{ActionBuy, ActionSell, ActionWin, ActionLose}
}

func (k ActionKind) Valid() bool {
	return int(k) < len(actionKindNames)
}

func (k ActionKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("ActionKind(%d)", uint8(k))
	}
	return actionKindNames[k]
}

// ParseActionKind accepts the String form, case-insensitively.
func ParseActionKind(s string) (ActionKind, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range actionKindNames {
		if n == name {
			return ActionKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown action kind %q", s)
}

// Clock supplies timestamps for new actions. Implementations must never go
// backwards; the Window relies on it to keep actions ordered.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the process clock. time.Now carries a monotonic reading,
// so comparisons between its values are immune to wall-clock jumps.
var SystemClock Clock = systemClock{}

// Action is one observed player event. It is immutable once built.
type Action struct {
	playerID   PlayerID
	kind       ActionKind
	observedAt time.Time
}

// NewAction stamps the action with the process clock.
func NewAction(playerID PlayerID, kind ActionKind) Action {
	return NewActionWithClock(SystemClock, playerID, kind)
}

func NewActionWithClock(clock Clock, playerID PlayerID, kind ActionKind) Action {
	return Action{
		playerID:   playerID,
		kind:       kind,
		observedAt: clock.Now(),
	}
}

func (a Action) PlayerID() PlayerID {
	return a.playerID
}

func (a Action) Kind() ActionKind {
	return a.kind
}

func (a Action) ObservedAt() time.Time {
	return a.observedAt
}

func (a Action) String() string {
	return fmt.Sprintf("%d:%s", a.playerID, a.kind)
}
