package motion

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kazurobot/kazu-core/sense"
)

// Transition is a timed edge out of a state. While its duration runs the
// attached breaker is polled; a firing breaker selects a branch by its
// value, a quiet breaker lets the timer expire into the fallthrough case.
//
// At most one of Bool and Code is set. A nil breaker makes the edge a plain
// delay that always falls through to Next.
type Transition struct {
	id uuid.UUID

	Duration time.Duration
	Bool     sense.BoolBreaker
	Code     sense.IntBreaker

	// Branches maps breaker values to destinations. For a bool breaker the
	// only meaningful keys are 0 and 1. Key 0 doubles as the timeout case
	// when present; otherwise timeout falls through to Next.
	Branches map[int]*MoveState

	// From and Next are wired by the composer for straight-line chains.
	From *MoveState
	Next *MoveState
}

// After returns a plain delay edge with no guard.
func After(d time.Duration) *Transition {
	return &Transition{id: uuid.New(), Duration: d}
}

// When returns an edge guarded by a boolean breaker. Destinations default
// to the composer-wired Next; use Branch to split the fired path off.
func When(d time.Duration, b sense.BoolBreaker) *Transition {
	return &Transition{id: uuid.New(), Duration: d, Bool: b}
}

// Dispatch returns an edge that fans out on a situation code.
func Dispatch(d time.Duration, b sense.IntBreaker, branches map[int]*MoveState) *Transition {
	return &Transition{id: uuid.New(), Duration: d, Code: b, Branches: branches}
}

// Branch adds one destination case, replacing any previous state under the
// same code.
func (t *Transition) Branch(code int, s *MoveState) *Transition {
	if t.Branches == nil {
		t.Branches = make(map[int]*MoveState)
	}
	t.Branches[code] = s
	return t
}

// ID is the edge identity; clones always get a fresh one.
func (t *Transition) ID() string { return t.id.String() }

// Validate rejects edges that can never dispatch sensibly.
func (t *Transition) Validate() error {
	if t.Bool != nil && t.Code != nil {
		return fmt.Errorf("transition %s: both bool and code breakers set", t.id)
	}
	if t.Bool != nil {
		for code := range t.Branches {
			if code != 0 && code != 1 {
				return fmt.Errorf("transition %s: bool breaker cannot reach branch %d", t.id, code)
			}
		}
	}
	if t.Bool == nil && t.Code == nil && len(t.Branches) > 0 {
		return fmt.Errorf("transition %s: branches without a breaker", t.id)
	}
	return nil
}

// Clone returns a structural copy with a fresh identity. The branch table
// is copied shallowly; destination states are shared and must be cloned by
// the caller when the same template feeds several chains.
func (t *Transition) Clone() *Transition {
	var branches map[int]*MoveState
	if t.Branches != nil {
		branches = make(map[int]*MoveState, len(t.Branches))
		for code, s := range t.Branches {
			branches[code] = s
		}
	}
	return &Transition{
		id:       uuid.New(),
		Duration: t.Duration,
		Bool:     t.Bool,
		Code:     t.Code,
		Branches: branches,
		From:     t.From,
		Next:     t.Next,
	}
}
