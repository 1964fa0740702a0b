package motion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kazurobot/kazu-core/hardware"
)

// Runner walks a movement graph: apply the current state's actuation, poll
// the outgoing transition's breaker until it fires or the timer expires,
// follow the selected branch, repeat. The loop is strictly single-threaded;
// breakers, callbacks and the context all rely on that.
type Runner struct {
	Act           hardware.Controller
	Ctx           *Context
	CheckInterval time.Duration
	Log           *slog.Logger

	now   func() time.Time
	sleep func(time.Duration)
}

// NewRunner wires a runner over the given actuator and context.
func NewRunner(act hardware.Controller, runCtx *Context, checkInterval time.Duration, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		Act:           act,
		Ctx:           runCtx,
		CheckInterval: checkInterval,
		Log:           log,
		now:           time.Now,
		sleep:         time.Sleep,
	}
}

// Run executes the graph from start until a terminal state or cancellation.
// The wheels are stopped on every exit path.
func (r *Runner) Run(ctx context.Context, start *MoveState, transitions []*Transition) error {
	out := make(map[*MoveState]*Transition, len(transitions))
	for _, t := range transitions {
		if t.From == nil {
			return fmt.Errorf("transition %s has no source state", t.ID())
		}
		if prev, ok := out[t.From]; ok {
			return fmt.Errorf("state %s has two outgoing transitions (%s, %s)", t.From.ID(), prev.ID(), t.ID())
		}
		out[t.From] = t
	}

	defer func() {
		if err := r.Act.FullStop(); err != nil {
			r.Log.Error("full stop failed", "error", err)
		}
	}()

	cur := start
	for cur != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, cb := range cur.before {
			cb(r.Ctx)
		}
		speeds, err := cur.Resolve(r.Ctx)
		if err != nil {
			return err
		}
		if err := r.Act.Apply(speeds); err != nil {
			return fmt.Errorf("apply speeds %v: %w", speeds, err)
		}

		tr := out[cur]
		var next *MoveState
		if tr != nil {
			next, err = r.follow(ctx, tr)
			if err != nil {
				return err
			}
		}
		for _, cb := range cur.after {
			cb(r.Ctx)
		}
		cur = next
	}
	return nil
}

// follow polls one transition to completion and returns the destination. A
// fired breaker selects its value's branch; a timeout selects branch 0 when
// declared, the straight-line successor otherwise. A zero duration means
// evaluate once and dispatch immediately.
func (r *Runner) follow(ctx context.Context, tr *Transition) (*MoveState, error) {
	deadline := r.now().Add(tr.Duration)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch {
		case tr.Bool != nil:
			if tr.Bool() {
				return r.dest(tr, 1), nil
			}
		case tr.Code != nil:
			if code := tr.Code(); code != 0 {
				return r.dest(tr, code), nil
			}
		}
		if !r.now().Before(deadline) {
			return r.dest(tr, 0), nil
		}
		wait := r.CheckInterval
		if remain := deadline.Sub(r.now()); remain < wait {
			wait = remain
		}
		r.sleep(wait)
	}
}

// dest resolves a breaker value to a destination state. An undeclared code
// falls through to the straight-line successor, then to branch 0, so a
// handler may leave rare codes implicit.
func (r *Runner) dest(tr *Transition, code int) *MoveState {
	if s, ok := tr.Branches[code]; ok {
		return s
	}
	if tr.Next != nil {
		return tr.Next
	}
	if s, ok := tr.Branches[0]; ok {
		return s
	}
	return nil
}
