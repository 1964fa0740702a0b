// Package motion holds the movement graph data model: states, timed
// breaker-guarded transitions, and the chain composer and case registry
// that assemble them. It also carries the runner that walks a finished
// graph in a single-threaded sense-decide-act loop.
package motion

import (
	"fmt"
	"math/rand"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/google/uuid"
)

// Callback is a side-effect hook run on state entry or exit. It receives the
// execution context so logging and status-light hooks can read the shared
// variables without globals.
type Callback func(*Context)

// MoveState is a graph node describing one actuation. Two states are
// distinct nodes even when their actuation is identical: every reusable
// template must be cloned before insertion into a second chain, otherwise
// the positions would alias one node and accumulate each other's callbacks.
type MoveState struct {
	id uuid.UUID

	speeds  [4]int
	dyn     func() [4]int // randomized actuation, resolved at entry
	exprSrc string        // symbolic actuation over context variables
	program *vm.Program
	usedVars []string

	before []Callback
	after  []Callback
}

// ID is the node identity; clones always get a fresh one.
func (s *MoveState) ID() string { return s.id.String() }

// Halt stops all four wheels.
func Halt() *MoveState {
	return &MoveState{id: uuid.New()}
}

// Straight drives all wheels at speed; negative reverses.
func Straight(speed int) *MoveState {
	return &MoveState{id: uuid.New(), speeds: [4]int{speed, speed, speed, speed}}
}

// Turn spins in place. dir is "l" or "r".
func Turn(dir string, speed int) (*MoveState, error) {
	switch dir {
	case "l":
		return &MoveState{id: uuid.New(), speeds: [4]int{-speed, -speed, speed, speed}}, nil
	case "r":
		return &MoveState{id: uuid.New(), speeds: [4]int{speed, speed, -speed, -speed}}, nil
	default:
		return nil, fmt.Errorf("invalid turn direction: %q", dir)
	}
}

// Drift slides backward on one clear diagonal. corner is "rl" or "rr".
func Drift(corner string, speed int) (*MoveState, error) {
	switch corner {
	case "rl":
		return &MoveState{id: uuid.New(), speeds: [4]int{-speed, 0, 0, -speed}}, nil
	case "rr":
		return &MoveState{id: uuid.New(), speeds: [4]int{0, -speed, -speed, 0}}, nil
	default:
		return nil, fmt.Errorf("invalid drift corner: %q", corner)
	}
}

// RandDirTurn turns left with probability leftProb, right otherwise. The
// direction is drawn anew each time the state is entered.
func RandDirTurn(rng *rand.Rand, speed int, leftProb float64) *MoveState {
	return &MoveState{id: uuid.New(), dyn: func() [4]int {
		if rng.Float64() < leftProb {
			return [4]int{-speed, -speed, speed, speed}
		}
		return [4]int{speed, speed, -speed, -speed}
	}}
}

// RandSpdTurn turns in a fixed direction at a speed drawn from the weighted
// candidate list each time the state is entered.
func RandSpdTurn(rng *rand.Rand, dir string, speeds []int, weights []float64) (*MoveState, error) {
	if dir != "l" && dir != "r" {
		return nil, fmt.Errorf("invalid turn direction: %q", dir)
	}
	if len(speeds) == 0 || len(speeds) != len(weights) {
		return nil, fmt.Errorf("rand speed turn: %d speeds vs %d weights", len(speeds), len(weights))
	}
	total := 0.0
	for _, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("rand speed turn: negative weight %v", w)
		}
		total += w
	}
	if total == 0 {
		return nil, fmt.Errorf("rand speed turn: all weights zero")
	}
	candidates := append([]int(nil), speeds...)
	cum := make([]float64, len(weights))
	acc := 0.0
	for i, w := range weights {
		acc += w
		cum[i] = acc
	}
	return &MoveState{id: uuid.New(), dyn: func() [4]int {
		r := rng.Float64() * total
		speed := candidates[len(candidates)-1]
		for i, c := range cum {
			if r < c {
				speed = candidates[i]
				break
			}
		}
		if dir == "l" {
			return [4]int{-speed, -speed, speed, speed}
		}
		return [4]int{speed, speed, -speed, -speed}
	}}, nil
}

// FromContext builds a symbolic state whose scalar speed expression is
// evaluated against the named context variables at entry. The canonical use
// is resuming the previous salvo speed after an interruption.
func FromContext(src string, usedVars []string) (*MoveState, error) {
	program, err := expr.Compile(src, expr.AsInt())
	if err != nil {
		return nil, fmt.Errorf("compile speed expression %q: %w", src, err)
	}
	return &MoveState{
		id:       uuid.New(),
		exprSrc:  src,
		program:  program,
		usedVars: append([]string(nil), usedVars...),
	}, nil
}

// Resolve computes the per-wheel speeds for this entry.
func (s *MoveState) Resolve(ctx *Context) ([4]int, error) {
	switch {
	case s.dyn != nil:
		return s.dyn(), nil
	case s.program != nil:
		env := make(map[string]any, len(s.usedVars))
		for _, name := range s.usedVars {
			env[name] = ctx.Get(name)
		}
		out, err := vm.Run(s.program, env)
		if err != nil {
			return [4]int{}, fmt.Errorf("evaluate speed expression %q: %w", s.exprSrc, err)
		}
		v := out.(int)
		return [4]int{v, v, v, v}, nil
	default:
		return s.speeds, nil
	}
}

// BeforeEntering appends a side-effect callback run immediately before the
// state's actuation is applied.
func (s *MoveState) BeforeEntering(cb Callback) *MoveState {
	s.before = append(s.before, cb)
	return s
}

// AfterExiting appends a side-effect callback run immediately after the
// state is left.
func (s *MoveState) AfterExiting(cb Callback) *MoveState {
	s.after = append(s.after, cb)
	return s
}

// Clone returns a structural copy with a fresh identity. Callback lists are
// copied so branches never share mutation; the compiled expression and the
// randomization closure are immutable and shared.
func (s *MoveState) Clone() *MoveState {
	return &MoveState{
		id:       uuid.New(),
		speeds:   s.speeds,
		dyn:      s.dyn,
		exprSrc:  s.exprSrc,
		program:  s.program,
		usedVars: append([]string(nil), s.usedVars...),
		before:   append([]Callback(nil), s.before...),
		after:    append([]Callback(nil), s.after...),
	}
}
