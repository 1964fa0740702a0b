package behavior

import (
	"fmt"

	"github.com/kazurobot/kazu-core/hardware"
	"github.com/kazurobot/kazu-core/light"
	"github.com/kazurobot/kazu-core/motion"
)

// Search sub-behavior dispatch codes.
const (
	searchScan = iota + 1
	searchRandWalk
	searchGradient
)

// Search builds the target-hunting fragment. The enabled sub-behaviors are
// drawn by weight the moment the state is entered: the choice is a pure
// random pick, not a polled sensor condition, so the dispatch runs with a
// zero-duration window.
func (b *Builder) Search(board hardware.Board, endState *motion.MoveState) (Pack, error) {
	conf := b.Run.Search

	if endState == nil {
		endState = motion.Halt()
	}

	hook, err := b.lightHook("search", light.Cyan, light.Black)
	if err != nil {
		return Pack{}, err
	}

	type candidate struct {
		code   int
		weight float64
	}
	var candidates []candidate
	var pool []*motion.Transition
	reg := motion.NewCaseRegistry()

	if conf.UseScanMove {
		pack, err := b.Scan(board, endState)
		if err != nil {
			return Pack{}, err
		}
		pool = append(pool, pack.Transitions...)
		if err := reg.Register(searchScan, pack.Head()); err != nil {
			return Pack{}, err
		}
		candidates = append(candidates, candidate{searchScan, conf.ScanMoveWeight})
	}
	if conf.UseRandTurn {
		pack, err := b.RandWalk(endState)
		if err != nil {
			return Pack{}, err
		}
		pool = append(pool, pack.Transitions...)
		if err := reg.Register(searchRandWalk, pack.Head()); err != nil {
			return Pack{}, err
		}
		candidates = append(candidates, candidate{searchRandWalk, conf.RandTurnWeight})
	}
	if conf.UseGradientMove {
		pack, err := b.GradientMove(endState)
		if err != nil {
			return Pack{}, err
		}
		pool = append(pool, pack.Transitions...)
		if err := reg.Register(searchGradient, pack.Head()); err != nil {
			return Pack{}, err
		}
		candidates = append(candidates, candidate{searchGradient, conf.GradientMoveWeight})
	}
	if len(candidates) == 0 {
		return Pack{}, fmt.Errorf("search: no sub-behavior enabled")
	}
	total := 0.0
	for _, c := range candidates {
		total += c.weight
	}
	if total <= 0 {
		return Pack{}, fmt.Errorf("search: enabled sub-behaviors have zero total weight")
	}

	rng := b.RNG
	pick := func() int {
		r := rng.Float64() * total
		acc := 0.0
		for _, c := range candidates {
			acc += c.weight
			if r < acc {
				return c.code
			}
		}
		return candidates[len(candidates)-1].code
	}

	entry := withLight(motion.Halt(), hook)
	c := motion.NewChainComposer()
	c.AddState(entry)
	c.AddTransition(motion.Dispatch(0, pick, reg.Export()))
	states, transitions, err := c.Export()
	if err != nil {
		return Pack{}, err
	}
	return Pack{States: states, Transitions: append(transitions, pool...)}, nil
}

// GradientMove builds the gray-gradient chase: drive steadily toward the
// stage's brighter center and stop early if the surface darkens toward an
// edge.
func (b *Builder) GradientMove(endState *motion.MoveState) (Pack, error) {
	conf := b.Run.Search.GradientMove

	grayBreaker, err := b.Judges.GrayScan()
	if err != nil {
		return Pack{}, err
	}

	move := motion.Straight(conf.Speed).
		BeforeEntering(recordSalvo(conf.Speed))

	c := motion.NewChainComposer()
	c.AddState(move)
	c.AddTransition(motion.When(secs(conf.MaxDuration), grayBreaker))
	c.AddState(endState)
	states, transitions, err := c.Export()
	if err != nil {
		return Pack{}, err
	}
	return Pack{States: states, Transitions: transitions}, nil
}
