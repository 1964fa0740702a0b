package behavior

import (
	"github.com/kazurobot/kazu-core/judge"
	"github.com/kazurobot/kazu-core/light"
	"github.com/kazurobot/kazu-core/motion"
)

// Edge builds the cliff-recovery graph. The head state polls the 16-valued
// edge code; every non-zero case backs the robot onto safe surface and
// leaves through the abnormal exit, the all-clear case passes straight to
// the normal exit.
//
// Pass nil for start, normalExit or abnormalExit to get the defaults: a
// resume-salvo start, a resume-salvo normal exit and a halt abnormal exit.
func (b *Builder) Edge(start, normalExit, abnormalExit *motion.MoveState) (*Graph, error) {
	conf := b.Run.Edge

	fullBreaker, err := b.Judges.EdgeFull()
	if err != nil {
		return nil, err
	}
	frontBreaker, err := b.Judges.EdgeFront()
	if err != nil {
		return nil, err
	}
	rearBreaker, err := b.Judges.EdgeRear()
	if err != nil {
		return nil, err
	}

	if start == nil {
		if start, err = b.continues(); err != nil {
			return nil, err
		}
	}
	if normalExit == nil {
		if normalExit, err = b.continues(); err != nil {
			return nil, err
		}
	}
	if abnormalExit == nil {
		abnormalExit = motion.Halt()
	}

	hook, err := b.lightHook("edge recovery", light.Red, light.Yellow)
	if err != nil {
		return nil, err
	}

	// Templates, cloned per chain so no two cases share a node.
	fallback := motion.Straight(-conf.FallbackSpeed)
	fallbackT := motion.When(secs(conf.FallbackDuration), rearBreaker)
	advance := motion.Straight(conf.AdvanceSpeed)
	advanceT := motion.When(secs(conf.AdvanceDuration), frontBreaker)
	leftTurn, err := motion.Turn("l", conf.TurnSpeed)
	if err != nil {
		return nil, err
	}
	rightTurn, err := motion.Turn("r", conf.TurnSpeed)
	if err != nil {
		return nil, err
	}
	randTurn := motion.RandDirTurn(b.RNG, conf.TurnSpeed, conf.TurnLeftProb)
	halfTurnT := motion.After(secs(conf.HalfTurnDuration))
	fullTurnT := motion.After(secs(conf.FullTurnDuration))
	driftLeft, err := motion.Drift("rl", conf.DriftSpeed)
	if err != nil {
		return nil, err
	}
	driftRight, err := motion.Drift("rr", conf.DriftSpeed)
	if err != nil {
		return nil, err
	}
	driftT := motion.After(secs(conf.DriftDuration))

	var pool []*motion.Transition
	reg := motion.NewCaseRegistry()

	register := func(codes []int, parts ...any) error {
		head, err := chain(&pool, parts...)
		if err != nil {
			return err
		}
		withLight(head, hook)
		return reg.BatchRegister(codes, head)
	}

	if err := reg.Register(judge.EdgeCode(false, false, false, false), normalExit); err != nil {
		return nil, err
	}
	// Single front corner: back off, then turn away from the drop.
	if err := register([]int{judge.EdgeCode(true, false, false, false)},
		fallback.Clone(), fallbackT.Clone(), rightTurn.Clone(), fullTurnT.Clone(), abnormalExit); err != nil {
		return nil, err
	}
	if err := register([]int{judge.EdgeCode(false, false, false, true)},
		fallback.Clone(), fallbackT.Clone(), leftTurn.Clone(), fullTurnT.Clone(), abnormalExit); err != nil {
		return nil, err
	}
	// Single rear corner: pull forward, then turn away.
	if err := register([]int{judge.EdgeCode(false, true, false, false)},
		advance.Clone(), advanceT.Clone(), rightTurn.Clone(), halfTurnT.Clone(), abnormalExit); err != nil {
		return nil, err
	}
	if err := register([]int{judge.EdgeCode(false, false, true, false)},
		advance.Clone(), advanceT.Clone(), leftTurn.Clone(), halfTurnT.Clone(), abnormalExit); err != nil {
		return nil, err
	}
	// Whole left or right side over the edge: turn in place toward safety.
	if err := register([]int{judge.EdgeCode(true, true, false, false)},
		rightTurn.Clone(), halfTurnT.Clone(), abnormalExit); err != nil {
		return nil, err
	}
	if err := register([]int{judge.EdgeCode(false, false, true, true)},
		leftTurn.Clone(), halfTurnT.Clone(), abnormalExit); err != nil {
		return nil, err
	}
	// Whole front over: back off, then turn a random way.
	if err := register([]int{judge.EdgeCode(true, false, false, true)},
		fallback.Clone(), fallbackT.Clone(), randTurn.Clone(), fullTurnT.Clone(), abnormalExit); err != nil {
		return nil, err
	}
	// Whole rear over: pull forward.
	if err := register([]int{judge.EdgeCode(false, true, true, false)},
		advance.Clone(), advanceT.Clone(), abnormalExit); err != nil {
		return nil, err
	}
	// Diagonals: slide backward along the clear diagonal.
	if err := register([]int{judge.EdgeCode(true, false, true, false)},
		driftRight.Clone(), driftT.Clone(), abnormalExit); err != nil {
		return nil, err
	}
	if err := register([]int{judge.EdgeCode(false, true, false, true)},
		driftLeft.Clone(), driftT.Clone(), abnormalExit); err != nil {
		return nil, err
	}
	// Three corners over: turn toward the surviving corner, then move onto
	// it.
	if err := register([]int{judge.EdgeCode(false, true, true, true)},
		leftTurn.Clone(), halfTurnT.Clone(), advance.Clone(), advanceT.Clone(), abnormalExit); err != nil {
		return nil, err
	}
	if err := register([]int{judge.EdgeCode(true, true, true, false)},
		rightTurn.Clone(), halfTurnT.Clone(), advance.Clone(), advanceT.Clone(), abnormalExit); err != nil {
		return nil, err
	}
	if err := register([]int{judge.EdgeCode(true, false, true, true)},
		rightTurn.Clone(), halfTurnT.Clone(), fallback.Clone(), fallbackT.Clone(), abnormalExit); err != nil {
		return nil, err
	}
	if err := register([]int{judge.EdgeCode(true, true, false, true)},
		leftTurn.Clone(), halfTurnT.Clone(), fallback.Clone(), fallbackT.Clone(), abnormalExit); err != nil {
		return nil, err
	}
	// Every corner over: freeze and hand control back.
	if err := reg.Register(judge.EdgeCode(true, true, true, true), abnormalExit); err != nil {
		return nil, err
	}
	if err := reg.EnsureCovered(judge.AllSideCodes()); err != nil {
		return nil, err
	}

	head, err := chain(&pool, start,
		motion.Dispatch(secs(b.Run.Perf.MinSyncInterval), fullBreaker, reg.Export()))
	if err != nil {
		return nil, err
	}

	return &Graph{Start: head, NormalExit: normalExit, AbnormalExit: abnormalExit, Transitions: pool}, nil
}
