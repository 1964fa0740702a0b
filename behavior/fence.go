package behavior

import (
	"github.com/kazurobot/kazu-core/config"
	"github.com/kazurobot/kazu-core/judge"
	"github.com/kazurobot/kazu-core/light"
	"github.com/kazurobot/kazu-core/motion"
	"github.com/kazurobot/kazu-core/sense"
)

// Fence builds the perimeter graph. Single-side contact aligns against the
// wall and returns to stage center; corner contact escapes through the open
// diagonal; a boxed-in or silent reading falls back to a random walk.
func (b *Builder) Fence(start, endState *motion.MoveState) (*Graph, error) {
	conf := b.Run.Fence

	fenceBreaker, err := b.Judges.Fence()
	if err != nil {
		return nil, err
	}
	var alignBreaker sense.BoolBreaker
	if conf.UseMPUAlign {
		alignBreaker, err = b.Judges.StageAlignMPU()
	} else {
		alignBreaker, err = b.Judges.StageAlign()
	}
	if err != nil {
		return nil, err
	}

	if start == nil {
		if start, err = b.continues(); err != nil {
			return nil, err
		}
	}
	if endState == nil {
		endState = motion.Halt()
	}

	hook, err := b.lightHook("fence", light.Blue, light.Yellow)
	if err != nil {
		return nil, err
	}

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

	// All clear: pass through.
	if err := reg.Register(judge.FenceCode(false, false, false, false), endState); err != nil {
		return nil, err
	}

	// Single side: turn until squared against the wall, then run the
	// back-to-stage dash. The aligned flag brackets the maneuver so the
	// composition can tell an interrupted align from a finished one.
	alignState, err := b.turnOrRand(conf.StageAlignDirection, conf.StageAlignSpeed)
	if err != nil {
		return nil, err
	}
	alignState.BeforeEntering(func(ctx *motion.Context) { ctx.Set(config.CtxIsAligned, false) })
	alignState.AfterExiting(func(ctx *motion.Context) { ctx.Set(config.CtxIsAligned, true) })

	backPack, err := b.BackToStage(endState)
	if err != nil {
		return nil, err
	}
	pool = append(pool, backPack.Transitions...)

	alignT := motion.When(secs(conf.MaxStageAlignDuration), alignBreaker)
	alignHead, err := chain(&pool, alignState, alignT, backPack.Head())
	if err != nil {
		return nil, err
	}
	withLight(alignHead, hook)
	singles := []int{
		judge.FenceCode(true, false, false, false),
		judge.FenceCode(false, true, false, false),
		judge.FenceCode(false, false, true, false),
		judge.FenceCode(false, false, false, true),
	}
	if err := reg.BatchRegister(singles, alignHead); err != nil {
		return nil, err
	}

	// Corners: escape straight through the open diagonal.
	rearExit := motion.Straight(-conf.ExitCornerSpeed)
	frontExit := motion.Straight(conf.ExitCornerSpeed)
	exitT := motion.After(secs(conf.MaxExitCornerDuration))
	if err := register([]int{
		judge.FenceCode(true, false, true, false),
		judge.FenceCode(true, false, false, true),
	}, rearExit.Clone(), exitT.Clone(), endState); err != nil {
		return nil, err
	}
	if err := register([]int{
		judge.FenceCode(false, true, true, false),
		judge.FenceCode(false, true, false, true),
	}, frontExit.Clone(), exitT.Clone(), endState); err != nil {
		return nil, err
	}

	// Three sides blocked: leave through the one that is open.
	leftTurn, err := motion.Turn("l", conf.ExitCornerSpeed)
	if err != nil {
		return nil, err
	}
	rightTurn, err := motion.Turn("r", conf.ExitCornerSpeed)
	if err != nil {
		return nil, err
	}
	halfExitT := motion.After(secs(conf.MaxExitCornerDuration) / 2)
	if err := register([]int{judge.FenceCode(true, true, true, false)},
		rightTurn.Clone(), halfExitT.Clone(), frontExit.Clone(), exitT.Clone(), endState); err != nil {
		return nil, err
	}
	if err := register([]int{judge.FenceCode(true, true, false, true)},
		leftTurn.Clone(), halfExitT.Clone(), frontExit.Clone(), exitT.Clone(), endState); err != nil {
		return nil, err
	}
	if err := register([]int{judge.FenceCode(true, false, true, true)},
		rearExit.Clone(), exitT.Clone(), endState); err != nil {
		return nil, err
	}
	if err := register([]int{judge.FenceCode(false, true, true, true)},
		frontExit.Clone(), exitT.Clone(), endState); err != nil {
		return nil, err
	}

	// Walls on both flanks: square up with the corridor before the next
	// poll decides where to go.
	alignDirPack, err := b.AlignDirection(endState)
	if err != nil {
		return nil, err
	}
	pool = append(pool, alignDirPack.Transitions...)
	withLight(alignDirPack.Head(), hook)
	if err := reg.Register(judge.FenceCode(false, false, true, true), alignDirPack.Head()); err != nil {
		return nil, err
	}

	// Blocked ahead and astern, or boxed in entirely: wander until the
	// picture changes.
	walkPack, err := b.RandWalk(endState)
	if err != nil {
		return nil, err
	}
	pool = append(pool, walkPack.Transitions...)
	withLight(walkPack.Head(), hook)
	if err := reg.BatchRegister([]int{
		judge.FenceCode(true, true, false, false),
		judge.FenceCode(true, true, true, true),
	}, walkPack.Head()); err != nil {
		return nil, err
	}

	if err := reg.EnsureCovered(judge.AllSideCodes()); err != nil {
		return nil, err
	}

	head, err := chain(&pool, start,
		motion.Dispatch(secs(b.Run.Perf.MinSyncInterval), fenceBreaker, reg.Export()))
	if err != nil {
		return nil, err
	}

	return &Graph{Start: head, NormalExit: endState, AbnormalExit: endState, Transitions: pool}, nil
}

// AlignDirection builds the corridor-alignment fragment: turn in the
// configured direction until exactly two opposing sides read blocked or the
// window closes.
func (b *Builder) AlignDirection(endState *motion.MoveState) (Pack, error) {
	conf := b.Run.Fence

	alignState, err := b.turnOrRand(conf.DirectionAlignDirection, conf.DirectionAlignSpeed)
	if err != nil {
		return Pack{}, err
	}
	var breaker sense.BoolBreaker
	if conf.UseMPUAlign {
		breaker, err = b.Judges.AlignDirectionMPU()
	} else {
		breaker, err = b.Judges.AlignDirection()
	}
	if err != nil {
		return Pack{}, err
	}

	c := motion.NewChainComposer()
	c.AddState(alignState)
	c.AddTransition(motion.When(secs(conf.MaxDirectionAlignDuration), breaker))
	c.AddState(endState)
	states, transitions, err := c.Export()
	if err != nil {
		return Pack{}, err
	}
	return Pack{States: states, Transitions: transitions}, nil
}

// RandWalk builds the wander fragment: a short straight leg, a randomized
// turn, then out.
func (b *Builder) RandWalk(endState *motion.MoveState) (Pack, error) {
	conf := b.Run.Search.RandWalk

	straight := motion.Straight(conf.StraightSpeed).
		BeforeEntering(recordSalvo(conf.StraightSpeed))
	turn := motion.RandDirTurn(b.RNG, conf.TurnSpeed, conf.TurnLeftProb)

	c := motion.NewChainComposer()
	c.AddState(straight)
	c.AddTransition(motion.After(secs(conf.StraightDuration)))
	c.AddState(turn)
	c.AddTransition(motion.After(secs(conf.TurnDuration)))
	c.AddState(endState)
	states, transitions, err := c.Export()
	if err != nil {
		return Pack{}, err
	}
	return Pack{States: states, Transitions: transitions}, nil
}
