package behavior

import (
	"fmt"

	"github.com/kazurobot/kazu-core/config"
	"github.com/kazurobot/kazu-core/hardware"
	"github.com/kazurobot/kazu-core/judge"
	"github.com/kazurobot/kazu-core/motion"
	"github.com/kazurobot/kazu-core/sense"
)

// OnStageCore builds the main combat loop walked while the robot stands on
// the stage: edge recovery wraps surrounding combat wraps search, with each
// layer falling through to the next on all-clear and the whole loop cycling
// back to the edge poll. Abnormal exits leave through exit so the
// composition can re-check the stage situation.
//
// Strategy toggles drop disabled layers out of the chain.
func (b *Builder) OnStageCore(board hardware.Board, exit *motion.MoveState) (*Graph, error) {
	strat := b.Run.Strategy

	// The loop anchor closes the cycle: whichever layer runs last hands
	// control back to the loop entry through it.
	loop := motion.Halt()

	var entry *motion.MoveState
	var pool []*motion.Transition

	// Innermost layer first, so each outer layer can point at it.
	next := loop
	if strat.UseScanComponent {
		searchPack, err := b.Search(board, loop)
		if err != nil {
			return nil, err
		}
		pool = append(pool, searchPack.Transitions...)
		next = searchPack.Head()
	}

	if strat.UseSurroundingComponent {
		surrStart, err := b.continues()
		if err != nil {
			return nil, err
		}
		surrGraph, err := b.Surrounding(surrStart, next, exit)
		if err != nil {
			return nil, err
		}
		pool = append(pool, surrGraph.Transitions...)
		next = surrGraph.Start
	}

	if strat.UseEdgeComponent {
		edgeStart, err := b.continues()
		if err != nil {
			return nil, err
		}
		edgeGraph, err := b.Edge(edgeStart, next, exit)
		if err != nil {
			return nil, err
		}
		pool = append(pool, edgeGraph.Transitions...)
		entry = edgeGraph.Start
	} else {
		entry = next
	}

	if entry == loop {
		return nil, fmt.Errorf("on-stage core: every component disabled")
	}

	back := motion.After(secs(b.Run.Perf.MinSyncInterval))
	back.From = loop
	back.Next = entry
	pool = append(pool, back)

	return &Graph{Start: entry, NormalExit: loop, AbnormalExit: exit, Transitions: pool}, nil
}

// Battle builds the full graph for one run mode: a top-level dispatch on
// the 4-valued stage code selects among the back-to-stage dash (off
// stage), the on-stage core, and the launch sequence (reboot requested),
// and every branch funnels back into the dispatch.
func (b *Builder) Battle(board hardware.Board, mode config.RunMode) (*Graph, error) {
	perf := b.Run.Perf

	dispatch := motion.Halt()

	if mode == config.ModeOffStageDashLoop {
		// Dash drill: the launch sequence chained back onto itself.
		rebootPack, err := b.Reboot(dispatch)
		if err != nil {
			return nil, err
		}
		pool := rebootPack.Transitions
		again := motion.After(secs(perf.MinSyncInterval))
		again.From = dispatch
		again.Next = rebootPack.Head()
		pool = append(pool, again)
		b.Ctx.Set(config.CtxOnStage, false)
		return &Graph{Start: rebootPack.Head(), NormalExit: dispatch, AbnormalExit: dispatch, Transitions: pool}, nil
	}

	var stageBreaker sense.IntBreaker
	var err error
	switch mode {
	case config.ModeAlwaysOnStage:
		stageBreaker, err = b.Judges.AlwaysOnStage()
	case config.ModeAlwaysOffStage:
		stageBreaker, err = b.Judges.AlwaysOffStage()
	case config.ModeOnStageStart, config.ModeOffStageStart:
		stageBreaker, err = b.Judges.Stage()
	default:
		return nil, fmt.Errorf("unknown run mode: %q", mode)
	}
	if err != nil {
		return nil, err
	}
	b.Ctx.Set(config.CtxOnStage, mode == config.ModeAlwaysOnStage || mode == config.ModeOnStageStart)

	core, err := b.OnStageCore(board, dispatch)
	if err != nil {
		return nil, err
	}

	// Knocked off the stage: the fence graph reads the perimeter and works
	// back to the stage; without it, a blind recovery dash.
	var offHead *motion.MoveState
	var offTransitions []*motion.Transition
	if b.Run.Strategy.UseFenceComponent {
		fenceStart, err := b.continues()
		if err != nil {
			return nil, err
		}
		fenceGraph, err := b.Fence(fenceStart, dispatch)
		if err != nil {
			return nil, err
		}
		offHead, offTransitions = fenceGraph.Start, fenceGraph.Transitions
	} else {
		offPack, err := b.BackToStage(dispatch)
		if err != nil {
			return nil, err
		}
		offHead, offTransitions = offPack.Head(), offPack.Transitions
	}

	rebootPack, err := b.Reboot(dispatch)
	if err != nil {
		return nil, err
	}

	pool := append(core.Transitions, offTransitions...)
	pool = append(pool, rebootPack.Transitions...)

	branches := map[int]*motion.MoveState{
		judge.StageCode(false, false): offHead,
		judge.StageCode(true, false):  core.Start,
		judge.StageCode(false, true):  rebootPack.Head(),
		judge.StageCode(true, true):   rebootPack.Head(),
	}
	head := motion.Dispatch(secs(perf.CheckingInterval), stageBreaker, branches)
	head.From = dispatch
	pool = append(pool, head)

	return &Graph{Start: dispatch, NormalExit: dispatch, AbnormalExit: dispatch, Transitions: pool}, nil
}
