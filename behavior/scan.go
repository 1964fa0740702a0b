package behavior

import (
	"github.com/kazurobot/kazu-core/config"
	"github.com/kazurobot/kazu-core/hardware"
	"github.com/kazurobot/kazu-core/judge"
	"github.com/kazurobot/kazu-core/motion"
)

// Scan builds the slow-spin search fragment. On entry the current ADC pack
// is recorded as the baseline; the spin then runs until a side's reading
// climbs past its tolerance over that baseline, and the dispatch turns the
// robot toward whatever moved.
func (b *Builder) Scan(board hardware.Board, endState *motion.MoveState) (Pack, error) {
	conf := b.Run.Search.ScanMove

	scanBreaker, err := b.Judges.Scan()
	if err != nil {
		return Pack{}, err
	}
	rearBreaker, err := b.Judges.EdgeRear()
	if err != nil {
		return Pack{}, err
	}
	toFrontBreaker, err := b.Judges.TurnToFront()
	if err != nil {
		return Pack{}, err
	}

	if endState == nil {
		endState = motion.Halt()
	}

	scanState := motion.RandDirTurn(b.RNG, conf.ScanSpeed, conf.ScanTurnLeftProb)
	// Baseline snapshot, taken once per scan entry.
	scanState.BeforeEntering(func(ctx *motion.Context) {
		pack := append([]float64(nil), board.ADCAll()...)
		ctx.Set(config.CtxRecordedPack, pack)
	})

	randTurn := motion.RandDirTurn(b.RNG, conf.TurnSpeed, conf.TurnLeftProb)
	leftTurn, err := motion.Turn("l", conf.TurnSpeed)
	if err != nil {
		return Pack{}, err
	}
	rightTurn, err := motion.Turn("r", conf.TurnSpeed)
	if err != nil {
		return Pack{}, err
	}
	fullTurnT := motion.When(secs(b.Run.Surrounding.FullTurnDuration), toFrontBreaker)
	halfTurnT := motion.When(secs(b.Run.Surrounding.HalfTurnDuration), toFrontBreaker)

	fallback := motion.Straight(-conf.FallBackSpeed)
	fallbackT := motion.When(secs(conf.FallBackDuration), rearBreaker)

	var pool []*motion.Transition
	reg := motion.NewCaseRegistry()

	register := func(codes []int, parts ...any) error {
		head, err := chain(&pool, parts...)
		if err != nil {
			return err
		}
		return reg.BatchRegister(codes, head)
	}

	// Nothing moved: the window expired, hand over.
	if err := reg.Register(judge.ScanCode(false, false, false, false), endState); err != nil {
		return Pack{}, err
	}
	// Contact dead ahead: it is probably pushing, open the gap first.
	if err := register([]int{judge.ScanCode(true, false, false, false)},
		fallback.Clone(), fallbackT.Clone(), endState); err != nil {
		return Pack{}, err
	}
	// Anything behind: full turn to face it.
	var rearCodes []int
	for _, flags := range [][3]bool{
		{false, false, false}, {true, false, false}, {false, true, false}, {false, false, true},
		{true, true, false}, {true, false, true}, {false, true, true}, {true, true, true},
	} {
		rearCodes = append(rearCodes, judge.ScanCode(flags[0], true, flags[1], flags[2]))
	}
	if err := register(rearCodes,
		randTurn.Clone(), fullTurnT.Clone(), endState); err != nil {
		return Pack{}, err
	}
	// One flank: half turn toward it.
	if err := register([]int{
		judge.ScanCode(false, false, true, false),
		judge.ScanCode(true, false, true, false),
	}, leftTurn.Clone(), halfTurnT.Clone(), endState); err != nil {
		return Pack{}, err
	}
	if err := register([]int{
		judge.ScanCode(false, false, false, true),
		judge.ScanCode(true, false, false, true),
	}, rightTurn.Clone(), halfTurnT.Clone(), endState); err != nil {
		return Pack{}, err
	}
	// Front plus both flanks: open the gap and leave the pocket.
	if err := register([]int{judge.ScanCode(true, false, true, true)},
		fallback.Clone(), fallbackT.Clone(), endState); err != nil {
		return Pack{}, err
	}
	// Both flanks only: back out, then pick a side.
	if err := register([]int{judge.ScanCode(false, false, true, true)},
		fallback.Clone(), fallbackT.Clone(), randTurn.Clone(), halfTurnT.Clone(), endState); err != nil {
		return Pack{}, err
	}

	if err := reg.EnsureCovered(judge.AllSideCodes()); err != nil {
		return Pack{}, err
	}

	c := motion.NewChainComposer()
	c.AddState(scanState)
	c.AddTransition(motion.Dispatch(secs(conf.ScanDuration), scanBreaker, reg.Export()))
	states, transitions, err := c.Export()
	if err != nil {
		return Pack{}, err
	}
	return Pack{States: states, Transitions: append(transitions, pool...)}, nil
}
