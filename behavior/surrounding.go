package behavior

import (
	"github.com/kazurobot/kazu-core/judge"
	"github.com/kazurobot/kazu-core/light"
	"github.com/kazurobot/kazu-core/motion"
)

// front object classes, in dominance order
var frontClasses = []int{
	judge.FrontNothing,
	judge.FrontAllyBox,
	judge.FrontNeutralBox,
	judge.FrontEnemyBox,
	judge.FrontEnemyCar,
}

// codesWith returns the surrounding codes combining the given side flags
// with each of the listed front classes.
func codesWith(fronts []int, left, right, behind bool) []int {
	codes := make([]int, 0, len(fronts))
	for _, front := range fronts {
		code, err := judge.SurroundingCode(front, left, right, behind)
		if err != nil {
			panic(err)
		}
		codes = append(codes, code)
	}
	return codes
}

// Surrounding builds the combat graph. The head polls the surrounding code:
// the front object class picks the salvo (enemy robot charged hardest,
// cargo by allegiance, ally cargo retreated from without engaging), the
// side flags pick the turn that brings the threat ahead first.
func (b *Builder) Surrounding(start, normalExit, abnormalExit *motion.MoveState) (*Graph, error) {
	conf := b.Run.Surrounding

	surrBreaker, err := b.Judges.Surrounding()
	if err != nil {
		return nil, err
	}
	atkBreaker, err := b.Judges.Attack()
	if err != nil {
		return nil, err
	}
	rearBreaker, err := b.Judges.EdgeRear()
	if err != nil {
		return nil, err
	}
	toFrontBreaker, err := b.Judges.TurnToFront()
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

	hook, err := b.lightHook("combat", light.Purple, light.Red)
	if err != nil {
		return nil, err
	}

	atkEnemyCar := motion.Straight(conf.AtkSpeedEnemyCar).
		BeforeEntering(recordSalvo(conf.AtkSpeedEnemyCar))
	atkEnemyBox := motion.Straight(conf.AtkSpeedEnemyBox).
		BeforeEntering(recordSalvo(conf.AtkSpeedEnemyBox))
	atkNeutralBox := motion.Straight(conf.AtkSpeedNeutralBox).
		BeforeEntering(recordSalvo(conf.AtkSpeedNeutralBox))
	allyFallback := motion.Straight(-conf.FallbackSpeedAllyBox)
	edgeFallback := motion.Straight(-conf.FallbackSpeedEdge)

	atkEnemyCarT := motion.When(secs(conf.AtkEnemyCarDuration), atkBreaker)
	atkEnemyBoxT := motion.When(secs(conf.AtkEnemyBoxDuration), atkBreaker)
	atkNeutralBoxT := motion.When(secs(conf.AtkNeutralBoxDuration), atkBreaker)
	allyFallbackT := motion.When(secs(conf.FallbackDurationAllyBox), rearBreaker)
	edgeFallbackT := motion.When(secs(conf.FallbackDurationEdge), rearBreaker)

	randTurn := motion.RandDirTurn(b.RNG, conf.TurnSpeed, conf.TurnLeftProb)
	leftTurn, err := motion.Turn("l", conf.TurnSpeed)
	if err != nil {
		return nil, err
	}
	rightTurn, err := motion.Turn("r", conf.TurnSpeed)
	if err != nil {
		return nil, err
	}
	randSpdLeft, err := motion.RandSpdTurn(b.RNG, "l", conf.RandTurnSpeeds, conf.RandTurnSpeedWeights)
	if err != nil {
		return nil, err
	}
	randSpdRight, err := motion.RandSpdTurn(b.RNG, "r", conf.RandTurnSpeeds, conf.RandTurnSpeedWeights)
	if err != nil {
		return nil, err
	}

	fullTurnT := motion.When(secs(conf.FullTurnDuration), toFrontBreaker)
	halfTurnT := motion.When(secs(conf.HalfTurnDuration), toFrontBreaker)

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

	if err := reg.Register(judge.FrontNothing, normalExit); err != nil {
		return nil, err
	}

	// Enemy robot ahead: charge, then back off the contact edge and shake
	// loose with a random turn. Side flags are irrelevant while charging.
	if err := register(codesWith([]int{judge.FrontEnemyCar}, false, false, false),
		atkEnemyCar.Clone(), atkEnemyCarT.Clone(),
		edgeFallback.Clone(), edgeFallbackT.Clone(),
		randTurn.Clone(), fullTurnT.Clone(), abnormalExit); err != nil {
		return nil, err
	}
	for _, flags := range [][3]bool{{true, false, false}, {false, true, false}, {false, false, true},
		{true, true, false}, {true, false, true}, {false, true, true}, {true, true, true}} {
		if err := register(codesWith([]int{judge.FrontEnemyCar}, flags[0], flags[1], flags[2]),
			atkEnemyCar.Clone(), atkEnemyCarT.Clone(),
			edgeFallback.Clone(), edgeFallbackT.Clone(),
			randTurn.Clone(), fullTurnT.Clone(), abnormalExit); err != nil {
			return nil, err
		}
	}

	// Something behind with nothing chargeable ahead: full turn to face it,
	// then charge.
	behindFronts := []int{judge.FrontNothing, judge.FrontAllyBox, judge.FrontNeutralBox, judge.FrontEnemyBox}
	if err := register(append(codesWith(behindFronts, false, false, true),
		codesWith(behindFronts, true, true, true)...),
		randTurn.Clone(), fullTurnT.Clone(),
		atkEnemyCar.Clone(), atkEnemyCarT.Clone(),
		edgeFallback.Clone(), edgeFallbackT.Clone(),
		randTurn.Clone(), fullTurnT.Clone(), abnormalExit); err != nil {
		return nil, err
	}

	// One flank blocked: half turn toward it, then charge.
	sideFronts := behindFronts
	if err := register(codesWith(sideFronts, true, false, false),
		leftTurn.Clone(), halfTurnT.Clone(),
		atkEnemyCar.Clone(), atkEnemyCarT.Clone(),
		edgeFallback.Clone(), edgeFallbackT.Clone(),
		randTurn.Clone(), fullTurnT.Clone(), abnormalExit); err != nil {
		return nil, err
	}
	if err := register(codesWith(sideFronts, false, true, false),
		rightTurn.Clone(), halfTurnT.Clone(),
		atkEnemyCar.Clone(), atkEnemyCarT.Clone(),
		edgeFallback.Clone(), edgeFallbackT.Clone(),
		randTurn.Clone(), fullTurnT.Clone(), abnormalExit); err != nil {
		return nil, err
	}
	// Both flanks: pick a side at random.
	if err := register(codesWith(sideFronts, true, true, false),
		randTurn.Clone(), halfTurnT.Clone(),
		atkEnemyCar.Clone(), atkEnemyCarT.Clone(),
		edgeFallback.Clone(), edgeFallbackT.Clone(),
		randTurn.Clone(), fullTurnT.Clone(), abnormalExit); err != nil {
		return nil, err
	}
	// Flank plus rear: turn through the flank at a randomized speed so the
	// sweep does not settle into a predictable arc.
	if err := register(codesWith(sideFronts, true, false, true),
		randSpdLeft.Clone(), fullTurnT.Clone(),
		atkEnemyCar.Clone(), atkEnemyCarT.Clone(),
		edgeFallback.Clone(), edgeFallbackT.Clone(),
		randTurn.Clone(), fullTurnT.Clone(), abnormalExit); err != nil {
		return nil, err
	}
	if err := register(codesWith(sideFronts, false, true, true),
		randSpdRight.Clone(), fullTurnT.Clone(),
		atkEnemyCar.Clone(), atkEnemyCarT.Clone(),
		edgeFallback.Clone(), edgeFallbackT.Clone(),
		randTurn.Clone(), fullTurnT.Clone(), abnormalExit); err != nil {
		return nil, err
	}

	// Clean front contacts with no side pressure.
	if err := register([]int{judge.FrontEnemyBox},
		atkEnemyBox.Clone(), atkEnemyBoxT.Clone(),
		edgeFallback.Clone(), edgeFallbackT.Clone(),
		randTurn.Clone(), fullTurnT.Clone(), abnormalExit); err != nil {
		return nil, err
	}
	if err := register([]int{judge.FrontNeutralBox},
		atkNeutralBox.Clone(), atkNeutralBoxT.Clone(),
		edgeFallback.Clone(), edgeFallbackT.Clone(),
		randTurn.Clone(), fullTurnT.Clone(), abnormalExit); err != nil {
		return nil, err
	}
	// Ally cargo: retreat without engaging.
	if err := register([]int{judge.FrontAllyBox},
		allyFallback.Clone(), allyFallbackT.Clone(),
		randTurn.Clone(), fullTurnT.Clone(), abnormalExit); err != nil {
		return nil, err
	}

	if err := reg.EnsureCovered(allSurroundingCodes()); err != nil {
		return nil, err
	}

	head, err := chain(&pool, start,
		motion.Dispatch(secs(b.Run.Perf.MinSyncInterval), surrBreaker, reg.Export()))
	if err != nil {
		return nil, err
	}

	return &Graph{Start: head, NormalExit: normalExit, AbnormalExit: abnormalExit, Transitions: pool}, nil
}

// allSurroundingCodes enumerates every reachable surrounding code: each
// front class crossed with each flag combination.
func allSurroundingCodes() []int {
	var codes []int
	for _, front := range frontClasses {
		for flags := 0; flags < 8; flags++ {
			codes = append(codes, front+flags)
		}
	}
	return codes
}
