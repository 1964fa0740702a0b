package behavior

import (
	"github.com/kazurobot/kazu-core/config"
	"github.com/kazurobot/kazu-core/light"
	"github.com/kazurobot/kazu-core/motion"
)

// Reboot builds the launch fragment: hold still until both launch triggers
// activate in the same poll, then dash onto the stage, settle, and swing to
// a random heading. A single covered trigger never starts the dash; only
// the timeout does.
func (b *Builder) Reboot(endState *motion.MoveState) (Pack, error) {
	conf := b.Run.Boot

	launchBreaker, err := b.Judges.Launch()
	if err != nil {
		return Pack{}, err
	}

	if endState == nil {
		endState = motion.Halt()
	}

	hook, err := b.lightHook("launch", light.Orange, light.White)
	if err != nil {
		return Pack{}, err
	}

	hold := withLight(motion.Halt(), hook)
	dash := motion.Straight(-conf.DashSpeed)
	// The dash carries the robot onto the stage; flag it for the
	// composition before the next stage poll.
	dash.AfterExiting(func(ctx *motion.Context) {
		ctx.Set(config.CtxOnStage, true)
		ctx.Set(config.CtxReset, false)
	})
	turn := motion.RandDirTurn(b.RNG, conf.TurnSpeed, conf.TurnLeftProb)

	c := motion.NewChainComposer()
	c.AddState(hold)
	c.AddTransition(motion.When(secs(conf.MaxHoldingDuration), launchBreaker))
	c.AddState(dash)
	c.AddTransition(motion.After(secs(conf.DashDuration)))
	c.AddState(motion.Halt())
	c.AddTransition(motion.After(secs(conf.TimeToStabilize)))
	c.AddState(turn)
	c.AddTransition(motion.After(secs(conf.FullTurnDuration)))
	c.AddState(endState)
	states, transitions, err := c.Export()
	if err != nil {
		return Pack{}, err
	}
	return Pack{States: states, Transitions: transitions}, nil
}

// BackToStage builds the recovery dash used after getting knocked off: a
// small advance to clear the fence, a settle, a reverse dash up the ramp,
// another settle, then a random swing to break line of sight.
func (b *Builder) BackToStage(endState *motion.MoveState) (Pack, error) {
	conf := b.Run.BackStage
	boot := b.Run.Boot

	if endState == nil {
		endState = motion.Halt()
	}

	dash := motion.Straight(-boot.DashSpeed)
	dash.AfterExiting(func(ctx *motion.Context) {
		ctx.Set(config.CtxOnStage, true)
	})

	c := motion.NewChainComposer()
	c.AddState(motion.Straight(conf.SmallAdvanceSpeed))
	c.AddTransition(motion.After(secs(conf.SmallAdvanceDuration)))
	c.AddState(motion.Halt())
	c.AddTransition(motion.After(secs(conf.TimeToStabilize)))
	c.AddState(dash)
	c.AddTransition(motion.After(secs(boot.DashDuration)))
	c.AddState(motion.Halt())
	c.AddTransition(motion.After(secs(conf.TimeToStabilize)))
	c.AddState(motion.RandDirTurn(b.RNG, boot.TurnSpeed, boot.TurnLeftProb))
	c.AddTransition(motion.After(secs(conf.FullTurnDuration)))
	c.AddState(endState)
	states, transitions, err := c.Export()
	if err != nil {
		return Pack{}, err
	}
	return Pack{States: states, Transitions: transitions}, nil
}
