// Package behavior assembles the tactical movement graphs: one builder per
// behavior (edge recovery, surrounding combat, fence, scan, search, boot,
// back-to-stage) plus the battle compositions that stitch them together
// per run mode. Handlers only construct graphs; walking them is the
// runner's job.
package behavior

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/kazurobot/kazu-core/config"
	"github.com/kazurobot/kazu-core/judge"
	"github.com/kazurobot/kazu-core/light"
	"github.com/kazurobot/kazu-core/motion"
)

// Builder carries everything a handler needs to construct its graph.
type Builder struct {
	App    *config.App
	Run    *config.Run
	Judges *judge.Factory
	Ctx    *motion.Context
	RNG    *rand.Rand
	Lights *light.Registry
	Log    *slog.Logger
}

// NewBuilder wires a behavior builder.
func NewBuilder(app *config.App, run *config.Run, judges *judge.Factory, ctx *motion.Context, rng *rand.Rand, lights *light.Registry, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{App: app, Run: run, Judges: judges, Ctx: ctx, RNG: rng, Lights: lights, Log: log}
}

// Graph is one behavior's finished movement graph. NormalExit is reached
// when the situation resolved cleanly, AbnormalExit when the behavior had
// to take evasive action; compositions wire the two differently.
type Graph struct {
	Start        *motion.MoveState
	NormalExit   *motion.MoveState
	AbnormalExit *motion.MoveState
	Transitions  []*motion.Transition
}

// Pack is a reusable chain fragment: its states in order plus the wired
// transitions, ready for splicing or dispatch registration.
type Pack struct {
	States      []*motion.MoveState
	Transitions []*motion.Transition
}

// Head is the fragment's entry state.
func (p Pack) Head() *motion.MoveState { return p.States[0] }

// secs converts a configured duration in seconds.
func secs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// continues returns a state that resumes the previously recorded salvo
// speed, the standard entry posture of every interrupting behavior.
func (b *Builder) continues() (*motion.MoveState, error) {
	return motion.FromContext(config.CtxPrevSalvoSpeed, []string{config.CtxPrevSalvoSpeed})
}

// recordSalvo returns a callback that stores the given speed as the salvo
// to resume after the next interruption. Updates happen between
// transitions only, never mid-poll.
func recordSalvo(speed int) motion.Callback {
	return func(ctx *motion.Context) {
		ctx.Set(config.CtxPrevSalvoSpeed, speed)
	}
}

// turnOrRand resolves a configured align direction into a turn state.
func (b *Builder) turnOrRand(dir string, speed int) (*motion.MoveState, error) {
	switch dir {
	case "l", "r":
		return motion.Turn(dir, speed)
	case "rand":
		return motion.RandDirTurn(b.RNG, speed, 0.5), nil
	default:
		return nil, fmt.Errorf("invalid align direction: %q", dir)
	}
}

// chain composes an alternating state/transition sequence, appends the
// wired transitions to pool and returns the head state. parts must start
// with a state; a trailing state may be shared with other chains.
func chain(pool *[]*motion.Transition, parts ...any) (*motion.MoveState, error) {
	c := motion.NewChainComposer()
	for _, part := range parts {
		switch v := part.(type) {
		case *motion.MoveState:
			c.AddState(v)
		case *motion.Transition:
			c.AddTransition(v)
		default:
			return nil, fmt.Errorf("chain part %T is neither state nor transition", part)
		}
	}
	states, transitions, err := c.Export()
	if err != nil {
		return nil, err
	}
	*pool = append(*pool, transitions...)
	return states[0], nil
}

// lightHook returns a callback flashing the purpose's color pair, or nil
// when status lights are disabled.
func (b *Builder) lightHook(purpose string, a, c light.Color) (motion.Callback, error) {
	if !b.App.Feature.UseStatusLights || b.Lights == nil {
		return nil, nil
	}
	set, err := b.Lights.Setter(purpose, a, c)
	if err != nil {
		return nil, err
	}
	return func(*motion.Context) { set() }, nil
}

// withLight attaches the hook as a before-entering callback when present.
func withLight(s *motion.MoveState, hook motion.Callback) *motion.MoveState {
	if hook != nil {
		s.BeforeEntering(hook)
	}
	return s
}
