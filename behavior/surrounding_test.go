package behavior

import (
	"context"
	"testing"
	"time"

	"github.com/kazurobot/kazu-core/config"
	"github.com/kazurobot/kazu-core/judge"
	"github.com/kazurobot/kazu-core/motion"
)

func TestSurroundingCoversEveryCode(t *testing.T) {
	f := newFixture(t, nil)
	g, err := f.b.Surrounding(nil, nil, nil)
	if err != nil {
		t.Fatalf("Surrounding failed: %v", err)
	}
	assertSingleOutgoing(t, g.Transitions)

	d := dispatchFrom(t, g.Transitions, g.Start)
	codes := allSurroundingCodes()
	if len(codes) != 40 {
		t.Fatalf("code space holds %d codes, want 40", len(codes))
	}
	for _, code := range codes {
		if d.Branches[code] == nil {
			t.Errorf("code %d has no branch", code)
		}
	}
	if d.Branches[judge.FrontNothing] != g.NormalExit {
		t.Errorf("empty surroundings must pass to the normal exit")
	}
}

func TestSurroundingSalvoByFrontClass(t *testing.T) {
	f := newFixture(t, nil)
	g, err := f.b.Surrounding(nil, nil, nil)
	if err != nil {
		t.Fatalf("Surrounding failed: %v", err)
	}
	d := dispatchFrom(t, g.Transitions, g.Start)

	cases := []struct {
		name  string
		front int
		want  int
	}{
		{"enemy robot charged hardest", judge.FrontEnemyCar, 5000},
		{"enemy cargo", judge.FrontEnemyBox, 4000},
		{"neutral cargo", judge.FrontNeutralBox, 3500},
		{"ally cargo retreated from", judge.FrontAllyBox, -2800},
	}
	for _, tc := range cases {
		got := f.wheelSpeeds(t, d.Branches[tc.front])
		if got != [4]int{tc.want, tc.want, tc.want, tc.want} {
			t.Errorf("%s: entry speeds %v, want all %d", tc.name, got, tc.want)
		}
	}
}

func TestSurroundingFlankTurns(t *testing.T) {
	f := newFixture(t, nil)
	g, err := f.b.Surrounding(nil, nil, nil)
	if err != nil {
		t.Fatalf("Surrounding failed: %v", err)
	}
	d := dispatchFrom(t, g.Transitions, g.Start)

	if got := f.wheelSpeeds(t, d.Branches[judge.SurroundingLeft]); got != [4]int{-3200, -3200, 3200, 3200} {
		t.Errorf("left flank turns %v, want left", got)
	}
	if got := f.wheelSpeeds(t, d.Branches[judge.SurroundingRight]); got != [4]int{3200, 3200, -3200, -3200} {
		t.Errorf("right flank turns %v, want right", got)
	}
}

// The ally-cargo chain must never pass through an attack state.
func TestSurroundingAllyChainNeverEngages(t *testing.T) {
	f := newFixture(t, nil)
	g, err := f.b.Surrounding(nil, nil, nil)
	if err != nil {
		t.Fatalf("Surrounding failed: %v", err)
	}
	d := dispatchFrom(t, g.Transitions, g.Start)

	out := make(map[*motion.MoveState]*motion.Transition)
	for _, tr := range g.Transitions {
		out[tr.From] = tr
	}
	for s := d.Branches[judge.FrontAllyBox]; s != nil && s != g.AbnormalExit; {
		speeds := f.wheelSpeeds(t, s)
		for _, v := range speeds {
			if v >= 3500 {
				t.Fatalf("ally chain reaches attack speeds %v", speeds)
			}
		}
		tr := out[s]
		if tr == nil {
			break
		}
		s = tr.Next
	}
}

// Enemy robot ahead without a camera: charge, record the salvo, shake loose.
func TestSurroundingChargeEndToEnd(t *testing.T) {
	f := newFixture(t, nil)
	f.run.Surrounding.AtkEnemyCarDuration = 0.002
	f.run.Surrounding.FallbackDurationEdge = 0.002
	f.run.Surrounding.FullTurnDuration = 0.002
	f.run.Perf.MinSyncInterval = 0.001
	f.board.adc[4] = 1500 // front occupied

	g, err := f.b.Surrounding(nil, nil, nil)
	if err != nil {
		t.Fatalf("Surrounding failed: %v", err)
	}

	act := &recController{}
	r := motion.NewRunner(act, f.ctx, time.Millisecond, nil)
	if err := r.Run(context.Background(), g.Start, g.Transitions); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(act.applied) != 5 {
		t.Fatalf("applied %d moves %v, want 5", len(act.applied), act.applied)
	}
	if act.applied[1] != [4]int{5000, 5000, 5000, 5000} {
		t.Errorf("charge = %v, want all 5000", act.applied[1])
	}
	if act.applied[2] != [4]int{-3000, -3000, -3000, -3000} {
		t.Errorf("contact fallback = %v, want all -3000", act.applied[2])
	}
	if got := f.ctx.GetInt(config.CtxPrevSalvoSpeed); got != 5000 {
		t.Errorf("recorded salvo = %d, want 5000", got)
	}
}

// Ally cargo ahead with the camera live: back off and turn away, never
// reaching attack speed.
func TestSurroundingAllyRetreatEndToEnd(t *testing.T) {
	f := newFixture(t, fakeTags{tag: judge.BlueTag}) // blue team sees its own tag
	f.run.Surrounding.FallbackDurationAllyBox = 0.002
	f.run.Surrounding.FullTurnDuration = 0.002
	f.run.Perf.MinSyncInterval = 0.001
	f.board.adc[4] = 1500 // front occupied

	g, err := f.b.Surrounding(nil, nil, nil)
	if err != nil {
		t.Fatalf("Surrounding failed: %v", err)
	}

	act := &recController{}
	r := motion.NewRunner(act, f.ctx, time.Millisecond, nil)
	if err := r.Run(context.Background(), g.Start, g.Transitions); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(act.applied) != 4 {
		t.Fatalf("applied %d moves %v, want 4", len(act.applied), act.applied)
	}
	if act.applied[1] != [4]int{-2800, -2800, -2800, -2800} {
		t.Errorf("retreat = %v, want all -2800", act.applied[1])
	}
	for _, speeds := range act.applied {
		for _, v := range speeds {
			if v >= 3500 {
				t.Errorf("retreat run reached attack speeds %v", speeds)
			}
		}
	}
}
