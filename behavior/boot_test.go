package behavior

import (
	"context"
	"testing"
	"time"

	"github.com/kazurobot/kazu-core/config"
	"github.com/kazurobot/kazu-core/motion"
)

// Both launch triggers covered: the hold must release at once and the dash
// must flag the robot as on stage.
func TestRebootLaunchEndToEnd(t *testing.T) {
	f := newFixture(t, nil)
	f.run.Boot.DashDuration = 0.002
	f.run.Boot.TimeToStabilize = 0.001
	f.run.Boot.FullTurnDuration = 0.002
	f.board.adc[6] = 2000 // left trigger
	f.board.adc[7] = 2000 // right trigger

	p, err := f.b.Reboot(nil)
	if err != nil {
		t.Fatalf("Reboot failed: %v", err)
	}
	assertSingleOutgoing(t, p.Transitions)

	act := &recController{}
	r := motion.NewRunner(act, f.ctx, time.Millisecond, nil)
	began := time.Now()
	if err := r.Run(context.Background(), p.Head(), p.Transitions); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if elapsed := time.Since(began); elapsed > 45*time.Millisecond {
		t.Errorf("launch took %v, want an immediate release", elapsed)
	}

	var dashed bool
	for _, speeds := range act.applied {
		if speeds == [4]int{-6000, -6000, -6000, -6000} {
			dashed = true
		}
	}
	if !dashed {
		t.Errorf("launch never dashed: %v", act.applied)
	}
	if !f.ctx.GetBool(config.CtxOnStage) {
		t.Errorf("on-stage flag not set after the dash")
	}
	if f.ctx.GetBool(config.CtxReset) {
		t.Errorf("reset flag still set after the dash")
	}
}

// A single covered trigger must not start the dash; only the holding window
// running out does.
func TestRebootSingleTriggerWaitsOut(t *testing.T) {
	f := newFixture(t, nil)
	f.run.Boot.MaxHoldingDuration = 0.05
	f.run.Boot.DashDuration = 0.002
	f.run.Boot.TimeToStabilize = 0.001
	f.run.Boot.FullTurnDuration = 0.002
	f.board.adc[6] = 2000 // left trigger only

	p, err := f.b.Reboot(nil)
	if err != nil {
		t.Fatalf("Reboot failed: %v", err)
	}

	act := &recController{}
	r := motion.NewRunner(act, f.ctx, time.Millisecond, nil)
	began := time.Now()
	if err := r.Run(context.Background(), p.Head(), p.Transitions); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if elapsed := time.Since(began); elapsed < 45*time.Millisecond {
		t.Errorf("hold released after %v, want the full holding window", elapsed)
	}
}

func TestBackToStageSequence(t *testing.T) {
	f := newFixture(t, nil)
	p, err := f.b.BackToStage(nil)
	if err != nil {
		t.Fatalf("BackToStage failed: %v", err)
	}
	assertSingleOutgoing(t, p.Transitions)

	out := make(map[*motion.MoveState]*motion.Transition)
	for _, tr := range p.Transitions {
		out[tr.From] = tr
	}

	want := [][4]int{
		{1500, 1500, 1500, 1500},
		{0, 0, 0, 0},
		{-6000, -6000, -6000, -6000},
		{0, 0, 0, 0},
	}
	s := p.Head()
	for i, w := range want {
		if got := f.wheelSpeeds(t, s); got != w {
			t.Errorf("step %d = %v, want %v", i, got, w)
		}
		s = out[s].Next
	}
	// Final swing before handing over.
	got := f.wheelSpeeds(t, s)
	if got != [4]int{-3200, -3200, 3200, 3200} && got != [4]int{3200, 3200, -3200, -3200} {
		t.Errorf("final swing = %v, want a turn at 3200", got)
	}
}
