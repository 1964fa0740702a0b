package behavior

import (
	"context"
	"testing"
	"time"

	"github.com/kazurobot/kazu-core/judge"
	"github.com/kazurobot/kazu-core/motion"
)

func TestEdgeCoversEveryCode(t *testing.T) {
	f := newFixture(t, nil)
	g, err := f.b.Edge(nil, nil, nil)
	if err != nil {
		t.Fatalf("Edge failed: %v", err)
	}
	assertSingleOutgoing(t, g.Transitions)

	d := dispatchFrom(t, g.Transitions, g.Start)
	for _, code := range judge.AllSideCodes() {
		if d.Branches[code] == nil {
			t.Errorf("code %d has no branch", code)
		}
	}
	if d.Branches[0] != g.NormalExit {
		t.Errorf("all-clear must pass to the normal exit")
	}
	if d.Branches[15] != g.AbnormalExit {
		t.Errorf("all corners over must halt at the abnormal exit")
	}
}

func TestEdgeCaseEntryMoves(t *testing.T) {
	f := newFixture(t, nil)
	g, err := f.b.Edge(nil, nil, nil)
	if err != nil {
		t.Fatalf("Edge failed: %v", err)
	}
	d := dispatchFrom(t, g.Transitions, g.Start)

	cases := []struct {
		name string
		code int
		want [4]int
	}{
		{"front corner backs off", judge.EdgeCode(true, false, false, false), [4]int{-3000, -3000, -3000, -3000}},
		{"rear corner pulls forward", judge.EdgeCode(false, true, false, false), [4]int{3000, 3000, 3000, 3000}},
		{"left side turns right", judge.EdgeCode(true, true, false, false), [4]int{3200, 3200, -3200, -3200}},
		{"right side turns left", judge.EdgeCode(false, false, true, true), [4]int{-3200, -3200, 3200, 3200}},
		{"fl-rr diagonal drifts", judge.EdgeCode(true, false, true, false), [4]int{0, -2600, -2600, 0}},
	}
	for _, tc := range cases {
		head := d.Branches[tc.code]
		if head == nil {
			t.Fatalf("%s: code %d unregistered", tc.name, tc.code)
		}
		if got := f.wheelSpeeds(t, head); got != tc.want {
			t.Errorf("%s: entry speeds %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestEdgeCasesDoNotShareNodes(t *testing.T) {
	f := newFixture(t, nil)
	g, err := f.b.Edge(nil, nil, nil)
	if err != nil {
		t.Fatalf("Edge failed: %v", err)
	}
	d := dispatchFrom(t, g.Transitions, g.Start)

	// Both single-front cases start with the same fallback template; the
	// registered heads must still be distinct clones.
	a := d.Branches[judge.EdgeCode(true, false, false, false)]
	b := d.Branches[judge.EdgeCode(false, false, false, true)]
	if a == b {
		t.Errorf("two cases share one chain head")
	}
	if a.ID() == b.ID() {
		t.Errorf("clones share an identity")
	}
}

// The front-right corner drops away mid-run: the graph must back the robot
// off, turn it left and halt at the abnormal exit.
func TestEdgeRecoveryEndToEnd(t *testing.T) {
	f := newFixture(t, nil)
	f.run.Edge.FallbackDuration = 0.002
	f.run.Edge.FullTurnDuration = 0.002
	f.run.Perf.MinSyncInterval = 0.001
	f.board.adc[1] = 900 // front-right over the edge

	g, err := f.b.Edge(nil, nil, nil)
	if err != nil {
		t.Fatalf("Edge failed: %v", err)
	}

	act := &recController{}
	r := motion.NewRunner(act, f.ctx, time.Millisecond, nil)
	if err := r.Run(context.Background(), g.Start, g.Transitions); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := [][4]int{
		{0, 0, 0, 0},                 // resume salvo, previous speed 0
		{-3000, -3000, -3000, -3000}, // back off
		{-3200, -3200, 3200, 3200},   // turn left
		{0, 0, 0, 0},                 // halt
	}
	if len(act.applied) != len(want) {
		t.Fatalf("applied %d moves %v, want %d", len(act.applied), act.applied, len(want))
	}
	for i, w := range want {
		if act.applied[i] != w {
			t.Errorf("move %d = %v, want %v", i, act.applied[i], w)
		}
	}
	if act.stops != 1 {
		t.Errorf("full stop issued %d times, want once", act.stops)
	}
}
