package judge

import (
	"reflect"
	"testing"

	"github.com/kazurobot/kazu-core/config"
	"github.com/kazurobot/kazu-core/hardware"
	"github.com/kazurobot/kazu-core/sense"
)

// fakeBoard serves mutable packs through the sampler facade. Tests poke the
// slices between breaker polls.
type fakeBoard struct {
	adc     []float64
	io      []float64
	ioLevel []float64
	ioMode  []float64
	att     []float64
	gyro    []float64
	acc     []float64
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{
		adc:     make([]float64, 10),
		io:      make([]float64, 8),
		ioLevel: make([]float64, 8),
		ioMode:  make([]float64, 8),
		att:     make([]float64, 3),
		gyro:    make([]float64, 3),
		acc:     []float64{0, 0, 1},
	}
}

func (b *fakeBoard) ADCAll() []float64   { return b.adc }
func (b *fakeBoard) IOAll() []float64    { return b.io }
func (b *fakeBoard) IOLevels() []float64 { return b.ioLevel }
func (b *fakeBoard) IOModes() []float64  { return b.ioMode }
func (b *fakeBoard) Attitude() []float64 { return b.att }
func (b *fakeBoard) Gyro() []float64     { return b.gyro }
func (b *fakeBoard) Acc() []float64      { return b.acc }

type fakeTags struct{ tag int }

func (fakeTags) Start(int) error { return nil }
func (fakeTags) Stop() error     { return nil }
func (f fakeTags) TagID() int    { return f.tag }

// testFactory builds a factory over defaults with every edge ADC reading a
// safe mid-scale value.
func testFactory(t *testing.T, board *fakeBoard) *Factory {
	t.Helper()
	app := config.DefaultApp()
	app.Vision.UseCamera = false
	run := config.DefaultRun()
	for i := 0; i < 4; i++ {
		board.adc[i] = 2000
	}
	senses := sense.NewBuilder(hardware.SamplerGroups(board))
	return NewFactory(app, run, senses, nil, func() []float64 { return nil }, nil)
}

func TestEdgeFullCode(t *testing.T) {
	board := newFakeBoard()
	f := testFactory(t, board)
	code, err := f.EdgeFull()
	if err != nil {
		t.Fatalf("EdgeFull failed: %v", err)
	}

	if got := code(); got != 0 {
		t.Errorf("all corners safe: code = %d, want 0", got)
	}

	// Corner readings trigger outside the closed [lower, upper] band, on
	// either side.
	board.adc[0] = 900 // fl low
	if got := code(); got != EdgeFL {
		t.Errorf("fl low: code = %d, want %d", got, EdgeFL)
	}
	board.adc[0] = 2000
	board.adc[1] = 3000 // fr high
	if got := code(); got != EdgeFR {
		t.Errorf("fr high: code = %d, want %d", got, EdgeFR)
	}
	board.adc[2] = 900 // rl low too
	if got := code(); got != EdgeFR+EdgeRL {
		t.Errorf("fr+rl: code = %d, want %d", got, EdgeFR+EdgeRL)
	}
	board.adc[0] = 900
	board.adc[3] = 900
	if got := code(); got != 15 {
		t.Errorf("all corners out: code = %d, want 15", got)
	}
}

func TestEdgeRearBreaker(t *testing.T) {
	board := newFakeBoard()
	f := testFactory(t, board)
	fire, err := f.EdgeRear()
	if err != nil {
		t.Fatalf("EdgeRear failed: %v", err)
	}

	if fire() {
		t.Errorf("rear breaker fired with both corners safe")
	}
	board.adc[3] = 500 // rr
	if !fire() {
		t.Errorf("rear breaker did not fire with rr off the surface")
	}
}

func TestStageCodeBreaker(t *testing.T) {
	board := newFakeBoard()
	f := testFactory(t, board)
	code, err := f.Stage()
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	// Low gray = stage surface; index 8 is the gray ADC, io 6 the button.
	cases := []struct {
		gray   float64
		button float64
		want   int
	}{
		{2000, 0, 1},
		{3000, 0, 0},
		{2000, 1, 3},
		{3000, 1, 2},
		// The unclear band between the thresholds counts as off stage.
		{2900, 0, 0},
	}
	for _, c := range cases {
		board.adc[8] = c.gray
		board.io[6] = c.button
		if got := code(); got != c.want {
			t.Errorf("gray %.0f button %.0f: code = %d, want %d", c.gray, c.button, got, c.want)
		}
	}
}

func TestAlwaysOnAndOffStageKeepRebootLive(t *testing.T) {
	board := newFakeBoard()
	f := testFactory(t, board)

	on, err := f.AlwaysOnStage()
	if err != nil {
		t.Fatalf("AlwaysOnStage failed: %v", err)
	}
	off, err := f.AlwaysOffStage()
	if err != nil {
		t.Fatalf("AlwaysOffStage failed: %v", err)
	}

	board.adc[8] = 4000 // clearly off the stage surface
	if got := on(); got != 1 {
		t.Errorf("pinned on-stage code = %d, want 1", got)
	}
	board.io[6] = 1
	if got := on(); got != 3 {
		t.Errorf("pinned on-stage with reboot = %d, want 3", got)
	}

	board.adc[8] = 2000 // clearly on the stage surface
	if got := off(); got != 2 {
		t.Errorf("pinned off-stage with reboot = %d, want 2", got)
	}
	board.io[6] = 0
	if got := off(); got != 0 {
		t.Errorf("pinned off-stage code = %d, want 0", got)
	}
}

func TestLaunchRequiresBothTriggers(t *testing.T) {
	board := newFakeBoard()
	f := testFactory(t, board)
	fire, err := f.Launch()
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}

	board.adc[6] = 2000 // left only
	board.adc[7] = 100
	if fire() {
		t.Errorf("launch fired on a single trigger")
	}
	board.adc[7] = 2000
	if !fire() {
		t.Errorf("launch did not fire with both triggers covered")
	}
}

func TestScanMeasuresAgainstRecordedBaseline(t *testing.T) {
	board := newFakeBoard()
	app := config.DefaultApp()
	app.Vision.UseCamera = false
	run := config.DefaultRun()
	for i := 0; i < 4; i++ {
		board.adc[i] = 2000
	}
	board.adc[4] = 800 // front
	board.adc[5] = 800 // rear
	board.adc[6] = 800 // left
	board.adc[7] = 800 // right

	var recorded []float64
	senses := sense.NewBuilder(hardware.SamplerGroups(board))
	f := NewFactory(app, run, senses, nil, func() []float64 { return recorded }, nil)

	code, err := f.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	recorded = append([]float64(nil), board.adc...)
	if got := code(); got != 0 {
		t.Errorf("no deviation from baseline: code = %d, want 0", got)
	}

	board.adc[4] = 1200 // front up 400 > 250 tolerance
	if got := code(); got != FenceFront {
		t.Errorf("front deviation: code = %d, want %d", got, FenceFront)
	}
	board.adc[7] = 1200
	if got := code(); got != FenceFront+FenceRight {
		t.Errorf("front+right deviation: code = %d, want %d", got, FenceFront+FenceRight)
	}
}

func TestSurroundingWithoutCamera(t *testing.T) {
	board := newFakeBoard()
	f := testFactory(t, board)
	code, err := f.Surrounding()
	if err != nil {
		t.Fatalf("Surrounding failed: %v", err)
	}

	if got := code(); got != 0 {
		t.Errorf("clear surrounding: code = %d, want 0", got)
	}

	// Without the camera an occupied front is always the enemy robot.
	board.adc[4] = 1500 // front
	if got := code(); got != FrontEnemyCar {
		t.Errorf("occupied front: code = %d, want %d", got, FrontEnemyCar)
	}
	board.adc[6] = 1500 // left
	board.adc[5] = 1500 // rear
	want := FrontEnemyCar + SurroundingLeft + SurroundingBehind
	if got := code(); got != want {
		t.Errorf("front+left+behind: code = %d, want %d", got, want)
	}
}

func TestSurroundingWithCameraClassifiesTags(t *testing.T) {
	board := newFakeBoard()
	app := config.DefaultApp()
	app.Vision.UseCamera = true
	app.Vision.TeamColor = "blue"
	run := config.DefaultRun()
	for i := 0; i < 4; i++ {
		board.adc[i] = 2000
	}
	senses := sense.NewBuilder(hardware.SamplerGroups(board))
	f := NewFactory(app, run, senses, fakeTags{tag: BlueTag}, func() []float64 { return nil }, nil)

	code, err := f.Surrounding()
	if err != nil {
		t.Fatalf("Surrounding failed: %v", err)
	}
	board.adc[4] = 1500
	if got := code(); got != FrontAllyBox {
		t.Errorf("ally tag in front: code = %d, want %d", got, FrontAllyBox)
	}
}

func TestSurroundingRequiresDetectorWhenCameraEnabled(t *testing.T) {
	board := newFakeBoard()
	f := testFactory(t, board)
	f.App.Vision.UseCamera = true
	f.Tags = nil
	if _, err := f.Surrounding(); err == nil {
		t.Errorf("expected error with camera enabled and no detector wired")
	}
}

func TestRepeatedConstructionSharesClosure(t *testing.T) {
	board := newFakeBoard()
	f := testFactory(t, board)

	c1, err := f.EdgeFull()
	if err != nil {
		t.Fatalf("first EdgeFull failed: %v", err)
	}
	c2, err := f.EdgeFull()
	if err != nil {
		t.Fatalf("second EdgeFull failed: %v", err)
	}
	if reflect.ValueOf(c1).Pointer() != reflect.ValueOf(c2).Pointer() {
		t.Errorf("repeated construction under one configuration returned distinct closures")
	}
}

func TestSideAwayTilt(t *testing.T) {
	board := newFakeBoard()
	f := testFactory(t, board)
	fire, err := f.SideAway()
	if err != nil {
		t.Fatalf("SideAway failed: %v", err)
	}

	board.acc[2] = 1.0 // flat
	if fire() {
		t.Errorf("side-away fired while flat")
	}
	board.acc[2] = 0.5 // about 60 degrees over
	if !fire() {
		t.Errorf("side-away did not fire while tilted past tolerance")
	}
}

func TestStageAlignMPUYawWindow(t *testing.T) {
	board := newFakeBoard()
	f := testFactory(t, board)
	fire, err := f.StageAlignMPU()
	if err != nil {
		t.Fatalf("StageAlignMPU failed: %v", err)
	}

	board.io[2] = 1 // fl switch on the fence
	board.io[3] = 1 // fr switch on the fence
	board.att[2] = 45
	if fire() {
		t.Errorf("aligned at 45 degrees with 20 degree tolerance")
	}
	board.att[2] = 92 // 2 degrees past a quarter turn
	if !fire() {
		t.Errorf("not aligned at 92 degrees")
	}
	board.io[3] = 0 // one switch off the fence
	if fire() {
		t.Errorf("aligned with only one switch touching")
	}
}
