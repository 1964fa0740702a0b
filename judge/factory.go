package judge

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/kazurobot/kazu-core/config"
	"github.com/kazurobot/kazu-core/hardware"
	"github.com/kazurobot/kazu-core/sense"
)

// Factory generates breaker sources from the two configuration documents
// and compiles them through the sense builder. Sources embed every
// configuration value they depend on, so the builder cache deduplicates
// construction across handlers: two call sites asking for the same breaker
// under the same configuration receive the identical closure.
type Factory struct {
	App    *config.App
	Run    *config.Run
	Senses *sense.Builder

	// Tags is consulted only when the camera feature is enabled.
	Tags hardware.TagDetector

	// RecordedPack returns the ADC snapshot captured at scan entry; the
	// scan breaker measures deviations against it.
	RecordedPack func() []float64

	Log *slog.Logger
}

// NewFactory wires a breaker factory over validated configuration.
func NewFactory(app *config.App, run *config.Run, senses *sense.Builder, tags hardware.TagDetector, recorded func() []float64, log *slog.Logger) *Factory {
	if log == nil {
		log = slog.Default()
	}
	return &Factory{App: app, Run: run, Senses: senses, Tags: tags, RecordedPack: recorded, Log: log}
}

// EdgeRear fires when either rear corner loses the surface. Used to stop a
// fallback before the robot backs off the stage.
func (f *Factory) EdgeRear() (sense.BoolBreaker, error) {
	s := f.App.Sensor
	e := f.Run.Edge
	src := fmt.Sprintf("%v > s0 or s0 > %v or %v > s1 or s1 > %v",
		e.LowerThreshold[1], e.UpperThreshold[1], e.LowerThreshold[2], e.UpperThreshold[2])
	return f.Senses.Bool([]sense.Usage{
		{Sampler: hardware.SamplerADCAll, Channels: []int{s.EdgeRLIndex, s.EdgeRRIndex}},
	}, src, nil)
}

// EdgeFront fires when the shovel gray sensors or either front corner
// report the surface gone. Used to stop an advance.
func (f *Factory) EdgeFront() (sense.BoolBreaker, error) {
	s := f.App.Sensor
	e := f.Run.Edge
	activate := f.Run.Stage.GrayIOOffStageCaseValue
	src := fmt.Sprintf("s0 == %d or s1 == %d or %v > s2 or s2 > %v or %v > s3 or s3 > %v",
		activate, activate,
		e.LowerThreshold[0], e.UpperThreshold[0], e.LowerThreshold[3], e.UpperThreshold[3])
	return f.Senses.Bool([]sense.Usage{
		{Sampler: hardware.SamplerIOAll, Channels: []int{s.GrayIOLeftIndex, s.GrayIORightIdx}},
		{Sampler: hardware.SamplerADCAll, Channels: []int{s.EdgeFLIndex, s.EdgeFRIndex}},
	}, src, nil)
}

// EdgeFull computes the 16-valued edge code over all four corners. With
// UseGrayIO the shovel gray sensors reinforce the front corners.
func (f *Factory) EdgeFull() (sense.IntBreaker, error) {
	s := f.App.Sensor
	e := f.Run.Edge
	usages := []sense.Usage{
		{Sampler: hardware.SamplerADCAll, Channels: []int{s.EdgeFLIndex, s.EdgeRLIndex, s.EdgeRRIndex, s.EdgeFRIndex}},
	}
	var src string
	if e.UseGrayIO {
		activate := f.Run.Stage.GrayIOOffStageCaseValue
		usages = append(usages, sense.Usage{
			Sampler: hardware.SamplerIOAll, Channels: []int{s.GrayIOLeftIndex, s.GrayIORightIdx},
		})
		src = fmt.Sprintf(
			"(%v > s0 or s0 > %v or s4 == %d ? %d : 0)"+
				" + (%v > s1 or s1 > %v ? %d : 0)"+
				" + (%v > s2 or s2 > %v ? %d : 0)"+
				" + (%v > s3 or s3 > %v or s5 == %d ? %d : 0)",
			e.LowerThreshold[0], e.UpperThreshold[0], activate, EdgeFL,
			e.LowerThreshold[1], e.UpperThreshold[1], EdgeRL,
			e.LowerThreshold[2], e.UpperThreshold[2], EdgeRR,
			e.LowerThreshold[3], e.UpperThreshold[3], activate, EdgeFR)
	} else {
		src = fmt.Sprintf(
			"(%v > s0 or s0 > %v ? %d : 0)"+
				" + (%v > s1 or s1 > %v ? %d : 0)"+
				" + (%v > s2 or s2 > %v ? %d : 0)"+
				" + (%v > s3 or s3 > %v ? %d : 0)",
			e.LowerThreshold[0], e.UpperThreshold[0], EdgeFL,
			e.LowerThreshold[1], e.UpperThreshold[1], EdgeRL,
			e.LowerThreshold[2], e.UpperThreshold[2], EdgeRR,
			e.LowerThreshold[3], e.UpperThreshold[3], EdgeFR)
	}
	src, extra := f.traced("edge code", src)
	return f.Senses.Int(usages, src, extra)
}

// TurnToFront fires when something shows up dead ahead, stopping the
// turn-to-face maneuver.
func (f *Factory) TurnToFront() (sense.BoolBreaker, error) {
	s := f.App.Sensor
	activate := f.Run.Surrounding.IOEncounterObjectValue
	if f.Run.Surrounding.TurnToFrontUseFrontSensor {
		src := fmt.Sprintf("s0 == %d or s1 == %d or s2 > %v",
			activate, activate, f.Run.Surrounding.FrontADCLowerThreshold)
		return f.Senses.Bool([]sense.Usage{
			{Sampler: hardware.SamplerIOAll, Channels: []int{s.FLIOIndex, s.FRIOIndex}},
			{Sampler: hardware.SamplerADCAll, Channels: []int{s.FrontADCIndex}},
		}, src, nil)
	}
	src := fmt.Sprintf("s0 == %d or s1 == %d", activate, activate)
	return f.Senses.Bool([]sense.Usage{
		{Sampler: hardware.SamplerIOAll, Channels: []int{s.GrayIOLeftIndex, s.GrayIORightIdx}},
	}, src, nil)
}

// Attack fires when a charge should break off: the shovel crosses the stage
// boundary, or the front goes empty.
func (f *Factory) Attack() (sense.BoolBreaker, error) {
	s := f.App.Sensor
	offStage := f.Run.Stage.GrayIOOffStageCaseValue
	obj := f.Run.Surrounding.IOEncounterObjectValue
	src := fmt.Sprintf("s0 == %d or s1 == %d or (s2 != %d and s3 != %d and s4 < %v)",
		offStage, offStage, obj, obj, f.Run.Surrounding.AtkBreakFrontLowerThreshold)
	return f.Senses.Bool([]sense.Usage{
		{Sampler: hardware.SamplerIOAll, Channels: []int{s.GrayIOLeftIndex, s.GrayIORightIdx, s.FLIOIndex, s.FRIOIndex}},
		{Sampler: hardware.SamplerADCAll, Channels: []int{s.FrontADCIndex}},
	}, src, nil)
}

// AttackWithEdgeSensors is Attack with the front corner cliff sensors mixed
// in, for arenas where the shovel gray sensors alone react too late.
func (f *Factory) AttackWithEdgeSensors() (sense.BoolBreaker, error) {
	s := f.App.Sensor
	offStage := f.Run.Stage.GrayIOOffStageCaseValue
	obj := f.Run.Surrounding.IOEncounterObjectValue
	src := fmt.Sprintf("s0 == %d or s1 == %d or (s2 != %d and s3 != %d and s4 < %v) or s5 < %v or s6 < %v",
		offStage, offStage, obj, obj, f.Run.Surrounding.AtkBreakFrontLowerThreshold,
		f.Run.Edge.LowerThreshold[0], f.Run.Edge.LowerThreshold[3])
	return f.Senses.Bool([]sense.Usage{
		{Sampler: hardware.SamplerIOAll, Channels: []int{s.GrayIOLeftIndex, s.GrayIORightIdx, s.FLIOIndex, s.FRIOIndex}},
		{Sampler: hardware.SamplerADCAll, Channels: []int{s.FrontADCIndex, s.EdgeFLIndex, s.EdgeFRIndex}},
	}, src, nil)
}

// StageAlign fires when the front faces the fence squarely and the rear is
// clear, ending the stage-align turn.
func (f *Factory) StageAlign() (sense.BoolBreaker, error) {
	s := f.App.Sensor
	activate := f.Run.Fence.IOEncounterFenceValue
	src := fmt.Sprintf("s0 == %d and s1 == %d and s2 != %d and s3 != %d",
		activate, activate, activate, activate)
	return f.Senses.Bool([]sense.Usage{
		{Sampler: hardware.SamplerIOAll, Channels: []int{s.FLIOIndex, s.FRIOIndex, s.RLIOIndex, s.RRIOIndex}},
	}, src, nil)
}

// StageAlignMPU replaces the rear-clear check with the IMU yaw: the turn
// ends when the heading sits within tolerance of a quarter turn and both
// front switches touch the fence.
func (f *Factory) StageAlignMPU() (sense.BoolBreaker, error) {
	s := f.App.Sensor
	tol := f.Run.Fence.MaxYawTolerance
	activate := f.Run.Fence.IOEncounterFenceValue
	src := fmt.Sprintf("(yawdev(s0) <= %v or yawdev(s0) >= %v) and s1 == %d and s2 == %d",
		tol, 90-tol, activate, activate)
	return f.Senses.Bool([]sense.Usage{
		{Sampler: hardware.SamplerAttitude, Channels: []int{hardware.AttitudeYaw}},
		{Sampler: hardware.SamplerIOAll, Channels: []int{s.FLIOIndex, s.FRIOIndex}},
	}, src, map[string]any{"yawdev": yawDeviation})
}

// Fence computes the 16-valued perimeter code. Front and rear mix the
// digital switches with the ranging ADC; left and right have ADC only.
func (f *Factory) Fence() (sense.IntBreaker, error) {
	s := f.App.Sensor
	c := f.Run.Fence
	activate := c.IOEncounterFenceValue
	src := fmt.Sprintf(
		"(s0 > %v or s4 == %d or s5 == %d ? %d : 0)"+
			" + (s1 > %v or s6 == %d or s7 == %d ? %d : 0)"+
			" + (s2 > %v ? %d : 0)"+
			" + (s3 > %v ? %d : 0)",
		c.FrontADCLowerThreshold, activate, activate, FenceFront,
		c.RearADCLowerThreshold, activate, activate, FenceRear,
		c.LeftADCLowerThreshold, FenceLeft,
		c.RightADCLowerThreshold, FenceRight)
	src, extra := f.traced("fence code", src)
	return f.Senses.Int([]sense.Usage{
		{Sampler: hardware.SamplerADCAll, Channels: []int{s.FrontADCIndex, s.RearADCIndex, s.LeftADCIndex, s.RightADCIndex}},
		{Sampler: hardware.SamplerIOAll, Channels: []int{s.FLIOIndex, s.FRIOIndex, s.RLIOIndex, s.RRIOIndex}},
	}, src, extra)
}

// SidesBlocked fires when both flanks read an obstacle, the boxed-in test
// of the fence handler.
func (f *Factory) SidesBlocked() (sense.BoolBreaker, error) {
	s := f.App.Sensor
	src := fmt.Sprintf("s0 > %v and s1 > %v",
		f.Run.Fence.LeftADCLowerThreshold, f.Run.Fence.RightADCLowerThreshold)
	return f.Senses.Bool([]sense.Usage{
		{Sampler: hardware.SamplerADCAll, Channels: []int{s.LeftADCIndex, s.RightADCIndex}},
	}, src, nil)
}

// AlignDirectionMPU fires when the heading sits within yaw tolerance of a
// quarter turn.
func (f *Factory) AlignDirectionMPU() (sense.BoolBreaker, error) {
	tol := f.Run.Fence.MaxYawTolerance
	src := fmt.Sprintf("yawdev(s0) <= %v or yawdev(s0) >= %v", tol, 90-tol)
	return f.Senses.Bool([]sense.Usage{
		{Sampler: hardware.SamplerAttitude, Channels: []int{hardware.AttitudeYaw}},
	}, src, map[string]any{"yawdev": yawDeviation})
}

// AlignDirection is the sensor-only heading test: it fires when exactly two
// of the four perimeter sides read blocked, which on a rectangular stage
// means the robot squares up against a wall or a corridor.
func (f *Factory) AlignDirection() (sense.BoolBreaker, error) {
	s := f.App.Sensor
	c := f.Run.Fence
	activate := c.IOEncounterFenceValue
	src := fmt.Sprintf(
		"((s0 > %v or (s4 == %d and s5 == %d) ? 1 : 0)"+
			" + (s1 > %v or (s6 == %d and s7 == %d) ? 1 : 0)"+
			" + (s2 > %v ? 1 : 0)"+
			" + (s3 > %v ? 1 : 0)) == 2",
		c.FrontADCLowerThreshold, activate, activate,
		c.RearADCLowerThreshold, activate, activate,
		c.LeftADCLowerThreshold,
		c.RightADCLowerThreshold)
	return f.Senses.Bool([]sense.Usage{
		{Sampler: hardware.SamplerADCAll, Channels: []int{s.FrontADCIndex, s.RearADCIndex, s.LeftADCIndex, s.RightADCIndex}},
		{Sampler: hardware.SamplerIOAll, Channels: []int{s.FLIOIndex, s.FRIOIndex, s.RLIOIndex, s.RRIOIndex}},
	}, src, nil)
}

// Scan computes the 16-valued scan code against the ADC snapshot recorded
// at scan entry: a side triggers when its reading climbs past the recorded
// baseline by more than the configured tolerance.
func (f *Factory) Scan() (sense.IntBreaker, error) {
	s := f.App.Sensor
	c := f.Run.Search.ScanMove
	activate := c.IOEncounterObjectValue
	src := fmt.Sprintf(
		"(s0 - base(%d) > %v or s4 == %d or s5 == %d ? %d : 0)"+
			" + (s1 - base(%d) > %v or s6 == %d or s7 == %d ? %d : 0)"+
			" + (s2 - base(%d) > %v ? %d : 0)"+
			" + (s3 - base(%d) > %v ? %d : 0)",
		s.FrontADCIndex, c.FrontMaxTolerance, activate, activate, FenceFront,
		s.RearADCIndex, c.RearMaxTolerance, activate, activate, FenceRear,
		s.LeftADCIndex, c.LeftMaxTolerance, FenceLeft,
		s.RightADCIndex, c.RightMaxTolerance, FenceRight)
	extra := map[string]any{"base": f.baseline}
	src, extra = f.tracedWith("scan code", src, extra)
	return f.Senses.Int([]sense.Usage{
		{Sampler: hardware.SamplerADCAll, Channels: []int{s.FrontADCIndex, s.RearADCIndex, s.LeftADCIndex, s.RightADCIndex}},
		{Sampler: hardware.SamplerIOAll, Channels: []int{s.FLIOIndex, s.FRIOIndex, s.RLIOIndex, s.RRIOIndex}},
	}, src, extra)
}

// Stage computes the 4-valued stage code from the under-chassis gray ADC
// and the reboot button. The unclear band between the two gray thresholds
// counts as off stage.
func (f *Factory) Stage() (sense.IntBreaker, error) {
	s := f.App.Sensor
	src := fmt.Sprintf("(s0 < %v ? %d : 0) + (s1 == %d ? %d : 0)",
		f.Run.Stage.GrayADCOffStageUpperThreshold, StageOn,
		f.Run.Boot.ButtonIOActivateCaseValue, StageReboot)
	return f.Senses.Int([]sense.Usage{
		{Sampler: hardware.SamplerADCAll, Channels: []int{s.GrayADCIndex}},
		{Sampler: hardware.SamplerIOAll, Channels: []int{s.RebootButtonIndex}},
	}, src, nil)
}

// AlwaysOnStage pins the stage flag high while keeping the reboot button
// live. The gray channel is still sampled so the poll cost matches the real
// stage breaker.
func (f *Factory) AlwaysOnStage() (sense.IntBreaker, error) {
	s := f.App.Sensor
	src := fmt.Sprintf("(s0 < 0.0 ? 0 : %d) + (s1 == %d ? %d : 0)",
		StageOn, f.Run.Boot.ButtonIOActivateCaseValue, StageReboot)
	return f.Senses.Int([]sense.Usage{
		{Sampler: hardware.SamplerADCAll, Channels: []int{s.GrayADCIndex}},
		{Sampler: hardware.SamplerIOAll, Channels: []int{s.RebootButtonIndex}},
	}, src, nil)
}

// AlwaysOffStage pins the stage flag low while keeping the reboot button
// live.
func (f *Factory) AlwaysOffStage() (sense.IntBreaker, error) {
	s := f.App.Sensor
	src := fmt.Sprintf("(s0 < 0.0 ? %d : 0) + (s1 == %d ? %d : 0)",
		0, f.Run.Boot.ButtonIOActivateCaseValue, StageReboot)
	return f.Senses.Int([]sense.Usage{
		{Sampler: hardware.SamplerADCAll, Channels: []int{s.GrayADCIndex}},
		{Sampler: hardware.SamplerIOAll, Channels: []int{s.RebootButtonIndex}},
	}, src, nil)
}

// Surrounding computes the combat code: the front object class from the tag
// detector rides above the left, right and behind flags. Without the camera
// the detector is replaced by the group's default tag, so any occupied
// front classifies as the enemy robot.
func (f *Factory) Surrounding() (sense.IntBreaker, error) {
	s := f.App.Sensor
	c := f.Run.Surrounding
	activate := c.IOEncounterObjectValue
	group, err := TagGroupFor(f.App.Vision.TeamColor)
	if err != nil {
		return nil, err
	}

	extra := map[string]any{"front_class": group.FrontClass}
	getID := fmt.Sprintf("%d", group.Default)
	if f.App.Vision.UseCamera {
		if f.Tags == nil {
			return nil, fmt.Errorf("camera enabled but no tag detector wired")
		}
		extra["tag_id"] = f.Tags.TagID
		getID = "tag_id()"
	}

	src := fmt.Sprintf(
		"front_class(%s, s0 == %d or s1 == %d or s4 > %v)"+
			" + (s5 > %v ? %d : 0)"+
			" + (s6 > %v ? %d : 0)"+
			" + (s2 == %d or s3 == %d or s7 > %v ? %d : 0)",
		getID, activate, activate, c.FrontADCLowerThreshold,
		c.LeftADCLowerThreshold, SurroundingLeft,
		c.RightADCLowerThreshold, SurroundingRight,
		activate, activate, c.BackADCLowerThreshold, SurroundingBehind)
	src, extra = f.tracedWith("surrounding code", src, extra)
	return f.Senses.Int([]sense.Usage{
		{Sampler: hardware.SamplerIOAll, Channels: []int{s.FLIOIndex, s.FRIOIndex, s.RLIOIndex, s.RRIOIndex}},
		{Sampler: hardware.SamplerADCAll, Channels: []int{s.FrontADCIndex, s.LeftADCIndex, s.RightADCIndex, s.RearADCIndex}},
	}, src, extra)
}

// RebootButton fires while the reboot button is held.
func (f *Factory) RebootButton() (sense.BoolBreaker, error) {
	src := fmt.Sprintf("s0 == %d", f.Run.Boot.ButtonIOActivateCaseValue)
	return f.Senses.Bool([]sense.Usage{
		{Sampler: hardware.SamplerIOLevel, Channels: []int{f.App.Sensor.RebootButtonIndex}},
	}, src, nil)
}

// GrayScan fires when the gray ADC drops under the scan threshold,
// indicating the spot is not safe to spin on.
func (f *Factory) GrayScan() (sense.BoolBreaker, error) {
	src := fmt.Sprintf("s0 < %v", f.Run.Search.ScanMove.GrayADCLowerThreshold)
	return f.Senses.Bool([]sense.Usage{
		{Sampler: hardware.SamplerADCAll, Channels: []int{f.App.Sensor.GrayADCIndex}},
	}, src, nil)
}

// IsOnStage fires while the gray ADC reads the stage surface.
func (f *Factory) IsOnStage() (sense.BoolBreaker, error) {
	src := fmt.Sprintf("s0 < %v", f.Run.Stage.GrayADCOffStageUpperThreshold)
	return f.Senses.Bool([]sense.Usage{
		{Sampler: hardware.SamplerADCAll, Channels: []int{f.App.Sensor.GrayADCIndex}},
	}, src, nil)
}

// SideAway fires when the accelerometer Z axis shows the chassis tilted
// past the side-away tolerance, meaning the robot lies against the stage
// flank instead of flat behind it.
func (f *Factory) SideAway() (sense.BoolBreaker, error) {
	limit := math.Cos(f.Run.BackStage.SideAwayDegreeTolerance * math.Pi / 180)
	src := fmt.Sprintf("s0 < %v", limit)
	return f.Senses.Bool([]sense.Usage{
		{Sampler: hardware.SamplerAcc, Channels: []int{hardware.AxisZ}},
	}, src, nil)
}

// Launch fires only when both launch-trigger sensors activate at once; a
// single covered sensor must not start the dash.
func (f *Factory) Launch() (sense.BoolBreaker, error) {
	s := f.App.Sensor
	src := fmt.Sprintf("s0 > %v and s1 > %v", f.Run.Boot.LeftThreshold, f.Run.Boot.RightThreshold)
	return f.Senses.Bool([]sense.Usage{
		{Sampler: hardware.SamplerADCAll, Channels: []int{s.LeftADCIndex, s.RightADCIndex}},
	}, src, nil)
}

// traced wraps a code source in a debug-logging hook when the log level
// asks for it. The hook is bound at construction time and becomes part of
// the cache key.
func (f *Factory) traced(name, src string) (string, map[string]any) {
	return f.tracedWith(name, src, nil)
}

func (f *Factory) tracedWith(name, src string, extra map[string]any) (string, map[string]any) {
	if f.App.Debug.LogLevel != "DEBUG" {
		return src, extra
	}
	if extra == nil {
		extra = make(map[string]any, 1)
	}
	log := f.Log
	extra["trace"] = func(code int) int {
		log.Debug(name, "code", code)
		return code
	}
	return fmt.Sprintf("trace(%s)", src), extra
}

// baseline reads one channel of the ADC snapshot recorded at scan entry.
// Before the first record the snapshot is empty and every channel reads 0.
func (f *Factory) baseline(idx int) float64 {
	pack := f.RecordedPack()
	if idx < 0 || idx >= len(pack) {
		return 0
	}
	return pack[idx]
}

// yawDeviation is the absolute heading deviation folded into [0, 90).
func yawDeviation(yaw float64) float64 {
	return math.Mod(math.Abs(yaw), 90)
}
