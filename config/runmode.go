package config

import "fmt"

// RunMode names a composed top-level graph handed to the runner.
type RunMode string

const (
	// ModeAlwaysOffStage assumes the robot never reaches the stage surface
	// and loops the launch sequence.
	ModeAlwaysOffStage RunMode = "AFG"
	// ModeAlwaysOnStage assumes the robot never leaves the stage surface.
	ModeAlwaysOnStage RunMode = "ANG"
	// ModeOnStageStart begins on stage and handles falling off.
	ModeOnStageStart RunMode = "NGS"
	// ModeOffStageStart begins off stage, boots, then behaves as NGS.
	ModeOffStageStart RunMode = "FGS"
	// ModeOffStageDashLoop loops the off-stage dash for drills.
	ModeOffStageDashLoop RunMode = "FGDL"
)

// RunModes lists every recognized mode, in display order.
func RunModes() []RunMode {
	return []RunMode{
		ModeAlwaysOffStage,
		ModeAlwaysOnStage,
		ModeOnStageStart,
		ModeOffStageStart,
		ModeOffStageDashLoop,
	}
}

// ParseRunMode validates a mode string from the CLI or environment.
func ParseRunMode(s string) (RunMode, error) {
	for _, m := range RunModes() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown run mode %q (want one of %v)", s, RunModes())
}

// Context variable names shared between behavior builders and the runner.
// They are the only mutable state crossing transition boundaries.
const (
	CtxPrevSalvoSpeed = "prev_salvo_speed"
	CtxOnStage        = "on_stage"
	CtxReset          = "reset"
	CtxRecordedPack   = "recorded_pack"
	CtxIsAligned      = "is_aligned"
)

// DefaultContext returns the initial values of every context variable.
func DefaultContext() map[string]any {
	return map[string]any{
		CtxPrevSalvoSpeed: 0,
		CtxOnStage:        false,
		CtxReset:          true,
		CtxRecordedPack:   []float64(nil),
		CtxIsAligned:      false,
	}
}
