package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// EdgeConfig parameterizes the edge (cliff) recovery behavior. Thresholds are
// paired closed intervals, ordered fl, rl, rr, fr; a reading outside its
// interval means no surface under that corner.
type EdgeConfig struct {
	LowerThreshold []float64 `yaml:"lower_threshold" validate:"len=4"`
	UpperThreshold []float64 `yaml:"upper_threshold" validate:"len=4"`
	UseGrayIO      bool      `yaml:"use_gray_io"`

	FallbackSpeed    int     `yaml:"fallback_speed" validate:"gt=0"`
	FallbackDuration float64 `yaml:"fallback_duration" validate:"gt=0"`
	AdvanceSpeed     int     `yaml:"advance_speed" validate:"gt=0"`
	AdvanceDuration  float64 `yaml:"advance_duration" validate:"gt=0"`
	TurnSpeed        int     `yaml:"turn_speed" validate:"gt=0"`
	HalfTurnDuration float64 `yaml:"half_turn_duration" validate:"gt=0"`
	FullTurnDuration float64 `yaml:"full_turn_duration" validate:"gt=0"`
	DriftSpeed       int     `yaml:"drift_speed" validate:"gt=0"`
	DriftDuration    float64 `yaml:"drift_duration" validate:"gt=0"`
	TurnLeftProb     float64 `yaml:"turn_left_prob" validate:"gte=0,lte=1"`
}

// SurroundingConfig parameterizes the combat behavior around the robot.
type SurroundingConfig struct {
	IOEncounterObjectValue int `yaml:"io_encounter_object_value" validate:"oneof=0 1"`

	FrontADCLowerThreshold float64 `yaml:"front_adc_lower_threshold"`
	LeftADCLowerThreshold  float64 `yaml:"left_adc_lower_threshold"`
	RightADCLowerThreshold float64 `yaml:"right_adc_lower_threshold"`
	BackADCLowerThreshold  float64 `yaml:"back_adc_lower_threshold"`

	AtkBreakFrontLowerThreshold float64 `yaml:"atk_break_front_lower_threshold"`

	AtkSpeedEnemyCar   int `yaml:"atk_speed_enemy_car" validate:"gt=0"`
	AtkSpeedEnemyBox   int `yaml:"atk_speed_enemy_box" validate:"gt=0"`
	AtkSpeedNeutralBox int `yaml:"atk_speed_neutral_box" validate:"gt=0"`

	AtkEnemyCarDuration   float64 `yaml:"atk_enemy_car_duration" validate:"gt=0"`
	AtkEnemyBoxDuration   float64 `yaml:"atk_enemy_box_duration" validate:"gt=0"`
	AtkNeutralBoxDuration float64 `yaml:"atk_neutral_box_duration" validate:"gt=0"`

	FallbackSpeedAllyBox    int     `yaml:"fallback_speed_ally_box" validate:"gt=0"`
	FallbackSpeedEdge       int     `yaml:"fallback_speed_edge" validate:"gt=0"`
	FallbackDurationAllyBox float64 `yaml:"fallback_duration_ally_box" validate:"gt=0"`
	FallbackDurationEdge    float64 `yaml:"fallback_duration_edge" validate:"gt=0"`

	TurnSpeed            int       `yaml:"turn_speed" validate:"gt=0"`
	TurnLeftProb         float64   `yaml:"turn_left_prob" validate:"gte=0,lte=1"`
	RandTurnSpeeds       []int     `yaml:"rand_turn_speeds" validate:"min=1"`
	RandTurnSpeedWeights []float64 `yaml:"rand_turn_speed_weights" validate:"min=1"`
	FullTurnDuration     float64   `yaml:"full_turn_duration" validate:"gt=0"`
	HalfTurnDuration     float64   `yaml:"half_turn_duration" validate:"gt=0"`

	TurnToFrontUseFrontSensor bool `yaml:"turn_to_front_use_front_sensor"`
}

// FenceConfig parameterizes the arena-perimeter behavior.
type FenceConfig struct {
	IOEncounterFenceValue int `yaml:"io_encounter_fence_value" validate:"oneof=0 1"`

	FrontADCLowerThreshold float64 `yaml:"front_adc_lower_threshold"`
	RearADCLowerThreshold  float64 `yaml:"rear_adc_lower_threshold"`
	LeftADCLowerThreshold  float64 `yaml:"left_adc_lower_threshold"`
	RightADCLowerThreshold float64 `yaml:"right_adc_lower_threshold"`

	MaxYawTolerance float64 `yaml:"max_yaw_tolerance" validate:"gt=0,lt=45"`
	UseMPUAlign     bool    `yaml:"use_mpu_align"`

	ExitCornerSpeed       int     `yaml:"exit_corner_speed" validate:"gt=0"`
	MaxExitCornerDuration float64 `yaml:"max_exit_corner_duration" validate:"gt=0"`

	StageAlignSpeed       int     `yaml:"stage_align_speed" validate:"gt=0"`
	StageAlignDirection   string  `yaml:"stage_align_direction" validate:"oneof=l r rand"`
	MaxStageAlignDuration float64 `yaml:"max_stage_align_duration" validate:"gt=0"`

	DirectionAlignSpeed       int     `yaml:"direction_align_speed" validate:"gt=0"`
	DirectionAlignDirection   string  `yaml:"direction_align_direction" validate:"oneof=l r rand"`
	MaxDirectionAlignDuration float64 `yaml:"max_direction_align_duration" validate:"gt=0"`
}

// ScanMoveConfig parameterizes the baseline-delta scan sub-behavior. The
// tolerances are deviations from the snapshot captured at scan entry, not
// absolute thresholds.
type ScanMoveConfig struct {
	IOEncounterObjectValue int `yaml:"io_encounter_object_value" validate:"oneof=0 1"`

	FrontMaxTolerance float64 `yaml:"front_max_tolerance" validate:"gt=0"`
	RearMaxTolerance  float64 `yaml:"rear_max_tolerance" validate:"gt=0"`
	LeftMaxTolerance  float64 `yaml:"left_max_tolerance" validate:"gt=0"`
	RightMaxTolerance float64 `yaml:"right_max_tolerance" validate:"gt=0"`

	GrayADCLowerThreshold float64 `yaml:"gray_adc_lower_threshold"`

	ScanSpeed        int     `yaml:"scan_speed" validate:"gt=0"`
	ScanDuration     float64 `yaml:"scan_duration" validate:"gt=0"`
	ScanTurnLeftProb float64 `yaml:"scan_turn_left_prob" validate:"gte=0,lte=1"`

	TurnSpeed    int     `yaml:"turn_speed" validate:"gt=0"`
	TurnLeftProb float64 `yaml:"turn_left_prob" validate:"gte=0,lte=1"`

	FallBackSpeed    int     `yaml:"fall_back_speed" validate:"gt=0"`
	FallBackDuration float64 `yaml:"fall_back_duration" validate:"gt=0"`
}

// RandWalkConfig parameterizes the random-walk fallback.
type RandWalkConfig struct {
	StraightSpeed    int     `yaml:"straight_speed" validate:"gt=0"`
	StraightDuration float64 `yaml:"straight_duration" validate:"gt=0"`
	TurnSpeed        int     `yaml:"turn_speed" validate:"gt=0"`
	TurnDuration     float64 `yaml:"turn_duration" validate:"gt=0"`
	TurnLeftProb     float64 `yaml:"turn_left_prob" validate:"gte=0,lte=1"`
}

// GradientMoveConfig parameterizes the gray-gradient chase.
type GradientMoveConfig struct {
	Speed       int     `yaml:"speed" validate:"gt=0"`
	MaxDuration float64 `yaml:"max_duration" validate:"gt=0"`
}

// SearchConfig selects among the search sub-behaviors. Each sub-behavior is
// independently enabled and weighted; the choice is made immediately, not
// polled.
type SearchConfig struct {
	UseGradientMove    bool    `yaml:"use_gradient_move"`
	GradientMoveWeight float64 `yaml:"gradient_move_weight" validate:"gte=0"`
	UseRandTurn        bool    `yaml:"use_rand_turn"`
	RandTurnWeight     float64 `yaml:"rand_turn_weight" validate:"gte=0"`
	UseScanMove        bool    `yaml:"use_scan_move"`
	ScanMoveWeight     float64 `yaml:"scan_move_weight" validate:"gte=0"`

	ScanMove     ScanMoveConfig     `yaml:"scan_move"`
	RandWalk     RandWalkConfig     `yaml:"rand_walk"`
	GradientMove GradientMoveConfig `yaml:"gradient_move"`
}

// BootConfig parameterizes the launch sequence run while holding off stage.
type BootConfig struct {
	LeftThreshold  float64 `yaml:"left_threshold"`
	RightThreshold float64 `yaml:"right_threshold"`

	ButtonIOActivateCaseValue int `yaml:"button_io_activate_case_value" validate:"oneof=0 1"`

	MaxHoldingDuration float64 `yaml:"max_holding_duration" validate:"gt=0"`
	DashSpeed          int     `yaml:"dash_speed" validate:"gt=0"`
	DashDuration       float64 `yaml:"dash_duration" validate:"gt=0"`
	TimeToStabilize    float64 `yaml:"time_to_stabilize" validate:"gt=0"`
	TurnSpeed          int     `yaml:"turn_speed" validate:"gt=0"`
	TurnLeftProb       float64 `yaml:"turn_left_prob" validate:"gte=0,lte=1"`
	FullTurnDuration   float64 `yaml:"full_turn_duration" validate:"gt=0"`
}

// BackStageConfig parameterizes the return-to-stage dash.
type BackStageConfig struct {
	SmallAdvanceSpeed       int     `yaml:"small_advance_speed" validate:"gt=0"`
	SmallAdvanceDuration    float64 `yaml:"small_advance_duration" validate:"gt=0"`
	TimeToStabilize         float64 `yaml:"time_to_stabilize" validate:"gt=0"`
	FullTurnDuration        float64 `yaml:"full_turn_duration" validate:"gt=0"`
	SideAwayDegreeTolerance float64 `yaml:"side_away_degree_tolerance" validate:"gt=0,lt=90"`
}

// StageConfig holds the gray-scale thresholds that decide on/off stage.
type StageConfig struct {
	GrayADCOffStageUpperThreshold float64 `yaml:"gray_adc_off_stage_upper_threshold"`
	GrayADCOnStageLowerThreshold  float64 `yaml:"gray_adc_on_stage_lower_threshold"`
	GrayIOOffStageCaseValue       int     `yaml:"gray_io_off_stage_case_value" validate:"oneof=0 1"`
}

// StrategyConfig toggles behavior components in the composed graphs.
type StrategyConfig struct {
	UseEdgeComponent        bool `yaml:"use_edge_component"`
	UseSurroundingComponent bool `yaml:"use_surrounding_component"`
	UseFenceComponent       bool `yaml:"use_fence_component"`
	UseScanComponent        bool `yaml:"use_scan_component"`
}

// PerformanceConfig holds the polling cadences of the decision loop.
type PerformanceConfig struct {
	MinSyncInterval  float64 `yaml:"min_sync_interval" validate:"gt=0"`
	CheckingInterval float64 `yaml:"checking_interval" validate:"gt=0"`
}

// Run is the runtime configuration document.
type Run struct {
	Edge        EdgeConfig        `yaml:"edge"`
	Surrounding SurroundingConfig `yaml:"surrounding"`
	Fence       FenceConfig       `yaml:"fence"`
	Search      SearchConfig      `yaml:"search"`
	Boot        BootConfig        `yaml:"boot"`
	BackStage   BackStageConfig   `yaml:"backstage"`
	Stage       StageConfig       `yaml:"stage"`
	Strategy    StrategyConfig    `yaml:"strategy"`
	Perf        PerformanceConfig `yaml:"perf"`
}

// DefaultRun returns the run config with tournament-tested defaults.
func DefaultRun() *Run {
	return &Run{
		Edge: EdgeConfig{
			LowerThreshold:   []float64{1700, 1700, 1700, 1700},
			UpperThreshold:   []float64{2200, 2200, 2200, 2200},
			UseGrayIO:        false,
			FallbackSpeed:    3000,
			FallbackDuration: 0.3,
			AdvanceSpeed:     3000,
			AdvanceDuration:  0.3,
			TurnSpeed:        3200,
			HalfTurnDuration: 0.225,
			FullTurnDuration: 0.45,
			DriftSpeed:       2600,
			DriftDuration:    0.3,
			TurnLeftProb:     0.5,
		},
		Surrounding: SurroundingConfig{
			IOEncounterObjectValue:      1,
			FrontADCLowerThreshold:      1100,
			LeftADCLowerThreshold:       1100,
			RightADCLowerThreshold:      1100,
			BackADCLowerThreshold:       1100,
			AtkBreakFrontLowerThreshold: 950,
			AtkSpeedEnemyCar:            5000,
			AtkSpeedEnemyBox:            4000,
			AtkSpeedNeutralBox:          3500,
			AtkEnemyCarDuration:         3.0,
			AtkEnemyBoxDuration:         2.5,
			AtkNeutralBoxDuration:       2.0,
			FallbackSpeedAllyBox:        2800,
			FallbackSpeedEdge:           3000,
			FallbackDurationAllyBox:     0.3,
			FallbackDurationEdge:        0.25,
			TurnSpeed:                   3200,
			TurnLeftProb:                0.5,
			RandTurnSpeeds:              []int{2600, 3200, 3800},
			RandTurnSpeedWeights:        []float64{2, 3, 1},
			FullTurnDuration:            0.45,
			HalfTurnDuration:            0.225,
			TurnToFrontUseFrontSensor:   true,
		},
		Fence: FenceConfig{
			IOEncounterFenceValue:     1,
			FrontADCLowerThreshold:    1500,
			RearADCLowerThreshold:     1500,
			LeftADCLowerThreshold:     1500,
			RightADCLowerThreshold:    1500,
			MaxYawTolerance:           20,
			UseMPUAlign:               true,
			ExitCornerSpeed:           2800,
			MaxExitCornerDuration:     1.2,
			StageAlignSpeed:           2600,
			StageAlignDirection:       "rand",
			MaxStageAlignDuration:     2.0,
			DirectionAlignSpeed:       2600,
			DirectionAlignDirection:   "rand",
			MaxDirectionAlignDuration: 2.0,
		},
		Search: SearchConfig{
			UseGradientMove:    true,
			GradientMoveWeight: 2,
			UseRandTurn:        true,
			RandTurnWeight:     1,
			UseScanMove:        true,
			ScanMoveWeight:     3,
			ScanMove: ScanMoveConfig{
				IOEncounterObjectValue: 1,
				FrontMaxTolerance:      250,
				RearMaxTolerance:       250,
				LeftMaxTolerance:       250,
				RightMaxTolerance:      250,
				GrayADCLowerThreshold:  2800,
				ScanSpeed:              600,
				ScanDuration:           4.0,
				ScanTurnLeftProb:       0.5,
				TurnSpeed:              3200,
				TurnLeftProb:           0.5,
				FallBackSpeed:          3000,
				FallBackDuration:       0.3,
			},
			RandWalk: RandWalkConfig{
				StraightSpeed:    2400,
				StraightDuration: 0.5,
				TurnSpeed:        3000,
				TurnDuration:     0.3,
				TurnLeftProb:     0.5,
			},
			GradientMove: GradientMoveConfig{
				Speed:       2400,
				MaxDuration: 1.5,
			},
		},
		Boot: BootConfig{
			LeftThreshold:             1800,
			RightThreshold:            1800,
			ButtonIOActivateCaseValue: 1,
			MaxHoldingDuration:        180,
			DashSpeed:                 6000,
			DashDuration:              0.6,
			TimeToStabilize:           0.1,
			TurnSpeed:                 3200,
			TurnLeftProb:              0.5,
			FullTurnDuration:          0.45,
		},
		BackStage: BackStageConfig{
			SmallAdvanceSpeed:       1500,
			SmallAdvanceDuration:    0.3,
			TimeToStabilize:         0.1,
			FullTurnDuration:        0.45,
			SideAwayDegreeTolerance: 15,
		},
		Stage: StageConfig{
			GrayADCOffStageUpperThreshold: 2700,
			GrayADCOnStageLowerThreshold:  3100,
			GrayIOOffStageCaseValue:       0,
		},
		Strategy: StrategyConfig{
			UseEdgeComponent:        true,
			UseSurroundingComponent: true,
			UseFenceComponent:       true,
			UseScanComponent:        true,
		},
		Perf: PerformanceConfig{
			MinSyncInterval:  0.007,
			CheckingInterval: 0.007,
		},
	}
}

// Validate checks the document against its struct tags and the cross-field
// constraints the tags cannot express.
func (r *Run) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("run config invalid: %w", err)
	}
	if len(r.Surrounding.RandTurnSpeeds) != len(r.Surrounding.RandTurnSpeedWeights) {
		return fmt.Errorf("run config invalid: %d rand turn speeds vs %d weights",
			len(r.Surrounding.RandTurnSpeeds), len(r.Surrounding.RandTurnSpeedWeights))
	}
	if r.Stage.GrayADCOffStageUpperThreshold >= r.Stage.GrayADCOnStageLowerThreshold {
		return fmt.Errorf("run config invalid: off-stage upper threshold %v must sit below on-stage lower threshold %v",
			r.Stage.GrayADCOffStageUpperThreshold, r.Stage.GrayADCOnStageLowerThreshold)
	}
	return nil
}

// ReadRun decodes and validates a run config document.
func ReadRun(r io.Reader) (*Run, error) {
	run := DefaultRun()
	if err := yaml.NewDecoder(r).Decode(run); err != nil {
		return nil, fmt.Errorf("decode run config: %w", err)
	}
	if err := run.Validate(); err != nil {
		return nil, err
	}
	return run, nil
}

// LoadRun reads a run config from path, falling back to defaults when no
// path is given.
func LoadRun(path string) (*Run, error) {
	if path == "" {
		return DefaultRun(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open run config: %w", err)
	}
	defer f.Close()
	return ReadRun(f)
}

// WriteRun encodes the document as YAML.
func WriteRun(w io.Writer, run *Run) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(run); err != nil {
		return fmt.Errorf("encode run config: %w", err)
	}
	return nil
}
