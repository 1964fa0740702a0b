// Package config holds the two configuration documents the graph builders
// consume: the application config (hardware identity, sensor channel map,
// feature toggles) and the run config (per-behavior speeds, durations,
// thresholds and weights). Both are YAML documents validated eagerly so an
// invalid enum or threshold aborts before any graph is built.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Env variable names recognized by the CLI.
const (
	EnvAppConfigPath = "KAZU_APP_CONFIG_PATH"
	EnvRunConfigPath = "KAZU_RUN_CONFIG_PATH"
	EnvRunMode       = "KAZU_RUN_MODE"
)

var validate = validator.New()

// MotionConfig identifies the motor controller and the per-wheel wiring.
type MotionConfig struct {
	Port    string `yaml:"port" validate:"required"`
	MotorFL [2]int `yaml:"motor_fl"`
	MotorRL [2]int `yaml:"motor_rl"`
	MotorRR [2]int `yaml:"motor_rr"`
	MotorFR [2]int `yaml:"motor_fr"`
}

// VisionConfig configures the optional tag-detection camera.
type VisionConfig struct {
	TeamColor      string `yaml:"team_color" validate:"oneof=yellow blue"`
	UseCamera      bool   `yaml:"use_camera"`
	CameraDeviceID int    `yaml:"camera_device_id" validate:"gte=0"`
}

// DebugConfig controls log verbosity and the debug hooks bound into breakers.
type DebugConfig struct {
	LogLevel string `yaml:"log_level" validate:"oneof=DEBUG INFO WARN ERROR"`
}

// SensorConfig maps logical sensor roles to sampler channel indexes.
type SensorConfig struct {
	ADCMinSampleInterval int `yaml:"adc_min_sample_interval" validate:"gt=0"`

	// Edge (cliff) ADC channels, one per corner.
	EdgeFLIndex int `yaml:"edge_fl_index" validate:"gte=0"`
	EdgeFRIndex int `yaml:"edge_fr_index" validate:"gte=0"`
	EdgeRLIndex int `yaml:"edge_rl_index" validate:"gte=0"`
	EdgeRRIndex int `yaml:"edge_rr_index" validate:"gte=0"`

	// Proximity ADC channels, one per side.
	FrontADCIndex int `yaml:"front_adc_index" validate:"gte=0"`
	RearADCIndex  int `yaml:"rear_adc_index" validate:"gte=0"`
	LeftADCIndex  int `yaml:"left_adc_index" validate:"gte=0"`
	RightADCIndex int `yaml:"right_adc_index" validate:"gte=0"`

	// Gray-scale sensors under the chassis.
	GrayADCIndex    int `yaml:"gray_adc_index" validate:"gte=0"`
	GrayIOLeftIndex int `yaml:"gray_io_left_index" validate:"gte=0"`
	GrayIORightIdx  int `yaml:"gray_io_right_index" validate:"gte=0"`

	// Digital proximity switches, one per corner.
	FLIOIndex int `yaml:"fl_io_index" validate:"gte=0"`
	FRIOIndex int `yaml:"fr_io_index" validate:"gte=0"`
	RLIOIndex int `yaml:"rl_io_index" validate:"gte=0"`
	RRIOIndex int `yaml:"rr_io_index" validate:"gte=0"`

	RebootButtonIndex int `yaml:"reboot_button_index" validate:"gte=0"`
}

// FeatureConfig toggles the optional side channels.
type FeatureConfig struct {
	UseStatusLights bool `yaml:"use_status_lights"`
}

// App is the application configuration document.
type App struct {
	Motion  MotionConfig  `yaml:"motion"`
	Vision  VisionConfig  `yaml:"vision"`
	Debug   DebugConfig   `yaml:"debug"`
	Sensor  SensorConfig  `yaml:"sensor"`
	Feature FeatureConfig `yaml:"feature"`
}

// DefaultApp returns the application config with factory defaults.
func DefaultApp() *App {
	return &App{
		Motion: MotionConfig{
			Port:    "/dev/ttyACM0",
			MotorFL: [2]int{1, 1},
			MotorRL: [2]int{2, 1},
			MotorRR: [2]int{3, 1},
			MotorFR: [2]int{4, 1},
		},
		Vision: VisionConfig{
			TeamColor:      "blue",
			UseCamera:      true,
			CameraDeviceID: 0,
		},
		Debug: DebugConfig{LogLevel: "INFO"},
		Sensor: SensorConfig{
			ADCMinSampleInterval: 5,
			EdgeFLIndex:          0,
			EdgeFRIndex:          1,
			EdgeRLIndex:          2,
			EdgeRRIndex:          3,
			FrontADCIndex:        4,
			RearADCIndex:         5,
			LeftADCIndex:         6,
			RightADCIndex:        7,
			GrayADCIndex:         8,
			GrayIOLeftIndex:      0,
			GrayIORightIdx:       1,
			FLIOIndex:            2,
			FRIOIndex:            3,
			RLIOIndex:            4,
			RRIOIndex:            5,
			RebootButtonIndex:    6,
		},
		Feature: FeatureConfig{UseStatusLights: true},
	}
}

// Validate checks the document against its struct tags.
func (a *App) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("app config invalid: %w", err)
	}
	return nil
}

// ReadApp decodes and validates an application config document.
func ReadApp(r io.Reader) (*App, error) {
	app := DefaultApp()
	if err := yaml.NewDecoder(r).Decode(app); err != nil {
		return nil, fmt.Errorf("decode app config: %w", err)
	}
	if err := app.Validate(); err != nil {
		return nil, err
	}
	return app, nil
}

// LoadApp reads an application config from path, falling back to defaults
// when the file does not exist.
func LoadApp(path string) (*App, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return DefaultApp(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open app config: %w", err)
	}
	defer f.Close()
	return ReadApp(f)
}

// WriteApp encodes the document as YAML.
func WriteApp(w io.Writer, app *App) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(app); err != nil {
		return fmt.Errorf("encode app config: %w", err)
	}
	return nil
}
