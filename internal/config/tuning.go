package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for play-detection tuning
// parameters. All fields are pointers so a partial JSON file only overrides
// what it names; the Get* accessors supply defaults for everything else.
//
// Distances and positions are in feet throughout; the image convention is
// that Y increases toward the ground.
type TuningConfig struct {
	// Court geometry
	CourtLengthFt    *float64 `json:"court_length_ft,omitempty"`
	CourtWidthFt     *float64 `json:"court_width_ft,omitempty"`
	ThreePointLineFt *float64 `json:"three_point_line_ft,omitempty"`
	HoopHeightFt     *float64 `json:"hoop_height_ft,omitempty"`

	// Play detection thresholds
	DunkJumpHeightFt    *float64 `json:"dunk_jump_height_ft,omitempty"`
	MinTrajectoryLength *int     `json:"min_trajectory_length,omitempty"`

	// Vertical-motion state machine noise thresholds (feet per frame).
	// Rise is the minimum |dy| treated as real vertical motion; settle is
	// the maximum |dy| treated as holding steady at a peak or landing.
	RiseNoiseThreshold   *float64 `json:"rise_noise_threshold,omitempty"`
	SettleNoiseThreshold *float64 `json:"settle_noise_threshold,omitempty"`

	// Ball flight
	BallAirDisplacementFt *float64 `json:"ball_air_displacement_ft,omitempty"`

	// Timebase
	FrameRate *float64 `json:"frame_rate,omitempty"`

	// History capacities
	PositionHistoryCap *int `json:"position_history_cap,omitempty"`
	SpeedHistoryCap    *int `json:"speed_history_cap,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the
// max file size. Fields omitted from the JSON file retain their default
// values, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.CourtLengthFt != nil && *c.CourtLengthFt <= 0 {
		return fmt.Errorf("court_length_ft must be positive, got %f", *c.CourtLengthFt)
	}
	if c.CourtWidthFt != nil && *c.CourtWidthFt <= 0 {
		return fmt.Errorf("court_width_ft must be positive, got %f", *c.CourtWidthFt)
	}
	if c.ThreePointLineFt != nil && *c.ThreePointLineFt <= 0 {
		return fmt.Errorf("three_point_line_ft must be positive, got %f", *c.ThreePointLineFt)
	}
	if c.FrameRate != nil && *c.FrameRate <= 0 {
		return fmt.Errorf("frame_rate must be positive, got %f", *c.FrameRate)
	}
	if c.PositionHistoryCap != nil && *c.PositionHistoryCap < 2 {
		return fmt.Errorf("position_history_cap must be at least 2, got %d", *c.PositionHistoryCap)
	}
	if c.SpeedHistoryCap != nil && *c.SpeedHistoryCap < 1 {
		return fmt.Errorf("speed_history_cap must be at least 1, got %d", *c.SpeedHistoryCap)
	}
	if c.RiseNoiseThreshold != nil && *c.RiseNoiseThreshold < 0 {
		return fmt.Errorf("rise_noise_threshold must be non-negative, got %f", *c.RiseNoiseThreshold)
	}
	if c.SettleNoiseThreshold != nil && *c.SettleNoiseThreshold < 0 {
		return fmt.Errorf("settle_noise_threshold must be non-negative, got %f", *c.SettleNoiseThreshold)
	}
	if c.RiseNoiseThreshold != nil && c.SettleNoiseThreshold != nil &&
		*c.SettleNoiseThreshold > *c.RiseNoiseThreshold {
		return fmt.Errorf("settle_noise_threshold (%f) must not exceed rise_noise_threshold (%f)",
			*c.SettleNoiseThreshold, *c.RiseNoiseThreshold)
	}
	if c.MinTrajectoryLength != nil && *c.MinTrajectoryLength < 0 {
		return fmt.Errorf("min_trajectory_length must be non-negative, got %d", *c.MinTrajectoryLength)
	}
	return nil
}

// GetCourtLengthFt returns the court_length_ft value or the default.
func (c *TuningConfig) GetCourtLengthFt() float64 {
	if c.CourtLengthFt == nil {
		return 94.0 // regulation NBA court
	}
	return *c.CourtLengthFt
}

// GetCourtWidthFt returns the court_width_ft value or the default.
func (c *TuningConfig) GetCourtWidthFt() float64 {
	if c.CourtWidthFt == nil {
		return 50.0
	}
	return *c.CourtWidthFt
}

// GetThreePointLineFt returns the three_point_line_ft value or the default.
func (c *TuningConfig) GetThreePointLineFt() float64 {
	if c.ThreePointLineFt == nil {
		return 23.75
	}
	return *c.ThreePointLineFt
}

// GetHoopHeightFt returns the hoop_height_ft value or the default.
func (c *TuningConfig) GetHoopHeightFt() float64 {
	if c.HoopHeightFt == nil {
		return 10.0
	}
	return *c.HoopHeightFt
}

// GetDunkJumpHeightFt returns the dunk_jump_height_ft value or the default.
func (c *TuningConfig) GetDunkJumpHeightFt() float64 {
	if c.DunkJumpHeightFt == nil {
		return 1.5
	}
	return *c.DunkJumpHeightFt
}

// GetMinTrajectoryLength returns the min_trajectory_length value or the default.
func (c *TuningConfig) GetMinTrajectoryLength() int {
	if c.MinTrajectoryLength == nil {
		return 5
	}
	return *c.MinTrajectoryLength
}

// GetRiseNoiseThreshold returns the rise_noise_threshold value or the default.
func (c *TuningConfig) GetRiseNoiseThreshold() float64 {
	if c.RiseNoiseThreshold == nil {
		return 2.0
	}
	return *c.RiseNoiseThreshold
}

// GetSettleNoiseThreshold returns the settle_noise_threshold value or the default.
func (c *TuningConfig) GetSettleNoiseThreshold() float64 {
	if c.SettleNoiseThreshold == nil {
		return 1.0
	}
	return *c.SettleNoiseThreshold
}

// GetBallAirDisplacementFt returns the ball_air_displacement_ft value or the default.
func (c *TuningConfig) GetBallAirDisplacementFt() float64 {
	if c.BallAirDisplacementFt == nil {
		return 5.0
	}
	return *c.BallAirDisplacementFt
}

// GetFrameRate returns the frame_rate value or the default.
func (c *TuningConfig) GetFrameRate() float64 {
	if c.FrameRate == nil {
		return 30.0
	}
	return *c.FrameRate
}

// GetPositionHistoryCap returns the position_history_cap value or the default.
func (c *TuningConfig) GetPositionHistoryCap() int {
	if c.PositionHistoryCap == nil {
		return 30
	}
	return *c.PositionHistoryCap
}

// GetSpeedHistoryCap returns the speed_history_cap value or the default.
func (c *TuningConfig) GetSpeedHistoryCap() int {
	if c.SpeedHistoryCap == nil {
		return 10
	}
	return *c.SpeedHistoryCap
}
