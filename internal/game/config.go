package game

import (
	"github.com/banshee-data/courtside.report/internal/config"
)

// Config holds resolved tuning parameters for one play-detection session.
// Distances are in feet; the image convention is that Y increases toward
// the ground, so upward motion has negative dy.
type Config struct {
	// Court geometry
	CourtLengthFt    float64
	CourtWidthFt     float64
	ThreePointLineFt float64
	HoopHeightFt     float64

	// Play detection thresholds
	DunkJumpHeightFt    float64 // minimum jump height at peak for a dunk
	MinTrajectoryLength int     // minimum position samples before a layup is credited

	// Vertical-motion state machine noise thresholds (feet per frame)
	RiseNoiseThreshold   float64
	SettleNoiseThreshold float64

	// Ball flight
	BallAirDisplacementFt float64 // frame-to-frame displacement above which the ball is airborne

	// Timebase
	FrameRate float64 // assumed frames per second for play timestamps

	// History capacities
	PositionHistoryCap int
	SpeedHistoryCap    int
}

// DefaultConfig returns session configuration loaded from the canonical
// tuning defaults file (config/tuning.defaults.json). Panics if the file
// cannot be found; intended for tests and binaries that have already
// validated config availability.
func DefaultConfig() Config {
	cfg := config.MustLoadDefaultConfig()
	return ConfigFromTuning(cfg)
}

// ConfigFromTuning builds a session Config from a loaded TuningConfig.
// Use this in production code where the TuningConfig is already loaded.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		CourtLengthFt:         cfg.GetCourtLengthFt(),
		CourtWidthFt:          cfg.GetCourtWidthFt(),
		ThreePointLineFt:      cfg.GetThreePointLineFt(),
		HoopHeightFt:          cfg.GetHoopHeightFt(),
		DunkJumpHeightFt:      cfg.GetDunkJumpHeightFt(),
		MinTrajectoryLength:   cfg.GetMinTrajectoryLength(),
		RiseNoiseThreshold:    cfg.GetRiseNoiseThreshold(),
		SettleNoiseThreshold:  cfg.GetSettleNoiseThreshold(),
		BallAirDisplacementFt: cfg.GetBallAirDisplacementFt(),
		FrameRate:             cfg.GetFrameRate(),
		PositionHistoryCap:    cfg.GetPositionHistoryCap(),
		SpeedHistoryCap:       cfg.GetSpeedHistoryCap(),
	}
}

// HoopPosition returns the planar hoop reference point used for shot
// distance, derived from court length: (length/2, 0).
func (c Config) HoopPosition() Point {
	return Point{X: c.CourtLengthFt / 2, Y: 0}
}
