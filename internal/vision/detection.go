// Package vision defines the detection input surface for the play-detection
// pipeline. Detections are produced by an external object detector (one set
// per video frame) and validated here before any session state sees them.
package vision

import (
	"encoding/json"
	"fmt"
	"math"
)

// Class is the detector's class label for one detection.
type Class string

const (
	// ClassPlayer is a detected player.
	ClassPlayer Class = "player"
	// ClassBall is the detected basketball.
	ClassBall Class = "ball"
)

// BBox is an axis-aligned bounding box in court units (x1,y1 top-left,
// x2,y2 bottom-right; Y grows toward the ground).
//
// On the wire it is the detector's 4-element array form [x1, y1, x2, y2].
type BBox struct {
	X1, Y1, X2, Y2 float64
}

// Center returns the box's center point.
func (b BBox) Center() (x, y float64) {
	return (b.X1 + b.X2) / 2, (b.Y1 + b.Y2) / 2
}

// MarshalJSON encodes the box as [x1, y1, x2, y2].
func (b BBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{b.X1, b.Y1, b.X2, b.Y2})
}

// UnmarshalJSON decodes the detector's [x1, y1, x2, y2] array form.
func (b *BBox) UnmarshalJSON(data []byte) error {
	var coords [4]float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return fmt.Errorf("bbox must be a 4-element array: %w", err)
	}
	b.X1, b.Y1, b.X2, b.Y2 = coords[0], coords[1], coords[2], coords[3]
	return nil
}

// Detection is one object instance reported by the external detector for a
// single frame. TrackID is set only when the detector runs a tracker; BallBBox
// is possession evidence (the ball's box nested inside this player's box).
type Detection struct {
	Class      Class   `json:"class_name"`
	BBox       BBox    `json:"bbox"`
	TrackID    *int64  `json:"track_id,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	BallBBox   *BBox   `json:"ball_bbox,omitempty"`
}

// Frame is one frame's worth of detections. An empty detection list is a
// valid frame ("nothing observed").
type Frame struct {
	Detections []Detection `json:"detections"`
}

// Validate reports whether a detection is well-formed enough to process.
// A malformed detection is skipped by the frame engine; it must never abort
// processing of the rest of the frame.
func (d Detection) Validate() error {
	if d.Class == "" {
		return fmt.Errorf("detection has no class label")
	}
	if err := validBox(d.BBox); err != nil {
		return fmt.Errorf("detection bbox: %w", err)
	}
	if d.BallBBox != nil {
		if err := validBox(*d.BallBBox); err != nil {
			return fmt.Errorf("detection ball_bbox: %w", err)
		}
	}
	return nil
}

func validBox(b BBox) error {
	for _, v := range []float64{b.X1, b.Y1, b.X2, b.Y2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite coordinate")
		}
	}
	if b.X2 < b.X1 || b.Y2 < b.Y1 {
		return fmt.Errorf("inverted box [%g %g %g %g]", b.X1, b.Y1, b.X2, b.Y2)
	}
	return nil
}
