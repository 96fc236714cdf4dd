package game

import "math"

// Point is a planar position in court units (feet). Y grows toward the
// ground, matching the detector's image coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between two points. A zero-length
// segment yields 0, which downstream rules treat as "no signal".
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// PositionSample pairs a position with the frame it was observed on.
type PositionSample struct {
	Pos   Point
	Frame int64
}

// positionRing is a fixed-capacity FIFO of position samples. Appending past
// capacity evicts the oldest entry, so memory stays bounded over arbitrarily
// long sessions.
type positionRing struct {
	buf  []PositionSample
	head int // index of the oldest entry
	n    int
}

func newPositionRing(capacity int) positionRing {
	if capacity < 1 {
		capacity = 1
	}
	return positionRing{buf: make([]PositionSample, capacity)}
}

// Push appends a sample, evicting the oldest when full.
func (r *positionRing) Push(s PositionSample) {
	tail := (r.head + r.n) % len(r.buf)
	r.buf[tail] = s
	if r.n < len(r.buf) {
		r.n++
	} else {
		r.head = (r.head + 1) % len(r.buf)
	}
}

// Len returns the number of stored samples.
func (r *positionRing) Len() int { return r.n }

// At returns the i-th stored sample, 0 being the oldest.
func (r *positionRing) At(i int) PositionSample {
	return r.buf[(r.head+i)%len(r.buf)]
}

// Last returns the newest sample, if any.
func (r *positionRing) Last() (PositionSample, bool) {
	if r.n == 0 {
		return PositionSample{}, false
	}
	return r.At(r.n - 1), true
}

// Snapshot returns a copy of the stored samples, oldest first.
func (r *positionRing) Snapshot() []PositionSample {
	out := make([]PositionSample, r.n)
	for i := 0; i < r.n; i++ {
		out[i] = r.At(i)
	}
	return out
}

// JumpState is the discretised phase of a player's vertical motion cycle.
type JumpState string

const (
	JumpGrounded   JumpState = "grounded"
	JumpAscending  JumpState = "ascending"
	JumpPeak       JumpState = "peak"
	JumpDescending JumpState = "descending"
)

// PlayerState tracks one player's motion across frames. It is created
// lazily on first detection of an identifier and lives for the session.
type PlayerState struct {
	PlayerID string

	// CurrentSpeed is the instantaneous speed in feet per frame: distance
	// between the two most recent positions over their frame delta. Zero
	// until at least two positions on distinct frames have been recorded.
	CurrentSpeed float64

	// HasBall is true only while the detector reports ball possession for
	// this player in the current frame.
	HasBall bool

	JumpState JumpState
	// JumpHeight is the cumulative upward displacement (feet) accumulated
	// since entering JumpAscending. Only meaningful while airborne; reset
	// to 0 on landing.
	JumpHeight float64

	// Aggregates over the session
	ObservationCount int
	AvgSpeed         float64
	PeakSpeed        float64
	FirstFrame       int64
	LastFrame        int64

	cfg          *Config
	positions    positionRing
	speedHistory []float64
	speedSamples int // total speed samples ever taken, for the running average
}

// NewPlayerState creates a player state with bounded histories sized from cfg.
func NewPlayerState(playerID string, cfg *Config) *PlayerState {
	return &PlayerState{
		PlayerID:     playerID,
		JumpState:    JumpGrounded,
		cfg:          cfg,
		positions:    newPositionRing(cfg.PositionHistoryCap),
		speedHistory: make([]float64, 0, cfg.SpeedHistoryCap),
	}
}

// UpdatePosition records a new observed position for the given frame,
// recomputing speed and the vertical-motion state. Speed is not recomputed
// when two updates share a frame index.
func (p *PlayerState) UpdatePosition(pos Point, frameIdx int64) {
	if last, ok := p.positions.Last(); ok {
		if dt := frameIdx - last.Frame; dt > 0 {
			p.CurrentSpeed = Distance(pos, last.Pos) / float64(dt)
			p.speedHistory = append(p.speedHistory, p.CurrentSpeed)
			if len(p.speedHistory) > p.cfg.SpeedHistoryCap {
				p.speedHistory = p.speedHistory[1:]
			}
			p.speedSamples++
			k := float64(p.speedSamples)
			p.AvgSpeed = ((k-1)*p.AvgSpeed + p.CurrentSpeed) / k
			if p.CurrentSpeed > p.PeakSpeed {
				p.PeakSpeed = p.CurrentSpeed
			}
		}
	}

	p.positions.Push(PositionSample{Pos: pos, Frame: frameIdx})
	p.ObservationCount++
	if p.ObservationCount == 1 {
		p.FirstFrame = frameIdx
	}
	p.LastFrame = frameIdx

	p.updateJumpState()
}

// updateJumpState advances the 4-state vertical-motion machine from the
// signed dy between the two most recent vertical coordinates. Deliberately
// lossy: anything between the settle and rise thresholds leaves the state
// unchanged.
func (p *PlayerState) updateJumpState() {
	if p.positions.Len() < 2 {
		return
	}

	currY := p.positions.At(p.positions.Len() - 1).Pos.Y
	prevY := p.positions.At(p.positions.Len() - 2).Pos.Y
	dy := currY - prevY

	rise := p.cfg.RiseNoiseThreshold
	settle := p.cfg.SettleNoiseThreshold

	switch {
	case dy < -rise: // moving up beyond noise
		if p.JumpState != JumpAscending {
			p.JumpState = JumpAscending
			p.JumpHeight = 0
		} else {
			p.JumpHeight += -dy
		}
	case dy > rise: // moving down beyond noise
		if p.JumpState == JumpAscending || p.JumpState == JumpPeak {
			p.JumpState = JumpDescending
		}
	case p.JumpState == JumpAscending && math.Abs(dy) < settle:
		p.JumpState = JumpPeak
	case p.JumpState == JumpDescending && math.Abs(dy) < settle:
		p.JumpState = JumpGrounded
		p.JumpHeight = 0
	}
}

// LastPosition returns the most recent position sample, if any.
func (p *PlayerState) LastPosition() (PositionSample, bool) {
	return p.positions.Last()
}

// PositionCount returns the number of stored position samples.
func (p *PlayerState) PositionCount() int { return p.positions.Len() }

// Positions returns a copy of the position history, oldest first.
func (p *PlayerState) Positions() []PositionSample { return p.positions.Snapshot() }

// SpeedHistory returns a copy of the bounded speed history, oldest first.
func (p *PlayerState) SpeedHistory() []float64 {
	out := make([]float64, len(p.speedHistory))
	copy(out, p.speedHistory)
	return out
}

// BallState tracks the basketball across frames. One instance per session.
type BallState struct {
	// CurrentPosition is the most recent detected position; check Position()
	// for validity before first detection.
	CurrentPosition Point

	// HolderID is the player currently possessing the ball, or "" when the
	// ball is live. It is never non-empty while InAir is true.
	HolderID string

	// InAir is true when frame-to-frame displacement exceeds the configured
	// threshold, or when the ball went undetected with no recorded holder.
	InAir bool

	// ShotArc collects positions continuously while InAir; cleared the
	// instant InAir drops.
	ShotArc []Point

	cfg         *Config
	positions   positionRing
	hasPosition bool
}

// NewBallState creates the session's ball state.
func NewBallState(cfg *Config) *BallState {
	return &BallState{
		cfg:       cfg,
		positions: newPositionRing(cfg.PositionHistoryCap),
	}
}

// UpdatePosition records a detected ball position for the given frame and
// re-derives flight state.
func (b *BallState) UpdatePosition(pos Point, frameIdx int64) {
	var prev Point
	hadPrev := false
	if last, ok := b.positions.Last(); ok {
		prev = last.Pos
		hadPrev = true
	}

	b.positions.Push(PositionSample{Pos: pos, Frame: frameIdx})
	b.CurrentPosition = pos
	b.hasPosition = true

	if hadPrev {
		displacement := Distance(pos, prev)
		b.InAir = displacement > b.cfg.BallAirDisplacementFt

		switch {
		case b.InAir && len(b.ShotArc) == 0:
			b.ShotArc = []Point{prev, pos}
		case b.InAir:
			b.ShotArc = append(b.ShotArc, pos)
		default:
			b.ShotArc = nil
		}
	}

	// A live ball is unheld until possession evidence arrives, and a held
	// ball cannot be airborne, so either way the holder is cleared here.
	// Possession evidence re-establishes the holder within the same frame.
	b.HolderID = ""
}

// Position returns the most recent ball position and whether the ball has
// been detected at all this session.
func (b *BallState) Position() (Point, bool) {
	return b.CurrentPosition, b.hasPosition
}

// PositionCount returns the number of stored ball position samples.
func (b *BallState) PositionCount() int { return b.positions.Len() }

// Positions returns a copy of the ball position history, oldest first.
func (b *BallState) Positions() []PositionSample { return b.positions.Snapshot() }
