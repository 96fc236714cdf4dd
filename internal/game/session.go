package game

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/banshee-data/courtside.report/internal/monitoring"
	"github.com/banshee-data/courtside.report/internal/vision"
)

// Session owns all play-detection state for one video: the tracked player
// states, the ball state, the monotonic frame counter, and the play log.
// Sessions are independent; multiple can coexist for concurrent jobs.
//
// A session is single-writer and frame-sequential: UpdateFrame must be
// called once per frame in increasing order, and no method is safe to call
// concurrently with it. Callers needing concurrency must serialise access
// (e.g. a queue feeding one consumer). Supplying frames out of order is a
// caller contract violation and is not defended against here.
type Session struct {
	ID string

	cfg        Config
	players    map[string]*PlayerState
	ball       *BallState
	frameIdx   int64
	classifier *PlayClassifier
	log        *PlayLog
}

// NewSession creates a session with the given configuration.
func NewSession(cfg Config) *Session {
	s := &Session{
		ID:      fmt.Sprintf("sess_%s", uuid.NewString()),
		cfg:     cfg,
		players: make(map[string]*PlayerState),
		ball:    nil,
		log:     &PlayLog{},
	}
	s.ball = NewBallState(&s.cfg)
	s.classifier = NewPlayClassifier(&s.cfg)
	return s
}

// UpdateFrame advances the session by exactly one frame, applying the given
// detections and running the play classifier over the players touched this
// frame. Malformed detections are skipped; they never abort the frame.
// Returns the plays emitted for this frame (also appended to the log).
func (s *Session) UpdateFrame(detections []vision.Detection) []Play {
	s.frameIdx++

	// Possession is asserted per frame by the detector, so it resets at the
	// top of every frame and survives only while evidence keeps arriving.
	for _, p := range s.players {
		p.HasBall = false
	}

	touched := make(map[string]*PlayerState)
	ballDetected := false

	for _, det := range detections {
		if err := det.Validate(); err != nil {
			monitoring.Logf("frame %d: skipping detection: %v", s.frameIdx, err)
			continue
		}

		switch det.Class {
		case vision.ClassPlayer:
			playerID := playerKey(det)
			player, ok := s.players[playerID]
			if !ok {
				player = NewPlayerState(playerID, &s.cfg)
				s.players[playerID] = player
			}

			cx, cy := det.BBox.Center()
			player.UpdatePosition(Point{X: cx, Y: cy}, s.frameIdx)

			if det.BallBBox != nil {
				player.HasBall = true
				s.ball.HolderID = playerID
				s.ball.InAir = false
			}

			touched[playerID] = player

		case vision.ClassBall:
			ballDetected = true
			cx, cy := det.BBox.Center()
			s.ball.UpdatePosition(Point{X: cx, Y: cy}, s.frameIdx)

		default:
			// unknown classes are ignored
		}
	}

	// Ball neither seen nor held: presume it airborne or occluded.
	if !ballDetected && s.ball.HolderID == "" {
		s.ball.InAir = true
	}

	plays := s.classifier.Classify(s.frameIdx, touched, s.ball)
	for _, p := range plays {
		s.log.Append(p)
		monitoring.Logf("detected %s by player %s at frame %d", p.Type, p.PlayerID, p.Frame)
	}
	return plays
}

// playerKey resolves a stable identifier for a player detection. An explicit
// tracking ID is preferred; without one the key falls back to a positional
// proxy derived from the bounding box. The fallback churns frame to frame
// for real untracked input. Best effort only; meaningful multi-frame state
// needs a tracker upstream.
func playerKey(det vision.Detection) string {
	if det.TrackID != nil {
		return "player_" + strconv.FormatInt(*det.TrackID, 10)
	}
	return fmt.Sprintf("bbox_%.0f", det.BBox.X1)
}

// FrameIndex returns the session's current frame counter.
func (s *Session) FrameIndex() int64 { return s.frameIdx }

// Config returns the session's resolved configuration.
func (s *Session) Config() Config { return s.cfg }

// Log returns the session's play log.
func (s *Session) Log() *PlayLog { return s.log }

// PlayerCount returns how many distinct player identifiers have been seen.
func (s *Session) PlayerCount() int { return len(s.players) }

// Player returns the state for a player identifier, or nil if unseen.
func (s *Session) Player(playerID string) *PlayerState { return s.players[playerID] }

// Ball returns the session's ball state.
func (s *Session) Ball() *BallState { return s.ball }

// PlayerSnapshot is a read-only copy of a player's headline state, safe to
// hand to HTTP handlers or persistence without aliasing live session state.
type PlayerSnapshot struct {
	PlayerID         string    `json:"player_id"`
	Position         Point     `json:"position"`
	CurrentSpeed     float64   `json:"current_speed"`
	HasBall          bool      `json:"has_ball"`
	JumpState        JumpState `json:"jump_state"`
	JumpHeight       float64   `json:"jump_height"`
	ObservationCount int       `json:"observation_count"`
	AvgSpeed         float64   `json:"avg_speed"`
	PeakSpeed        float64   `json:"peak_speed"`
}

// PlayerSnapshots returns copies of all player states, sorted by player ID
// for stable output.
func (s *Session) PlayerSnapshots() []PlayerSnapshot {
	out := make([]PlayerSnapshot, 0, len(s.players))
	for _, p := range s.players {
		snap := PlayerSnapshot{
			PlayerID:         p.PlayerID,
			CurrentSpeed:     p.CurrentSpeed,
			HasBall:          p.HasBall,
			JumpState:        p.JumpState,
			JumpHeight:       p.JumpHeight,
			ObservationCount: p.ObservationCount,
			AvgSpeed:         p.AvgSpeed,
			PeakSpeed:        p.PeakSpeed,
		}
		if last, ok := p.LastPosition(); ok {
			snap.Position = last.Pos
		}
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

// BallSnapshot is a read-only copy of the ball's headline state.
type BallSnapshot struct {
	Position  Point  `json:"position"`
	Detected  bool   `json:"detected"`
	HolderID  string `json:"holder_id,omitempty"`
	InAir     bool   `json:"in_air"`
	ArcPoints int    `json:"arc_points"`
}

// BallSnapshotNow returns a copy of the ball's current state.
func (s *Session) BallSnapshotNow() BallSnapshot {
	pos, ok := s.ball.Position()
	return BallSnapshot{
		Position:  pos,
		Detected:  ok,
		HolderID:  s.ball.HolderID,
		InAir:     s.ball.InAir,
		ArcPoints: len(s.ball.ShotArc),
	}
}
