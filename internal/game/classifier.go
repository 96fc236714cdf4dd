package game

import (
	"fmt"

	"github.com/google/uuid"
)

// PlayType enumerates the detectable play categories.
type PlayType string

const (
	PlayDunk         PlayType = "dunk"
	PlayThreePointer PlayType = "three_pointer"
	PlayTwoPointer   PlayType = "two_pointer"
	PlayLayup        PlayType = "layup"
	PlayBlock        PlayType = "block"
)

// DefaultPlayConfidence is the fixed confidence attached to rule-based plays.
// It is a stand-in, not a calibrated score derived from detector output.
const DefaultPlayConfidence = 0.9

// Block-rule constants. The block rule inspects the ball's shot arc for a
// sudden strong upward deflection (negative vertical delta).
const (
	blockMinArcPoints        = 3
	blockMinDeflectionPoints = 5
	blockUpwardDeltaFt       = -5.0
)

// Play is an immutable record of one detected event.
type Play struct {
	PlayID   string   `json:"play_id"`
	Frame    int64    `json:"frame"`
	Type     PlayType `json:"play_type"`
	PlayerID string   `json:"player_id"`

	// Confidence is a fixed default in (0,1] unless a rule overrides it.
	Confidence float64 `json:"confidence"`

	// Timestamp is seconds into the session: frame / configured frame rate.
	Timestamp float64 `json:"timestamp"`

	// Type-specific context: JumpHeight for dunks, Distance (to hoop) for
	// pointer plays. Zero when not applicable.
	JumpHeight float64 `json:"jump_height,omitempty"`
	Distance   float64 `json:"distance,omitempty"`
}

// PlayClassifier evaluates heuristic rules against the current entity state.
// It is stateless: everything it needs it reads from the per-frame snapshot.
//
// Rule evaluation is deliberately permissive and non-exclusive: a single
// frame can yield several plays across players, and several categories for
// the same player when more than one rule's preconditions hold at once.
type PlayClassifier struct {
	cfg *Config
}

// NewPlayClassifier creates a classifier bound to a session config.
func NewPlayClassifier(cfg *Config) *PlayClassifier {
	return &PlayClassifier{cfg: cfg}
}

// Classify evaluates all rules for one frame. players holds only the player
// states touched this frame; ball is the session ball state after update.
// Returned plays are in no particular order within the frame.
func (c *PlayClassifier) Classify(frameIdx int64, players map[string]*PlayerState, ball *BallState) []Play {
	var plays []Play

	for playerID, player := range players {
		if player.HasBall && player.JumpState == JumpPeak && player.JumpHeight >= c.cfg.DunkJumpHeightFt {
			p := c.newPlay(frameIdx, PlayDunk, playerID)
			p.JumpHeight = player.JumpHeight
			plays = append(plays, p)
		}

		if player.HasBall && player.JumpState == JumpDescending {
			dist := c.hoopDistance(player)
			kind := PlayTwoPointer
			if dist >= c.cfg.ThreePointLineFt {
				kind = PlayThreePointer
			}
			p := c.newPlay(frameIdx, kind, playerID)
			p.Distance = dist
			plays = append(plays, p)
		}

		if player.HasBall &&
			(player.JumpState == JumpAscending || player.JumpState == JumpPeak) &&
			player.JumpHeight < c.cfg.DunkJumpHeightFt &&
			player.PositionCount() > c.cfg.MinTrajectoryLength {
			plays = append(plays, c.newPlay(frameIdx, PlayLayup, playerID))
		}
	}

	if blockerID, ok := c.detectBlock(players, ball); ok {
		plays = append(plays, c.newPlay(frameIdx, PlayBlock, blockerID))
	}

	return plays
}

// detectBlock looks for a sudden upward deflection in the ball's shot arc
// and credits the nearest non-holder player. Evaluated once per frame.
func (c *PlayClassifier) detectBlock(players map[string]*PlayerState, ball *BallState) (string, bool) {
	if !ball.InAir || len(ball.ShotArc) <= blockMinArcPoints {
		return "", false
	}
	if len(ball.ShotArc) <= blockMinDeflectionPoints {
		return "", false
	}

	deflected := false
	for i := 1; i < len(ball.ShotArc); i++ {
		if ball.ShotArc[i].Y-ball.ShotArc[i-1].Y < blockUpwardDeltaFt {
			deflected = true
			break
		}
	}
	if !deflected {
		return "", false
	}

	ballPos, ok := ball.Position()
	if !ok {
		return "", false
	}

	// Nearest non-holder to the ball. No eligible player is a normal
	// "no event" outcome, not an error.
	bestID := ""
	bestDist := 0.0
	for playerID, player := range players {
		if playerID == ball.HolderID {
			continue
		}
		last, ok := player.LastPosition()
		if !ok {
			continue
		}
		d := Distance(last.Pos, ballPos)
		if bestID == "" || d < bestDist {
			bestID = playerID
			bestDist = d
		}
	}
	if bestID == "" {
		return "", false
	}
	return bestID, true
}

// hoopDistance returns the planar distance from the player's most recent
// position to the hoop reference point, or 0 when the player has no
// recorded position (treated as "no signal").
func (c *PlayClassifier) hoopDistance(player *PlayerState) float64 {
	last, ok := player.LastPosition()
	if !ok {
		return 0
	}
	return Distance(last.Pos, c.cfg.HoopPosition())
}

func (c *PlayClassifier) newPlay(frameIdx int64, kind PlayType, playerID string) Play {
	return Play{
		PlayID:     fmt.Sprintf("play_%s", uuid.NewString()),
		Frame:      frameIdx,
		Type:       kind,
		PlayerID:   playerID,
		Confidence: DefaultPlayConfidence,
		Timestamp:  float64(frameIdx) / c.cfg.FrameRate,
	}
}
