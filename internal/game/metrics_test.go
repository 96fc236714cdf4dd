package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/courtside.report/internal/vision"
)

func TestSpeedPercentiles(t *testing.T) {
	t.Parallel()

	speeds := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	p50, p85, p95 := speedPercentiles(speeds)
	assert.InDelta(t, 5.0, p50, 1e-9)
	assert.InDelta(t, 9.0, p85, 1e-9)
	assert.InDelta(t, 10.0, p95, 1e-9)

	p50, p85, p95 = speedPercentiles(nil)
	assert.Zero(t, p50)
	assert.Zero(t, p85)
	assert.Zero(t, p95)
}

func TestSessionMetrics(t *testing.T) {
	t.Parallel()

	s := NewSession(testConfig())
	for i := 0; i < 4; i++ {
		s.UpdateFrame([]vision.Detection{
			playerDet(1, float64(10+i), 50),
			playerDet(2, float64(30+2*i), 50),
		})
	}

	m := s.Metrics()
	assert.Equal(t, s.ID, m.SessionID)
	assert.Equal(t, int64(4), m.FramesProcessed)
	assert.Equal(t, 2, m.PlayersTracked)
	assert.Equal(t, 0, m.PlaysDetected)

	// Player 1 moves 1 ft/frame, player 2 moves 2 ft/frame; the pooled
	// median splits them.
	assert.Greater(t, m.P95Speed, m.P50Speed)
	assert.InDelta(t, 2.0, m.P95Speed, 1e-9)
}

func TestSessionMetricsCountsPlays(t *testing.T) {
	t.Parallel()

	s := NewSession(testConfig())
	frame := func(y float64) []vision.Detection {
		d := playerDet(7, 47, y)
		d.BallBBox = &vision.BBox{X1: 46, Y1: y - 4, X2: 48, Y2: y - 2}
		return []vision.Detection{d}
	}
	for _, y := range []float64{100, 97, 94, 91, 91} {
		s.UpdateFrame(frame(y))
	}

	m := s.Metrics()
	require.Equal(t, 1, m.PlaysDetected)
	assert.Equal(t, 1, m.PlaysByType[PlayDunk])
}

func TestPlayerSummaries(t *testing.T) {
	t.Parallel()

	s := NewSession(testConfig())
	frame := func(y float64) []vision.Detection {
		d := playerDet(7, 47, y)
		d.BallBBox = &vision.BBox{X1: 46, Y1: y - 4, X2: 48, Y2: y - 2}
		return []vision.Detection{d, playerDet(2, 10, 50)}
	}
	for _, y := range []float64{100, 97, 94, 91, 91} {
		s.UpdateFrame(frame(y))
	}

	sums := s.PlayerSummaries()
	require.Len(t, sums, 2)
	assert.Equal(t, "player_2", sums[0].PlayerID)
	assert.Equal(t, "player_7", sums[1].PlayerID)

	dunker := sums[1]
	assert.Equal(t, s.ID, dunker.SessionID)
	assert.Equal(t, 5, dunker.Frames)
	assert.Equal(t, 1, dunker.PlaysCredited)
	assert.InDelta(t, 3.0, dunker.PeakSpeed, 1e-9)

	idle := sums[0]
	assert.Zero(t, idle.PlaysCredited)
	assert.Zero(t, idle.PeakSpeed, "stationary player peaks at zero")
}
