package game

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// SessionMetrics summarises a session's activity so far.
type SessionMetrics struct {
	SessionID       string           `json:"session_id"`
	FramesProcessed int64            `json:"frames_processed"`
	PlayersTracked  int              `json:"players_tracked"`
	PlaysDetected   int              `json:"plays_detected"`
	PlaysByType     map[PlayType]int `json:"plays_by_type"`

	// Speed percentiles pooled across all players' bounded speed histories,
	// in feet per frame. Zero when no speed samples exist yet.
	P50Speed float64 `json:"p50_speed"`
	P85Speed float64 `json:"p85_speed"`
	P95Speed float64 `json:"p95_speed"`
}

// PlayerSummary is a per-player aggregate suitable for persistence.
type PlayerSummary struct {
	SessionID string `json:"session_id"`
	PlayerID  string `json:"player_id"`

	Frames    int     `json:"frames"`
	AvgSpeed  float64 `json:"avg_speed"`
	PeakSpeed float64 `json:"peak_speed"`
	P50Speed  float64 `json:"p50_speed"`
	P85Speed  float64 `json:"p85_speed"`
	P95Speed  float64 `json:"p95_speed"`

	PlaysCredited int `json:"plays_credited"`
}

// speedPercentiles computes the 50th/85th/95th empirical percentiles of the
// given samples. The input slice is sorted in place.
func speedPercentiles(speeds []float64) (p50, p85, p95 float64) {
	if len(speeds) == 0 {
		return 0, 0, 0
	}
	sort.Float64s(speeds)
	p50 = stat.Quantile(0.50, stat.Empirical, speeds, nil)
	p85 = stat.Quantile(0.85, stat.Empirical, speeds, nil)
	p95 = stat.Quantile(0.95, stat.Empirical, speeds, nil)
	return p50, p85, p95
}

// Metrics computes the session-level summary from current state.
func (s *Session) Metrics() SessionMetrics {
	m := SessionMetrics{
		SessionID:       s.ID,
		FramesProcessed: s.frameIdx,
		PlayersTracked:  len(s.players),
		PlaysDetected:   s.log.Len(),
		PlaysByType:     make(map[PlayType]int),
	}
	for _, p := range s.log.All() {
		m.PlaysByType[p.Type]++
	}

	var pooled []float64
	for _, player := range s.players {
		pooled = append(pooled, player.SpeedHistory()...)
	}
	m.P50Speed, m.P85Speed, m.P95Speed = speedPercentiles(pooled)
	return m
}

// PlayerSummaries computes per-player aggregates, sorted by player ID.
func (s *Session) PlayerSummaries() []PlayerSummary {
	credited := make(map[string]int)
	for _, p := range s.log.All() {
		credited[p.PlayerID]++
	}

	out := make([]PlayerSummary, 0, len(s.players))
	for playerID, player := range s.players {
		sum := PlayerSummary{
			SessionID:     s.ID,
			PlayerID:      playerID,
			Frames:        player.ObservationCount,
			AvgSpeed:      player.AvgSpeed,
			PeakSpeed:     player.PeakSpeed,
			PlaysCredited: credited[playerID],
		}
		sum.P50Speed, sum.P85Speed, sum.P95Speed = speedPercentiles(player.SpeedHistory())
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}
