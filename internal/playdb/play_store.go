package playdb

import (
	"database/sql"
	"fmt"

	"github.com/banshee-data/courtside.report/internal/game"
)

// nullFloat converts a zero-valued context field to NULL so that plays
// without that context (e.g. a block has no shot distance) stay NULL in the
// schema instead of storing a misleading 0.
func nullFloat(f float64) interface{} {
	if f == 0 {
		return nil
	}
	return f
}

// InsertPlay stores one detected play under the given session.
func (db *DB) InsertPlay(sessionID string, p game.Play) error {
	_, err := db.Exec(`
		INSERT INTO plays (
			play_id, session_id, frame, play_type, player_id,
			confidence, ts_seconds, jump_height_ft, distance_ft
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.PlayID, sessionID, p.Frame, string(p.Type), p.PlayerID,
		p.Confidence, p.Timestamp, nullFloat(p.JumpHeight), nullFloat(p.Distance),
	)
	if err != nil {
		return fmt.Errorf("failed to insert play %s: %w", p.PlayID, err)
	}
	return nil
}

// PlaysBySession returns all plays for a session ordered by timestamp.
func (db *DB) PlaysBySession(sessionID string) ([]game.Play, error) {
	rows, err := db.Query(`
		SELECT play_id, frame, play_type, player_id, confidence,
		       ts_seconds, jump_height_ft, distance_ft
		FROM plays
		WHERE session_id = ?
		ORDER BY ts_seconds, play_id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query plays: %w", err)
	}
	defer rows.Close()

	return scanPlays(rows)
}

// PlaysInRange returns a session's plays with ts_seconds in [fromTs, toTs],
// both bounds inclusive, ordered by timestamp.
func (db *DB) PlaysInRange(sessionID string, fromTs, toTs float64) ([]game.Play, error) {
	rows, err := db.Query(`
		SELECT play_id, frame, play_type, player_id, confidence,
		       ts_seconds, jump_height_ft, distance_ft
		FROM plays
		WHERE session_id = ? AND ts_seconds >= ? AND ts_seconds <= ?
		ORDER BY ts_seconds, play_id`,
		sessionID, fromTs, toTs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query plays in range: %w", err)
	}
	defer rows.Close()

	return scanPlays(rows)
}

// RecentPlays returns the session's plays within windowSeconds of its latest
// play, lower bound inclusive. An empty session yields an empty result.
func (db *DB) RecentPlays(sessionID string, windowSeconds float64) ([]game.Play, error) {
	rows, err := db.Query(`
		SELECT play_id, frame, play_type, player_id, confidence,
		       ts_seconds, jump_height_ft, distance_ft
		FROM plays
		WHERE session_id = ?
		  AND ts_seconds >= (
		      SELECT MAX(ts_seconds) FROM plays WHERE session_id = ?
		  ) - ?
		ORDER BY ts_seconds, play_id`,
		sessionID, sessionID, windowSeconds,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent plays: %w", err)
	}
	defer rows.Close()

	return scanPlays(rows)
}

func scanPlays(rows *sql.Rows) ([]game.Play, error) {
	var plays []game.Play
	for rows.Next() {
		var (
			p          game.Play
			playType   string
			jumpHeight sql.NullFloat64
			distance   sql.NullFloat64
		)
		if err := rows.Scan(
			&p.PlayID, &p.Frame, &playType, &p.PlayerID, &p.Confidence,
			&p.Timestamp, &jumpHeight, &distance,
		); err != nil {
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}
		p.Type = game.PlayType(playType)
		if jumpHeight.Valid {
			p.JumpHeight = jumpHeight.Float64
		}
		if distance.Valid {
			p.Distance = distance.Float64
		}
		plays = append(plays, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plays: %w", err)
	}
	return plays, nil
}

// UpsertPlayerSummary inserts or replaces a per-player aggregate row.
func (db *DB) UpsertPlayerSummary(s game.PlayerSummary) error {
	_, err := db.Exec(`
		INSERT INTO player_summaries (
			session_id, player_id, frames, avg_speed, peak_speed,
			p50_speed, p85_speed, p95_speed, plays_credited
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, player_id) DO UPDATE SET
			frames = excluded.frames,
			avg_speed = excluded.avg_speed,
			peak_speed = excluded.peak_speed,
			p50_speed = excluded.p50_speed,
			p85_speed = excluded.p85_speed,
			p95_speed = excluded.p95_speed,
			plays_credited = excluded.plays_credited`,
		s.SessionID, s.PlayerID, s.Frames, s.AvgSpeed, s.PeakSpeed,
		s.P50Speed, s.P85Speed, s.P95Speed, s.PlaysCredited,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert player summary %s/%s: %w", s.SessionID, s.PlayerID, err)
	}
	return nil
}

// PlayerSummaries returns all per-player aggregates for a session, ordered
// by player ID.
func (db *DB) PlayerSummaries(sessionID string) ([]game.PlayerSummary, error) {
	rows, err := db.Query(`
		SELECT session_id, player_id, frames, avg_speed, peak_speed,
		       p50_speed, p85_speed, p95_speed, plays_credited
		FROM player_summaries
		WHERE session_id = ?
		ORDER BY player_id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query player summaries: %w", err)
	}
	defer rows.Close()

	var sums []game.PlayerSummary
	for rows.Next() {
		var s game.PlayerSummary
		if err := rows.Scan(
			&s.SessionID, &s.PlayerID, &s.Frames, &s.AvgSpeed, &s.PeakSpeed,
			&s.P50Speed, &s.P85Speed, &s.P95Speed, &s.PlaysCredited,
		); err != nil {
			return nil, fmt.Errorf("failed to scan player summary: %w", err)
		}
		sums = append(sums, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player summaries: %w", err)
	}
	return sums, nil
}
