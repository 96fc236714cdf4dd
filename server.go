package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/banshee-data/courtside.report/internal/game"
	"github.com/banshee-data/courtside.report/internal/monitoring"
	"github.com/banshee-data/courtside.report/internal/playdb"
	"github.com/banshee-data/courtside.report/internal/vision"
)

// Server exposes one live session over HTTP. The session itself is
// single-writer, so every handler that touches it takes mu; frame ingestion
// is therefore serialised across concurrent POSTs.
type Server struct {
	mu      sync.Mutex
	session *game.Session
	db      *playdb.DB
}

func NewServer(session *game.Session, db *playdb.DB) *Server {
	return &Server{session: session, db: db}
}

// ServeMux returns the API routes. Callers mount it under /api.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/frames", s.handleFrames)
	mux.HandleFunc("/plays", s.handlePlays)
	mux.HandleFunc("/plays/recent", s.handleRecentPlays)
	mux.HandleFunc("/players", s.handlePlayers)
	mux.HandleFunc("/ball", s.handleBall)
	mux.HandleFunc("/metrics", s.handleMetrics)
	return mux
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monitoring.Logf("failed to encode response: %v", err)
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// handleFrames ingests one frame of detections and returns the plays it
// produced. Malformed detections inside a well-formed frame are skipped by
// the engine; a body that fails to decode is rejected outright.
func (s *Server) handleFrames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var frame vision.Frame
	if err := json.NewDecoder(r.Body).Decode(&frame); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid frame body: %v", err))
		return
	}

	s.mu.Lock()
	plays := s.session.UpdateFrame(frame.Detections)
	frameIdx := s.session.FrameIndex()
	s.mu.Unlock()

	if s.db != nil {
		for _, p := range plays {
			if err := s.db.InsertPlay(s.session.ID, p); err != nil {
				monitoring.Logf("failed to persist play %s: %v", p.PlayID, err)
			}
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"frame": frameIdx,
		"plays": plays,
	})
}

// handlePlays returns the session's full play history, or a timestamp slice
// of it when from/to query parameters are given (seconds, both inclusive).
func (s *Server) handlePlays(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	fromStr, toStr := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if fromStr != "" || toStr != "" {
		if s.db == nil {
			s.writeJSONError(w, http.StatusBadRequest, "range queries need a database")
			return
		}
		from, err := parseSeconds(fromStr, 0)
		if err != nil {
			s.writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		to, err := parseSeconds(toStr, 1e18)
		if err != nil {
			s.writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		plays, err := s.db.PlaysInRange(s.session.ID, from, to)
		if err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to query plays: %v", err))
			return
		}
		s.writeJSON(w, http.StatusOK, plays)
		return
	}

	s.mu.Lock()
	plays := s.session.Log().All()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, plays)
}

// handleRecentPlays returns plays within window_seconds of the latest play.
func (s *Server) handleRecentPlays(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	window := 30.0
	if ws := r.URL.Query().Get("window_seconds"); ws != "" {
		v, err := strconv.ParseFloat(ws, 64)
		if err != nil || v < 0 {
			s.writeJSONError(w, http.StatusBadRequest, "invalid window_seconds")
			return
		}
		window = v
	}

	s.mu.Lock()
	plays := s.session.Log().RecentPlays(window)
	s.mu.Unlock()

	if plays == nil {
		plays = []game.Play{}
	}
	s.writeJSON(w, http.StatusOK, plays)
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.mu.Lock()
	snaps := s.session.PlayerSnapshots()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, snaps)
}

func (s *Server) handleBall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.mu.Lock()
	ball := s.session.BallSnapshotNow()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, ball)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.mu.Lock()
	m := s.session.Metrics()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, m)
}

// persistSummaries flushes current per-player aggregates to the database.
func (s *Server) persistSummaries() error {
	if s.db == nil {
		return nil
	}

	s.mu.Lock()
	sums := s.session.PlayerSummaries()
	s.mu.Unlock()

	for _, sum := range sums {
		if err := s.db.UpsertPlayerSummary(sum); err != nil {
			return err
		}
	}
	return nil
}

func parseSeconds(s string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	return v, nil
}
