package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/courtside.report/internal/game"
	"github.com/banshee-data/courtside.report/internal/playdb"
)

func testSessionConfig() game.Config {
	return game.Config{
		CourtLengthFt:         94,
		CourtWidthFt:          50,
		ThreePointLineFt:      23.75,
		HoopHeightFt:          10,
		DunkJumpHeightFt:      1.5,
		MinTrajectoryLength:   5,
		RiseNoiseThreshold:    2.0,
		SettleNoiseThreshold:  1.0,
		BallAirDisplacementFt: 5.0,
		FrameRate:             30.0,
		PositionHistoryCap:    30,
		SpeedHistoryCap:       10,
	}
}

func newTestServer(t *testing.T, db *playdb.DB) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer(game.NewSession(testSessionConfig()), db)
	ts := httptest.NewServer(srv.ServeMux())
	t.Cleanup(ts.Close)
	return srv, ts
}

// frameBody builds a one-player frame with possession evidence at (x, y).
func frameBody(trackID int64, x, y float64, withBall bool) string {
	ball := ""
	if withBall {
		ball = fmt.Sprintf(`, "ball_bbox": [%f, %f, %f, %f]`, x-1, y-4, x+1, y-2)
	}
	return fmt.Sprintf(`{"detections": [{"class_name": "player", "bbox": [%f, %f, %f, %f], "track_id": %d, "confidence": 0.9%s}]}`, x-1, y-3, x+1, y+3, trackID, ball)
}

func postFrame(t *testing.T, ts *httptest.Server, body string) map[string]json.RawMessage {
	t.Helper()
	resp, err := http.Post(ts.URL+"/frames", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func getJSON(t *testing.T, ts *httptest.Server, path string, v interface{}) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestFramesEndpoint(t *testing.T) {
	t.Parallel()

	srv, ts := newTestServer(t, nil)

	out := postFrame(t, ts, frameBody(7, 47, 100, true))
	var frame int64
	require.NoError(t, json.Unmarshal(out["frame"], &frame))
	assert.Equal(t, int64(1), frame)

	var plays []game.Play
	require.NoError(t, json.Unmarshal(out["plays"], &plays))
	assert.Empty(t, plays)
	assert.Equal(t, int64(1), srv.session.FrameIndex())
}

func TestFramesEndpointRejectsBadBody(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, nil)
	resp, err := http.Post(ts.URL+"/frames", "application/json", strings.NewReader("not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFramesEndpointMethodNotAllowed(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/frames")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestDunkOverHTTP(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, nil)

	// Strong upward motion with the ball, then hang time at the top.
	for _, y := range []float64{100, 97, 94, 91} {
		postFrame(t, ts, frameBody(7, 47, y, true))
	}
	out := postFrame(t, ts, frameBody(7, 47, 91, true))

	var plays []game.Play
	require.NoError(t, json.Unmarshal(out["plays"], &plays))
	require.Len(t, plays, 1)
	assert.Equal(t, game.PlayDunk, plays[0].Type)
	assert.Equal(t, "player_7", plays[0].PlayerID)

	var logged []game.Play
	getJSON(t, ts, "/plays", &logged)
	assert.Len(t, logged, 1)

	var recent []game.Play
	getJSON(t, ts, "/plays/recent?window_seconds=10", &recent)
	assert.Len(t, recent, 1)
}

func TestRecentPlaysEmptySession(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, nil)
	var recent []game.Play
	getJSON(t, ts, "/plays/recent", &recent)
	assert.Empty(t, recent)

	resp, err := http.Get(ts.URL + "/plays/recent?window_seconds=abc")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPlayersAndMetricsEndpoints(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, nil)
	postFrame(t, ts, frameBody(7, 47, 100, true))
	postFrame(t, ts, frameBody(7, 48, 100, true))

	var players []game.PlayerSnapshot
	getJSON(t, ts, "/players", &players)
	require.Len(t, players, 1)
	assert.Equal(t, "player_7", players[0].PlayerID)
	assert.True(t, players[0].HasBall)

	var m game.SessionMetrics
	getJSON(t, ts, "/metrics", &m)
	assert.Equal(t, int64(2), m.FramesProcessed)
	assert.Equal(t, 1, m.PlayersTracked)

	var ball game.BallSnapshot
	getJSON(t, ts, "/ball", &ball)
	assert.Equal(t, "player_7", ball.HolderID)
}

func TestFramesPersistPlays(t *testing.T) {
	t.Parallel()

	db, err := playdb.Open(filepath.Join(t.TempDir(), "plays.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.MigrateUp("db/migrations"))

	srv, ts := newTestServer(t, db)
	for _, y := range []float64{100, 97, 94, 91, 91} {
		postFrame(t, ts, frameBody(7, 47, y, true))
	}

	stored, err := db.PlaysBySession(srv.session.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, game.PlayDunk, stored[0].Type)

	// Range query path served from the database.
	var ranged []game.Play
	getJSON(t, ts, "/plays?from=0&to=10", &ranged)
	assert.Len(t, ranged, 1)

	require.NoError(t, srv.persistSummaries())
	sums, err := db.PlayerSummaries(srv.session.ID)
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.Equal(t, "player_7", sums[0].PlayerID)
	assert.Equal(t, 1, sums[0].PlaysCredited)
}

func TestPlaysChartRenders(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/plays/chart", srv.handlePlaysChart)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/debug/plays/chart")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}
