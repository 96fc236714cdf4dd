package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/courtside.report/internal/game"
)

func writeReplayFile(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.ndjson")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestReplayFile(t *testing.T) {
	t.Parallel()

	var lines []string
	for _, y := range []float64{100, 97, 94, 91, 91} {
		lines = append(lines, frameBody(7, 47, y, true))
	}
	// Blank lines in captures are tolerated.
	lines = append(lines, "")
	path := writeReplayFile(t, lines)

	session := game.NewSession(testSessionConfig())
	require.NoError(t, replayFile(context.Background(), path, session, nil))

	assert.Equal(t, int64(5), session.FrameIndex())
	require.Equal(t, 1, session.Log().Len())
	assert.Equal(t, game.PlayDunk, session.Log().All()[0].Type)
}

func TestReplayFileMalformedLine(t *testing.T) {
	t.Parallel()

	path := writeReplayFile(t, []string{frameBody(7, 47, 100, false), "{broken"})
	session := game.NewSession(testSessionConfig())

	err := replayFile(context.Background(), path, session, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReplayFileMissing(t *testing.T) {
	t.Parallel()

	session := game.NewSession(testSessionConfig())
	err := replayFile(context.Background(), filepath.Join(t.TempDir(), "nope.ndjson"), session, nil)
	assert.Error(t, err)
}

func TestReplayFileCancelled(t *testing.T) {
	t.Parallel()

	var lines []string
	for i := 0; i < 100; i++ {
		lines = append(lines, frameBody(7, float64(10+i%5), 100, false))
	}
	path := writeReplayFile(t, lines)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session := game.NewSession(testSessionConfig())
	err := replayFile(ctx, path, session, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
