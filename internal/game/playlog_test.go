package game

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func logWithTimestamps(ts ...float64) *PlayLog {
	l := &PlayLog{}
	for i, t := range ts {
		l.Append(Play{
			PlayID:    "play_fixed",
			Frame:     int64(i + 1),
			Type:      PlayTwoPointer,
			PlayerID:  "player_1",
			Timestamp: t,
		})
	}
	return l
}

func timestamps(plays []Play) []float64 {
	out := make([]float64, len(plays))
	for i, p := range plays {
		out[i] = p.Timestamp
	}
	return out
}

func TestPlayLogRecentWindow(t *testing.T) {
	t.Parallel()

	l := logWithTimestamps(1, 3, 6, 9)

	got := timestamps(l.RecentPlays(5.0))
	if diff := cmp.Diff([]float64{6, 9}, got); diff != "" {
		t.Errorf("window 5s mismatch (-want +got):\n%s", diff)
	}

	// The lower bound is inclusive: 9 - 3 = 6 keeps the play at 6.
	got = timestamps(l.RecentPlays(3.0))
	if diff := cmp.Diff([]float64{6, 9}, got); diff != "" {
		t.Errorf("window 3s mismatch (-want +got):\n%s", diff)
	}

	got = timestamps(l.RecentPlays(100.0))
	assert.Len(t, got, 4, "wide window returns everything")
}

func TestPlayLogRecentEmpty(t *testing.T) {
	t.Parallel()

	l := &PlayLog{}
	assert.Empty(t, l.RecentPlays(10.0))
}

func TestPlayLogAllIsACopy(t *testing.T) {
	t.Parallel()

	l := logWithTimestamps(1, 2)
	all := l.All()
	all[0].PlayerID = "mutated"

	assert.Equal(t, "player_1", l.All()[0].PlayerID)
	assert.Equal(t, 2, l.Len())
}
