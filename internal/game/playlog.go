package game

// PlayLog is the session's append-only ordered history of detected plays.
// Entries are ordered by non-decreasing frame because frames are processed
// strictly in increasing order.
type PlayLog struct {
	plays []Play
}

// Append adds a play to the log.
func (l *PlayLog) Append(p Play) {
	l.plays = append(l.plays, p)
}

// Len returns the number of logged plays.
func (l *PlayLog) Len() int { return len(l.plays) }

// All returns a copy of the full play history, oldest first.
func (l *PlayLog) All() []Play {
	out := make([]Play, len(l.plays))
	copy(out, l.plays)
	return out
}

// RecentPlays returns all plays whose timestamp lies within
// [latest − windowSeconds, latest], inclusive of the lower bound, where
// latest is the timestamp of the most recently appended play. An empty log
// yields an empty result, never an error.
func (l *PlayLog) RecentPlays(windowSeconds float64) []Play {
	if len(l.plays) == 0 {
		return nil
	}

	latest := l.plays[len(l.plays)-1].Timestamp
	minTimestamp := latest - windowSeconds

	var out []Play
	for _, p := range l.plays {
		if p.Timestamp >= minTimestamp {
			out = append(out, p)
		}
	}
	return out
}
