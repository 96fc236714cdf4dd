package main

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/courtside.report/internal/game"
)

// playTypeIndex fixes the vertical lane for each play type on the timeline.
var playTypeIndex = map[game.PlayType]int{
	game.PlayTwoPointer:   0,
	game.PlayThreePointer: 1,
	game.PlayLayup:        2,
	game.PlayDunk:         3,
	game.PlayBlock:        4,
}

// handlePlaysChart renders an HTML scatter timeline of the session's plays.
// Debugging-only endpoint: no auth, regenerated on every request.
func (s *Server) handlePlaysChart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	plays := s.session.Log().All()
	sessionID := s.session.ID
	s.mu.Unlock()

	series := make(map[game.PlayType][]opts.ScatterData)
	for _, p := range plays {
		lane, ok := playTypeIndex[p.Type]
		if !ok {
			continue
		}
		series[p.Type] = append(series[p.Type], opts.ScatterData{
			Value: []interface{}{p.Timestamp, lane, p.PlayerID},
		})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Play Timeline",
			Theme:     "dark",
			Width:     "1200px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Detected Plays",
			Subtitle: fmt.Sprintf("session=%s plays=%d", sessionID, len(plays)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -1, Max: len(playTypeIndex), Name: "play type"}),
	)

	for kind, data := range series {
		scatter.AddSeries(string(kind), data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))
	}

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
