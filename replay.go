package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/banshee-data/courtside.report/internal/game"
	"github.com/banshee-data/courtside.report/internal/monitoring"
	"github.com/banshee-data/courtside.report/internal/playdb"
	"github.com/banshee-data/courtside.report/internal/vision"
)

// replayFile feeds an NDJSON capture (one vision.Frame per line) through the
// session as fast as possible, persisting plays as they are detected. Blank
// lines are skipped; a malformed line aborts the replay since the remaining
// frames would no longer line up with their frame indexes.
func replayFile(ctx context.Context, path string, session *game.Session, db *playdb.DB) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open replay file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	lineNo := 0
	total := 0
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var frame vision.Frame
		if err := json.Unmarshal(line, &frame); err != nil {
			return fmt.Errorf("replay line %d: %w", lineNo, err)
		}

		plays := session.UpdateFrame(frame.Detections)
		total += len(plays)
		if db != nil {
			for _, p := range plays {
				if err := db.InsertPlay(session.ID, p); err != nil {
					return fmt.Errorf("replay line %d: %w", lineNo, err)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read replay file: %w", err)
	}

	monitoring.Logf("replay complete: %d frames, %d plays", session.FrameIndex(), total)
	return nil
}
