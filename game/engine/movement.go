package engine

import (
	"strings"
	"time"

	"github.com/wricardo/micromouse/game/maze"
	"github.com/wricardo/micromouse/game/robot"
)

// MoveBody applies a command to the simulated robot body. Unsupported
// rotations are ignored, distance is clamped to MaxStride and travel stops at
// the first wall. It returns the number of cells covered and a note for any
// rule the command ran into.
func MoveBody(m *maze.Maze, body *robot.Pose, move robot.Move) (int, string) {
	var notes []string

	if move.Rotation.Valid() {
		body.Heading = body.Heading.Rotate(move.Rotation)
	} else {
		notes = append(notes, "Invalid rotation value, no rotation performed.")
	}

	distance := move.Distance
	if distance > robot.MaxStride || distance < -robot.MaxStride {
		notes = append(notes, "Movement limited to three squares in a turn.")
		distance = max(min(distance, robot.MaxStride), -robot.MaxStride)
	}

	direction := body.Heading
	if distance < 0 {
		direction = body.Heading.Reverse()
		distance = -distance
	}

	moved := 0
	for ; moved < distance; moved++ {
		if !m.IsPermissible(body.Position, direction) {
			notes = append(notes, "Movement stopped by wall.")
			break
		}
		body.Position = body.Position.Step(direction)
	}

	return moved, strings.Join(notes, " ")
}

// AddMoveToHistory adds a turn to the trial's move history
func (s *TrialState) AddMoveToHistory(entry MoveHistoryEntry) MoveHistoryEntry {
	entry.ID = newID()
	entry.TrialID = s.TrialID
	entry.Timestamp = time.Now().Unix()
	entry.MoveNumber = s.TotalMoves + 1

	// Append to cumulative history (never cleared by reset) and increment total
	s.MoveHistory = append(s.MoveHistory, entry)
	s.TotalMoves++

	s.CurrentMoves = append(s.CurrentMoves, entry)
	s.CurrentMovesCount++
	return entry
}
