package robot

import "github.com/inconshreveable/log15/v3"

// candidate is a neighbor the explorer may move into. Candidates compare
// lexicographically by (cost, x, y, slot).
type candidate struct {
	cost int
	pos  Position
	slot int
}

func candidateLess(a, b candidate) bool {
	if a.cost != b.cost {
		return a.cost < b.cost
	}
	if a.pos.X != b.pos.X {
		return a.pos.X < b.pos.X
	}
	if a.pos.Y != b.pos.Y {
		return a.pos.Y < b.pos.Y
	}
	return a.slot < b.slot
}

// Explorer maps the maze during the first run. It prefers the neighbor with
// the lowest visit count plus distance to the center.
type Explorer struct {
	grid *GridMap
	log  log15.Logger
}

// NewExplorer creates an explorer writing into grid
func NewExplorer(grid *GridMap, logger log15.Logger) *Explorer {
	if logger == nil {
		logger = discardLogger()
	}
	return &Explorer{grid: grid, log: logger}
}

// Step records what the robot senses at pose, then either signals a reset
// (goal reached) or moves pose one cell toward the cheapest neighbor.
func (e *Explorer) Step(pose *Pose, sensors Sensors) Decision {
	pos := pose.Position
	e.grid.IncrementVisit(pos)

	if !e.grid.Known(pos) {
		e.grid.MarkIfUnknown(pos, senseOpenings(*pose, sensors))
	}

	if e.grid.IsGoal(pos) {
		e.log.Debug("goal reached during exploration", "pos", pos, "known", e.grid.KnownCount())
		*pose = StartPose
		return ResetDecision()
	}

	slots := pose.Heading.Sensors()
	choices := newMinQueue(candidateLess)
	for slot, reading := range sensors {
		if reading == 0 {
			continue
		}
		next := pos.Step(slots[slot])
		if !e.grid.InBounds(next) {
			e.log.Warn("sensor reports an opening through the maze boundary", "pos", pos, "dir", slots[slot])
			continue
		}
		choices.push(candidate{
			cost: e.grid.Visits(next) + e.grid.Heuristic(next),
			pos:  next,
			slot: slot,
		})
	}

	if choices.Len() == 0 {
		// Dead end: turn in place and sense again next turn.
		pose.Heading = pose.Heading.Right()
		return MoveDecision(RotateRight, 0)
	}

	best := choices.pop()
	rotation := slotRotations[best.slot]
	pose.Heading = pose.Heading.Rotate(rotation)
	pose.Position = best.pos
	return MoveDecision(rotation, 1)
}

// senseOpenings converts a sensor reading taken at pose into absolute
// openings. Outside the origin the cell behind the robot is always open,
// since the robot arrived through it.
func senseOpenings(pose Pose, sensors Sensors) Openings {
	var openings Openings
	slots := pose.Heading.Sensors()
	for slot, reading := range sensors {
		if reading != 0 {
			openings |= slots[slot].Bit()
		}
	}
	if pose.Position != Origin {
		openings |= pose.Heading.Reverse().Bit()
	}
	return openings
}
