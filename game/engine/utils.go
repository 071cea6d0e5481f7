package engine

import (
	"errors"
	"strings"

	"github.com/wricardo/micromouse/game/robot"
)

// ErrOutOfBounds is returned for cell queries outside the maze
var ErrOutOfBounds = errors.New("position is outside the maze")

// Score combines run turns: every second-run turn counts fully, every
// first-run turn counts 1/ExplorationWeight
func Score(runTurns [2]int) float64 {
	return float64(runTurns[1]) + float64(runTurns[0])/ExplorationWeight
}

// CellView is what the robot knows about one cell
type CellView struct {
	Position robot.Position    `json:"position"`
	Known    bool              `json:"known"`
	Openings string            `json:"openings"`
	Visits   int               `json:"visits"`
	Goal     bool              `json:"goal"`
	Robot    bool              `json:"robot"`
	Policy   *robot.PolicyStep `json:"policy,omitempty"`
}

// DescribeCell reports the robot's knowledge of p
func (e *TrialEngine) DescribeCell(p robot.Position) (*CellView, error) {
	grid := e.ctrl.Grid()
	if !grid.InBounds(p) {
		return nil, ErrOutOfBounds
	}

	view := &CellView{
		Position: p,
		Known:    grid.Known(p),
		Openings: grid.Openings(p).String(),
		Visits:   grid.Visits(p),
		Goal:     grid.IsGoal(p),
		Robot:    e.state.Body.Position == p,
	}
	if policy, ok := e.ctrl.CachedPolicy(); ok {
		if step, ok := policy.At(p); ok {
			view.Policy = &step
		}
	}
	return view, nil
}

// RenderKnownMap returns the current ASCII view of the robot's map
func (e *TrialEngine) RenderKnownMap() []string {
	return RenderKnownMap(e.ctrl, e.state.Body)
}

type wallState int

const (
	wallUnknown wallState = iota
	wallOpen
	wallClosed
)

// sideState reports what the grid knows about the side of p facing h.
// Either cell of the pair can answer.
func sideState(grid *robot.GridMap, p robot.Position, h robot.Heading) wallState {
	if grid.Known(p) {
		if grid.Openings(p).Has(h) {
			return wallOpen
		}
		return wallClosed
	}
	next := p.Step(h)
	if !grid.InBounds(next) {
		return wallClosed
	}
	if grid.Known(next) {
		if grid.Openings(next).Has(h.Reverse()) {
			return wallOpen
		}
		return wallClosed
	}
	return wallUnknown
}

var arrows = [4]byte{'^', '>', 'v', '<'}

// RenderKnownMap draws the robot's map, top row first. Walls the robot has
// not sensed are dotted, the body is '@' and policy cells show their action.
func RenderKnownMap(ctrl *robot.Controller, body robot.Pose) []string {
	grid := ctrl.Grid()
	policy, planned := ctrl.CachedPolicy()
	dim := grid.Dim()

	horizontal := func(p robot.Position, h robot.Heading) string {
		switch sideState(grid, p, h) {
		case wallOpen:
			return "   "
		case wallClosed:
			return "---"
		default:
			return " . "
		}
	}
	vertical := func(p robot.Position, h robot.Heading) string {
		switch sideState(grid, p, h) {
		case wallOpen:
			return " "
		case wallClosed:
			return "|"
		default:
			return ":"
		}
	}
	content := func(p robot.Position) string {
		if p == body.Position {
			return " @ "
		}
		if planned {
			if step, ok := policy.At(p); ok {
				return " " + string(arrows[step.Action]) + " "
			}
		}
		if !grid.Known(p) {
			return " ? "
		}
		if grid.IsGoal(p) {
			return " G "
		}
		return "   "
	}

	lines := make([]string, 0, 2*dim+1)
	for y := dim - 1; y >= 0; y-- {
		var top, row strings.Builder
		for x := 0; x < dim; x++ {
			p := robot.Position{X: x, Y: y}
			top.WriteString("+" + horizontal(p, robot.Up))
			row.WriteString(vertical(p, robot.Left) + content(p))
		}
		top.WriteString("+")
		row.WriteString(vertical(robot.Position{X: dim - 1, Y: y}, robot.Right))
		lines = append(lines, top.String(), row.String())
	}

	var bottom strings.Builder
	for x := 0; x < dim; x++ {
		bottom.WriteString("+" + horizontal(robot.Position{X: x, Y: 0}, robot.Down))
	}
	bottom.WriteString("+")
	return append(lines, bottom.String())
}
