package maze

import (
	"errors"
	"fmt"

	"github.com/wricardo/micromouse/game/robot"
)

// ErrInvalidMaze wraps every structural problem found in a wall layout.
var ErrInvalidMaze = errors.New("invalid maze")

// Maze is the true layout a trial runs against. Walls are stored x-major:
// walls[x][y] is the open-side bitmask of cell (x,y).
type Maze struct {
	dim   int
	walls [][]int
}

// New builds a maze from a wall layout. Only the shape is checked here;
// use Validate for the full set of layout rules.
func New(dim int, walls [][]int) (*Maze, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", ErrInvalidMaze, dim)
	}
	if len(walls) != dim {
		return nil, fmt.Errorf("%w: expected %d columns, got %d", ErrInvalidMaze, dim, len(walls))
	}

	copied := make([][]int, dim)
	for x, column := range walls {
		if len(column) != dim {
			return nil, fmt.Errorf("%w: column %d has %d cells, expected %d", ErrInvalidMaze, x, len(column), dim)
		}
		copied[x] = make([]int, dim)
		for y, v := range column {
			if v < 0 || v > int(robot.AllOpen) {
				return nil, fmt.Errorf("%w: cell (%d,%d) has bitmask %d outside 0..15", ErrInvalidMaze, x, y, v)
			}
			copied[x][y] = v
		}
	}
	return &Maze{dim: dim, walls: copied}, nil
}

// Open returns a dim x dim maze with walls only on its boundary
func Open(dim int) *Maze {
	walls := make([][]int, dim)
	for x := range walls {
		walls[x] = make([]int, dim)
		for y := range walls[x] {
			var o robot.Openings
			if y < dim-1 {
				o |= robot.Up.Bit()
			}
			if x < dim-1 {
				o |= robot.Right.Bit()
			}
			if y > 0 {
				o |= robot.Down.Bit()
			}
			if x > 0 {
				o |= robot.Left.Bit()
			}
			walls[x][y] = int(o)
		}
	}
	return &Maze{dim: dim, walls: walls}
}

// Dim returns the maze dimension
func (m *Maze) Dim() int { return m.dim }

// Walls returns a copy of the wall layout
func (m *Maze) Walls() [][]int {
	out := make([][]int, m.dim)
	for x := range m.walls {
		out[x] = append([]int(nil), m.walls[x]...)
	}
	return out
}

// InBounds reports whether p lies inside the maze
func (m *Maze) InBounds(p robot.Position) bool {
	return p.X >= 0 && p.X < m.dim && p.Y >= 0 && p.Y < m.dim
}

// Openings returns the open sides of p
func (m *Maze) Openings(p robot.Position) robot.Openings {
	return robot.Openings(m.walls[p.X][p.Y])
}

// IsPermissible reports whether the robot can move from p along h
func (m *Maze) IsPermissible(p robot.Position, h robot.Heading) bool {
	return m.InBounds(p) && m.Openings(p).Has(h)
}

// DistToWall counts the open cells between p and the nearest wall along h
func (m *Maze) DistToWall(p robot.Position, h robot.Heading) int {
	distance := 0
	for m.IsPermissible(p, h) {
		distance++
		p = p.Step(h)
	}
	return distance
}

// Sense returns what the left, front and right sensors read at pose
func (m *Maze) Sense(pose robot.Pose) robot.Sensors {
	var s robot.Sensors
	for slot, h := range pose.Heading.Sensors() {
		s[slot] = m.DistToWall(pose.Position, h)
	}
	return s
}

// Known returns a fully mapped robot grid for this maze
func (m *Maze) Known() *robot.GridMap {
	return robot.NewKnownGridMap(m.dim, m.walls)
}
