package maze

import (
	"fmt"

	"github.com/wricardo/micromouse/game/robot"
)

// Validate checks the layout rules a trial depends on: an even dimension,
// closed outer walls, walls that agree between neighbors and a goal region
// reachable from the origin.
func (m *Maze) Validate() error {
	if m.dim%2 != 0 {
		return fmt.Errorf("%w: dimension must be even, got %d", ErrInvalidMaze, m.dim)
	}

	for x := 0; x < m.dim; x++ {
		for y := 0; y < m.dim; y++ {
			p := robot.Position{X: x, Y: y}
			open := m.Openings(p)
			for _, h := range robot.Headings {
				next := p.Step(h)
				if !m.InBounds(next) {
					if open.Has(h) {
						return fmt.Errorf("%w: cell %s is open %s through the outer wall", ErrInvalidMaze, p, h)
					}
					continue
				}
				if open.Has(h) != m.Openings(next).Has(h.Reverse()) {
					return fmt.Errorf("%w: wall between %s and %s is inconsistent", ErrInvalidMaze, p, next)
				}
			}
		}
	}

	distances := m.Distances(robot.Origin)
	for _, g := range robot.GoalCells(m.dim) {
		if distances[g.X][g.Y] >= 0 {
			return nil
		}
	}
	return fmt.Errorf("%w: goal region is not reachable from the origin", ErrInvalidMaze)
}

// Distances returns breadth-first move counts from start, -1 for cells that
// cannot be reached.
func (m *Maze) Distances(start robot.Position) [][]int {
	dist := make([][]int, m.dim)
	for x := range dist {
		dist[x] = make([]int, m.dim)
		for y := range dist[x] {
			dist[x][y] = -1
		}
	}
	if !m.InBounds(start) {
		return dist
	}

	dist[start.X][start.Y] = 0
	queue := []robot.Position{start}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, h := range robot.Headings {
			if !m.IsPermissible(p, h) {
				continue
			}
			next := p.Step(h)
			if !m.InBounds(next) || dist[next.X][next.Y] >= 0 {
				continue
			}
			dist[next.X][next.Y] = dist[p.X][p.Y] + 1
			queue = append(queue, next)
		}
	}
	return dist
}

// Stats summarizes a maze layout.
type Stats struct {
	Dim           int `json:"dim"`
	DeadEnds      int `json:"dead_ends"`
	Junctions     int `json:"junctions"`
	Reachable     int `json:"reachable"`
	ShortestRoute int `json:"shortest_route"`
}

// Stats counts dead ends (one opening) and junctions (three or more),
// reachable cells and the fewest moves from the origin to the goal region.
// ShortestRoute is -1 when the goal cannot be reached.
func (m *Maze) Stats() Stats {
	s := Stats{Dim: m.dim, ShortestRoute: -1}
	distances := m.Distances(robot.Origin)
	for x := 0; x < m.dim; x++ {
		for y := 0; y < m.dim; y++ {
			switch n := openCount(m.Openings(robot.Position{X: x, Y: y})); {
			case n == 1:
				s.DeadEnds++
			case n >= 3:
				s.Junctions++
			}
			if distances[x][y] >= 0 {
				s.Reachable++
			}
		}
	}
	for _, g := range robot.GoalCells(m.dim) {
		if d := distances[g.X][g.Y]; d >= 0 && (s.ShortestRoute < 0 || d < s.ShortestRoute) {
			s.ShortestRoute = d
		}
	}
	return s
}

func openCount(o robot.Openings) int {
	n := 0
	for _, h := range robot.Headings {
		if o.Has(h) {
			n++
		}
	}
	return n
}
