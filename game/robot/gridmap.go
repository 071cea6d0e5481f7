package robot

import "strings"

// Openings is the set of absolute directions known to be open from a cell.
type Openings uint8

// Unknown marks a cell whose openings have not been sensed yet.
const Unknown Openings = 0xFF

// AllOpen has every direction open.
const AllOpen Openings = 0x0F

// Has reports whether h is open
func (o Openings) Has(h Heading) bool {
	return o != Unknown && o&h.Bit() != 0
}

// Known reports whether o holds a sensed value
func (o Openings) Known() bool {
	return o != Unknown
}

// String renders open directions by their initials, e.g. "ur" for up and right.
func (o Openings) String() string {
	if o == Unknown {
		return "?"
	}
	var b strings.Builder
	for _, h := range Headings {
		if o.Has(h) {
			b.WriteByte(h.String()[0])
		}
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}

// GridMap is the robot's knowledge of the maze: write-once openings and visit
// counters per cell, stored in flat slices indexed by x*dim+y.
type GridMap struct {
	dim      int
	openings []Openings
	visits   []int
	known    int
}

// NewGridMap creates an empty map with every cell unknown
func NewGridMap(dim int) *GridMap {
	g := &GridMap{
		dim:      dim,
		openings: make([]Openings, dim*dim),
		visits:   make([]int, dim*dim),
	}
	for i := range g.openings {
		g.openings[i] = Unknown
	}
	return g
}

// NewKnownGridMap creates a fully mapped grid. walls[x][y] holds the open-side
// bitmask of cell (x,y).
func NewKnownGridMap(dim int, walls [][]int) *GridMap {
	g := NewGridMap(dim)
	for x := 0; x < dim && x < len(walls); x++ {
		for y := 0; y < dim && y < len(walls[x]); y++ {
			g.MarkIfUnknown(Position{X: x, Y: y}, Openings(walls[x][y])&AllOpen)
		}
	}
	return g
}

// Dim returns the maze dimension
func (g *GridMap) Dim() int { return g.dim }

// InBounds reports whether p lies on the grid
func (g *GridMap) InBounds(p Position) bool {
	return p.X >= 0 && p.X < g.dim && p.Y >= 0 && p.Y < g.dim
}

func (g *GridMap) index(p Position) int {
	return p.X*g.dim + p.Y
}

// MarkIfUnknown stores openings for p unless p is already known.
// It returns true when the value was written.
func (g *GridMap) MarkIfUnknown(p Position, openings Openings) bool {
	i := g.index(p)
	if g.openings[i] != Unknown {
		return false
	}
	g.openings[i] = openings & AllOpen
	g.known++
	return true
}

// Openings returns the openings of p, or Unknown
func (g *GridMap) Openings(p Position) Openings {
	return g.openings[g.index(p)]
}

// Known reports whether p has been sensed
func (g *GridMap) Known(p Position) bool {
	return g.openings[g.index(p)] != Unknown
}

// KnownCount returns the number of sensed cells
func (g *GridMap) KnownCount() int { return g.known }

// IncrementVisit records one more exploration turn spent on p
func (g *GridMap) IncrementVisit(p Position) {
	g.visits[g.index(p)]++
}

// Visits returns how many exploration turns were spent on p
func (g *GridMap) Visits(p Position) int {
	return g.visits[g.index(p)]
}

// Center returns the reference cell used by the heuristic
func (g *GridMap) Center() Position {
	return Position{X: g.dim / 2, Y: g.dim / 2}
}

// Heuristic is the Manhattan distance from p to the center reference cell
func (g *GridMap) Heuristic(p Position) int {
	c := g.Center()
	return abs(p.X-c.X) + abs(p.Y-c.Y)
}

// IsGoal reports whether p is one of the four center cells
func (g *GridMap) IsGoal(p Position) bool {
	return IsGoal(g.dim, p)
}

// IsGoal reports whether p is in the 2x2 goal region of a dim x dim maze
func IsGoal(dim int, p Position) bool {
	lo, hi := dim/2-1, dim/2
	return p.X >= lo && p.X <= hi && p.Y >= lo && p.Y <= hi
}

// GoalCells lists the goal region of a dim x dim maze
func GoalCells(dim int) []Position {
	lo, hi := dim/2-1, dim/2
	return []Position{{X: lo, Y: lo}, {X: lo, Y: hi}, {X: hi, Y: lo}, {X: hi, Y: hi}}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
