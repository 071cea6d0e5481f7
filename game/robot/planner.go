package robot

import "errors"

// ErrNoPath is returned when the search frontier empties before any goal
// cell is reached. The map is either disconnected or not explored enough.
var ErrNoPath = errors.New("no known path from origin to goal region")

// PolicyStep is the move to make when standing on a cell: turn by Rotation,
// then advance along Action.
type PolicyStep struct {
	Rotation Rotation `json:"rotation"`
	Action   Heading  `json:"action"`
}

// PolicyEntry is a PolicyStep together with the cell it belongs to.
type PolicyEntry struct {
	Position Position `json:"position"`
	PolicyStep
}

// Policy maps cells on the planned route to the move that continues it.
// It is immutable once Plan returns it.
type Policy struct {
	dim      int
	origin   Position
	goal     Position
	steps    []PolicyStep
	set      []bool
	length   int
	expanded int
}

func newPolicy(dim int, origin Position) *Policy {
	return &Policy{
		dim:    dim,
		origin: origin,
		steps:  make([]PolicyStep, dim*dim),
		set:    make([]bool, dim*dim),
	}
}

func (p *Policy) put(pos Position, step PolicyStep) {
	i := pos.X*p.dim + pos.Y
	p.steps[i] = step
	p.set[i] = true
}

// At returns the policy step for pos
func (p *Policy) At(pos Position) (PolicyStep, bool) {
	if pos.X < 0 || pos.X >= p.dim || pos.Y < 0 || pos.Y >= p.dim {
		return PolicyStep{}, false
	}
	i := pos.X*p.dim + pos.Y
	return p.steps[i], p.set[i]
}

// Dim returns the maze dimension the policy was planned for
func (p *Policy) Dim() int { return p.dim }

// Origin returns the cell the route starts from
func (p *Policy) Origin() Position { return p.origin }

// Goal returns the goal cell the route ends on
func (p *Policy) Goal() Position { return p.goal }

// Length returns the number of cell-to-cell moves on the route
func (p *Policy) Length() int { return p.length }

// Expanded returns how many search states were popped while planning
func (p *Policy) Expanded() int { return p.expanded }

// Route walks the policy from the origin and returns its entries in order.
func (p *Policy) Route() []PolicyEntry {
	route := make([]PolicyEntry, 0, p.length)
	pos := p.origin
	for i := 0; i < p.length; i++ {
		step, ok := p.At(pos)
		if !ok {
			break
		}
		route = append(route, PolicyEntry{Position: pos, PolicyStep: step})
		pos = pos.Step(step.Action)
	}
	return route
}

// Path returns the cells visited by the route, origin and goal included.
func (p *Policy) Path() []Position {
	path := []Position{p.origin}
	for _, entry := range p.Route() {
		path = append(path, entry.Position.Step(entry.Action))
	}
	return path
}

// frontierNode is a search state. Nodes compare lexicographically by
// (f, x, y, heading, seq).
type frontierNode struct {
	f       int
	g       int
	pos     Position
	heading Heading
	seq     int
}

func frontierLess(a, b frontierNode) bool {
	if a.f != b.f {
		return a.f < b.f
	}
	if a.pos.X != b.pos.X {
		return a.pos.X < b.pos.X
	}
	if a.pos.Y != b.pos.Y {
		return a.pos.Y < b.pos.Y
	}
	if a.heading != b.heading {
		return a.heading < b.heading
	}
	return a.seq < b.seq
}

// Plan runs A* over the known cells of grid, from origin facing heading, to
// the nearest-found cell of the goal region. Unknown cells are never entered.
//
// A cell is closed as soon as a state reaching it is pushed, whatever the
// heading of that state, so the search finds a shortest route by position
// and not by orientation. grid is only read.
func Plan(grid *GridMap, origin Position, heading Heading) (*Policy, error) {
	dim := grid.Dim()
	index := func(p Position) int { return p.X*dim + p.Y }

	closed := make([]bool, dim*dim)
	actions := make([]Heading, dim*dim)
	rotations := make([]Rotation, dim*dim)

	closed[index(origin)] = true
	frontier := newMinQueue(frontierLess)
	frontier.push(frontierNode{f: grid.Heuristic(origin), pos: origin, heading: heading})

	seq := 0
	expanded := 0
	for frontier.Len() > 0 {
		node := frontier.pop()
		expanded++

		if grid.IsGoal(node.pos) {
			policy := newPolicy(dim, origin)
			policy.goal = node.pos
			policy.expanded = expanded
			for cur := node.pos; cur != origin; {
				action := actions[index(cur)]
				prev := cur.Step(action.Reverse())
				policy.put(prev, PolicyStep{Rotation: rotations[index(cur)], Action: action})
				policy.length++
				cur = prev
			}
			return policy, nil
		}

		openings := grid.Openings(node.pos)
		for _, dir := range Headings {
			if !openings.Has(dir) {
				continue
			}
			next := node.pos.Step(dir)
			if !grid.InBounds(next) || !grid.Known(next) || closed[index(next)] {
				continue
			}
			rotation, ok := node.heading.RotationTo(dir)
			if !ok {
				// A half turn cannot be issued as one command.
				continue
			}

			g := node.g + 1
			actions[index(next)] = dir
			rotations[index(next)] = rotation
			seq++
			frontier.push(frontierNode{
				f:       g + grid.Heuristic(next),
				g:       g,
				pos:     next,
				heading: node.heading.Rotate(rotation),
				seq:     seq,
			})
			closed[index(next)] = true
		}
	}

	return nil, ErrNoPath
}
