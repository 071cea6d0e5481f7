package robot

import (
	"errors"
	"fmt"
)

// Snapshot is a serializable copy of a controller's state.
// Openings are stored x-major with -1 for unknown cells.
type Snapshot struct {
	Dim             int             `json:"dim"`
	Phase           Phase           `json:"phase"`
	Pose            Pose            `json:"pose"`
	Openings        [][]int         `json:"openings"`
	Visits          [][]int         `json:"visits"`
	Planned         bool            `json:"planned"`
	PlanError       string          `json:"plan_error,omitempty"`
	Policy          *PolicySnapshot `json:"policy,omitempty"`
	NavigationTurns int             `json:"navigation_turns"`
}

// PolicySnapshot is the serialized form of a Policy.
type PolicySnapshot struct {
	Origin   Position      `json:"origin"`
	Goal     Position      `json:"goal"`
	Expanded int           `json:"expanded"`
	Route    []PolicyEntry `json:"route"`
}

// Snapshot copies the controller state
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Dim:             c.dim,
		Phase:           c.phase,
		Pose:            c.pose,
		Openings:        make([][]int, c.dim),
		Visits:          make([][]int, c.dim),
		Planned:         c.planned,
		NavigationTurns: c.NavigationTurns(),
	}
	for x := 0; x < c.dim; x++ {
		s.Openings[x] = make([]int, c.dim)
		s.Visits[x] = make([]int, c.dim)
		for y := 0; y < c.dim; y++ {
			p := Position{X: x, Y: y}
			s.Openings[x][y] = -1
			if c.grid.Known(p) {
				s.Openings[x][y] = int(c.grid.Openings(p))
			}
			s.Visits[x][y] = c.grid.Visits(p)
		}
	}
	if c.planErr != nil {
		s.PlanError = c.planErr.Error()
	}
	if c.policy != nil {
		s.Policy = &PolicySnapshot{
			Origin:   c.policy.Origin(),
			Goal:     c.policy.Goal(),
			Expanded: c.policy.Expanded(),
			Route:    c.policy.Route(),
		}
	}
	return s
}

// RestoreController rebuilds a controller from a snapshot
func RestoreController(s Snapshot, opts ...Option) (*Controller, error) {
	c, err := NewController(s.Dim, opts...)
	if err != nil {
		return nil, err
	}
	if len(s.Openings) != s.Dim || len(s.Visits) != s.Dim {
		return nil, fmt.Errorf("snapshot grid does not match dimension %d", s.Dim)
	}
	if !c.grid.InBounds(s.Pose.Position) || !s.Pose.Heading.Valid() {
		return nil, fmt.Errorf("snapshot pose %s facing %s is invalid", s.Pose.Position, s.Pose.Heading)
	}
	// a planned controller holds exactly one of a policy or a plan error
	hasOutcome := s.Policy != nil || s.PlanError != ""
	if s.Planned != hasOutcome || (s.Policy != nil && s.PlanError != "") {
		return nil, fmt.Errorf("snapshot planning state is inconsistent (planned=%v)", s.Planned)
	}
	if s.Planned && s.Phase != Navigating {
		return nil, fmt.Errorf("snapshot is planned but still %s", s.Phase)
	}

	for x := 0; x < s.Dim; x++ {
		if len(s.Openings[x]) != s.Dim || len(s.Visits[x]) != s.Dim {
			return nil, fmt.Errorf("snapshot column %d does not match dimension %d", x, s.Dim)
		}
		for y := 0; y < s.Dim; y++ {
			p := Position{X: x, Y: y}
			if s.Openings[x][y] >= 0 {
				c.grid.MarkIfUnknown(p, Openings(s.Openings[x][y]))
			}
			for i := 0; i < s.Visits[x][y]; i++ {
				c.grid.IncrementVisit(p)
			}
		}
	}

	c.pose = s.Pose
	c.phase = s.Phase
	c.planned = s.Planned

	if s.PlanError != "" {
		if s.PlanError == ErrNoPath.Error() {
			c.planErr = ErrNoPath
		} else {
			c.planErr = errors.New(s.PlanError)
		}
	}

	if s.Policy != nil {
		policy := newPolicy(s.Dim, s.Policy.Origin)
		policy.goal = s.Policy.Goal
		policy.expanded = s.Policy.Expanded
		for _, entry := range s.Policy.Route {
			if !c.grid.InBounds(entry.Position) {
				return nil, fmt.Errorf("snapshot policy entry %s is out of bounds", entry.Position)
			}
			policy.put(entry.Position, entry.PolicyStep)
			policy.length++
		}
		c.policy = policy
		c.navigator = NewNavigator(policy)
		c.navigator.turns = s.NavigationTurns
	}

	return c, nil
}
