package robot

import (
	"errors"
	"fmt"

	"github.com/inconshreveable/log15/v3"
)

// ErrInvalidDimension is returned for a maze size that has no 2x2 center.
var ErrInvalidDimension = errors.New("maze dimension must be a positive even number")

// Phase is the controller state.
type Phase uint8

const (
	// Exploring maps the maze until the goal region is reached
	Exploring Phase = iota
	// Navigating follows the single planned policy to the goal
	Navigating
)

func (p Phase) String() string {
	switch p {
	case Exploring:
		return "exploring"
	case Navigating:
		return "navigating"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// MarshalText encodes the phase by name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name
func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "exploring":
		*p = Exploring
	case "navigating":
		*p = Navigating
	default:
		return fmt.Errorf("unknown phase %q", text)
	}
	return nil
}

// Controller is the robot brain. It explores until the goal is found, then
// plans once and navigates the planned route on every later turn.
type Controller struct {
	dim       int
	grid      *GridMap
	pose      Pose
	phase     Phase
	explorer  *Explorer
	planned   bool
	policy    *Policy
	planErr   error
	navigator *Navigator
	log       log15.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger routes controller diagnostics to logger
func WithLogger(logger log15.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.log = logger
		}
	}
}

// NewController creates a controller for a dim x dim maze
func NewController(dim int, opts ...Option) (*Controller, error) {
	if dim <= 0 || dim%2 != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDimension, dim)
	}

	c := &Controller{
		dim:   dim,
		grid:  NewGridMap(dim),
		pose:  StartPose,
		phase: Exploring,
		log:   discardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.explorer = NewExplorer(c.grid, c.log)
	return c, nil
}

// NextMove consumes one sensor reading and returns the next decision.
// A planning failure is returned as an error on every navigating turn;
// planning is never retried.
func (c *Controller) NextMove(sensors Sensors) (Decision, error) {
	if c.phase == Exploring {
		decision := c.explorer.Step(&c.pose, sensors)
		if decision.IsReset() {
			c.phase = Navigating
			c.log.Info("exploration finished", "known", c.grid.KnownCount(), "cells", c.dim*c.dim)
		}
		return decision, nil
	}

	policy, err := c.plan()
	if err != nil {
		return Decision{}, err
	}
	if c.navigator == nil {
		c.navigator = NewNavigator(policy)
	}

	decision, err := c.navigator.Step(&c.pose)
	if err != nil {
		return Decision{}, fmt.Errorf("navigate from %s: %w", c.pose.Position, err)
	}
	if decision.IsDone() {
		c.log.Info("goal reached", "turns", c.navigator.Turns())
	}
	return decision, nil
}

// plan computes the policy on first use and caches the outcome.
func (c *Controller) plan() (*Policy, error) {
	if !c.planned {
		c.planned = true
		c.policy, c.planErr = Plan(c.grid, Origin, Up)
		if c.planErr != nil {
			c.log.Error("planning failed", "known", c.grid.KnownCount(), "err", c.planErr)
		} else {
			c.log.Info("policy planned", "length", c.policy.Length(), "expanded", c.policy.Expanded(), "goal", c.policy.Goal())
		}
	}
	return c.policy, c.planErr
}

// Dim returns the maze dimension
func (c *Controller) Dim() int { return c.dim }

// Pose returns the robot's logical pose
func (c *Controller) Pose() Pose { return c.pose }

// Phase returns the current phase
func (c *Controller) Phase() Phase { return c.phase }

// Grid returns the robot's map. Callers must not modify it.
func (c *Controller) Grid() *GridMap { return c.grid }

// CachedPolicy returns the planned policy without triggering planning
func (c *Controller) CachedPolicy() (*Policy, bool) {
	return c.policy, c.policy != nil
}

// PlanError returns the cached planning failure, if any
func (c *Controller) PlanError() error { return c.planErr }

// NavigationTurns returns how many navigation commands have been issued
func (c *Controller) NavigationTurns() int {
	if c.navigator == nil {
		return 0
	}
	return c.navigator.Turns()
}

func discardLogger() log15.Logger {
	logger := log15.New()
	logger.SetHandler(log15.DiscardHandler())
	return logger
}
