package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/inconshreveable/log15/v3"
	"github.com/wricardo/micromouse/game/maze"
	"github.com/wricardo/micromouse/game/robot"
)

var (
	// ErrTrialOver is returned by Step once the trial has finished or failed
	ErrTrialOver = errors.New("trial is over")
	// ErrTurnLimit is returned by the Step that runs out of allotted turns
	ErrTurnLimit = errors.New("allotted turns exceeded")
)

var logger = log15.New("module", "engine")

// Engine provides the main interface for trial operations
type Engine interface {
	// Trial state management
	GetState() *TrialState
	SetState(state *TrialState) error
	Reset() *TrialState
	IsFinished() bool
	GetStatus() Status
	GetScore() float64

	// Turn operations
	Step() (*StepResult, error)
	Run(limit int) ([]StepResult, error)

	// Configuration
	GetConfig() *MazeConfig
	SetConfig(config *MazeConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry

	// Robot knowledge
	GetPolicy() ([]robot.PolicyEntry, bool)
	DescribeCell(p robot.Position) (*CellView, error)
	RenderKnownMap() []string
}

// TrialEngine implements the Engine interface. It owns the true maze, the
// simulated body and the robot controller being tested.
type TrialEngine struct {
	state  *TrialState
	config *MazeConfig
	maze   *maze.Maze
	ctrl   *robot.Controller
}

// NewEngine creates a trial engine with the provided configuration
func NewEngine(config *MazeConfig) (*TrialEngine, error) {
	if err := ValidateMazeConfig(config); err != nil {
		return nil, err
	}

	e := &TrialEngine{}
	if err := e.load(config); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates a trial engine on the default maze
func NewEngineWithDefaults() *TrialEngine {
	e := &TrialEngine{}
	if err := e.load(DefaultMazeConfig()); err != nil {
		panic(fmt.Sprintf("default maze is invalid: %v", err))
	}
	return e
}

func (e *TrialEngine) load(config *MazeConfig) error {
	m, err := maze.New(config.Dim, config.Walls)
	if err != nil {
		return err
	}
	state := InitTrialStateFromConfig(config)
	ctrl, err := robot.NewController(config.Dim, robot.WithLogger(logger.New("trial", state.TrialID)))
	if err != nil {
		return err
	}

	e.config = config
	e.maze = m
	e.state = state
	e.ctrl = ctrl
	e.sync()
	return nil
}

// sync refreshes the derived parts of the state from the controller
func (e *TrialEngine) sync() {
	e.state.Robot = e.ctrl.Snapshot()
	e.state.Score = Score(e.state.RunTurns)
	e.state.KnownMap = RenderKnownMap(e.ctrl, e.state.Body)
}

// GetState returns the current trial state
func (e *TrialEngine) GetState() *TrialState {
	return e.state
}

// SetState replaces the trial state and rebuilds the controller from the
// robot snapshot it carries (used for persistence loading)
func (e *TrialEngine) SetState(state *TrialState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if e.config != nil && state.Dim != e.config.Dim {
		return fmt.Errorf("state dimension %d does not match maze dimension %d", state.Dim, e.config.Dim)
	}

	ctrl, err := robot.RestoreController(state.Robot, robot.WithLogger(logger.New("trial", state.TrialID)))
	if err != nil {
		return fmt.Errorf("restore robot: %w", err)
	}
	e.state = state
	e.ctrl = ctrl
	e.sync()
	return nil
}

// Reset starts a new trial on the same maze with a fresh robot
func (e *TrialEngine) Reset() *TrialState {
	// Preserve cumulative history and totals across resets
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	if err := e.load(e.config); err != nil {
		logger.Error("reset failed, keeping current trial", "err", err)
		return e.state
	}

	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal
	e.sync()
	return e.state
}

// IsFinished reports whether the trial has reached a terminal status
func (e *TrialEngine) IsFinished() bool {
	return e.state.Status == Finished || e.state.Status == Failed
}

// GetStatus returns the trial status
func (e *TrialEngine) GetStatus() Status {
	return e.state.Status
}

// GetScore returns the current score
func (e *TrialEngine) GetScore() float64 {
	return Score(e.state.RunTurns)
}

// Step senses, asks the robot for one decision and applies it to the body
func (e *TrialEngine) Step() (*StepResult, error) {
	s := e.state
	if e.IsFinished() {
		return nil, ErrTrialOver
	}
	if s.TotalTurns >= s.MaxTurns {
		s.Status = Failed
		s.Message = "Allotted time exceeded."
		logger.Warn("trial ran out of turns", "trial", s.TrialID, "turns", s.TotalTurns)
		return nil, fmt.Errorf("%w: %d turns", ErrTurnLimit, s.MaxTurns)
	}

	s.TotalTurns++
	s.RunTurns[s.Run]++

	entry := MoveHistoryEntry{
		RunID:   s.RunIDs[s.Run],
		Run:     s.Run,
		Turn:    s.RunTurns[s.Run],
		Sensors: e.maze.Sense(s.Body),
		From:    s.Body,
	}

	decision, err := e.ctrl.NextMove(entry.Sensors)
	if err != nil {
		s.Status = Failed
		s.Message = fmt.Sprintf("Robot failed: %v", err)
		logger.Error("robot failed", "trial", s.TrialID, "run", s.Run, "turn", entry.Turn, "err", err)
		entry.To = s.Body
		entry.Message = s.Message
		return e.finishStep(entry), nil
	}
	entry.Decision = decision

	switch decision.Kind {
	case robot.KindReset:
		switch {
		case s.Run == 0 && s.HitGoal:
			s.Run = 1
			s.HitGoal = false
			s.Status = Navigating
			s.Body = robot.StartPose
			s.Message = "Ending first run. Starting next run."
			logger.Info("first run complete", "trial", s.TrialID, "turns", s.RunTurns[0])
		case s.Run == 0:
			s.Message = "Cannot reset - robot has not hit goal yet."
		default:
			s.Message = "Cannot reset on runs after the first."
		}
		entry.To = s.Body
		entry.Message = s.Message
		return e.finishStep(entry), nil

	case robot.KindDone:
		s.Message = "Robot reports the goal is reached."

	default:
		moved, note := MoveBody(e.maze, &s.Body, decision.Move)
		entry.Moved = moved
		s.Message = note
	}

	if robot.IsGoal(s.Dim, s.Body.Position) {
		s.HitGoal = true
		if s.Run == 1 {
			s.Status = Finished
			s.Message = fmt.Sprintf("Goal found; run 1 completed! Score %.3f", Score(s.RunTurns))
			logger.Info("trial finished", "trial", s.TrialID, "run0", s.RunTurns[0], "run1", s.RunTurns[1], "score", Score(s.RunTurns))
		}
	}

	entry.To = s.Body
	entry.Message = s.Message
	return e.finishStep(entry), nil
}

func (e *TrialEngine) finishStep(entry MoveHistoryEntry) *StepResult {
	entry = e.state.AddMoveToHistory(entry)
	e.sync()
	return &StepResult{Entry: entry, Status: e.state.Status, Score: e.state.Score}
}

// Run steps the trial until it is over or limit steps were taken. A limit
// of zero or less, or above MaxBulkSteps, means MaxBulkSteps.
func (e *TrialEngine) Run(limit int) ([]StepResult, error) {
	if limit <= 0 || limit > MaxBulkSteps {
		limit = MaxBulkSteps
	}
	if e.IsFinished() {
		return nil, ErrTrialOver
	}

	results := make([]StepResult, 0, min(limit, 64))
	for len(results) < limit && !e.IsFinished() {
		result, err := e.Step()
		if errors.Is(err, ErrTurnLimit) {
			break
		}
		if err != nil {
			return results, err
		}
		results = append(results, *result)
	}
	return results, nil
}

// GetConfig returns the current maze configuration
func (e *TrialEngine) GetConfig() *MazeConfig {
	return e.config
}

// SetConfig switches to a new maze and starts a fresh trial
func (e *TrialEngine) SetConfig(config *MazeConfig) error {
	if err := ValidateMazeConfig(config); err != nil {
		return err
	}
	return e.load(config)
}

// GetMoveHistory returns the complete move history
func (e *TrialEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *TrialEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// GetPolicy returns the robot's planned route, if it has planned one
func (e *TrialEngine) GetPolicy() ([]robot.PolicyEntry, bool) {
	policy, ok := e.ctrl.CachedPolicy()
	if !ok {
		return nil, false
	}
	return policy.Route(), true
}

// Controller exposes the robot under test
func (e *TrialEngine) Controller() *robot.Controller {
	return e.ctrl
}

// Maze exposes the true maze
func (e *TrialEngine) Maze() *maze.Maze {
	return e.maze
}

func newID() string {
	return uuid.NewString()
}
