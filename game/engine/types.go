package engine

import "github.com/wricardo/micromouse/game/robot"

// Status is the lifecycle stage of a trial
type Status string

const (
	Exploring  Status = "exploring"
	Navigating Status = "navigating"
	Finished   Status = "finished"
	Failed     Status = "failed"

	// Validation constants
	MinDim          = 2
	MaxDim          = 32
	DefaultMaxTurns = 1000
	MaxTurnsLimit   = 100000
	MaxBulkSteps    = 2000

	// ExplorationWeight divides first-run turns in the score
	ExplorationWeight   = 30
	WebSocketBufferSize = 256
)

// MazeConfig is a maze layout loaded from JSON, YAML or the text format
type MazeConfig struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Dim         int     `json:"dim" yaml:"dim"`
	MaxTurns    int     `json:"max_turns" yaml:"max_turns"`
	Walls       [][]int `json:"walls" yaml:"walls"`
}

// TrialState is the complete state of one trial: the simulated robot body,
// per-run bookkeeping and the robot controller's own snapshot.
type TrialState struct {
	TrialID    string         `json:"trial_id"`
	RunIDs     [2]string      `json:"run_ids"`
	ConfigName string         `json:"config_name"`
	Dim        int            `json:"dim"`
	MaxTurns   int            `json:"max_turns"`
	Status     Status         `json:"status"`
	Run        int            `json:"run"`
	Body       robot.Pose     `json:"body"`
	HitGoal    bool           `json:"hit_goal"`
	RunTurns   [2]int         `json:"run_turns"`
	TotalTurns int            `json:"total_turns"`
	Score      float64        `json:"score"`
	Message    string         `json:"message"`
	Robot      robot.Snapshot `json:"robot"`

	// MoveHistory is cumulative across resets; CurrentMoves only covers the
	// current trial.
	MoveHistory       []MoveHistoryEntry `json:"move_history"`
	TotalMoves        int                `json:"total_moves"`
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`

	// Computed helper views
	KnownMap []string `json:"known_map,omitempty"`
}

// MoveHistoryEntry records one trial turn
type MoveHistoryEntry struct {
	ID         string         `json:"id"`
	TrialID    string         `json:"trial_id"`
	RunID      string         `json:"run_id"`
	Run        int            `json:"run"`
	Turn       int            `json:"turn"`
	Sensors    robot.Sensors  `json:"sensors"`
	Decision   robot.Decision `json:"decision"`
	From       robot.Pose     `json:"from"`
	To         robot.Pose     `json:"to"`
	Moved      int            `json:"moved"`
	Message    string         `json:"message,omitempty"`
	Timestamp  int64          `json:"timestamp"`
	MoveNumber int            `json:"move_number"`
}

// StepResult is the outcome of a single Step call
type StepResult struct {
	Entry  MoveHistoryEntry `json:"entry"`
	Status Status           `json:"status"`
	Score  float64          `json:"score"`
}
