package service

import (
	"time"

	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/robot"
)

// SessionInfo provides information about a trial session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	TrialState     *engine.TrialState `json:"trial_state"`
	MazeConfig     *engine.MazeConfig `json:"maze_config"`
}

// StepResult contains the result of a single trial turn
type StepResult struct {
	Success    bool                     `json:"success"`
	TrialState *engine.TrialState       `json:"trial_state"`
	Entry      *engine.MoveHistoryEntry `json:"entry,omitempty"`
	Message    string                   `json:"message"`
	Events     []TrialEvent             `json:"events,omitempty"`
	Step       *StepInfo                `json:"step,omitempty"`
}

// RunResult contains the result of running several turns
type RunResult struct {
	// Summary
	StepsExecuted  int                `json:"steps_executed"`
	RequestedSteps int                `json:"requested_steps"`
	Success        bool               `json:"success"`
	TrialState     *engine.TrialState `json:"trial_state"`
	Events         []TrialEvent       `json:"events"`
	StoppedReason  string             `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string             `json:"stop_reason_code,omitempty"` // Machine-friendly code: finished|failed|turn_limit|step_limit|canceled
	Truncated      bool               `json:"truncated,omitempty"`
	Limit          int                `json:"limit,omitempty"`

	// Start/end snapshot
	StartStatus engine.Status `json:"start_status"`
	EndStatus   engine.Status `json:"end_status"`
	StartTurns  int           `json:"start_turns"`
	EndTurns    int           `json:"end_turns"`
	Score       float64       `json:"score"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`
}

// StepInfo is a compact record of one executed turn
type StepInfo struct {
	Idx      int           `json:"idx"`
	Run      int           `json:"run"`
	Turn     int           `json:"turn"`
	Sensors  robot.Sensors `json:"sensors"`
	Decision string        `json:"decision"`
	From     robot.Pose    `json:"from"`
	To       robot.Pose    `json:"to"`
	Moved    int           `json:"moved"`
	Note     string        `json:"note,omitempty"`
}

// TrialEvent represents an event that occurred during a trial
type TrialEvent struct {
	Type      string         `json:"type"` // "step", "run_complete", "finished", "failed", "reset"
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Position  robot.Position `json:"position,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
	Run   *int   `json:"run,omitempty"`
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// PolicyInfo describes the robot's planned route
type PolicyInfo struct {
	Planned   bool                `json:"planned"`
	PlanError string              `json:"plan_error,omitempty"`
	Length    int                 `json:"length"`
	Goal      *robot.Position     `json:"goal,omitempty"`
	Route     []robot.PolicyEntry `json:"route"`
	KnownMap  []string            `json:"known_map"`
}

// ConfigInfo provides information about a maze configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Dim         int    `json:"dim"`
	MaxTurns    int    `json:"max_turns"`
}
