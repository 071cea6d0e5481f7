package service

import (
	"context"
	"time"

	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/robot"
)

// TrialService defines all trial-related operations
type TrialService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Trial Operations
	Step(ctx context.Context, sessionID string) (*StepResult, error)
	Run(ctx context.Context, sessionID string, limit int, reset bool) (*RunResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.TrialState, error)

	// Trial State
	GetTrialState(ctx context.Context, sessionID string) (*engine.TrialState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	GetPolicy(ctx context.Context, sessionID string) (*PolicyInfo, error)
	DescribeCell(ctx context.Context, sessionID string, pos robot.Position) (*engine.CellView, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.MazeConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.MazeConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.MazeConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.MazeConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles maze configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.MazeConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.MazeConfig
	SaveConfig(name string, config *engine.MazeConfig) error
}

// Session represents an active trial session
type Session struct {
	ID             string
	Engine         *engine.TrialEngine
	Config         *engine.MazeConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
