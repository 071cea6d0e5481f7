package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/inconshreveable/log15/v3"
	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/robot"
)

// ErrConfigUnavailable is returned when a session is requested for a maze
// that cannot be loaded
var ErrConfigUnavailable = errors.New("configuration unavailable")

var logger = log15.New("module", "service")

// trialServiceImpl implements the TrialService interface
type trialServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewTrialService creates a new trial service instance
func NewTrialService(sessions SessionManager, configs ConfigManager) TrialService {
	return &trialServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *trialServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *trialServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess.Config.Name),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		TrialState:     sess.Engine.GetState(),
		MazeConfig:     sess.Config,
	}
}

// CreateSession creates a new trial session
func (s *trialServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.MazeConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			availableConfigs, listErr := s.configs.ListConfigs()
			if listErr == nil && len(availableConfigs) > 0 {
				var configIDs []string
				for _, cfg := range availableConfigs {
					configIDs = append(configIDs, cfg.ConfigID)
				}
				return nil, fmt.Errorf("%w: '%s' (%v). Available configs: %v", ErrConfigUnavailable, configName, err, configIDs)
			}
			return nil, fmt.Errorf("%w: '%s': %v", ErrConfigUnavailable, configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	logger.Info("session created", "session", session.ID, "maze", config.Name)

	info := s.sessionInfo(session)
	if configName != "" {
		info.ConfigName = configName
	}
	return info, nil
}

// GetSession retrieves session information
func (s *trialServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return s.sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *trialServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *trialServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Step advances a session's trial by one turn
func (s *trialServiceImpl) Step(ctx context.Context, sessionID string) (*StepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	before := sess.Engine.GetStatus()
	stepped, err := sess.Engine.Step()
	state := sess.Engine.GetState()
	if err != nil && !errors.Is(err, engine.ErrTurnLimit) {
		return nil, err
	}

	result := &StepResult{
		TrialState: state,
		Message:    state.Message,
	}
	if stepped != nil {
		entry := stepped.Entry
		info := compactStep(1, entry)
		result.Success = stepped.Status != engine.Failed
		result.Entry = &entry
		result.Step = &info
		result.Events = append(result.Events, TrialEvent{
			Type:      "step",
			Message:   fmt.Sprintf("Run %d turn %d: %s", entry.Run, entry.Turn, entry.Decision),
			Timestamp: time.Now(),
			Position:  entry.To.Position,
		})
	}
	result.Events = append(result.Events, statusEvents(before, state)...)

	if err := s.sessions.Save(sessionID); err != nil {
		logger.Warn("failed to persist session after step", "session", sessionID, "err", err)
	}
	return result, nil
}

// Run advances a session's trial until it ends or limit turns were played
func (s *trialServiceImpl) Run(ctx context.Context, sessionID string, limit int, reset bool) (*RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	events := []TrialEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, TrialEvent{
			Type:      "reset",
			Message:   "Trial reset with a fresh robot",
			Timestamp: time.Now(),
		})
	}

	requested := limit
	truncated := false
	if limit <= 0 || limit > engine.MaxBulkSteps {
		truncated = limit > engine.MaxBulkSteps
		limit = engine.MaxBulkSteps
	}

	startState := sess.Engine.GetState()
	result := &RunResult{
		RequestedSteps: requested,
		Truncated:      truncated,
		Limit:          limit,
		StartStatus:    startState.Status,
		StartTurns:     startState.TotalTurns,
		Steps:          []StepInfo{},
	}

	for len(result.Steps) < limit {
		if ctx.Err() != nil {
			result.StoppedReason = "Request canceled"
			result.StopReasonCode = "canceled"
			break
		}

		before := sess.Engine.GetStatus()
		stepped, err := sess.Engine.Step()
		if errors.Is(err, engine.ErrTrialOver) {
			break
		}
		if errors.Is(err, engine.ErrTurnLimit) {
			events = append(events, statusEvents(before, sess.Engine.GetState())...)
			break
		}
		if err != nil {
			return nil, err
		}

		result.Steps = append(result.Steps, compactStep(len(result.Steps)+1, stepped.Entry))
		events = append(events, statusEvents(before, sess.Engine.GetState())...)
	}

	state := sess.Engine.GetState()
	result.StepsExecuted = len(result.Steps)
	result.TrialState = state
	result.Events = events
	result.EndStatus = state.Status
	result.EndTurns = state.TotalTurns
	result.Score = state.Score
	result.Success = state.Status != engine.Failed

	if result.StopReasonCode == "" {
		switch {
		case state.Status == engine.Finished:
			result.StopReasonCode = "finished"
			result.StoppedReason = state.Message
		case state.Status == engine.Failed && state.TotalTurns >= state.MaxTurns:
			result.StopReasonCode = "turn_limit"
			result.StoppedReason = state.Message
		case state.Status == engine.Failed:
			result.StopReasonCode = "failed"
			result.StoppedReason = state.Message
		default:
			result.StopReasonCode = "step_limit"
			result.StoppedReason = fmt.Sprintf("Stopped after %d steps", result.StepsExecuted)
		}
	}

	logger.Debug("run complete", "session", sessionID, "steps", result.StepsExecuted, "status", state.Status, "stop", result.StopReasonCode)

	if err := s.sessions.Save(sessionID); err != nil {
		logger.Warn("failed to persist session after run", "session", sessionID, "err", err)
	}
	return result, nil
}

// Reset starts a fresh trial in a session
func (s *trialServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.TrialState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	state := sess.Engine.Reset()

	if err := s.sessions.Save(sessionID); err != nil {
		logger.Warn("failed to persist session after reset", "session", sessionID, "err", err)
	}
	return state, nil
}

// GetTrialState retrieves the current trial state
func (s *trialServiceImpl) GetTrialState(ctx context.Context, sessionID string) (*engine.TrialState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState(), nil
}

// GetMoveHistory returns paginated move history
func (s *trialServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetMoveHistory()
	if opts.Run != nil {
		filtered := make([]engine.MoveHistoryEntry, 0, len(history))
		trialID := sess.Engine.GetState().TrialID
		for _, entry := range history {
			if entry.TrialID == trialID && entry.Run == *opts.Run {
				filtered = append(filtered, entry)
			}
		}
		history = filtered
	}
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = history[start:end]
	}
	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// GetPolicy reports the robot's planned route for a session
func (s *trialServiceImpl) GetPolicy(ctx context.Context, sessionID string) (*PolicyInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	ctrl := sess.Engine.Controller()
	info := &PolicyInfo{
		Route:    []robot.PolicyEntry{},
		KnownMap: sess.Engine.RenderKnownMap(),
	}
	if err := ctrl.PlanError(); err != nil {
		info.PlanError = err.Error()
	}
	if policy, ok := ctrl.CachedPolicy(); ok {
		goal := policy.Goal()
		info.Planned = true
		info.Length = policy.Length()
		info.Goal = &goal
		info.Route = policy.Route()
	}
	return info, nil
}

// DescribeCell reports what a session's robot knows about one cell
func (s *trialServiceImpl) DescribeCell(ctx context.Context, sessionID string, pos robot.Position) (*engine.CellView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	return sess.Engine.DescribeCell(pos)
}

// ListConfigs returns available maze configurations
func (s *trialServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific maze configuration
func (s *trialServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.MazeConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a maze configuration to disk
func (s *trialServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.MazeConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func compactStep(idx int, entry engine.MoveHistoryEntry) StepInfo {
	return StepInfo{
		Idx:      idx,
		Run:      entry.Run,
		Turn:     entry.Turn,
		Sensors:  entry.Sensors,
		Decision: entry.Decision.String(),
		From:     entry.From,
		To:       entry.To,
		Moved:    entry.Moved,
		Note:     entry.Message,
	}
}

// statusEvents describes a status transition caused by one turn
func statusEvents(before engine.Status, state *engine.TrialState) []TrialEvent {
	if before == state.Status {
		return nil
	}

	event := TrialEvent{
		Message:   state.Message,
		Timestamp: time.Now(),
		Position:  state.Body.Position,
	}
	switch state.Status {
	case engine.Navigating:
		event.Type = "run_complete"
	case engine.Finished:
		event.Type = "finished"
	case engine.Failed:
		event.Type = "failed"
	default:
		return nil
	}
	return []TrialEvent{event}
}
