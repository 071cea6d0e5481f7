package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wricardo/micromouse/game/config"
	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/robot"
	"github.com/wricardo/micromouse/game/service"
	"github.com/wricardo/micromouse/game/session"
)

// MockTrialService implements service.TrialService for testing
type MockTrialService struct {
	CreateSessionFunc  func(ctx context.Context, configName string) (*service.SessionInfo, error)
	GetSessionFunc     func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc   func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc  func(ctx context.Context, sessionID string) error
	StepFunc           func(ctx context.Context, sessionID string) (*service.StepResult, error)
	RunFunc            func(ctx context.Context, sessionID string, limit int, reset bool) (*service.RunResult, error)
	ResetFunc          func(ctx context.Context, sessionID string) (*engine.TrialState, error)
	GetMoveHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)
	DescribeCellFunc   func(ctx context.Context, sessionID string, pos robot.Position) (*engine.CellView, error)
	SaveConfigFunc     func(ctx context.Context, configName string, config *engine.MazeConfig) error
}

func (m *MockTrialService) CreateSession(ctx context.Context, configName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, configName)
	}
	return &service.SessionInfo{ID: "test-session", ConfigName: configName, CreatedAt: time.Now()}, nil
}

func (m *MockTrialService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, ConfigName: "test-config", TrialState: &engine.TrialState{}}, nil
}

func (m *MockTrialService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockTrialService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockTrialService) Step(ctx context.Context, sessionID string) (*service.StepResult, error) {
	if m.StepFunc != nil {
		return m.StepFunc(ctx, sessionID)
	}
	return &service.StepResult{Success: true, TrialState: &engine.TrialState{}}, nil
}

func (m *MockTrialService) Run(ctx context.Context, sessionID string, limit int, reset bool) (*service.RunResult, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, sessionID, limit, reset)
	}
	return &service.RunResult{Success: true, TrialState: &engine.TrialState{}}, nil
}

func (m *MockTrialService) Reset(ctx context.Context, sessionID string) (*engine.TrialState, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	return &engine.TrialState{}, nil
}

func (m *MockTrialService) GetTrialState(ctx context.Context, sessionID string) (*engine.TrialState, error) {
	return &engine.TrialState{TrialID: "trial-" + sessionID}, nil
}

func (m *MockTrialService) GetMoveHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetMoveHistoryFunc != nil {
		return m.GetMoveHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{Moves: []engine.MoveHistoryEntry{}, Page: opts.Page, PageSize: opts.Limit}, nil
}

func (m *MockTrialService) GetPolicy(ctx context.Context, sessionID string) (*service.PolicyInfo, error) {
	return &service.PolicyInfo{Route: []robot.PolicyEntry{}}, nil
}

func (m *MockTrialService) DescribeCell(ctx context.Context, sessionID string, pos robot.Position) (*engine.CellView, error) {
	if m.DescribeCellFunc != nil {
		return m.DescribeCellFunc(ctx, sessionID, pos)
	}
	return &engine.CellView{Position: pos}, nil
}

func (m *MockTrialService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	return []*service.ConfigInfo{{ConfigID: "classic", Name: "classic", Dim: 12}}, nil
}

func (m *MockTrialService) LoadConfig(ctx context.Context, configName string) (*engine.MazeConfig, error) {
	if configName == "missing" {
		return nil, config.ErrConfigNotFound
	}
	return &engine.MazeConfig{Name: configName, Dim: 4}, nil
}

func (m *MockTrialService) SaveConfig(ctx context.Context, configName string, mazeConfig *engine.MazeConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, mazeConfig)
	}
	return nil
}

func makeRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response %q: %v", w.Body.String(), err)
	}
}

func TestCreateSession(t *testing.T) {
	var gotConfig string
	mock := &MockTrialService{
		CreateSessionFunc: func(ctx context.Context, configName string) (*service.SessionInfo, error) {
			gotConfig = configName
			if configName == "nope" {
				return nil, fmt.Errorf("%w: 'nope'", service.ErrConfigUnavailable)
			}
			return &service.SessionInfo{ID: "ab12", ConfigName: configName}, nil
		},
	}
	server := NewServer(mock, nil)

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantConfig string
	}{
		{"config_id", map[string]string{"config_id": "maze_14"}, http.StatusCreated, "maze_14"},
		{"deprecated config_name", map[string]string{"config_name": "classic"}, http.StatusCreated, "classic"},
		{"empty body uses default", nil, http.StatusCreated, ""},
		{"unknown maze", map[string]string{"config_id": "nope"}, http.StatusBadRequest, "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotConfig = "unset"
			w := serve(server, makeRequest("POST", "/api/sessions", tt.body))
			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if gotConfig != tt.wantConfig {
				t.Errorf("Expected config %q, got %q", tt.wantConfig, gotConfig)
			}
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/sessions", bytes.NewBufferString("{bad"))
		if w := serve(server, req); w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

func TestListSessionsSortAndLimit(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock := &MockTrialService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "b", CreatedAt: base.Add(2 * time.Hour), LastAccessedAt: base.Add(1 * time.Hour)},
				{ID: "a", CreatedAt: base.Add(1 * time.Hour), LastAccessedAt: base.Add(3 * time.Hour)},
				{ID: "c", CreatedAt: base.Add(3 * time.Hour), LastAccessedAt: base.Add(2 * time.Hour)},
			}, nil
		},
	}
	server := NewServer(mock, nil)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"a", "c", "b"}},
		{"?sort=created&order=asc", []string{"a", "b", "c"}},
		{"?sort=created&limit=2", []string{"c", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := serve(server, makeRequest("GET", "/api/sessions"+tt.query, nil))
			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			if resp.Total != 3 || resp.Count != len(tt.want) {
				t.Errorf("Expected count %d of 3, got %d of %d", len(tt.want), resp.Count, resp.Total)
			}
			for i, id := range tt.want {
				if resp.Sessions[i].ID != id {
					t.Errorf("Position %d: expected %s, got %s", i, id, resp.Sessions[i].ID)
				}
			}
		})
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"session not found", fmt.Errorf("session not found: %w", session.ErrSessionNotFound), http.StatusNotFound},
		{"trial over", engine.ErrTrialOver, http.StatusConflict},
		{"bad session id", session.ErrInvalidSessionID, http.StatusBadRequest},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockTrialService{
				StepFunc: func(ctx context.Context, sessionID string) (*service.StepResult, error) {
					return nil, tt.err
				},
			}
			w := serve(NewServer(mock, nil), makeRequest("POST", "/api/sessions/x1/step", nil))
			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			var resp map[string]string
			parseResponse(t, w, &resp)
			if resp["error"] == "" {
				t.Error("Expected error message in body")
			}
		})
	}
}

func TestRunRequest(t *testing.T) {
	var gotLimit int
	var gotReset bool
	mock := &MockTrialService{
		RunFunc: func(ctx context.Context, sessionID string, limit int, reset bool) (*service.RunResult, error) {
			gotLimit, gotReset = limit, reset
			return &service.RunResult{StepsExecuted: 5, StopReasonCode: "step_limit", TrialState: &engine.TrialState{}}, nil
		},
	}
	server := NewServer(mock, nil)

	w := serve(server, makeRequest("POST", "/api/sessions/x1/run", map[string]any{"limit": 5, "reset": true}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if gotLimit != 5 || !gotReset {
		t.Errorf("Expected limit 5 and reset, got %d %v", gotLimit, gotReset)
	}

	w = serve(server, makeRequest("POST", "/api/sessions/x1/run", nil))
	if w.Code != http.StatusOK || gotLimit != 0 || gotReset {
		t.Errorf("Empty body should run with defaults, got status %d limit %d reset %v", w.Code, gotLimit, gotReset)
	}
}

func TestGetHistoryOptions(t *testing.T) {
	var got service.HistoryOptions
	mock := &MockTrialService{
		GetMoveHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
			got = opts
			return &service.HistoryResponse{Moves: []engine.MoveHistoryEntry{}}, nil
		},
	}
	server := NewServer(mock, nil)

	serve(server, makeRequest("GET", "/api/sessions/x1/history", nil))
	if got.Page != 1 || got.Limit != 20 || got.Order != "desc" || got.Run != nil {
		t.Errorf("Unexpected defaults: %+v", got)
	}

	serve(server, makeRequest("GET", "/api/sessions/x1/history?page=3&limit=5&order=asc&run=1", nil))
	if got.Page != 3 || got.Limit != 5 || got.Order != "asc" || got.Run == nil || *got.Run != 1 {
		t.Errorf("Unexpected options: %+v", got)
	}

	if w := serve(server, makeRequest("GET", "/api/sessions/x1/history?run=2", nil)); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for run=2, got %d", w.Code)
	}
}

func TestDescribeCellRoute(t *testing.T) {
	mock := &MockTrialService{
		DescribeCellFunc: func(ctx context.Context, sessionID string, pos robot.Position) (*engine.CellView, error) {
			if pos.X > 11 {
				return nil, engine.ErrOutOfBounds
			}
			return &engine.CellView{Position: pos}, nil
		},
	}
	server := NewServer(mock, nil)

	w := serve(server, makeRequest("GET", "/api/sessions/x1/cells/3/7", nil))
	var cell engine.CellView
	parseResponse(t, w, &cell)
	if cell.Position != (robot.Position{X: 3, Y: 7}) {
		t.Errorf("Expected cell (3,7), got %+v", cell.Position)
	}

	if w := serve(server, makeRequest("GET", "/api/sessions/x1/cells/12/0", nil)); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 out of bounds, got %d", w.Code)
	}
	if w := serve(server, makeRequest("GET", "/api/sessions/x1/cells/-1/0", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for non-numeric route, got %d", w.Code)
	}
}

func TestConfigs(t *testing.T) {
	var saved string
	mock := &MockTrialService{
		SaveConfigFunc: func(ctx context.Context, configName string, mazeConfig *engine.MazeConfig) error {
			saved = configName
			if mazeConfig.Dim%2 == 1 {
				return fmt.Errorf("%w: dim must be even", config.ErrInvalidConfig)
			}
			return nil
		},
	}
	server := NewServer(mock, nil)

	if w := serve(server, makeRequest("GET", "/api/configs/missing", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing maze, got %d", w.Code)
	}

	w := serve(server, makeRequest("POST", "/api/configs", map[string]any{"name": "tiny", "dim": 2, "walls": [][]int{{3, 6}, {9, 12}}}))
	if w.Code != http.StatusCreated || saved != "tiny" {
		t.Errorf("Expected maze saved as tiny, got status %d name %q", w.Code, saved)
	}

	w = serve(server, makeRequest("POST", "/api/configs", map[string]any{"config_id": "custom", "name": "Pretty Name", "dim": 2}))
	if saved != "custom" {
		t.Errorf("Expected config_id to win over name, got %q", saved)
	}

	w = serve(server, makeRequest("POST", "/api/configs", map[string]any{"name": "odd", "dim": 3}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid maze, got %d", w.Code)
	}

	w = serve(server, makeRequest("POST", "/api/configs", map[string]any{"dim": 2}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without name, got %d", w.Code)
	}
}

func TestHealthAndWebSocketGuards(t *testing.T) {
	server := NewServer(&MockTrialService{}, nil)

	if w := serve(server, makeRequest("GET", "/health", nil)); w.Code != http.StatusOK {
		t.Errorf("Expected healthy, got %d", w.Code)
	}
	if w := serve(server, makeRequest("GET", "/ws?session=x1", nil)); w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without hub, got %d", w.Code)
	}
}

// newIntegrationServer wires the real service stack over the sample mazes
func newIntegrationServer(t *testing.T) *Server {
	t.Helper()
	configs, err := config.NewManager("../configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	return NewServer(service.NewTrialService(session.NewManager(), configs), nil)
}

func TestTrialLifecycle(t *testing.T) {
	server := newIntegrationServer(t)

	w := serve(server, makeRequest("POST", "/api/sessions", map[string]string{"config_id": "open_4"}))
	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to create session: %d %s", w.Code, w.Body.String())
	}
	var info service.SessionInfo
	parseResponse(t, w, &info)
	base := "/api/sessions/" + info.ID

	w = serve(server, makeRequest("POST", base+"/step", nil))
	var step service.StepResult
	parseResponse(t, w, &step)
	if step.Step == nil || step.Step.To.Position != (robot.Position{X: 0, Y: 1}) {
		t.Fatalf("Expected first step to reach (0,1), got %+v", step.Step)
	}

	w = serve(server, makeRequest("POST", base+"/run", map[string]int{"limit": 100}))
	var run service.RunResult
	parseResponse(t, w, &run)
	if run.StopReasonCode != "finished" {
		t.Fatalf("Expected trial to finish, got %s (%s)", run.StopReasonCode, run.StoppedReason)
	}
	if run.TrialState.RunTurns != [2]int{4, 2} {
		t.Errorf("Expected run turns [4 2], got %v", run.TrialState.RunTurns)
	}

	w = serve(server, makeRequest("GET", base+"/policy", nil))
	var policy service.PolicyInfo
	parseResponse(t, w, &policy)
	if !policy.Planned || policy.Length != 3 {
		t.Errorf("Expected planned route of length 3, got %+v", policy)
	}

	w = serve(server, makeRequest("GET", base+"/history?run=1&order=asc", nil))
	var history service.HistoryResponse
	parseResponse(t, w, &history)
	if history.TotalMoves != 2 {
		t.Errorf("Expected 2 navigation turns in history, got %d", history.TotalMoves)
	}

	if w := serve(server, makeRequest("POST", base+"/step", nil)); w.Code != http.StatusConflict {
		t.Errorf("Expected 409 stepping a finished trial, got %d", w.Code)
	}

	w = serve(server, makeRequest("POST", base+"/reset", nil))
	var reset struct {
		State engine.TrialState `json:"state"`
	}
	parseResponse(t, w, &reset)
	if reset.State.Status != engine.Exploring || reset.State.TotalTurns != 0 {
		t.Errorf("Expected fresh trial after reset, got %s with %d turns", reset.State.Status, reset.State.TotalTurns)
	}

	if w := serve(server, makeRequest("DELETE", base, nil)); w.Code != http.StatusOK {
		t.Errorf("Failed to delete session: %d", w.Code)
	}
	if w := serve(server, makeRequest("GET", base, nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", w.Code)
	}
}

func TestUnifiedSessionsRanking(t *testing.T) {
	server := newIntegrationServer(t)

	var ids []string
	for _, maze := range []string{"open_4", "open_4", "braided_12"} {
		w := serve(server, makeRequest("POST", "/api/sessions", map[string]string{"config_id": maze}))
		var info service.SessionInfo
		parseResponse(t, w, &info)
		ids = append(ids, info.ID)
	}
	// finish only the second open_4 trial
	serve(server, makeRequest("POST", "/api/sessions/"+ids[1]+"/run", nil))

	w := serve(server, makeRequest("GET", "/api/sessions/unified?configName=open_4", nil))
	var resp struct {
		ConfigName string           `json:"config_name"`
		Dim        int              `json:"dim"`
		Sessions   []map[string]any `json:"sessions"`
	}
	parseResponse(t, w, &resp)

	if len(resp.Sessions) != 2 {
		t.Fatalf("Expected 2 open_4 sessions, got %d", len(resp.Sessions))
	}
	if resp.Sessions[0]["session_id"] != ids[1] {
		t.Errorf("Expected finished session first, got %v", resp.Sessions[0]["session_id"])
	}
	if resp.ConfigName != "open_4" || resp.Dim != 4 {
		t.Errorf("Unexpected header %s dim %d", resp.ConfigName, resp.Dim)
	}
}
