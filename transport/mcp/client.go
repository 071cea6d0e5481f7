package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/inconshreveable/log15/v3"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"
	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/service"
)

var logger = log15.New("module", "mcp")

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Micromouse",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Micromouse - MCP Interface

This is a thin client that proxies all requests to the REST API server.

A simulated robot explores an unknown square maze starting at the bottom-left
cell facing up. Run 0 explores until the robot has reached the 2x2 center goal
and mapped the maze well enough to plan a route. Run 1 replays the planned
route from the start. Score = run 1 turns + run 0 turns / 30 (lower is better).

AVAILABLE TOOLS:
- create_session: Start a trial on a maze config
- list_sessions / get_session / delete_session: Manage sessions
- trial_state: Current status, pose, turn counts, score and the robot's map
- step: Execute one robot turn
- run_trial: Execute turns until the trial ends or a limit is hit
- reset_trial: Restart the trial from scratch
- move_history: Page through executed turns
- get_policy: The planned route once exploration finished
- describe_cell: What the robot knows about one cell
- list_configs: Available mazes
- trial_instructions: Full rules and map legend`),
	)

	c.registerTools()
}

func sessionProperty() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Session ID",
	}
}

func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new trial session with optional maze selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"config_id": map[string]any{
					"type":        "string",
					"description": "Maze config ID from list_configs (optional, defaults to the server default)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all trial sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_session",
		Description: "Delete a session and its saved state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleDeleteSession)

	// Trial operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "trial_state",
		Description: "Get the current trial state and the robot's known map",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleTrialState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "step",
		Description: "Execute one robot turn: sense, decide, move",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleStep)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_trial",
		Description: "Execute turns until the trial finishes, fails or the limit is reached",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
				"limit": map[string]any{
					"type":        "integer",
					"description": fmt.Sprintf("Maximum turns to execute (0 = until done, capped at %d)", engine.MaxBulkSteps),
				},
				"reset": map[string]any{
					"type":        "boolean",
					"description": "Reset the trial before running",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRunTrial)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_trial",
		Description: "Restart the trial with a fresh robot",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleResetTrial)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get executed turns with pagination",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
				"page": map[string]any{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Entries per page (default 20)",
				},
				"order": map[string]any{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Sort order (default desc)",
				},
				"run": map[string]any{
					"type":        "integer",
					"enum":        []int{0, 1},
					"description": "Only show turns of this run (optional)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_policy",
		Description: "Get the planned route from start to goal",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetPolicy)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe what the robot knows about a cell",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
				"x": map[string]any{
					"type":        "integer",
					"description": "Column, 0 is the left edge",
				},
				"y": map[string]any{
					"type":        "integer",
					"description": "Row, 0 is the bottom edge",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available maze configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "trial_instructions",
		Description: "Get the trial rules, scoring and map legend",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleTrialInstructions)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall makes an HTTP request to the REST API and decodes the response
// into result
func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug("api call failed", "method", method, "path", path, "err", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func sessionPath(request mcp.CallToolRequest, suffix string) (string, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return "", err
	}
	return "/api/sessions/" + url.PathEscape(id) + suffix, nil
}

// intArg coerces a numeric argument that may arrive as a JSON number or a
// string
func intArg(args map[string]any, key string) (int, bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return 0, false, nil
	}
	v, err := cast.ToIntE(raw)
	if err != nil {
		return 0, true, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, true, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{}
	if configID := request.GetString("config_id", ""); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s",
		session.ID, session.ConfigName, formatTrialState(session.TrialState, nil))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, http.MethodGet, "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "unknown"
		if s.TrialState != nil {
			status = string(s.TrialState.Status)
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Status: %s, Created: %s)\n",
			s.ID, s.ConfigName, status, s.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(request, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(request, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string `json:"message"`
	}
	if err := c.apiCall(ctx, http.MethodDelete, path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(response.Message), nil
}

func (c *Client) handleTrialState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(request, "/state")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.TrialState
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// The map is a nice-to-have; the state alone still answers the call.
	var policy service.PolicyInfo
	policyPath, _ := sessionPath(request, "/policy")
	if err := c.apiCall(ctx, http.MethodGet, policyPath, nil, &policy); err != nil {
		return mcp.NewToolResultText(formatTrialState(&state, nil)), nil
	}
	return mcp.NewToolResultText(formatTrialState(&state, policy.KnownMap)), nil
}

func (c *Client) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(request, "/step")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.StepResult
	if err := c.apiCall(ctx, http.MethodPost, path, nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatStepResult(&result)), nil
}

func (c *Client) handleRunTrial(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(request, "/run")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	limit, _, err := intArg(request.GetArguments(), "limit")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body := map[string]any{
		"limit": limit,
		"reset": request.GetBool("reset", false),
	}

	var result service.RunResult
	if err := c.apiCall(ctx, http.MethodPost, path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatRunResult(&result)), nil
}

func (c *Client) handleResetTrial(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(request, "/reset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string             `json:"message"`
		State   *engine.TrialState `json:"state"`
	}
	if err := c.apiCall(ctx, http.MethodPost, path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatTrialState(response.State, nil))), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(request, "/history")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	query := url.Values{}
	for _, key := range []string{"page", "limit", "run"} {
		v, ok, err := intArg(args, key)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if ok {
			query.Set(key, cast.ToString(v))
		}
	}
	if order := request.GetString("order", ""); order != "" {
		query.Set("order", order)
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleGetPolicy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(request, "/policy")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var policy service.PolicyInfo
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &policy); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatPolicy(&policy)), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	x, okX, errX := intArg(args, "x")
	y, okY, errY := intArg(args, "y")
	switch {
	case errX != nil:
		return mcp.NewToolResultError(errX.Error()), nil
	case errY != nil:
		return mcp.NewToolResultError(errY.Error()), nil
	case !okX || !okY:
		return mcp.NewToolResultError("x and y are required"), nil
	case x < 0 || y < 0:
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates (%d,%d) are out of bounds", x, y)), nil
	}

	path, err := sessionPath(request, fmt.Sprintf("/cells/%d/%d", x, y))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var cell engine.CellView
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &cell); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatCell(&cell)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, http.MethodGet, "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Mazes:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Maze: %dx%d, Max turns: %d\n\n",
			cfg.Name, cfg.ConfigID, cfg.Description, cfg.Dim, cfg.Dim, cfg.MaxTurns)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleTrialInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Micromouse - Trial Rules

OBJECTIVE:
Get the robot from the start cell to the 2x2 goal square in the maze center
in as few turns as possible on the second run.

THE MAZE:
• Square grid of dim x dim cells (dim is even). (0,0) is the bottom-left cell.
• X grows to the right, Y grows upward.
• The robot starts every run at (0,0) facing up.

EACH TURN:
1. The robot reads three distance sensors: left, front, right. Each reports
   how many open cells lie before the next wall.
2. It returns a rotation (-90, 0, 90) and a movement (-3..3 cells), or Reset.
3. The simulator rotates the robot, then moves it until the movement is done
   or a wall stops it.

RUNS:
• Run 0 explores. The robot prefers unvisited and least-visited neighbors,
  breaking ties toward the center. Once the goal has been reached and the
  planner finds a route over mapped cells, the robot issues Reset.
• Run 1 replays the A* route, moving up to 3 cells per turn along straight
  segments.
• The trial ends when run 1 enters the goal, or fails when turns run out.

SCORE:
run 1 turns + run 0 turns / 30. Lower is better.

MAP LEGEND (trial_state, get_policy):
• '+', '-', '|': walls the robot has confirmed
• ':' and '.': walls the robot has not sensed yet
• '@': the robot
• '^', '>', 'v', '<': the planned action at a cell
• '?': cell not mapped yet
• 'G': goal cell

TOOLS:
• step: watch one decision at a time
• run_trial: execute many turns at once (optionally after a reset)
• describe_cell: openings, visit count and policy for one cell
• move_history: filter by run (0 or 1) to compare exploration and replay`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatTrialState(session.TrialState, nil))
}

func formatTrialState(state *engine.TrialState, knownMap []string) string {
	if state == nil {
		return "No trial state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Status: %s | Run: %d | Position: %s facing %s | Turns: %d/%d | Score: %.3f\n",
		state.Status, state.Run, state.Body.Position, state.Body.Heading,
		state.TotalTurns, state.MaxTurns, state.Score)
	fmt.Fprintf(&b, "Run turns: run0=%d run1=%d | Goal reached: %v\n",
		state.RunTurns[0], state.RunTurns[1], state.HitGoal)

	if len(knownMap) > 0 {
		b.WriteString("\n")
		for _, line := range knownMap {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	switch state.Status {
	case engine.Finished:
		b.WriteString("\n🏁 TRIAL FINISHED")
	case engine.Failed:
		b.WriteString("\n💀 TRIAL FAILED")
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}
	return b.String()
}

func formatStepLine(s *service.StepInfo) string {
	line := fmt.Sprintf("run %d turn %d: sensors %v → %s, %s→%s moved %d",
		s.Run, s.Turn, s.Sensors, s.Decision, s.From.Position, s.To.Position, s.Moved)
	if s.Note != "" {
		line += " (" + s.Note + ")"
	}
	return line
}

func formatStepResult(result *service.StepResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Step executed\n")
	} else {
		b.WriteString("✗ Step failed\n")
	}
	if result.Step != nil {
		b.WriteString(formatStepLine(result.Step))
		b.WriteString("\n")
	}
	for _, event := range result.Events {
		if event.Type != "step" {
			fmt.Fprintf(&b, "Event: %s - %s\n", event.Type, event.Message)
		}
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", result.Message)
	}
	b.WriteString("\n")
	b.WriteString(formatTrialState(result.TrialState, nil))
	return b.String()
}

func formatRunResult(result *service.RunResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Executed %d of %d requested turns\n", result.StepsExecuted, result.RequestedSteps)
	if result.Truncated {
		fmt.Fprintf(&b, "Request was truncated to %d turns\n", result.Limit)
	}
	fmt.Fprintf(&b, "Status: %s → %s | Turns: %d → %d | Score: %.3f\n",
		result.StartStatus, result.EndStatus, result.StartTurns, result.EndTurns, result.Score)
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped: %s (%s)\n", result.StoppedReason, result.StopReasonCode)
	}

	const tail = 10
	steps := result.Steps
	if len(steps) > tail {
		fmt.Fprintf(&b, "\nLast %d of %d turns:\n", tail, len(steps))
		steps = steps[len(steps)-tail:]
	} else if len(steps) > 0 {
		b.WriteString("\nTurns:\n")
	}
	for i := range steps {
		b.WriteString("  ")
		b.WriteString(formatStepLine(&steps[i]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(formatTrialState(result.TrialState, nil))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d, %d total):\n\n", history.Page, history.TotalPages, history.TotalMoves)
	for _, move := range history.Moves {
		fmt.Fprintf(&b, "#%d run %d turn %d: sensors %v → %s, %s→%s moved %d\n",
			move.MoveNumber, move.Run, move.Turn, move.Sensors, move.Decision,
			move.From.Position, move.To.Position, move.Moved)
	}
	if history.HasNext {
		fmt.Fprintf(&b, "\nMore entries on page %d", history.Page+1)
	}
	return b.String()
}

func formatPolicy(policy *service.PolicyInfo) string {
	var b strings.Builder
	switch {
	case policy.Planned:
		fmt.Fprintf(&b, "Planned route: %d moves", policy.Length)
		if policy.Goal != nil {
			fmt.Fprintf(&b, " to goal %s", *policy.Goal)
		}
		b.WriteString("\n\n")
		for _, entry := range policy.Route {
			fmt.Fprintf(&b, "%s: rotate %d, head %s\n", entry.Position, entry.Rotation, entry.Action)
		}
	case policy.PlanError != "":
		fmt.Fprintf(&b, "No route: %s\n", policy.PlanError)
	default:
		b.WriteString("No route planned yet (still exploring)\n")
	}

	if len(policy.KnownMap) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(policy.KnownMap, "\n"))
	}
	return b.String()
}

func formatCell(cell *engine.CellView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cell at %s:\n", cell.Position)
	if !cell.Known {
		b.WriteString("Not mapped yet\n")
	} else {
		fmt.Fprintf(&b, "Openings: %s\n", cell.Openings)
	}
	fmt.Fprintf(&b, "Visits: %d\n", cell.Visits)
	if cell.Goal {
		b.WriteString("Goal cell\n")
	}
	if cell.Robot {
		b.WriteString("The robot is here\n")
	}
	if cell.Policy != nil {
		fmt.Fprintf(&b, "Policy: rotate %d, head %s\n", cell.Policy.Rotation, cell.Policy.Action)
	}
	return b.String()
}
