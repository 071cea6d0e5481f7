// Package mcp exposes the micromouse REST API as Model Context Protocol tools.
//
// The Client is a thin proxy: every tool call becomes one or two HTTP requests
// against a running server, and the JSON response is rendered as text for the
// agent. No trial state lives in this package.
//
// MCP Tools:
//   - create_session, list_sessions, get_session, delete_session
//   - trial_state: status, pose, turn counts, score and the known map
//   - step: one sense/decide/move turn
//   - run_trial: many turns at once, optionally after a reset
//   - reset_trial: start over with a fresh robot
//   - move_history: paginated turns, filterable by run
//   - get_policy: the planned route
//   - describe_cell: the robot's knowledge of one cell
//   - list_configs, trial_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
