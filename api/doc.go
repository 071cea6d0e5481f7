// Package api exposes the trial service over HTTP.
//
// Sessions:
//   - POST   /api/sessions                  create a session, body {"config_id": "classic"}
//   - GET    /api/sessions                  list sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/unified          compare sessions (?sessionIds=a,b or ?configName=classic)
//   - GET    /api/sessions/{id}             session info with trial state
//   - DELETE /api/sessions/{id}             delete a session
//
// Trials:
//   - GET  /api/sessions/{id}/state         current TrialState
//   - POST /api/sessions/{id}/step          play one turn
//   - POST /api/sessions/{id}/run           play turns, body {"limit": 100, "reset": false}
//   - POST /api/sessions/{id}/reset         start over with a fresh robot
//   - GET  /api/sessions/{id}/history       paged turns (?page&limit&order&run=0|1)
//   - GET  /api/sessions/{id}/policy        planned route and known map
//   - GET  /api/sessions/{id}/cells/{x}/{y} what the robot knows about one cell
//
// Mazes:
//   - GET  /api/configs                     list mazes
//   - GET  /api/configs/{name}              one maze definition
//   - POST /api/configs                     save a maze, body is a MazeConfig plus optional config_id
//
// Other:
//   - GET /health
//   - GET /ws?session={id}                  live updates, see package websocket
//
// Errors are returned as {"error": "..."}. Unknown sessions and mazes map
// to 404, invalid input to 400, and stepping a finished trial to 409.
package api
