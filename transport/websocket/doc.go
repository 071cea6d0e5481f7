// Package websocket pushes live trial updates to browser viewers.
//
// A Hub owns every connection. Clients attach to one session with
// /ws?session=<id> and then only receive frames for that session. Each
// frame is a JSON Message:
//
//	{"session_id":"a1b2","event":"step","step":{...},"trial_state":{...}}
//
// Events are state_update (full TrialState), step (one executed turn plus
// the resulting state) and reset. Clients never send commands over the
// socket; incoming frames are read only to detect disconnects.
//
// Run must be running for broadcasts to be delivered:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
// A client whose send buffer fills up is dropped rather than slowing the
// hub down.
package websocket
