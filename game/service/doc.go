// Package service is the layer between the transports (HTTP, WebSocket,
// MCP) and the trial engine.
//
// TrialService runs micromouse trials inside sessions. Each session owns
// its own engine, so trials never share robot state. Operations on a
// session are serialized, and every state change is saved through the
// SessionManager before the call returns.
//
//	sessions := session.NewManager()
//	configs, _ := config.NewManager("configs")
//	svc := service.NewTrialService(sessions, configs)
//
//	info, err := svc.CreateSession(ctx, "classic")
//	if err != nil {
//		return err
//	}
//	result, err := svc.Run(ctx, info.ID, 0, false)
//
// Run stops at the first of: trial finished, trial failed, turn limit
// reached, step limit reached or ctx canceled. RunResult.StopReasonCode says
// which.
package service
