// Package robot implements the decision logic of a micromouse robot.
//
// The robot runs a maze twice. During the first run it explores: each turn
// it records which sides of its cell are open, according to its three
// distance sensors, and steps into the neighbor with the lowest visit count
// plus Manhattan distance to the maze center. Once it stands on one of the
// four center cells it asks for a reset.
//
// On the first turn of the second run the Controller plans a route with A*
// over the cells discovered so far. The route is stored as a Policy, one
// (rotation, direction) pair per cell, and is never recomputed. The
// Navigator then follows the policy, covering up to three straight cells
// per command.
//
// Core Types:
//
//   - GridMap: write-once openings and visit counters per cell
//   - Explorer: first-run decision rule
//   - Plan / Policy: one-shot route search and its result
//   - Navigator: second-run policy follower
//   - Controller: the Exploring -> Navigating state machine
//
// Usage:
//
//	ctrl, err := robot.NewController(16)
//	if err != nil {
//		log.Fatal(err)
//	}
//	decision, err := ctrl.NextMove(robot.Sensors{0, 5, 1})
//
// The package does no I/O and is not safe for concurrent use; callers own
// one controller per simulated robot.
package robot
