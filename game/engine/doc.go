// Package engine runs micromouse trials.
//
// The engine package implements the trial mechanics including:
//   - Sensor simulation against the true maze
//   - Body movement with rotation, stride and wall rules
//   - The two-run protocol: explore, reset, then race to the goal
//   - Turn limits, scoring and move history
//   - Maze configuration loading (JSON, YAML, text) and validation
//
// Core Types:
//
// The Engine interface defines the main contract for trial operations,
// implemented by TrialEngine. TrialState holds everything needed to resume
// a trial, including a snapshot of the robot's controller, while MazeConfig
// describes the maze loaded from disk.
//
// Usage:
//
//	config, err := engine.LoadMazeConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	trial, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := trial.Run(0)
//	fmt.Println(trial.GetScore())
//
// Trial Rules:
//
// Each turn the robot receives three sensor distances and answers with a
// rotation and a movement. The first run ends when the robot asks for a
// reset after having reached the goal; the second run ends when the robot
// enters the goal. The score is the second-run turn count plus one
// thirtieth of the first-run turn count.
package engine
