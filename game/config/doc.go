// Package config loads and caches maze definitions from a directory.
//
// A maze is addressed by its config ID, the file name without extension.
// Files may be JSON, YAML or the plain text format read by maze.Parse:
//
//	configs/
//	  classic.json
//	  braided_12.yaml
//	  braided_16.txt
//
// LoadConfig("braided_12") tries the extensions in engine.ConfigExtensions
// order. Every maze is validated on load (even dimension, closed outer
// wall, consistent shared walls, reachable goal) and rejected with
// ErrInvalidConfig otherwise.
//
// The default maze is "classic" when present, else the first valid maze
// by ID, else engine.DefaultMazeConfig.
package config
