// Command analyze prints quick, human-readable heuristics about the maze files
// in the project's configs directory: layout statistics, the optimal route on
// the full maze, and how a simulated trial compares to it.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/maze"
	"github.com/wricardo/micromouse/game/robot"
)

// Analysis is the summary of one maze
type Analysis struct {
	Name  string
	Dim   int
	Stats maze.Stats

	// OptimalLength is the planner's route length with every wall known
	OptimalLength int

	Status    engine.Status
	RunTurns  [2]int
	Score     float64
	Explored  int
	RouteLen  int
	PlanError string
}

// Coverage is the share of cells the robot mapped during the trial
func (a *Analysis) Coverage() float64 {
	if a.Dim == 0 {
		return 0
	}
	return float64(a.Explored) / float64(a.Dim*a.Dim)
}

func main() {
	configDir := flag.String("dir", "configs", "directory holding maze files")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		entries, err := os.ReadDir(*configDir)
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", *configDir, err)
			os.Exit(1)
		}
		for _, entry := range entries {
			if !entry.IsDir() && slices.Contains(engine.ConfigExtensions, strings.ToLower(filepath.Ext(entry.Name()))) {
				files = append(files, filepath.Join(*configDir, entry.Name()))
			}
		}
	}

	for _, path := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(path))
		analysis, err := analyzeConfig(path)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		printAnalysis(os.Stdout, analysis)
	}
}

func analyzeConfig(path string) (*Analysis, error) {
	config, err := engine.LoadMazeConfig(path)
	if err != nil {
		return nil, err
	}
	m, err := maze.New(config.Dim, config.Walls)
	if err != nil {
		return nil, err
	}

	a := &Analysis{Name: config.Name, Dim: config.Dim, Stats: m.Stats(), OptimalLength: -1}
	if policy, err := robot.Plan(m.Known(), robot.Origin, robot.Up); err == nil {
		a.OptimalLength = policy.Length()
	}

	e, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}
	// Run stops after MaxBulkSteps; the turn limit eventually fails the trial
	for !e.IsFinished() {
		if _, err := e.Run(0); err != nil {
			return nil, err
		}
	}

	state := e.GetState()
	a.Status = state.Status
	a.RunTurns = state.RunTurns
	a.Score = state.Score
	a.Explored = e.Controller().Grid().KnownCount()
	if route, ok := e.GetPolicy(); ok {
		a.RouteLen = len(route)
	}
	if err := e.Controller().PlanError(); err != nil {
		a.PlanError = err.Error()
	}
	return a, nil
}

func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Maze: %d x %d\n", a.Dim, a.Dim)
	fmt.Fprintf(w, "Dead ends: %d, junctions: %d\n", a.Stats.DeadEnds, a.Stats.Junctions)
	fmt.Fprintf(w, "Reachable cells: %d/%d\n", a.Stats.Reachable, a.Dim*a.Dim)

	if a.OptimalLength < 0 {
		fmt.Fprintf(w, "⚠️  CRITICAL: no route from the start to the goal\n")
	} else {
		fmt.Fprintf(w, "Optimal route: %d moves (shortest path %d cells)\n", a.OptimalLength, a.Stats.ShortestRoute)
	}

	fmt.Fprintf(w, "Trial: %s after %d + %d turns, score %.3f\n", a.Status, a.RunTurns[0], a.RunTurns[1], a.Score)
	fmt.Fprintf(w, "Explored: %d cells (%.0f%%)\n", a.Explored, 100*a.Coverage())
	if a.PlanError != "" {
		fmt.Fprintf(w, "⚠️  Plan error: %s\n", a.PlanError)
	}

	switch {
	case a.RouteLen == 0:
		fmt.Fprintf(w, "⚠️  WARNING: the robot never planned a route\n")
	case a.OptimalLength >= 0 && a.RouteLen > a.OptimalLength:
		fmt.Fprintf(w, "⚠️  Route is %d moves longer than optimal (%d vs %d)\n",
			a.RouteLen-a.OptimalLength, a.RouteLen, a.OptimalLength)
	default:
		fmt.Fprintf(w, "✅ Route matches the optimal length (%d moves)\n", a.RouteLen)
	}
}
