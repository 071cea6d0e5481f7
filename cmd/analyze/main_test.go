package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/micromouse/game/engine"
)

func TestAnalyzeOpenFour(t *testing.T) {
	a, err := analyzeConfig("../../configs/open_4.json")
	if err != nil {
		t.Fatalf("analyzeConfig failed: %v", err)
	}

	if a.Name != "open_4" || a.Dim != 4 {
		t.Errorf("Unexpected maze header: %s %d", a.Name, a.Dim)
	}
	if a.Stats.ShortestRoute != 2 || a.OptimalLength != 2 {
		t.Errorf("Expected optimal route of 2, got stats %d plan %d", a.Stats.ShortestRoute, a.OptimalLength)
	}
	if a.Status != engine.Finished {
		t.Errorf("Expected finished trial, got %s", a.Status)
	}
	if a.RunTurns != [2]int{4, 2} {
		t.Errorf("Expected run turns [4 2], got %v", a.RunTurns)
	}
	if a.RouteLen != 3 {
		t.Errorf("Expected route length 3, got %d", a.RouteLen)
	}
	if a.Explored <= 0 || a.Explored > 16 {
		t.Errorf("Explored cells out of range: %d", a.Explored)
	}

	var out bytes.Buffer
	printAnalysis(&out, a)
	for _, want := range []string{
		"Maze: 4 x 4",
		"Optimal route: 2 moves",
		"Trial: finished after 4 + 2 turns",
		"Route is 1 moves longer than optimal (3 vs 2)",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected %q in output, got:\n%s", want, out.String())
		}
	}
}

func TestAnalyzeSampleMazes(t *testing.T) {
	tests := []struct {
		file     string
		runTurns [2]int
		route    int
	}{
		{"classic.json", [2]int{26, 18}, 25},
		{"braided_12.yaml", [2]int{24, 13}, 21},
		{"braided_16.txt", [2]int{32, 15}, 23},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			a, err := analyzeConfig(filepath.Join("../../configs", tt.file))
			if err != nil {
				t.Fatalf("analyzeConfig failed: %v", err)
			}
			if a.RunTurns != tt.runTurns {
				t.Errorf("Expected run turns %v, got %v", tt.runTurns, a.RunTurns)
			}
			if a.RouteLen != tt.route {
				t.Errorf("Expected route length %d, got %d", tt.route, a.RouteLen)
			}
			if a.OptimalLength < 0 {
				t.Errorf("Expected a route on the full maze, got %d", a.OptimalLength)
			}
			if a.Explored > a.Stats.Reachable {
				t.Errorf("Robot mapped %d cells but only %d are reachable", a.Explored, a.Stats.Reachable)
			}
		})
	}
}

func TestAnalyzeInvalidMaze(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sealed.json")
	content := `{"name": "sealed", "dim": 4, "walls": [[0,0,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,0]]}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write maze: %v", err)
	}

	if _, err := analyzeConfig(path); err == nil {
		t.Error("Expected error for a maze whose goal cannot be reached")
	}
	if _, err := analyzeConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for a missing file")
	}
}

func TestPrintAnalysisWarnings(t *testing.T) {
	a := &Analysis{
		Name:          "broken",
		Dim:           4,
		OptimalLength: -1,
		Status:        engine.Failed,
		PlanError:     "no route to goal",
	}

	var out bytes.Buffer
	printAnalysis(&out, a)
	for _, want := range []string{"CRITICAL", "Plan error: no route to goal", "never planned a route"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected %q in output, got:\n%s", want, out.String())
		}
	}
}

func TestCoverage(t *testing.T) {
	if c := (&Analysis{}).Coverage(); c != 0 {
		t.Errorf("Expected zero coverage for an empty analysis, got %f", c)
	}
	if c := (&Analysis{Dim: 4, Explored: 8}).Coverage(); c != 0.5 {
		t.Errorf("Expected coverage 0.5, got %f", c)
	}
}
