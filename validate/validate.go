// Command validate checks the maze files in a configs directory (default
// ../configs). For every .json, .yaml, .yml and .txt file it checks:
//   - the file parses in its format
//   - name, dimension and turn limit are in range
//   - the wall grid is square, closed at the border and consistent between
//     neighboring cells
//   - the goal region is reachable from the start cell
//
// Valid files also get a short summary: dead ends, junctions, unreachable
// cells and the length of the shortest route.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/maze"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
}

// validateConfig loads and validates a single maze file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	config, err := engine.LoadMazeConfig(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	m, err := maze.New(config.Dim, config.Walls)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	stats := m.Stats()
	total := config.Dim * config.Dim
	if stats.Reachable < total {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d of %d cells are unreachable from the start", total-stats.Reachable, total))
	}
	if config.MaxTurns < stats.ShortestRoute {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("max_turns %d is below the shortest route (%d moves)", config.MaxTurns, stats.ShortestRoute))
	}
	id := strings.TrimSuffix(result.File, filepath.Ext(result.File))
	if config.Description == "" {
		result.Warnings = append(result.Warnings, "description is empty")
	}

	result.Errors = append(result.Errors,
		fmt.Sprintf("✓ Name: %s (config_id: %s)", config.Name, id),
		fmt.Sprintf("✓ Maze: %dx%d", config.Dim, config.Dim),
		fmt.Sprintf("✓ Max turns: %d", config.MaxTurns),
		fmt.Sprintf("✓ Dead ends: %d, junctions: %d", stats.DeadEnds, stats.Junctions),
		fmt.Sprintf("✓ Shortest route: %d moves", stats.ShortestRoute),
	)
	return result
}

// mazeFiles lists the files in dir with a supported maze extension
func mazeFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if slices.Contains(engine.ConfigExtensions, strings.ToLower(filepath.Ext(entry.Name()))) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := mazeFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding maze files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
			for _, warning := range result.Warnings {
				fmt.Println("  ⚠️  " + warning)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All mazes are valid!")
	} else {
		fmt.Println("❌ Some mazes have errors")
		os.Exit(1)
	}
}
