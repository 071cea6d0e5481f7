package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/micromouse/game/maze"
)

func createValidConfig() *MazeConfig {
	return &MazeConfig{
		Name:        "Test Config",
		Description: "A valid test configuration",
		Dim:         4,
		MaxTurns:    100,
		Walls:       maze.Open(4).Walls(),
	}
}

func TestValidateMazeConfig(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*MazeConfig)
		wantErr string
	}{
		{"valid config", func(c *MazeConfig) {}, ""},
		{"missing name", func(c *MazeConfig) { c.Name = "" }, "name is required"},
		{"dim too small", func(c *MazeConfig) { c.Dim = 0 }, "dim must be between"},
		{"dim too large", func(c *MazeConfig) { c.Dim = 64 }, "dim must be between"},
		{"negative max turns", func(c *MazeConfig) { c.MaxTurns = -1 }, "max_turns"},
		{"walls do not match dim", func(c *MazeConfig) { c.Dim = 6 }, "expected 6 columns"},
		{"odd dim", func(c *MazeConfig) { c.Dim = 3; c.Walls = maze.Open(3).Walls() }, "must be even"},
		{"open boundary", func(c *MazeConfig) { c.Walls[3][3] |= 1 }, "outer wall"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createValidConfig()
			tt.modify(config)
			err := ValidateMazeConfig(config)

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateMazeConfigWrapsMazeErrors(t *testing.T) {
	config := createValidConfig()
	config.Walls[0][0] = 0
	config.Walls[0][1] &^= 4
	config.Walls[1][0] &^= 8

	err := ValidateMazeConfig(config)
	if !errors.Is(err, maze.ErrInvalidMaze) {
		t.Errorf("Expected maze.ErrInvalidMaze, got: %v", err)
	}
}

func TestParseMazeConfigFormats(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data string
	}{
		{"json", ".json", `{"name":"tiny","description":"d","dim":2,"walls":[[3,6],[9,12]]}`},
		{"yaml", ".yaml", "name: tiny\ndescription: d\ndim: 2\nwalls:\n  - [3, 6]\n  - [9, 12]\n"},
		{"yml", ".yml", "name: tiny\ndim: 2\nwalls: [[3, 6], [9, 12]]\n"},
		{"text", ".txt", "2\n3,6\n9,12\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := ParseMazeConfig([]byte(tt.data), tt.ext, "tiny")
			if err != nil {
				t.Fatalf("Failed to parse: %v", err)
			}
			if config.Name != "tiny" {
				t.Errorf("Expected name 'tiny', got '%s'", config.Name)
			}
			if config.Dim != 2 {
				t.Errorf("Expected dim 2, got %d", config.Dim)
			}
			if config.MaxTurns != DefaultMaxTurns {
				t.Errorf("Expected default max turns %d, got %d", DefaultMaxTurns, config.MaxTurns)
			}
			if config.Walls[1][1] != 12 {
				t.Errorf("Expected walls[1][1] = 12, got %d", config.Walls[1][1])
			}
			if err := ValidateMazeConfig(config); err != nil {
				t.Errorf("Parsed config should validate: %v", err)
			}
		})
	}
}

func TestParseMazeConfigUnsupported(t *testing.T) {
	if _, err := ParseMazeConfig([]byte("x"), ".toml", "x"); err == nil {
		t.Error("Expected error for unsupported format")
	}
	if _, err := ParseMazeConfig([]byte("{"), ".json", "x"); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestLoadMazeConfig(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "square.txt")
	if err := os.WriteFile(path, []byte("2\n3,6\n9,12\n"), 0644); err != nil {
		t.Fatalf("Failed to write maze file: %v", err)
	}

	config, err := LoadMazeConfig(path)
	if err != nil {
		t.Fatalf("Failed to load maze: %v", err)
	}
	if config.Name != "square" {
		t.Errorf("Expected name from file name 'square', got '%s'", config.Name)
	}

	if _, err := LoadMazeConfig(filepath.Join(tempDir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(tempDir, "bad.txt")
	if err := os.WriteFile(bad, []byte("3\n2,6,4\n11,15,12\n9,13,12\n"), 0644); err != nil {
		t.Fatalf("Failed to write maze file: %v", err)
	}
	if _, err := LoadMazeConfig(bad); err == nil {
		t.Error("Expected validation error for odd dimension")
	}
}

func TestSampleConfigsLoad(t *testing.T) {
	files, err := filepath.Glob("../../configs/*")
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}
	if len(files) == 0 {
		t.Skip("no sample configs found")
	}

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			if _, err := LoadMazeConfig(file); err != nil {
				t.Errorf("Failed to load %s: %v", file, err)
			}
		})
	}
}

func TestDefaultMazeConfig(t *testing.T) {
	if err := ValidateMazeConfig(DefaultMazeConfig()); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}

	state := InitTrialStateFromConfig(nil)
	if state.ConfigName != "default" {
		t.Errorf("Expected default config name, got '%s'", state.ConfigName)
	}
	if state.MaxTurns != DefaultMaxTurns {
		t.Errorf("Expected max turns %d, got %d", DefaultMaxTurns, state.MaxTurns)
	}
	if state.TrialID == "" || state.RunIDs[0] == "" || state.RunIDs[0] == state.RunIDs[1] {
		t.Errorf("Expected distinct trial and run IDs, got %q %v", state.TrialID, state.RunIDs)
	}
}
