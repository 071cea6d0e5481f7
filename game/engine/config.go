package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/micromouse/game/maze"
	"github.com/wricardo/micromouse/game/robot"
	"gopkg.in/yaml.v3"
)

// ConfigExtensions lists the supported maze file extensions, in lookup order
var ConfigExtensions = []string{".json", ".yaml", ".yml", ".txt"}

// ValidateMazeConfig validates a maze configuration for correctness and playability
func ValidateMazeConfig(config *MazeConfig) error {
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	if config.Dim < MinDim || config.Dim > MaxDim {
		return fmt.Errorf("config validation: dim must be between %d and %d, got %d", MinDim, MaxDim, config.Dim)
	}

	if config.MaxTurns < 0 || config.MaxTurns > MaxTurnsLimit {
		return fmt.Errorf("config validation: max_turns must be between 0 and %d, got %d", MaxTurnsLimit, config.MaxTurns)
	}

	m, err := maze.New(config.Dim, config.Walls)
	if err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	return nil
}

// ParseMazeConfig decodes a maze configuration. ext selects the format; the
// text format carries no name, so name is used when the decoded one is empty.
func ParseMazeConfig(data []byte, ext, name string) (*MazeConfig, error) {
	var config MazeConfig

	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case ".txt":
		m, err := maze.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		config.Dim = m.Dim()
		config.Walls = m.Walls()
		config.Description = fmt.Sprintf("%dx%d maze", m.Dim(), m.Dim())
	default:
		return nil, fmt.Errorf("unsupported maze format %q", ext)
	}

	if config.Name == "" {
		config.Name = name
	}
	if config.MaxTurns == 0 {
		config.MaxTurns = DefaultMaxTurns
	}
	return &config, nil
}

// LoadMazeConfig loads a maze configuration file, picking the format from
// its extension
func LoadMazeConfig(filename string) (*MazeConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filepath.Base(filename), ext)
	config, err := ParseMazeConfig(data, ext, name)
	if err != nil {
		return nil, fmt.Errorf("failed to parse maze file '%s': %w", filepath.Base(filename), err)
	}

	if err := ValidateMazeConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultMazeConfig returns a small open maze used when nothing else is available
func DefaultMazeConfig() *MazeConfig {
	return &MazeConfig{
		Name:        "default",
		Description: "6x6 maze with only outer walls",
		Dim:         6,
		MaxTurns:    DefaultMaxTurns,
		Walls:       maze.Open(6).Walls(),
	}
}

// InitTrialStateFromConfig creates the state of a fresh trial
func InitTrialStateFromConfig(config *MazeConfig) *TrialState {
	if config == nil {
		config = DefaultMazeConfig()
	}
	maxTurns := config.MaxTurns
	if maxTurns == 0 {
		maxTurns = DefaultMaxTurns
	}

	return &TrialState{
		TrialID:      newID(),
		RunIDs:       [2]string{newID(), newID()},
		ConfigName:   config.Name,
		Dim:          config.Dim,
		MaxTurns:     maxTurns,
		Status:       Exploring,
		Body:         robot.StartPose,
		Message:      fmt.Sprintf("Trial started on %s. Exploring.", config.Name),
		MoveHistory:  []MoveHistoryEntry{},
		CurrentMoves: []MoveHistoryEntry{},
	}
}
