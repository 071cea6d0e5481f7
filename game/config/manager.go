package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/inconshreveable/log15/v3"
	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/service"
	"gopkg.in/yaml.v3"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

var logger = log15.New("module", "config")

// DefaultConfigName is the maze used when a session names none
const DefaultConfigName = "classic"

// Manager loads maze files from a directory and caches them by config ID
type Manager struct {
	configDir     string
	defaultConfig *engine.MazeConfig
	configs       map[string]*engine.MazeConfig
	mu            sync.RWMutex
}

// NewManager creates a configuration manager over configDir
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.MazeConfig),
	}
	m.loadDefaultConfig()
	return m, nil
}

// splitName separates a config reference into its ID and an optional
// extension. Names may not escape the config directory.
func splitName(name string) (id, ext string, err error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", "", fmt.Errorf("%w: bad config name %q", ErrInvalidConfig, name)
	}
	ext = filepath.Ext(name)
	if slices.Contains(engine.ConfigExtensions, strings.ToLower(ext)) {
		return strings.TrimSuffix(name, ext), strings.ToLower(ext), nil
	}
	return name, "", nil
}

// LoadConfig loads a maze by config ID. Without an extension the supported
// formats are tried in engine.ConfigExtensions order.
func (m *Manager) LoadConfig(name string) (*engine.MazeConfig, error) {
	id, ext, err := splitName(name)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	config, ok := m.configs[id]
	m.mu.RUnlock()
	if ok {
		return config, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if config, ok := m.configs[id]; ok {
		return config, nil
	}

	path, err := m.resolve(id, ext)
	if err != nil {
		return nil, err
	}

	config, err = engine.LoadMazeConfig(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	m.configs[id] = config
	logger.Debug("maze loaded", "config", id, "file", filepath.Base(path), "dim", config.Dim)
	return config, nil
}

func (m *Manager) resolve(id, ext string) (string, error) {
	candidates := engine.ConfigExtensions
	if ext != "" {
		candidates = []string{ext}
	}
	for _, e := range candidates {
		path := filepath.Join(m.configDir, id+e)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrConfigNotFound
}

// ListConfigs describes every loadable maze in the directory, sorted by
// config ID. Invalid files are skipped.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	seen := make(map[string]bool)
	var configs []*service.ConfigInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, ext, err := splitName(entry.Name())
		if err != nil || ext == "" || seen[id] {
			continue
		}

		config, err := m.LoadConfig(id)
		if err != nil {
			logger.Warn("skipping maze file", "file", entry.Name(), "err", err)
			continue
		}
		seen[id] = true

		configs = append(configs, &service.ConfigInfo{
			Filename:    entry.Name(),
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
			Dim:         config.Dim,
			MaxTurns:    config.MaxTurns,
		})
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.MazeConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops cached mazes and re-reads the default
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.MazeConfig)
	m.mu.Unlock()

	m.loadDefaultConfig()
}

// loadDefaultConfig picks classic, then the first valid maze, then the
// built-in open maze
func (m *Manager) loadDefaultConfig() {
	config, err := m.LoadConfig(DefaultConfigName)
	if err != nil {
		config = engine.DefaultMazeConfig()
		if configs, listErr := m.ListConfigs(); listErr == nil && len(configs) > 0 {
			if first, err := m.LoadConfig(configs[0].ConfigID); err == nil {
				config = first
			}
		}
		logger.Info("default maze not found, using fallback", "wanted", DefaultConfigName, "using", config.Name)
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
}

// SaveConfig validates config and writes it to disk. A .yaml or .yml
// name is written as YAML, anything else as JSON.
func (m *Manager) SaveConfig(name string, config *engine.MazeConfig) error {
	id, ext, err := splitName(name)
	if err != nil {
		return err
	}
	if config.MaxTurns == 0 {
		config.MaxTurns = engine.DefaultMaxTurns
	}
	if err := engine.ValidateMazeConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var data []byte
	switch ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	case ".txt":
		return fmt.Errorf("%w: text mazes are read-only", ErrInvalidConfig)
	default:
		ext = ".json"
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.configDir, id+ext), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()

	logger.Info("maze saved", "config", id, "format", strings.TrimPrefix(ext, "."))
	return nil
}
