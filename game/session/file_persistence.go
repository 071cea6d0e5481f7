package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/service"
)

const sessionFileExt = ".json"

// FilePersistence stores one JSON document per session in a directory
type FilePersistence struct {
	sessionsDir   string
	configManager service.ConfigManager
}

// NewFilePersistence creates the sessions directory if needed
func NewFilePersistence(sessionsDir string, configManager service.ConfigManager) (*FilePersistence, error) {
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &FilePersistence{
		sessionsDir:   sessionsDir,
		configManager: configManager,
	}, nil
}

// Save writes the session atomically via a temp file and rename
func (fp *FilePersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}
	if err := ValidateSessionID(session.ID); err != nil {
		return err
	}

	configID, err := fp.configIDFor(session.Config.Name)
	if err != nil {
		return fmt.Errorf("failed to get config ID: %w", err)
	}

	data := PersistedSessionData{
		ID:             session.ID,
		ConfigName:     configID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		TrialState:     session.Engine.GetState(),
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	tmp, err := os.CreateTemp(fp.sessionsDir, ".session-*")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(jsonData); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fp.filePath(session.ID)); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	logger.Debug("session saved", "session", session.ID, "status", data.TrialState.Status)
	return nil
}

// Load rebuilds a session: the maze comes from the config manager and the
// robot from the snapshot in the saved trial state
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	if err := ValidateSessionID(id); err != nil {
		return nil, err
	}

	jsonData, err := os.ReadFile(fp.filePath(id))
	if os.IsNotExist(err) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	if data.TrialState == nil {
		return nil, fmt.Errorf("session %s has no trial state", id)
	}

	mazeConfig, err := fp.configManager.LoadConfig(data.ConfigName)
	if err != nil {
		return nil, fmt.Errorf("failed to load config '%s': %w", data.ConfigName, err)
	}

	eng, err := engine.NewEngine(mazeConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create trial engine: %w", err)
	}
	if err := eng.SetState(data.TrialState); err != nil {
		return nil, fmt.Errorf("failed to restore trial state: %w", err)
	}

	return &service.Session{
		ID:             data.ID,
		Engine:         eng,
		Config:         mazeConfig,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

// Delete removes a session file
func (fp *FilePersistence) Delete(id string) error {
	if !fp.Exists(id) {
		return ErrSessionNotFound
	}
	if err := os.Remove(fp.filePath(id)); err != nil {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// ListAll returns all persisted session IDs
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, sessionFileExt) {
			continue
		}
		id := strings.TrimSuffix(name, sessionFileExt)
		if ValidateSessionID(id) == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Exists checks if a session file exists
func (fp *FilePersistence) Exists(id string) bool {
	if ValidateSessionID(id) != nil {
		return false
	}
	_, err := os.Stat(fp.filePath(id))
	return err == nil
}

func (fp *FilePersistence) filePath(id string) string {
	return filepath.Join(fp.sessionsDir, id+sessionFileExt)
}

// configIDFor maps a maze display name to its config ID (file name without
// extension). Unknown names are assumed to be IDs already.
func (fp *FilePersistence) configIDFor(displayName string) (string, error) {
	configs, err := fp.configManager.ListConfigs()
	if err != nil {
		return "", fmt.Errorf("failed to list configs: %w", err)
	}

	for _, c := range configs {
		if c.Name == displayName {
			return c.ConfigID, nil
		}
	}
	return displayName, nil
}
