package session

import (
	"time"

	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/service"
)

// SessionPersistence stores sessions outside the process
type SessionPersistence interface {
	Save(session *service.Session) error
	Load(id string) (*service.Session, error)
	Delete(id string) error
	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)
	Exists(id string) bool
}

// PersistedSessionData is the on-disk form of a session. The maze is
// referenced by config ID and re-read on load; the trial state carries
// the robot snapshot so exploration resumes where it stopped.
type PersistedSessionData struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	TrialState     *engine.TrialState `json:"trial_state"`
}
