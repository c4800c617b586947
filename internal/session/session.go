// Package session stores short-lived questionnaire sessions: the four
// answers a visitor gives, and the generated ikigai paths once computed.
package session

import (
	"context"
	"errors"
	"time"
)

// QuestionCount is the fixed number of questionnaire steps.
const QuestionCount = 4

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Session is one visitor's questionnaire state.
type Session struct {
	ID           string    `json:"session_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	// Responses maps question id (1..4) to the visitor's answer.
	Responses map[int]string `json:"responses"`
	// Paths caches the generated results so a session is never regenerated.
	Paths []string `json:"paths,omitempty"`
}

// Complete reports whether all four answers are present and non-empty.
func (s *Session) Complete() bool {
	if len(s.Responses) < QuestionCount {
		return false
	}
	for id := 1; id <= QuestionCount; id++ {
		if s.Responses[id] == "" {
			return false
		}
	}
	return true
}

// Store persists sessions. Implementations must treat expired sessions as
// absent and must touch LastActivity on every successful Get.
type Store interface {
	// Create allocates a new session with a fresh id.
	Create(ctx context.Context) (*Session, error)
	// Get returns the session or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)
	// SaveResponses merges the given answers into the session.
	SaveResponses(ctx context.Context, id string, responses map[int]string) error
	// SetPaths records the generated results for the session.
	SetPaths(ctx context.Context, id string, paths []string) error
	// Delete removes the session. Deleting an unknown id returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	// Exists reports whether the session is live.
	Exists(ctx context.Context, id string) (bool, error)
	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
	// Close releases store resources.
	Close() error
}
