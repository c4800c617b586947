package client

import (
	"fmt"

	"github.com/ikiguide/ikiguide/internal/session"
)

// sessionIDKey is the local-store mirror of the active session id.
const sessionIDKey = "ikiguide_session_id"

func responseKey(sessionID string, question int) string {
	return fmt.Sprintf("%s_response_%d", sessionID, question)
}

// Answers caches submitted answers locally, keyed per session and question,
// so steps can prefill and the results view can show inputs without a
// round trip.
type Answers struct {
	store LocalStore
}

// NewAnswers wraps the local store.
func NewAnswers(store LocalStore) *Answers {
	return &Answers{store: store}
}

// Put stores an answer for the session and question.
func (a *Answers) Put(sessionID string, question int, text string) error {
	return a.store.Set(responseKey(sessionID, question), text)
}

// Get returns the stored answer, or empty when absent.
func (a *Answers) Get(sessionID string, question int) string {
	v, _ := a.store.Get(responseKey(sessionID, question))
	return v
}

// All returns every stored answer for the session.
func (a *Answers) All(sessionID string) map[int]string {
	out := make(map[int]string)
	for q := 1; q <= session.QuestionCount; q++ {
		if v := a.Get(sessionID, q); v != "" {
			out[q] = v
		}
	}
	return out
}

// Complete reports whether all four answers are present.
func (a *Answers) Complete(sessionID string) bool {
	for q := 1; q <= session.QuestionCount; q++ {
		if a.Get(sessionID, q) == "" {
			return false
		}
	}
	return true
}

// Clear removes exactly the four answer keys for the session, plus the
// session id mirror when it points at this session. Other sessions' keys
// are untouched.
func (a *Answers) Clear(sessionID string) error {
	for q := 1; q <= session.QuestionCount; q++ {
		if err := a.store.Delete(responseKey(sessionID, q)); err != nil {
			return err
		}
	}
	if current, _ := a.store.Get(sessionIDKey); current == sessionID {
		return a.store.Delete(sessionIDKey)
	}
	return nil
}
