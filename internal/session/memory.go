package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ikiguide/ikiguide/internal/logger"
)

// MemoryStore is an in-memory Store for development and tests. Expired
// sessions are purged before every create, and when the session cap is
// reached the oldest session is evicted to make room.
type MemoryStore struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	ttl         time.Duration
	maxSessions int
	now         func() time.Time
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(ttl time.Duration, maxSessions int) *MemoryStore {
	return &MemoryStore{
		sessions:    make(map[string]*Session),
		ttl:         ttl,
		maxSessions: maxSessions,
		now:         time.Now,
	}
}

// Create allocates a new session, evicting expired and oldest sessions first.
func (m *MemoryStore) Create(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cleanupLocked()

	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		oldest := ""
		for id, sess := range m.sessions {
			if oldest == "" || sess.CreatedAt.Before(m.sessions[oldest].CreatedAt) {
				oldest = id
			}
		}
		delete(m.sessions, oldest)
		logger.Warn().Str("session_id", oldest).Msg("max sessions reached, evicted oldest session")
	}

	now := m.now().UTC()
	sess := &Session{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		LastActivity: now,
		Responses:    make(map[int]string),
	}
	m.sessions[sess.ID] = sess
	return sess, nil
}

// Get returns a copy of the session, touching its last-activity timestamp.
func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.getLocked(id)
	if err != nil {
		return nil, err
	}
	return copySession(sess), nil
}

// SaveResponses merges the given answers into the session.
func (m *MemoryStore) SaveResponses(ctx context.Context, id string, responses map[int]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.getLocked(id)
	if err != nil {
		return err
	}
	if sess.Responses == nil {
		sess.Responses = make(map[int]string)
	}
	for qid, text := range responses {
		sess.Responses[qid] = text
	}
	return nil
}

// SetPaths records the generated results for the session.
func (m *MemoryStore) SetPaths(ctx context.Context, id string, paths []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.getLocked(id)
	if err != nil {
		return err
	}
	sess.Paths = append([]string(nil), paths...)
	return nil
}

// Delete removes the session.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Exists reports whether the session is live.
func (m *MemoryStore) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.getLocked(id)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Ping always succeeds for the in-memory store.
func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error { return nil }

// Len reports the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanupLocked()
	return len(m.sessions)
}

func (m *MemoryStore) getLocked(id string) (*Session, error) {
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if m.expired(sess) {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}
	sess.LastActivity = m.now().UTC()
	return sess, nil
}

func (m *MemoryStore) expired(sess *Session) bool {
	return m.ttl > 0 && m.now().Sub(sess.CreatedAt) > m.ttl
}

func (m *MemoryStore) cleanupLocked() {
	for id, sess := range m.sessions {
		if m.expired(sess) {
			delete(m.sessions, id)
		}
	}
}

func copySession(sess *Session) *Session {
	out := &Session{
		ID:           sess.ID,
		CreatedAt:    sess.CreatedAt,
		LastActivity: sess.LastActivity,
		Responses:    make(map[int]string, len(sess.Responses)),
		Paths:        append([]string(nil), sess.Paths...),
	}
	for qid, text := range sess.Responses {
		out.Responses[qid] = text
	}
	return out
}
