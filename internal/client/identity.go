package client

// Resolver reconciles the active session id across its three mirrors: an
// explicit id (route or flag), the cookie jar, and the persistent local
// store. First present wins.
type Resolver struct {
	api     API
	store   LocalStore
	answers *Answers
}

// NewResolver builds a resolver over the API's cookie jar and the local
// store.
func NewResolver(api API, store LocalStore) *Resolver {
	return &Resolver{api: api, store: store, answers: NewAnswers(store)}
}

// Resolve returns the active session id, or empty when no channel carries
// one.
func (r *Resolver) Resolve(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if id := r.api.SessionCookie(); id != "" {
		return id
	}
	id, _ := r.store.Get(sessionIDKey)
	return id
}

// Remember writes the canonical id back into the local store so future
// invocations agree. The cookie mirror is maintained by the jar, which
// picks up the backend's Set-Cookie on every state-changing call.
func (r *Resolver) Remember(sessionID string) error {
	return r.store.Set(sessionIDKey, sessionID)
}

// Purge removes every local trace of the session: its four answers and the
// id mirror. A session is never left half-valid.
func (r *Resolver) Purge(sessionID string) error {
	return r.answers.Clear(sessionID)
}
