package client

import (
	"context"
	"errors"
	"strings"

	"github.com/ikiguide/ikiguide/internal/ikigai"
	"github.com/ikiguide/ikiguide/internal/session"
)

// ErrEmptyAnswer is a local validation failure; no network call is made.
var ErrEmptyAnswer = errors.New("answer must not be empty")

// ErrIncomplete means the results view was reached before all four answers
// were stored; the flow restarts from the introduction.
var ErrIncomplete = errors.New("session is missing answers")

// Flow drives the four-question sequence: identity resolution, local and
// remote answer persistence, navigation and results retrieval.
type Flow struct {
	api      API
	answers  *Answers
	resolver *Resolver
}

// NewFlow wires the flow over the backend API and the local store.
func NewFlow(api API, store LocalStore) *Flow {
	return &Flow{
		api:      api,
		answers:  NewAnswers(store),
		resolver: NewResolver(api, store),
	}
}

// Resolve returns the active session id per the mirror precedence.
func (f *Flow) Resolve(explicit string) string {
	return f.resolver.Resolve(explicit)
}

// Validate checks the session against the backend. A rejected session has
// every local mirror purged before the error is returned.
func (f *Flow) Validate(ctx context.Context, sessionID string) error {
	if err := f.api.ValidateSession(ctx, sessionID); err != nil {
		if errors.Is(err, ErrInvalidSession) {
			_ = f.resolver.Purge(sessionID)
		}
		return err
	}
	return nil
}

// EmailDispatch returns a dispatcher bound to the same backend.
func (f *Flow) EmailDispatch() *EmailDispatch {
	return NewEmailDispatch(f.api)
}

// Answers exposes the local answer cache.
func (f *Flow) Answers() *Answers {
	return f.answers
}

// Start clears any prior session's artifacts and begins a fresh one.
func (f *Flow) Start(ctx context.Context) (string, error) {
	if prior := f.resolver.Resolve(""); prior != "" {
		// Best effort; the backend forgets the session eventually anyway.
		_ = f.api.Reset(ctx, prior)
		_ = f.resolver.Purge(prior)
	}

	id, err := f.api.StartSession(ctx)
	if err != nil {
		return "", err
	}
	if err := f.resolver.Remember(id); err != nil {
		return "", err
	}
	return id, nil
}

// Submit records the answer for the step locally and remotely and returns
// the next step. done is true after the final question. Empty post-trim
// input fails locally without touching the network or the stored answer.
func (f *Flow) Submit(ctx context.Context, sessionID string, step int, text string) (next int, done bool, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return step, false, ErrEmptyAnswer
	}

	if err := f.answers.Put(sessionID, step, text); err != nil {
		return step, false, err
	}
	if err := f.api.SaveResponse(ctx, sessionID, step, text); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Status == 404 {
			_ = f.resolver.Purge(sessionID)
			return step, false, ErrInvalidSession
		}
		return step, false, err
	}

	// Repair pass: advancing re-affirms the id mirrors.
	if err := f.resolver.Remember(sessionID); err != nil {
		return step, false, err
	}

	if step >= session.QuestionCount {
		return step, true, nil
	}
	return step + 1, false, nil
}

// Previous steps back without validation or network interaction.
func (f *Flow) Previous(step int) int {
	if step > 1 {
		return step - 1
	}
	return step
}

// Prefill returns the locally stored answer for the step, empty if absent.
func (f *Flow) Prefill(sessionID string, step int) string {
	return f.answers.Get(sessionID, step)
}

// ResultsView is what the results step renders: parsed entries plus the
// user's own inputs, served from the local cache.
type ResultsView struct {
	Entries []ikigai.Entry
	Inputs  map[int]string
}

// Results validates the session, fetches the generated paths and parses
// them. An incomplete or invalid session purges local state so the caller
// restarts from the introduction.
func (f *Flow) Results(ctx context.Context, sessionID string) (*ResultsView, error) {
	if !f.answers.Complete(sessionID) {
		_ = f.resolver.Purge(sessionID)
		return nil, ErrIncomplete
	}

	if err := f.Validate(ctx, sessionID); err != nil {
		return nil, err
	}

	paths, err := f.api.Results(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &ResultsView{
		Entries: ikigai.ParseEntries(paths),
		Inputs:  f.answers.All(sessionID),
	}, nil
}

// Reset invalidates the backend session best-effort and clears every local
// trace of it.
func (f *Flow) Reset(ctx context.Context, sessionID string) error {
	_ = f.api.Reset(ctx, sessionID)
	return f.resolver.Purge(sessionID)
}
