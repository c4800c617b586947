package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikiguide/ikiguide/internal/config"
	"github.com/ikiguide/ikiguide/internal/email"
	"github.com/ikiguide/ikiguide/internal/ikigai"
	"github.com/ikiguide/ikiguide/internal/session"
)

type stubGenerator struct {
	paths []string
	err   error
	calls int
}

func (g *stubGenerator) Paths(ctx context.Context, answers ikigai.Answers) ([]string, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.paths, nil
}

type stubSender struct {
	sent []email.Message
	err  error
}

func (s *stubSender) Send(ctx context.Context, msg email.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		AppName:     "Ikiguide",
		AppEnv:      "development",
		APIHost:     "localhost",
		APIPort:     8000,
		CORSOrigins: "http://localhost:3000",
		Session: config.SessionConfig{
			TimeoutHours:  24,
			MaxConcurrent: 100,
			CookieMaxAge:  3600,
		},
	}
}

func newTestServer(t *testing.T, generator ikigai.Generator, sender email.Sender) (*Server, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore(24*time.Hour, 100)
	return New(testConfig(), store, generator, sender), store
}

func doJSON(t *testing.T, s *Server, method, target string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, sonic.ConfigDefault.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func sessionCookie(id string) *http.Cookie {
	return &http.Cookie{Name: sessionCookieName, Value: id}
}

func startSession(t *testing.T, s *Server) string {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/start_session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	id, _ := decodeBody(t, rec)["session_id"].(string)
	require.NotEmpty(t, id)
	return id
}

func saveAll(t *testing.T, s *Server, id string, answers map[int]string) {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/responses",
		map[string]any{"session_id": id, "responses": answers})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestStartSessionSetsCookie(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)

	rec := doJSON(t, s, http.MethodPost, "/api/start_session", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			found = c
		}
	}
	require.NotNil(t, found)
	assert.True(t, found.HttpOnly)
	assert.Equal(t, "/", found.Path)
	assert.Equal(t, http.SameSiteLaxMode, found.SameSite)
	assert.False(t, found.Secure) // development environment
	assert.Equal(t, 3600, found.MaxAge)
}

func TestStartSessionReusesValidCookieSession(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)
	id := startSession(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/start_session", nil, sessionCookie(id))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, decodeBody(t, rec)["session_id"])
}

func TestStartSessionReplacesUnknownCookieSession(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)

	rec := doJSON(t, s, http.MethodPost, "/api/start_session", nil, sessionCookie("stale-id"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, "stale-id", decodeBody(t, rec)["session_id"])
}

func TestSessionInfoUnknownSession(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)

	rec := doJSON(t, s, http.MethodGet, "/api/session_info", nil, sessionCookie("missing"))
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["error"])
}

func TestSaveSingleResponse(t *testing.T) {
	s, store := newTestServer(t, nil, nil)
	id := startSession(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/responses",
		map[string]any{"question_id": 2, "response": "music"}, sessionCookie(id))
	require.Equal(t, http.StatusOK, rec.Code)

	sess, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "music", sess.Responses[2])
}

func TestSaveResponsesRejectsInvalidQuestionID(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)
	id := startSession(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/responses",
		map[string]any{"question_id": 7, "response": "x"}, sessionCookie(id))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveResponsesRejectsEmptyAnswer(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)
	id := startSession(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/responses",
		map[string]any{"question_id": 1, "response": "   "}, sessionCookie(id))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetResponses(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)
	id := startSession(t, s)
	saveAll(t, s, id, map[int]string{1: "a", 2: "b"})

	rec := doJSON(t, s, http.MethodGet, "/api/responses", nil, sessionCookie(id))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	responses, ok := body["responses"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a", responses["1"])
	assert.Equal(t, "b", responses["2"])
}

func TestResultsRequiresCompleteAnswers(t *testing.T) {
	s, _ := newTestServer(t, &stubGenerator{}, nil)
	id := startSession(t, s)
	saveAll(t, s, id, map[int]string{1: "a", 2: "b"})

	rec := doJSON(t, s, http.MethodGet, "/api/results?session_id="+id, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResultsRejectsPlaceholderAnswers(t *testing.T) {
	s, _ := newTestServer(t, &stubGenerator{}, nil)
	id := startSession(t, s)
	saveAll(t, s, id, map[int]string{1: "testing", 2: "testing", 3: "testing", 4: "testing"})

	rec := doJSON(t, s, http.MethodGet, "/api/results?session_id="+id, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResultsGeneratesAndCaches(t *testing.T) {
	gen := &stubGenerator{paths: []string{"A", "desc A", "SUMMARY: done"}}
	s, _ := newTestServer(t, gen, nil)
	id := startSession(t, s)
	saveAll(t, s, id, map[int]string{1: "a", 2: "b", 3: "c", 4: "d"})

	rec := doJSON(t, s, http.MethodGet, "/api/results?session_id="+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, id, body["session_id"])
	paths, ok := body["paths"].([]any)
	require.True(t, ok)
	assert.Len(t, paths, 3)
	assert.Contains(t, body, "user_responses")

	// Second fetch serves the cached paths without re-invoking the model.
	rec = doJSON(t, s, http.MethodGet, "/api/results?session_id="+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, gen.calls)
}

func TestResultsModelFailureReturnsErrorElement(t *testing.T) {
	gen := &stubGenerator{err: fmt.Errorf("model unavailable")}
	s, _ := newTestServer(t, gen, nil)
	id := startSession(t, s)
	saveAll(t, s, id, map[int]string{1: "a", 2: "b", 3: "c", 4: "d"})

	rec := doJSON(t, s, http.MethodGet, "/api/results?session_id="+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	paths := decodeBody(t, rec)["paths"].([]any)
	require.Len(t, paths, 1)
	assert.Contains(t, paths[0], "ERROR:")

	// Failures are not cached; the next fetch tries again.
	doJSON(t, s, http.MethodGet, "/api/results?session_id="+id, nil)
	assert.Equal(t, 2, gen.calls)
}

func TestResetSessionDeletesAndClearsCookie(t *testing.T) {
	s, store := newTestServer(t, nil, nil)
	id := startSession(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/reset_session",
		map[string]any{"session_id": id})
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := store.Get(context.Background(), id)
	assert.ErrorIs(t, err, session.ErrNotFound)

	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestResetSessionUnknownIDStillSucceeds(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)

	rec := doJSON(t, s, http.MethodPost, "/api/reset_session",
		map[string]any{"session_id": "never-existed"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEndSession(t *testing.T) {
	s, store := newTestServer(t, nil, nil)
	id := startSession(t, s)

	rec := doJSON(t, s, http.MethodDelete, "/api/end_session", nil, sessionCookie(id))
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := store.Get(context.Background(), id)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestEmailResultsValidationAndSending(t *testing.T) {
	sender := &stubSender{}
	s, store := newTestServer(t, nil, sender)
	id := startSession(t, s)
	require.NoError(t, store.SetPaths(context.Background(), id,
		[]string{"A", "desc A", "SUMMARY: done"}))

	rec := doJSON(t, s, http.MethodPost, "/api/email_results",
		map[string]any{"email": "not-an-email"}, sessionCookie(id))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/email_results",
		map[string]any{"email": "user@example.com"}, sessionCookie(id))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "user@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].HTMLBody, "desc A")
}

func TestEmailResultsIncludesAdditionalMessage(t *testing.T) {
	sender := &stubSender{}
	s, store := newTestServer(t, nil, sender)
	id := startSession(t, s)
	require.NoError(t, store.SetPaths(context.Background(), id,
		[]string{"A", "desc A"}))

	rec := doJSON(t, s, http.MethodPost, "/api/email_results",
		map[string]any{"email": "user@example.com", "message": "please forward to my mentor"},
		sessionCookie(id))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].HTMLBody, "Additional Message")
	assert.Contains(t, sender.sent[0].HTMLBody, "please forward to my mentor")
}

func TestUpdateSessionMergesResponses(t *testing.T) {
	s, store := newTestServer(t, nil, nil)
	id := startSession(t, s)
	saveAll(t, s, id, map[int]string{1: "original"})

	rec := doJSON(t, s, http.MethodPost, "/api/update_session",
		map[string]any{"responses": map[int]string{1: "revised", 2: "added"}},
		sessionCookie(id))
	require.Equal(t, http.StatusOK, rec.Code)

	sess, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "revised", sess.Responses[1])
	assert.Equal(t, "added", sess.Responses[2])
}

func TestUpdateSessionRejectsEmptyAndInvalid(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)
	id := startSession(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/update_session",
		map[string]any{}, sessionCookie(id))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/update_session",
		map[string]any{"responses": map[int]string{9: "x"}}, sessionCookie(id))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmailResultsWithoutResults(t *testing.T) {
	s, _ := newTestServer(t, nil, &stubSender{})
	id := startSession(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/email_results",
		map[string]any{"email": "user@example.com"}, sessionCookie(id))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmailResultsNotConfigured(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)
	id := startSession(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/email_results",
		map[string]any{"email": "user@example.com"}, sessionCookie(id))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)

	rec := doJSON(t, s, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])
}

func TestRootBanner(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)

	rec := doJSON(t, s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["message"], "Ikiguide")
}
