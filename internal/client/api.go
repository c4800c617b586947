package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
)

// ErrInvalidSession marks a session the backend no longer recognizes. The
// flow reacts by purging all local mirrors and restarting.
var ErrInvalidSession = errors.New("session is no longer valid")

// StatusError is a non-2xx backend reply, kept distinguishable from
// connectivity failures so the results view can report which one happened.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server error %d", e.Status)
}

// API is the backend surface the flow depends on. Tests substitute doubles.
type API interface {
	StartSession(ctx context.Context) (string, error)
	ValidateSession(ctx context.Context, sessionID string) error
	SaveResponse(ctx context.Context, sessionID string, question int, text string) error
	Results(ctx context.Context, sessionID string) ([]string, error)
	Reset(ctx context.Context, sessionID string) error
	EmailResults(ctx context.Context, address string) error
	SessionCookie() string
}

// HTTPClient talks to the backend with a cookie jar so the session cookie
// rides along on every call.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient builds a client for the given base URL.
func NewHTTPClient(baseURL string) (*HTTPClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("error creating cookie jar: %w", err)
	}
	return &HTTPClient{
		baseURL: baseURL,
		http: &http.Client{
			Jar:     jar,
			Timeout: 60 * time.Second,
		},
	}, nil
}

// SessionCookie returns the session_id cookie currently held in the jar.
func (c *HTTPClient) SessionCookie() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	for _, cookie := range c.http.Jar.Cookies(u) {
		if cookie.Name == "session_id" {
			return cookie.Value
		}
	}
	return ""
}

// StartSession asks the backend for a session, new or reused.
func (c *HTTPClient) StartSession(ctx context.Context) (string, error) {
	var out struct {
		SessionID string `json:"session_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/start_session", map[string]any{}, &out); err != nil {
		return "", err
	}
	if out.SessionID == "" {
		return "", fmt.Errorf("backend returned no session id")
	}
	return out.SessionID, nil
}

// ValidateSession checks the session with the backend. Any non-2xx reply
// means the session is invalid.
func (c *HTTPClient) ValidateSession(ctx context.Context, sessionID string) error {
	err := c.do(ctx, http.MethodGet, "/api/session_info?session_id="+url.QueryEscape(sessionID), nil, nil)
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return ErrInvalidSession
	}
	return err
}

// SaveResponse records one answer.
func (c *HTTPClient) SaveResponse(ctx context.Context, sessionID string, question int, text string) error {
	body := map[string]any{
		"session_id":  sessionID,
		"question_id": question,
		"response":    text,
	}
	return c.do(ctx, http.MethodPost, "/api/responses", body, nil)
}

// Results fetches the generated paths. The payload is either an object with
// a paths field or a bare array.
func (c *HTTPClient) Results(ctx context.Context, sessionID string) ([]string, error) {
	raw, err := c.doRaw(ctx, http.MethodGet, "/api/results?session_id="+url.QueryEscape(sessionID), nil)
	if err != nil {
		return nil, err
	}
	return decodePaths(raw)
}

// Reset invalidates the server-side session, best effort.
func (c *HTTPClient) Reset(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, "/api/reset_session", map[string]any{"session_id": sessionID}, nil)
}

// EmailResults asks the backend to mail the current session's results. The
// session rides on the cookie, not the body.
func (c *HTTPClient) EmailResults(ctx context.Context, address string) error {
	return c.do(ctx, http.MethodPost, "/api/email_results", map[string]any{"email": address}, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.doRaw(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out != nil {
		if err := sonic.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("error decoding response: %w", err)
		}
	}
	return nil
}

func (c *HTTPClient) doRaw(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := sonic.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("error encoding request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("error building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("no response from server: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	return raw, nil
}

// errorMessage pulls the message out of the backend's error envelope.
func errorMessage(raw []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return ""
	}
	return envelope.Message
}

// decodePaths accepts {"paths":[...]} and a bare ["..."] array.
func decodePaths(raw []byte) ([]string, error) {
	var object struct {
		Paths []string `json:"paths"`
	}
	if err := sonic.Unmarshal(raw, &object); err == nil && object.Paths != nil {
		return object.Paths, nil
	}

	var bare []string
	if err := sonic.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}
	return nil, fmt.Errorf("unrecognized results payload")
}
