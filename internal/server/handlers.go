package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ikiguide/ikiguide/internal/email"
	"github.com/ikiguide/ikiguide/internal/ikigai"
	"github.com/ikiguide/ikiguide/internal/logger"
	"github.com/ikiguide/ikiguide/internal/session"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":     fmt.Sprintf("Welcome to the %s API", s.cfg.AppName),
		"environment": s.cfg.AppEnv,
	})
}

// handleStartSession reuses the cookie session when it is still valid and
// creates a fresh one otherwise. The cookie is (re)issued either way.
func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if id := cookieSessionID(r); id != "" {
		if ok, err := s.store.Exists(ctx, id); err == nil && ok {
			s.setSessionCookie(w, id)
			writeJSON(w, http.StatusOK, map[string]string{"session_id": id})
			return
		}
	}

	sess, err := s.store.Create(ctx)
	if err != nil {
		writeError(w, fmt.Errorf("error creating session: %w", err))
		return
	}
	logger.Info().Str("session_id", sess.ID).Msg("session started")

	s.setSessionCookie(w, sess.ID)
	writeJSON(w, http.StatusOK, map[string]string{"session_id": sess.ID})
}

func (s *Server) handleSessionInfo(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r, "")
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":    sess.ID,
		"created_at":    sess.CreatedAt.Format(time.RFC3339),
		"last_activity": sess.LastActivity.Format(time.RFC3339),
		"responses":     sess.Responses,
		"has_paths":     len(sess.Paths) > 0,
	})
}

// saveResponsesRequest accepts both submission shapes: a single answer with
// question_id/response, or a responses map keyed by question id.
type saveResponsesRequest struct {
	SessionID  string         `json:"session_id"`
	QuestionID int            `json:"question_id"`
	Response   string         `json:"response"`
	Responses  map[int]string `json:"responses"`
}

func (s *Server) handleSaveResponses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req saveResponsesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	responses := req.Responses
	if responses == nil {
		if req.QuestionID == 0 {
			writeError(w, apiError(http.StatusBadRequest, "question_id is required"))
			return
		}
		responses = map[int]string{req.QuestionID: req.Response}
	}

	saved := make([]int, 0, len(responses))
	for qid, text := range responses {
		if qid < 1 || qid > session.QuestionCount {
			writeError(w, apiError(http.StatusBadRequest, fmt.Sprintf("invalid question id: %d", qid)))
			return
		}
		if strings.TrimSpace(text) == "" {
			writeError(w, apiError(http.StatusBadRequest, fmt.Sprintf("empty response for question %d", qid)))
			return
		}
		saved = append(saved, qid)
	}

	sess, err := s.sessionFromRequest(r, req.SessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.store.SaveResponses(ctx, sess.ID, responses); err != nil {
		writeError(w, fmt.Errorf("error saving responses: %w", err))
		return
	}

	s.setSessionCookie(w, sess.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sess.ID,
		"status":     "success",
		"saved":      saved,
	})
}

func (s *Server) handleGetResponses(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r, "")
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sess.ID,
		"responses":  sess.Responses,
	})
}

// handleResults validates the four answers, generates the ikigai paths (or
// returns the cached set) and responds with the flat path list.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := s.sessionFromRequest(r, r.URL.Query().Get("session_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if !sess.Complete() {
		writeError(w, apiError(http.StatusBadRequest, "all four responses are required before results can be generated"))
		return
	}
	if placeholderOnly(sess.Responses) {
		writeError(w, apiError(http.StatusBadRequest, "responses appear to be placeholder text, please answer the questions"))
		return
	}

	paths := sess.Paths
	if len(paths) == 0 {
		if s.generator == nil {
			writeError(w, apiError(http.StatusServiceUnavailable, "path generation is not configured"))
			return
		}

		answers, err := ikigai.AnswersFromResponses(sess.Responses)
		if err != nil {
			writeError(w, apiError(http.StatusBadRequest, err.Error()))
			return
		}

		paths, err = s.generator.Paths(ctx, answers)
		if err != nil {
			// The client renders this element instead of failing the request.
			logger.Error().Err(err).Str("session_id", sess.ID).Msg("path generation failed")
			paths = []string{fmt.Sprintf("ERROR: %v", err)}
		} else if err := s.store.SetPaths(ctx, sess.ID, paths); err != nil {
			logger.Error().Err(err).Str("session_id", sess.ID).Msg("failed to cache generated paths")
		}
	}

	answers, _ := ikigai.AnswersFromResponses(sess.Responses)
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":     sess.ID,
		"paths":          paths,
		"user_responses": answers.Map(),
	})
}

type updateSessionRequest struct {
	Responses map[int]string `json:"responses"`
}

// handleUpdateSession merges client-supplied data into the cookie session.
// Answers are the only updatable field.
func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.Responses) == 0 {
		writeError(w, apiError(http.StatusBadRequest, "nothing to update"))
		return
	}
	for qid := range req.Responses {
		if qid < 1 || qid > session.QuestionCount {
			writeError(w, apiError(http.StatusBadRequest, fmt.Sprintf("invalid question id: %d", qid)))
			return
		}
	}

	sess, err := s.sessionFromRequest(r, "")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.SaveResponses(ctx, sess.ID, req.Responses); err != nil {
		writeError(w, fmt.Errorf("error updating session: %w", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "session updated",
	})
}

type resetSessionRequest struct {
	SessionID string `json:"session_id"`
}

// handleResetSession deletes the session server-side, best effort, and
// clears the cookie.
func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req resetSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	id := req.SessionID
	if id == "" {
		id = cookieSessionID(r)
	}
	if id != "" {
		if err := s.store.Delete(ctx, id); err != nil && err != session.ErrNotFound {
			logger.Error().Err(err).Str("session_id", id).Msg("failed to delete session")
		}
	}

	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "session reset",
	})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := cookieSessionID(r)
	if id == "" {
		writeError(w, apiError(http.StatusNotFound, "no active session"))
		return
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if err == session.ErrNotFound {
			writeError(w, apiError(http.StatusNotFound, "session not found"))
		} else {
			writeError(w, fmt.Errorf("error deleting session: %w", err))
		}
		return
	}

	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "session ended",
	})
}

type emailResultsRequest struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

// handleEmailResults renders the session's results to HTML and sends them to
// the given address.
func (s *Server) handleEmailResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req emailResultsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if !email.Validate(req.Email) {
		writeError(w, apiError(http.StatusBadRequest, "invalid email address"))
		return
	}
	if s.sender == nil {
		writeError(w, apiError(http.StatusServiceUnavailable, "email sending is not configured"))
		return
	}

	sess, err := s.sessionFromRequest(r, "")
	if err != nil {
		writeError(w, err)
		return
	}
	if len(sess.Paths) == 0 {
		writeError(w, apiError(http.StatusBadRequest, "no results available for this session"))
		return
	}

	body, err := email.RenderResults(ikigai.ParseEntries(sess.Paths), strings.TrimSpace(req.Message))
	if err != nil {
		writeError(w, fmt.Errorf("error rendering results email: %w", err))
		return
	}

	msg := email.Message{
		To:       strings.TrimSpace(req.Email),
		Subject:  "Your Ikigai Career Paths",
		HTMLBody: body,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		writeError(w, apiError(http.StatusBadGateway, "failed to send email"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("results sent to %s", msg.To),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "healthy",
		"app":         s.cfg.AppName,
		"environment": s.cfg.AppEnv,
	})
}

// sessionFromRequest resolves the session from an explicit id when given,
// falling back to the cookie. Unknown or expired sessions are a 404.
func (s *Server) sessionFromRequest(r *http.Request, explicitID string) (*session.Session, error) {
	id := explicitID
	if id == "" {
		id = cookieSessionID(r)
	}
	if id == "" {
		return nil, apiError(http.StatusNotFound, "no active session")
	}

	sess, err := s.store.Get(r.Context(), id)
	if err != nil {
		if err == session.ErrNotFound {
			return nil, apiError(http.StatusNotFound, "session not found")
		}
		return nil, fmt.Errorf("error loading session: %w", err)
	}
	return sess, nil
}

// placeholderOnly reports whether every answer is the literal placeholder
// "testing", which the results endpoint rejects.
func placeholderOnly(responses map[int]string) bool {
	if len(responses) == 0 {
		return false
	}
	for _, text := range responses {
		if !strings.EqualFold(strings.TrimSpace(text), "testing") {
			return false
		}
	}
	return true
}
