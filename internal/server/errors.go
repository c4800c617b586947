package server

import (
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/ikiguide/ikiguide/internal/logger"
)

// APIError is an error with an HTTP status, rendered as the standard
// {"error":true,"message":...} envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

func apiError(status int, message string) *APIError {
	return &APIError{Status: status, Message: message}
}

type errorEnvelope struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// writeJSON encodes v with sonic and writes it with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := sonic.Marshal(v)
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
		http.Error(w, `{"error":true,"message":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// writeError renders err as the error envelope. Non-API errors become a 500
// with a generic message.
func writeError(w http.ResponseWriter, err error) {
	apiErr, ok := err.(*APIError)
	if !ok {
		logger.Error().Err(err).Msg("unhandled request error")
		apiErr = apiError(http.StatusInternalServerError, "internal server error")
	}
	writeJSON(w, apiErr.Status, errorEnvelope{Error: true, Message: apiErr.Message})
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(v); err != nil {
		return apiError(http.StatusBadRequest, "invalid request body")
	}
	return nil
}
