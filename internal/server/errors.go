package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"notes-go/internal/notes"
)

// Error codes carried in {"error": {"code": ..., "message": ...}} bodies.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeCorruptRecord   = "CORRUPT_RECORD"
	CodeInternalError   = "INTERNAL_ERROR"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeRepoError maps a repository error to a status and error code.
func (s *Server) writeRepoError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, notes.ErrNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, notes.ErrInvalidRecord), errors.Is(err, notes.ErrInvalidScope):
		writeError(w, http.StatusUnprocessableEntity, CodeValidationError, err.Error())
	case errors.Is(err, notes.ErrCorruptRecord):
		s.logger.Error("corrupt record", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, CodeCorruptRecord, err.Error())
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
	}
}
