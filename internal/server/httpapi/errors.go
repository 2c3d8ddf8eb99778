package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kevinbuckley/tripwit/internal/common"
	"github.com/kevinbuckley/tripwit/internal/syncx"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps service errors onto the wire taxonomy clients retry
// against. Unknown errors surface as unavailable, which is retryable.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {

	status := http.StatusInternalServerError
	code := syncx.CodeUnavailable

	switch {
	case errors.Is(err, common.ErrorValidation):
		status, code = http.StatusBadRequest, syncx.CodeInvalid
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		status, code = http.StatusUnauthorized, syncx.CodeUnauthorized
	case errors.Is(err, common.ErrorNotFound):
		status, code = http.StatusNotFound, syncx.CodeNotFound
	case errors.Is(err, common.ErrTokenExpired):
		status, code = http.StatusGone, syncx.CodeTokenExpired
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Code: string(code), Message: err.Error()})
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}
