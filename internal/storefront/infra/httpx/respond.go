package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/jcmexdev/storefront/internal/storefront/core/apperr"
)

const jsonBodyLimit = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalid:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status and body and returns the status. Server
// errors are logged and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) int {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Internal("internal error", err)
	}
	status := statusFor(e.Kind)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"kind", e.Kind.String(),
			"error", err,
		)
		msg := e.Message
		if e.Kind == apperr.KindInternal {
			msg = "internal error"
		}
		writeMessage(w, status, msg)
		return status
	}
	writeJSON(w, status, ErrorResponse{Error: e.Message, Fields: e.Fields})
	return status
}

// decodeJSON reads a JSON body of at most jsonBodyLimit bytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, jsonBodyLimit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperr.Invalid("request body too large")
		case errors.Is(err, io.EOF):
			return apperr.Invalid("request body is empty")
		default:
			return apperr.Invalidf("invalid JSON: %v", err)
		}
	}
	return nil
}
