package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/marquee-hq/marquee/pkg/apperr"
)

// ErrorBody is the uniform error envelope. Auth denials add status_code on
// top of this shape (see internal/auth).
type ErrorBody struct {
	Success     bool   `json:"success"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ErrorHandler recovers panics into a 500 envelope so no stack trace ever
// reaches a client.
func ErrorHandler(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().Interface("panic", rec).
						Str("method", r.Method).Str("path", r.URL.Path).
						Msg("panic recovered")
					writeErrorBody(w, http.StatusInternalServerError, "internal_error", "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SendError maps an application error onto the envelope. Store failures that
// are neither a missing row nor a natural-key collision come out as 422.
func SendError(w http.ResponseWriter, err error) {
	status := http.StatusUnprocessableEntity
	code := apperr.CodeUnavailable
	description := "the request could not be processed"

	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		description = appErr.Message
		switch appErr.Code {
		case apperr.CodeNotFound:
			status = http.StatusNotFound
		case apperr.CodeConflict:
			status = http.StatusConflict
		case apperr.CodeBadRequest:
			status = http.StatusBadRequest
		}
	}

	writeErrorBody(w, status, code, description)
}

// SendBadRequest reports a missing or invalid top-level field.
func SendBadRequest(w http.ResponseWriter, description string) {
	writeErrorBody(w, http.StatusBadRequest, apperr.CodeBadRequest, description)
}

// SendNotFound reports an unknown id.
func SendNotFound(w http.ResponseWriter, description string) {
	writeErrorBody(w, http.StatusNotFound, apperr.CodeNotFound, description)
}

func writeErrorBody(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorBody{
		Success:     false,
		Code:        code,
		Description: description,
	})
}
