package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"promptrefiner/internal/domain"
)

type AppError struct {
	Error   error
	Message string
	Code    int
}

type AppHandler func(http.ResponseWriter, *http.Request) *AppError

func (fn AppHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if e := fn(w, r); e != nil {
		slog.Error(fmt.Sprintf(`Error occured: %s`, e.Error.Error()))
		http.Error(w, e.Message, e.Code)
	}
}

// appError maps the error taxonomy onto transport status codes. Validation
// and config problems are the caller's fault; upstream, parse and
// persistence failures are transient and retryable whole-operation.
func appError(err error) *AppError {
	var validationErr domain.ValidationError
	var configErr domain.ConfigError
	var notFoundErr domain.NotFoundError
	var parseErr domain.ParseError
	var upstreamErr domain.UpstreamError
	var persistenceErr domain.PersistenceError

	switch {
	case errors.As(err, &validationErr):
		return &AppError{Error: err, Message: validationErr.Msg, Code: 400}
	case errors.As(err, &configErr):
		return &AppError{Error: err, Message: configErr.Msg, Code: 400}
	case errors.As(err, &notFoundErr):
		return &AppError{Error: err, Message: notFoundErr.Error(), Code: 404}
	case errors.As(err, &parseErr):
		return &AppError{Error: err, Message: "Inference backend returned an unusable reply.", Code: 502}
	case errors.As(err, &upstreamErr):
		return &AppError{Error: err, Message: "Inference backend temporarily unavailable.", Code: 502}
	case errors.As(err, &persistenceErr):
		return &AppError{Error: err, Message: "Storing the result failed. Re-fetch before trusting state.", Code: 502}
	default:
		return &AppError{Error: err, Message: "Internal server error.", Code: 500}
	}
}

func (a *App) authenticated(next AppHandler) AppHandler {
	return func(w http.ResponseWriter, r *http.Request) *AppError {
		if a.Verifier == nil {
			return next(w, r)
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return &AppError{Error: errors.New("missing bearer token"), Message: "Unauthorized.", Code: 401}
		}

		if _, err := a.Verifier.Verify(r.Context(), token); err != nil {
			return &AppError{Error: err, Message: "Unauthorized.", Code: 401}
		}

		return next(w, r)
	}
}

func (a *App) limited(next AppHandler) AppHandler {
	return func(w http.ResponseWriter, r *http.Request) *AppError {
		if !a.limiter.Allow() {
			return &AppError{Error: errors.New("rate limit exceeded"), Message: "Too many requests.", Code: 429}
		}
		return next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error(fmt.Sprintf(`Error occured: %s`, err.Error()))
	}
}
