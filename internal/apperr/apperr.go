// Package apperr defines the error taxonomy shared by all services and the
// mapping from error kind to HTTP status. Handlers should translate service
// errors through Write so that clients always receive a JSON body with a
// human-readable message and internal detail never leaks on a 500.
package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
)

var (
	// ErrValidation marks missing or malformed input. Maps to 400.
	ErrValidation = errors.New("validation error")
	// ErrInvalidCredentials marks a failed login or password check. It is
	// deliberately the same for "mobile not found" and "wrong password" so
	// responses cannot be used to enumerate accounts. Maps to 400.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized marks a missing, invalid, expired or role-mismatched
	// session. Maps to 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound marks an absent referenced entity. Maps to 404.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a unique-constraint violation such as a duplicate
	// mobile number. Maps to 400, matching the observed API behavior.
	ErrConflict = errors.New("conflict")
)

// appError pairs a taxonomy kind with the message shown to the client.
type appError struct {
	kind error
	msg  string
}

func (e *appError) Error() string { return e.msg }
func (e *appError) Unwrap() error { return e.kind }

// E builds a client-visible error of the given kind. The message is what the
// API returns, so it should be phrased for end users.
func E(kind error, msg string) error {
	return &appError{kind: kind, msg: msg}
}

// Status maps an error to its HTTP status code. Unknown errors are 500.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Write sends the JSON error body for err. 500s get a generic message; the
// real cause stays server-side with the caller's logger.
func Write(w http.ResponseWriter, err error) {
	status := Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Internal server error"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

// WriteJSON sends a JSON payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
