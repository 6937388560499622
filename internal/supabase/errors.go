package supabase

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// Error is a request the remote service rejected.
type Error struct {
	Status  int
	Code    string // structured error code when the service sends one
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase: %d: %s", e.Status, e.Message)
}

// errorBody covers the GoTrue (old and new) and PostgREST error shapes.
type errorBody struct {
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
	Msg              string          `json:"msg"`
	Message          string          `json:"message"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

func decodeError(status int, raw []byte) *Error {
	e := &Error{Status: status}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		e.Message = strings.TrimSpace(string(raw))
		if e.Message == "" {
			e.Message = http.StatusText(status)
		}
		return e
	}

	e.Code = body.ErrorCode
	if e.Code == "" {
		// PostgREST sends a string code; GoTrue v2 sends the HTTP status as a number.
		var s string
		if json.Unmarshal(body.Code, &s) == nil {
			e.Code = s
		}
	}

	for _, m := range []string{body.Msg, body.Message, body.ErrorDescription, body.Error} {
		if m != "" {
			e.Message = m
			break
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// Structured codes, with the legacy message text matched when a service omits them.
const (
	codeInvalidCredentials = "invalid_credentials"
	codeUserAlreadyExists  = "user_already_exists"
	codeEmailExists        = "email_exists"

	msgInvalidCredentials    = "Invalid login credentials"
	msgUserAlreadyRegistered = "User already registered"
)

// IsInvalidCredentials reports whether err is a rejected email/password pair.
func IsInvalidCredentials(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	if e.Code == codeInvalidCredentials {
		return true
	}
	return strings.Contains(e.Message, msgInvalidCredentials)
}

// IsUserAlreadyRegistered reports whether a sign-up hit an existing account.
func IsUserAlreadyRegistered(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	if e.Code == codeUserAlreadyExists || e.Code == codeEmailExists {
		return true
	}
	return strings.Contains(e.Message, msgUserAlreadyRegistered)
}

// IsRejected reports whether the remote service definitively refused the
// request. Transport failures, rate limiting, timeouts and 5xx answers are
// transient and report false.
func IsRejected(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return e.Status >= 400 && e.Status < 500
}

// Message returns the human-readable text of a remote error, or err.Error().
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
