package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codetrio/codetrio-web/internal/session"
)

const (
	// ContextKeySessionState is the Gin context key for the resolved session.State.
	ContextKeySessionState = "session_state"
	// ContextKeySessionID is the Gin context key for the id carried by the cookie.
	ContextKeySessionID = "session_id"
)

// SessionIDReader extracts the session id from a request.
type SessionIDReader interface {
	SessionID(r *http.Request) string
}

// SessionResolver turns a session id into a session.State.
type SessionResolver interface {
	Resolve(ctx context.Context, id string) session.State
}

// LoadSession resolves the session of every request once and stores it in
// the Gin context. Handlers and guards read it with GetSessionState.
func LoadSession(cookies SessionIDReader, resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := cookies.SessionID(c.Request)
		state := resolver.Resolve(c.Request.Context(), id)

		c.Set(ContextKeySessionID, id)
		c.Set(ContextKeySessionState, state)
		c.Next()
	}
}

// GetSessionState retrieves the session state set by LoadSession. Without
// LoadSession the state reports loading, so guards never act on it.
func GetSessionState(c *gin.Context) session.State {
	val, exists := c.Get(ContextKeySessionState)
	if !exists {
		return session.State{Loading: true}
	}
	state, ok := val.(session.State)
	if !ok {
		return session.State{Loading: true}
	}
	return state
}

// GetSessionID retrieves the raw cookie session id set by LoadSession.
func GetSessionID(c *gin.Context) string {
	return c.GetString(ContextKeySessionID)
}
