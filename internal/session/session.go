// Package session owns the browser session: who the visitor is, which role
// they hold, and whether that is known yet. The Provider is the only writer;
// request handlers read immutable State snapshots.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/codetrio/codetrio-web/internal/model"
)

// ErrNotFound is returned by a Store for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// expirySkew refreshes access tokens slightly before the auth service would reject them.
const expirySkew = 30 * time.Second

// Session is a signed-in visitor.
type Session struct {
	ID           string     `json:"id"`
	User         model.User `json:"user"`
	Role         model.Role `json:"role"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresAt    time.Time  `json:"expires_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Expired reports whether the access token needs a refresh at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now.Add(expirySkew))
}

// State is what the rest of the application sees of the session.
// Loading means resolution has not settled (store or auth service unreachable);
// Session is meaningful only when Loading is false.
type State struct {
	Session *Session
	Loading bool
}

// Authenticated reports whether a resolved session exists.
func (s State) Authenticated() bool {
	return !s.Loading && s.Session != nil
}

// HasRole reports whether the current session holds role. False without a session.
func (s State) HasRole(role model.Role) bool {
	if !s.Authenticated() {
		return false
	}
	return s.Session.Role == role
}

// Role returns the session's role, or "" without a session.
func (s State) Role() model.Role {
	if s.Session == nil {
		return ""
	}
	return s.Session.Role
}

// AccessToken returns the session's access token, or "".
func (s State) AccessToken() string {
	if s.Session == nil {
		return ""
	}
	return s.Session.AccessToken
}

// User returns the signed-in identity, or the zero User.
func (s State) User() model.User {
	if s.Session == nil {
		return model.User{}
	}
	return s.Session.User
}

// Store persists sessions by id.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// EventType names a session lifecycle change.
type EventType string

const (
	// EventReplaced is sent on the old session's channel when a sign-in replaced it.
	EventReplaced EventType = "session.replaced"
	// EventEnded is sent when a session was signed out or revoked.
	EventEnded EventType = "session.ended"
)

// Event is pushed to browsers holding the session so open pages can reload.
type Event struct {
	Type EventType `json:"type"`
	At   time.Time `json:"at"`
}

// Broker fans session events out to subscribers.
type Broker interface {
	Publish(ctx context.Context, sessionID string, ev Event) error
	// Subscribe returns a channel of events for sessionID; the returned
	// function releases the subscription and closes the channel.
	Subscribe(ctx context.Context, sessionID string) (<-chan Event, func(), error)
}
