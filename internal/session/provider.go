package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/codetrio/codetrio-web/internal/model"
	"github.com/codetrio/codetrio-web/internal/supabase"
)

// TokenIssuer is the part of the remote auth service the Provider needs.
type TokenIssuer interface {
	RefreshSession(ctx context.Context, refreshToken string) (*supabase.Session, error)
	ParseAccessToken(token string) (*supabase.Claims, error)
}

// RoleSource looks up the role of a user.
type RoleSource interface {
	UserRole(ctx context.Context, accessToken, userID string) (model.Role, error)
}

// Provider resolves, establishes and destroys sessions.
type Provider struct {
	store  Store
	broker Broker
	tokens TokenIssuer
	roles  RoleSource
	ttl    time.Duration
	log    zerolog.Logger
	now    func() time.Time
}

// NewProvider creates a Provider. ttl bounds how long a session record lives
// without activity; it should not exceed the refresh token lifetime.
func NewProvider(store Store, broker Broker, tokens TokenIssuer, roles RoleSource, ttl time.Duration, log zerolog.Logger) *Provider {
	return &Provider{
		store:  store,
		broker: broker,
		tokens: tokens,
		roles:  roles,
		ttl:    ttl,
		log:    log.With().Str("component", "session_provider").Logger(),
		now:    time.Now,
	}
}

// Resolve returns the state of session id. It never fails: an unreachable
// store or auth service yields a Loading state instead.
func (p *Provider) Resolve(ctx context.Context, id string) State {
	if id == "" {
		return State{}
	}

	s, err := p.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return State{}
	}
	if err != nil {
		p.log.Warn().Err(err).Msg("session store unavailable")
		return State{Loading: true}
	}

	if !s.Expired(p.now()) {
		return State{Session: s}
	}

	refreshed, err := p.refresh(ctx, s)
	if err != nil {
		if supabase.IsRejected(err) {
			p.log.Info().Str("user_id", s.User.ID).Msg("refresh token rejected, ending session")
			if derr := p.Destroy(ctx, id); derr != nil {
				p.log.Warn().Err(derr).Msg("destroy rejected session")
			}
			return State{}
		}
		p.log.Warn().Err(err).Msg("session refresh failed")
		return State{Loading: true}
	}
	return State{Session: refreshed}
}

func (p *Provider) refresh(ctx context.Context, s *Session) (*Session, error) {
	remote, err := p.tokens.RefreshSession(ctx, s.RefreshToken)
	if err != nil {
		return nil, err
	}

	next := *s
	next.AccessToken = remote.AccessToken
	if remote.RefreshToken != "" {
		next.RefreshToken = remote.RefreshToken
	}
	next.ExpiresAt = p.expiry(remote)

	if err := p.store.Save(ctx, &next, p.ttl); err != nil {
		return nil, fmt.Errorf("save refreshed session: %w", err)
	}
	return &next, nil
}

// Establish stores a new session for a successful sign-in and retires
// previousID. The new session gets a fresh id so nothing from the previous
// visitor state survives.
func (p *Provider) Establish(ctx context.Context, previousID string, remote *supabase.Session) (*Session, error) {
	claims, err := p.tokens.ParseAccessToken(remote.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("verify access token: %w", err)
	}

	user := remote.User.Model()
	if claims.Subject != "" && claims.Subject != user.ID {
		return nil, fmt.Errorf("verify access token: subject %q does not match user %q", claims.Subject, user.ID)
	}

	role, err := p.roles.UserRole(ctx, remote.AccessToken, user.ID)
	if err != nil {
		return nil, fmt.Errorf("lookup role: %w", err)
	}

	now := p.now()
	s := &Session{
		ID:           uuid.New().String(),
		User:         user,
		Role:         role,
		AccessToken:  remote.AccessToken,
		RefreshToken: remote.RefreshToken,
		ExpiresAt:    p.expiry(remote),
		CreatedAt:    now,
	}

	if err := p.store.Save(ctx, s, p.ttl); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	if previousID != "" && previousID != s.ID {
		if err := p.store.Delete(ctx, previousID); err != nil {
			p.log.Warn().Err(err).Msg("delete previous session")
		}
		p.publish(ctx, previousID, EventReplaced)
	}

	p.log.Info().
		Str("user_id", user.ID).
		Str("role", string(role)).
		Msg("session established")
	return s, nil
}

// Destroy removes session id and notifies its open pages.
func (p *Provider) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := p.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	p.publish(ctx, id, EventEnded)
	return nil
}

// Subscribe exposes the broker to the WebSocket handler.
func (p *Provider) Subscribe(ctx context.Context, id string) (<-chan Event, func(), error) {
	return p.broker.Subscribe(ctx, id)
}

func (p *Provider) publish(ctx context.Context, id string, t EventType) {
	if err := p.broker.Publish(ctx, id, Event{Type: t, At: p.now()}); err != nil {
		p.log.Warn().Err(err).Str("event", string(t)).Msg("publish session event")
	}
}

func (p *Provider) expiry(remote *supabase.Session) time.Time {
	if claims, err := p.tokens.ParseAccessToken(remote.AccessToken); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return remote.Expiry(p.now())
}
