package supabase

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/codetrio/codetrio-web/internal/model"
)

// SignOutScope selects which sessions a sign-out revokes.
type SignOutScope string

const (
	ScopeLocal  SignOutScope = "local"
	ScopeGlobal SignOutScope = "global"
)

// User is the auth user record.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// Model converts the auth user into the application identity.
func (u User) Model() model.User {
	name, _ := u.UserMetadata["full_name"].(string)
	return model.User{ID: u.ID, Email: u.Email, FullName: name}
}

// Session is a token pair issued by the auth service.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         User   `json:"user"`
}

// Expiry returns when the access token stops being valid.
func (s *Session) Expiry(now time.Time) time.Time {
	if s.ExpiresAt > 0 {
		return time.Unix(s.ExpiresAt, 0)
	}
	return now.Add(time.Duration(s.ExpiresIn) * time.Second)
}

// SignUpParams is the input of SignUp.
type SignUpParams struct {
	Email      string
	Password   string
	Data       map[string]any
	RedirectTo string
}

// ErrNoUser is returned when a successful response carries no user.
var ErrNoUser = errors.New("supabase: response has no user")

// SignInWithPassword exchanges an email/password pair for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/auth/v1/token", url.Values{"grant_type": {"password"}}, "",
		map[string]string{"email": email, "password": password}, &s)
	if err != nil {
		return nil, err
	}
	if s.User.ID == "" {
		return nil, ErrNoUser
	}
	return &s, nil
}

// RefreshSession exchanges a refresh token for a new session.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/auth/v1/token", url.Values{"grant_type": {"refresh_token"}}, "",
		map[string]string{"refresh_token": refreshToken}, &s)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SignUp registers a new account. Depending on project settings the account
// may need email confirmation before it can sign in; no session is returned.
func (c *Client) SignUp(ctx context.Context, p SignUpParams) (*User, error) {
	var query url.Values
	if p.RedirectTo != "" {
		query = url.Values{"redirect_to": {p.RedirectTo}}
	}
	body := map[string]any{"email": p.Email, "password": p.Password}
	if len(p.Data) > 0 {
		body["data"] = p.Data
	}

	// Autoconfirm projects answer with a session wrapping the user, others with the bare user.
	var out struct {
		User
		Wrapped *User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", query, "", body, &out); err != nil {
		return nil, err
	}
	if out.Wrapped != nil && out.Wrapped.ID != "" {
		return out.Wrapped, nil
	}
	if out.ID == "" {
		return nil, ErrNoUser
	}
	return &out.User, nil
}

// SignOut revokes the session behind accessToken (scope local) or every
// session of the user (scope global). Tokens the service no longer knows
// count as signed out.
func (c *Client) SignOut(ctx context.Context, accessToken string, scope SignOutScope) error {
	if accessToken == "" {
		return nil
	}
	err := c.do(ctx, http.MethodPost, "/auth/v1/logout", url.Values{"scope": {string(scope)}}, accessToken, nil, nil)
	var e *Error
	if errors.As(err, &e) {
		switch e.Status {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return nil
		}
	}
	return err
}
