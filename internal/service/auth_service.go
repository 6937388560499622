package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/codetrio/codetrio-web/internal/flash"
	"github.com/codetrio/codetrio-web/internal/model"
	"github.com/codetrio/codetrio-web/internal/response"
	"github.com/codetrio/codetrio-web/internal/session"
	"github.com/codetrio/codetrio-web/internal/supabase"
	"github.com/codetrio/codetrio-web/internal/validator"
)

// AuthClient is the part of the remote auth service used for sign-in,
// sign-up and sign-out.
type AuthClient interface {
	SignInWithPassword(ctx context.Context, email, password string) (*supabase.Session, error)
	SignUp(ctx context.Context, p supabase.SignUpParams) (*supabase.User, error)
	SignOut(ctx context.Context, accessToken string, scope supabase.SignOutScope) error
}

// SessionManager owns the local session records.
type SessionManager interface {
	Establish(ctx context.Context, previousID string, remote *supabase.Session) (*session.Session, error)
	Destroy(ctx context.Context, id string) error
}

// Failure is a user-facing auth failure. Detail overrides the default
// message for Code when set.
type Failure struct {
	Code   response.ErrCode
	Detail string
	Err    error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Code, f.Err)
	}
	return string(f.Code)
}

func (f *Failure) Unwrap() error { return f.Err }

// Toast renders the failure as a destructive notification.
func (f *Failure) Toast() flash.Toast {
	desc := f.Detail
	if desc == "" {
		desc = response.GetMessage(f.Code)
	}
	return flash.Toast{
		Title:       response.GetTitle(f.Code),
		Description: desc,
		Variant:     flash.VariantDestructive,
	}
}

// Status is the HTTP status a JSON caller should see for the failure.
func (f *Failure) Status() int {
	switch f.Code {
	case response.ErrMissingCredentials, response.ErrMissingFields, response.ErrPasswordTooShort:
		return http.StatusBadRequest
	case response.ErrInvalidCredentials:
		return http.StatusUnauthorized
	case response.ErrAlreadyRegistered:
		return http.StatusConflict
	case response.ErrRateLimitExceeded:
		return http.StatusTooManyRequests
	case response.ErrInternal:
		return http.StatusInternalServerError
	}
	var remote *supabase.Error
	if errors.As(f.Err, &remote) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// AsFailure returns err as a *Failure, wrapping unknown errors as internal.
func AsFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Code: response.ErrInternal, Err: err}
}

// SignInInput carries the visitor state the sign-in sequence replaces.
type SignInInput struct {
	model.SignInRequest
	// PreviousSessionID is the local session the browser currently holds.
	PreviousSessionID string
	// PreviousAccessToken is that session's token, if it was resolved.
	PreviousAccessToken string
}

// AuthService runs the sign-in, sign-up and sign-out sequences.
type AuthService struct {
	client   AuthClient
	sessions SessionManager
	siteURL  string
	log      zerolog.Logger
}

// NewAuthService creates a new AuthService. siteURL is the public base URL
// that confirmation emails link back to.
func NewAuthService(client AuthClient, sessions SessionManager, siteURL string, log zerolog.Logger) *AuthService {
	return &AuthService{
		client:   client,
		sessions: sessions,
		siteURL:  siteURL,
		log:      log.With().Str("component", "auth_service").Logger(),
	}
}

// CheckSignIn validates the sign-in form without touching the network.
func CheckSignIn(req model.SignInRequest) *Failure {
	if err := validator.Struct(&req); err != nil {
		if validator.Violations(err) == nil {
			return &Failure{Code: response.ErrSignInFailed, Err: err}
		}
		return &Failure{Code: response.ErrMissingCredentials}
	}
	return nil
}

// CheckSignUp validates the sign-up form without touching the network.
// Missing fields are reported before a short password.
func CheckSignUp(req model.SignUpRequest) *Failure {
	err := validator.Struct(&req)
	if err == nil {
		return nil
	}
	violations := validator.Violations(err)
	if violations == nil {
		return &Failure{Code: response.ErrSignUpFailed, Err: err}
	}
	for _, tag := range violations {
		if tag == "required" {
			return &Failure{Code: response.ErrMissingFields}
		}
	}
	if violations["Password"] == "min" {
		return &Failure{Code: response.ErrPasswordTooShort}
	}
	return &Failure{Code: response.ErrMissingFields}
}

// ResetVisitor ends whatever session the browser held before a sign-in.
// The remote global sign-out is best effort; its failure is only logged.
func (s *AuthService) ResetVisitor(ctx context.Context, previousID, previousToken string) {
	if previousToken != "" {
		if err := s.client.SignOut(ctx, previousToken, supabase.ScopeGlobal); err != nil {
			s.log.Debug().Err(err).Msg("best-effort global sign-out failed")
		}
	}
	if err := s.sessions.Destroy(ctx, previousID); err != nil {
		s.log.Debug().Err(err).Msg("best-effort local session cleanup failed")
	}
}

// SignIn validates the form, clears the previous visitor state, then
// authenticates and establishes a fresh local session. These steps run
// strictly in that order.
func (s *AuthService) SignIn(ctx context.Context, in SignInInput) (*session.Session, error) {
	if f := CheckSignIn(in.SignInRequest); f != nil {
		return nil, f
	}

	s.ResetVisitor(ctx, in.PreviousSessionID, in.PreviousAccessToken)

	remote, err := s.client.SignInWithPassword(ctx, in.Email, in.Password)
	if err != nil {
		return nil, classifySignIn(err)
	}

	// The previous id was destroyed above; Establish still gets it so open
	// pages on that id hear that it was replaced.
	sess, err := s.sessions.Establish(ctx, in.PreviousSessionID, remote)
	if err != nil {
		s.log.Error().Err(err).Str("email", in.Email).Msg("establish session")
		return nil, &Failure{Code: response.ErrSignInFailed, Err: err}
	}
	return sess, nil
}

func classifySignIn(err error) *Failure {
	var remote *supabase.Error
	switch {
	case supabase.IsInvalidCredentials(err):
		return &Failure{Code: response.ErrInvalidCredentials, Err: err}
	case errors.As(err, &remote):
		return &Failure{Code: response.ErrSignInFailed, Detail: supabase.Message(err), Err: err}
	default:
		return &Failure{Code: response.ErrSignInFailed, Err: err}
	}
}

// SignUp validates the form locally and registers the account remotely.
// It never signs the new user in.
func (s *AuthService) SignUp(ctx context.Context, req model.SignUpRequest) (*model.User, error) {
	if f := CheckSignUp(req); f != nil {
		return nil, f
	}

	user, err := s.client.SignUp(ctx, supabase.SignUpParams{
		Email:      req.Email,
		Password:   req.Password,
		Data:       map[string]any{"full_name": req.FullName},
		RedirectTo: s.siteURL + "/",
	})
	if err != nil {
		var remote *supabase.Error
		switch {
		case supabase.IsUserAlreadyRegistered(err):
			return nil, &Failure{Code: response.ErrAlreadyRegistered, Err: err}
		case errors.As(err, &remote):
			return nil, &Failure{Code: response.ErrSignUpFailed, Detail: supabase.Message(err), Err: err}
		default:
			return nil, &Failure{Code: response.ErrSignUpFailed, Err: err}
		}
	}

	m := user.Model()
	if m.FullName == "" {
		m.FullName = req.FullName
	}
	s.log.Info().Str("user_id", m.ID).Msg("account registered")
	return &m, nil
}

// SignOut ends the remote session for this device and destroys the local one.
func (s *AuthService) SignOut(ctx context.Context, sessionID, accessToken string) error {
	if err := s.client.SignOut(ctx, accessToken, supabase.ScopeLocal); err != nil {
		s.log.Warn().Err(err).Msg("remote sign-out failed")
	}
	return s.sessions.Destroy(ctx, sessionID)
}
