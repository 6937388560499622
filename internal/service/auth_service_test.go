package service

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/codetrio/codetrio-web/internal/flash"
	"github.com/codetrio/codetrio-web/internal/model"
	"github.com/codetrio/codetrio-web/internal/response"
	"github.com/codetrio/codetrio-web/internal/session"
	"github.com/codetrio/codetrio-web/internal/supabase"
)

// recorder collects the calls made by the service in order.
type recorder struct {
	calls []string
}

func (r *recorder) add(call string) { r.calls = append(r.calls, call) }

type fakeClient struct {
	rec        *recorder
	signInErr  error
	signUpErr  error
	signOutErr error
	signUp     supabase.SignUpParams
}

func (f *fakeClient) SignInWithPassword(_ context.Context, email, _ string) (*supabase.Session, error) {
	f.rec.add("signin")
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &supabase.Session{AccessToken: "tok", User: supabase.User{ID: "u1", Email: email}}, nil
}

func (f *fakeClient) SignUp(_ context.Context, p supabase.SignUpParams) (*supabase.User, error) {
	f.rec.add("signup")
	f.signUp = p
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &supabase.User{ID: "u2", Email: p.Email, UserMetadata: p.Data}, nil
}

func (f *fakeClient) SignOut(_ context.Context, _ string, scope supabase.SignOutScope) error {
	f.rec.add("signout:" + string(scope))
	return f.signOutErr
}

type fakeSessions struct {
	rec          *recorder
	establishErr error
	previous     string
}

func (f *fakeSessions) Establish(_ context.Context, previousID string, remote *supabase.Session) (*session.Session, error) {
	f.rec.add("establish")
	f.previous = previousID
	if f.establishErr != nil {
		return nil, f.establishErr
	}
	return &session.Session{ID: "new", User: remote.User.Model(), Role: model.RoleStudent}, nil
}

func (f *fakeSessions) Destroy(_ context.Context, id string) error {
	f.rec.add("destroy:" + id)
	return nil
}

func newAuth() (*AuthService, *fakeClient, *fakeSessions, *recorder) {
	rec := &recorder{}
	client := &fakeClient{rec: rec}
	sessions := &fakeSessions{rec: rec}
	return NewAuthService(client, sessions, "https://codetrio.test", zerolog.Nop()), client, sessions, rec
}

func failureCode(t *testing.T, err error) response.ErrCode {
	t.Helper()
	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("error %v is not a *Failure", err)
	}
	return f.Code
}

func TestSignInValidationMakesNoRemoteCall(t *testing.T) {
	tests := []struct {
		name  string
		email string
		pass  string
	}{
		{"empty password", "a@b.com", ""},
		{"empty email", "", "secret"},
		{"both empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, rec := newAuth()
			_, err := svc.SignIn(context.Background(), SignInInput{
				SignInRequest:     model.SignInRequest{Email: tt.email, Password: tt.pass},
				PreviousSessionID: "old",
			})
			if code := failureCode(t, err); code != response.ErrMissingCredentials {
				t.Errorf("code = %s", code)
			}
			if len(rec.calls) != 0 {
				t.Errorf("calls = %v, want none", rec.calls)
			}
		})
	}
}

func TestSignInOrdering(t *testing.T) {
	svc, _, sessions, rec := newAuth()
	sess, err := svc.SignIn(context.Background(), SignInInput{
		SignInRequest:       model.SignInRequest{Email: "a@b.com", Password: "secret"},
		PreviousSessionID:   "old",
		PreviousAccessToken: "old-token",
	})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if sess.ID != "new" {
		t.Errorf("session id = %q", sess.ID)
	}
	want := []string{"signout:global", "destroy:old", "signin", "establish"}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
	if sessions.previous != "old" {
		t.Errorf("Establish previous = %q", sessions.previous)
	}
}

func TestSignInSwallowsBestEffortSignOut(t *testing.T) {
	svc, client, _, rec := newAuth()
	client.signOutErr = errors.New("network down")
	_, err := svc.SignIn(context.Background(), SignInInput{
		SignInRequest:       model.SignInRequest{Email: "a@b.com", Password: "secret"},
		PreviousAccessToken: "old-token",
	})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if rec.calls[len(rec.calls)-1] != "establish" {
		t.Errorf("calls = %v", rec.calls)
	}
}

func TestSignInWithoutPreviousTokenSkipsRemoteSignOut(t *testing.T) {
	svc, _, _, rec := newAuth()
	if _, err := svc.SignIn(context.Background(), SignInInput{
		SignInRequest: model.SignInRequest{Email: "a@b.com", Password: "secret"},
	}); err != nil {
		t.Fatal(err)
	}
	want := []string{"destroy:", "signin", "establish"}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
}

func TestSignInClassifiesRemoteErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   response.ErrCode
		title  string
		detail string
	}{
		{
			name:   "invalid credentials",
			err:    &supabase.Error{Status: 400, Code: "invalid_credentials", Message: "Invalid login credentials"},
			code:   response.ErrInvalidCredentials,
			title:  "Đăng nhập thất bại",
			detail: "Email hoặc mật khẩu không chính xác",
		},
		{
			name:   "other remote error",
			err:    &supabase.Error{Status: 400, Message: "Email not confirmed"},
			code:   response.ErrSignInFailed,
			title:  "Lỗi đăng nhập",
			detail: "Email not confirmed",
		},
		{
			name:   "transport error",
			err:    errors.New("dial tcp: connection refused"),
			code:   response.ErrSignInFailed,
			title:  "Lỗi đăng nhập",
			detail: "Đã có lỗi xảy ra, vui lòng thử lại",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, client, _, rec := newAuth()
			client.signInErr = tt.err
			_, err := svc.SignIn(context.Background(), SignInInput{
				SignInRequest: model.SignInRequest{Email: "a@b.com", Password: "wrong"},
			})
			f := AsFailure(err)
			if f.Code != tt.code {
				t.Fatalf("code = %s, want %s", f.Code, tt.code)
			}
			toast := f.Toast()
			if toast.Title != tt.title || toast.Description != tt.detail || toast.Variant != flash.VariantDestructive {
				t.Errorf("toast = %+v", toast)
			}
			for _, c := range rec.calls {
				if c == "establish" {
					t.Error("session established after failed sign-in")
				}
			}
		})
	}
}

func TestSignInEstablishFailure(t *testing.T) {
	svc, _, sessions, _ := newAuth()
	sessions.establishErr = errors.New("redis down")
	_, err := svc.SignIn(context.Background(), SignInInput{
		SignInRequest: model.SignInRequest{Email: "a@b.com", Password: "secret"},
	})
	f := AsFailure(err)
	if f.Code != response.ErrSignInFailed || f.Status() != http.StatusInternalServerError {
		t.Errorf("failure = %+v", f)
	}
	if toast := f.Toast(); toast.Title != "Lỗi đăng nhập" || toast.Description != "Đã có lỗi xảy ra, vui lòng thử lại" {
		t.Errorf("toast = %+v", toast)
	}
}

func TestSignUpValidation(t *testing.T) {
	tests := []struct {
		name string
		req  model.SignUpRequest
		code response.ErrCode
	}{
		{"missing name", model.SignUpRequest{Email: "a@b.com", Password: "123456"}, response.ErrMissingFields},
		{"missing email", model.SignUpRequest{FullName: "An", Password: "123456"}, response.ErrMissingFields},
		{"missing fields win over short password", model.SignUpRequest{Email: "a@b.com", Password: "123"}, response.ErrMissingFields},
		{"five character password", model.SignUpRequest{FullName: "An", Email: "a@b.com", Password: "12345"}, response.ErrPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, rec := newAuth()
			_, err := svc.SignUp(context.Background(), tt.req)
			if code := failureCode(t, err); code != tt.code {
				t.Errorf("code = %s, want %s", code, tt.code)
			}
			if len(rec.calls) != 0 {
				t.Errorf("calls = %v, want none", rec.calls)
			}
		})
	}
}

func TestSignUpForwardsProfileAndRedirect(t *testing.T) {
	svc, client, _, rec := newAuth()
	user, err := svc.SignUp(context.Background(), model.SignUpRequest{
		FullName: "Nguyễn An", Email: "an@b.com", Password: "123456",
	})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if client.signUp.RedirectTo != "https://codetrio.test/" {
		t.Errorf("RedirectTo = %q", client.signUp.RedirectTo)
	}
	if client.signUp.Data["full_name"] != "Nguyễn An" {
		t.Errorf("Data = %v", client.signUp.Data)
	}
	if user.FullName != "Nguyễn An" || user.Email != "an@b.com" {
		t.Errorf("user = %+v", user)
	}
	if !reflect.DeepEqual(rec.calls, []string{"signup"}) {
		t.Errorf("calls = %v, sign-up must not sign in", rec.calls)
	}
}

func TestSignUpClassifiesRemoteErrors(t *testing.T) {
	svc, client, _, _ := newAuth()
	client.signUpErr = &supabase.Error{Status: 422, Code: "user_already_exists", Message: "User already registered"}
	_, err := svc.SignUp(context.Background(), model.SignUpRequest{FullName: "An", Email: "a@b.com", Password: "123456"})
	f := AsFailure(err)
	if f.Code != response.ErrAlreadyRegistered || f.Status() != http.StatusConflict {
		t.Errorf("failure = %+v", f)
	}
	if f.Toast().Title != "Tài khoản đã tồn tại" {
		t.Errorf("title = %q", f.Toast().Title)
	}

	client.signUpErr = &supabase.Error{Status: 429, Message: "email rate limit exceeded"}
	_, err = svc.SignUp(context.Background(), model.SignUpRequest{FullName: "An", Email: "a@b.com", Password: "123456"})
	f = AsFailure(err)
	if f.Code != response.ErrSignUpFailed || f.Toast().Description != "email rate limit exceeded" {
		t.Errorf("failure = %+v", f)
	}

	client.signUpErr = errors.New("dial tcp: connection refused")
	_, err = svc.SignUp(context.Background(), model.SignUpRequest{FullName: "An", Email: "a@b.com", Password: "123456"})
	f = AsFailure(err)
	if f.Code != response.ErrSignUpFailed || f.Status() != http.StatusInternalServerError {
		t.Errorf("failure = %+v", f)
	}
	if toast := f.Toast(); toast.Title != "Lỗi đăng ký" || toast.Description != "Đã có lỗi xảy ra, vui lòng thử lại" {
		t.Errorf("toast = %+v", toast)
	}
}

func TestSignOut(t *testing.T) {
	svc, client, _, rec := newAuth()
	client.signOutErr = errors.New("remote down")
	if err := svc.SignOut(context.Background(), "sid", "tok"); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	want := []string{"signout:local", "destroy:sid"}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
}
