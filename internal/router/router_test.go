package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/codetrio/codetrio-web/internal/config"
	"github.com/codetrio/codetrio-web/internal/flash"
	"github.com/codetrio/codetrio-web/internal/handler"
	"github.com/codetrio/codetrio-web/internal/middleware"
	"github.com/codetrio/codetrio-web/internal/model"
	"github.com/codetrio/codetrio-web/internal/service"
	"github.com/codetrio/codetrio-web/internal/session"
	"github.com/codetrio/codetrio-web/internal/supabase"
	"github.com/codetrio/codetrio-web/internal/view"
)

type stubAuth struct{}

func (stubAuth) SignInWithPassword(context.Context, string, string) (*supabase.Session, error) {
	return nil, &supabase.Error{Status: 400, Code: "invalid_credentials", Message: "Invalid login credentials"}
}

func (stubAuth) SignUp(context.Context, supabase.SignUpParams) (*supabase.User, error) {
	return &supabase.User{ID: "u"}, nil
}

func (stubAuth) SignOut(context.Context, string, supabase.SignOutScope) error { return nil }

type stubSessions struct{}

func (stubSessions) Establish(context.Context, string, *supabase.Session) (*session.Session, error) {
	return &session.Session{ID: "n"}, nil
}

func (stubSessions) Destroy(context.Context, string) error { return nil }

type stubClasses struct{}

func (stubClasses) ListClassSummaries(context.Context, string) ([]model.ClassSummary, error) {
	return nil, nil
}

type stubResolver struct{ state session.State }

func (s stubResolver) Resolve(context.Context, string) session.State { return s.state }

type stubCookies struct{}

func (stubCookies) SessionID(*http.Request) string { return "sid" }

func newRouter(t *testing.T, state session.State, authRate int) *gin.Engine {
	t.Helper()
	tmpl, err := view.Templates()
	if err != nil {
		t.Fatal(err)
	}
	log := zerolog.Nop()
	hashKey, blockKey := session.Keys("router-test")
	jar := flash.NewJar(hashKey, blockKey, false)
	cookies := session.NewCookies(hashKey, blockKey, false, time.Hour)

	classes := service.NewClassService(stubClasses{}, log)
	handlers := &Handlers{
		Auth:      handler.NewAuthHandler(service.NewAuthService(stubAuth{}, stubSessions{}, "http://localhost", log), cookies, jar, handler.DemoAccount{}, log),
		Dashboard: handler.NewDashboardHandler(classes, jar, log),
		API:       handler.NewAPIHandler(classes, nil, log),
		WS:        handler.NewWSHandler(session.NewMemoryBroker(), log, nil),
	}

	limiter := middleware.NewRateLimiter(authRate, time.Minute)
	t.Cleanup(limiter.Stop)

	return SetupRouter(handlers, Deps{
		Cookies:     stubCookies{},
		Sessions:    stubResolver{state: state},
		AuthLimiter: limiter,
		Templates:   tmpl,
		Log:         log,
	}, &config.Config{GinMode: gin.TestMode})
}

func signedIn(role model.Role) session.State {
	return session.State{Session: &session.Session{ID: "sid", User: model.User{ID: "u1", Email: "x@y.z"}, Role: role}}
}

func do(r *gin.Engine, method, path string, body url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouteGuards(t *testing.T) {
	tests := []struct {
		name     string
		state    session.State
		path     string
		status   int
		location string
	}{
		{"anonymous home", session.State{}, "/", http.StatusFound, "/auth"},
		{"anonymous partial", session.State{}, "/partials/classes", http.StatusFound, "/auth"},
		{"loading home", session.State{Loading: true}, "/", http.StatusServiceUnavailable, ""},
		{"student home", signedIn(model.RoleStudent), "/", http.StatusOK, ""},
		{"student export", signedIn(model.RoleStudent), "/admin/classes/export.xlsx", http.StatusFound, "/"},
		{"admin export", signedIn(model.RoleAdmin), "/admin/classes/export.xlsx", http.StatusOK, ""},
		{"signed-in auth page", signedIn(model.RoleStudent), "/auth", http.StatusFound, "/"},
		{"anonymous auth page", session.State{}, "/auth", http.StatusOK, ""},
		{"anonymous api classes", session.State{}, "/api/v1/classes", http.StatusUnauthorized, ""},
		{"anonymous ranks", session.State{}, "/api/v1/ranks", http.StatusOK, ""},
		{"anonymous websocket", session.State{}, "/ws/session", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(newRouter(t, tt.state, 10), http.MethodGet, tt.path, nil)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if got := w.Header().Get("Location"); got != tt.location {
				t.Errorf("Location = %q, want %q", got, tt.location)
			}
		})
	}
}

func TestSessionPagesAreNotCached(t *testing.T) {
	w := do(newRouter(t, signedIn(model.RoleStudent), 10), http.MethodGet, "/", nil)
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q", w.Header().Get("Cache-Control"))
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
}

func TestStaticAssets(t *testing.T) {
	w := do(newRouter(t, session.State{}, 10), http.MethodGet, "/static/app.css", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Cache-Control"), "max-age=86400") {
		t.Errorf("Cache-Control = %q", w.Header().Get("Cache-Control"))
	}
}

func TestNotFound(t *testing.T) {
	r := newRouter(t, session.State{}, 10)
	if w := do(r, http.MethodGet, "/api/v1/nope", nil); w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "NOT_FOUND") {
		t.Errorf("api 404: %d %s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodGet, "/nope", nil); w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "Không tìm thấy trang") {
		t.Errorf("page 404: %d", w.Code)
	}
}

func TestAuthPostsAreRateLimited(t *testing.T) {
	r := newRouter(t, session.State{}, 1)
	form := url.Values{"email": {"a@b.com"}, "password": {"secret"}}

	if w := do(r, http.MethodPost, "/auth/signin", form); w.Code != http.StatusUnauthorized {
		t.Fatalf("first attempt = %d", w.Code)
	}
	w := do(r, http.MethodPost, "/auth/signin", form)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second attempt = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Quá nhiều yêu cầu") {
		t.Error("missing rate limit toast")
	}
}

func TestClassesPartialWhileLoading(t *testing.T) {
	r := newRouter(t, session.State{Loading: true}, 0)
	w := do(r, http.MethodGet, "/partials/classes", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("loading partial must carry Retry-After")
	}
	if loc := w.Header().Get("Location"); loc != "" {
		t.Errorf("loading partial redirected to %q", loc)
	}
}
