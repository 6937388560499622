package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiterAllowAndRefill(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("k") || !rl.Allow("k") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("k") {
		t.Fatal("third request should be limited")
	}
	if !rl.Allow("other") {
		t.Fatal("keys must not share a bucket")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("k") {
		t.Fatal("bucket should refill after the interval")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute)
	defer rl.Stop()
	for i := 0; i < 100; i++ {
		if !rl.Allow("k") {
			t.Fatal("zero rate should disable limiting")
		}
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	r := gin.New()
	r.POST("/json", rl.Middleware(nil), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.POST("/form", rl.Middleware(func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, "/auth")
	}), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	do := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
		return w
	}

	if w := do("/json"); w.Code != http.StatusNoContent {
		t.Fatalf("first = %d", w.Code)
	}
	if w := do("/json"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second = %d", w.Code)
	}
	// Routes are limited independently.
	if w := do("/form"); w.Code != http.StatusNoContent {
		t.Fatalf("form first = %d", w.Code)
	}
	if w := do("/form"); w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/auth" {
		t.Fatalf("form second = %d %q", w.Code, w.Header().Get("Location"))
	}
}
