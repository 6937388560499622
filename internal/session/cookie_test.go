package session

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"
)

func TestIsAuthArtifact(t *testing.T) {
	tests := map[string]bool{
		"supabase.auth.token":         true,
		"sb-abcd-auth-token":          true,
		"sb-abcd-auth-token.0":        true,
		"codetrio_sid":                false,
		"codetrio_flash":              false,
		"theme":                       false,
		"supabase.settings":           false,
		"legacy-sb-refresh-token-key": true,
	}
	for name, want := range tests {
		if got := IsAuthArtifact(name); got != want {
			t.Errorf("IsAuthArtifact(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestCleanupAuthCookies(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/auth/signin", nil)
	for _, name := range []string{"supabase.auth.token", "sb-proj-auth-token", "theme"} {
		r.AddCookie(&http.Cookie{Name: name, Value: "x"})
	}
	w := httptest.NewRecorder()

	removed := CleanupAuthCookies(w, r)
	sort.Strings(removed)
	if len(removed) != 2 || removed[0] != "sb-proj-auth-token" || removed[1] != "supabase.auth.token" {
		t.Fatalf("removed = %v", removed)
	}

	expired := map[string]bool{}
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			expired[ck.Name] = true
		}
	}
	if !expired["sb-proj-auth-token"] || !expired["supabase.auth.token"] || expired["theme"] {
		t.Errorf("expired cookies = %v", expired)
	}
}

func TestCookiesRoundTrip(t *testing.T) {
	hashKey, blockKey := Keys("test-secret")
	c := NewCookies(hashKey, blockKey, false, time.Hour)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := c.SetSessionID(w, r, "sid-123"); err != nil {
		t.Fatalf("SetSessionID: %v", err)
	}

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range w.Result().Cookies() {
		next.AddCookie(ck)
	}
	if got := c.SessionID(next); got != "sid-123" {
		t.Errorf("SessionID = %q", got)
	}

	otherHash, otherBlock := Keys("another-secret")
	other := NewCookies(otherHash, otherBlock, false, time.Hour)
	forged := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range w.Result().Cookies() {
		forged.AddCookie(ck)
	}
	if got := other.SessionID(forged); got != "" {
		t.Errorf("cookie readable with another secret: %q", got)
	}
}

func TestKeysAreStablePerSecret(t *testing.T) {
	h1, b1 := Keys("s")
	h2, b2 := Keys("s")
	if string(h1) != string(h2) || string(b1) != string(b2) {
		t.Error("keys should be derived deterministically")
	}
	if string(h1) == string(b1) {
		t.Error("hash and block keys must differ")
	}
	r1, _ := Keys("")
	r2, _ := Keys("")
	if string(r1) == string(r2) {
		t.Error("empty secret should yield random keys")
	}
}
