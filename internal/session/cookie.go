package session

import (
	"crypto/sha256"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const (
	sidCookieName = "codetrio_sid"
	sidValueKey   = "sid"
)

// Keys derives the cookie signing and encryption keys from secret. An empty
// secret yields random keys, so cookies do not survive a restart.
func Keys(secret string) (hashKey, blockKey []byte) {
	if secret == "" {
		return securecookie.GenerateRandomKey(32), securecookie.GenerateRandomKey(32)
	}
	h := sha256.Sum256([]byte("codetrio/hash/" + secret))
	b := sha256.Sum256([]byte("codetrio/block/" + secret))
	return h[:], b[:]
}

// Cookies carries the session id in a signed, encrypted cookie.
type Cookies struct {
	store *sessions.CookieStore
}

// NewCookies creates the session id cookie codec.
func NewCookies(hashKey, blockKey []byte, secure bool, maxAge time.Duration) *Cookies {
	store := sessions.NewCookieStore(hashKey, blockKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Cookies{store: store}
}

// SessionID returns the session id carried by r, or "".
func (c *Cookies) SessionID(r *http.Request) string {
	s, err := c.store.Get(r, sidCookieName)
	if err != nil {
		return ""
	}
	id, _ := s.Values[sidValueKey].(string)
	return id
}

// SetSessionID writes id into the session cookie.
func (c *Cookies) SetSessionID(w http.ResponseWriter, r *http.Request, id string) error {
	s, _ := c.store.Get(r, sidCookieName)
	s.Values[sidValueKey] = id
	return s.Save(r, w)
}

// ClearSessionID expires the session cookie.
func (c *Cookies) ClearSessionID(w http.ResponseWriter, r *http.Request) error {
	s, _ := c.store.Get(r, sidCookieName)
	delete(s.Values, sidValueKey)
	s.Options.MaxAge = -1
	return s.Save(r, w)
}

// IsAuthArtifact reports whether a cookie name belongs to an auth client's
// token storage (supabase-js keys and sb-<project>-auth-token cookies).
func IsAuthArtifact(name string) bool {
	return strings.HasPrefix(name, "supabase.auth.") || strings.Contains(name, "sb-")
}

// CleanupAuthCookies expires every auth artifact cookie sent with r and
// returns their names.
func CleanupAuthCookies(w http.ResponseWriter, r *http.Request) []string {
	var removed []string
	for _, ck := range r.Cookies() {
		if !IsAuthArtifact(ck.Name) {
			continue
		}
		http.SetCookie(w, &http.Cookie{
			Name:    ck.Name,
			Value:   "",
			Path:    "/",
			MaxAge:  -1,
			Expires: time.Unix(0, 0),
		})
		removed = append(removed, ck.Name)
	}
	return removed
}
