// Package flash carries toast notifications across a redirect.
package flash

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/gorilla/sessions"
)

// Variant is the visual weight of a toast.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Toast is a user-facing notification.
type Toast struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
}

// Destructive reports whether the toast reports a failure.
func (t Toast) Destructive() bool { return t.Variant == VariantDestructive }

const cookieName = "codetrio_flash"

// Jar stores pending toasts in a short-lived signed cookie.
type Jar struct {
	store *sessions.CookieStore
}

// NewJar creates a Jar.
func NewJar(hashKey, blockKey []byte, secure bool) *Jar {
	store := sessions.NewCookieStore(hashKey, blockKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Jar{store: store}
}

// Add queues t for the next page the visitor loads.
func (j *Jar) Add(w http.ResponseWriter, r *http.Request, t Toast) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	s, _ := j.store.Get(r, cookieName)
	s.AddFlash(string(raw))
	return s.Save(r, w)
}

// Pop returns and clears the queued toasts.
func (j *Jar) Pop(w http.ResponseWriter, r *http.Request) []Toast {
	s, err := j.store.Get(r, cookieName)
	if err != nil {
		return nil
	}
	flashes := s.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	_ = s.Save(r, w)

	toasts := make([]Toast, 0, len(flashes))
	for _, f := range flashes {
		raw, ok := f.(string)
		if !ok {
			continue
		}
		var t Toast
		if json.Unmarshal([]byte(raw), &t) == nil {
			toasts = append(toasts, t)
		}
	}
	return toasts
}
