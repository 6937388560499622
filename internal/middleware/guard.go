package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codetrio/codetrio-web/internal/model"
	"github.com/codetrio/codetrio-web/internal/response"
	"github.com/codetrio/codetrio-web/internal/session"
)

// Decision is the outcome of a route guard check.
type Decision int

const (
	// DecisionRender lets the protected page render.
	DecisionRender Decision = iota
	// DecisionLoading shows the loading indicator; no redirect happens.
	DecisionLoading
	// DecisionRedirectAuth sends the visitor to the sign-in page.
	DecisionRedirectAuth
	// DecisionRedirectHome sends an authenticated non-admin to the home page.
	DecisionRedirectHome
)

func (d Decision) String() string {
	switch d {
	case DecisionRender:
		return "render"
	case DecisionLoading:
		return "loading"
	case DecisionRedirectAuth:
		return "redirect_auth"
	case DecisionRedirectHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

const (
	// AuthPath is where unauthenticated visitors are sent.
	AuthPath = "/auth"
	// HomePath is where authenticated visitors without access are sent.
	HomePath = "/"
)

// Decide applies the route guard rules to state. Loading wins over every
// other rule.
func Decide(state session.State, requireAdmin bool) Decision {
	switch {
	case state.Loading:
		return DecisionLoading
	case !state.Authenticated():
		return DecisionRedirectAuth
	case requireAdmin && !state.HasRole(model.RoleAdmin):
		return DecisionRedirectHome
	default:
		return DecisionRender
	}
}

// RequireSession guards HTML routes. onLoading renders the loading page and
// must write a response.
func RequireSession(requireAdmin bool, onLoading gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch Decide(GetSessionState(c), requireAdmin) {
		case DecisionRender:
			c.Next()
		case DecisionLoading:
			c.Header("Retry-After", "1")
			onLoading(c)
			c.Abort()
		case DecisionRedirectAuth:
			c.Redirect(http.StatusFound, AuthPath)
			c.Abort()
		case DecisionRedirectHome:
			c.Redirect(http.StatusFound, HomePath)
			c.Abort()
		}
	}
}

// RequireAPISession guards JSON routes with the same rules, answering with
// status codes instead of redirects.
func RequireAPISession(requireAdmin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch Decide(GetSessionState(c), requireAdmin) {
		case DecisionRender:
			c.Next()
		case DecisionLoading:
			c.Header("Retry-After", "1")
			response.AbortFail(c, http.StatusServiceUnavailable, response.ErrSessionLoading)
		case DecisionRedirectAuth:
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		case DecisionRedirectHome:
			response.AbortFail(c, http.StatusForbidden, response.ErrAdminAccessOnly)
		}
	}
}

// RedirectAuthenticated sends visitors who already hold a session away from
// pages meant for anonymous visitors, such as the sign-in page.
func RedirectAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetSessionState(c).Authenticated() {
			c.Redirect(http.StatusFound, HomePath)
			c.Abort()
			return
		}
		c.Next()
	}
}
