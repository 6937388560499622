package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/codetrio/codetrio-web/internal/flash"
	"github.com/codetrio/codetrio-web/internal/middleware"
	"github.com/codetrio/codetrio-web/internal/model"
	"github.com/codetrio/codetrio-web/internal/response"
	"github.com/codetrio/codetrio-web/internal/service"
	"github.com/codetrio/codetrio-web/internal/session"
	"github.com/codetrio/codetrio-web/internal/validator"
	"github.com/codetrio/codetrio-web/internal/view"
)

var (
	toastSignedIn = flash.Toast{
		Title:       "Đăng nhập thành công",
		Description: "Chào mừng bạn đến với Codetrio!",
		Variant:     flash.VariantDefault,
	}
	toastSignedUp = flash.Toast{
		Title:       "Đăng ký thành công",
		Description: "Tài khoản đã được tạo, bạn có thể đăng nhập ngay!",
		Variant:     flash.VariantDefault,
	}
)

// DemoAccount is advertised on the sign-in page when set.
type DemoAccount struct {
	Email    string
	Password string
}

// AuthHandler serves the sign-in / sign-up page and its form posts.
type AuthHandler struct {
	auth    *service.AuthService
	cookies *session.Cookies
	flash   *flash.Jar
	demo    DemoAccount
	log     zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, cookies *session.Cookies, jar *flash.Jar, demo DemoAccount, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		cookies: cookies,
		flash:   jar,
		demo:    demo,
		log:     log.With().Str("component", "auth_handler").Logger(),
	}
}

// Page godoc
// GET /auth
// Renders the sign-in tab, or the sign-up tab with ?tab=signup.
func (h *AuthHandler) Page(c *gin.Context) {
	tab := view.TabSignIn
	if c.Query("tab") == view.TabSignUp {
		tab = view.TabSignUp
	}
	h.render(c, http.StatusOK, view.AuthPage{
		Page: view.Page{Toasts: h.flash.Pop(c.Writer, c.Request)},
		Tab:  tab,
	})
}

// SignIn godoc
// POST /auth/signin
// Validates the form, clears the previous visitor state and signs in.
// Success redirects home with a fresh session cookie.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req model.SignInRequest
	if fields := validator.Bind(c, &req); fields != nil {
		h.log.Debug().Interface("fields", fields).Msg("sign-in form incomplete")
	}

	page := view.AuthPage{Tab: view.TabSignIn, Email: req.Email}

	if f := service.CheckSignIn(req); f != nil {
		h.fail(c, page, f)
		return
	}

	if removed := session.CleanupAuthCookies(c.Writer, c.Request); len(removed) > 0 {
		h.log.Debug().Strs("cookies", removed).Msg("cleared auth artifacts")
	}

	state := middleware.GetSessionState(c)
	in := service.SignInInput{
		SignInRequest:     req,
		PreviousSessionID: middleware.GetSessionID(c),
	}
	if state.Authenticated() {
		in.PreviousAccessToken = state.AccessToken()
	}

	sess, err := h.auth.SignIn(c.Request.Context(), in)
	if err != nil {
		if in.PreviousSessionID != "" {
			if cerr := h.cookies.ClearSessionID(c.Writer, c.Request); cerr != nil {
				h.log.Warn().Err(cerr).Msg("clear session cookie")
			}
		}
		h.fail(c, page, service.AsFailure(err))
		return
	}

	if err := h.cookies.SetSessionID(c.Writer, c.Request, sess.ID); err != nil {
		h.log.Error().Err(err).Msg("write session cookie")
		h.fail(c, page, &service.Failure{Code: response.ErrSignInFailed, Err: err})
		return
	}
	h.addToast(c, toastSignedIn)
	c.Redirect(http.StatusSeeOther, middleware.HomePath)
}

// SignUp godoc
// POST /auth/signup
// Registers a new account. The visitor stays signed out; success sends them
// back to an empty sign-in form.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req model.SignUpRequest
	if fields := validator.Bind(c, &req); fields != nil {
		h.log.Debug().Interface("fields", fields).Msg("sign-up form incomplete")
	}

	if _, err := h.auth.SignUp(c.Request.Context(), req); err != nil {
		h.fail(c, view.AuthPage{Tab: view.TabSignUp, Email: req.Email, FullName: req.FullName}, service.AsFailure(err))
		return
	}

	h.addToast(c, toastSignedUp)
	c.Redirect(http.StatusSeeOther, middleware.AuthPath+"?tab="+view.TabSignIn)
}

// SignOut godoc
// POST /auth/signout
// Ends the session on this device and returns to the sign-in page.
func (h *AuthHandler) SignOut(c *gin.Context) {
	state := middleware.GetSessionState(c)
	var token string
	if state.Authenticated() {
		token = state.AccessToken()
	}

	if err := h.auth.SignOut(c.Request.Context(), middleware.GetSessionID(c), token); err != nil {
		h.log.Warn().Err(err).Msg("destroy session on sign-out")
	}
	if err := h.cookies.ClearSessionID(c.Writer, c.Request); err != nil {
		h.log.Warn().Err(err).Msg("clear session cookie")
	}
	session.CleanupAuthCookies(c.Writer, c.Request)
	c.Redirect(http.StatusSeeOther, middleware.AuthPath)
}

// RateLimited answers a throttled form post on the auth page.
func (h *AuthHandler) RateLimited(c *gin.Context) {
	tab := view.TabSignIn
	if c.FullPath() == "/auth/signup" {
		tab = view.TabSignUp
	}
	h.fail(c, view.AuthPage{Tab: tab}, &service.Failure{Code: response.ErrRateLimitExceeded})
}

func (h *AuthHandler) fail(c *gin.Context, page view.AuthPage, f *service.Failure) {
	if f.Err != nil {
		h.log.Warn().Err(f.Err).Str("code", string(f.Code)).Msg("auth request failed")
	}
	page.Toasts = []flash.Toast{f.Toast()}
	h.render(c, f.Status(), page)
}

func (h *AuthHandler) render(c *gin.Context, status int, page view.AuthPage) {
	page.Title = "Đăng nhập"
	page.DemoEmail = h.demo.Email
	page.DemoPass = h.demo.Password
	c.HTML(status, view.PageAuth, page)
}

func (h *AuthHandler) addToast(c *gin.Context, t flash.Toast) {
	if err := h.flash.Add(c.Writer, c.Request, t); err != nil {
		h.log.Warn().Err(err).Msg("queue toast")
	}
}
