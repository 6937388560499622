package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/codetrio/codetrio-web/internal/middleware"
	"github.com/codetrio/codetrio-web/internal/model"
	"github.com/codetrio/codetrio-web/internal/rank"
	"github.com/codetrio/codetrio-web/internal/response"
	"github.com/codetrio/codetrio-web/internal/service"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// APIHandler serves the JSON API under /api/v1.
type APIHandler struct {
	classes *service.ClassService
	checks  map[string]HealthCheck
	log     zerolog.Logger
}

// NewAPIHandler creates a new APIHandler. checks are run by Health.
func NewAPIHandler(classes *service.ClassService, checks map[string]HealthCheck, log zerolog.Logger) *APIHandler {
	return &APIHandler{
		classes: classes,
		checks:  checks,
		log:     log.With().Str("component", "api_handler").Logger(),
	}
}

type sessionView struct {
	Authenticated bool        `json:"authenticated"`
	User          *model.User `json:"user,omitempty"`
	Role          model.Role  `json:"role,omitempty"`
	RoleLabel     string      `json:"role_label,omitempty"`
	ExpiresAt     *time.Time  `json:"expires_at,omitempty"`
}

// Session godoc
// GET /api/v1/session
// Returns the caller's identity and role. 503 while the session is unresolved.
func (h *APIHandler) Session(c *gin.Context) {
	state := middleware.GetSessionState(c)
	if state.Loading {
		c.Header("Retry-After", "1")
		response.Fail(c, http.StatusServiceUnavailable, response.ErrSessionLoading)
		return
	}
	if !state.Authenticated() {
		response.Success(c, http.StatusOK, sessionView{})
		return
	}

	user := state.User()
	expires := state.Session.ExpiresAt
	response.Success(c, http.StatusOK, sessionView{
		Authenticated: true,
		User:          &user,
		Role:          state.Role(),
		RoleLabel:     state.Role().Label(),
		ExpiresAt:     &expires,
	})
}

// Classes godoc
// GET /api/v1/classes
// Lists classes with their student counts.
func (h *APIHandler) Classes(c *gin.Context) {
	state := middleware.GetSessionState(c)
	classes, err := h.classes.List(c.Request.Context(), state.AccessToken())
	if err != nil {
		h.log.Error().Err(err).Str("user_id", state.User().ID).Msg("load classes")
		response.Fail(c, http.StatusBadGateway, response.ErrClassesUnavailable)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"classes": classes})
}

// Ranks godoc
// GET /api/v1/ranks
// Returns the rank tier table.
func (h *APIHandler) Ranks(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"tiers": rank.Tiers()})
}

// Health godoc
// GET /api/v1/health
// Pings every configured dependency.
func (h *APIHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	results := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("health check failed")
			results[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	response.Success(c, status, gin.H{"status": overall, "dependencies": results})
}
