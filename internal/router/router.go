package router

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/codetrio/codetrio-web/internal/config"
	"github.com/codetrio/codetrio-web/internal/handler"
	"github.com/codetrio/codetrio-web/internal/middleware"
	"github.com/codetrio/codetrio-web/internal/response"
	"github.com/codetrio/codetrio-web/internal/view"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Dashboard *handler.DashboardHandler
	API       *handler.APIHandler
	WS        *handler.WSHandler
}

// Deps are the request-scoped collaborators shared by every route.
type Deps struct {
	Cookies     middleware.SessionIDReader
	Sessions    middleware.SessionResolver
	AuthLimiter *middleware.RateLimiter
	Templates   *template.Template
	Log         zerolog.Logger
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, deps Deps, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.SetHTMLTemplate(deps.Templates)

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(deps.Log))

	// Spreadsheets are already zip-compressed.
	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		Quality:   middleware.DefaultBrotliConfig.Quality,
		MinLength: middleware.DefaultBrotliConfig.MinLength,
		Skipper: func(c *gin.Context) bool {
			return strings.HasSuffix(c.Request.URL.Path, ".xlsx")
		},
	}))

	// Embedded assets with a one-day cache.
	static := router.Group("/static")
	static.Use(middleware.CacheControl(86400))
	{
		static.StaticFS("/", view.Static())
	}

	// Every other route sees the resolved session.
	app := router.Group("/")
	app.Use(middleware.LoadSession(deps.Cookies, deps.Sessions), middleware.NoStore())

	// ─── 1. Auth Pages (Public, Rate Limited) ──────────────────────────
	authLimit := deps.AuthLimiter.Middleware(handlers.Auth.RateLimited)
	auth := app.Group("/auth")
	{
		auth.GET("", middleware.RedirectAuthenticated(), handlers.Auth.Page)
		auth.POST("/signin", authLimit, handlers.Auth.SignIn)
		auth.POST("/signup", authLimit, handlers.Auth.SignUp)
		auth.POST("/signout", handlers.Auth.SignOut)
	}

	// ─── 2. Dashboard (Session Required) ───────────────────────────────
	pages := app.Group("/")
	pages.Use(middleware.RequireSession(false, handlers.Dashboard.Loading))
	{
		pages.GET("", handlers.Dashboard.Index)
		pages.GET("/partials/classes", handlers.Dashboard.Classes)
	}

	// ─── 3. Admin (Admin Role Required) ────────────────────────────────
	admin := app.Group("/admin")
	admin.Use(middleware.RequireSession(true, handlers.Dashboard.Loading))
	{
		admin.GET("/classes/export.xlsx", handlers.Dashboard.ExportClasses)
	}

	// ─── 4. JSON API ───────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour

	api := app.Group("/api/v1")
	api.Use(cors.New(corsConfig))
	{
		api.GET("/health", handlers.API.Health)
		api.GET("/ranks", handlers.API.Ranks)
		api.GET("/session", handlers.API.Session)
		api.GET("/classes", middleware.RequireAPISession(false), handlers.API.Classes)
	}

	// ─── 5. WebSocket (Session Required) ───────────────────────────────
	app.GET("/ws/session", middleware.RequireAPISession(false), handlers.WS.SessionStream)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		handlers.Dashboard.NotFound(c)
	})

	return router
}
