package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/codetrio/codetrio-web/internal/config"
	"github.com/codetrio/codetrio-web/internal/database"
	"github.com/codetrio/codetrio-web/internal/flash"
	"github.com/codetrio/codetrio-web/internal/handler"
	"github.com/codetrio/codetrio-web/internal/logger"
	"github.com/codetrio/codetrio-web/internal/middleware"
	"github.com/codetrio/codetrio-web/internal/repository"
	"github.com/codetrio/codetrio-web/internal/router"
	"github.com/codetrio/codetrio-web/internal/service"
	"github.com/codetrio/codetrio-web/internal/session"
	"github.com/codetrio/codetrio-web/internal/supabase"
	"github.com/codetrio/codetrio-web/internal/validator"
	"github.com/codetrio/codetrio-web/internal/view"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("data_backend", cfg.DataBackend).
		Msg("Starting Codetrio")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checks := map[string]handler.HealthCheck{}

	// ─── Remote Auth Service ───────────────────────────────────────────
	if cfg.SupabaseAnonKey == "" {
		log.Warn().Msg("SUPABASE_ANON_KEY is empty; remote calls will be rejected")
	}
	if cfg.SupabaseJWTSecret == "" {
		log.Warn().Msg("SUPABASE_JWT_SECRET is empty; access tokens are not verified locally")
	}
	remote := supabase.New(cfg.SupabaseURL, cfg.SupabaseAnonKey,
		supabase.WithTimeout(cfg.RemoteTimeout),
		supabase.WithJWTSecret(cfg.SupabaseJWTSecret),
	)

	// ─── Session Store ─────────────────────────────────────────────────
	var (
		store  session.Store
		broker session.Broker
	)
	if cfg.RedisURL != "" {
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		store = session.NewRedisStore(rdb)
		broker = session.NewRedisBroker(rdb, log)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		log.Warn().Msg("REDIS_URL is empty; sessions are kept in memory for this instance only")
		store = session.NewMemoryStore()
		broker = session.NewMemoryBroker()
	}

	// ─── Data Backend ──────────────────────────────────────────────────
	var (
		classSource service.ClassSource = remote
		roleSource  session.RoleSource  = remote
	)
	switch cfg.DataBackend {
	case config.DataBackendPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		classSource = repository.NewClassRepository(pool)
		roleSource = repository.NewRoleRepository(pool)
		checks["postgres"] = func(ctx context.Context) error { return pool.Ping(ctx) }
	case config.DataBackendREST:
	default:
		log.Fatal().Str("data_backend", cfg.DataBackend).Msg("Unknown DATA_BACKEND")
	}

	// ─── Initialize Services ──────────────────────────────────────────
	provider := session.NewProvider(store, broker, remote, roleSource, cfg.SessionTTL, log)
	authService := service.NewAuthService(remote, provider, cfg.SiteURL, log)
	classService := service.NewClassService(classSource, log)

	hashKey, blockKey := session.Keys(cfg.SessionSecret)
	if cfg.SessionSecret == "" {
		log.Warn().Msg("SESSION_SECRET is empty; cookies will not survive a restart")
	}
	cookies := session.NewCookies(hashKey, blockKey, cfg.CookieSecure, cfg.SessionTTL)
	jar := flash.NewJar(hashKey, blockKey, cfg.CookieSecure)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth: handler.NewAuthHandler(authService, cookies, jar, handler.DemoAccount{
			Email:    cfg.DemoEmail,
			Password: cfg.DemoPassword,
		}, log),
		Dashboard: handler.NewDashboardHandler(classService, jar, log),
		API:       handler.NewAPIHandler(classService, checks, log),
		WS:        handler.NewWSHandler(provider, log, cfg.AllowedOrigins),
	}

	tmpl, err := view.Templates()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse templates")
	}

	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, time.Minute)
	defer authLimiter.Stop()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, router.Deps{
		Cookies:     cookies,
		Sessions:    provider,
		AuthLimiter: authLimiter,
		Templates:   tmpl,
		Log:         logger.Component(log, "http"),
	}, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
