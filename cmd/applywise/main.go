// Package main is the entry point for the ApplyWise API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nadiaharb/apply-wise/internal/ai"
	"github.com/nadiaharb/apply-wise/internal/auth"
	"github.com/nadiaharb/apply-wise/internal/cache"
	"github.com/nadiaharb/apply-wise/internal/config"
	"github.com/nadiaharb/apply-wise/internal/database"
	"github.com/nadiaharb/apply-wise/internal/handlers"
	"github.com/nadiaharb/apply-wise/internal/router"
	"github.com/nadiaharb/apply-wise/internal/store"
	"github.com/nadiaharb/apply-wise/internal/token"
)

func main() {
	// Structured logger — text output; level stays at debug, the app is small.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load .env if present, then configuration from environment variables.
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded environment from .env")
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (Redis-compatible). Optional: without it the app
	// runs with no step-up replay guard and no aggregate caching.
	var (
		replayGuard *cache.ReplayGuard
		statsCache  *cache.StatsCache
	)
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable — replay guard and stats cache disabled", "error", err)
	} else {
		defer valkeyClient.Close()
		replayGuard = cache.NewReplayGuard(valkeyClient, cache.DefaultReplayTTL)
		statsCache = cache.NewStatsCache(valkeyClient, cache.DefaultStatsTTL)
	}

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	jobStore := store.NewJobStore(db)
	letterStore := store.NewCoverLetterStore(db)

	// Token issuer and the authentication service.
	issuer := token.NewIssuer([]byte(cfg.JWTSecret))
	var guard auth.ReplayGuard
	if replayGuard != nil {
		guard = replayGuard
	}
	authService := auth.NewService(userStore, issuer, guard)

	// AI provider for the Pro endpoints.
	provider := ai.NewOpenAI(ai.ProviderConfig{
		APIKey:  cfg.OpenAIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
	})
	if cfg.OpenAIKey == "" {
		slog.Warn("OPENAI_API_KEY not set — AI endpoints will fail")
	}

	// Create handler groups with their dependencies.
	authHandlers := handlers.NewAuth(authService, userStore)
	jobHandlers := handlers.NewJobs(jobStore, userStore, statsCache)
	aiHandlers := handlers.NewAI(provider, jobStore, letterStore)
	letterHandlers := handlers.NewCoverLetters(letterStore)
	analyticsHandlers := handlers.NewAnalytics(jobStore, statsCache)

	// Set up the Chi router with all middleware and routes.
	r := router.New(router.Config{
		Issuer:       issuer,
		Users:        userStore,
		Auth:         authHandlers,
		Jobs:         jobHandlers,
		AI:           aiHandlers,
		CoverLetters: letterHandlers,
		Analytics:    analyticsHandlers,
		ClientOrigin: cfg.ClientOrigin,
		AuthLimiter:  router.DefaultAuthLimiter(),
	})

	// Create the HTTP server with sensible timeouts.
	// WriteTimeout must accommodate the AI endpoints that wait on LLM
	// responses (typically 10-30s, up to 60s for long prompts).
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
