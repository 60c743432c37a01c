// Package router sets up all HTTP routes and middleware chains for the
// ApplyWise API. Routes are grouped into public auth endpoints and
// session-protected resources.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/nadiaharb/apply-wise/internal/handlers"
	"github.com/nadiaharb/apply-wise/internal/middleware"
	"github.com/nadiaharb/apply-wise/internal/token"
)

// Config carries the router's dependencies.
type Config struct {
	Issuer       *token.Issuer
	Users        middleware.PlanDirectory
	Auth         *handlers.Auth
	Jobs         *handlers.Jobs
	AI           *handlers.AI
	CoverLetters *handlers.CoverLetters
	Analytics    *handlers.Analytics
	ClientOrigin string

	// AuthLimiter rate-limits the public auth endpoints. May be nil.
	AuthLimiter *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(cfg Config) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.ClientOrigin},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Public auth endpoints, rate-limited against credential stuffing
		// and TOTP brute forcing.
		r.Group(func(r chi.Router) {
			if cfg.AuthLimiter != nil {
				r.Use(cfg.AuthLimiter.Middleware)
			}
			r.Post("/auth/register", cfg.Auth.Register)
			r.Post("/auth/login", cfg.Auth.Login)
			r.Post("/auth/2fa/verify", cfg.Auth.VerifyStepUp)
		})

		// Everything below requires a full session token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(cfg.Issuer))

			// Account
			r.Get("/auth/me", cfg.Auth.Me)
			r.Patch("/auth/profile", cfg.Auth.UpdateProfile)
			r.Post("/auth/2fa/setup", cfg.Auth.Setup2FA)
			r.Post("/auth/2fa/enable", cfg.Auth.Enable2FA)
			r.Post("/auth/2fa/disable", cfg.Auth.Disable2FA)

			// Jobs and interviews
			r.Route("/jobs", func(r chi.Router) {
				r.Get("/stats", cfg.Jobs.Stats)
				r.Get("/", cfg.Jobs.List)
				r.Post("/", cfg.Jobs.Create)
				r.Get("/{id}", cfg.Jobs.Get)
				r.Patch("/{id}", cfg.Jobs.Update)
				r.Delete("/{id}", cfg.Jobs.Delete)
				r.Post("/{id}/interviews", cfg.Jobs.AddInterview)
				r.Patch("/{id}/interviews/{interviewId}", cfg.Jobs.UpdateInterview)
				r.Delete("/{id}/interviews/{interviewId}", cfg.Jobs.DeleteInterview)
			})

			// AI tools — Pro plan only.
			r.Route("/ai", func(r chi.Router) {
				r.Use(middleware.RequirePro(cfg.Users))
				r.Post("/match", cfg.AI.Match)
				r.Post("/cover-letter", cfg.AI.CoverLetter)
				r.Post("/skill-gaps", cfg.AI.SkillGaps)
			})

			// Cover letters
			r.Route("/cover-letters", func(r chi.Router) {
				r.Get("/", cfg.CoverLetters.List)
				r.Delete("/{id}", cfg.CoverLetters.Delete)
			})

			// Analytics
			r.Get("/analytics/monthly", cfg.Analytics.Monthly)
		})
	})

	return r
}

// DefaultAuthLimiter returns the rate limiter used for the public auth
// endpoints: 20 requests per minute per client IP.
func DefaultAuthLimiter() *middleware.RateLimiter {
	return middleware.NewRateLimiter(20, time.Minute)
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok","message":"ApplyWise is running"}`))
}
