package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/obrentanasic/drs-projekat/internal/domain"
	"github.com/obrentanasic/drs-projekat/internal/infrastructure/http/handlers"
	"github.com/obrentanasic/drs-projekat/internal/infrastructure/http/middleware"
)

type RouterConfig struct {
	AuthHandler   *handlers.AuthHandler
	HealthHandler *handlers.HealthHandler
	UsersHandler  *handlers.UsersHandler
	QuizHandler   *handlers.QuizHandler
	AdminHandler  *handlers.AdminHandler
	RequireJWT    func(http.Handler) http.Handler
	Log           zerolog.Logger
	Secure        func(http.Handler) http.Handler
	CORS          func(http.Handler) http.Handler
	IPRateLimit   func(http.Handler) http.Handler
	Metrics       bool // expose /metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(middleware.PrometheusMiddleware)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}
	if cfg.CORS != nil {
		r.Use(cfg.CORS)
	}
	r.Use(chimid.AllowContentType("application/json"))
	if cfg.IPRateLimit != nil {
		r.Use(cfg.IPRateLimit)
	}

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.Refresh)
		r.Group(func(r chi.Router) {
			r.Use(cfg.RequireJWT)
			r.Post("/logout", cfg.AuthHandler.Logout)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(cfg.RequireJWT)
		r.Get("/me", cfg.UsersHandler.Me)
		r.Put("/me", cfg.UsersHandler.UpdateMe)
		r.Put("/me/password", cfg.UsersHandler.ChangePassword)
	})

	r.Route("/quizzes", func(r chi.Router) {
		r.Use(cfg.RequireJWT)
		r.Get("/", cfg.QuizHandler.List)
		r.Get("/my-results", cfg.QuizHandler.MyResults)
		r.Get("/{id}", cfg.QuizHandler.Get)
		r.Get("/{id}/leaderboard", cfg.QuizHandler.Leaderboard)
		r.Get("/{id}/statistics", cfg.QuizHandler.Statistics)
		r.Delete("/{id}", cfg.QuizHandler.Delete)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleModerator))
			r.Post("/", cfg.QuizHandler.Create)
			r.Put("/{id}", cfg.QuizHandler.Update)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RolePlayer))
			r.Post("/{id}/submit", cfg.QuizHandler.Submit)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleAdministrator))
			r.Post("/{id}/review", cfg.QuizHandler.Review)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(cfg.RequireJWT)
		r.Use(middleware.RequireRole(domain.RoleAdministrator))
		r.Get("/users", cfg.AdminHandler.List)
		r.Get("/users/stats", cfg.AdminHandler.Stats)
		r.Patch("/users/{id}", cfg.AdminHandler.Update)
		r.Delete("/users/{id}", cfg.AdminHandler.Delete)
		r.Post("/users/{id}/block", cfg.AdminHandler.Block)
		r.Post("/users/{id}/unblock", cfg.AdminHandler.Unblock)
		r.Get("/login-attempts", cfg.AdminHandler.LoginHistory)
	})

	return r
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimid.GetReqID(r.Context())
			log.Info().
				Str("request_id", reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("request")
			next.ServeHTTP(w, r)
		})
	}
}
