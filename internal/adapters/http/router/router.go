// Package router monta as rotas HTTP da API.
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/aryan55254/Heritage/internal/adapters/http/handlers"
	"github.com/aryan55254/Heritage/internal/adapters/http/middleware"
	"github.com/aryan55254/Heritage/internal/core/ports"
)

type Deps struct {
	Chat           handlers.Chatter
	Accounts       handlers.Accounts
	Sessions       ports.SessionManager
	Store          handlers.Pinger
	Metrics        http.Handler
	AllowedOrigins []string
	SecureCookie   bool
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

func New(deps Deps) http.Handler {
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(timeout))
	r.Use(middleware.NewIdentityMiddleware())

	r.Get("/healthz", handlers.HealthHandler(deps.Store))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	accounts := handlers.NewAccountHandler(deps.Accounts, deps.SecureCookie, deps.Logger)
	chat := handlers.NewChatHandler(deps.Chat, deps.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", accounts.Register)
		r.Post("/login", accounts.Login)
		r.Post("/logout", accounts.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.NewSessionMiddleware(deps.Sessions, deps.Logger))
			r.Get("/user", accounts.Profile)
			r.Post("/user", accounts.UpdateProfile)
			r.Post("/chat", chat.Chat)
		})
	})

	return r
}
