package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Dosada05/league-bot/handlers"
	"github.com/Dosada05/league-bot/middleware"
)

// Options wires the optional parts of the HTTP surface. A nil handler disables its
// routes.
type Options struct {
	Webhook       *handlers.WebhookHandler
	WebhookSecret string

	Live    *handlers.LiveHandler
	Tokens  *middleware.SpectatorTokens
	Archive *handlers.ArchiveHandler

	Metrics        http.Handler
	AllowedOrigins []string
}

func SetupRoutes(router chi.Router, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics)
	}

	if opts.Webhook != nil {
		router.With(middleware.RequirePathSecret(opts.WebhookSecret)).
			Post("/telegram/webhook/{secret}", opts.Webhook.ServeHTTP)
	}

	router.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(corsOptions(opts.AllowedOrigins)))

		if opts.Live != nil && opts.Tokens != nil {
			r.With(opts.Tokens.RequireSpectator).Get("/live/{token}", opts.Live.SnapshotHandler)
		}
		if opts.Archive != nil {
			r.Route("/archive", func(r chi.Router) {
				r.Get("/chats/{chatID}", opts.Archive.ListByChatHandler)
				r.Get("/{tournamentID}", opts.Archive.GetByIDHandler)
			})
		}
	})

	if opts.Live != nil && opts.Tokens != nil {
		router.With(opts.Tokens.RequireSpectator).Get("/ws/live/{token}", opts.Live.ServeWs)
	}
}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}
}
