package routes

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"

	"github.com/Dosada05/league-bot/brackets"
	"github.com/Dosada05/league-bot/handlers"
	"github.com/Dosada05/league-bot/middleware"
	"github.com/Dosada05/league-bot/services"
)

type nopUpdates struct{ calls int }

func (n *nopUpdates) HandleUpdate(context.Context, tgbotapi.Update) { n.calls++ }

type noSessions struct{}

func (noSessions) Snapshot(int64) (services.SessionSnapshot, error) {
	return services.SessionSnapshot{}, services.ErrSessionNotFound
}

func TestSetupRoutes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	updates := &nopUpdates{}
	reg := prometheus.NewRegistry()
	tokens := middleware.NewSpectatorTokens("k", time.Hour, "http://localhost")

	router := chi.NewRouter()
	SetupRoutes(router, Options{
		Webhook:        handlers.NewWebhookHandler(updates, logger),
		WebhookSecret:  "hook",
		Live:           handlers.NewLiveHandler(noSessions{}, brackets.NewHub(logger), nil, logger),
		Tokens:         tokens,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		AllowedOrigins: []string{"https://league.example.com"},
	})

	token, err := tokens.Issue(1)
	assert.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"health", http.MethodGet, "/healthz", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"webhook", http.MethodPost, "/telegram/webhook/hook", `{"update_id":1}`, http.StatusOK},
		{"webhook wrong secret", http.MethodPost, "/telegram/webhook/guess", `{"update_id":1}`, http.StatusForbidden},
		{"live without tournament", http.MethodGet, "/api/live/" + token, "", http.StatusNotFound},
		{"live bad token", http.MethodGet, "/api/live/bad", "", http.StatusUnauthorized},
		{"archive disabled", http.MethodGet, "/api/archive/chats/1", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
	assert.Equal(t, 1, updates.calls)
}

func TestSetupRoutes_CORS(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := chi.NewRouter()
	SetupRoutes(router, Options{
		Archive:        handlers.NewArchiveHandler(services.NewArchiveService(nil, nil, logger)),
		AllowedOrigins: []string{"https://league.example.com"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/archive/chats/1", nil)
	req.Header.Set("Origin", "https://league.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://league.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
