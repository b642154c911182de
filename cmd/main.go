package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/league-bot/bot"
	"github.com/Dosada05/league-bot/brackets"
	"github.com/Dosada05/league-bot/config"
	"github.com/Dosada05/league-bot/db"
	"github.com/Dosada05/league-bot/handlers"
	"github.com/Dosada05/league-bot/middleware"
	"github.com/Dosada05/league-bot/models"
	"github.com/Dosada05/league-bot/repositories"
	api "github.com/Dosada05/league-bot/routes"
	"github.com/Dosada05/league-bot/services"
	"github.com/Dosada05/league-bot/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.Bool("webhook", cfg.WebhookEnabled()),
		slog.Bool("spectator_links", cfg.SpectatorLinksEnabled()),
		slog.Duration("auto_finish_after", cfg.AutoFinishAfter))

	if err := run(cfg, logger); err != nil {
		logger.Error("application stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	logger.Info("team catalog loaded", slog.Int("teams", len(catalog.Teams())))

	// Архив результатов: база данных и/или Cloudflare R2, оба опциональны
	var store services.ArchiveStore
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer closeDB(dbConn, logger)
		if err := db.Migrate(ctx, dbConn); err != nil {
			return err
		}
		store = repositories.NewArchiveStore(dbConn)
		logger.Info("database connection established")
	}

	var uploader storage.FileUploader
	if cfg.R2.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, cfg.R2)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2.BucketName))
	}
	archiveService := services.NewArchiveService(store, uploader, logger)

	// Метрики
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := services.NewMetrics(registry)

	// Live-трансляция для зрителей
	hub := brackets.NewHub(logger)

	// Telegram
	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	logger.Info("telegram bot authorized", slog.String("bot", botAPI.Self.UserName))

	messenger := bot.NewTelegramMessenger(botAPI, catalog, logger)
	tournamentService := services.NewTournamentService(services.TournamentDeps{
		Catalog:         catalog,
		Generator:       brackets.NewRoundRobinGenerator(),
		Messenger:       messenger,
		Live:            hub,
		Archiver:        archiveService,
		Metrics:         metrics,
		Logger:          logger,
		AutoFinishAfter: cfg.AutoFinishAfter,
	})

	var (
		links  bot.LinkIssuer
		tokens *middleware.SpectatorTokens
	)
	if cfg.SpectatorLinksEnabled() {
		tokens = middleware.NewSpectatorTokens(cfg.JWTSecretKey, cfg.SpectatorTokenTTL, cfg.PublicBaseURL)
		links = tokens
	}
	dispatcher := bot.NewDispatcher(botAPI, messenger, tournamentService, links, logger)

	// Настройка маршрутизатора
	opts := api.Options{
		Metrics:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if cfg.WebhookEnabled() {
		opts.Webhook = handlers.NewWebhookHandler(dispatcher, logger)
		opts.WebhookSecret = cfg.WebhookSecret
	}
	if tokens != nil {
		opts.Live = handlers.NewLiveHandler(tournamentService, hub, cfg.CORSAllowedOrigins, logger)
		opts.Tokens = tokens
	}
	if store != nil {
		opts.Archive = handlers.NewArchiveHandler(archiveService)
	}
	router := chi.NewRouter()
	api.SetupRoutes(router, opts)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			_ = server.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server shutdown complete")
		return nil
	})

	if cfg.WebhookEnabled() {
		if err := bot.SetWebhook(botAPI, cfg.WebhookURL); err != nil {
			stop()
			_ = g.Wait()
			return err
		}
		logger.Info("telegram webhook registered")
	} else {
		g.Go(func() error {
			return bot.RunPolling(gctx, botAPI, dispatcher, logger)
		})
	}

	return g.Wait()
}

func loadCatalog(path string) (*models.Catalog, error) {
	if path == "" {
		return models.DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read team catalog %s: %w", path, err)
	}
	return models.ParseCatalog(data)
}

func closeDB(dbConn *sql.DB, logger *slog.Logger) {
	if err := dbConn.Close(); err != nil {
		logger.Error("failed to close database connection", slog.Any("error", err))
		return
	}
	logger.Info("database connection closed")
}
