package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aryan55254/Heritage/internal/adapters/auth"
	"github.com/aryan55254/Heritage/internal/adapters/database"
	"github.com/aryan55254/Heritage/internal/adapters/http/router"
	"github.com/aryan55254/Heritage/internal/adapters/llm"
	"github.com/aryan55254/Heritage/internal/adapters/metrics"
	memorystorage "github.com/aryan55254/Heritage/internal/adapters/storage/memory"
	redisstorage "github.com/aryan55254/Heritage/internal/adapters/storage/redis"
	"github.com/aryan55254/Heritage/internal/config"
	"github.com/aryan55254/Heritage/internal/core/domain"
	"github.com/aryan55254/Heritage/internal/core/ports"
	"github.com/aryan55254/Heritage/internal/core/services"
)

// storage agrupa o contrato de dados com o health check.
type storage interface {
	ports.Storage
	Ping(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeFn, err := initStorage(ctx, cfg.Storage, logger)
	if err != nil {
		fatal(logger, "failed to init storage", err)
	}
	defer closeFn()

	db, err := database.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		fatal(logger, "failed to open database", err)
	}

	var observer ports.Metrics = ports.NopMetrics{}
	var metricsHandler http.Handler
	if cfg.Server.MetricsEnabled {
		prom := metrics.NewPrometheus()
		observer = prom
		metricsHandler = prom.Handler()
	}

	limiter, err := services.NewRateLimiterService(store, services.Config{
		Rules:        cfg.RateLimiter.Rules(),
		FailOpen:     cfg.RateLimiter.FailOpen,
		StoreTimeout: cfg.Storage.Timeout,
	}, logger, observer)
	if err != nil {
		fatal(logger, "failed to create limiter", err)
	}

	history, err := services.NewHistoryService(store, domain.HistoryTTL, cfg.Storage.Timeout)
	if err != nil {
		fatal(logger, "failed to create history store", err)
	}

	completer, err := llm.New(llm.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})
	if err != nil {
		fatal(logger, "failed to create llm client", err)
	}

	chat, err := services.NewChatService(limiter, history, completer, services.ChatConfig{
		SystemPrompt:      cfg.LLM.SystemPrompt,
		CompletionTimeout: cfg.LLM.Timeout,
	}, logger, observer)
	if err != nil {
		fatal(logger, "failed to create chat service", err)
	}

	sessions, err := auth.NewSessionManager(cfg.Session.Secret, cfg.Session.TTL)
	if err != nil {
		fatal(logger, "failed to create session manager", err)
	}

	accounts, err := services.NewAccountService(database.NewAccountRepository(db), auth.BcryptHasher{}, sessions, limiter, logger)
	if err != nil {
		fatal(logger, "failed to create account service", err)
	}

	srv := &http.Server{
		Addr: fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router.New(router.Deps{
			Chat:           chat,
			Accounts:       accounts,
			Sessions:       sessions,
			Store:          store,
			Metrics:        metricsHandler,
			AllowedOrigins: cfg.Server.CORSAllowedOrigins,
			SecureCookie:   cfg.Session.SecureCookie,
			RequestTimeout: cfg.LLM.Timeout + 5*time.Second,
			Logger:         logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "storage", cfg.Storage.Type, "model", cfg.LLM.Model)
		err := srv.ListenAndServe()
		if err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "server error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func initStorage(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (storage, func(), error) {
	switch cfg.Type {
	case "redis":
		redisCfg := redisstorage.Config{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
		store, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Error("failed to close redis storage", "error", err)
			}
		}, nil
	case "memory":
		logger.Warn("using in-process storage; rate limits and history are not shared between replicas")
		store := memorystorage.New()
		go store.RunJanitor(ctx, time.Minute)
		return store, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
