package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"medicalink-backend/internal/api"
	"medicalink-backend/internal/config"
	"medicalink-backend/internal/handlers"
	"medicalink-backend/internal/llm"
	"medicalink-backend/internal/logging"
	"medicalink-backend/internal/services"
	"medicalink-backend/internal/store"
	"medicalink-backend/internal/store/postgres"
	"medicalink-backend/internal/store/sqlite"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("FATAL: Failed to build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(logger)
	logger.Info("Starting Medicalink Backend...", zap.String("env", cfg.AppEnv))

	// 2. Open the store
	// Use context.Background() for initial setup, but request-scoped contexts later.
	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dbCancel()

	st, err := openStore(dbCtx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("Unable to open store", zap.Error(err))
	}
	defer st.Close()

	// 3. Completion client
	completer, err := llm.DefaultRegistry(logger).New(cfg.LLMProvider, llm.Options{
		APIKey:      cfg.LLMAPIKey,
		BaseURL:     cfg.LLMBaseURL,
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: &cfg.LLMTemperature,
		Timeout:     cfg.LLMTimeout,
	})
	if err != nil {
		logger.Fatal("Unable to create completion client", zap.String("provider", cfg.LLMProvider), zap.Error(err))
	}
	if cfg.LLMValidateOnStartup {
		validateCtx, cancel := context.WithTimeout(context.Background(), cfg.LLMTimeout)
		if err := llm.Validate(validateCtx, completer); err != nil {
			logger.Warn("Completion credentials could not be validated", zap.String("provider", cfg.LLMProvider), zap.Error(err))
		} else {
			logger.Info("Completion credentials validated", zap.String("provider", cfg.LLMProvider))
		}
		cancel()
	}

	// 4. Services and handlers
	conversationService := services.NewConversationService(st, completer, cfg.LLMTimeout, logger)
	feedbackService := services.NewFeedbackService(st, logger)
	adviceService := services.NewAdviceService(completer, cfg.LLMTimeout, logger)

	router := api.NewRouter(api.RouterDependencies{
		ConversationHandler: handlers.NewConversationHandlers(conversationService, logger),
		FeedbackHandler:     handlers.NewFeedbackHandlers(feedbackService, logger),
		AdviceHandler:       handlers.NewAdviceHandlers(adviceService, logger),
		HealthHandler:       handlers.NewHealthHandler(st, logger),
		Config:              cfg,
		Logger:              logger,
	})
	logger.Info("HTTP router configured.")

	// 5. Configure and Start HTTP Server
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
		// The write timeout has to outlive the slowest completion call.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: api.RequestTimeout(cfg.LLMTimeout) + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel to listen for OS signals for graceful shutdown
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	// Run server in a goroutine so it doesn't block
	go func() {
		logger.Info("Server listening", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Could not listen", zap.String("port", cfg.HTTPPort), zap.Error(err))
		}
		logger.Info("Server listener routine stopped.")
	}()

	// Wait for interrupt signal
	<-stopChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), api.RequestTimeout(cfg.LLMTimeout))
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server graceful shutdown failed", zap.Error(err))
		return
	}

	logger.Info("Server shutdown complete.")
}

// openStore picks the backend from the DATABASE_URL scheme: sqlite:// or file: selects
// the embedded SQLite store, anything else is handed to pgxpool.
func openStore(ctx context.Context, databaseURL string, logger *zap.Logger) (store.Store, error) {
	if strings.HasPrefix(databaseURL, "sqlite://") || strings.HasPrefix(databaseURL, "file:") {
		st, err := sqlite.NewSQLiteStore(ctx, sqlite.DSNFromURL(databaseURL), logger)
		if err != nil {
			return nil, err
		}
		logger.Info("SQLite store initialized.")
		return st, nil
	}

	dbpool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to create database connection pool: %w", err)
	}
	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	pgStore := postgres.NewPostgresStore(dbpool, logger)
	if err := pgStore.EnsureSchema(ctx); err != nil {
		pgStore.Close()
		return nil, err
	}
	logger.Info("Postgres store initialized.")
	return pgStore, nil
}
