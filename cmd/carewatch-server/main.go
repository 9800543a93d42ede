package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/carewatch/carewatch/internal/config"
	"github.com/carewatch/carewatch/internal/domain/assistant"
	"github.com/carewatch/carewatch/internal/domain/conversation"
	"github.com/carewatch/carewatch/internal/domain/patient"
	"github.com/carewatch/carewatch/internal/domain/symptom"
	"github.com/carewatch/carewatch/internal/platform/auth"
	"github.com/carewatch/carewatch/internal/platform/llm"
	"github.com/carewatch/carewatch/internal/platform/middleware"
	"github.com/carewatch/carewatch/internal/platform/store"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "carewatch-server",
		Short: "Patient monitoring backend",
	}
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the monitoring API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// Database
	ctx := context.Background()
	client, err := store.Connect(ctx, cfg.MongoURI)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("database disconnect failed")
		}
	}()
	db := client.Database(cfg.MongoDatabase)
	logger.Info().Str("database", cfg.MongoDatabase).Msg("connected to database")

	// Prompts
	prompts, err := llm.LoadPrompts(cfg.PromptsDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load prompts")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", "X-Request-ID", auth.APIKeyHeader},
	}))

	// Repositories and services
	patientRepo := patient.NewMongoRepository(db)
	messageRepo := conversation.NewMongoRepository(db)
	logRepo := assistant.NewMongoRepository(db)

	llmClient := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	classifier := symptom.NewClassifier(llmClient, prompts.Analysis, cfg.OpenAIModel, logger)
	engine := conversation.NewEngine(messageRepo, patientRepo, llmClient, prompts, classifier, cfg.OpenAIModel, logger)
	patientService := patient.NewService(patientRepo, llmClient, cfg.SummaryModel)

	// Routes
	api := e.Group("/api")
	protected := e.Group("/api", auth.RequireAPIKey(cfg.AssistantAPIKey))
	assistantGroup := e.Group("/api/assistant", auth.RequireAPIKey(cfg.AssistantAPIKey))

	patientHandler := patient.NewHandler(patientService)
	patientHandler.RegisterDashboard(api)
	patientHandler.RegisterProtected(protected)

	conversation.NewHandler(engine).Register(assistantGroup)
	assistant.NewHandler(patientRepo).Register(assistantGroup)

	e.GET("/health", store.HealthHandler(client))

	// Background id assignment
	reconciler := assistant.NewReconciler(patientRepo, logRepo, logger)
	scheduler := reconciler.Start(ctx, cfg.ReconcileIntervalSec)
	defer scheduler.Stop()

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
