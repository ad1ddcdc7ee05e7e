package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/sounditout/backend/application/service"
	"github.com/sounditout/backend/domain/retrieval"
	"github.com/sounditout/backend/infrastructure/api"
	apimiddleware "github.com/sounditout/backend/infrastructure/api/middleware"
	v1 "github.com/sounditout/backend/infrastructure/api/v1"
	"github.com/sounditout/backend/infrastructure/persistence"
	"github.com/sounditout/backend/infrastructure/provider"
	"github.com/sounditout/backend/internal/database"
	"github.com/sounditout/backend/internal/log"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                     Server host to bind to (default: 0.0.0.0)
  PORT                     Server port to listen on (default: 8080)
  DB_URL                   Database URL (default: sqlite://sounditout.db)
  LOG_LEVEL                Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT               Log format: pretty, json (default: pretty)
  API_KEYS                 Comma-separated list of valid API keys

  OPENAI_BASE_URL          Base URL override (default: https://api.openai.com/v1)
  OPENAI_API_KEY           API key for the model endpoint
  OPENAI_CHAT_MODEL        Chat model (default: gpt-4o-mini)
  OPENAI_EMBEDDING_MODEL   Embedding model (default: text-embedding-3-small)
  OPENAI_TIMEOUT           Request timeout in seconds (default: 60)
  OPENAI_MAX_RETRIES       Retry attempts (default: 3)

  AI_WORKER_COUNT          Background embedding workers (default: 4)
  AI_QUEUE_CAPACITY        Bounded embedding queue size (default: 200)

  RAG_SIMILARITY_CUTOFF    Minimum similarity score for context (default: 0.75)
  RAG_CANDIDATES           Candidates fetched per retrieval (default: 12)
  RAG_MAX_CONTEXT          Snippets kept after filtering (default: 6)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	cfg = cfg.WithAddr(host, port)

	logger := log.NewLogger(log.Format(cfg.LogFormat()), cfg.LogLevel())
	logger.SetDefault()
	slogger := logger.Slog()

	slogger.Info("starting sounditout",
		"version", version,
		"addr", cfg.Addr(),
		"db_url", cfg.DBURL(),
	)

	db, err := database.Open(cfg.DBURL())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slogger.Error("failed to close database", "error", err)
		}
	}()

	if err := persistence.Migrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	openAI := cfg.OpenAI()
	aiProvider := provider.NewOpenAIProvider(provider.OpenAIConfig{
		APIKey:         openAI.APIKey(),
		BaseURL:        openAI.BaseURL(),
		ChatModel:      openAI.ChatModel(),
		EmbeddingModel: openAI.EmbeddingModel(),
		Timeout:        openAI.Timeout(),
		MaxRetries:     openAI.MaxRetries(),
	})

	students := persistence.NewStudentStore(db)
	reports := persistence.NewReportStore(db)
	plans := persistence.NewPlanStore(db)

	var embeddings retrieval.Store
	if db.IsPostgres() {
		embeddings = persistence.NewPgvectorEmbeddingStore(db, aiProvider, slogger)
	} else {
		sqliteStore, err := persistence.NewSQLiteEmbeddingStore(db)
		if err != nil {
			return fmt.Errorf("create embedding store: %w", err)
		}
		embeddings = sqliteStore
	}

	ingestion := service.NewIngestion(aiProvider, embeddings, students, reports, slogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := service.NewPool(ingestion, cfg.AIWorkerCount(), cfg.AIQueueCapacity(), slogger)
	pool.Start(ctx)

	reportsSvc := service.NewReports(students, reports, pool, slogger)

	ragCfg := cfg.Retrieval()
	coach := service.NewCoach(
		aiProvider,
		aiProvider,
		embeddings,
		students,
		plans,
		retrieval.NewConfig(ragCfg.SimilarityCutoff(), ragCfg.Candidates(), ragCfg.MaxContext()),
		slogger,
	)

	server := api.NewServer(cfg.Addr(), slogger)
	router := server.Router()
	router.Use(apimiddleware.Logging(slogger))

	router.Get("/health", healthHandler)
	router.Get("/healthz", healthHandler)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(apimiddleware.APIKeyAuth(cfg.APIKeys()))
		r.Mount("/ai", v1.NewAIRouter(coach, reportsSvc, pool, slogger).Routes())
		r.Mount("/admin/ai", v1.NewAdminRouter(ingestion, slogger).Routes())
		r.Mount("/", v1.NewReportsRouter(reportsSvc, students, slogger).Routes())
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("shutdown error", slog.Any("error", err))
		}
	}()

	if err := server.Start(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	// Drain queued embedding work before the process exits.
	if err := pool.Close(); err != nil {
		slogger.Error("embedding pool shutdown error", slog.Any("error", err))
	}

	return nil
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}
