package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/recoverly/collections-ai-agent/cmd/mainconfig"
	"github.com/recoverly/collections-ai-agent/internal/api/router"
	appconfig "github.com/recoverly/collections-ai-agent/internal/config"
	"github.com/recoverly/collections-ai-agent/internal/conversation"
	"github.com/recoverly/collections-ai-agent/internal/customers"
	"github.com/recoverly/collections-ai-agent/internal/llm"
	"github.com/recoverly/collections-ai-agent/internal/observability/metrics"
	"github.com/recoverly/collections-ai-agent/internal/records"
	"github.com/recoverly/collections-ai-agent/pkg/logging"
)

func main() {
	// Load .env file if present; real environments set variables directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting collections-ai-agent API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	repo := customers.NewInMemoryRepository(customers.SampleCustomers()...)

	sessions := buildSessionStore(cfg, logger)
	sink, dbClose := buildRecordSink(cfg, logger)
	if dbClose != nil {
		defer dbClose()
	}

	engineOpts := []conversation.EngineOption{
		conversation.WithMetrics(metrics.NewCallMetrics(prometheus.DefaultRegisterer)),
	}
	if oracle := buildOracle(ctx, cfg, logger); oracle != nil {
		engineOpts = append(engineOpts, conversation.WithOracle(oracle))
	}
	if cfg.IntentRulesPath != "" {
		rules, err := conversation.LoadIntentRules(cfg.IntentRulesPath)
		if err != nil {
			logger.Error("failed to load intent rules", "path", cfg.IntentRulesPath, "error", err)
			os.Exit(1)
		}
		engineOpts = append(engineOpts, conversation.WithIntentRules(rules))
	}

	engine := conversation.NewEngine(repo, sessions, sink, logger, engineOpts...)

	dispatcher := buildDispatcher(ctx, cfg, engine, logger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := dispatcher.Shutdown(shutdownCtx); err != nil {
			logger.Error("dispatcher shutdown error", "error", err)
		}
	}()

	callsHandler := conversation.NewHandler(dispatcher, engine, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		CallsHandler:       callsHandler,
		MetricsHandler:     promhttp.Handler(),
		RateLimitPerSecond: 10,
		RateLimitBurst:     20,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func buildSessionStore(cfg *appconfig.Config, logger *logging.Logger) conversation.SessionStore {
	if cfg.RedisAddr == "" {
		logger.Info("using in-memory session store")
		return conversation.NewMemorySessionStore()
	}

	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	logger.Info("using Redis session store", "addr", cfg.RedisAddr, "ttl", cfg.SessionTTL)
	return conversation.NewRedisSessionStore(redis.NewClient(opts), cfg.SessionTTL, nil)
}

func buildRecordSink(cfg *appconfig.Config, logger *logging.Logger) (records.Sink, func()) {
	if cfg.DatabaseURL == "" {
		logger.Info("using in-memory record sink")
		return records.NewMemorySink(), nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("using Postgres record sink")
	return records.NewPostgresSink(db), func() { _ = db.Close() }
}

// buildOracle selects the LLM provider. A nil return means every oracle
// call site takes its deterministic fallback path.
func buildOracle(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *llm.Oracle {
	var gemini llm.Client
	if cfg.GeminiAPIKey != "" {
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create Gemini client", "error", err)
		} else {
			gemini = client
		}
	}

	var bedrock llm.Client
	if cfg.BedrockModelID != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config for Bedrock", "error", err)
		} else {
			bedrock = llm.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg))
		}
	}

	switch cfg.LLMProvider {
	case "gemini":
		if gemini == nil {
			logger.Warn("LLM_PROVIDER=gemini but no Gemini client available, oracle disabled")
			return nil
		}
		logger.Info("oracle provider", "provider", "gemini", "model", cfg.GeminiModelID)
		return llm.NewOracle(gemini, cfg.GeminiModelID, cfg.OracleTimeout, logger)
	case "bedrock":
		if bedrock == nil {
			logger.Warn("LLM_PROVIDER=bedrock but no Bedrock client available, oracle disabled")
			return nil
		}
		logger.Info("oracle provider", "provider", "bedrock", "model", cfg.BedrockModelID)
		return llm.NewOracle(bedrock, cfg.BedrockModelID, cfg.OracleTimeout, logger)
	default:
		switch {
		case bedrock != nil && gemini != nil:
			logger.Info("oracle provider", "provider", "bedrock+gemini fallback", "model", cfg.BedrockModelID)
			client := llm.NewFallbackClient(bedrock, gemini, logger)
			return llm.NewOracle(client, cfg.BedrockModelID, cfg.OracleTimeout, logger)
		case bedrock != nil:
			logger.Info("oracle provider", "provider", "bedrock", "model", cfg.BedrockModelID)
			return llm.NewOracle(bedrock, cfg.BedrockModelID, cfg.OracleTimeout, logger)
		case gemini != nil:
			logger.Info("oracle provider", "provider", "gemini", "model", cfg.GeminiModelID)
			return llm.NewOracle(gemini, cfg.GeminiModelID, cfg.OracleTimeout, logger)
		default:
			logger.Warn("no LLM provider configured, oracle disabled")
			return nil
		}
	}
}

func buildDispatcher(ctx context.Context, cfg *appconfig.Config, engine *conversation.Engine, logger *logging.Logger) conversation.Dispatcher {
	if cfg.UseMemoryQueue || cfg.CallQueueURL == "" {
		logger.Info("using in-memory call queue", "workers", cfg.WorkerCount)
		return conversation.NewOrchestrator(engine, conversation.NewMemoryQueue(64), logger,
			conversation.WithWorkerCount(cfg.WorkerCount),
		)
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config for SQS", "error", err)
		os.Exit(1)
	}
	logger.Info("using SQS call queue", "queue_url", cfg.CallQueueURL, "workers", cfg.WorkerCount)
	return conversation.NewOrchestrator(engine, conversation.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.CallQueueURL), logger,
		conversation.WithWorkerCount(cfg.WorkerCount),
	)
}
