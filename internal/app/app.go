// Package app wires configuration, storage backends, model clients, and
// pipelines into a ready-to-use service. Both the web server and the MCP
// server boot through it.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/razmarrus/cv-rag/internal/cache"
	"github.com/razmarrus/cv-rag/internal/config"
	milvusdb "github.com/razmarrus/cv-rag/internal/database/milvus"
	mongodb "github.com/razmarrus/cv-rag/internal/database/mongo"
	pgdb "github.com/razmarrus/cv-rag/internal/database/postgres"
	redisdb "github.com/razmarrus/cv-rag/internal/database/redis"
	"github.com/razmarrus/cv-rag/internal/embedding"
	"github.com/razmarrus/cv-rag/internal/llm"
	"github.com/razmarrus/cv-rag/internal/rag/assembler"
	"github.com/razmarrus/cv-rag/internal/rag/interfaces"
	"github.com/razmarrus/cv-rag/internal/rag/pipeline"
	"github.com/razmarrus/cv-rag/internal/rag/splitters"
	"github.com/razmarrus/cv-rag/internal/rag/storages/querylog"
	"github.com/razmarrus/cv-rag/internal/rag/storages/vectorstore"
	"github.com/razmarrus/cv-rag/internal/service"
	"github.com/razmarrus/cv-rag/pkg/circuitbreaker"
	"github.com/razmarrus/cv-rag/pkg/logger"
	"github.com/razmarrus/cv-rag/pkg/ratelimiter"
)

// HealthFunc reports whether the vector database is reachable.
type HealthFunc func(ctx context.Context) error

// BuildService constructs the question answering service from the
// configuration. The returned health function pings whichever vector
// database backs the store.
func BuildService(cfg *config.AppConfig, log *logger.Logger) (*service.RAGService, HealthFunc, error) {
	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedding model: %w", err)
	}

	model, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create llm client: %w", err)
	}

	splitter, err := splitters.NewTokenSplitter(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create splitter: %w", err)
	}

	ctxAssembler, err := assembler.New(cfg.RAG.MaxContextTokens)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create context assembler: %w", err)
	}

	vectorStore, dbHealth, err := BuildVectorStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	var queryLog interfaces.QueryLog = querylog.NewNoopQueryLog()
	if cfg.Databases.MongoDB.Address != "" {
		client, err := mongodb.GetClient(&cfg.Databases.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		queryLog = querylog.NewMongoQueryLog(client, cfg.Databases.MongoDB.Database, cfg.Databases.MongoDB.Collection)
	}

	var answerCache *cache.AnswerCache
	if cfg.Databases.Redis.Address != "" {
		client, err := redisdb.GetClient(&cfg.Databases.Redis)
		if err != nil {
			return nil, nil, err
		}
		ttl, err := time.ParseDuration(cfg.Databases.Redis.TTL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid redis ttl %q: %w", cfg.Databases.Redis.TTL, err)
		}
		answerCache = cache.NewAnswerCache(client, ttl)
	}

	svc := service.New(
		pipeline.NewRetrievalPipeline(embedder, vectorStore, log),
		pipeline.NewIndexingPipeline(splitter, embedder, vectorStore, log),
		pipeline.NewQAPipeline(model, cfg.RAG.MaxNewTokens, cfg.RAG.Temperature, log),
		ctxAssembler,
		vectorStore,
		queryLog,
		answerCache,
		cfg,
		log,
	)
	return svc, dbHealth, nil
}

// BuildVectorStore connects to the configured vector database and returns
// the store plus its health check.
func BuildVectorStore(cfg *config.AppConfig) (interfaces.VectorStore, HealthFunc, error) {
	switch cfg.VectorStore.Provider {
	case "pgvector":
		db, err := pgdb.GetDB(cfg.Databases.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		store, err := vectorstore.NewPgVectorStore(db, cfg.Embedding.Dimensions)
		if err != nil {
			return nil, nil, err
		}
		return store, pgdb.HealthCheck, nil

	case "milvus":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := milvusdb.GetClient(ctx, cfg.Databases.Milvus.Address)
		if err != nil {
			return nil, nil, err
		}
		store, err := vectorstore.NewMilvusStore(ctx, client, cfg.Databases.Milvus.Collection, cfg.Embedding.Dimensions)
		if err != nil {
			return nil, nil, err
		}
		return store, milvusdb.HealthCheck, nil

	default:
		return nil, nil, fmt.Errorf("unsupported vector store provider: %s", cfg.VectorStore.Provider)
	}
}

// BuildRateLimiter creates the configured per-client limiter.
func BuildRateLimiter(cfg config.RateLimiterConfig) ratelimiter.RateLimiter {
	switch cfg.Algorithm {
	case "tokenBucket":
		rate := cfg.Rate
		if rate <= 0 {
			rate = 1
		}
		capacity := cfg.Capacity
		if capacity <= 0 {
			capacity = 10
		}
		return ratelimiter.NewKeyedTokenBucket(rate, capacity)
	default:
		limit := cfg.Limit
		if limit <= 0 {
			limit = 10
		}
		window, err := time.ParseDuration(cfg.Window)
		if err != nil || window <= 0 {
			window = time.Hour
		}
		return ratelimiter.NewKeyedFixedWindow(limit, window)
	}
}

// BuildBreaker creates the configured circuit breaker.
func BuildBreaker(cfg config.CircuitBreakerConfig) circuitbreaker.CircuitBreaker {
	failures := cfg.FailureThreshold
	if failures == 0 {
		failures = 5
	}
	successes := cfg.SuccessThreshold
	if successes == 0 {
		successes = 2
	}
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 30 * time.Second
	}
	return circuitbreaker.New(failures, successes, timeout)
}

// CloseConnections shuts down whichever backends were opened during boot.
func CloseConnections(cfg *config.AppConfig, log *logger.Logger) {
	switch cfg.VectorStore.Provider {
	case "pgvector":
		if err := pgdb.Close(); err != nil {
			log.Warn("Failed to close postgres: " + err.Error())
		}
	case "milvus":
		if err := milvusdb.Close(); err != nil {
			log.Warn("Failed to close milvus: " + err.Error())
		}
	}
	if cfg.Databases.Redis.Address != "" {
		if err := redisdb.Close(); err != nil {
			log.Warn("Failed to close redis: " + err.Error())
		}
	}
	if cfg.Databases.MongoDB.Address != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongodb.Close(ctx); err != nil {
			log.Warn("Failed to close mongodb: " + err.Error())
		}
	}
}
