package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// AppInfo holds basic application information.
type AppInfo struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"` // "development" or "production"
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	GinMode    string `yaml:"ginMode"`    // "debug" or "release"
	AdminToken string `yaml:"adminToken"` // bearer token for admin endpoints, empty disables them
}

// LoggerConfig holds log settings.
type LoggerConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
}

// RAGConfig holds the chunking, retrieval and generation budgets.
type RAGConfig struct {
	ChunkSize           int     `yaml:"chunkSize"`           // target tokens per chunk
	ChunkOverlap        int     `yaml:"chunkOverlap"`        // overlapping tokens between chunks
	MaxContextTokens    int     `yaml:"maxContextTokens"`    // total budget for the assembled context
	TopK                int     `yaml:"topK"`                // chunks retrieved per query
	SimilarityThreshold float64 `yaml:"similarityThreshold"` // minimum cosine similarity
	MaxNewTokens        int     `yaml:"maxNewTokens"`        // generation cap
	Temperature         float32 `yaml:"temperature"`
	DocumentsDir        string  `yaml:"documentsDir"` // corpus directory for ingestion
}

// ProviderConfig holds the settings for one model provider.
type ProviderConfig struct {
	Provider string `yaml:"provider"` // "huggingface", "openai", "ollama", "gemini"
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
	BaseURL  string `yaml:"baseURL"`
}

// EmbeddingConfig holds the embedding provider settings.
type EmbeddingConfig struct {
	ProviderConfig `yaml:",inline"`
	Dimensions     int `yaml:"dimensions"`
}

// PostgresConfig holds the pgvector database settings.
type PostgresConfig struct {
	URL string `yaml:"url"`
}

// MilvusConfig holds the alternative vector database settings.
type MilvusConfig struct {
	Address    string `yaml:"address"`
	Collection string `yaml:"collection"`
}

// RedisConfig holds the answer-cache settings.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTL      string `yaml:"ttl"` // cache entry lifetime, e.g. "1h"
}

// MongoConfig holds the query-history database settings.
type MongoConfig struct {
	Address    string `yaml:"address"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// DatabaseConfigs groups all storage backends.
type DatabaseConfigs struct {
	Postgres PostgresConfig `yaml:"postgres"`
	Milvus   MilvusConfig   `yaml:"milvus"`
	Redis    RedisConfig    `yaml:"redis"`
	MongoDB  MongoConfig    `yaml:"mongodb"`
}

// VectorStoreConfig selects the vector store backend.
type VectorStoreConfig struct {
	Provider string `yaml:"provider"` // "pgvector" (default) or "milvus"
}

// RateLimiterConfig holds the per-client request limit.
type RateLimiterConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Algorithm string  `yaml:"algorithm"` // "fixedWindow" or "tokenBucket"
	Limit     int     `yaml:"limit"`     // fixedWindow: requests per window
	Window    string  `yaml:"window"`    // fixedWindow: e.g. "1h"
	Rate      float64 `yaml:"rate"`      // tokenBucket: tokens per second
	Capacity  int     `yaml:"capacity"`  // tokenBucket: burst size
}

// CircuitBreakerConfig holds the optional breaker settings.
type CircuitBreakerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FailureThreshold uint32 `yaml:"failureThreshold"`
	SuccessThreshold uint32 `yaml:"successThreshold"`
	Timeout          string `yaml:"timeout"` // e.g. "30s"
}

// MiddlewareConfig groups HTTP middleware settings.
type MiddlewareConfig struct {
	RateLimiter    RateLimiterConfig    `yaml:"rateLimiter"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker"`
}

// AppConfig is the root of the YAML configuration file.
type AppConfig struct {
	App         AppInfo           `yaml:"app"`
	Server      ServerConfig      `yaml:"server"`
	Logger      LoggerConfig      `yaml:"logger"`
	RAG         RAGConfig         `yaml:"rag"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	LLM         ProviderConfig    `yaml:"llm"`
	VectorStore VectorStoreConfig `yaml:"vectorStore"`
	Databases   DatabaseConfigs   `yaml:"databases"`
	Middleware  MiddlewareConfig  `yaml:"middleware"`
}

// LoadConfig reads the YAML file at path, applies defaults and environment
// overrides, and returns the resulting configuration. A missing file is not
// an error; the configuration is then built from defaults and environment
// alone.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := &AppConfig{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
		}
	case os.IsNotExist(err):
		// Fall through to defaults and environment.
	default:
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "cv-rag"
	}
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8000"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}

	if c.RAG.ChunkSize == 0 {
		c.RAG.ChunkSize = 512
	}
	if c.RAG.ChunkOverlap == 0 {
		c.RAG.ChunkOverlap = 50
	}
	if c.RAG.MaxContextTokens == 0 {
		c.RAG.MaxContextTokens = 2000
	}
	if c.RAG.TopK == 0 {
		c.RAG.TopK = 5
	}
	if c.RAG.SimilarityThreshold == 0 {
		c.RAG.SimilarityThreshold = 0.7
	}
	if c.RAG.MaxNewTokens == 0 {
		c.RAG.MaxNewTokens = 512
	}
	if c.RAG.Temperature == 0 {
		c.RAG.Temperature = 0.7
	}
	if c.RAG.DocumentsDir == "" {
		c.RAG.DocumentsDir = "documents"
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "huggingface"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "sentence-transformers/all-MiniLM-L6-v2"
	}
	if c.Embedding.Dimensions == 0 {
		c.Embedding.Dimensions = 384
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = "huggingface"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "mistralai/Mistral-7B-Instruct-v0.2"
	}

	if c.VectorStore.Provider == "" {
		c.VectorStore.Provider = "pgvector"
	}
	if c.Databases.Milvus.Collection == "" {
		c.Databases.Milvus.Collection = "cv_chunks"
	}
	if c.Databases.MongoDB.Database == "" {
		c.Databases.MongoDB.Database = "cvrag"
	}
	if c.Databases.MongoDB.Collection == "" {
		c.Databases.MongoDB.Collection = "query_log"
	}
	if c.Databases.Redis.TTL == "" {
		c.Databases.Redis.TTL = "1h"
	}
}

// applyEnv overlays the environment-variable contract on top of the file
// values. Environment always wins so that deployments can configure the
// service without a config file.
func (c *AppConfig) applyEnv() {
	setString(&c.Server.Host, "HOST")
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.AdminToken, "ADMIN_TOKEN")
	setString(&c.Logger.Level, "LOG_LEVEL")

	setString(&c.Embedding.APIKey, "HF_TOKEN")
	setString(&c.LLM.APIKey, "HF_TOKEN")
	setString(&c.Embedding.Model, "EMBEDDING_MODEL")
	setString(&c.LLM.Model, "LLM_MODEL")
	setInt(&c.Embedding.Dimensions, "EMBEDDING_DIM")

	setString(&c.Databases.Postgres.URL, "DATABASE_URL")
	setString(&c.Databases.Redis.Address, "REDIS_ADDR")
	setString(&c.Databases.MongoDB.Address, "MONGO_ADDR")

	setInt(&c.RAG.ChunkSize, "CHUNK_SIZE")
	setInt(&c.RAG.ChunkOverlap, "CHUNK_OVERLAP")
	setInt(&c.RAG.MaxContextTokens, "MAX_CONTEXT_TOKENS")
	setInt(&c.RAG.TopK, "TOP_K_CHUNKS")
	setFloat(&c.RAG.SimilarityThreshold, "SIMILARITY_THRESHOLD")
	setInt(&c.RAG.MaxNewTokens, "MAX_NEW_TOKENS")
	setFloat32(&c.RAG.Temperature, "TEMPERATURE")
	setString(&c.RAG.DocumentsDir, "DOCUMENTS_DIR")
}

// Validate checks that the settings required to reach the external
// collaborators are present.
func (c *AppConfig) Validate() error {
	var missing []string
	if c.Embedding.Provider == "huggingface" && c.Embedding.APIKey == "" {
		missing = append(missing, "HF_TOKEN")
	}
	if c.VectorStore.Provider == "pgvector" && c.Databases.Postgres.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.VectorStore.Provider == "milvus" && c.Databases.Milvus.Address == "" {
		missing = append(missing, "databases.milvus.address")
	}
	if c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)",
			c.RAG.ChunkOverlap, c.RAG.ChunkSize)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %v", missing)
	}
	return nil
}

// IsDevelopment reports whether the app runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setFloat32(dst *float32, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			*dst = float32(f)
		}
	}
}
