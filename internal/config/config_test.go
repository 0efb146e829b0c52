package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.RAG.ChunkSize != 512 {
		t.Errorf("ChunkSize = %d, want 512", cfg.RAG.ChunkSize)
	}
	if cfg.RAG.ChunkOverlap != 50 {
		t.Errorf("ChunkOverlap = %d, want 50", cfg.RAG.ChunkOverlap)
	}
	if cfg.RAG.TopK != 5 {
		t.Errorf("TopK = %d, want 5", cfg.RAG.TopK)
	}
	if cfg.RAG.SimilarityThreshold != 0.7 {
		t.Errorf("SimilarityThreshold = %v, want 0.7", cfg.RAG.SimilarityThreshold)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("Embedding.Dimensions = %d, want 384", cfg.Embedding.Dimensions)
	}
	if cfg.VectorStore.Provider != "pgvector" {
		t.Errorf("VectorStore.Provider = %q, want pgvector", cfg.VectorStore.Provider)
	}
}

func TestLoadConfig_FileValues(t *testing.T) {
	path := writeConfigFile(t, `
app:
  name: cv-rag
  environment: production
rag:
  chunkSize: 256
  chunkOverlap: 32
  topK: 3
embedding:
  provider: ollama
  model: nomic-embed-text
  dimensions: 768
vectorStore:
  provider: milvus
databases:
  milvus:
    address: localhost:19530
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.RAG.ChunkSize != 256 || cfg.RAG.ChunkOverlap != 32 || cfg.RAG.TopK != 3 {
		t.Errorf("RAG budgets = %+v, want chunkSize=256 overlap=32 topK=3", cfg.RAG)
	}
	if cfg.Embedding.Provider != "ollama" || cfg.Embedding.Dimensions != 768 {
		t.Errorf("Embedding = %+v, want ollama/768", cfg.Embedding)
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true for production environment")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
rag:
  chunkSize: 256
`)
	t.Setenv("CHUNK_SIZE", "128")
	t.Setenv("SIMILARITY_THRESHOLD", "0.55")
	t.Setenv("HF_TOKEN", "hf_test")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/cvrag")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.RAG.ChunkSize != 128 {
		t.Errorf("ChunkSize = %d, want env override 128", cfg.RAG.ChunkSize)
	}
	if cfg.RAG.SimilarityThreshold != 0.55 {
		t.Errorf("SimilarityThreshold = %v, want 0.55", cfg.RAG.SimilarityThreshold)
	}
	if cfg.Embedding.APIKey != "hf_test" || cfg.LLM.APIKey != "hf_test" {
		t.Error("HF_TOKEN not applied to both embedding and llm providers")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	t.Setenv("HF_TOKEN", "")
	t.Setenv("DATABASE_URL", "")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	// Default providers are huggingface + pgvector, both unconfigured here.
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for missing HF_TOKEN and DATABASE_URL")
	}
}

func TestValidate_OverlapLargerThanSize(t *testing.T) {
	path := writeConfigFile(t, `
rag:
  chunkSize: 64
  chunkOverlap: 64
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for overlap >= size")
	}
}
