package embedding

import (
	"fmt"

	"github.com/razmarrus/cv-rag/internal/config"
	"github.com/razmarrus/cv-rag/internal/rag/interfaces"
)

// New creates an EmbeddingModel for the configured provider.
func New(cfg config.EmbeddingConfig) (interfaces.EmbeddingModel, error) {
	switch cfg.Provider {
	case "huggingface":
		return NewHuggingFaceModel(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case "openai":
		return NewOpenAIModel(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case "ollama":
		return NewOllamaModel(cfg.Model, cfg.BaseURL)
	case "gemini":
		return NewGoogleModel(cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
