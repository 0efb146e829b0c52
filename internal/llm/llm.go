package llm

import (
	"fmt"

	"github.com/razmarrus/cv-rag/internal/config"
	"github.com/razmarrus/cv-rag/internal/rag/interfaces"
)

// New creates an LLM client for the configured provider.
func New(cfg config.ProviderConfig) (interfaces.LLM, error) {
	switch cfg.Provider {
	case "huggingface":
		return NewHuggingFace(cfg.Model, cfg.APIKey, cfg.BaseURL)
	case "openai":
		return NewOpenAI(cfg.Model, cfg.APIKey, cfg.BaseURL)
	case "ollama":
		return NewOllama(cfg.Model, cfg.BaseURL)
	case "gemini":
		return NewGemini(cfg.Model, cfg.APIKey)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
