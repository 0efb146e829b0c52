package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"

	"github.com/razmarrus/cv-rag/internal/rag/interfaces"
)

// Ollama is an LLM client for a local Ollama server.
type Ollama struct {
	client *ollama.Client
	model  string
}

// NewOllama creates a new Ollama client. An empty baseURL defaults to the
// standard local Ollama address.
func NewOllama(model, baseURL string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	hc := &http.Client{
		Timeout: 120 * time.Second,
	}

	return &Ollama{client: ollama.NewClient(parsedURL, hc), model: model}, nil
}

// Generate runs a non-streaming completion and returns the full reply.
func (o *Ollama) Generate(ctx context.Context, req *interfaces.GenerateRequest) (string, error) {
	stream := false
	genReq := &ollama.GenerateRequest{
		Model:  o.model,
		Prompt: req.Prompt,
		Stream: &stream,
		Options: map[string]interface{}{
			"num_predict": req.MaxTokens,
			"temperature": req.Temperature,
		},
	}

	var answer strings.Builder
	err := o.client.Generate(ctx, genReq, func(resp ollama.GenerateResponse) error {
		answer.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate with ollama: %w", err)
	}

	return strings.TrimSpace(answer.String()), nil
}

// compile-time check to ensure Ollama implements the LLM interface
var _ interfaces.LLM = (*Ollama)(nil)
