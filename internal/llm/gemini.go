package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/razmarrus/cv-rag/internal/rag/interfaces"
)

// Gemini is an LLM client for the Google GenAI API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a new Gemini client for the given model name.
func NewGemini(model, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Generate runs a single-turn completion and concatenates the text parts of
// the first candidate.
func (g *Gemini) Generate(ctx context.Context, req *interfaces.GenerateRequest) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetMaxOutputTokens(int32(req.MaxTokens))
	model.SetTemperature(req.Temperature)

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no generated text returned")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	return strings.TrimSpace(sb.String()), nil
}

// compile-time check to ensure Gemini implements the LLM interface
var _ interfaces.LLM = (*Gemini)(nil)
