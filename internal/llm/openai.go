package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"github.com/razmarrus/cv-rag/internal/rag/interfaces"
)

// OpenAI is an LLM client for the OpenAI API and compatible endpoints.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a new OpenAI client. A non-empty baseURL points the
// client at an OpenAI-compatible endpoint.
func NewOpenAI(model, apiKey, baseURL string) (*OpenAI, error) {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAI{client: openai.NewClientWithConfig(config), model: model}, nil
}

// Generate sends the prompt as a single user message and returns the reply.
func (o *OpenAI) Generate(ctx context.Context, req *interfaces.GenerateRequest) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: &req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no generated text returned")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// compile-time check to ensure OpenAI implements the LLM interface
var _ interfaces.LLM = (*OpenAI)(nil)
