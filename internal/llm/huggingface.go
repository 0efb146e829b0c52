package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/razmarrus/cv-rag/internal/rag/interfaces"
)

// DefaultHuggingFaceBaseURL is the Inference API model root. The chat
// completions path is appended after the model name.
const DefaultHuggingFaceBaseURL = "https://api-inference.huggingface.co/models/"

// HuggingFace is an LLM client for the Hugging Face Inference API. It talks
// to the OpenAI-compatible chat completions endpoint that the API exposes
// per model.
type HuggingFace struct {
	client  *http.Client
	model   string
	apiKey  string
	baseURL string
}

// NewHuggingFace creates a new HuggingFace client. An empty baseURL falls
// back to the public Inference API.
func NewHuggingFace(model, apiKey, baseURL string) (*HuggingFace, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("huggingface llm requires an API key")
	}
	if baseURL == "" {
		baseURL = DefaultHuggingFaceBaseURL
	}
	return &HuggingFace{
		client:  &http.Client{Timeout: 120 * time.Second},
		model:   model,
		apiKey:  apiKey,
		baseURL: baseURL,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends the prompt as a single user message and returns the model's
// reply with surrounding whitespace trimmed.
func (h *HuggingFace) Generate(ctx context.Context, req *interfaces.GenerateRequest) (string, error) {
	body := chatCompletionRequest{
		Model:       h.model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := h.baseURL + h.model + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+h.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("generation request failed with status %d: %s", resp.StatusCode, raw)
	}

	var chatResp chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if chatResp.Error.Message != "" {
		return "", fmt.Errorf("generation failed: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no generated text returned")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

// compile-time check to ensure HuggingFace implements the LLM interface
var _ interfaces.LLM = (*HuggingFace)(nil)
