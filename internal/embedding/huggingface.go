package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/razmarrus/cv-rag/internal/rag/interfaces"
)

// DefaultHuggingFaceBaseURL is the Inference API feature-extraction pipeline
// root. The model name is appended to form the request URL.
const DefaultHuggingFaceBaseURL = "https://api-inference.huggingface.co/pipeline/feature-extraction/"

// HuggingFaceModel is an embedding client for the Hugging Face Inference API.
type HuggingFaceModel struct {
	client  *http.Client
	model   string
	apiKey  string
	baseURL string
}

// NewHuggingFaceModel creates a new HuggingFaceModel client. An empty baseURL
// falls back to the public Inference API.
func NewHuggingFaceModel(apiKey, modelName, baseURL string) (*HuggingFaceModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("huggingface embedding requires an API key")
	}
	if baseURL == "" {
		baseURL = DefaultHuggingFaceBaseURL
	}
	return &HuggingFaceModel{
		client:  &http.Client{Timeout: 120 * time.Second},
		model:   modelName,
		apiKey:  apiKey,
		baseURL: baseURL,
	}, nil
}

// Embed generates an embedding vector for a single text.
func (m *HuggingFaceModel) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embedding vectors for a batch of texts in a single
// request. wait_for_model makes the API block until a cold model is loaded
// instead of returning 503.
func (m *HuggingFaceModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	payload := map[string]interface{}{
		"inputs":  texts,
		"options": map[string]bool{"wait_for_model": true},
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+m.model, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embedding request failed with status %d: %s", resp.StatusCode, body)
	}

	var embeddings [][]float32
	if err := json.NewDecoder(resp.Body).Decode(&embeddings); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embeddings))
	}

	return embeddings, nil
}

// compile-time check to ensure HuggingFaceModel implements EmbeddingModel
var _ interfaces.EmbeddingModel = (*HuggingFaceModel)(nil)
