package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/razmarrus/cv-rag/internal/rag/interfaces"
)

func TestHuggingFace_Generate(t *testing.T) {
	var gotPath string
	var gotBody chatCompletionRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "  Go and PostgreSQL.  "}},
			},
		})
	}))
	defer srv.Close()

	h, err := NewHuggingFace("test-model", "test-token", srv.URL+"/")
	if err != nil {
		t.Fatalf("NewHuggingFace() error = %v", err)
	}

	answer, err := h.Generate(context.Background(), &interfaces.GenerateRequest{
		Prompt:      "What languages does the candidate use?",
		MaxTokens:   256,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if answer != "Go and PostgreSQL." {
		t.Errorf("answer = %q, want trimmed reply", answer)
	}
	if !strings.HasSuffix(gotPath, "/test-model/v1/chat/completions") {
		t.Errorf("request path = %q, want chat completions path", gotPath)
	}
	if len(gotBody.Messages) != 1 || gotBody.Messages[0].Role != "user" {
		t.Errorf("messages = %+v, want single user message", gotBody.Messages)
	}
	if gotBody.MaxTokens != 256 {
		t.Errorf("max_tokens = %d, want 256", gotBody.MaxTokens)
	}
}

func TestHuggingFace_Generate_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer srv.Close()

	h, err := NewHuggingFace("test-model", "test-token", srv.URL+"/")
	if err != nil {
		t.Fatalf("NewHuggingFace() error = %v", err)
	}

	_, err = h.Generate(context.Background(), &interfaces.GenerateRequest{Prompt: "hi"})
	if err == nil {
		t.Error("Generate() = nil error for empty choices")
	}
}

func TestHuggingFace_Generate_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	h, err := NewHuggingFace("test-model", "test-token", srv.URL+"/")
	if err != nil {
		t.Fatalf("NewHuggingFace() error = %v", err)
	}

	_, err = h.Generate(context.Background(), &interfaces.GenerateRequest{Prompt: "hi"})
	if err == nil {
		t.Fatal("Generate() = nil error, want non-nil")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error %q does not mention status code", err)
	}
}
