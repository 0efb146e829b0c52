package loaders

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/google/uuid"

	"github.com/razmarrus/cv-rag/internal/rag/interfaces"
	"github.com/razmarrus/cv-rag/internal/rag/schema"
)

// WebLoader implements the Loader interface for web pages, e.g. an online
// CV or portfolio site.
type WebLoader struct {
	client *http.Client
}

// NewWebLoader creates a new WebLoader.
func NewWebLoader() *WebLoader {
	return &WebLoader{client: http.DefaultClient}
}

// Load fetches a URL, converts the HTML to Markdown and returns it as a
// single Document. The Markdown form keeps headings and list structure that
// plain text extraction would lose.
func (l *WebLoader) Load(ctx context.Context, rawURL string) ([]*schema.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %q returned status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	markdown, err := htmltomarkdown.ConvertString(string(body))
	if err != nil {
		return nil, fmt.Errorf("failed to convert %q to markdown: %w", rawURL, err)
	}

	doc := &schema.Document{
		ID:     uuid.New().String(),
		Source: sourceForURL(rawURL),
		Text:   markdown,
		Metadata: map[string]interface{}{
			schema.MetadataKeySourceURL: rawURL,
		},
	}

	return []*schema.Document{doc}, nil
}

// sourceForURL derives a short source label from a URL, falling back to the
// raw string when it does not parse.
func sourceForURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

// compile-time check to ensure WebLoader implements the Loader interface
var _ interfaces.Loader = (*WebLoader)(nil)
