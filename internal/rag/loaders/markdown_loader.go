package loaders

import (
	"context"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"

	"github.com/razmarrus/cv-rag/internal/rag/interfaces"
	"github.com/razmarrus/cv-rag/internal/rag/schema"
)

// MarkdownLoader implements the Loader interface for Markdown (.md) files.
type MarkdownLoader struct{}

// NewMarkdownLoader creates a new MarkdownLoader.
func NewMarkdownLoader() *MarkdownLoader {
	return &MarkdownLoader{}
}

// imageRegex matches Markdown image syntax (e.g. ![alt](path/to/image.png)).
var imageRegex = regexp.MustCompile(`!\[.*?\]\(.*?\)`)

// Load reads a Markdown file and returns it as a single Document. Image
// references are stripped from the text since they carry no embeddable
// content.
func (l *MarkdownLoader) Load(ctx context.Context, path string) ([]*schema.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	text := imageRegex.ReplaceAllString(string(content), "")

	doc := &schema.Document{
		ID:       uuid.New().String(),
		Source:   filepath.Base(path),
		Text:     text,
		Metadata: fileMetadata(path),
	}

	return []*schema.Document{doc}, nil
}

// compile-time check to ensure MarkdownLoader implements the Loader interface
var _ interfaces.Loader = (*MarkdownLoader)(nil)
