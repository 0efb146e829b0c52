package loaders

import (
	"context"
	"path/filepath"
	"strings"

	"baliance.com/gooxml/document"
	"github.com/google/uuid"

	"github.com/razmarrus/cv-rag/internal/rag/interfaces"
	"github.com/razmarrus/cv-rag/internal/rag/schema"
)

// DocxLoader implements the Loader interface for Word (.docx) files.
type DocxLoader struct{}

// NewDocxLoader creates a new DocxLoader.
func NewDocxLoader() *DocxLoader {
	return &DocxLoader{}
}

// Load reads a .docx file and returns its paragraph text as a single
// Document.
func (l *DocxLoader) Load(ctx context.Context, path string) ([]*schema.Document, error) {
	doc, err := document.Open(path)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, p := range doc.Paragraphs() {
		for _, r := range p.Runs() {
			sb.WriteString(r.Text())
		}
		sb.WriteString("\n")
	}

	result := &schema.Document{
		ID:       uuid.New().String(),
		Source:   filepath.Base(path),
		Text:     sb.String(),
		Metadata: fileMetadata(path),
	}

	return []*schema.Document{result}, nil
}

// compile-time check to ensure DocxLoader implements the Loader interface
var _ interfaces.Loader = (*DocxLoader)(nil)
