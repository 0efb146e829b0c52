package loaders

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/razmarrus/cv-rag/internal/rag/interfaces"
	"github.com/razmarrus/cv-rag/internal/rag/schema"
)

// PdfLoader implements the Loader interface for PDF files.
type PdfLoader struct{}

// NewPdfLoader creates a new PdfLoader.
func NewPdfLoader() *PdfLoader {
	return &PdfLoader{}
}

// Load reads a PDF file and returns one Document per page, tagged with the
// page number so retrieved chunks can be traced back to a page.
func (l *PdfLoader) Load(ctx context.Context, path string) ([]*schema.Document, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf %q: %w", path, err)
	}
	defer f.Close()

	var documents []*schema.Document
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d of %q: %w", i, path, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		md := fileMetadata(path)
		md[schema.MetadataKeyPageLabel] = fmt.Sprintf("%d", i)

		documents = append(documents, &schema.Document{
			ID:       uuid.New().String(),
			Source:   filepath.Base(path),
			Text:     text,
			Metadata: md,
		})
	}

	return documents, nil
}

// compile-time check to ensure PdfLoader implements the Loader interface
var _ interfaces.Loader = (*PdfLoader)(nil)
