package loaders

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/razmarrus/cv-rag/internal/rag/interfaces"
	"github.com/razmarrus/cv-rag/internal/rag/schema"
)

// XlsxLoader implements the Loader interface for Excel (.xlsx) files, e.g.
// a skills matrix kept as a spreadsheet.
type XlsxLoader struct{}

// NewXlsxLoader creates a new XlsxLoader.
func NewXlsxLoader() *XlsxLoader {
	return &XlsxLoader{}
}

// Load reads an .xlsx file, converting each sheet into a Markdown table.
// Each sheet becomes its own Document.
func (l *XlsxLoader) Load(ctx context.Context, path string) ([]*schema.Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var documents []*schema.Document
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil || len(rows) == 0 {
			continue
		}

		var sb strings.Builder
		sb.WriteString("| " + strings.Join(rows[0], " | ") + " |\n")
		sb.WriteString("|" + strings.Repeat(" --- |", len(rows[0])) + "\n")
		for _, row := range rows[1:] {
			sb.WriteString("| " + strings.Join(row, " | ") + " |\n")
		}

		md := fileMetadata(path)
		md[schema.MetadataKeySheetName] = sheetName

		documents = append(documents, &schema.Document{
			ID:       uuid.New().String(),
			Source:   filepath.Base(path),
			Text:     sb.String(),
			Metadata: md,
		})
	}

	return documents, nil
}

// compile-time check to ensure XlsxLoader implements the Loader interface
var _ interfaces.Loader = (*XlsxLoader)(nil)
