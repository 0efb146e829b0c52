package loaders

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/djherbis/times"
	"github.com/gabriel-vasile/mimetype"

	"github.com/razmarrus/cv-rag/internal/rag/interfaces"
	"github.com/razmarrus/cv-rag/internal/rag/schema"
)

// ForPath picks a loader for the given path. URLs go to the web loader;
// files are selected by extension, with a MIME sniff as fallback so that a
// CV exported without an extension still loads. Unknown content defaults to
// the plain-text loader.
func ForPath(path string) interfaces.Loader {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return NewWebLoader()
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return NewPdfLoader()
	case ".docx":
		return NewDocxLoader()
	case ".xlsx":
		return NewXlsxLoader()
	case ".md", ".markdown":
		return NewMarkdownLoader()
	case ".txt":
		return NewTxtLoader()
	}

	if m, err := mimetype.DetectFile(path); err == nil {
		switch {
		case m.Is("application/pdf"):
			return NewPdfLoader()
		case m.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
			return NewDocxLoader()
		case m.Is("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"):
			return NewXlsxLoader()
		case m.Is("text/markdown"):
			return NewMarkdownLoader()
		}
	}

	return NewTxtLoader()
}

// fileMetadata builds the base metadata for a document loaded from a local
// file, including the file's modification time when it can be read.
func fileMetadata(path string) map[string]interface{} {
	md := map[string]interface{}{
		schema.MetadataKeyFileName: filepath.Base(path),
	}
	if ts, err := times.Stat(path); err == nil {
		md[schema.MetadataKeyModifiedAt] = ts.ModTime().UTC().Format(time.RFC3339)
	}
	return md
}
