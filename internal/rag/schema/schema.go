package schema

const (
	// MetadataKeyFileName is the key for the source file name.
	MetadataKeyFileName = "file_name"
	// MetadataKeyPageLabel is the key for the page number from the source document.
	MetadataKeyPageLabel = "page_label"
	// MetadataKeySheetName is the key for the spreadsheet sheet name.
	MetadataKeySheetName = "sheet_name"
	// MetadataKeySourceURL is the key for the URL a web document was fetched from.
	MetadataKeySourceURL = "source_url"
	// MetadataKeyModifiedAt is the key for the source file's modification time (RFC 3339).
	MetadataKeyModifiedAt = "modified_at"
)

// Document is the central data structure of the pipeline. A loader produces
// one Document per source unit (file, PDF page, sheet); the splitter turns
// those into chunk Documents with token bookkeeping filled in.
type Document struct {
	// ID is the unique identifier for this document or chunk.
	ID string

	// Source identifies where the text came from, usually the file base name.
	Source string

	// Ordinal is the zero-based position of this chunk within its source.
	// It is zero for unsplit documents.
	Ordinal int

	// Text is the string content.
	Text string

	// StartToken and EndToken delimit the chunk's token span within the
	// source text. EndToken is exclusive.
	StartToken int
	EndToken   int

	// TokenCount is the number of tokens in Text.
	TokenCount int

	// Embedding is the vector representation of Text.
	Embedding []float32

	// Similarity is the cosine similarity to the query vector. It is set by
	// the vector store at query time and never persisted.
	Similarity float64

	// Metadata holds arbitrary data about the document.
	Metadata map[string]interface{}
}

// CloneMetadata returns a copy of the document's metadata map so that chunks
// derived from the same source do not share state.
func (d *Document) CloneMetadata() map[string]interface{} {
	if d.Metadata == nil {
		return make(map[string]interface{})
	}
	md := make(map[string]interface{}, len(d.Metadata))
	for k, v := range d.Metadata {
		md[k] = v
	}
	return md
}
