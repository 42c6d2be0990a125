package model

import "time"

// Document is an uploaded source text
type Document struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	OriginalText  string     `json:"originalText"`
	ProcessedText *string    `json:"processedText"` // Highlighted text from the latest analysis
	SourceKind    SourceKind `json:"fileType"`
	SourceURL     *string    `json:"sourceUrl"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// SourceKind identifies how a document was supplied
type SourceKind string

const (
	SourceKindPDF        SourceKind = "pdf"
	SourceKindGoogleDocs SourceKind = "google_docs"
	SourceKindText       SourceKind = "text"
)

// Valid reports whether k is one of the known source kinds
func (k SourceKind) Valid() bool {
	switch k {
	case SourceKindPDF, SourceKindGoogleDocs, SourceKindText:
		return true
	default:
		return false
	}
}

// DefaultDocumentTitle is used when an upload carries no title
const DefaultDocumentTitle = "Untitled Document"

// AnalysisSettings are the user toggles applied to a single analysis run
type AnalysisSettings struct {
	BoldKeyArguments    bool `json:"boldKeyArguments" yaml:"bold_key_arguments" mapstructure:"bold_key_arguments"`
	HighlightStatistics bool `json:"highlightStatistics" yaml:"highlight_statistics" mapstructure:"highlight_statistics"`
	IncludeCitations    bool `json:"includeCitations" yaml:"include_citations" mapstructure:"include_citations"` // Reserved, no effect yet
}
