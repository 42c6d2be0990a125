// Package ingest turns upload form fields into document text.
package ingest

import (
	"strings"

	"github.com/ppiankov/debatecards/internal/model"
)

// Upload is the raw content of an upload request
type Upload struct {
	Title     string
	Kind      model.SourceKind
	Text      string
	SourceURL string
	File      []byte // nil when no file part was sent
}

// Resolve returns the document text for an upload. Only pasted text is
// supported; PDF and Google Docs sources are rejected with a hint to paste.
func Resolve(u Upload) (string, error) {
	switch {
	case u.Kind == model.SourceKindText && strings.TrimSpace(u.Text) != "":
		return u.Text, nil
	case u.Kind == model.SourceKindPDF && u.File != nil:
		return "", model.NewInputError("PDF parsing not implemented. Please copy and paste your text content directly.")
	case u.Kind == model.SourceKindGoogleDocs && u.SourceURL != "":
		return "", model.NewInputError("Google Docs integration not implemented. Please copy and paste your text content directly.")
	default:
		return "", model.NewInputError("Invalid file type or missing content")
	}
}

// NewDocument builds the document to persist for an upload whose text resolved
func NewDocument(u Upload, text string) model.Document {
	title := strings.TrimSpace(u.Title)
	if title == "" {
		title = model.DefaultDocumentTitle
	}

	doc := model.Document{
		Title:        title,
		OriginalText: text,
		SourceKind:   u.Kind,
	}
	if u.SourceURL != "" {
		sourceURL := u.SourceURL
		doc.SourceURL = &sourceURL
	}
	return doc
}
