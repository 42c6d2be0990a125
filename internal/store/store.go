// Package store persists documents, cards and analyses.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/debatecards/internal/model"
)

// Store is the persistence boundary. Missing ids return errors matching
// model.ErrNotFound; illegal status changes return model.ErrInvalidTransition.
type Store interface {
	CreateDocument(ctx context.Context, doc model.Document) (*model.Document, error)
	GetDocument(ctx context.Context, id int64) (*model.Document, error)
	ListDocuments(ctx context.Context) ([]model.Document, error)
	SetProcessedText(ctx context.Context, id int64, text string) error

	CreateCard(ctx context.Context, card model.Card) (*model.Card, error)
	ListCards(ctx context.Context, documentID int64) ([]model.Card, error)

	// SaveResult stores the processed text and the cards of one analysis
	// together; on error nothing is written
	SaveResult(ctx context.Context, documentID int64, processedText string, cards []model.Card) ([]model.Card, error)

	// CreateAnalysis always records the analysis as pending
	CreateAnalysis(ctx context.Context, analysis model.Analysis) (*model.Analysis, error)
	GetAnalysis(ctx context.Context, id int64) (*model.Analysis, error)
	ListAnalyses(ctx context.Context, documentID int64) ([]model.Analysis, error)
	UpdateAnalysisStatus(ctx context.Context, id int64, status model.AnalysisStatus) error

	Close() error
}

// Open creates the store selected by cfg.Driver
func Open(ctx context.Context, cfg model.StoreConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite", "sqlite3":
		return OpenSQLite(ctx, cfg.DSN)
	case "postgres", "pgx":
		return OpenPostgres(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver: %s (supported: memory, sqlite, postgres)", cfg.Driver)
	}
}

func invalidTransition(id int64, from, to model.AnalysisStatus) error {
	return fmt.Errorf("analysis %d: %s -> %s: %w", id, from, to, model.ErrInvalidTransition)
}
