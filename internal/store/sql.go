package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver

	"github.com/ppiankov/debatecards/internal/model"
)

// dialect captures the few differences between SQLite and Postgres
type dialect struct {
	driver string
	schema string
	// numbered placeholders ($1, $2, ...) instead of ?
	numbered bool
}

var sqliteDialect = dialect{
	driver: "sqlite3",
	schema: `
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		original_text TEXT NOT NULL,
		processed_text TEXT,
		file_type TEXT NOT NULL,
		source_url TEXT,
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS debate_cards (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id INTEGER NOT NULL REFERENCES documents(id),
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		relevance_score TEXT NOT NULL,
		category TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_cards_document_id ON debate_cards(document_id);
	CREATE TABLE IF NOT EXISTS analyses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id INTEGER NOT NULL REFERENCES documents(id),
		prompt TEXT NOT NULL,
		settings TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_analyses_document_id ON analyses(document_id);
	`,
}

var postgresDialect = dialect{
	driver:   "pgx",
	numbered: true,
	schema: `
	CREATE TABLE IF NOT EXISTS documents (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		original_text TEXT NOT NULL,
		processed_text TEXT,
		file_type TEXT NOT NULL,
		source_url TEXT,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS debate_cards (
		id BIGSERIAL PRIMARY KEY,
		document_id BIGINT NOT NULL REFERENCES documents(id),
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		relevance_score TEXT NOT NULL,
		category TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_cards_document_id ON debate_cards(document_id);
	CREATE TABLE IF NOT EXISTS analyses (
		id BIGSERIAL PRIMARY KEY,
		document_id BIGINT NOT NULL REFERENCES documents(id),
		prompt TEXT NOT NULL,
		settings JSONB NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_analyses_document_id ON analyses(document_id);
	`,
}

// SQLStore implements Store over database/sql (SQLite or Postgres)
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// OpenSQLite opens (or creates) a SQLite database file
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	if path == "" {
		path = filepath.Join(".debatecards", "debatecards.db")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open(sqliteDialect.driver, path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One writer avoids "database is locked" under concurrent requests
	db.SetMaxOpenConns(1)

	return newSQLStore(ctx, db, sqliteDialect)
}

// OpenPostgres connects to Postgres using a pgx DSN
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is not set (store.dsn or DATABASE_URL)")
	}

	db, err := sql.Open(postgresDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return newSQLStore(ctx, db, postgresDialect)
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect) (*SQLStore, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &SQLStore{db: db, dialect: d}, nil
}

// rebind rewrites ? placeholders for drivers that need numbered ones
func (s *SQLStore) rebind(query string) string {
	if !s.dialect.numbered {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) insert(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := s.db.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *SQLStore) CreateDocument(ctx context.Context, doc model.Document) (*model.Document, error) {
	doc.CreatedAt = time.Now().UTC()

	id, err := s.insert(ctx, `
		INSERT INTO documents (title, original_text, processed_text, file_type, source_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		doc.Title, doc.OriginalText, nullString(doc.ProcessedText), string(doc.SourceKind), nullString(doc.SourceURL), doc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	doc.ID = id
	return &doc, nil
}

func (s *SQLStore) GetDocument(ctx context.Context, id int64) (*model.Document, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, title, original_text, processed_text, file_type, source_url, created_at
		FROM documents WHERE id = ?`), id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &model.NotFoundError{Kind: "document", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func (s *SQLStore) ListDocuments(ctx context.Context) ([]model.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, original_text, processed_text, file_type, source_url, created_at
		FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	docs := []model.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (s *SQLStore) SetProcessedText(ctx context.Context, id int64, text string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE documents SET processed_text = ? WHERE id = ?`), text, id)
	if err != nil {
		return fmt.Errorf("update processed text: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &model.NotFoundError{Kind: "document", ID: id}
	}
	return nil
}

func (s *SQLStore) CreateCard(ctx context.Context, card model.Card) (*model.Card, error) {
	if err := s.requireDocument(ctx, card.DocumentID); err != nil {
		return nil, err
	}

	card.CreatedAt = time.Now().UTC()
	id, err := s.insert(ctx, `
		INSERT INTO debate_cards (document_id, title, content, relevance_score, category, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		card.DocumentID, card.Title, card.Content, string(card.Relevance), string(card.Category), card.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert card: %w", err)
	}

	card.ID = id
	return &card, nil
}

func (s *SQLStore) SaveResult(ctx context.Context, documentID int64, processedText string, cards []model.Card) (saved []model.Card, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, s.rebind(`UPDATE documents SET processed_text = ? WHERE id = ?`), processedText, documentID)
	if err != nil {
		return nil, fmt.Errorf("update processed text: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, &model.NotFoundError{Kind: "document", ID: documentID}
	}

	saved = make([]model.Card, 0, len(cards))
	for _, card := range cards {
		card.DocumentID = documentID
		card.CreatedAt = time.Now().UTC()
		err = tx.QueryRowContext(ctx, s.rebind(`
			INSERT INTO debate_cards (document_id, title, content, relevance_score, category, created_at)
			VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
			card.DocumentID, card.Title, card.Content, string(card.Relevance), string(card.Category), card.CreatedAt).Scan(&card.ID)
		if err != nil {
			return nil, fmt.Errorf("insert card: %w", err)
		}
		saved = append(saved, card)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return saved, nil
}

func (s *SQLStore) ListCards(ctx context.Context, documentID int64) ([]model.Card, error) {
	if err := s.requireDocument(ctx, documentID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, document_id, title, content, relevance_score, category, created_at
		FROM debate_cards WHERE document_id = ? ORDER BY id`), documentID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cards := []model.Card{}
	for rows.Next() {
		var (
			card      model.Card
			relevance string
			category  string
		)
		if err := rows.Scan(&card.ID, &card.DocumentID, &card.Title, &card.Content, &relevance, &category, &card.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		card.Relevance = model.Relevance(relevance)
		card.Category = model.Category(category)
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

func (s *SQLStore) CreateAnalysis(ctx context.Context, analysis model.Analysis) (*model.Analysis, error) {
	if err := s.requireDocument(ctx, analysis.DocumentID); err != nil {
		return nil, err
	}

	settings, err := json.Marshal(analysis.Settings)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}

	analysis.Status = model.StatusPending
	analysis.CreatedAt = time.Now().UTC()
	id, err := s.insert(ctx, `
		INSERT INTO analyses (document_id, prompt, settings, status, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		analysis.DocumentID, analysis.Prompt, string(settings), string(analysis.Status), analysis.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert analysis: %w", err)
	}

	analysis.ID = id
	return &analysis, nil
}

func (s *SQLStore) GetAnalysis(ctx context.Context, id int64) (*model.Analysis, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, document_id, prompt, settings, status, created_at
		FROM analyses WHERE id = ?`), id)

	analysis, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &model.NotFoundError{Kind: "analysis", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	return analysis, nil
}

func (s *SQLStore) ListAnalyses(ctx context.Context, documentID int64) ([]model.Analysis, error) {
	if err := s.requireDocument(ctx, documentID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, document_id, prompt, settings, status, created_at
		FROM analyses WHERE document_id = ? ORDER BY id`), documentID)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	analyses := []model.Analysis{}
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		analyses = append(analyses, *analysis)
	}
	return analyses, rows.Err()
}

// UpdateAnalysisStatus only moves a row whose current status may precede the
// new one, so concurrent writers cannot take a terminal analysis backwards.
func (s *SQLStore) UpdateAnalysisStatus(ctx context.Context, id int64, status model.AnalysisStatus) error {
	preds := status.Predecessors()
	if len(preds) > 0 {
		args := []any{string(status), id}
		placeholders := make([]string, len(preds))
		for i, p := range preds {
			placeholders[i] = "?"
			args = append(args, string(p))
		}

		query := fmt.Sprintf(`UPDATE analyses SET status = ? WHERE id = ? AND status IN (%s)`, strings.Join(placeholders, ", "))
		res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
		if err != nil {
			return fmt.Errorf("update analysis status: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update analysis status: %w", err)
		}
		if n == 1 {
			return nil
		}
	}

	current, err := s.GetAnalysis(ctx, id)
	if err != nil {
		return err
	}
	return invalidTransition(id, current.Status, status)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) requireDocument(ctx context.Context, id int64) error {
	var exists int
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM documents WHERE id = ?`), id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.NotFoundError{Kind: "document", ID: id}
	}
	if err != nil {
		return fmt.Errorf("lookup document: %w", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var (
		doc           model.Document
		processedText sql.NullString
		kind          string
		sourceURL     sql.NullString
	)
	if err := row.Scan(&doc.ID, &doc.Title, &doc.OriginalText, &processedText, &kind, &sourceURL, &doc.CreatedAt); err != nil {
		return nil, err
	}
	doc.SourceKind = model.SourceKind(kind)
	if processedText.Valid {
		doc.ProcessedText = &processedText.String
	}
	if sourceURL.Valid {
		doc.SourceURL = &sourceURL.String
	}
	return &doc, nil
}

func scanAnalysis(row rowScanner) (*model.Analysis, error) {
	var (
		analysis model.Analysis
		settings []byte
		status   string
	)
	if err := row.Scan(&analysis.ID, &analysis.DocumentID, &analysis.Prompt, &settings, &status, &analysis.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(settings, &analysis.Settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	analysis.Status = model.AnalysisStatus(status)
	return &analysis, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
