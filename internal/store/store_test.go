package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/debatecards/internal/model"
)

type storeFactory func(t *testing.T) Store

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newMemoryStore(t *testing.T) Store {
	return NewMemoryStore()
}

func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	factories := map[string]storeFactory{
		"memory": newMemoryStore,
		"sqlite": newSQLiteStore,
	}
	if dsn := os.Getenv("DEBATECARDS_TEST_POSTGRES_DSN"); dsn != "" {
		factories["postgres"] = func(t *testing.T) Store {
			s, err := OpenPostgres(context.Background(), dsn)
			require.NoError(t, err)
			_, err = s.db.Exec(`TRUNCATE debate_cards, analyses, documents RESTART IDENTITY`)
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		}
	}

	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			fn(t, factory(t))
		})
	}
}

func createDoc(t *testing.T, s Store, title string) *model.Document {
	t.Helper()
	sourceURL := "https://example.com/" + title
	doc, err := s.CreateDocument(context.Background(), model.Document{
		Title:        title,
		OriginalText: "Original text for " + title,
		SourceKind:   model.SourceKindText,
		SourceURL:    &sourceURL,
	})
	require.NoError(t, err)
	return doc
}

func TestStore_Documents(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		first := createDoc(t, s, "first")
		second := createDoc(t, s, "second")
		assert.NotZero(t, first.ID)
		assert.NotEqual(t, first.ID, second.ID)
		assert.False(t, first.CreatedAt.IsZero())

		got, err := s.GetDocument(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "first", got.Title)
		assert.Equal(t, model.SourceKindText, got.SourceKind)
		require.NotNil(t, got.SourceURL)
		assert.Equal(t, "https://example.com/first", *got.SourceURL)
		assert.Nil(t, got.ProcessedText)

		require.NoError(t, s.SetProcessedText(ctx, first.ID, "<strong>data</strong>"))
		got, err = s.GetDocument(ctx, first.ID)
		require.NoError(t, err)
		require.NotNil(t, got.ProcessedText)
		assert.Equal(t, "<strong>data</strong>", *got.ProcessedText)
		assert.Equal(t, "Original text for first", got.OriginalText)

		docs, err := s.ListDocuments(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, first.ID, docs[0].ID)
		assert.Equal(t, second.ID, docs[1].ID)
	})
}

func TestStore_NotFound(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		_, err := s.GetDocument(ctx, 999)
		assert.ErrorIs(t, err, model.ErrNotFound)

		assert.ErrorIs(t, s.SetProcessedText(ctx, 999, "x"), model.ErrNotFound)

		_, err = s.CreateCard(ctx, model.Card{DocumentID: 999, Title: "t", Content: "c"})
		assert.ErrorIs(t, err, model.ErrNotFound)

		_, err = s.ListCards(ctx, 999)
		assert.ErrorIs(t, err, model.ErrNotFound)

		_, err = s.CreateAnalysis(ctx, model.Analysis{DocumentID: 999, Prompt: "p"})
		assert.ErrorIs(t, err, model.ErrNotFound)

		_, err = s.GetAnalysis(ctx, 999)
		assert.ErrorIs(t, err, model.ErrNotFound)

		assert.ErrorIs(t, s.UpdateAnalysisStatus(ctx, 999, model.StatusProcessing), model.ErrNotFound)
	})
}

func TestStore_Cards(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		doc := createDoc(t, s, "cards")
		other := createDoc(t, s, "other")

		for i, title := range []string{"Evidence 1: a...", "Evidence 3: b..."} {
			card, err := s.CreateCard(ctx, model.Card{
				DocumentID: doc.ID,
				Title:      title,
				Content:    "content " + title,
				Relevance:  model.RelevanceHigh,
				Category:   model.CategoryEconomicImpact,
			})
			require.NoError(t, err, "card %d", i)
			assert.NotZero(t, card.ID)
		}

		cards, err := s.ListCards(ctx, doc.ID)
		require.NoError(t, err)
		require.Len(t, cards, 2)
		assert.Equal(t, "Evidence 1: a...", cards[0].Title)
		assert.Equal(t, "Evidence 3: b...", cards[1].Title)
		assert.Equal(t, model.RelevanceHigh, cards[0].Relevance)
		assert.Equal(t, model.CategoryEconomicImpact, cards[0].Category)
		assert.Equal(t, doc.ID, cards[0].DocumentID)

		none, err := s.ListCards(ctx, other.ID)
		require.NoError(t, err)
		assert.Empty(t, none)
		assert.NotNil(t, none)
	})
}

func TestStore_SaveResult(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		doc := createDoc(t, s, "result")

		saved, err := s.SaveResult(ctx, doc.ID, "<mark>45%</mark> growth", []model.Card{
			{Title: "Evidence 1: a...", Content: "a", Relevance: model.RelevanceHigh, Category: model.CategoryEconomicImpact},
			{Title: "Evidence 2: b...", Content: "b", Relevance: model.RelevanceMedium, Category: model.CategoryGeneralEvidence},
		})
		require.NoError(t, err)
		require.Len(t, saved, 2)
		assert.NotZero(t, saved[0].ID)
		assert.Equal(t, doc.ID, saved[1].DocumentID)

		got, err := s.GetDocument(ctx, doc.ID)
		require.NoError(t, err)
		require.NotNil(t, got.ProcessedText)
		assert.Equal(t, "<mark>45%</mark> growth", *got.ProcessedText)

		cards, err := s.ListCards(ctx, doc.ID)
		require.NoError(t, err)
		assert.Len(t, cards, 2)

		_, err = s.SaveResult(ctx, 999, "x", []model.Card{{Title: "t", Content: "c"}})
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestSQLiteStore_SaveResultRollsBack(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.db.Exec(`CREATE TRIGGER reject_card BEFORE INSERT ON debate_cards
		WHEN NEW.title = 'rejected' BEGIN SELECT RAISE(ABORT, 'card rejected'); END`)
	require.NoError(t, err)

	doc := createDoc(t, s, "rollback")
	_, err = s.SaveResult(ctx, doc.ID, "processed", []model.Card{
		{Title: "Evidence 1: ok...", Content: "ok"},
		{Title: "rejected", Content: "second"},
	})
	require.Error(t, err)

	got, err := s.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ProcessedText)

	cards, err := s.ListCards(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestStore_AnalysisLifecycle(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		doc := createDoc(t, s, "lifecycle")

		settings := model.AnalysisSettings{BoldKeyArguments: true, HighlightStatistics: true}
		analysis, err := s.CreateAnalysis(ctx, model.Analysis{
			DocumentID: doc.ID,
			Prompt:     "Find economic arguments",
			Settings:   settings,
			Status:     model.StatusCompleted, // ignored
		})
		require.NoError(t, err)
		assert.Equal(t, model.StatusPending, analysis.Status)

		require.NoError(t, s.UpdateAnalysisStatus(ctx, analysis.ID, model.StatusProcessing))
		require.NoError(t, s.UpdateAnalysisStatus(ctx, analysis.ID, model.StatusCompleted))

		got, err := s.GetAnalysis(ctx, analysis.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, got.Status)
		assert.Equal(t, settings, got.Settings)
		assert.Equal(t, "Find economic arguments", got.Prompt)

		// Terminal states never move
		for _, next := range []model.AnalysisStatus{model.StatusPending, model.StatusProcessing, model.StatusFailed} {
			err := s.UpdateAnalysisStatus(ctx, analysis.ID, next)
			assert.ErrorIs(t, err, model.ErrInvalidTransition, "completed -> %s", next)
		}

		got, err = s.GetAnalysis(ctx, analysis.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, got.Status)

		list, err := s.ListAnalyses(ctx, doc.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, analysis.ID, list[0].ID)
	})
}

func TestStore_PendingMayFail(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		doc := createDoc(t, s, "pending-fail")

		analysis, err := s.CreateAnalysis(ctx, model.Analysis{DocumentID: doc.ID, Prompt: "p"})
		require.NoError(t, err)

		assert.ErrorIs(t, s.UpdateAnalysisStatus(ctx, analysis.ID, model.StatusCompleted), model.ErrInvalidTransition)
		require.NoError(t, s.UpdateAnalysisStatus(ctx, analysis.ID, model.StatusFailed))
	})
}

func TestStore_ConcurrentTerminalUpdates(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		doc := createDoc(t, s, "race")

		analysis, err := s.CreateAnalysis(ctx, model.Analysis{DocumentID: doc.ID, Prompt: "p"})
		require.NoError(t, err)
		require.NoError(t, s.UpdateAnalysisStatus(ctx, analysis.ID, model.StatusProcessing))

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, next := range []model.AnalysisStatus{model.StatusCompleted, model.StatusFailed} {
			wg.Add(1)
			go func(i int, next model.AnalysisStatus) {
				defer wg.Done()
				errs[i] = s.UpdateAnalysisStatus(ctx, analysis.ID, next)
			}(i, next)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, model.ErrInvalidTransition)
			}
		}
		assert.Equal(t, 1, succeeded, "exactly one terminal status must win")
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, model.StoreConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, model.StoreConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "nested", "db.sqlite")})
	require.NoError(t, err)
	assert.IsType(t, &SQLStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, model.StoreConfig{Driver: "mongodb"})
	assert.Error(t, err)
}

func TestSQLStore_Rebind(t *testing.T) {
	pg := &SQLStore{dialect: postgresDialect}
	assert.Equal(t, "UPDATE t SET a = $1 WHERE id = $2 AND s IN ($3, $4)",
		pg.rebind("UPDATE t SET a = ? WHERE id = ? AND s IN (?, ?)"))

	lite := &SQLStore{dialect: sqliteDialect}
	assert.Equal(t, "SELECT ? FROM t", lite.rebind("SELECT ? FROM t"))
}

func TestSQLStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	doc := createDoc(t, s, "persisted")
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	got, err := s.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Title)
}
