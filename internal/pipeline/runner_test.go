package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/ppiankov/debatecards/internal/llm"
	"github.com/ppiankov/debatecards/internal/model"
	"github.com/ppiankov/debatecards/internal/store"
)

func seedDocument(t *testing.T, s store.Store, text string) *model.Document {
	t.Helper()
	doc, err := s.CreateDocument(context.Background(), model.Document{
		Title:        "Brief",
		OriginalText: text,
		SourceKind:   model.SourceKindText,
	})
	if err != nil {
		t.Fatalf("Failed to create document: %v", err)
	}
	return doc
}

func TestRunner_AnalyzeDocument_Completed(t *testing.T) {
	s := store.NewMemoryStore()
	doc := seedDocument(t, s, economicDoc)
	runner := NewRunner(newTestPipeline(&mockProvider{summary: "Narrative."}), s)

	outcome, err := runner.AnalyzeDocument(context.Background(), doc.ID, "economic research", model.AnalysisSettings{HighlightStatistics: true})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if outcome.Analysis.Status != model.StatusCompleted {
		t.Errorf("Expected completed analysis in outcome, got %s", outcome.Analysis.Status)
	}
	if outcome.Summary != "Narrative." {
		t.Errorf("Expected summary, got %q", outcome.Summary)
	}
	if len(outcome.Cards) != 2 {
		t.Fatalf("Expected 2 cards, got %d", len(outcome.Cards))
	}
	for _, card := range outcome.Cards {
		if card.ID == 0 || card.DocumentID != doc.ID {
			t.Errorf("Expected persisted card for document %d, got %+v", doc.ID, card)
		}
	}

	stored, err := s.GetAnalysis(context.Background(), outcome.Analysis.ID)
	if err != nil {
		t.Fatalf("Expected stored analysis, got %v", err)
	}
	if stored.Status != model.StatusCompleted {
		t.Errorf("Expected stored status completed, got %s", stored.Status)
	}

	updated, _ := s.GetDocument(context.Background(), doc.ID)
	if updated.ProcessedText == nil || *updated.ProcessedText != outcome.ProcessedText {
		t.Error("Expected processed text to be stored on the document")
	}
	if updated.OriginalText != economicDoc {
		t.Error("Expected original text to stay unchanged")
	}

	cards, _ := s.ListCards(context.Background(), doc.ID)
	if len(cards) != 2 {
		t.Errorf("Expected 2 stored cards, got %d", len(cards))
	}
}

func TestRunner_AnalyzeDocument_UpstreamFailureMarksFailed(t *testing.T) {
	s := store.NewMemoryStore()
	doc := seedDocument(t, s, economicDoc)
	runner := NewRunner(newTestPipeline(&mockProvider{err: errors.New("network down")}), s)

	_, err := runner.AnalyzeDocument(context.Background(), doc.ID, "economic", model.AnalysisSettings{})

	var upstream *model.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("Expected UpstreamError, got %v", err)
	}

	analyses, _ := s.ListAnalyses(context.Background(), doc.ID)
	if len(analyses) != 1 {
		t.Fatalf("Expected 1 analysis, got %d", len(analyses))
	}
	if analyses[0].Status != model.StatusFailed {
		t.Errorf("Expected failed status, got %s", analyses[0].Status)
	}

	cards, _ := s.ListCards(context.Background(), doc.ID)
	if len(cards) != 0 {
		t.Errorf("Expected no cards after failure, got %d", len(cards))
	}
	updated, _ := s.GetDocument(context.Background(), doc.ID)
	if updated.ProcessedText != nil {
		t.Error("Expected processed text to stay unset after failure")
	}
}

func TestRunner_AnalyzeDocument_NotFound(t *testing.T) {
	runner := NewRunner(newTestPipeline(nil), store.NewMemoryStore())

	_, err := runner.AnalyzeDocument(context.Background(), 42, "prompt", model.AnalysisSettings{})
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRunner_AnalyzeDocument_EmptyPrompt(t *testing.T) {
	s := store.NewMemoryStore()
	doc := seedDocument(t, s, economicDoc)
	runner := NewRunner(newTestPipeline(nil), s)

	_, err := runner.AnalyzeDocument(context.Background(), doc.ID, "   ", model.AnalysisSettings{})

	var inputErr *model.InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("Expected InputError, got %v", err)
	}

	analyses, _ := s.ListAnalyses(context.Background(), doc.ID)
	if len(analyses) != 0 {
		t.Errorf("Expected no analysis record for a rejected request, got %d", len(analyses))
	}
}

func TestRunner_AnalyzeDocument_RerunOverwritesProcessedText(t *testing.T) {
	s := store.NewMemoryStore()
	doc := seedDocument(t, s, economicDoc)
	runner := NewRunner(newTestPipeline(nil), s)

	if _, err := runner.AnalyzeDocument(context.Background(), doc.ID, "economic", model.AnalysisSettings{BoldKeyArguments: true}); err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	second, err := runner.AnalyzeDocument(context.Background(), doc.ID, "economic", model.AnalysisSettings{})
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	updated, _ := s.GetDocument(context.Background(), doc.ID)
	if *updated.ProcessedText != second.ProcessedText || second.ProcessedText != economicDoc {
		t.Errorf("Expected processed text from the latest run, got %q", *updated.ProcessedText)
	}

	analyses, _ := s.ListAnalyses(context.Background(), doc.ID)
	if len(analyses) != 2 {
		t.Errorf("Expected 2 analyses, got %d", len(analyses))
	}
}

// statusRecorder reads the document's latest analysis status while the summary is being produced
type statusRecorder struct {
	store      store.Store
	documentID int64
	err        error
	seen       []model.AnalysisStatus
}

func (p *statusRecorder) Name() string { return "recorder" }

func (p *statusRecorder) Summarize(ctx context.Context, req llm.SummarizeRequest) (*llm.SummarizeResponse, error) {
	analyses, err := p.store.ListAnalyses(ctx, p.documentID)
	if err != nil {
		return nil, err
	}
	p.seen = append(p.seen, analyses[len(analyses)-1].Status)
	if p.err != nil {
		return nil, p.err
	}
	return &llm.SummarizeResponse{Summary: "Narrative."}, nil
}

func TestRunner_AnalyzeDocument_ProcessingDuringRun(t *testing.T) {
	for _, tt := range []struct {
		name     string
		err      error
		terminal model.AnalysisStatus
	}{
		{"completed", nil, model.StatusCompleted},
		{"failed", errors.New("service unavailable"), model.StatusFailed},
	} {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := store.NewMemoryStore()
			doc := seedDocument(t, s, economicDoc)
			recorder := &statusRecorder{store: s, documentID: doc.ID, err: tt.err}
			runner := NewRunner(newTestPipeline(recorder), s)

			_, _ = runner.AnalyzeDocument(ctx, doc.ID, "economic", model.AnalysisSettings{})

			if len(recorder.seen) != 1 || recorder.seen[0] != model.StatusProcessing {
				t.Fatalf("Expected processing status while running, got %v", recorder.seen)
			}

			analyses, _ := s.ListAnalyses(ctx, doc.ID)
			id := analyses[0].ID
			if analyses[0].Status != tt.terminal {
				t.Fatalf("Expected %s, got %s", tt.terminal, analyses[0].Status)
			}

			for _, next := range []model.AnalysisStatus{model.StatusPending, model.StatusProcessing, model.StatusCompleted, model.StatusFailed} {
				if err := s.UpdateAnalysisStatus(ctx, id, next); !errors.Is(err, model.ErrInvalidTransition) {
					t.Errorf("Expected %s -> %s to be rejected, got %v", tt.terminal, next, err)
				}
			}

			stored, _ := s.GetAnalysis(ctx, id)
			if stored.Status != tt.terminal {
				t.Errorf("Expected status to stay %s, got %s", tt.terminal, stored.Status)
			}
		})
	}
}

// failingResultStore rejects the result write after the analysis has started
type failingResultStore struct {
	*store.MemoryStore
}

func (s failingResultStore) SaveResult(ctx context.Context, documentID int64, processedText string, cards []model.Card) ([]model.Card, error) {
	return nil, errors.New("disk full")
}

func TestRunner_AnalyzeDocument_ResultWriteFailure(t *testing.T) {
	ctx := context.Background()
	s := failingResultStore{MemoryStore: store.NewMemoryStore()}
	doc := seedDocument(t, s, economicDoc)
	runner := NewRunner(newTestPipeline(&mockProvider{summary: "Narrative."}), s)

	if _, err := runner.AnalyzeDocument(ctx, doc.ID, "economic research", model.AnalysisSettings{}); err == nil {
		t.Fatal("Expected error when results cannot be stored")
	}

	analyses, _ := s.ListAnalyses(ctx, doc.ID)
	if len(analyses) != 1 || analyses[0].Status != model.StatusFailed {
		t.Fatalf("Expected one failed analysis, got %+v", analyses)
	}
	cards, _ := s.ListCards(ctx, doc.ID)
	if len(cards) != 0 {
		t.Errorf("Expected no cards, got %d", len(cards))
	}
	updated, _ := s.GetDocument(ctx, doc.ID)
	if updated.ProcessedText != nil {
		t.Error("Expected processed text to stay unset")
	}
}
