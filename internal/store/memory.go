package store

import (
	"context"
	"sync"
	"time"

	"github.com/ppiankov/debatecards/internal/model"
)

// MemoryStore keeps everything in process memory
type MemoryStore struct {
	mu        sync.RWMutex
	documents map[int64]model.Document
	cards     map[int64]model.Card
	analyses  map[int64]model.Analysis
	nextDoc   int64
	nextCard  int64
	nextRun   int64
	now       func() time.Time
}

// NewMemoryStore creates an empty memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		documents: make(map[int64]model.Document),
		cards:     make(map[int64]model.Card),
		analyses:  make(map[int64]model.Analysis),
		now:       time.Now,
	}
}

func (s *MemoryStore) CreateDocument(ctx context.Context, doc model.Document) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextDoc++
	doc.ID = s.nextDoc
	doc.CreatedAt = s.now()
	doc.ProcessedText = cloneString(doc.ProcessedText)
	doc.SourceURL = cloneString(doc.SourceURL)
	s.documents[doc.ID] = doc

	return copyDocument(doc), nil
}

func (s *MemoryStore) GetDocument(ctx context.Context, id int64) (*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, &model.NotFoundError{Kind: "document", ID: id}
	}
	return copyDocument(doc), nil
}

func (s *MemoryStore) ListDocuments(ctx context.Context) ([]model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]model.Document, 0, len(s.documents))
	for id := int64(1); id <= s.nextDoc; id++ {
		if doc, ok := s.documents[id]; ok {
			docs = append(docs, *copyDocument(doc))
		}
	}
	return docs, nil
}

func (s *MemoryStore) SetProcessedText(ctx context.Context, id int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[id]
	if !ok {
		return &model.NotFoundError{Kind: "document", ID: id}
	}
	doc.ProcessedText = &text
	s.documents[id] = doc
	return nil
}

func (s *MemoryStore) CreateCard(ctx context.Context, card model.Card) (*model.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[card.DocumentID]; !ok {
		return nil, &model.NotFoundError{Kind: "document", ID: card.DocumentID}
	}

	s.nextCard++
	card.ID = s.nextCard
	card.CreatedAt = s.now()
	s.cards[card.ID] = card

	return &card, nil
}

func (s *MemoryStore) SaveResult(ctx context.Context, documentID int64, processedText string, cards []model.Card) ([]model.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[documentID]
	if !ok {
		return nil, &model.NotFoundError{Kind: "document", ID: documentID}
	}

	saved := make([]model.Card, 0, len(cards))
	for _, card := range cards {
		s.nextCard++
		card.ID = s.nextCard
		card.DocumentID = documentID
		card.CreatedAt = s.now()
		s.cards[card.ID] = card
		saved = append(saved, card)
	}

	doc.ProcessedText = &processedText
	s.documents[documentID] = doc
	return saved, nil
}

func (s *MemoryStore) ListCards(ctx context.Context, documentID int64) ([]model.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.documents[documentID]; !ok {
		return nil, &model.NotFoundError{Kind: "document", ID: documentID}
	}

	cards := []model.Card{}
	for id := int64(1); id <= s.nextCard; id++ {
		if card, ok := s.cards[id]; ok && card.DocumentID == documentID {
			cards = append(cards, card)
		}
	}
	return cards, nil
}

func (s *MemoryStore) CreateAnalysis(ctx context.Context, analysis model.Analysis) (*model.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[analysis.DocumentID]; !ok {
		return nil, &model.NotFoundError{Kind: "document", ID: analysis.DocumentID}
	}

	s.nextRun++
	analysis.ID = s.nextRun
	analysis.Status = model.StatusPending
	analysis.CreatedAt = s.now()
	s.analyses[analysis.ID] = analysis

	return &analysis, nil
}

func (s *MemoryStore) GetAnalysis(ctx context.Context, id int64) (*model.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	analysis, ok := s.analyses[id]
	if !ok {
		return nil, &model.NotFoundError{Kind: "analysis", ID: id}
	}
	return &analysis, nil
}

func (s *MemoryStore) ListAnalyses(ctx context.Context, documentID int64) ([]model.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.documents[documentID]; !ok {
		return nil, &model.NotFoundError{Kind: "document", ID: documentID}
	}

	analyses := []model.Analysis{}
	for id := int64(1); id <= s.nextRun; id++ {
		if analysis, ok := s.analyses[id]; ok && analysis.DocumentID == documentID {
			analyses = append(analyses, analysis)
		}
	}
	return analyses, nil
}

func (s *MemoryStore) UpdateAnalysisStatus(ctx context.Context, id int64, status model.AnalysisStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	analysis, ok := s.analyses[id]
	if !ok {
		return &model.NotFoundError{Kind: "analysis", ID: id}
	}
	if !analysis.Status.CanTransitionTo(status) {
		return invalidTransition(id, analysis.Status, status)
	}

	analysis.Status = status
	s.analyses[id] = analysis
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// copyDocument detaches the optional fields so callers cannot mutate stored state
func copyDocument(doc model.Document) *model.Document {
	doc.ProcessedText = cloneString(doc.ProcessedText)
	doc.SourceURL = cloneString(doc.SourceURL)
	return &doc
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
