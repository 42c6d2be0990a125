package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/debatecards/internal/model"
)

// CardExtractor turns document text into a short list of debate cards
type CardExtractor struct {
	maxCandidates int // Sentences considered, in document order
	minLength     int // Trimmed rune length a sentence needs to become a card
	maxCards      int
	titleLength   int // Runes of the sentence copied into the title
}

// NewCardExtractor creates an extractor with the standard limits
func NewCardExtractor() *CardExtractor {
	return &CardExtractor{
		maxCandidates: 5,
		minLength:     50,
		maxCards:      3,
		titleLength:   50,
	}
}

// NewCardExtractorFromConfig creates an extractor, falling back to the standard limit for unset fields
func NewCardExtractorFromConfig(cfg model.ExtractionConfig) *CardExtractor {
	e := NewCardExtractor()
	if cfg.MaxCandidates > 0 {
		e.maxCandidates = cfg.MaxCandidates
	}
	if cfg.MinCardLength > 0 {
		e.minLength = cfg.MinCardLength
	}
	if cfg.MaxCards > 0 {
		e.maxCards = cfg.MaxCards
	}
	if cfg.TitleMaxLength > 0 {
		e.titleLength = cfg.TitleMaxLength
	}
	return e
}

// Extract builds cards from the first sentences of text.
// Card numbers follow the sentence position among the considered sentences,
// so skipped sentences leave gaps ("Evidence 1", "Evidence 3").
// Fewer cards than the maximum are returned as-is, never padded.
func (e *CardExtractor) Extract(text, prompt string) []model.Card {
	sentences := SplitSentences(text)
	if len(sentences) > e.maxCandidates {
		sentences = sentences[:e.maxCandidates]
	}

	keywords := PromptKeywords(prompt)
	cards := make([]model.Card, 0, e.maxCards)

	for i, sentence := range sentences {
		if len(cards) >= e.maxCards {
			break
		}

		sentence = strings.TrimSpace(sentence)
		if utf8.RuneCountInString(sentence) < e.minLength {
			continue
		}

		cards = append(cards, model.Card{
			Title:     fmt.Sprintf("Evidence %d: %s...", i+1, truncateRunes(sentence, e.titleLength)),
			Content:   sentence,
			Relevance: scoreKeywords(strings.ToLower(sentence), keywords),
			Category:  Classify(sentence, prompt),
		})
	}

	return cards
}

// truncateRunes returns the first n runes of s
func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
