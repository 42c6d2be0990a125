package pipeline

import (
	"context"

	"github.com/ppiankov/debatecards/internal/extract"
	"github.com/ppiankov/debatecards/internal/llm"
	"github.com/ppiankov/debatecards/internal/model"
)

// Pipeline turns one document into highlighted text, debate cards and a narrative summary
type Pipeline struct {
	highlighter *extract.Highlighter
	extractor   *extract.CardExtractor
	summarizer  *llm.Summarizer // Optional (nil disables the summary)
}

// NewPipeline creates a pipeline with the extraction limits from cfg
func NewPipeline(cfg *model.Config, summarizer *llm.Summarizer) *Pipeline {
	return &Pipeline{
		highlighter: extract.NewHighlighter(),
		extractor:   extract.NewCardExtractorFromConfig(cfg.Extraction),
		summarizer:  summarizer,
	}
}

// Result is the output of one analysis
type Result struct {
	Content string       `json:"content"`
	Cards   []model.Card `json:"cards"`
	Summary string       `json:"summary"`
}

// Analyze runs the summarizer and the extractor over text. A summarizer
// failure fails the whole analysis as a *model.UpstreamError; no partial
// result is returned.
func (p *Pipeline) Analyze(ctx context.Context, text, prompt string, settings model.AnalysisSettings) (*Result, error) {
	var summary string
	if p.summarizer != nil && p.summarizer.IsEnabled() {
		s, err := p.summarizer.Summarize(ctx, text, prompt)
		if err != nil {
			return nil, &model.UpstreamError{Provider: p.summarizer.ProviderName(), Err: err}
		}
		summary = s
	}

	cards := p.extractor.Extract(text, prompt)
	if cards == nil {
		cards = []model.Card{}
	}

	return &Result{
		Content: p.highlighter.Apply(text, settings),
		Cards:   cards,
		Summary: summary,
	}, nil
}

// SummarizerName reports the active summarization provider, or "" when disabled
func (p *Pipeline) SummarizerName() string {
	if p.summarizer == nil {
		return ""
	}
	return p.summarizer.ProviderName()
}
