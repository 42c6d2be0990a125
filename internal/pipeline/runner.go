package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ppiankov/debatecards/internal/model"
	"github.com/ppiankov/debatecards/internal/store"
)

// Runner executes analyses against stored documents and records their lifecycle
type Runner struct {
	pipeline *Pipeline
	store    store.Store
}

// NewRunner creates a runner
func NewRunner(p *Pipeline, s store.Store) *Runner {
	return &Runner{pipeline: p, store: s}
}

// Outcome is what a completed analysis returns to the caller
type Outcome struct {
	Analysis      model.Analysis `json:"analysis"`
	ProcessedText string         `json:"processedText"`
	Cards         []model.Card   `json:"cards"`
	Summary       string         `json:"summary"`
}

// AnalyzeDocument runs the pipeline for a stored document. The analysis moves
// pending -> processing -> completed, or to failed if anything after its
// creation goes wrong; the original error is returned in that case.
func (r *Runner) AnalyzeDocument(ctx context.Context, documentID int64, prompt string, settings model.AnalysisSettings) (*Outcome, error) {
	doc, err := r.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(prompt) == "" {
		return nil, model.NewInputError("prompt is required")
	}

	analysis, err := r.store.CreateAnalysis(ctx, model.Analysis{
		DocumentID: documentID,
		Prompt:     prompt,
		Settings:   settings,
	})
	if err != nil {
		return nil, fmt.Errorf("create analysis: %w", err)
	}

	if err := r.store.UpdateAnalysisStatus(ctx, analysis.ID, model.StatusProcessing); err != nil {
		return nil, r.fail(ctx, analysis.ID, fmt.Errorf("start analysis: %w", err))
	}
	analysis.Status = model.StatusProcessing

	result, err := r.pipeline.Analyze(ctx, doc.OriginalText, prompt, settings)
	if err != nil {
		return nil, r.fail(ctx, analysis.ID, err)
	}

	cards, err := r.store.SaveResult(ctx, documentID, result.Content, result.Cards)
	if err != nil {
		return nil, r.fail(ctx, analysis.ID, fmt.Errorf("store result: %w", err))
	}

	if err := r.store.UpdateAnalysisStatus(ctx, analysis.ID, model.StatusCompleted); err != nil {
		return nil, r.fail(ctx, analysis.ID, fmt.Errorf("complete analysis: %w", err))
	}
	analysis.Status = model.StatusCompleted

	return &Outcome{
		Analysis:      *analysis,
		ProcessedText: result.Content,
		Cards:         cards,
		Summary:       result.Summary,
	}, nil
}

// fail marks the analysis failed and returns cause. The status write uses a
// fresh context so a cancelled request still records the failure.
func (r *Runner) fail(ctx context.Context, analysisID int64, cause error) error {
	if err := r.store.UpdateAnalysisStatus(context.WithoutCancel(ctx), analysisID, model.StatusFailed); err != nil {
		if !errors.Is(err, model.ErrInvalidTransition) {
			log.Printf("analysis %d: could not record failure: %v", analysisID, err)
		}
	}
	return cause
}
