package model

import "time"

// Analysis records one run of the extractor and summarizer over a document
type Analysis struct {
	ID         int64            `json:"id"`
	DocumentID int64            `json:"documentId"`
	Prompt     string           `json:"prompt"`
	Settings   AnalysisSettings `json:"settings"`
	Status     AnalysisStatus   `json:"status"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// AnalysisStatus is the lifecycle state of an analysis
type AnalysisStatus string

const (
	StatusPending    AnalysisStatus = "pending"
	StatusProcessing AnalysisStatus = "processing"
	StatusCompleted  AnalysisStatus = "completed"
	StatusFailed     AnalysisStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed
func (s AnalysisStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo reports whether moving from s to next keeps the lifecycle monotonic.
// A pending run may fail before it starts processing.
func (s AnalysisStatus) CanTransitionTo(next AnalysisStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing || next == StatusFailed
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	default:
		return false
	}
}

// Predecessors returns the statuses from which next may be reached
func (next AnalysisStatus) Predecessors() []AnalysisStatus {
	var prev []AnalysisStatus
	for _, s := range []AnalysisStatus{StatusPending, StatusProcessing, StatusCompleted, StatusFailed} {
		if s.CanTransitionTo(next) {
			prev = append(prev, s)
		}
	}
	return prev
}
