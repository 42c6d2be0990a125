package model

import "time"

// Card is a single piece of evidence extracted from a document
type Card struct {
	ID         int64     `json:"id,omitempty"`
	DocumentID int64     `json:"documentId,omitempty"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Relevance  Relevance `json:"relevanceScore"`
	Category   Category  `json:"category"`
	CreatedAt  time.Time `json:"createdAt,omitzero"`
}

// Relevance grades how closely a card matches the user prompt
type Relevance string

const (
	RelevanceHigh   Relevance = "High"
	RelevanceMedium Relevance = "Medium"
	RelevanceLow    Relevance = "Low" // Part of the contract, never produced by keyword scoring
)

// Category is the debate category assigned to a card
type Category string

const (
	CategoryEconomicImpact      Category = "Economic Impact"
	CategoryPolicySolutions     Category = "Policy Solutions"
	CategoryStatisticalEvidence Category = "Statistical Evidence"
	CategoryGeneralEvidence     Category = "General Evidence"
)
