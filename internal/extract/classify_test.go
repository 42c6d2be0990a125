package extract

import (
	"reflect"
	"testing"

	"github.com/ppiankov/debatecards/internal/model"
)

func TestClassify_Order(t *testing.T) {
	tests := []struct {
		name     string
		sentence string
		prompt   string
		want     model.Category
	}{
		{
			name:     "economic beats policy",
			sentence: "The new policy had a large economic effect on farmers",
			want:     model.CategoryEconomicImpact,
		},
		{
			name:     "policy beats statistics",
			sentence: "Government research found the regulation reduced emissions",
			want:     model.CategoryPolicySolutions,
		},
		{
			name:     "statistics",
			sentence: "The study collected data from forty hospitals",
			want:     model.CategoryStatisticalEvidence,
		},
		{
			name:     "fallback",
			sentence: "Wind capacity doubled across the northern provinces",
			want:     model.CategoryGeneralEvidence,
		},
		{
			name:     "prompt keywords count",
			sentence: "Wind capacity doubled across the northern provinces",
			prompt:   "financial impact of wind",
			want:     model.CategoryEconomicImpact,
		},
		{
			name:     "substring match inside larger word",
			sentence: "Lawmakers debated for weeks before the vote",
			want:     model.CategoryPolicySolutions,
		},
		{
			name:     "case insensitive",
			sentence: "MONEY flowed into the sector",
			want:     model.CategoryEconomicImpact,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.sentence, tt.prompt); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestScoreRelevance(t *testing.T) {
	tests := []struct {
		name     string
		sentence string
		prompt   string
		want     model.Relevance
	}{
		{"keyword present", "Solar output rose sharply", "solar power", model.RelevanceHigh},
		{"keyword absent", "Solar output rose sharply", "nuclear power", model.RelevanceMedium},
		{"short tokens ignored", "The war is on", "the war is", model.RelevanceMedium},
		{"keyword prefix of word", "Costly repairs followed", "cost overruns", model.RelevanceHigh},
		{"keyword inside word", "Overruns were costly", "overrun", model.RelevanceHigh},
		{"case insensitive", "ECONOMIC growth slowed", "Economic growth", model.RelevanceHigh},
		{"empty prompt", "Anything at all here", "", model.RelevanceMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreRelevance(tt.sentence, tt.prompt); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestPromptKeywords(t *testing.T) {
	got := PromptKeywords("  Does the  ECONOMIC\tcase hold up?  ")
	want := []string{"does", "economic", "case", "hold"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if kw := PromptKeywords("a an the"); len(kw) != 0 {
		t.Errorf("Expected no keywords, got %v", kw)
	}
}
