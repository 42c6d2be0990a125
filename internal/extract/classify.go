package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/debatecards/internal/model"
)

// minKeywordLength: prompt tokens this short or shorter are ignored
const minKeywordLength = 3

// categoryRule maps trigger keywords to a category
type categoryRule struct {
	keywords []string
	category model.Category
}

// categoryRules are evaluated in order; the first match wins
var categoryRules = []categoryRule{
	{keywords: []string{"economic", "money", "cost", "financial"}, category: model.CategoryEconomicImpact},
	{keywords: []string{"policy", "government", "law", "regulation"}, category: model.CategoryPolicySolutions},
	{keywords: []string{"study", "research", "data", "statistics"}, category: model.CategoryStatisticalEvidence},
}

// PromptKeywords returns the lower-cased whitespace tokens of prompt longer than 3 runes
func PromptKeywords(prompt string) []string {
	var keywords []string
	for _, token := range strings.Fields(strings.ToLower(prompt)) {
		if utf8.RuneCountInString(token) > minKeywordLength {
			keywords = append(keywords, token)
		}
	}
	return keywords
}

// ScoreRelevance grades a sentence against the prompt.
// Keywords match as plain substrings, so "cost" also matches "costly".
func ScoreRelevance(sentence, prompt string) model.Relevance {
	return scoreKeywords(strings.ToLower(sentence), PromptKeywords(prompt))
}

func scoreKeywords(lowerSentence string, keywords []string) model.Relevance {
	if containsAny(lowerSentence, keywords) {
		return model.RelevanceHigh
	}
	return model.RelevanceMedium
}

// Classify assigns a debate category from the sentence and the prompt together
func Classify(sentence, prompt string) model.Category {
	lower := strings.ToLower(sentence + " " + prompt)
	for _, rule := range categoryRules {
		if containsAny(lower, rule.keywords) {
			return rule.category
		}
	}
	return model.CategoryGeneralEvidence
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
