package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/debatecards/internal/model"
)

var (
	// keyArgumentPattern matches argument vocabulary as whole words, any case
	keyArgumentPattern = regexp.MustCompile(`(?i)\b(proves|demonstrates|shows|indicates|confirms|establishes|evidence|data|research|study|findings)\b`)

	// statisticPattern matches a number with optional decimals and an optional trailing percent sign
	statisticPattern = regexp.MustCompile(`\b\d+(?:\.\d+)?(?:%|\b)`)

	// highlightTagPattern matches the markup this package emits; nothing else is treated as a tag
	highlightTagPattern = regexp.MustCompile(`(?i)</?(?:strong|mark)>`)
)

// highlightRule rewrites plain text with inline markup
type highlightRule struct {
	pattern     *regexp.Regexp
	replacement string
}

var (
	boldRule      = highlightRule{pattern: keyArgumentPattern, replacement: "<strong>$1</strong>"}
	statisticRule = highlightRule{pattern: statisticPattern, replacement: "<mark>$0</mark>"}
)

// Highlighter applies the per-analysis markup settings to document text
type Highlighter struct{}

// NewHighlighter creates a new highlighter
func NewHighlighter() *Highlighter {
	return &Highlighter{}
}

// Apply inserts <strong> and <mark> markup into text according to settings.
// Text already inside <strong> or <mark> is left untouched, so applying the
// same settings twice gives the same result as applying them once.
func (h *Highlighter) Apply(text string, settings model.AnalysisSettings) string {
	rules := rulesFor(settings)
	if len(rules) == 0 {
		return text
	}

	if !highlightTagPattern.MatchString(text) {
		return applyRules(text, rules)
	}
	return applyOutsideMarkup(text, rules)
}

func rulesFor(settings model.AnalysisSettings) []highlightRule {
	var rules []highlightRule
	if settings.BoldKeyArguments {
		rules = append(rules, boldRule)
	}
	if settings.HighlightStatistics {
		rules = append(rules, statisticRule)
	}
	if settings.IncludeCitations {
		// No citation markup yet
	}
	return rules
}

func applyRules(text string, rules []highlightRule) string {
	for _, rule := range rules {
		text = rule.pattern.ReplaceAllString(text, rule.replacement)
	}
	return text
}

// applyOutsideMarkup rewrites only the text that is not nested in a highlight
// element. Any other '<' is ordinary text.
func applyOutsideMarkup(text string, rules []highlightRule) string {
	var buf strings.Builder
	depth := 0
	last := 0

	for _, loc := range highlightTagPattern.FindAllStringIndex(text, -1) {
		segment := text[last:loc[0]]
		if depth == 0 {
			segment = applyRules(segment, rules)
		}
		buf.WriteString(segment)

		tag := text[loc[0]:loc[1]]
		if strings.HasPrefix(tag, "</") {
			if depth > 0 {
				depth--
			}
		} else {
			depth++
		}
		buf.WriteString(tag)
		last = loc[1]
	}

	tail := text[last:]
	if depth == 0 {
		tail = applyRules(tail, rules)
	}
	buf.WriteString(tail)
	return buf.String()
}
