package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// minSentenceLength is the floor below which a fragment is not a sentence
const minSentenceLength = 20

var sentenceTerminators = regexp.MustCompile(`[.!?]+`)

// SplitSentences splits text into candidate evidence sentences.
// Fragments are cut at every run of '.', '!' or '?' and kept only when their
// trimmed length exceeds minSentenceLength runes. Abbreviations, decimal
// numbers and quoted punctuation all split too.
func SplitSentences(text string) []string {
	var sentences []string
	for _, fragment := range sentenceTerminators.Split(text, -1) {
		fragment = strings.TrimSpace(fragment)
		if utf8.RuneCountInString(fragment) > minSentenceLength {
			sentences = append(sentences, fragment)
		}
	}
	return sentences
}
