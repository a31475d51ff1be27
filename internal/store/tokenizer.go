package store

import (
	"regexp"
	"strings"
)

// termRegex matches alphanumeric word sequences.
var termRegex = regexp.MustCompile(`[a-zA-Z0-9]+`)

// TokenizeQuery splits free-form query text into lowercase search terms.
// Punctuation and FTS5 operator syntax are discarded, so the output is
// always safe to hand to a MATCH expression. Terms shorter than 2
// characters are dropped.
func TokenizeQuery(text string) []string {
	var terms []string
	for _, word := range termRegex.FindAllString(text, -1) {
		lower := strings.ToLower(word)
		if len(lower) >= 2 {
			terms = append(terms, lower)
		}
	}
	return terms
}

// FilterStopWords removes stop words from a term list.
func FilterStopWords(terms []string, stopWords map[string]struct{}) []string {
	filtered := make([]string, 0, len(terms))
	for _, term := range terms {
		if _, isStop := stopWords[term]; !isStop {
			filtered = append(filtered, term)
		}
	}
	return filtered
}

// BuildStopWordMap converts a slice of stop words to a map for efficient lookup.
func BuildStopWordMap(stopWords []string) map[string]struct{} {
	m := make(map[string]struct{}, len(stopWords))
	for _, word := range stopWords {
		m[strings.ToLower(word)] = struct{}{}
	}
	return m
}

// DefaultStopWords is the English stop word list applied to query terms.
// Documents keep their original text (snippets must stay readable); the
// porter tokenizer stems both sides, so filtering only the query mirrors
// what a plain-language query parser would do.
var DefaultStopWords = []string{
	"a", "an", "and", "are", "as", "at", "be", "but", "by", "for", "if",
	"in", "into", "is", "it", "no", "not", "of", "on", "or", "such",
	"that", "the", "their", "then", "there", "these", "they", "this",
	"to", "was", "will", "with",
}
