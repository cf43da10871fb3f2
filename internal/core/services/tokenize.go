package services

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTokenRunes is the shortest token kept by every tokenizer.
const minTokenRunes = 3

// stopWords are dropped from relevance queries.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// words splits lowercased text into runs of letters, digits and '_'.
func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordRune(r)
	})
}

// tokenize returns the distinct words of text with at least
// minTokenRunes runes, in first-seen order. It is used for indexing
// and for free-text search queries.
func tokenize(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, w := range words(text) {
		if utf8.RuneCountInString(w) < minTokenRunes {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// tokenSet is tokenize as a set.
func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range tokenize(text) {
		set[t] = struct{}{}
	}
	return set
}

// normalizeTerms lowercases and trims explicit search terms. Unlike
// tokenize there is no length filter. Blank terms are dropped.
func normalizeTerms(terms []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// queryTokens is tokenize with stop words removed. Relevance scoring
// uses it.
func queryTokens(query string) []string {
	var out []string
	for _, t := range tokenize(query) {
		if _, stop := stopWords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// vocabularyPunctuation is trimmed from both ends of whitespace
// separated words when building the keyword vocabulary.
const vocabularyPunctuation = ".,!?;:()[]{}\"'"

// vocabularyWords returns the whitespace separated words of text,
// lowercased and trimmed of punctuation, that are entirely letters or
// digits and at least minTokenRunes long.
func vocabularyWords(text string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, vocabularyPunctuation)
		if utf8.RuneCountInString(w) < minTokenRunes || !isAlnum(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func isAlnum(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

// containsAny reports whether token is a substring of any of values.
func containsAny(values []string, token string) bool {
	for _, v := range values {
		if strings.Contains(v, token) {
			return true
		}
	}
	return false
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
