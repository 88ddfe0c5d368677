package store

import (
	"strings"
	"unicode"
)

// Tokenize splits an entity name into lowercase tokens on whitespace,
// underscore, hyphen and slash boundaries, then on CamelCase boundaries
// within each part. An uppercase run followed by a capitalized word also
// splits: "RAGPipeline" yields "rag", "pipeline".
//
//	"BiznesValidator" -> [biznes validator]
//	"Wiki RAG Baremetal" -> [wiki rag baremetal]
//	"leaf_42" -> [leaf 42]
func Tokenize(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '_' || r == '-' || r == '/'
	})

	var tokens []string
	for _, part := range parts {
		for _, word := range splitCamel(part) {
			if word != "" {
				tokens = append(tokens, strings.ToLower(word))
			}
		}
	}
	return tokens
}

func splitCamel(part string) []string {
	runes := []rune(part)
	if len(runes) < 2 {
		return []string{part}
	}

	var words []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		boundary := unicode.IsLower(prev) && unicode.IsUpper(cur)
		if !boundary && i+1 < len(runes) &&
			unicode.IsUpper(prev) && unicode.IsUpper(cur) && unicode.IsLower(runes[i+1]) {
			boundary = true
		}
		if boundary {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	return append(words, string(runes[start:]))
}

// TokenSet returns the token set of s.
func TokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range Tokenize(s) {
		set[tok] = struct{}{}
	}
	return set
}

// trigrams returns the character trigram set of the lowercased input.
// Strings shorter than three runes yield themselves as a single gram.
func trigrams(s string) map[string]struct{} {
	runes := []rune(strings.ToLower(s))
	grams := make(map[string]struct{})
	if len(runes) < 3 {
		grams[string(runes)] = struct{}{}
		return grams
	}
	for i := 0; i+3 <= len(runes); i++ {
		grams[string(runes[i:i+3])] = struct{}{}
	}
	return grams
}

// trigramSimilarity is Jaccard similarity over character trigrams.
func trigramSimilarity(a, b string) float64 {
	ta, tb := trigrams(a), trigrams(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	intersection := 0
	for g := range ta {
		if _, ok := tb[g]; ok {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
