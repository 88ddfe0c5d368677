package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/soundprediction/notegraph/pkg/types"
)

// DictEntry is one seed-dictionary record: a canonical name, its label,
// and any aliases that should resolve to the canonical form.
type DictEntry struct {
	Canonical string   `json:"canonical"`
	Label     string   `json:"label"`
	Aliases   []string `json:"aliases,omitempty"`
}

type seedFile struct {
	Entities []DictEntry `json:"entities"`
}

// pattern is one scannable surface form. Matching always emits the
// canonical name, never the alias text that matched.
type pattern struct {
	lower     string
	canonical string
	label     string
}

// Dictionary is the second extraction tier: case-insensitive scanning of
// known surface forms with word-boundary enforcement. The pattern list is
// immutable and pre-sorted at construction: longest first so longer
// patterns always win overlapping spans, ties broken by canonical name
// then pattern text so scans are deterministic.
type Dictionary struct {
	patterns []pattern
}

// NewDictionary builds a matcher from seed entries. Surface forms shorter
// than two characters are ignored.
func NewDictionary(entries []DictEntry) *Dictionary {
	var patterns []pattern
	for _, entry := range entries {
		names := append([]string{entry.Canonical}, entry.Aliases...)
		for _, name := range names {
			if utf8.RuneCountInString(name) < minEntityLength {
				continue
			}
			patterns = append(patterns, pattern{
				lower:     strings.ToLower(name),
				canonical: entry.Canonical,
				label:     entry.Label,
			})
		}
	}

	sort.Slice(patterns, func(i, j int) bool {
		a, b := patterns[i], patterns[j]
		if len(a.lower) != len(b.lower) {
			return len(a.lower) > len(b.lower)
		}
		if a.canonical != b.canonical {
			return a.canonical < b.canonical
		}
		return a.lower < b.lower
	})

	return &Dictionary{patterns: patterns}
}

// LoadDictionary reads a seed dictionary file produced by the curation
// tooling: {"entities": [{"canonical", "label", "aliases"}]}.
func LoadDictionary(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed dictionary: %w", err)
	}
	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed dictionary %s: %w", path, err)
	}
	return NewDictionary(seed.Entities), nil
}

// PatternCount reports the number of scannable surface forms.
func (d *Dictionary) PatternCount() int {
	return len(d.patterns)
}

type span struct{ start, end int }

func overlaps(a span, claimed []span) bool {
	for _, c := range claimed {
		if a.start < c.end && c.start < a.end {
			return true
		}
	}
	return false
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Extract scans the text against every pattern, longest first. A match is
// rejected if either adjacent character is alphanumeric, and a claimed-span
// set keeps two patterns from covering overlapping text. Mentions counts
// the spans each canonical name claimed.
func (d *Dictionary) Extract(text string) []types.Entity {
	textLower := strings.ToLower(text)
	var claimed []span
	out := newOrderedEntities()

	for _, pat := range d.patterns {
		start := 0
		for {
			idx := strings.Index(textLower[start:], pat.lower)
			if idx == -1 {
				break
			}
			idx += start
			end := idx + len(pat.lower)

			// Word boundaries: "React" must not match inside "Reactive".
			if idx > 0 {
				if prev, _ := utf8.DecodeLastRuneInString(textLower[:idx]); isAlnum(prev) {
					start = end
					continue
				}
			}
			if end < len(textLower) {
				if next, _ := utf8.DecodeRuneInString(textLower[end:]); isAlnum(next) {
					start = end
					continue
				}
			}

			if !overlaps(span{idx, end}, claimed) {
				claimed = append(claimed, span{idx, end})
				key := strings.ToLower(pat.canonical)
				if existing, ok := out.get(key); ok {
					existing.Mentions++
					out.put(existing)
				} else {
					out.put(types.Entity{
						Text:     pat.canonical,
						Label:    pat.label,
						Source:   types.ProvenanceDictionary,
						Mentions: 1,
					})
				}
			}
			start = end
		}
	}
	return out.list()
}
