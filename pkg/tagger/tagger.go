// Package tagger wraps a GLiNER span model as the statistical
// named-entity tagger. The corpus mixes Polish and English, so every
// chunk is tagged twice, once per language label set, and the results
// are pooled for the cascade's noise filters to sort out.
package tagger

import (
	"strings"
)

// Candidate is a raw tagger hit before any noise filtering.
type Candidate struct {
	Text  string
	Label string
	Score float64
	Lang  string // "pl" or "en"
}

// Tagger produces raw entity candidates for a chunk of text.
type Tagger interface {
	Tag(text string) ([]Candidate, error)
	Close() error
}

// Label sets handed to the span model. GLiNER is label-conditioned, so
// prompting in the target language measurably improves recall on that
// language's spans.
var (
	englishLabels = []string{
		"person", "organization", "location", "product",
		"project", "software tool", "AI model", "hardware", "date",
	}
	polishLabels = []string{
		"osoba", "organizacja", "miejsce", "produkt",
		"projekt", "narzędzie", "model AI", "sprzęt", "data",
	}
)

// labelMap maps raw model labels onto the canonical label vocabulary.
var labelMap = map[string]string{
	"person":        "PERSON",
	"osoba":         "PERSON",
	"organization":  "ORG",
	"organizacja":   "ORG",
	"location":      "LOCATION",
	"miejsce":       "LOCATION",
	"product":       "PRODUCT",
	"produkt":       "PRODUCT",
	"project":       "PROJECT",
	"projekt":       "PROJECT",
	"software tool": "TOOL",
	"narzędzie":     "TOOL",
	"ai model":      "MODEL",
	"model ai":      "MODEL",
	"hardware":      "HARDWARE",
	"sprzęt":        "HARDWARE",
	"date":          "DATE",
	"data":          "DATE",
}

// CanonicalLabel maps a raw model label to the canonical vocabulary,
// falling back to the uppercased raw label for anything unmapped.
func CanonicalLabel(raw string) string {
	if mapped, ok := labelMap[strings.ToLower(raw)]; ok {
		return mapped
	}
	return strings.ToUpper(raw)
}
