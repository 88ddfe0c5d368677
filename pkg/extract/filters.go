package extract

import (
	"strings"
	"unicode"
)

// minEntityLength rejects one-character fragments the tagger sometimes
// emits around punctuation.
const minEntityLength = 2

// functionWords are high-frequency nouns (Polish and English) that carry
// no retrieval value. Tagger candidates matching one of these are noise.
var functionWords = map[string]struct{}{
	// Polish
	"projekt": {}, "system": {}, "warstwa": {}, "dane": {}, "plik": {},
	"kod": {}, "sesja": {}, "krok": {}, "opis": {}, "cel": {}, "plan": {},
	// English
	"tool": {}, "model": {}, "use": {}, "way": {}, "thing": {}, "part": {},
	"time": {}, "day": {}, "example": {}, "case": {}, "set": {},
	"data": {}, "file": {}, "code": {}, "step": {}, "type": {}, "layer": {},
	"list": {}, "chunk": {}, "node": {}, "edge": {}, "query": {},
	"result": {}, "level": {}, "cost": {},
}

// polishDiacritics is used to spot Polish words the English label set
// misread as English entities.
const polishDiacritics = "ąćęłńóśźżĄĆĘŁŃÓŚŹŻ"

func hasPolishDiacritics(s string) bool {
	return strings.ContainsAny(s, polishDiacritics)
}

func isFunctionWord(s string) bool {
	_, ok := functionWords[strings.ToLower(s)]
	return ok
}

// stripMarkdown removes formatting artifacts that leak into tagger spans
// when the source chunks are markdown notes: emphasis markers, backticks,
// heading hashes and stray brackets at the span edges.
func stripMarkdown(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "*`#_[]()>")
	return strings.TrimSpace(s)
}

func startsWithUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

// properNounLabels are label classes whose instances are proper nouns; a
// candidate under one of these must start with a capital letter.
var properNounLabels = map[string]struct{}{
	"PERSON": {}, "ORG": {}, "LOCATION": {}, "PROJECT": {}, "PRODUCT": {},
}

func requiresLeadingCapital(label string) bool {
	_, ok := properNounLabels[label]
	return ok
}
