package tagger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalLabel(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"person", "PERSON"},
		{"osoba", "PERSON"},
		{"narzędzie", "TOOL"},
		{"software tool", "TOOL"},
		{"AI model", "MODEL"},
		{"model AI", "MODEL"},
		{"sprzęt", "HARDWARE"},
		{"something else", "SOMETHING ELSE"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalLabel(tt.raw), "raw label %q", tt.raw)
	}
}
