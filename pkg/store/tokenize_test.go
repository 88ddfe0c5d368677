package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"camel case", "BiznesValidator", []string{"biznes", "validator"}},
		{"spaces", "Life Command Center", []string{"life", "command", "center"}},
		{"underscores", "leaf_42", []string{"leaf", "42"}},
		{"hyphen and slash", "wiki-rag/baremetal", []string{"wiki", "rag", "baremetal"}},
		{"uppercase run", "RAGPipeline", []string{"rag", "pipeline"}},
		{"single word", "Trello", []string{"trello"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.input))
		})
	}
}

func TestTokenSet(t *testing.T) {
	set := TokenSet("BiznesValidator")
	assert.Len(t, set, 2)
	assert.Contains(t, set, "biznes")
	assert.Contains(t, set, "validator")
}

func TestTrigramSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, trigramSimilarity("trello", "Trello"))
	assert.Zero(t, trigramSimilarity("trello", "docker"))

	sim := trigramSimilarity("trelo", "trello")
	assert.InDelta(t, 0.4, sim, 0.001)
}
