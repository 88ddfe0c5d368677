package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/notegraph/pkg/nlp"
)

// fakeChat returns a canned completion and records the last prompt.
type fakeChat struct {
	content  string
	err      error
	calls    int
	lastUser string
}

func (f *fakeChat) Chat(ctx context.Context, messages []nlp.Message) (*nlp.Response, error) {
	f.calls++
	for _, m := range messages {
		if m.Role == nlp.RoleUser {
			f.lastUser = m.Content
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &nlp.Response{Content: f.content}, nil
}

func (f *fakeChat) Close() error { return nil }

func TestGenerativeParsesFencedArray(t *testing.T) {
	chat := &fakeChat{content: "Sure! Here are the entities:\n```json\n" +
		`[{"text": "Supabase", "label": "TOOL"}, {"text": "Next.js", "label": "TOOL"}]` +
		"\n```\nLet me know if you need more."}
	g := NewGenerative(chat, nil)

	entities := g.Extract(context.Background(), "some chunk", []string{"Trello"})

	assert.Equal(t, []string{"Supabase", "Next.js"}, entityTexts(entities))
	assert.Contains(t, chat.lastUser, "Trello")
}

func TestGenerativeDropsMalformedEntries(t *testing.T) {
	chat := &fakeChat{content: `[{"text": "n8n", "label": "TOOL"}, "just a string", {"label": "TOOL"}, 42]`}
	g := NewGenerative(chat, nil)

	entities := g.Extract(context.Background(), "chunk", nil)

	require.Len(t, entities, 1)
	assert.Equal(t, "n8n", entities[0].Text)
}

func TestGenerativeRepairsSloppyJSON(t *testing.T) {
	// Trailing comma and single quotes: jsonrepair territory.
	chat := &fakeChat{content: `[{'text': 'RTX 3090', 'label': 'HARDWARE'},]`}
	g := NewGenerative(chat, nil)

	entities := g.Extract(context.Background(), "chunk", nil)

	require.Len(t, entities, 1)
	assert.Equal(t, "RTX 3090", entities[0].Text)
}

func TestGenerativeDegradesSilently(t *testing.T) {
	t.Run("transport error", func(t *testing.T) {
		g := NewGenerative(&fakeChat{err: errors.New("connection refused")}, nil)
		assert.Empty(t, g.Extract(context.Background(), "chunk", nil))
	})

	t.Run("no array in output", func(t *testing.T) {
		g := NewGenerative(&fakeChat{content: "I could not find any entities."}, nil)
		assert.Empty(t, g.Extract(context.Background(), "chunk", nil))
	})

	t.Run("unparseable array", func(t *testing.T) {
		g := NewGenerative(&fakeChat{content: "[[[[["}, nil)
		assert.Empty(t, g.Extract(context.Background(), "chunk", nil))
	})
}

func TestGenerativeDefaultsMissingLabel(t *testing.T) {
	chat := &fakeChat{content: `[{"text": "SER9"}]`}
	g := NewGenerative(chat, nil)

	entities := g.Extract(context.Background(), "chunk", nil)

	require.Len(t, entities, 1)
	assert.Equal(t, "ENTITY", entities[0].Label)
}
