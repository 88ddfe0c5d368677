package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/notegraph/pkg/tagger"
	"github.com/soundprediction/notegraph/pkg/types"
)

func TestCascadeDictionaryWinsCollisions(t *testing.T) {
	ft := &fakeTagger{candidates: []tagger.Candidate{
		// Tagger saw an alias casing; the dictionary's canonical form
		// must win the key collision.
		{Text: "trello", Label: "ORG", Score: 0.9, Lang: "en"},
		{Text: "Krzysiek", Label: "PERSON", Score: 0.9, Lang: "pl"},
	}}
	c := New(NewTaggerTier(ft, 0, nil), testDictionary())

	entities, stats, err := c.Extract(context.Background(), "Krzysiek moved Trello boards")
	require.NoError(t, err)

	byKey := map[string]types.Entity{}
	for _, e := range entities {
		byKey[e.Key()] = e
	}
	require.Contains(t, byKey, "trello")
	assert.Equal(t, "Trello", byKey["trello"].Text)
	assert.Equal(t, types.ProvenanceDictionary, byKey["trello"].Source)
	assert.Equal(t, "TOOL", byKey["trello"].Label)
	assert.Equal(t, types.ProvenanceTagger, byKey["krzysiek"].Source)
	assert.Equal(t, 1, stats.DictionaryCount)
}

func TestCascadeOutputHasNoCaseDuplicates(t *testing.T) {
	ft := &fakeTagger{candidates: []tagger.Candidate{
		{Text: "N8N", Label: "TOOL", Score: 0.9, Lang: "en"},
		{Text: "n8n", Label: "TOOL", Score: 0.9, Lang: "pl"},
	}}
	c := New(NewTaggerTier(ft, 0, nil), testDictionary())

	entities, _, err := c.Extract(context.Background(), "automated with n8n")
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, e := range entities {
		key := strings.ToLower(e.Text)
		assert.False(t, seen[key], "duplicate key %q", key)
		seen[key] = true
	}
	// Dictionary canonical form, not either tagger casing.
	assert.Equal(t, "n8n", entities[0].Text)
}

func TestCascadeUpgradesGenericLabel(t *testing.T) {
	ft := &fakeTagger{candidates: []tagger.Candidate{
		{Text: "supabase", Label: "CONCEPT", Score: 0.4, Lang: "en"}, // generic
		{Text: "Supabase", Label: "TOOL", Score: 0.9, Lang: "pl"},    // specific
	}}
	c := New(NewTaggerTier(ft, 0.6, nil), NewDictionary(nil))

	entities, _, err := c.Extract(context.Background(), "whatever")
	require.NoError(t, err)

	require.Len(t, entities, 1)
	assert.Equal(t, "TOOL", entities[0].Label)
	assert.Equal(t, types.ProvenanceTagger, entities[0].Source)
}

func TestCascadeGenerativeGating(t *testing.T) {
	rich := []tagger.Candidate{
		{Text: "Trello", Label: "TOOL", Score: 0.9, Lang: "en"},
		{Text: "Postgres", Label: "TOOL", Score: 0.9, Lang: "en"},
		{Text: "Claude", Label: "MODEL", Score: 0.9, Lang: "en"},
	}

	t.Run("not called when enough entities", func(t *testing.T) {
		chat := &fakeChat{content: `[]`}
		c := New(NewTaggerTier(&fakeTagger{candidates: rich}, 0, nil), NewDictionary(nil),
			WithGenerative(NewGenerative(chat, nil)))

		_, stats, err := c.Extract(context.Background(), "whatever")
		require.NoError(t, err)
		assert.False(t, stats.GenerativeCalled)
		assert.Zero(t, chat.calls)
	})

	t.Run("called below threshold, adds only new keys", func(t *testing.T) {
		chat := &fakeChat{content: `[{"text": "TRELLO", "label": "TOOL"}, {"text": "Supabase", "label": "TOOL"}]`}
		ft := &fakeTagger{candidates: rich[:1]}
		c := New(NewTaggerTier(ft, 0, nil), NewDictionary(nil),
			WithGenerative(NewGenerative(chat, nil)))

		entities, stats, err := c.Extract(context.Background(), "whatever")
		require.NoError(t, err)

		assert.True(t, stats.GenerativeCalled)
		assert.Equal(t, 1, stats.GenerativeCount)
		assert.Equal(t, []string{"Trello", "Supabase"}, entityTexts(entities))
		// The known-entities hint made it into the prompt.
		assert.Contains(t, chat.lastUser, "Trello")
	})

	t.Run("threshold is configurable", func(t *testing.T) {
		chat := &fakeChat{content: `[]`}
		c := New(NewTaggerTier(&fakeTagger{candidates: rich}, 0, nil), NewDictionary(nil),
			WithGenerative(NewGenerative(chat, nil)), WithThreshold(5))

		_, stats, err := c.Extract(context.Background(), "whatever")
		require.NoError(t, err)
		assert.True(t, stats.GenerativeCalled)
	})
}

func TestCascadeSurvivesGenerativeFailure(t *testing.T) {
	chat := &fakeChat{content: "no array here at all"}
	ft := &fakeTagger{candidates: []tagger.Candidate{
		{Text: "Trello", Label: "TOOL", Score: 0.9, Lang: "en"},
	}}
	c := New(NewTaggerTier(ft, 0, nil), NewDictionary(nil),
		WithGenerative(NewGenerative(chat, nil)))

	entities, stats, err := c.Extract(context.Background(), "whatever")
	require.NoError(t, err)

	assert.Equal(t, []string{"Trello"}, entityTexts(entities))
	assert.True(t, stats.GenerativeCalled)
	assert.Zero(t, stats.GenerativeCount)
}

func TestCascadeTaggerErrorIsFatalForChunk(t *testing.T) {
	ft := &fakeTagger{err: assert.AnError}
	c := New(NewTaggerTier(ft, 0, nil), NewDictionary(nil))

	_, _, err := c.Extract(context.Background(), "whatever")
	assert.Error(t, err)
}
