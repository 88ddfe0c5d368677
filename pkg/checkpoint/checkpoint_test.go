package checkpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/notegraph/pkg/extract"
	"github.com/soundprediction/notegraph/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutGetRoundtrip(t *testing.T) {
	s := openTestStore(t)

	rec := &Record{
		Entities: []types.Entity{
			{Text: "Trello", Label: "TOOL", Source: types.ProvenanceDictionary, Mentions: 2},
		},
		Stats: extract.TierStats{TaggerCount: 1, DictionaryCount: 1, TotalUnique: 1},
	}
	require.NoError(t, s.Put("leaf_0", rec))

	got, found, err := s.Get("leaf_0")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec.Entities, got.Entities)
	assert.Equal(t, rec.Stats, got.Stats)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)

	got, found, err := s.Get("leaf_42")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestPutOverwrites(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Put("leaf_0", &Record{Stats: extract.TierStats{TaggerCount: 1}}))
	require.NoError(t, s.Put("leaf_0", &Record{Stats: extract.TierStats{TaggerCount: 5}}))

	got, found, err := s.Get("leaf_0")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 5, got.Stats.TaggerCount)
}

func TestCountAndClear(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Put("leaf_0", &Record{}))
	require.NoError(t, s.Put("leaf_1", &Record{}))

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.Clear())
	n, err = s.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}
