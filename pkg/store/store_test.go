package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/notegraph/pkg/snapshot"
	"github.com/soundprediction/notegraph/pkg/types"
)

// testStore builds a store over a small hand-made snapshot: four note
// chunks under one summary, a handful of entities and a co-occurrence
// graph with one duplicated edge and one self-loop.
func testStore(t *testing.T) *Store {
	t.Helper()

	snap := &snapshot.Snapshot{
		Tree: map[string]types.TreeNode{
			"leaf_0": {
				Text:   "Trello board synced through the n8n workflow for LifeCommandCenter.",
				Parent: "summary_1_0",
			},
			"leaf_1": {
				Text:   "BiznesValidator scores business ideas with Claude.",
				Parent: "summary_1_0",
			},
			"leaf_2": {
				Text:   "The n8n automation asks Claude for nightly summaries.",
				Parent: "summary_1_0",
			},
			"leaf_3": {
				Text:   "Docker keeps the runner isolated.",
				Parent: "summary_1_0",
			},
			"summary_1_0": {
				Text:     "Notes about automation tooling.",
				Children: []string{"leaf_0", "leaf_1", "leaf_2", "leaf_3"},
			},
		},
		Index: map[string][]string{
			"Trello":            {"leaf_0"},
			"n8n":               {"leaf_0", "leaf_2"},
			"LifeCommandCenter": {"leaf_0"},
			"BiznesValidator":   {"leaf_1"},
			"Validator":         {"leaf_1"},
			"Claude":            {"leaf_1", "leaf_2"},
			"Docker":            {"leaf_3"},
		},
		Appearance: map[string]map[string]int{
			"leaf_0": {"Trello": 2, "n8n": 1, "LifeCommandCenter": 1},
			"leaf_1": {"BiznesValidator": 1, "Validator": 1, "Claude": 1},
			"leaf_2": {"n8n": 1, "Claude": 1},
			"leaf_3": {"Docker": 1},
		},
		Edges: []types.Edge{
			{A: "Trello", B: "n8n", Weight: 1},
			{A: "n8n", B: "Trello", Weight: 1},
			{A: "Trello", B: "LifeCommandCenter", Weight: 1},
			{A: "n8n", B: "Claude", Weight: 1},
			{A: "BiznesValidator", B: "Claude", Weight: 1},
			{A: "Docker", B: "Docker", Weight: 3},
		},
		ChunkMeta: []types.ChunkMeta{
			{Source: "notes/2025-01.md", ChunkIndex: 0, TotalChunks: 2},
			{Source: "notes/2025-01.md", ChunkIndex: 1, TotalChunks: 2},
			{Source: "notes/2025-02.md", ChunkIndex: 0, TotalChunks: 2},
			{Source: "notes/2025-02.md", ChunkIndex: 1, TotalChunks: 2},
		},
	}
	return New(snap, nil)
}

func TestStoreStats(t *testing.T) {
	s := testStore(t)
	stats := s.Stats()

	// The Docker self-loop is dropped, so Docker never becomes a graph
	// node even though it is an indexed entity.
	assert.Equal(t, 5, stats.GraphNodes)
	assert.Equal(t, 4, stats.GraphEdges)
	assert.Equal(t, 7, stats.Entities)
	assert.Equal(t, 4, stats.Leaves)
	assert.Equal(t, 1, stats.Summaries)
	assert.Equal(t, []string{"notes/2025-01.md", "notes/2025-02.md"}, stats.Sources)
}

func TestStoreCollapsesDuplicateEdges(t *testing.T) {
	s := testStore(t)

	// Trello-n8n appears twice in the edge list; the store sums it into
	// one symmetric weight.
	assert.Equal(t, 2, s.weights["Trello"]["n8n"])
	assert.Equal(t, 2, s.weights["n8n"]["Trello"])
}

func TestEntityContextResolvesCaseInsensitively(t *testing.T) {
	s := testStore(t)

	ctx, err := s.EntityContext("TRELLO")
	require.NoError(t, err)

	assert.Equal(t, "Trello", ctx.Entity)
	require.Len(t, ctx.Neighbors, 2)
	assert.Equal(t, Neighbor{Entity: "n8n", Weight: 2}, ctx.Neighbors[0])
	assert.Equal(t, Neighbor{Entity: "LifeCommandCenter", Weight: 1}, ctx.Neighbors[1])
	assert.Equal(t, 2, ctx.TotalNeighbors)

	require.Len(t, ctx.Chunks, 1)
	assert.Equal(t, "leaf_0", ctx.Chunks[0].ChunkID)
	assert.Equal(t, "notes/2025-01.md", ctx.Chunks[0].Source)
	assert.Equal(t, 2, ctx.Chunks[0].Mentions)
	assert.Equal(t, 1, ctx.TotalChunks)
}

func TestEntityContextUnknownEntity(t *testing.T) {
	s := testStore(t)

	_, err := s.EntityContext("Ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntityContextIsolatedEntity(t *testing.T) {
	s := testStore(t)

	// Validator appears in chunks but has no graph edges.
	ctx, err := s.EntityContext("validator")
	require.NoError(t, err)
	assert.Empty(t, ctx.Neighbors)
	assert.Equal(t, 0, ctx.TotalNeighbors)
	assert.Equal(t, 1, ctx.TotalChunks)
}

func TestEntityContextChunksMatchIndex(t *testing.T) {
	s := testStore(t)

	for entity, chunkIDs := range s.snap.Index {
		ctx, err := s.EntityContext(entity)
		require.NoError(t, err)
		assert.Len(t, ctx.Chunks, len(chunkIDs), "entity %s", entity)
	}
}

func TestEntityContextEdgeSymmetry(t *testing.T) {
	s := testStore(t)

	a, err := s.EntityContext("Trello")
	require.NoError(t, err)
	b, err := s.EntityContext("n8n")
	require.NoError(t, err)

	assert.Contains(t, a.Neighbors, Neighbor{Entity: "n8n", Weight: 2})
	assert.Contains(t, b.Neighbors, Neighbor{Entity: "Trello", Weight: 2})
}

func TestChunkReturnsTextAndEntities(t *testing.T) {
	s := testStore(t)

	chunk, err := s.Chunk("leaf_0")
	require.NoError(t, err)

	assert.Equal(t, "leaf_0", chunk.ChunkID)
	assert.Contains(t, chunk.Text, "Trello board")
	assert.Equal(t, "notes/2025-01.md", chunk.Source)
	assert.Equal(t, []string{"LifeCommandCenter", "Trello", "n8n"}, chunk.Entities)
}

func TestChunkSummaryNode(t *testing.T) {
	s := testStore(t)

	chunk, err := s.Chunk("summary_1_0")
	require.NoError(t, err)
	assert.Equal(t, "Notes about automation tooling.", chunk.Text)
	assert.Empty(t, chunk.Source)
	assert.Empty(t, chunk.Entities)
}

func TestChunkUnknownID(t *testing.T) {
	s := testStore(t)

	_, err := s.Chunk("leaf_99")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChunkMetadataLeaf(t *testing.T) {
	s := testStore(t)

	info, err := s.ChunkMetadata("leaf_1")
	require.NoError(t, err)

	assert.Equal(t, "summary_1_0", info.Parent)
	assert.Empty(t, info.Children)
	assert.Equal(t, 3, info.Siblings)
	assert.True(t, info.HasText)
	assert.Positive(t, info.TextLength)
	assert.Equal(t, "notes/2025-01.md", info.Source)
	assert.Equal(t, 1, info.ChunkIndex)
	assert.Equal(t, 2, info.TotalChunks)
	assert.Equal(t, 3, info.EntityCount)
	assert.Equal(t, []string{"BiznesValidator", "Claude", "Validator"}, info.Entities)
}

func TestChunkMetadataSummary(t *testing.T) {
	s := testStore(t)

	info, err := s.ChunkMetadata("summary_1_0")
	require.NoError(t, err)

	assert.Empty(t, info.Parent)
	assert.Len(t, info.Children, 4)
	assert.Equal(t, 0, info.Siblings)
	assert.Equal(t, 0, info.EntityCount)
}

func TestChunkMetadataUnknownID(t *testing.T) {
	s := testStore(t)

	_, err := s.ChunkMetadata("summary_9_9")
	assert.ErrorIs(t, err, ErrNotFound)
}
