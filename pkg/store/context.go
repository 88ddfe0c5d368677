package store

import (
	"sort"
)

// maxNeighborsShown caps the neighbor list in an entity context; the
// total count is always reported alongside.
const maxNeighborsShown = 30

// Neighbor is one co-occurring entity with its summed edge weight.
type Neighbor struct {
	Entity string `json:"entity"`
	Weight int    `json:"weight"`
}

// ChunkRef points at one chunk where an entity appears.
type ChunkRef struct {
	ChunkID  string `json:"chunk_id"`
	Source   string `json:"source,omitempty"`
	Mentions int    `json:"mentions,omitempty"`
}

// EntityContext is the full context of one entity: its strongest graph
// neighbors and every chunk it appears in.
type EntityContext struct {
	Entity         string     `json:"entity"`
	Neighbors      []Neighbor `json:"graph_neighbors"`
	TotalNeighbors int        `json:"total_neighbors"`
	Chunks         []ChunkRef `json:"chunks"`
	TotalChunks    int        `json:"total_chunks"`
}

// EntityContext resolves name case-insensitively and returns the
// entity's neighbors (sorted by descending weight, top 30) and chunk
// references. An unknown name yields ErrNotFound, never a panic.
func (s *Store) EntityContext(name string) (*EntityContext, error) {
	canonical, ok := s.resolve(name)
	if !ok {
		return nil, ErrNotFound
	}

	var neighbors []Neighbor
	for nbr, w := range s.weights[canonical] {
		neighbors = append(neighbors, Neighbor{Entity: nbr, Weight: w})
	}
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Weight != neighbors[j].Weight {
			return neighbors[i].Weight > neighbors[j].Weight
		}
		return neighbors[i].Entity < neighbors[j].Entity
	})

	total := len(neighbors)
	if len(neighbors) > maxNeighborsShown {
		neighbors = neighbors[:maxNeighborsShown]
	}

	chunkIDs := s.snap.Index[canonical]
	chunks := make([]ChunkRef, 0, len(chunkIDs))
	for _, cid := range chunkIDs {
		ref := ChunkRef{ChunkID: cid}
		if meta, ok := s.chunkMeta[cid]; ok {
			ref.Source = meta.Source
		}
		if counts, ok := s.snap.Appearance[cid]; ok {
			ref.Mentions = counts[canonical]
		}
		chunks = append(chunks, ref)
	}

	return &EntityContext{
		Entity:         canonical,
		Neighbors:      neighbors,
		TotalNeighbors: total,
		Chunks:         chunks,
		TotalChunks:    len(chunks),
	}, nil
}
