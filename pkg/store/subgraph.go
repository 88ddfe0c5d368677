package store

import (
	"fmt"
	"sort"
)

// Subgraph query defaults.
const (
	DefaultMaxHops   = 3
	DefaultMaxChunks = 25
)

// Subgraph retrieval strategies.
const (
	StrategyPaths            = "shortest_paths"
	StrategyIndividualLookup = "individual_lookup"
)

// PathRecord describes the connection found between one pair of query
// entities. Hops is -1 when the pair is disconnected.
type PathRecord struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Hops int      `json:"hops"`
	Path []string `json:"path,omitempty"`
	Note string   `json:"note,omitempty"`
}

// RankedChunk is one chunk scored by how many subgraph entities it
// touches.
type RankedChunk struct {
	ChunkID  string   `json:"chunk_id"`
	Overlap  int      `json:"overlap"`
	Entities []string `json:"entities"`
}

// Subgraph is the result of a multi-entity connection query.
type Subgraph struct {
	Strategy   string        `json:"strategy"`
	Resolved   []string      `json:"resolved"`
	Unresolved []string      `json:"unresolved,omitempty"`
	Paths      []PathRecord  `json:"paths,omitempty"`
	Entities   []string      `json:"entities"`
	Chunks     []RankedChunk `json:"chunks"`
}

// QuerySubgraph finds how the given entities connect. Names resolve
// case-insensitively and must be graph members: an entity with no edges
// cannot anchor a path and is reported as unresolved. With two or more
// resolved entities the store walks unweighted shortest paths between
// every pair, discards paths longer than maxHops, and ranks chunks by
// how many path entities they contain. With fewer than two it degrades
// to a plain per-entity chunk lookup. Zero maxHops or maxChunks select
// the defaults.
func (s *Store) QuerySubgraph(entities []string, maxHops, maxChunks int) (*Subgraph, error) {
	if maxHops <= 0 {
		maxHops = DefaultMaxHops
	}
	if maxChunks <= 0 {
		maxChunks = DefaultMaxChunks
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("query requires at least one entity")
	}

	var resolved, unresolved []string
	seen := make(map[string]struct{})
	for _, name := range entities {
		canonical, ok := s.resolve(name)
		if !ok || len(s.weights[canonical]) == 0 {
			unresolved = append(unresolved, name)
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		resolved = append(resolved, canonical)
	}

	if len(resolved) < 2 {
		return s.individualLookup(resolved, unresolved, maxChunks), nil
	}

	pathEntities := make(map[string]struct{})
	for _, ent := range resolved {
		pathEntities[ent] = struct{}{}
	}

	var paths []PathRecord
	for i := 0; i < len(resolved); i++ {
		for j := i + 1; j < len(resolved); j++ {
			from, to := resolved[i], resolved[j]
			path := s.shortestPath(from, to)
			if path == nil {
				paths = append(paths, PathRecord{
					From: from,
					To:   to,
					Hops: -1,
					Note: "no path exists",
				})
				continue
			}
			hops := len(path) - 1
			if hops > maxHops {
				continue
			}
			for _, ent := range path {
				pathEntities[ent] = struct{}{}
			}
			paths = append(paths, PathRecord{From: from, To: to, Hops: hops, Path: path})
		}
	}

	entityList := make([]string, 0, len(pathEntities))
	for ent := range pathEntities {
		entityList = append(entityList, ent)
	}
	sort.Strings(entityList)

	return &Subgraph{
		Strategy:   StrategyPaths,
		Resolved:   resolved,
		Unresolved: unresolved,
		Paths:      paths,
		Entities:   entityList,
		Chunks:     s.rankChunks(pathEntities, maxChunks),
	}, nil
}

// individualLookup is the fallback when pairwise paths are impossible:
// the union of each resolved entity's chunks, in chunk id order.
func (s *Store) individualLookup(resolved, unresolved []string, maxChunks int) *Subgraph {
	entitySet := make(map[string]struct{})
	for _, ent := range resolved {
		entitySet[ent] = struct{}{}
	}

	chunks := s.rankChunks(entitySet, maxChunks)
	if resolved == nil {
		resolved = []string{}
	}
	return &Subgraph{
		Strategy:   StrategyIndividualLookup,
		Resolved:   resolved,
		Unresolved: unresolved,
		Entities:   resolved,
		Chunks:     chunks,
	}
}

// rankChunks scores every chunk touched by the entity set and returns
// the top slice ordered by overlap, ties broken by chunk id.
func (s *Store) rankChunks(entitySet map[string]struct{}, maxChunks int) []RankedChunk {
	overlap := make(map[string][]string)
	for ent := range entitySet {
		for _, cid := range s.snap.Index[ent] {
			overlap[cid] = append(overlap[cid], ent)
		}
	}

	ranked := make([]RankedChunk, 0, len(overlap))
	for cid, ents := range overlap {
		sort.Strings(ents)
		ranked = append(ranked, RankedChunk{ChunkID: cid, Overlap: len(ents), Entities: ents})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Overlap != ranked[j].Overlap {
			return ranked[i].Overlap > ranked[j].Overlap
		}
		return ranked[i].ChunkID < ranked[j].ChunkID
	})
	if len(ranked) > maxChunks {
		ranked = ranked[:maxChunks]
	}
	return ranked
}

// shortestPath runs an unweighted BFS from from to to. Neighbor order
// is the sorted adjacency list, so the returned path is deterministic.
// A nil result means the nodes are disconnected.
func (s *Store) shortestPath(from, to string) []string {
	if from == to {
		return []string{from}
	}
	if len(s.adjacency[from]) == 0 || len(s.adjacency[to]) == 0 {
		return nil
	}

	prev := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, nbr := range s.adjacency[node] {
			if _, visited := prev[nbr]; visited {
				continue
			}
			prev[nbr] = node
			if nbr == to {
				var path []string
				for cur := to; cur != ""; cur = prev[cur] {
					path = append(path, cur)
				}
				for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
					path[l], path[r] = path[r], path[l]
				}
				return path
			}
			queue = append(queue, nbr)
		}
	}
	return nil
}
