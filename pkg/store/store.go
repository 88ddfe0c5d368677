// Package store is the in-memory query engine over one immutable corpus
// snapshot: fuzzy entity search, entity-context expansion, chunk lookup
// and shortest-path subgraph retrieval. The store is built once from a
// loaded snapshot and never mutated, so concurrent queries need no
// locking.
package store

import (
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/soundprediction/notegraph/pkg/snapshot"
	"github.com/soundprediction/notegraph/pkg/types"
)

// ErrNotFound is returned when a queried entity or chunk id is absent
// from the snapshot. It is an expected outcome, never a failure.
var ErrNotFound = errors.New("not found")

// Store answers read-only queries against a loaded snapshot.
type Store struct {
	snap *snapshot.Snapshot

	// weights holds the collapsed co-occurrence graph: for every edge,
	// both directions are present with the same summed weight.
	weights map[string]map[string]int
	// adjacency holds each node's neighbors sorted by name, so traversal
	// order (and therefore BFS tie-breaking) is deterministic.
	adjacency map[string][]string
	edgeCount int

	entityLC     map[string]string              // lowercase -> canonical
	entityTokens map[string]map[string]struct{} // lowercase -> token set
	inverse      map[string][]string            // chunk id -> entities, sorted
	chunkMeta    map[string]types.ChunkMeta     // leaf id -> metadata

	nLeaves    int
	nSummaries int

	logger *slog.Logger
}

// Open loads the snapshot in dir and builds a store over it.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	snap, err := snapshot.Load(dir)
	if err != nil {
		return nil, err
	}
	return New(snap, logger), nil
}

// New builds a store from an already-loaded snapshot.
func New(snap *snapshot.Snapshot, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		snap:         snap,
		weights:      make(map[string]map[string]int),
		adjacency:    make(map[string][]string),
		entityLC:     make(map[string]string),
		entityTokens: make(map[string]map[string]struct{}),
		inverse:      make(map[string][]string),
		chunkMeta:    make(map[string]types.ChunkMeta),
		logger:       logger,
	}

	// Collapse duplicate unordered pairs by summing weight; drop
	// self-loops outright.
	for _, e := range snap.Edges {
		if e.A == e.B {
			continue
		}
		s.addWeight(e.A, e.B, e.Weight)
		s.addWeight(e.B, e.A, e.Weight)
	}
	for node, nbrs := range s.weights {
		names := make([]string, 0, len(nbrs))
		for n := range nbrs {
			names = append(names, n)
		}
		sort.Strings(names)
		s.adjacency[node] = names
		s.edgeCount += len(names)
	}
	s.edgeCount /= 2

	for ent := range snap.Index {
		lc := strings.ToLower(ent)
		s.entityLC[lc] = ent
		s.entityTokens[lc] = TokenSet(ent)
	}
	// Graph nodes that somehow missed the index still resolve by name.
	for node := range s.weights {
		lc := strings.ToLower(node)
		if _, ok := s.entityLC[lc]; !ok {
			s.entityLC[lc] = node
			s.entityTokens[lc] = TokenSet(node)
		}
	}

	for ent, chunkIDs := range snap.Index {
		for _, cid := range chunkIDs {
			s.inverse[cid] = append(s.inverse[cid], ent)
		}
	}
	for cid := range s.inverse {
		sort.Strings(s.inverse[cid])
	}

	for i, meta := range snap.ChunkMeta {
		s.chunkMeta[types.LeafID(i)] = meta
	}

	for id := range snap.Tree {
		if types.IsLeafID(id) {
			s.nLeaves++
		} else {
			s.nSummaries++
		}
	}

	logger.Info("graph store ready",
		"nodes", len(s.weights),
		"edges", s.edgeCount,
		"entities", len(s.entityLC),
		"leaves", s.nLeaves,
		"summaries", s.nSummaries)
	return s
}

func (s *Store) addWeight(from, to string, w int) {
	nbrs, ok := s.weights[from]
	if !ok {
		nbrs = make(map[string]int)
		s.weights[from] = nbrs
	}
	nbrs[to] += w
}

// resolve maps a query name to its canonical form, case-insensitively.
func (s *Store) resolve(name string) (string, bool) {
	canonical, ok := s.entityLC[strings.ToLower(name)]
	return canonical, ok
}

func (s *Store) degree(entity string) int {
	return len(s.adjacency[entity])
}

// Stats summarizes the loaded snapshot.
type Stats struct {
	GraphNodes int      `json:"graph_nodes"`
	GraphEdges int      `json:"graph_edges"`
	Entities   int      `json:"entities"`
	Leaves     int      `json:"leaves"`
	Summaries  int      `json:"summaries"`
	Sources    []string `json:"sources"`
}

// Stats returns store statistics.
func (s *Store) Stats() Stats {
	sourceSet := make(map[string]struct{})
	for _, meta := range s.chunkMeta {
		sourceSet[meta.Source] = struct{}{}
	}
	sources := make([]string, 0, len(sourceSet))
	for src := range sourceSet {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	return Stats{
		GraphNodes: len(s.weights),
		GraphEdges: s.edgeCount,
		Entities:   len(s.entityLC),
		Leaves:     s.nLeaves,
		Summaries:  s.nSummaries,
		Sources:    sources,
	}
}
