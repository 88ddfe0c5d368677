// Package snapshot persists and loads the artifacts one corpus run
// produces: the summary tree, the entity index, per-chunk appearance
// counts, the co-occurrence edge list, and chunk metadata. Artifacts are
// written once per run and read-only afterwards.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/soundprediction/notegraph/pkg/types"
)

// ErrIncomplete marks a snapshot directory whose artifacts are missing or
// mutually inconsistent. Loading such a snapshot is always fatal.
var ErrIncomplete = errors.New("snapshot incomplete")

// Artifact file names within a snapshot directory.
const (
	ManifestFile   = "manifest.json"
	TreeFile       = "tree.json"
	IndexFile      = "index.json"
	AppearanceFile = "appearance_count.json"
	EdgesFile      = "edges.json"
	ChunkMetaFile  = "chunk_metadata.json"
)

// Manifest records the provenance of a snapshot.
type Manifest struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	Chunks    int       `json:"chunks"`
	Entities  int       `json:"entities"`
	Edges     int       `json:"edges"`
	TreeNodes int       `json:"tree_nodes"`
}

// Snapshot is one corpus run's complete artifact set.
type Snapshot struct {
	Manifest   Manifest
	Tree       map[string]types.TreeNode
	Index      map[string][]string
	Appearance map[string]map[string]int
	Edges      []types.Edge
	ChunkMeta  []types.ChunkMeta
}

// Write persists the snapshot to dir, stamping a fresh run id and
// creation time into the manifest.
func Write(dir string, snap *Snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	snap.Manifest = Manifest{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Chunks:    len(snap.ChunkMeta),
		Entities:  len(snap.Index),
		Edges:     len(snap.Edges),
		TreeNodes: len(snap.Tree),
	}

	files := []struct {
		name string
		data interface{}
	}{
		{TreeFile, snap.Tree},
		{IndexFile, snap.Index},
		{AppearanceFile, snap.Appearance},
		{EdgesFile, snap.Edges},
		{ChunkMetaFile, snap.ChunkMeta},
		{ManifestFile, snap.Manifest},
	}
	for _, f := range files {
		if err := writeJSON(filepath.Join(dir, f.name), f.data); err != nil {
			return err
		}
	}
	return nil
}

// Load reads every artifact from dir and validates basic consistency.
// Any missing or corrupt artifact fails the load.
func Load(dir string) (*Snapshot, error) {
	snap := &Snapshot{}

	if err := readJSON(filepath.Join(dir, ManifestFile), &snap.Manifest); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, TreeFile), &snap.Tree); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, IndexFile), &snap.Index); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, AppearanceFile), &snap.Appearance); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, EdgesFile), &snap.Edges); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, ChunkMetaFile), &snap.ChunkMeta); err != nil {
		return nil, err
	}

	if err := snap.validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

// TreeExists reports whether dir already holds a complete tree artifact.
// The tree builder is idempotent per run: an existing tree is loaded
// verbatim instead of being rebuilt.
func TreeExists(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, TreeFile))
	return err == nil && !info.IsDir()
}

// LoadTree reads only the tree artifact.
func LoadTree(dir string) (map[string]types.TreeNode, error) {
	var tree map[string]types.TreeNode
	if err := readJSON(filepath.Join(dir, TreeFile), &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

func (s *Snapshot) validate() error {
	if len(s.Tree) == 0 {
		return fmt.Errorf("%w: empty tree", ErrIncomplete)
	}

	leaves := 0
	for id, node := range s.Tree {
		if types.IsLeafID(id) {
			leaves++
		}
		for _, child := range node.Children {
			if _, ok := s.Tree[child]; !ok {
				return fmt.Errorf("%w: node %s references missing child %s", ErrIncomplete, id, child)
			}
		}
		if node.Parent != "" {
			if _, ok := s.Tree[node.Parent]; !ok {
				return fmt.Errorf("%w: node %s references missing parent %s", ErrIncomplete, id, node.Parent)
			}
		}
	}

	if leaves != len(s.ChunkMeta) {
		return fmt.Errorf("%w: %d leaves but %d chunk metadata records", ErrIncomplete, leaves, len(s.ChunkMeta))
	}

	for entity, chunkIDs := range s.Index {
		for _, cid := range chunkIDs {
			if _, ok := s.Tree[cid]; !ok {
				return fmt.Errorf("%w: entity %q indexed to missing chunk %s", ErrIncomplete, entity, cid)
			}
		}
	}
	return nil
}

func writeJSON(path string, data interface{}) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, out interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrIncomplete, filepath.Base(path), err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrIncomplete, filepath.Base(path), err)
	}
	return nil
}
