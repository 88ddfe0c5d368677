package types

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors
var (
	ErrEmptyText    = errors.New("entity text cannot be empty")
	ErrEmptyChunkID = errors.New("chunk id cannot be empty")
	ErrInvalidMerge = errors.New("merge_num must be at least 2")
)

// Provenance identifies which extraction tier produced an entity.
type Provenance string

const (
	// ProvenanceTagger marks entities found by the statistical NER tagger.
	ProvenanceTagger Provenance = "tagger"
	// ProvenanceDictionary marks entities matched against the seed dictionary.
	ProvenanceDictionary Provenance = "dictionary"
	// ProvenanceGenerative marks entities produced by the generative fallback.
	ProvenanceGenerative Provenance = "generative"
)

// LabelGeneric is the label carried by entities no tier could type.
// A later tier with a real label may upgrade it during the merge.
const LabelGeneric = "ENTITY"

// Entity is a canonical named reference extracted from a chunk of text.
// Two entities differing only in case are the same entity: equality and
// map keys always go through Key.
type Entity struct {
	Text     string     `json:"text"`
	Label    string     `json:"label"`
	Source   Provenance `json:"source"`
	Mentions int        `json:"mentions,omitempty"`
}

// Key returns the case-insensitive identity of the entity.
func (e Entity) Key() string {
	return strings.ToLower(e.Text)
}

// Equal reports whether two entities refer to the same canonical name.
func (e Entity) Equal(other Entity) bool {
	return e.Key() == other.Key()
}

// Validate checks the entity has the required fields set.
func (e Entity) Validate() error {
	if strings.TrimSpace(e.Text) == "" {
		return ErrEmptyText
	}
	return nil
}

// LabelRank orders an entity for merge collisions. Higher rank wins:
// a dictionary label beats a specific tagger label, which beats the
// generic label. The comparison is by provenance and label only, never
// by concrete type.
func (e Entity) LabelRank() int {
	switch {
	case e.Source == ProvenanceDictionary:
		return 2
	case e.Label != "" && e.Label != LabelGeneric:
		return 1
	default:
		return 0
	}
}

// Chunk is a stably-identified unit of source text, the atomic indexed unit.
type Chunk struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Source string `json:"source"`
	Index  int    `json:"index"`
}

// Validate checks the chunk has the required fields set.
func (c Chunk) Validate() error {
	if c.ID == "" {
		return ErrEmptyChunkID
	}
	return nil
}

// ChunkMeta is the per-leaf structural metadata persisted with a snapshot.
type ChunkMeta struct {
	Source      string `json:"source"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
}

// TreeNode is one node of the hierarchical summary tree. Leaves carry the
// original chunk text and have no children; summary nodes carry generated
// text and an ordered child id list. A node without a parent is a top-level
// node; a single root is not enforced.
type TreeNode struct {
	Text     string   `json:"text"`
	Children []string `json:"children,omitempty"`
	Parent   string   `json:"parent,omitempty"`
}

// IsLeaf reports whether the node is a leaf.
func (n TreeNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// LeafID returns the id of the i-th leaf node.
func LeafID(i int) string {
	return fmt.Sprintf("leaf_%d", i)
}

// SummaryID returns the id of the idx-th summary node at the given level.
func SummaryID(level, idx int) string {
	return fmt.Sprintf("summary_%d_%d", level, idx)
}

// IsLeafID reports whether id names a leaf node.
func IsLeafID(id string) bool {
	return strings.HasPrefix(id, "leaf_")
}

// Edge is one undirected co-occurrence relation between two entities,
// weighted by the number of chunks in which both appear.
type Edge struct {
	A      string `json:"a"`
	B      string `json:"b"`
	Weight int    `json:"weight"`
}
