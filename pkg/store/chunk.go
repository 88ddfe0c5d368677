package store

// ChunkContent is the text of one tree node plus the entities indexed
// to it.
type ChunkContent struct {
	ChunkID  string   `json:"chunk_id"`
	Text     string   `json:"text"`
	Source   string   `json:"source,omitempty"`
	Entities []string `json:"entities"`
}

// ChunkInfo describes a tree node's position without its text: parent,
// children, sibling count and provenance.
type ChunkInfo struct {
	ChunkID      string   `json:"chunk_id"`
	Parent       string   `json:"parent,omitempty"`
	Children     []string `json:"children,omitempty"`
	Siblings     int      `json:"siblings"`
	HasText      bool     `json:"has_text"`
	TextLength   int      `json:"text_length"`
	Source       string   `json:"source,omitempty"`
	ChunkIndex   int      `json:"chunk_index"`
	TotalChunks  int      `json:"total_chunks"`
	Entities     []string `json:"entities,omitempty"`
	EntityCount  int      `json:"entity_count"`
}

// Chunk returns the text and indexed entities of one tree node. Both
// leaves and summary nodes are addressable; unknown ids yield
// ErrNotFound.
func (s *Store) Chunk(id string) (*ChunkContent, error) {
	node, ok := s.snap.Tree[id]
	if !ok {
		return nil, ErrNotFound
	}

	out := &ChunkContent{
		ChunkID:  id,
		Text:     node.Text,
		Entities: append([]string(nil), s.inverse[id]...),
	}
	if out.Entities == nil {
		out.Entities = []string{}
	}
	if meta, ok := s.chunkMeta[id]; ok {
		out.Source = meta.Source
	}
	return out, nil
}

// ChunkMetadata returns a node's tree position and provenance without
// its text.
func (s *Store) ChunkMetadata(id string) (*ChunkInfo, error) {
	node, ok := s.snap.Tree[id]
	if !ok {
		return nil, ErrNotFound
	}

	entities := append([]string(nil), s.inverse[id]...)
	info := &ChunkInfo{
		ChunkID:     id,
		Parent:      node.Parent,
		Children:    append([]string(nil), node.Children...),
		HasText:     node.Text != "",
		TextLength:  len(node.Text),
		Entities:    entities,
		EntityCount: len(entities),
	}
	if node.Parent != "" {
		if parent, ok := s.snap.Tree[node.Parent]; ok {
			info.Siblings = len(parent.Children) - 1
		}
	}
	if meta, ok := s.chunkMeta[id]; ok {
		info.Source = meta.Source
		info.ChunkIndex = meta.ChunkIndex
		info.TotalChunks = meta.TotalChunks
	}
	return info, nil
}
