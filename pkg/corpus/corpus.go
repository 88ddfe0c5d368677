// Package corpus loads note files from disk and splits them into the
// ordered chunks the indexing pipeline consumes.
package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/soundprediction/notegraph/pkg/types"
)

// DefaultChunkSize is the target chunk length in bytes. Paragraphs are
// packed into a chunk until adding the next one would cross it.
const DefaultChunkSize = 1200

var noteExtensions = map[string]bool{
	".md":  true,
	".txt": true,
}

// LoadDir walks dir, reads every markdown and plain-text file in
// lexical path order, and chunks each one. Chunk ids are
// "<relative path>#<index>" so checkpoints stay stable across runs.
func LoadDir(dir string, chunkSize int) ([]types.Chunk, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !noteExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk corpus dir: %w", err)
	}
	sort.Strings(paths)

	var chunks []types.Chunk
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read note %s: %w", path, err)
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		for i, text := range Split(string(raw), chunkSize) {
			chunks = append(chunks, types.Chunk{
				ID:     fmt.Sprintf("%s#%d", filepath.ToSlash(rel), i),
				Text:   text,
				Source: filepath.ToSlash(rel),
				Index:  i,
			})
		}
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no note files found under %s", dir)
	}
	return chunks, nil
}

// Split breaks a document into chunks on blank-line paragraph
// boundaries, packing consecutive paragraphs until the target size is
// reached. A single paragraph longer than the target becomes its own
// chunk rather than being cut mid-sentence.
func Split(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	if len(paragraphs) == 0 {
		return nil
	}

	var chunks []string
	var current strings.Builder
	for _, p := range paragraphs {
		if current.Len() > 0 && current.Len()+len(p)+2 > chunkSize {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
