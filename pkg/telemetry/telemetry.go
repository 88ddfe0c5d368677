// Package telemetry records per-chunk extraction measurements to
// Parquet for offline analysis of tier behavior: how often the
// generative fallback fires, and how many entities each tier
// contributes per chunk.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/soundprediction/notegraph/pkg/extract"
)

// ExtractionRow is the Parquet schema for one chunk's extraction run.
type ExtractionRow struct {
	RunID            string    `parquet:"run_id"`
	ChunkID          string    `parquet:"chunk_id"`
	Source           string    `parquet:"source"`
	TaggerCount      int32     `parquet:"tagger_count"`
	DictionaryCount  int32     `parquet:"dictionary_count"`
	GenerativeCount  int32     `parquet:"generative_count"`
	GenerativeCalled bool      `parquet:"generative_called"`
	TotalUnique      int32     `parquet:"total_unique"`
	DurationMS       int64     `parquet:"duration_ms"`
	RecordedAt       time.Time `parquet:"recorded_at"`
}

// Recorder buffers extraction rows and flushes them to one Parquet file
// per run.
type Recorder struct {
	mu    sync.Mutex
	runID string
	rows  []ExtractionRow
	dir   string
}

// NewRecorder creates a recorder writing under dir when flushed.
func NewRecorder(dir, runID string) *Recorder {
	return &Recorder{runID: runID, dir: dir}
}

// Record buffers one chunk's tier statistics.
func (r *Recorder) Record(chunkID, source string, stats extract.TierStats, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, ExtractionRow{
		RunID:            r.runID,
		ChunkID:          chunkID,
		Source:           source,
		TaggerCount:      int32(stats.TaggerCount),
		DictionaryCount:  int32(stats.DictionaryCount),
		GenerativeCount:  int32(stats.GenerativeCount),
		GenerativeCalled: stats.GenerativeCalled,
		TotalUnique:      int32(stats.TotalUnique),
		DurationMS:       elapsed.Milliseconds(),
		RecordedAt:       time.Now().UTC(),
	})
}

// Len returns the number of buffered rows.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// Flush writes all buffered rows to a single Parquet file and clears
// the buffer. Flushing an empty recorder is a no-op.
func (r *Recorder) Flush() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.rows) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create telemetry dir: %w", err)
	}
	path := filepath.Join(r.dir, fmt.Sprintf("extraction_%s.parquet", r.runID))
	if err := parquet.WriteFile(path, r.rows); err != nil {
		return "", fmt.Errorf("write telemetry file: %w", err)
	}
	r.rows = nil
	return path, nil
}

// ReadRows loads a previously flushed telemetry file.
func ReadRows(path string) ([]ExtractionRow, error) {
	rows, err := parquet.ReadFile[ExtractionRow](path)
	if err != nil {
		return nil, fmt.Errorf("read telemetry file: %w", err)
	}
	return rows, nil
}
