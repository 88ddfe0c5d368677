package notegraph

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/soundprediction/notegraph/pkg/checkpoint"
	"github.com/soundprediction/notegraph/pkg/extract"
	"github.com/soundprediction/notegraph/pkg/snapshot"
	"github.com/soundprediction/notegraph/pkg/telemetry"
	"github.com/soundprediction/notegraph/pkg/tree"
	"github.com/soundprediction/notegraph/pkg/types"
	"github.com/soundprediction/notegraph/pkg/workpool"
)

// Indexer runs the full corpus pipeline: per-chunk entity extraction,
// graph aggregation, summary tree construction and snapshot output.
type Indexer struct {
	cascade  *extract.Cascade
	builder  *tree.Builder
	mergeNum int
	workers  int
	ckpt     *checkpoint.Store
	rec      *telemetry.Recorder
	logger   *slog.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithCheckpoint enables the extraction checkpoint store, letting
// interrupted runs resume without re-extracting finished chunks.
func WithCheckpoint(s *checkpoint.Store) IndexerOption {
	return func(ix *Indexer) { ix.ckpt = s }
}

// WithTelemetry records per-chunk tier statistics to the recorder.
func WithTelemetry(r *telemetry.Recorder) IndexerOption {
	return func(ix *Indexer) { ix.rec = r }
}

// WithIndexWorkers sets the extraction parallelism.
func WithIndexWorkers(n int) IndexerOption {
	return func(ix *Indexer) {
		if n > 0 {
			ix.workers = n
		}
	}
}

// WithIndexLogger sets the logger.
func WithIndexLogger(l *slog.Logger) IndexerOption {
	return func(ix *Indexer) { ix.logger = l }
}

// NewIndexer builds an indexer around an extraction cascade and a tree
// builder. mergeNum controls how many nodes each summary merges.
func NewIndexer(cascade *extract.Cascade, builder *tree.Builder, mergeNum int, opts ...IndexerOption) *Indexer {
	ix := &Indexer{
		cascade:  cascade,
		builder:  builder,
		mergeNum: mergeNum,
		workers:  workpool.DefaultWorkers,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

type chunkResult struct {
	entities []types.Entity
	stats    extract.TierStats
}

// Index runs the pipeline over chunks and writes the snapshot to dir.
// Chunk order is corpus order: the i-th chunk becomes leaf_i. A
// pre-existing tree artifact in dir is reused instead of rebuilt, so a
// crashed run can be restarted against the same directory.
func (ix *Indexer) Index(ctx context.Context, chunks []types.Chunk, dir string) (*snapshot.Snapshot, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("index requires at least one chunk")
	}
	for i, c := range chunks {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
	}

	start := time.Now()
	results, err := ix.extractAll(ctx, chunks)
	if err != nil {
		return nil, err
	}

	index, appearance := aggregateIndex(results)
	edges := aggregateEdges(results)

	var nodes map[string]types.TreeNode
	if snapshot.TreeExists(dir) {
		ix.logger.Info("reusing existing summary tree", "dir", dir)
		nodes, err = snapshot.LoadTree(dir)
	} else {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		nodes, err = ix.builder.Build(ctx, texts, ix.mergeNum)
	}
	if err != nil {
		return nil, err
	}

	meta := make([]types.ChunkMeta, len(chunks))
	totals := make(map[string]int)
	for _, c := range chunks {
		totals[c.Source]++
	}
	for i, c := range chunks {
		meta[i] = types.ChunkMeta{
			Source:      c.Source,
			ChunkIndex:  c.Index,
			TotalChunks: totals[c.Source],
		}
	}

	snap := &snapshot.Snapshot{
		Tree:       nodes,
		Index:      index,
		Appearance: appearance,
		Edges:      edges,
		ChunkMeta:  meta,
	}
	if err := snapshot.Write(dir, snap); err != nil {
		return nil, err
	}

	if ix.rec != nil {
		if path, err := ix.rec.Flush(); err != nil {
			ix.logger.Warn("telemetry flush failed", "error", err)
		} else if path != "" {
			ix.logger.Debug("telemetry written", "path", path)
		}
	}

	ix.logger.Info("corpus indexed",
		"chunks", len(chunks),
		"entities", len(index),
		"edges", len(edges),
		"tree_nodes", len(nodes),
		"elapsed", time.Since(start))
	return snap, nil
}

// extractAll runs the cascade over every chunk in parallel, consulting
// the checkpoint store when one is configured. Results come back in
// chunk order.
func (ix *Indexer) extractAll(ctx context.Context, chunks []types.Chunk) ([]chunkResult, error) {
	pool := workpool.New(ix.workers, func(ctx context.Context, chunk types.Chunk) (chunkResult, error) {
		if ix.ckpt != nil {
			if rec, found, err := ix.ckpt.Get(chunk.ID); err != nil {
				return chunkResult{}, err
			} else if found {
				return chunkResult{entities: rec.Entities, stats: rec.Stats}, nil
			}
		}

		begin := time.Now()
		entities, stats, err := ix.cascade.Extract(ctx, chunk.Text)
		if err != nil {
			return chunkResult{}, fmt.Errorf("extract chunk %s: %w", chunk.ID, err)
		}

		if ix.ckpt != nil {
			if err := ix.ckpt.Put(chunk.ID, &checkpoint.Record{Entities: entities, Stats: stats}); err != nil {
				ix.logger.Warn("checkpoint write failed", "chunk", chunk.ID, "error", err)
			}
		}
		if ix.rec != nil {
			ix.rec.Record(chunk.ID, chunk.Source, stats, time.Since(begin))
		}
		return chunkResult{entities: entities, stats: stats}, nil
	})

	results, errs := pool.Process(ctx, chunks)
	if err := workpool.FirstError(errs); err != nil {
		return nil, err
	}
	return results, nil
}

// aggregateIndex builds the entity index and per-chunk appearance
// counts. Chunk ids within each index entry follow corpus order.
func aggregateIndex(results []chunkResult) (map[string][]string, map[string]map[string]int) {
	index := make(map[string][]string)
	appearance := make(map[string]map[string]int)

	for i, res := range results {
		if len(res.entities) == 0 {
			continue
		}
		leafID := types.LeafID(i)
		counts := make(map[string]int, len(res.entities))
		for _, ent := range res.entities {
			index[ent.Text] = append(index[ent.Text], leafID)
			mentions := ent.Mentions
			if mentions < 1 {
				mentions = 1
			}
			counts[ent.Text] = mentions
		}
		appearance[leafID] = counts
	}
	return index, appearance
}

// aggregateEdges turns per-chunk entity sets into a weighted
// co-occurrence edge list: every unordered pair sharing a chunk gains
// weight one, summed across the corpus. The result is sorted so runs
// over the same corpus produce identical artifacts.
func aggregateEdges(results []chunkResult) []types.Edge {
	type pair struct{ a, b string }
	weights := make(map[pair]int)

	for _, res := range results {
		for i := 0; i < len(res.entities); i++ {
			for j := i + 1; j < len(res.entities); j++ {
				a, b := res.entities[i].Text, res.entities[j].Text
				if a == b {
					continue
				}
				if a > b {
					a, b = b, a
				}
				weights[pair{a, b}]++
			}
		}
	}

	edges := make([]types.Edge, 0, len(weights))
	for p, w := range weights {
		edges = append(edges, types.Edge{A: p.a, B: p.b, Weight: w})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].A != edges[j].A {
			return edges[i].A < edges[j].A
		}
		return edges[i].B < edges[j].B
	})
	return edges
}
