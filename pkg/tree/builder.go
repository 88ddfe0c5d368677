// Package tree builds the hierarchical summarization tree: ordered chunks
// merged bottom-up into multi-level summaries until the top level is small.
package tree

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/soundprediction/notegraph/pkg/types"
	"github.com/soundprediction/notegraph/pkg/workpool"
)

// groupSeparator joins member texts before summarization.
const groupSeparator = "\n\n---\n\n"

// Summarizer produces summary text for a merged group. Leaves and
// higher-level summaries use different prompts, so the two cases are
// separate methods.
type Summarizer interface {
	// SummarizeLeaves summarizes merged raw chunk text.
	SummarizeLeaves(ctx context.Context, merged string) (string, error)
	// SummarizeSummaries consolidates merged summary text.
	SummarizeSummaries(ctx context.Context, merged string) (string, error)
}

// Builder constructs the summary tree. A summarization failure anywhere
// is fatal for the whole build: parent/child wiring must be complete and
// consistent before the tree is persisted, so partial trees are never
// produced.
type Builder struct {
	summarizer Summarizer
	workers    int
	logger     *slog.Logger
}

// NewBuilder creates a builder. workers bounds per-level group
// concurrency; levels themselves are strictly sequential because each
// depends on the prior level's completed summaries.
func NewBuilder(summarizer Summarizer, workers int, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{summarizer: summarizer, workers: workers, logger: logger}
}

// Build produces the full tree node map for the ordered chunk texts.
// Leaves hold the chunk text verbatim; level 0 groups consecutive runs of
// mergeNum leaves, and each higher level regroups the previous level's
// nodes until at most 1.2*mergeNum remain. More than one top-level node
// is allowed.
func (b *Builder) Build(ctx context.Context, chunks []string, mergeNum int) (map[string]types.TreeNode, error) {
	if mergeNum < 2 {
		return nil, types.ErrInvalidMerge
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("tree: no chunks to build from")
	}

	nodes := make(map[string]types.TreeNode, 2*len(chunks))
	for i, chunk := range chunks {
		nodes[types.LeafID(i)] = types.TreeNode{Text: chunk}
	}

	levelIDs := make([]string, len(chunks))
	for i := range chunks {
		levelIDs[i] = types.LeafID(i)
	}

	level := 0
	for {
		b.logger.Info("summarizing level", "level", level, "nodes", len(levelIDs))

		nextIDs, err := b.buildLevel(ctx, nodes, levelIDs, level, mergeNum)
		if err != nil {
			return nil, err
		}
		levelIDs = nextIDs
		level++

		if float64(len(levelIDs)) <= 1.2*float64(mergeNum) {
			break
		}
	}

	return nodes, nil
}

// buildLevel partitions memberIDs into consecutive groups of mergeNum
// (last group may be smaller, never empty), summarizes each group
// concurrently, and wires children and parents. Results are reassembled
// in group order so node ids are independent of completion order.
func (b *Builder) buildLevel(ctx context.Context, nodes map[string]types.TreeNode, memberIDs []string, level, mergeNum int) ([]string, error) {
	var groups [][]string
	for i := 0; i < len(memberIDs); i += mergeNum {
		end := i + mergeNum
		if end > len(memberIDs) {
			end = len(memberIDs)
		}
		groups = append(groups, memberIDs[i:end])
	}

	pool := workpool.New(b.workers, func(ctx context.Context, group []string) (string, error) {
		texts := make([]string, len(group))
		for i, id := range group {
			texts[i] = nodes[id].Text
		}
		merged := strings.Join(texts, groupSeparator)

		if level == 0 {
			return b.summarizer.SummarizeLeaves(ctx, merged)
		}
		return b.summarizer.SummarizeSummaries(ctx, merged)
	})

	summaries, errs := pool.Process(ctx, groups)
	if err := workpool.FirstError(errs); err != nil {
		return nil, fmt.Errorf("tree: summarization failed at level %d: %w", level, err)
	}

	newIDs := make([]string, len(groups))
	for idx, group := range groups {
		id := types.SummaryID(level, idx)
		nodes[id] = types.TreeNode{
			Text:     summaries[idx],
			Children: append([]string(nil), group...),
		}
		for _, childID := range group {
			child := nodes[childID]
			child.Parent = id
			nodes[childID] = child
		}
		newIDs[idx] = id
	}
	return newIDs, nil
}
