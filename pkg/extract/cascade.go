// Package extract implements the cascading entity-extraction pipeline:
// a statistical tagger, a seed-dictionary matcher, and a generative
// fallback that fires only when the cheaper tiers under-deliver.
package extract

import (
	"context"
	"log/slog"

	"github.com/soundprediction/notegraph/pkg/types"
)

// DefaultMinEntityThreshold gates the generative tier: it runs only when
// the merged tagger+dictionary output has fewer entities than this.
const DefaultMinEntityThreshold = 3

// TierStats records what each tier contributed for one chunk.
type TierStats struct {
	TaggerCount      int  `json:"tagger_count"`
	DictionaryCount  int  `json:"dictionary_count"`
	GenerativeCount  int  `json:"generative_count"`
	GenerativeCalled bool `json:"generative_called"`
	TotalUnique      int  `json:"total_unique"`
}

// Cascade orchestrates the three tiers. Each tier is a pure function of
// the chunk text; the merge combines them into a fresh ordered map, so a
// Cascade carries no per-call state and is safe for concurrent use as
// long as its tiers are.
type Cascade struct {
	tagger     *TaggerTier
	dictionary *Dictionary
	generative *Generative
	threshold  int
	logger     *slog.Logger
}

// Option configures a Cascade.
type Option func(*Cascade)

// WithGenerative enables the third tier.
func WithGenerative(g *Generative) Option {
	return func(c *Cascade) { c.generative = g }
}

// WithThreshold overrides the generative gating threshold.
func WithThreshold(n int) Option {
	return func(c *Cascade) {
		if n > 0 {
			c.threshold = n
		}
	}
}

// WithLogger sets the cascade logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cascade) { c.logger = l }
}

// New creates a cascade over the given tagger tier and dictionary.
func New(tagger *TaggerTier, dictionary *Dictionary, opts ...Option) *Cascade {
	c := &Cascade{
		tagger:     tagger,
		dictionary: dictionary,
		threshold:  DefaultMinEntityThreshold,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Extract returns the deduplicated, ordered entity list for one chunk.
//
// Merge policy: dictionary results win case-insensitive key collisions
// outright. Tagger results fill the remaining keys; when a tagger hit
// collides with an already-kept entity, only the label may change, and
// only upward (generic -> specific -> dictionary, compared by rank). The
// generative tier adds keys not already present and can never displace
// or relabel an earlier tier's entity.
func (c *Cascade) Extract(ctx context.Context, text string) ([]types.Entity, TierStats, error) {
	var stats TierStats

	taggerEntities, err := c.tagger.Extract(text)
	if err != nil {
		return nil, stats, err
	}
	stats.TaggerCount = len(taggerEntities)

	dictEntities := c.dictionary.Extract(text)
	stats.DictionaryCount = len(dictEntities)

	merged := newOrderedEntities()
	for _, e := range dictEntities {
		merged.put(e)
	}
	for _, e := range taggerEntities {
		existing, ok := merged.get(e.Key())
		if !ok {
			merged.put(e)
			continue
		}
		if e.LabelRank() > existing.LabelRank() {
			existing.Label = e.Label
			merged.put(existing)
		}
	}

	if c.generative != nil && merged.len() < c.threshold {
		stats.GenerativeCalled = true
		for _, e := range c.generative.Extract(ctx, text, merged.texts()) {
			if merged.has(e.Key()) {
				continue
			}
			merged.put(e)
			stats.GenerativeCount++
		}
	}

	stats.TotalUnique = merged.len()
	return merged.list(), stats, nil
}
