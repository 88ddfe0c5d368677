package extract

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/soundprediction/notegraph/pkg/tagger"
	"github.com/soundprediction/notegraph/pkg/types"
)

// defaultLabelThreshold is the confidence above which the tagger's label
// is trusted. Hits below it are kept for recall but carry the generic
// label, leaving room for a later, better-typed hit to upgrade them.
const defaultLabelThreshold = 0.6

// TaggerTier is the first, cheapest extraction tier: a statistical NER
// tagger followed by aggressive noise filtering. Failures here are local
// and deterministic, so they propagate as errors for the chunk.
type TaggerTier struct {
	tagger         tagger.Tagger
	labelThreshold float64
	logger         *slog.Logger
}

// NewTaggerTier wraps a tagger. labelThreshold <= 0 selects the default.
func NewTaggerTier(t tagger.Tagger, labelThreshold float64, logger *slog.Logger) *TaggerTier {
	if labelThreshold <= 0 {
		labelThreshold = defaultLabelThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaggerTier{tagger: t, labelThreshold: labelThreshold, logger: logger}
}

// Extract runs the tagger and filters its candidates down to a
// deduplicated, ordered entity list.
func (t *TaggerTier) Extract(text string) ([]types.Entity, error) {
	candidates, err := t.tagger.Tag(text)
	if err != nil {
		return nil, fmt.Errorf("tagger tier: %w", err)
	}

	out := newOrderedEntities()
	for _, c := range candidates {
		cleaned := stripMarkdown(c.Text)
		if utf8.RuneCountInString(cleaned) < minEntityLength {
			continue
		}
		if isFunctionWord(cleaned) {
			continue
		}
		// A hit from the English label set containing Polish diacritics
		// is a Polish word the wrong language pass latched onto.
		if c.Lang == "en" && hasPolishDiacritics(cleaned) {
			continue
		}

		label := c.Label
		if c.Score < t.labelThreshold {
			label = types.LabelGeneric
		}
		if requiresLeadingCapital(label) && !startsWithUpper(cleaned) {
			continue
		}

		entity := types.Entity{
			Text:     cleaned,
			Label:    label,
			Source:   types.ProvenanceTagger,
			Mentions: 1,
		}
		if existing, ok := out.get(entity.Key()); ok {
			// Same surface form seen twice within the tier: keep the first
			// casing and source, upgrade the label if the new hit is more
			// specific.
			if entity.LabelRank() > existing.LabelRank() {
				existing.Label = entity.Label
				out.put(existing)
			}
			continue
		}
		out.put(entity)
	}
	return out.list(), nil
}
