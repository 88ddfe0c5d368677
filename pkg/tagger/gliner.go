package tagger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/soundprediction/go-gline-rs/pkg/gline"
)

// GlinerTagger runs a GLiNER span model over both language label sets.
// The underlying model is not safe for concurrent prediction, so calls
// are serialized with a mutex; the per-chunk worker pool above it still
// keeps the rest of the pipeline busy.
type GlinerTagger struct {
	spanModel *gline.Model
	threshold float64
	mu        sync.Mutex
}

// NewGlinerTagger loads a span model from a local directory (expects
// model.onnx and tokenizer.json inside) or, failing that, treats modelID
// as a Hugging Face model id. Candidates scoring below threshold are
// dropped before they ever reach the cascade.
func NewGlinerTagger(modelID string, threshold float64) (*GlinerTagger, error) {
	if err := gline.Init(); err != nil {
		return nil, fmt.Errorf("failed to init gline: %w", err)
	}
	if threshold <= 0 {
		threshold = 0.4
	}

	if _, err := os.Stat(modelID); err == nil {
		modelPath := filepath.Join(modelID, "model.onnx")
		tokPath := filepath.Join(modelID, "tokenizer.json")
		m, err := gline.NewSpanModel(modelPath, tokPath)
		if err != nil {
			return nil, err
		}
		return &GlinerTagger{spanModel: m, threshold: threshold}, nil
	}

	m, err := gline.NewSpanModelFromHF(modelID)
	if err != nil {
		return nil, err
	}
	return &GlinerTagger{spanModel: m, threshold: threshold}, nil
}

// Tag implements Tagger. Both label sets run on every chunk: the corpus
// is mixed-language and chunk-level language detection misfires on short
// technical notes.
func (t *GlinerTagger) Tag(text string) ([]Candidate, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.spanModel == nil {
		return nil, fmt.Errorf("span model not loaded")
	}

	var candidates []Candidate
	for _, set := range []struct {
		lang   string
		labels []string
	}{
		{"en", englishLabels},
		{"pl", polishLabels},
	} {
		results, err := t.spanModel.Predict([]string{text}, set.labels)
		if err != nil {
			return nil, fmt.Errorf("gliner predict (%s): %w", set.lang, err)
		}
		if len(results) == 0 {
			continue
		}
		for _, e := range results[0] {
			if float64(e.Probability) < t.threshold {
				continue
			}
			candidates = append(candidates, Candidate{
				Text:  e.Text,
				Label: CanonicalLabel(e.Label),
				Score: float64(e.Probability),
				Lang:  set.lang,
			})
		}
	}
	return candidates, nil
}

// Close releases the model.
func (t *GlinerTagger) Close() error {
	if t.spanModel != nil {
		t.spanModel.Close()
	}
	return nil
}
