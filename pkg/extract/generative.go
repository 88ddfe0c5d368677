package extract

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	jsonrepair "github.com/kaptinlin/jsonrepair"

	"github.com/soundprediction/notegraph/pkg/nlp"
	"github.com/soundprediction/notegraph/pkg/types"
)

const extractionSystemPrompt = `Extract named entities from the text. Return ONLY a JSON array.
Each entity: {"text": "exact text", "label": "TYPE"}

Types: PROJECT, TOOL, MODEL, HARDWARE, PLATFORM, CONCEPT, PERSON, ORG, LOCATION, PRODUCT

Rules:
- Extract project names, tools, frameworks, AI models, hardware, people, organizations
- Keep original casing
- Skip generic nouns (system, data, file, code, project, plan)
- For multi-word entities use the full name (e.g. "Docker Compose" not "Docker")
- Max 15 entities per chunk
- Return [] if no entities found`

const extractionUserPrompt = `Text:
%TEXT%

Already found by other methods: %KNOWN%

Extract ADDITIONAL entities not in the "already found" list. Return JSON array only.`

// Generative is the costly third tier, invoked only when the cheaper
// tiers under-deliver. It makes one call per chunk with no retry; any
// transport or parse failure degrades to zero additional entities, so a
// chunk's extraction never fails because of this tier.
type Generative struct {
	client nlp.Client
	logger *slog.Logger
}

// NewGenerative wraps a language-model client as the fallback tier.
func NewGenerative(client nlp.Client, logger *slog.Logger) *Generative {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generative{client: client, logger: logger}
}

// rawEntity matches the array elements the model is asked to produce.
type rawEntity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Extract asks the model for entities the earlier tiers missed. The known
// list steers the model away from duplicates; the cascade still filters
// its output against already-present keys.
func (g *Generative) Extract(ctx context.Context, text string, known []string) []types.Entity {
	knownList := "none"
	if len(known) > 0 {
		knownList = strings.Join(known, ", ")
	}
	user := strings.NewReplacer(
		"%TEXT%", text,
		"%KNOWN%", knownList,
	).Replace(extractionUserPrompt)

	resp, err := g.client.Chat(ctx, []nlp.Message{
		nlp.NewSystemMessage(extractionSystemPrompt),
		nlp.NewUserMessage(user),
	})
	if err != nil {
		g.logger.Warn("generative tier call failed, continuing without it", "error", err)
		return nil
	}

	items := parseEntityArray(resp.Content)
	if items == nil {
		g.logger.Warn("generative tier returned no parseable array",
			"snippet", snippet(resp.Content))
		return nil
	}

	var entities []types.Entity
	for _, item := range items {
		if strings.TrimSpace(item.Text) == "" {
			continue
		}
		label := item.Label
		if label == "" {
			label = types.LabelGeneric
		}
		entities = append(entities, types.Entity{
			Text:     strings.TrimSpace(item.Text),
			Label:    label,
			Source:   types.ProvenanceGenerative,
			Mentions: 1,
		})
	}
	return entities
}

// parseEntityArray locates the first array literal in free-form model
// output and decodes it leniently: markdown fences are ignored, the
// array is repaired if malformed, and entries that are not objects with
// a text field are dropped.
func parseEntityArray(content string) []rawEntity {
	idx := strings.Index(content, "[")
	if idx == -1 {
		return nil
	}
	candidate := content[idx:]
	if last := strings.LastIndex(candidate, "]"); last != -1 {
		candidate = candidate[:last+1]
	}

	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		repaired = candidate
	}

	// Decode into raw messages first so one malformed element does not
	// sink the whole array.
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(repaired), &elems); err != nil {
		return nil
	}

	items := make([]rawEntity, 0, len(elems))
	for _, elem := range elems {
		var item rawEntity
		if err := json.Unmarshal(elem, &item); err != nil {
			continue
		}
		if item.Text == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
