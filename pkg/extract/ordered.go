package extract

import (
	"github.com/soundprediction/notegraph/pkg/types"
)

// orderedEntities is an insertion-ordered set keyed case-insensitively.
// Every tier and the merge step use it so extraction output is a stable,
// deduplicated list.
type orderedEntities struct {
	keys    []string
	entries map[string]types.Entity
}

func newOrderedEntities() *orderedEntities {
	return &orderedEntities{entries: make(map[string]types.Entity)}
}

// put inserts or replaces the entry for e.Key(), preserving the original
// insertion position on replace.
func (o *orderedEntities) put(e types.Entity) {
	key := e.Key()
	if _, ok := o.entries[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.entries[key] = e
}

func (o *orderedEntities) get(key string) (types.Entity, bool) {
	e, ok := o.entries[key]
	return e, ok
}

func (o *orderedEntities) has(key string) bool {
	_, ok := o.entries[key]
	return ok
}

func (o *orderedEntities) len() int {
	return len(o.keys)
}

func (o *orderedEntities) list() []types.Entity {
	out := make([]types.Entity, 0, len(o.keys))
	for _, k := range o.keys {
		out = append(out, o.entries[k])
	}
	return out
}

func (o *orderedEntities) texts() []string {
	out := make([]string, 0, len(o.keys))
	for _, k := range o.keys {
		out = append(out, o.entries[k].Text)
	}
	return out
}
