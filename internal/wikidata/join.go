package wikidata

import "github.com/ppiankov/quotelens/internal/model"

// EntityIndex is a restricted entity table keyed by ID, remembering load order
type EntityIndex struct {
	byID  map[string]model.Entity
	order []string
}

// NewEntityIndex indexes entities, keeping the first row of each ID
func NewEntityIndex(entities []model.Entity) *EntityIndex {
	idx := &EntityIndex{byID: make(map[string]model.Entity, len(entities))}
	for _, e := range entities {
		idx.add(e)
	}
	return idx
}

func (idx *EntityIndex) add(e model.Entity) {
	if _, dup := idx.byID[e.ID]; dup {
		return
	}
	idx.byID[e.ID] = e
	idx.order = append(idx.order, e.ID)
}

// Get returns the entity with id
func (idx *EntityIndex) Get(id string) (model.Entity, bool) {
	if idx == nil {
		return model.Entity{}, false
	}
	e, ok := idx.byID[id]
	return e, ok
}

// Len returns the number of entities
func (idx *EntityIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.order)
}

// IDs returns entity IDs in load order
func (idx *EntityIndex) IDs() []string {
	if idx == nil {
		return nil
	}
	return append([]string(nil), idx.order...)
}

// CanonicalIDs returns the distinct qids[0] referenced by quotes
func CanonicalIDs(quotes []model.Quotation) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, q := range quotes {
		if qid, ok := q.CanonicalQID(); ok {
			ids[qid] = struct{}{}
		}
	}
	return ids
}

// Restrict keeps the entities whose ID is in ids. Duplicate rows keep the
// first occurrence; IDs missing from entities are skipped.
func Restrict(entities []model.Entity, ids map[string]struct{}) *EntityIndex {
	idx := &EntityIndex{byID: make(map[string]model.Entity, len(ids))}
	for _, e := range entities {
		if _, wanted := ids[e.ID]; !wanted {
			continue
		}
		idx.add(e)
	}
	return idx
}

// Keep returns a LoadEntities filter accepting only ids
func Keep(ids map[string]struct{}) func(string) bool {
	return func(id string) bool {
		_, ok := ids[id]
		return ok
	}
}
