// Package clean normalizes speaker identities in a quotation dataset.
package clean

import "github.com/ppiankov/quotelens/internal/model"

// NullSpeaker is the corpus placeholder for an unattributed quotation
const NullSpeaker = "None"

// AliasMap maps a canonical entity ID to the display name chosen for it
type AliasMap map[string]string

// Normalize drops unattributed quotations and rewrites every alias of an
// entity to the first display name seen for its qids[0]. Records are visited
// in input order, so the result depends on that order.
//
// aliases carries state between calls; nil starts fresh. The returned map
// is the updated state. The input slice is not modified.
func Normalize(quotes []model.Quotation, aliases AliasMap) ([]model.Quotation, AliasMap) {
	if aliases == nil {
		aliases = make(AliasMap)
	}

	out := make([]model.Quotation, 0, len(quotes))
	for _, q := range quotes {
		if q.Speaker == NullSpeaker {
			continue
		}

		qid, ok := q.CanonicalQID()
		if !ok {
			out = append(out, q)
			continue
		}

		if name, seen := aliases[qid]; seen {
			q.Speaker = name
		} else {
			aliases[qid] = q.Speaker
		}
		out = append(out, q)
	}

	return out, aliases
}

// Clean normalizes a single dataset with fresh state
func Clean(quotes []model.Quotation) []model.Quotation {
	out, _ := Normalize(quotes, nil)
	return out
}
