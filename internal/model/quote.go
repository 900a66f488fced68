package model

// Quotation is one quotation-attribution pair from the quote corpus
type Quotation struct {
	QuoteID        string     `json:"quoteID"`
	Quotation      *string    `json:"quotation"`        // nil when the corpus line has no quotation
	Speaker        string     `json:"speaker"`          // Display name as attributed
	QIDs           []string   `json:"qids"`             // Candidate entity IDs, most confident first
	Date           string     `json:"date,omitempty"`   // Emission timestamp
	NumOccurrences int        `json:"numOccurrences"`   // How many articles repeat the quotation
	Probas         [][]string `json:"probas,omitempty"` // Speaker candidates with probabilities
	URLs           []string   `json:"urls,omitempty"`   // Source article URLs
	Phase          string     `json:"phase,omitempty"`  // Corpus extraction phase
}

// Text returns the quotation text, or "" when it is missing
func (q Quotation) Text() string {
	if q.Quotation == nil {
		return ""
	}
	return *q.Quotation
}

// CanonicalQID returns qids[0], the only identifier used for attribute lookups
func (q Quotation) CanonicalQID() (string, bool) {
	if len(q.QIDs) == 0 {
		return "", false
	}
	return q.QIDs[0], true
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
