package model

// SpeakerSummary is one resolved speaker per year.
// Every attribute is independently nullable.
type SpeakerSummary struct {
	Speaker        string  `json:"speaker"`
	QuotationCount int     `json:"quotation_count"`
	Year           int     `json:"year,omitempty"`
	Gender         *string `json:"gender"`
	Age            *int    `json:"age"`
	Nationality    *string `json:"nationality"`
	PoliticalParty *string `json:"political_party"`
	Occupation     *string `json:"occupation"`
}

// Attribute returns the resolved label of attr, nil when unresolved.
// Age is not a label attribute and always returns nil here.
func (s SpeakerSummary) Attribute(attr Attribute) *string {
	switch attr {
	case AttrGender:
		return s.Gender
	case AttrNationality:
		return s.Nationality
	case AttrParty:
		return s.PoliticalParty
	case AttrOccupation:
		return s.Occupation
	default:
		return nil
	}
}

// Resolved reports whether at least one attribute was resolved
func (s SpeakerSummary) Resolved() bool {
	return s.Gender != nil || s.Age != nil || s.Nationality != nil ||
		s.PoliticalParty != nil || s.Occupation != nil
}

// ScoredQuotation is a quotation enriched with text metrics and the
// attributes of its speaker, ready for grouping
type ScoredQuotation struct {
	QuoteID        string   `json:"quoteID"`
	Quotation      string   `json:"quotation"`
	Speaker        string   `json:"speaker"`
	NumOccurrences int      `json:"numOccurrences"`
	Year           int      `json:"year"`
	Month          string   `json:"month"`               // "01".."12", from the quote ID
	SentimentLabel string   `json:"sentiment,omitempty"` // Raw classifier label, e.g. "POSITIVE (0.99)"
	SentimentScore *float64 `json:"sentiment_score"`     // Signed confidence, nil when unclassified
	Complexity     *float64 `json:"complexity"`          // Consensus grade level
	Gender         *string  `json:"gender"`
	Age            *int     `json:"age"`
	Nationality    *string  `json:"nationality"`
	PoliticalParty *string  `json:"political_party"`
	Region         *string  `json:"region,omitempty"` // Region containing the nationality
}

// IntPtr returns a pointer to n
func IntPtr(n int) *int {
	return &n
}

// FloatPtr returns a pointer to f
func FloatPtr(f float64) *float64 {
	return &f
}
