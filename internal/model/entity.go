package model

// Entity is a knowledge-base row for one person.
// Every attribute is multi-valued and may be nil or empty.
type Entity struct {
	ID          string   `json:"id"`
	Gender      []string `json:"gender"`
	DateOfBirth []string `json:"date_of_birth"` // e.g. "+1970-05-12T00:00:00Z"
	Nationality []string `json:"nationality"`
	Party       []string `json:"party"`
	Occupation  []string `json:"occupation"`
}

// Attribute names a multi-valued entity attribute
type Attribute string

const (
	AttrGender      Attribute = "gender"
	AttrDateOfBirth Attribute = "date_of_birth"
	AttrNationality Attribute = "nationality"
	AttrParty       Attribute = "political_party"
	AttrOccupation  Attribute = "occupation"
)

// Values returns the raw values of an attribute
func (e Entity) Values(attr Attribute) []string {
	switch attr {
	case AttrGender:
		return e.Gender
	case AttrDateOfBirth:
		return e.DateOfBirth
	case AttrNationality:
		return e.Nationality
	case AttrParty:
		return e.Party
	case AttrOccupation:
		return e.Occupation
	default:
		return nil
	}
}

// First returns the first value of an attribute, if any
func (e Entity) First(attr Attribute) (string, bool) {
	values := e.Values(attr)
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Label is a human-readable label for an attribute identifier
type Label struct {
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// LabelTable maps attribute identifiers to labels. Read-only once loaded.
type LabelTable map[string]Label

// Lookup returns the display label for id
func (t LabelTable) Lookup(id string) (string, bool) {
	l, ok := t[id]
	if !ok {
		return "", false
	}
	return l.Label, true
}
