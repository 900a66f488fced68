// Package resolve turns speakers into demographic summaries by chaining
// speaker name -> quotation qids -> knowledge-base entity -> label.
package resolve

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/ppiankov/quotelens/internal/logging"
	"github.com/ppiankov/quotelens/internal/metrics"
	"github.com/ppiankov/quotelens/internal/model"
	"github.com/ppiankov/quotelens/internal/wikidata"
	"github.com/sirupsen/logrus"
)

var (
	// ErrLabelNotFound means an attribute ID has no entry in the label table
	ErrLabelNotFound = errors.New("label not found")

	// ErrBadDate means a birth date does not carry a year at offsets 1-4
	ErrBadDate = errors.New("malformed birth date")
)

// Attributes are the resolved demographics of one identity
type Attributes struct {
	Gender         *string
	Age            *int
	Nationality    *string
	PoliticalParty *string
	Occupation     *string
}

// LabelMiss records an attribute ID that had no label
type LabelMiss struct {
	ID        string          `json:"id"`
	Attribute model.Attribute `json:"attribute"`
	Count     int             `json:"count"`
}

type missKey struct {
	id   string
	attr model.Attribute
}

// Resolver resolves speaker attributes against a restricted entity table
type Resolver struct {
	entities     *wikidata.EntityIndex
	labels       model.LabelTable
	now          func() time.Time
	strictLabels bool
	strictDates  bool
	log          *logrus.Entry
	misses       map[missKey]int
}

// Option configures a Resolver
type Option func(*Resolver)

// WithClock fixes the clock used for ages
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// WithStrictLabels makes a missing label an error instead of a null field
func WithStrictLabels(strict bool) Option {
	return func(r *Resolver) {
		r.strictLabels = strict
	}
}

// WithStrictDates makes an unparseable birth date an error instead of a null age
func WithStrictDates(strict bool) Option {
	return func(r *Resolver) {
		r.strictDates = strict
	}
}

// WithLogger sets the logger
func WithLogger(log *logrus.Entry) Option {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// NewResolver creates a resolver over a restricted entity table and labels
func NewResolver(entities *wikidata.EntityIndex, labels model.LabelTable, opts ...Option) *Resolver {
	r := &Resolver{
		entities: entities,
		labels:   labels,
		now:      time.Now,
		log:      logging.Discard(),
		misses:   make(map[missKey]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Summaries returns one summary per distinct speaker, most quoted first.
// A speaker's identity is the qids of their first quotation in quotes.
func (r *Resolver) Summaries(quotes []model.Quotation, year int) ([]model.SpeakerSummary, error) {
	firstQIDs := make(map[string][]string)
	for _, q := range quotes {
		if _, seen := firstQIDs[q.Speaker]; !seen {
			firstQIDs[q.Speaker] = q.QIDs
		}
	}

	speakers := metrics.TopSpeakers(quotes, 0)
	summaries := make([]model.SpeakerSummary, 0, len(speakers))
	resolved := 0

	for _, s := range speakers {
		attrs, err := r.Attributes(firstQIDs[s.Speaker])
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", s.Speaker, err)
		}

		summary := model.SpeakerSummary{
			Speaker:        s.Speaker,
			QuotationCount: s.Count,
			Year:           year,
			Gender:         attrs.Gender,
			Age:            attrs.Age,
			Nationality:    attrs.Nationality,
			PoliticalParty: attrs.PoliticalParty,
			Occupation:     attrs.Occupation,
		}
		if summary.Resolved() {
			resolved++
		}
		summaries = append(summaries, summary)
	}

	r.log.WithFields(logrus.Fields{
		"year":     year,
		"speakers": len(summaries),
		"resolved": resolved,
	}).Info("resolved speaker attributes")

	return summaries, nil
}

// Attributes resolves one identity. Only qids[0] is consulted; when it is
// unknown every attribute is nil, later candidates are never tried.
func (r *Resolver) Attributes(qids []string) (Attributes, error) {
	var attrs Attributes
	if len(qids) == 0 {
		return attrs, nil
	}

	entity, ok := r.entities.Get(qids[0])
	if !ok {
		return attrs, nil
	}

	var err error
	if attrs.Gender, err = r.label(entity, model.AttrGender); err != nil {
		return Attributes{}, err
	}
	if attrs.Age, err = r.age(entity); err != nil {
		return Attributes{}, err
	}
	if attrs.Nationality, err = r.label(entity, model.AttrNationality); err != nil {
		return Attributes{}, err
	}
	if attrs.PoliticalParty, err = r.label(entity, model.AttrParty); err != nil {
		return Attributes{}, err
	}
	if attrs.Occupation, err = r.label(entity, model.AttrOccupation); err != nil {
		return Attributes{}, err
	}

	return attrs, nil
}

// label resolves the first value of attr through the label table
func (r *Resolver) label(entity model.Entity, attr model.Attribute) (*string, error) {
	id, ok := entity.First(attr)
	if !ok {
		return nil, nil
	}

	text, ok := r.labels.Lookup(id)
	if !ok {
		if r.strictLabels {
			return nil, fmt.Errorf("%s %s: %w", attr, id, ErrLabelNotFound)
		}
		r.misses[missKey{id: id, attr: attr}]++
		return nil, nil
	}
	return &text, nil
}

// age is the current calendar year minus the birth year. Whether the
// birthday has passed, or the person is alive, is not considered.
func (r *Resolver) age(entity model.Entity) (*int, error) {
	date, ok := entity.First(model.AttrDateOfBirth)
	if !ok {
		return nil, nil
	}

	year, err := BirthYear(date)
	if err != nil {
		if r.strictDates {
			return nil, fmt.Errorf("entity %s: %w", entity.ID, err)
		}
		r.log.WithField("entity", entity.ID).WithError(err).Debug("ignoring birth date")
		return nil, nil
	}

	age := r.now().Year() - year
	return &age, nil
}

// BirthYear reads the year at offsets 1-4 of a date such as
// "+1970-05-12T00:00:00Z", skipping the one-character era sign
func BirthYear(date string) (int, error) {
	if len(date) < 5 {
		return 0, fmt.Errorf("%q: %w", date, ErrBadDate)
	}
	year, err := strconv.Atoi(date[1:5])
	if err != nil {
		return 0, fmt.Errorf("%q: %w", date, ErrBadDate)
	}
	return year, nil
}

// Misses returns label lookups that failed in lenient mode, most frequent first
func (r *Resolver) Misses() []LabelMiss {
	out := make([]LabelMiss, 0, len(r.misses))
	for k, n := range r.misses {
		out = append(out, LabelMiss{ID: k.id, Attribute: k.attr, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Attribute != out[j].Attribute {
			return out[i].Attribute < out[j].Attribute
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SpeakersByYear concatenates yearly summaries in ascending year order,
// stamping each summary with its year
func SpeakersByYear(byYear map[int][]model.SpeakerSummary) []model.SpeakerSummary {
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	var all []model.SpeakerSummary
	for _, y := range years {
		for _, s := range byYear[y] {
			s.Year = y
			all = append(all, s)
		}
	}
	return all
}
