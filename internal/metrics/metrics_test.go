package metrics

import (
	"testing"

	"github.com/ppiankov/quotelens/internal/model"
)

func quotes(speakers ...string) []model.Quotation {
	out := make([]model.Quotation, 0, len(speakers))
	for _, s := range speakers {
		out = append(out, model.Quotation{Speaker: s, Quotation: model.StringPtr("q by " + s)})
	}
	return out
}

func repeat(name string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = name
	}
	return out
}

func TestTopSpeakers(t *testing.T) {
	var names []string
	names = append(names, repeat("A", 5)...)
	names = append(names, repeat("B", 9)...)
	names = append(names, repeat("C", 2)...)

	got := TopSpeakers(quotes(names...), 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 speakers, got %d", len(got))
	}
	if got[0].Speaker != "B" || got[0].Count != 9 {
		t.Errorf("first = %+v, want B(9)", got[0])
	}
	if got[1].Speaker != "A" || got[1].Count != 5 {
		t.Errorf("second = %+v, want A(5)", got[1])
	}
}

func TestTopSpeakersTieKeepsFirstAppearance(t *testing.T) {
	got := TopSpeakers(quotes("X", "Y", "Y", "X", "Z"), 0)
	want := []string{"X", "Y", "Z"}
	if len(got) != len(want) {
		t.Fatalf("expected %d speakers, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Speaker != w {
			t.Errorf("position %d = %q, want %q", i, got[i].Speaker, w)
		}
	}
}

func TestTopSpeakersEmpty(t *testing.T) {
	if got := TopSpeakers(nil, 10); len(got) != 0 {
		t.Errorf("expected no speakers, got %v", got)
	}
}

func TestTopQuotations(t *testing.T) {
	in := []model.Quotation{
		{Speaker: "A", Quotation: model.StringPtr("one"), NumOccurrences: 3},
		{Speaker: "B", Quotation: model.StringPtr("two"), NumOccurrences: 10},
		{Speaker: "C", Quotation: model.StringPtr("three"), NumOccurrences: 3},
		{Speaker: "D", Quotation: nil, NumOccurrences: 1},
	}

	got := TopQuotations(in, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 quotations, got %d", len(got))
	}
	if got[0].Quotation != "two" || got[1].Quotation != "one" || got[2].Quotation != "three" {
		t.Errorf("unexpected order: %+v", got)
	}
	if len(in) != 4 || in[0].Speaker != "A" {
		t.Error("input was modified")
	}
}

func TestQuotesBySpeaker(t *testing.T) {
	in := []model.Quotation{
		{Speaker: "A", Quotation: model.StringPtr("low"), NumOccurrences: 1},
		{Speaker: "B", Quotation: model.StringPtr("other"), NumOccurrences: 50},
		{Speaker: "A", Quotation: model.StringPtr("high"), NumOccurrences: 7},
	}
	got := QuotesBySpeaker("A", in)
	if len(got) != 2 {
		t.Fatalf("expected 2 quotations, got %d", len(got))
	}
	if got[0].Quotation != "high" {
		t.Errorf("expected most repeated first, got %q", got[0].Quotation)
	}
}

func scored(month string, sentiment *float64) model.ScoredQuotation {
	return model.ScoredQuotation{Month: month, SentimentScore: sentiment}
}

func TestMeanByMonthSkipsNull(t *testing.T) {
	rows := []model.ScoredQuotation{
		scored("05", model.FloatPtr(0.4)),
		scored("05", model.FloatPtr(0.8)),
		scored("05", nil),
	}

	got := MeanByMonth(rows, Sentiment)
	if len(got) != 1 {
		t.Fatalf("expected 1 group, got %d", len(got))
	}
	if got[0].Key != "05" || got[0].Mean != 0.6 || got[0].Count != 2 {
		t.Errorf("got %+v, want 05 mean 0.6 over 2", got[0])
	}
}

func TestMeanByMonthOrder(t *testing.T) {
	rows := []model.ScoredQuotation{
		scored("11", model.FloatPtr(1)),
		scored("02", model.FloatPtr(-1)),
		scored("", model.FloatPtr(5)),
	}
	got := MeanByMonth(rows, Sentiment)
	if len(got) != 2 || got[0].Key != "02" || got[1].Key != "11" {
		t.Errorf("unexpected groups: %+v", got)
	}
}

func TestMeanByAgeNumericOrder(t *testing.T) {
	rows := []model.ScoredQuotation{
		{Age: model.IntPtr(100), Complexity: model.FloatPtr(12)},
		{Age: model.IntPtr(9), Complexity: model.FloatPtr(3)},
		{Age: model.IntPtr(9), Complexity: model.FloatPtr(4)},
		{Age: nil, Complexity: model.FloatPtr(99)},
	}
	got := MeanByAge(rows, Complexity)
	if len(got) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(got))
	}
	if got[0].Key != "9" || got[0].Mean != 3.5 {
		t.Errorf("first group = %+v", got[0])
	}
	if got[1].Key != "100" {
		t.Errorf("second group = %+v", got[1])
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.6000000001, 0.6},
		{1.234, 1.23},
		{1.236, 1.24},
		{-0.556, -0.56},
		{0, 0},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func speaker(party, gender string) model.SpeakerSummary {
	s := model.SpeakerSummary{Speaker: party + gender}
	if party != "" {
		s.PoliticalParty = model.StringPtr(party)
	}
	if gender != "" {
		s.Gender = model.StringPtr(gender)
	}
	return s
}

func TestTopCountPartyThreshold(t *testing.T) {
	var speakers []model.SpeakerSummary
	for i := 0; i < 6; i++ {
		speakers = append(speakers, speaker("Green", ""))
	}
	for i := 0; i < 3; i++ {
		speakers = append(speakers, speaker("Labour", ""))
	}
	speakers = append(speakers, speaker("Tiny", ""), speaker("", ""))

	got := TopCount(speakers, model.AttrParty, 0.2)
	want := []Count{{"Green", 6}, {"Labour", 3}, {OthersKey, 1}}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTopCountKeepsFive(t *testing.T) {
	var speakers []model.SpeakerSummary
	for i, g := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		for j := 0; j <= 7-i; j++ {
			speakers = append(speakers, speaker("", g))
		}
	}

	got := TopCount(speakers, model.AttrGender, 0)
	if len(got) != 6 {
		t.Fatalf("expected 5 groups plus others, got %d", len(got))
	}
	if got[0].Key != "a" || got[4].Key != "e" {
		t.Errorf("unexpected groups: %+v", got)
	}
	if got[5].Key != OthersKey || got[5].Count != 3+2 {
		t.Errorf("others = %+v, want 5", got[5])
	}
}

func TestGenderSplit(t *testing.T) {
	speakers := []model.SpeakerSummary{
		speaker("", "male"), speaker("", "male"), speaker("", "female"),
		speaker("", "non-binary"), speaker("", ""),
	}
	men, women := GenderSplit(speakers)
	if men != 2 || women != 1 {
		t.Errorf("got %d men %d women, want 2 and 1", men, women)
	}
}

func TestHistogram(t *testing.T) {
	got := Histogram([]int{31, 38, 45, 52, 59}, 10)
	want := []Count{{"30", 2}, {"40", 1}, {"50", 2}}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bin %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTopGroups(t *testing.T) {
	row := func(party string, c, s float64) model.ScoredQuotation {
		return model.ScoredQuotation{
			PoliticalParty: model.StringPtr(party),
			Complexity:     model.FloatPtr(c),
			SentimentScore: model.FloatPtr(s),
		}
	}
	rows := []model.ScoredQuotation{
		row("A", 10, 0.5), row("A", 12, -0.5), row("A", 8, 0.3),
		row("B", 6, 0.9), row("B", 7, 0.1),
		row("C", 20, -1),
		{Complexity: model.FloatPtr(1)},
	}

	got := TopGroups(rows, ByParty, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(got))
	}
	if got[0].Key != "A" || got[0].Quotations != 3 || !floatIs(got[0].Complexity, 10) || !floatIs(got[0].Sentiment, 0.1) {
		t.Errorf("first group = %+v", got[0])
	}
	if got[1].Key != "B" || !floatIs(got[1].Complexity, 6.5) || !floatIs(got[1].Sentiment, 0.5) {
		t.Errorf("second group = %+v", got[1])
	}
}

func TestTopGroups_NoSentimentLeavesMeanUnset(t *testing.T) {
	rows := []model.ScoredQuotation{
		{PoliticalParty: model.StringPtr("Quiet Party"), Complexity: model.FloatPtr(8)},
		{PoliticalParty: model.StringPtr("Quiet Party"), Complexity: model.FloatPtr(10)},
		{PoliticalParty: model.StringPtr("Loud Party"), SentimentScore: model.FloatPtr(0)},
	}

	got := TopGroups(rows, ByParty, 5)
	if len(got) != 2 {
		t.Fatalf("expected 2 groups, got %+v", got)
	}
	quiet, loud := got[0], got[1]
	if quiet.Key != "Quiet Party" || quiet.Quotations != 2 {
		t.Fatalf("first group = %+v", quiet)
	}
	if quiet.Sentiment != nil {
		t.Errorf("expected nil sentiment for a party without scores, got %v", *quiet.Sentiment)
	}
	if !floatIs(quiet.Complexity, 9) {
		t.Errorf("expected complexity 9, got %+v", quiet.Complexity)
	}
	if loud.Complexity != nil || !floatIs(loud.Sentiment, 0) {
		t.Errorf("expected nil complexity and a real zero sentiment, got %+v", loud)
	}
}

func TestGenderSpeech(t *testing.T) {
	byYear := map[int][]model.ScoredQuotation{
		2019: {
			{Gender: model.StringPtr("male"), Complexity: model.FloatPtr(10), SentimentScore: model.FloatPtr(0.2)},
			{Gender: model.StringPtr("female"), Complexity: model.FloatPtr(12), SentimentScore: model.FloatPtr(0.4)},
		},
		2020: {
			{Gender: model.StringPtr("female"), Complexity: model.FloatPtr(9), SentimentScore: model.FloatPtr(-0.4)},
		},
	}

	got := GenderSpeech(byYear, []int{2019, 2020})
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %+v", got)
	}
	if got[0].Year != 2019 || got[0].Key != "male" || !floatIs(got[0].Complexity, 10) {
		t.Errorf("row 0 = %+v", got[0])
	}
	if got[2].Year != 2020 || got[2].Key != "female" || !floatIs(got[2].Sentiment, -0.4) {
		t.Errorf("row 2 = %+v", got[2])
	}
}

func TestGenderSpeech_MissingSentiment(t *testing.T) {
	byYear := map[int][]model.ScoredQuotation{
		2016: {{Gender: model.StringPtr("male"), Complexity: model.FloatPtr(7)}},
	}

	got := GenderSpeech(byYear, []int{2016})
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %+v", got)
	}
	if got[0].Sentiment != nil || !floatIs(got[0].Complexity, 7) || got[0].Quotations != 1 {
		t.Errorf("row 0 = %+v", got[0])
	}
}

func floatIs(got *float64, want float64) bool {
	return got != nil && *got == want
}

func TestAbbreviate(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{12_300, "12K"},
		{999_400, "999K"},
		{3_000_000, "3M"},
		{45_600_000, "46M"},
		{1_500_000_000, "1.5B"},
		{200, "0K"},
	}
	for _, tt := range tests {
		if got := Abbreviate(tt.in); got != tt.want {
			t.Errorf("Abbreviate(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseAbbreviated(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1.5K", 1500},
		{"3M", 3_000_000},
		{"2B", 2_000_000_000},
		{"42", 42},
	}
	for _, tt := range tests {
		got, err := ParseAbbreviated(tt.in)
		if err != nil {
			t.Fatalf("ParseAbbreviated(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseAbbreviated(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseAbbreviated("lots"); err == nil {
		t.Error("expected error for non-numeric amount")
	}
}
