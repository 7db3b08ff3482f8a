package extract

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyfit-labs/trialbot/internal/llm"
	"github.com/easyfit-labs/trialbot/pkg/logging"
)

// Monday, early January: same-year dates resolve without a boundary.
var jan5 = time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)

func TestExtractDateFormats(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"full date", "Ich komme am 09.01.2026 vorbei", "2026-01-09"},
		{"short date trailing dot", "Gerne am 10.01. bei euch", "2026-01-10"},
		{"context date no trailing dot", "am 9.1 hätte ich Zeit", "2026-01-09"},
		{"context date with um", "9.1 um 10 wäre super", "2026-01-09"},
		{"invalid calendar day", "am 30.02.2026 bitte", ""},
		{"decimal is not a date", "ich trainiere seit 1.5 Jahren", ""},
		{"no date at all", "Hallo, ich hätte gern einen Termin", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractDate(tc.text, jan5))
		})
	}
}

func TestExtractDateSmartYearBoundary(t *testing.T) {
	assert.Equal(t, "2026-01-09", ExtractDate("am 9.1", jan5),
		"early January resolves within the current year")

	dec20 := time.Date(2026, 12, 20, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2027-01-09", ExtractDate("am 9.1", dec20),
		"a January date mentioned in December rolls into the next year")
}

func TestExtractDateGraceWindow(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "2026-06-10", ExtractDate("am 10.6", now),
		"a few days past stays in the current year")
	assert.Equal(t, "2027-06-01", ExtractDate("am 1.6", now),
		"more than a week past rolls to next year")
}

func TestExtractDatePlausibility(t *testing.T) {
	assert.Empty(t, ExtractDate("am 09.01.2020", jan5), "cutoff year")
	assert.Empty(t, ExtractDate("am 09.01.2030", jan5), "too far out")
	assert.Empty(t, ExtractDate("am 01.12.2025", jan5), "past beyond grace")
}

func TestExtractDateWeekday(t *testing.T) {
	assert.Equal(t, "2026-01-09", ExtractDate("am Freitag vielleicht", jan5))
	assert.Equal(t, "2026-01-12", ExtractDate("Montag wäre gut", jan5),
		"the current weekday means next week")
}

func TestExtractDateRelative(t *testing.T) {
	assert.Equal(t, "2026-01-06", ExtractDate("morgen um 10", jan5))
	assert.Equal(t, "2026-01-07", ExtractDate("übermorgen dann", jan5))
	assert.Empty(t, ExtractDate("Guten Morgen!", jan5), "greeting is not tomorrow")
	assert.Empty(t, ExtractDate("ich trainiere morgens", jan5))
}

func TestExtractTime(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"um 15:00 bitte", "15:00"},
		{"so gegen 9:30", "09:30"},
		{"15 Uhr passt", "15:00"},
		{"8 uhr früh", "08:00"},
		{"um 25:00", ""},
		{"um 12:75", ""},
		{"kein Zeitwunsch", ""},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractTime(tc.text))
		})
	}
}

func TestExtractFullName(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantGiven  string
		wantFamily string
	}{
		{"heisse trigger", "Hallo, ich heiße Max Muster", "Max", "Muster"},
		{"name ist trigger", "Mein Name ist Anna Schmidt, danke", "Anna", "Schmidt"},
		{"ich bin trigger", "Ich bin Lena Meyer", "Lena", "Meyer"},
		{"before email", "Max Muster, max@test.de", "Max", "Muster"},
		{"leading pair", "Erika Beispiel hier", "Erika", "Beispiel"},
		{"lowercase rejected", "ich bin müde heute", "", ""},
		{"digits rejected", "Ich heiße Max 123", "", ""},
		{"single word", "Max", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, f := ExtractFullName(tc.text)
			assert.Equal(t, tc.wantGiven, g)
			assert.Equal(t, tc.wantFamily, f)
		})
	}
}

func TestExtractEmail(t *testing.T) {
	assert.Equal(t, "max@test.de", ExtractEmail("Meine Mail: Max@Test.de"))
	assert.Empty(t, ExtractEmail("keine mail dabei"))
}

type stubLLM struct {
	reply string
	err   error
	calls int
}

func (s *stubLLM) Generate(_ context.Context, _ llm.Request) (llm.Response, error) {
	s.calls++
	if s.err != nil {
		return llm.Response{}, s.err
	}
	return llm.Response{Text: s.reply}, nil
}

func newTestExtractor(client llm.Client) *Extractor {
	return New(client, logging.Discard()).WithClock(func() time.Time { return jan5 })
}

func TestExtractorSkipsModelWhenRegexHits(t *testing.T) {
	stub := &stubLLM{reply: `{"datum":"2026-02-01"}`}
	e := newTestExtractor(stub)

	res := e.Extract(context.Background(), "um 15:00 bitte")

	require.Equal(t, "15:00", res.Time.Value)
	assert.Equal(t, SourceRegex, res.Time.Source)
	assert.Zero(t, stub.calls, "model must not run when regex found a schedule part")
}

func TestExtractorModelFallback(t *testing.T) {
	stub := &stubLLM{reply: `Hier ist das Ergebnis: {"vorname":"Max","nachname":"Muster","datum":"2026-01-09","uhrzeit":"15:00","email":null}`}
	e := newTestExtractor(stub)

	res := e.Extract(context.Background(), "irgendwann Ende nächster Woche nachmittags")

	require.Equal(t, 1, stub.calls)
	assert.Equal(t, "2026-01-09", res.Date.Value)
	assert.Equal(t, SourceModel, res.Date.Source)
	assert.Equal(t, "15:00", res.Time.Value)
	assert.Equal(t, "Max", res.GivenName.Value)
	assert.Equal(t, "Muster", res.FamilyName.Value)
	assert.Empty(t, res.Email.Value, "null fields stay absent")
}

func TestExtractorModelValuesAreValidated(t *testing.T) {
	stub := &stubLLM{reply: `{"datum":"2020-01-09","uhrzeit":"25:00"}`}
	e := newTestExtractor(stub)

	res := e.Extract(context.Background(), "irgendwann demnächst vielleicht")

	assert.Empty(t, res.Date.Value, "implausible model date is discarded")
	assert.Empty(t, res.Time.Value, "out-of-range model time is discarded")
}

func TestExtractorModelErrorDegradesToRegex(t *testing.T) {
	stub := &stubLLM{err: assert.AnError}
	e := newTestExtractor(stub)

	res := e.Extract(context.Background(), "Max Muster, max@test.de")

	require.Equal(t, 1, stub.calls)
	assert.Equal(t, "Max", res.GivenName.Value)
	assert.Equal(t, "max@test.de", res.Email.Value)
	assert.False(t, res.HasSchedulePart())
}

func TestExtractorWithoutModelClient(t *testing.T) {
	e := newTestExtractor(nil)

	res := e.Extract(context.Background(), "irgendwann demnächst")

	assert.False(t, res.HasSchedulePart())
}
