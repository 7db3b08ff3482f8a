// Package extract pulls structured booking fields (name, email, date,
// time) out of a single German-language message. Regex runs first for
// date/time; a dedicated low-temperature model call is the fallback when
// the patterns find nothing. Absence of a match is never an error.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Source tags where a field value came from.
type Source string

const (
	SourceRegex Source = "regex"
	SourceModel Source = "dedicatedLLM"
)

// Field is one optional extracted value.
type Field struct {
	Value  string
	Source Source
}

// Result holds the per-field outcome of one turn. Empty Value means the
// field was not found in the message.
type Result struct {
	GivenName  Field
	FamilyName Field
	Email      Field
	Date       Field
	Time       Field
}

// HasSchedulePart reports whether this turn produced a date or a time.
func (r Result) HasSchedulePart() bool {
	return r.Date.Value != "" || r.Time.Value != ""
}

const (
	// Dates before this year are implausible and rejected outright.
	dateCutoffYear = 2024
	// How far in the past a date may lie before the smart-year rule
	// rolls it into the next year (and validation rejects it).
	pastGraceDays = 7
	// Bookings further out than this are rejected as implausible.
	maxFutureDays = 366
)

var (
	emailRE = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	fullDateRE  = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{4})`)
	shortDateRE = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(?:[^0-9]|$)`)
	// "am 9.1", "den 15.3", "9.1 um 10" — day.month without trailing dot
	// needs context so decimals like "1.5 Stunden" don't match.
	contextDateRE = regexp.MustCompile(`(?:am|den|vom|bis|ab)\s*(\d{1,2})\.(\d{1,2})(?:[^0-9.]|$)|(\d{1,2})\.(\d{1,2})\s*(?:um|uhr|kommen|gehen|möchte)`)

	clockTimeRE = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	uhrTimeRE   = regexp.MustCompile(`(\d{1,2})\s*[Uu]hr`)

	morgenRE = regexp.MustCompile(`(?:^|[^\p{L}])morgen(?:[^\p{L}]|$)`)

	weekdays = map[string]time.Weekday{
		"montag":     time.Monday,
		"dienstag":   time.Tuesday,
		"mittwoch":   time.Wednesday,
		"donnerstag": time.Thursday,
		"freitag":    time.Friday,
		"samstag":    time.Saturday,
		"sonntag":    time.Sunday,
	}

	nameTriggers = []string{"ich heiße ", "ich heisse ", "mein name ist ", "ich bin "}

	nameSkipWords = map[string]struct{}{
		"der": {}, "die": {}, "das": {}, "ein": {}, "eine": {}, "und": {}, "oder": {},
	}
	// Second words that mark a sentence start rather than a surname.
	sentenceVerbs = map[string]struct{}{
		"ist": {}, "bin": {}, "habe": {}, "möchte": {}, "will": {}, "kann": {},
		"heiße": {}, "heisse": {},
	}
)

// ExtractEmail returns the first email address in text, lowercased.
func ExtractEmail(text string) string {
	if match := emailRE.FindString(text); match != "" {
		return strings.ToLower(match)
	}
	return ""
}

// ExtractDate finds an absolute date in text and normalizes it to
// YYYY-MM-DD. Day/month forms without a year go through the smart-year
// rule relative to now. Implausible dates return "".
func ExtractDate(text string, now time.Time) string {
	if m := fullDateRE.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return validateDate(buildDate(year, month, day), now)
	}

	if m := shortDateRE.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		return validateDate(buildDateSmartYear(day, month, now), now)
	}

	if m := contextDateRE.FindStringSubmatch(strings.ToLower(text)); m != nil {
		dayStr, monthStr := m[1], m[2]
		if dayStr == "" {
			dayStr, monthStr = m[3], m[4]
		}
		day, _ := strconv.Atoi(dayStr)
		month, _ := strconv.Atoi(monthStr)
		return validateDate(buildDateSmartYear(day, month, now), now)
	}

	if d := extractRelativeDate(strings.ToLower(text), now); d != "" {
		return d
	}

	return ""
}

// extractRelativeDate resolves weekday names and morgen/übermorgen.
func extractRelativeDate(lower string, now time.Time) string {
	if strings.Contains(lower, "übermorgen") {
		return now.AddDate(0, 0, 2).Format("2006-01-02")
	}
	// Word match only: "morgens" and the greeting "Guten Morgen" are
	// not the adverb "tomorrow".
	if morgenRE.MatchString(lower) && !strings.Contains(lower, "guten morgen") {
		return now.AddDate(0, 0, 1).Format("2006-01-02")
	}
	for name, wd := range weekdays {
		if !strings.Contains(lower, name) {
			continue
		}
		days := int(wd-now.Weekday()+7) % 7
		if days == 0 {
			days = 7 // "am Montag" said on a Monday means next week
		}
		return now.AddDate(0, 0, days).Format("2006-01-02")
	}
	return ""
}

// buildDate validates the calendar components (rejects e.g. Feb 30).
func buildDate(year, month, day int) string {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || int(d.Month()) != month {
		return ""
	}
	return d.Format("2006-01-02")
}

// buildDateSmartYear picks the year for a day/month without one: the
// current year, unless that date already lies more than the grace window
// in the past — then next year. Handles the December→January boundary:
// "am 9.1" sent on Dec 20 rolls into the following year.
func buildDateSmartYear(day, month int, now time.Time) string {
	candidate := buildDate(now.Year(), month, day)
	if candidate == "" {
		return ""
	}
	d, _ := time.Parse("2006-01-02", candidate)
	if d.Before(now.AddDate(0, 0, -pastGraceDays)) {
		return buildDate(now.Year()+1, month, day)
	}
	return candidate
}

// validateDate applies the plausibility window: dates before the cutoff
// year, more than a year out, or further than the grace window in the
// past are treated as "no value".
func validateDate(date string, now time.Time) string {
	if date == "" {
		return ""
	}
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	if d.Year() < dateCutoffYear {
		return ""
	}
	if d.After(now.AddDate(0, 0, maxFutureDays)) {
		return ""
	}
	if d.Before(now.AddDate(0, 0, -pastGraceDays)) {
		return ""
	}
	return date
}

// ExtractTime finds a time of day and normalizes it to HH:MM. Values
// out of range (hour > 23, minute > 59) are discarded, not corrected.
func ExtractTime(text string) string {
	if m := clockTimeRE.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return formatTime(hour, minute)
	}
	if m := uhrTimeRE.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		return formatTime(hour, 0)
	}
	return ""
}

func formatTime(hour, minute int) string {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// ExtractFullName finds a "First Last" pair: after a trigger phrase
// ("Ich heiße Max Muster"), before an email address ("Max Muster,
// max@test.de"), or as two capitalized words opening the message.
func ExtractFullName(text string) (given, family string) {
	lower := strings.ToLower(text)

	for _, trigger := range nameTriggers {
		idx := strings.Index(lower, trigger)
		if idx < 0 {
			continue
		}
		rest := strings.Fields(text[idx+len(trigger):])
		candidates := make([]string, 0, 2)
		for _, w := range rest {
			w = strings.Trim(w, ",.!?")
			if _, skip := nameSkipWords[strings.ToLower(w)]; skip {
				continue
			}
			candidates = append(candidates, w)
			if len(candidates) == 2 {
				break
			}
		}
		if len(candidates) == 2 && isNameToken(candidates[0]) && isNameToken(candidates[1]) {
			return candidates[0], candidates[1]
		}
	}

	if loc := emailRE.FindStringIndex(text); loc != nil {
		before := strings.Fields(strings.TrimRight(strings.TrimSpace(text[:loc[0]]), ", "))
		if len(before) >= 2 {
			g := strings.Trim(before[len(before)-2], ",.!?")
			f := strings.Trim(before[len(before)-1], ",.!?")
			if isNameToken(g) && isNameToken(f) {
				return g, f
			}
		}
	}

	words := strings.Fields(text)
	if len(words) >= 2 {
		g := strings.Trim(words[0], ",.!?")
		f := strings.Trim(words[1], ",.!?")
		if _, verb := sentenceVerbs[strings.ToLower(f)]; !verb {
			if isNameToken(g) && isNameToken(f) {
				return g, f
			}
		}
	}

	return "", ""
}

// isNameToken accepts a candidate only if it is alphabetic, capitalized,
// and of plausible length. Stray tokens ("123", "ok", "UND") fail here.
func isNameToken(s string) bool {
	runes := []rune(s)
	if len(runes) < 2 || len(runes) > 30 {
		return false
	}
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes {
		if !unicode.IsLetter(r) && r != '-' {
			return false
		}
	}
	if _, skip := nameSkipWords[strings.ToLower(s)]; skip {
		return false
	}
	return true
}
