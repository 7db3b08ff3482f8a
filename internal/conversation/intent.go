package conversation

import "strings"

// bookingKeywords is the fixed vocabulary that signals a trial-session
// or appointment request, including the spelling variants the
// conversational model tends to produce.
var bookingKeywords = []string{
	"probetraining", "probentraining", "probe training",
	"termin", "buchen", "buchung", "gebucht",
	"anmelden", "anmeldung", "reservieren", "reservierung",
	"training machen", "training buchen",
	"vorbeikommen", "kommen", "vorbei",
	"ausprobieren", "testen", "probieren",
	"einbuchen", "eintragen",
}

// IntentSignal carries everything the booking-intent decision needs.
// HasDate/HasTime refer to this turn's dedicated extraction; the
// profile flags describe the state accumulated before this turn.
type IntentSignal struct {
	Text            string
	HasDate         bool
	HasTime         bool
	HasIdentityData bool
	HasStoredDate   bool
	// ProfileComplete: after the merge, every field the booking needs
	// is present (identity waived for returning customers).
	ProfileComplete bool
}

// HasBookingIntent decides whether this turn should attempt a booking.
// First matching rule wins:
//
//  1. booking keyword plus a date or time in this turn;
//  2. no keyword, but the contact already gave identity data and this
//     turn carries a date or time;
//  3. no keyword, a date is already stored and this turn adds a time;
//  4. the merged profile is complete — auto-trigger without keyword;
//  5. otherwise no intent.
func HasBookingIntent(sig IntentSignal) bool {
	hasSchedulePart := sig.HasDate || sig.HasTime

	if containsBookingKeyword(sig.Text) && hasSchedulePart {
		return true
	}
	if sig.HasIdentityData && hasSchedulePart {
		return true
	}
	if sig.HasStoredDate && sig.HasTime {
		return true
	}
	return sig.ProfileComplete
}

func containsBookingKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range bookingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
