// Package render turns booking outcomes into the German user-facing
// messages. The orchestrator only selects a message kind plus payload;
// all wording lives here.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/easyfit-labs/trialbot/internal/booking"
)

const (
	msgBookingSuccess       = "Termin gebucht! Bestätigung per E-Mail unterwegs."
	msgSlotUnavailable      = "Slot nicht verfügbar - probier ein anderes Datum."
	msgValidationFailed     = "Deine Daten konnten nicht validiert werden. Bitte überprüfe Name und E-Mail."
	msgLeadCreationFailed   = "Lead konnte nicht erstellt werden. Bitte versuche es erneut."
	msgSlotRace             = "Diese Zeit wurde gerade vergeben. Nenn mir gerne eine andere Uhrzeit."
	msgBookingGenericFailed = "Leider nicht verfügbar - wähle ein anderes Datum."
)

// Outcome renders the terminal message for one booking attempt.
func Outcome(o booking.Outcome) string {
	switch o.Kind {
	case booking.OutcomeConfirmed:
		return confirmed(o)
	case booking.OutcomeSlotUnavailable:
		return SlotUnavailableWithAlternatives(o.Alternatives)
	case booking.OutcomeLeadValidationFailed:
		return msgValidationFailed
	case booking.OutcomeLeadCreateFailed:
		return msgLeadCreationFailed
	case booking.OutcomeSlotRace:
		return msgSlotRace
	case booking.OutcomeBookingFailed:
		return msgBookingGenericFailed
	case booking.OutcomeCollectingIdentity, booking.OutcomeCollectingSchedule:
		return MissingFields(o.Missing)
	default:
		return msgBookingGenericFailed
	}
}

func confirmed(o booking.Outcome) string {
	start, err := time.Parse(time.RFC3339, o.StartDateTime)
	if err != nil {
		return msgBookingSuccess
	}
	return fmt.Sprintf("Dein Probetraining am %02d.%02d.%d um %02d:%02d Uhr ist gebucht! Bestätigung per E-Mail unterwegs.",
		start.Day(), int(start.Month()), start.Year(), start.Hour(), start.Minute())
}

// SlotUnavailableWithAlternatives suggests the closest free times, or
// the generic unavailable message when the day offered none.
func SlotUnavailableWithAlternatives(alternatives []string) string {
	if len(alternatives) == 0 {
		return msgSlotUnavailable
	}

	formatted := make([]string, len(alternatives))
	for i, t := range alternatives {
		formatted[i] = t + " Uhr"
	}

	if len(formatted) == 1 {
		return fmt.Sprintf("Diese Zeit ist leider belegt. Wie wäre es um %s?", formatted[0])
	}
	rest := strings.Join(formatted[:len(formatted)-1], ", ")
	return fmt.Sprintf("Diese Zeit ist leider belegt. Verfügbar wäre: %s oder %s.", rest, formatted[len(formatted)-1])
}

// MissingFields asks for the profile fields still needed for a booking.
func MissingFields(fields []string) string {
	if len(fields) == 0 {
		return msgBookingGenericFailed
	}
	return fmt.Sprintf("Um deinen Termin zu buchen, brauche ich noch: %s. Kannst du mir diese Infos geben?", strings.Join(fields, ", "))
}
