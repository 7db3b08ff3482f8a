package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/easyfit-labs/trialbot/internal/booking"
)

func TestSlotUnavailableWithAlternatives(t *testing.T) {
	tests := []struct {
		name         string
		alternatives []string
		want         string
	}{
		{"none", nil, "Slot nicht verfügbar - probier ein anderes Datum."},
		{"one", []string{"16:00"}, "Diese Zeit ist leider belegt. Wie wäre es um 16:00 Uhr?"},
		{"two", []string{"16:00", "11:00"}, "Diese Zeit ist leider belegt. Verfügbar wäre: 16:00 Uhr oder 11:00 Uhr."},
		{"three", []string{"16:00", "11:00", "17:00"}, "Diese Zeit ist leider belegt. Verfügbar wäre: 16:00 Uhr, 11:00 Uhr oder 17:00 Uhr."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SlotUnavailableWithAlternatives(tc.alternatives))
		})
	}
}

func TestOutcomeConfirmed(t *testing.T) {
	msg := Outcome(booking.Outcome{
		Kind:          booking.OutcomeConfirmed,
		BookingID:     "bk-42",
		StartDateTime: "2026-01-09T15:00:00+01:00",
	})

	assert.Equal(t, "Dein Probetraining am 09.01.2026 um 15:00 Uhr ist gebucht! Bestätigung per E-Mail unterwegs.", msg)
}

func TestOutcomeConfirmedUnparseableStart(t *testing.T) {
	msg := Outcome(booking.Outcome{Kind: booking.OutcomeConfirmed, StartDateTime: "kaputt"})
	assert.Equal(t, "Termin gebucht! Bestätigung per E-Mail unterwegs.", msg)
}

func TestOutcomeMissingFields(t *testing.T) {
	msg := Outcome(booking.Outcome{
		Kind:    booking.OutcomeCollectingIdentity,
		Missing: []string{"Nachname", "E-Mail-Adresse"},
	})

	assert.Equal(t, "Um deinen Termin zu buchen, brauche ich noch: Nachname, E-Mail-Adresse. Kannst du mir diese Infos geben?", msg)
}

func TestOutcomeFailureKinds(t *testing.T) {
	assert.Contains(t, Outcome(booking.Outcome{Kind: booking.OutcomeLeadValidationFailed}), "validiert")
	assert.Contains(t, Outcome(booking.Outcome{Kind: booking.OutcomeLeadCreateFailed}), "Lead")
	assert.Contains(t, Outcome(booking.Outcome{Kind: booking.OutcomeSlotRace}), "vergeben")
	assert.Contains(t, Outcome(booking.Outcome{Kind: booking.OutcomeBookingFailed}), "nicht verfügbar")
}
