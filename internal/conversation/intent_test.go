package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasBookingIntent(t *testing.T) {
	tests := []struct {
		name string
		sig  IntentSignal
		want bool
	}{
		{
			"keyword with date",
			IntentSignal{Text: "Ich möchte ein Probetraining am 9.1.", HasDate: true},
			true,
		},
		{
			"keyword without schedule",
			IntentSignal{Text: "Was kostet ein Probetraining?"},
			false,
		},
		{
			"no keyword but identity known and date given",
			IntentSignal{Text: "am 9.1 um 15 Uhr", HasDate: true, HasTime: true, HasIdentityData: true},
			true,
		},
		{
			"no keyword, stored date, time arrives",
			IntentSignal{Text: "15 Uhr", HasTime: true, HasStoredDate: true},
			true,
		},
		{
			"stored date but only another date arrives",
			IntentSignal{Text: "doch lieber am 10.1", HasDate: true, HasStoredDate: true},
			false,
		},
		{
			"complete profile auto-triggers",
			IntentSignal{Text: "passt so", ProfileComplete: true},
			true,
		},
		{
			"plain chatter",
			IntentSignal{Text: "Wie sind eure Öffnungszeiten?"},
			false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HasBookingIntent(tc.sig))
		})
	}
}

func TestContainsBookingKeyword(t *testing.T) {
	assert.True(t, containsBookingKeyword("Ich will einen TERMIN buchen"))
	assert.True(t, containsBookingKeyword("kann ich morgen vorbeikommen?"))
	assert.False(t, containsBookingKeyword("Wie teuer ist die Mitgliedschaft?"))
}
