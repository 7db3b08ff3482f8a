package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMergeAbsenceNeverErases(t *testing.T) {
	stored := Profile{
		Key:        "4915112345678",
		GivenName:  "Max",
		FamilyName: "Muster",
		Email:      "max@test.de",
		Date:       "2026-01-09",
		Time:       "15:00",
	}

	merged := Merge(stored, Guess{}, Extracted{})

	assert.Equal(t, stored, merged)
}

func TestMergeExtractionBeatsGuess(t *testing.T) {
	stored := Profile{Key: "491511"}
	guess := Guess{
		"given_name": "Moritz",
		"email":      "wrong@test.de",
	}
	ext := Extracted{GivenName: "Max", Email: "max@test.de"}

	merged := Merge(stored, guess, ext)

	assert.Equal(t, "Max", merged.GivenName)
	assert.Equal(t, "max@test.de", merged.Email)
}

func TestMergeGuessFillsOnlyGaps(t *testing.T) {
	stored := Profile{Key: "491511"}
	guess := Guess{
		"given_name":  "Anna",
		"family_name": "Schmidt",
	}

	merged := Merge(stored, guess, Extracted{GivenName: "Max"})

	assert.Equal(t, "Max", merged.GivenName, "extraction value must win")
	assert.Equal(t, "Schmidt", merged.FamilyName, "guess fills the gap")
}

func TestMergeGuessNeverWritesSchedule(t *testing.T) {
	stored := Profile{Key: "491511", Date: "2026-01-09", Time: "15:00"}
	guess := Guess{
		"date":    "2027-06-01",
		"time":    "09:00",
		"datum":   "2027-06-01",
		"uhrzeit": "09:00",
	}

	merged := Merge(stored, guess, Extracted{})

	assert.Equal(t, "2026-01-09", merged.Date)
	assert.Equal(t, "15:00", merged.Time)
	assert.Empty(t, merged.Qualification, "schedule keys must not leak into qualification")
}

func TestMergeScheduleFromExtractionOnly(t *testing.T) {
	stored := Profile{Key: "491511"}
	guess := Guess{"date": "2027-06-01"}
	ext := Extracted{Date: "2026-01-09", Time: "15:00"}

	merged := Merge(stored, guess, ext)

	assert.Equal(t, "2026-01-09", merged.Date)
	assert.Equal(t, "15:00", merged.Time)
}

func TestMergeQualificationCollectsExtras(t *testing.T) {
	merged := Merge(Profile{Key: "491511"}, Guess{
		"fitness_goal": "Abnehmen",
		"experience":   "Anfänger",
	}, Extracted{})

	assert.Equal(t, "Abnehmen", merged.Qualification["fitness_goal"])
	assert.Equal(t, "Anfänger", merged.Qualification["experience"])
}

func TestRecordBookingClearsSchedule(t *testing.T) {
	p := Profile{Key: "491511", Date: "2026-01-09", Time: "15:00"}
	now := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)

	p.RecordBooking("bk-42", "2026-01-09T15:00:00+01:00", now)

	assert.Equal(t, "bk-42", p.LastBookingID)
	assert.Len(t, p.BookingHistory, 1)
	assert.Equal(t, "bk-42", p.BookingHistory[0].BookingID)
	assert.Empty(t, p.Date)
	assert.Empty(t, p.Time)
}

func TestIsReturningCustomer(t *testing.T) {
	assert.False(t, Profile{}.IsReturningCustomer())
	assert.True(t, Profile{ProviderCustomerID: 99}.IsReturningCustomer())
}
