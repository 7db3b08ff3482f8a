// Package profile owns the customer profile: the cross-turn state the
// booking flow accumulates, the merge rules that guard it, and its
// Redis persistence.
package profile

import (
	"time"
)

// BookingRecord is one confirmed booking, appended to the profile history.
type BookingRecord struct {
	BookingID string    `json:"booking_id"`
	StartsAt  string    `json:"starts_at"`
	BookedAt  time.Time `json:"booked_at"`
}

// Profile is the per-contact state keyed by the WhatsApp phone number.
// Date and Time hold the pending trial-session request (YYYY-MM-DD and
// HH:MM) until a booking confirms or the orchestrator clears them.
type Profile struct {
	Key                string            `json:"key"`
	GivenName          string            `json:"given_name,omitempty"`
	FamilyName         string            `json:"family_name,omitempty"`
	Email              string            `json:"email,omitempty"`
	Date               string            `json:"date,omitempty"`
	Time               string            `json:"time,omitempty"`
	ProviderCustomerID int64             `json:"provider_customer_id,omitempty"`
	LastBookingID      string            `json:"last_booking_id,omitempty"`
	BookingHistory     []BookingRecord   `json:"booking_history,omitempty"`
	Qualification      map[string]string `json:"qualification,omitempty"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// HasIdentity reports whether name and email are known.
func (p Profile) HasIdentity() bool {
	return p.GivenName != "" && p.FamilyName != "" && p.Email != ""
}

// HasSchedule reports whether a concrete date and time are pending.
func (p Profile) HasSchedule() bool {
	return p.Date != "" && p.Time != ""
}

// IsReturningCustomer reports whether the provider already knows this
// contact. Returning customers skip identity collection and lead creation.
func (p Profile) IsReturningCustomer() bool {
	return p.ProviderCustomerID != 0
}

// ClearSchedule drops the pending date/time so the next turn restarts
// schedule collection cleanly.
func (p *Profile) ClearSchedule() {
	p.Date = ""
	p.Time = ""
}

// RecordBooking persists a confirmed booking and clears the transient
// schedule fields.
func (p *Profile) RecordBooking(bookingID, startsAt string, now time.Time) {
	p.LastBookingID = bookingID
	p.BookingHistory = append(p.BookingHistory, BookingRecord{
		BookingID: bookingID,
		StartsAt:  startsAt,
		BookedAt:  now,
	})
	p.ClearSchedule()
}

// Extracted carries the dedicated-extraction values for one turn.
// Empty string means "no value this turn".
type Extracted struct {
	GivenName  string
	FamilyName string
	Email      string
	Date       string
	Time       string
}

// Guess is the conversational model's profile guess with null values
// already dropped by the normalizer. Keys outside the identity fields
// land in the qualification map.
type Guess map[string]string

// Guess keys the merger recognizes as identity fields.
const (
	guessKeyGivenName  = "given_name"
	guessKeyFamilyName = "family_name"
	guessKeyEmail      = "email"
)

// guessKeysIgnored are never applied from the conversational guess:
// date/time come exclusively from dedicated extraction.
var guessKeysIgnored = map[string]struct{}{
	"date": {}, "time": {}, "datum": {}, "uhrzeit": {},
}

// Merge combines the stored profile, this turn's conversational guess,
// and this turn's dedicated extraction into the new profile.
//
// Rules, in priority order:
//   - dedicated-extraction values win over the guess for the same turn;
//   - the guess fills identity fields only where extraction was silent;
//   - date/time are never written from the guess;
//   - a non-empty value always replaces, an empty one never erases.
func Merge(stored Profile, guess Guess, ext Extracted) Profile {
	merged := stored

	setIfPresent(&merged.GivenName, ext.GivenName)
	setIfPresent(&merged.FamilyName, ext.FamilyName)
	setIfPresent(&merged.Email, ext.Email)
	setIfPresent(&merged.Date, ext.Date)
	setIfPresent(&merged.Time, ext.Time)

	for key, value := range guess {
		if value == "" {
			continue
		}
		if _, ignored := guessKeysIgnored[key]; ignored {
			continue
		}
		switch key {
		case guessKeyGivenName:
			if ext.GivenName == "" {
				merged.GivenName = value
			}
		case guessKeyFamilyName:
			if ext.FamilyName == "" {
				merged.FamilyName = value
			}
		case guessKeyEmail:
			if ext.Email == "" {
				merged.Email = value
			}
		default:
			if merged.Qualification == nil {
				merged.Qualification = make(map[string]string)
			}
			merged.Qualification[key] = value
		}
	}

	return merged
}

func setIfPresent(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
