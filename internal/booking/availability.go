// Package booking owns the trial-session booking flow: the read-only
// slot-availability pre-check, the alternative-time suggestion, and the
// orchestrator that sequences the provider writes.
package booking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/easyfit-labs/trialbot/internal/magicline"
)

// Status is the tri-state result of the availability pre-check. Unknown
// (transport failure) is deliberately distinct from Unavailable: a
// failed query must never read as "slot taken".
type Status int

const (
	StatusUnknown Status = iota
	StatusAvailable
	StatusUnavailable
)

const maxAlternatives = 3

// SlotWindow is one concrete appointment window in the studio timezone.
type SlotWindow struct {
	Start time.Time
	End   time.Time
}

// StartISO renders the window start as ISO-8601 with offset, the format
// the provider expects.
func (w SlotWindow) StartISO() string { return w.Start.Format(time.RFC3339) }

// EndISO renders the window end as ISO-8601 with offset.
func (w SlotWindow) EndISO() string { return w.End.Format(time.RFC3339) }

// Date returns the window's date as YYYY-MM-DD.
func (w SlotWindow) Date() string { return w.Start.Format("2006-01-02") }

// NewSlotWindow builds the window from the profile's date (YYYY-MM-DD)
// and time (HH:MM) in the studio timezone.
func NewSlotWindow(date, timeOfDay string, duration time.Duration, loc *time.Location) (SlotWindow, error) {
	start, err := time.ParseInLocation("2006-01-02 15:04", date+" "+timeOfDay, loc)
	if err != nil {
		return SlotWindow{}, fmt.Errorf("booking: invalid slot window %s %s: %w", date, timeOfDay, err)
	}
	return SlotWindow{Start: start, End: start.Add(duration)}, nil
}

// AvailabilityProvider is the read-only slice of the provider API the
// checker needs.
type AvailabilityProvider interface {
	AvailableSlots(ctx context.Context, date string, durationMinutes int) ([]magicline.Slot, error)
}

// Availability is the pre-check result. Alternatives is populated only
// for StatusUnavailable and holds at most three HH:MM times, closest to
// the requested time first.
type Availability struct {
	Status       Status
	Alternatives []string
}

// Checker performs the read-only availability pre-check. It never has
// side effects on the provider.
type Checker struct {
	provider AvailabilityProvider
	loc      *time.Location
}

// NewChecker creates a Checker. loc is the studio timezone used to
// normalize provider timestamps for comparison.
func NewChecker(provider AvailabilityProvider, loc *time.Location) *Checker {
	if provider == nil {
		panic("booking: provider cannot be nil")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Checker{provider: provider, loc: loc}
}

// Check fetches the day's slots fresh and classifies the window. A
// transport failure degrades to StatusUnknown so the caller can fall
// back to the no-pre-check path.
func (c *Checker) Check(ctx context.Context, window SlotWindow) (Availability, error) {
	duration := int(window.End.Sub(window.Start).Minutes())
	slots, err := c.provider.AvailableSlots(ctx, window.Date(), duration)
	if err != nil {
		return Availability{Status: StatusUnknown}, err
	}

	target := minutesOfDay(window.Start.In(c.loc))
	if isAvailable(target, slots, c.loc) {
		return Availability{Status: StatusAvailable}, nil
	}
	return Availability{
		Status:       StatusUnavailable,
		Alternatives: alternatives(target, slots, c.loc, maxAlternatives),
	}, nil
}

// isAvailable reports an exact minute-level match between the requested
// time and any offered slot, both normalized to the studio timezone.
func isAvailable(targetMinutes int, slots []magicline.Slot, loc *time.Location) bool {
	for _, slot := range slots {
		if m, ok := slotMinutes(slot, loc); ok && m == targetMinutes {
			return true
		}
	}
	return false
}

// alternatives ranks the day's slots by absolute time-of-day distance
// from the requested time, ties broken chronologically, and returns up
// to max formatted HH:MM times.
func alternatives(targetMinutes int, slots []magicline.Slot, loc *time.Location, max int) []string {
	type candidate struct {
		minutes  int
		distance int
	}
	candidates := make([]candidate, 0, len(slots))
	for _, slot := range slots {
		m, ok := slotMinutes(slot, loc)
		if !ok {
			continue
		}
		distance := m - targetMinutes
		if distance < 0 {
			distance = -distance
		}
		candidates = append(candidates, candidate{minutes: m, distance: distance})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].minutes < candidates[j].minutes
	})

	if len(candidates) > max {
		candidates = candidates[:max]
	}
	times := make([]string, len(candidates))
	for i, c := range candidates {
		times[i] = fmt.Sprintf("%02d:%02d", c.minutes/60, c.minutes%60)
	}
	return times
}

func slotMinutes(slot magicline.Slot, loc *time.Location) (int, bool) {
	start, err := time.Parse(time.RFC3339, slot.StartDateTime)
	if err != nil {
		return 0, false
	}
	return minutesOfDay(start.In(loc)), true
}

func minutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
