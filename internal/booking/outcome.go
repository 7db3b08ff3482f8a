package booking

// OutcomeKind names the terminal result of one booking attempt. The
// orchestrator selects the kind; rendering the localized message is the
// caller's job.
type OutcomeKind string

const (
	// OutcomeCollectingIdentity: new-lead branch still needs name or
	// email before scheduling may proceed.
	OutcomeCollectingIdentity OutcomeKind = "collecting_identity"
	// OutcomeCollectingSchedule: date or time still missing.
	OutcomeCollectingSchedule OutcomeKind = "collecting_schedule"
	// OutcomeConfirmed: the provider confirmed the booking.
	OutcomeConfirmed OutcomeKind = "confirmed"
	// OutcomeSlotUnavailable: pre-check said the slot is taken; no
	// provider write happened.
	OutcomeSlotUnavailable OutcomeKind = "slot_unavailable"
	// OutcomeLeadValidationFailed: the provider rejected the lead data.
	OutcomeLeadValidationFailed OutcomeKind = "lead_validation_failed"
	// OutcomeLeadCreateFailed: lead creation failed, including the
	// duplicate-email case.
	OutcomeLeadCreateFailed OutcomeKind = "lead_create_failed"
	// OutcomeSlotRace: the slot vanished between pre-check and the
	// final validate.
	OutcomeSlotRace OutcomeKind = "slot_race"
	// OutcomeBookingFailed: the final book call failed.
	OutcomeBookingFailed OutcomeKind = "booking_failed"
)

// Outcome is the single terminal result of a turn's booking attempt.
type Outcome struct {
	Kind OutcomeKind
	// Alternatives is set for OutcomeSlotUnavailable: up to three HH:MM
	// suggestions, closest to the requested time first.
	Alternatives []string
	// Missing lists the profile fields still needed, for the two
	// collecting outcomes.
	Missing []string
	// BookingID and StartDateTime are set for OutcomeConfirmed.
	BookingID     string
	StartDateTime string
}

// Booked reports whether the attempt ended in a confirmed booking.
func (o Outcome) Booked() bool { return o.Kind == OutcomeConfirmed }
