package booking

import (
	"context"
	"time"

	"github.com/easyfit-labs/trialbot/internal/magicline"
	"github.com/easyfit-labs/trialbot/internal/profile"
	"github.com/easyfit-labs/trialbot/pkg/logging"
)

// Provider is the full provider surface the orchestrator sequences.
// *magicline.Client satisfies it; tests substitute a counting fake.
type Provider interface {
	AvailabilityProvider
	ValidateLead(ctx context.Context, lead magicline.LeadData) (magicline.LeadValidation, error)
	CreateLead(ctx context.Context, lead magicline.LeadData) (magicline.LeadCreateResult, error)
	ValidateAppointment(ctx context.Context, customerID int64, startDateTime, endDateTime string) (magicline.SlotValidation, error)
	BookAppointment(ctx context.Context, customerID int64, startDateTime, endDateTime string) (magicline.BookingResult, error)
}

// Orchestrator runs one booking attempt as a strictly sequential chain
// of provider calls, each gating the next. It never retries a call:
// retries only happen via the user's next message re-entering the flow.
type Orchestrator struct {
	provider Provider
	checker  *Checker
	store    profile.Store
	duration time.Duration
	loc      *time.Location
	logger   *logging.Logger
	now      func() time.Time
}

// NewOrchestrator wires the booking flow. duration is the slot length
// (default 30 minutes when zero); loc is the studio timezone.
func NewOrchestrator(provider Provider, store profile.Store, duration time.Duration, loc *time.Location, logger *logging.Logger) *Orchestrator {
	if provider == nil {
		panic("booking: provider cannot be nil")
	}
	if store == nil {
		panic("booking: store cannot be nil")
	}
	if duration <= 0 {
		duration = 30 * time.Minute
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Orchestrator{
		provider: provider,
		checker:  NewChecker(provider, loc),
		store:    store,
		duration: duration,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Test use only.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// Book attempts to book the trial session described by the profile.
// The profile is mutated in place (schedule cleared on terminal
// failures, booking recorded on success); the caller persists it after
// the turn. Book always returns exactly one outcome and never panics a
// turn away: provider trouble maps to a Failed kind.
func (o *Orchestrator) Book(ctx context.Context, p *profile.Profile) Outcome {
	if missing := o.missingFields(p); len(missing) > 0 {
		if !p.IsReturningCustomer() && !p.HasIdentity() {
			return Outcome{Kind: OutcomeCollectingIdentity, Missing: missing}
		}
		return Outcome{Kind: OutcomeCollectingSchedule, Missing: missing}
	}

	window, err := NewSlotWindow(p.Date, p.Time, o.duration, o.loc)
	if err != nil {
		o.logger.Warn("unbookable slot window", "key", p.Key, "date", p.Date, "time", p.Time, "error", err)
		p.ClearSchedule()
		return Outcome{Kind: OutcomeCollectingSchedule, Missing: []string{"Wunschdatum", "Uhrzeit"}}
	}

	// Pre-check: read-only gate before any irreversible write. A
	// transport failure degrades to the legacy no-pre-check path.
	availability, err := o.checker.Check(ctx, window)
	switch availability.Status {
	case StatusUnavailable:
		p.ClearSchedule()
		return Outcome{Kind: OutcomeSlotUnavailable, Alternatives: availability.Alternatives}
	case StatusUnknown:
		o.logger.Warn("availability pre-check failed, proceeding without gate", "key", p.Key, "error", err)
	}

	customerID := p.ProviderCustomerID
	if !p.IsReturningCustomer() {
		outcome, ok := o.createLead(ctx, p)
		if !ok {
			return outcome
		}
		customerID = p.ProviderCustomerID
	}

	validation, err := o.provider.ValidateAppointment(ctx, customerID, window.StartISO(), window.EndISO())
	if err != nil || !validation.Available() {
		if err != nil {
			o.logger.Error("appointment validation failed", "key", p.Key, "error", err)
		}
		p.ClearSchedule()
		return Outcome{Kind: OutcomeSlotRace}
	}

	result, err := o.provider.BookAppointment(ctx, customerID, window.StartISO(), window.EndISO())
	if err != nil || !result.Confirmed() {
		if err != nil {
			o.logger.Error("booking call failed", "key", p.Key, "error", err)
		}
		// Never leave a profile pointing at a nonexistent booking.
		p.ClearSchedule()
		return Outcome{Kind: OutcomeBookingFailed}
	}

	p.RecordBooking(result.BookingID, result.StartDateTime, o.now().UTC())
	o.logger.Info("trial session booked", "key", p.Key, "booking_id", result.BookingID, "start", result.StartDateTime)
	return Outcome{
		Kind:          OutcomeConfirmed,
		BookingID:     result.BookingID,
		StartDateTime: result.StartDateTime,
	}
}

// createLead runs the new-lead branch: validate, then create. On
// success the provider-assigned id is persisted immediately so a retry
// after a later failure re-enters as an existing customer instead of
// creating a duplicate lead.
func (o *Orchestrator) createLead(ctx context.Context, p *profile.Profile) (Outcome, bool) {
	lead := magicline.LeadData{
		FirstName: p.GivenName,
		LastName:  p.FamilyName,
		Email:     p.Email,
	}

	validation, err := o.provider.ValidateLead(ctx, lead)
	if err != nil || !validation.Valid {
		if err != nil {
			o.logger.Error("lead validation failed", "key", p.Key, "error", err)
		} else {
			o.logger.Info("lead rejected by provider", "key", p.Key, "message", validation.Message)
		}
		return Outcome{Kind: OutcomeLeadValidationFailed}, false
	}

	created, err := o.provider.CreateLead(ctx, lead)
	if err != nil || !created.Success || created.LeadCustomerID == 0 {
		if err != nil {
			o.logger.Error("lead creation failed", "key", p.Key, "error", err)
		} else {
			o.logger.Info("lead creation rejected", "key", p.Key, "reason", created.Reason)
		}
		return Outcome{Kind: OutcomeLeadCreateFailed}, false
	}

	p.ProviderCustomerID = created.LeadCustomerID
	if err := o.store.Put(ctx, *p); err != nil {
		o.logger.Error("failed to persist lead id", "key", p.Key, "error", err)
	}
	return Outcome{}, true
}

// missingFields lists what still blocks a booking attempt, in the order
// the user should be asked. Identity is waived for returning customers.
func (o *Orchestrator) missingFields(p *profile.Profile) []string {
	var missing []string
	if !p.IsReturningCustomer() {
		if p.GivenName == "" {
			missing = append(missing, "Vorname")
		}
		if p.FamilyName == "" {
			missing = append(missing, "Nachname")
		}
		if p.Email == "" {
			missing = append(missing, "E-Mail-Adresse")
		}
	}
	if p.Date == "" {
		missing = append(missing, "Wunschdatum")
	}
	if p.Time == "" {
		missing = append(missing, "Uhrzeit")
	}
	return missing
}
