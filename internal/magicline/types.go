// Package magicline is the REST client for the fitness-booking
// provider's trial-offer API. The provider encodes business failures in
// a 200 body, so callers inspect the decoded payloads, not HTTP status.
package magicline

// Slot is one bookable window offered by the provider, ISO-8601 with
// timezone offset.
type Slot struct {
	StartDateTime string `json:"startDateTime"`
	EndDateTime   string `json:"endDateTime"`
}

// LeadData identifies a prospective customer for lead validation and
// creation.
type LeadData struct {
	FirstName string
	LastName  string
	Email     string
}

// LeadValidation is the lead/validate response body.
type LeadValidation struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// LeadCreateResult is the lead/create response body. LeadCustomerID is
// the provider-assigned id all later appointment calls use.
type LeadCreateResult struct {
	Success        bool   `json:"success"`
	LeadCustomerID int64  `json:"leadCustomerId,omitempty"`
	Status         string `json:"status,omitempty"`
	Error          string `json:"error,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// Appointment validation statuses.
const (
	ValidationAvailable    = "AVAILABLE"
	ValidationNotAvailable = "NOT_AVAILABLE"
	ValidationError        = "ERROR"
)

// SlotValidation is the appointment-validate response body.
type SlotValidation struct {
	ValidationStatus string `json:"validationStatus"`
	Reason           string `json:"reason,omitempty"`
}

// Available reports whether the provider confirmed the window.
func (v SlotValidation) Available() bool {
	return v.ValidationStatus == ValidationAvailable
}

// BookingResult is the appointment-book response body. A missing
// BookingID means the booking did not happen.
type BookingResult struct {
	BookingID     string `json:"bookingId,omitempty"`
	Status        string `json:"status,omitempty"`
	StartDateTime string `json:"startDateTime,omitempty"`
	EndDateTime   string `json:"endDateTime,omitempty"`
	Error         string `json:"error,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// Confirmed reports whether the provider confirmed the booking.
func (b BookingResult) Confirmed() bool {
	return b.BookingID != "" && b.Status == "CONFIRMED"
}
