package magicline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/easyfit-labs/trialbot/pkg/logging"
)

const defaultTimeout = 10 * time.Second

// Client talks to one studio's trial-offer endpoints.
type Client struct {
	baseURL            string
	apiKey             string
	studioID           int64
	bookableID         int64
	trialOfferConfigID int64
	httpClient         *http.Client
	logger             *logging.Logger
}

// Config carries the studio-specific identifiers every call needs.
type Config struct {
	BaseURL            string
	APIKey             string
	StudioID           int64
	BookableID         int64
	TrialOfferConfigID int64
	Timeout            time.Duration
}

// NewClient creates a provider client for one studio.
func NewClient(cfg Config, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:            cfg.BaseURL,
		apiKey:             cfg.APIKey,
		studioID:           cfg.StudioID,
		bookableID:         cfg.BookableID,
		trialOfferConfigID: cfg.TrialOfferConfigID,
		httpClient:         &http.Client{Timeout: timeout},
		logger:             logger,
	}
}

// AvailableSlots fetches the bookable windows for one date. Read-only;
// an error here means transport failure, never "no slots".
func (c *Client) AvailableSlots(ctx context.Context, date string, durationMinutes int) ([]Slot, error) {
	endpoint := fmt.Sprintf("%s/trial-offers/bookable-trial-offers/appointments/bookable/%d/slots", c.baseURL, c.bookableID)
	query := url.Values{
		"date":     {date},
		"duration": {strconv.Itoa(durationMinutes)},
	}

	body, err := c.get(ctx, endpoint+"?"+query.Encode())
	if err != nil {
		return nil, err
	}

	// The API returns either a bare array or an object wrapping it.
	var slots []Slot
	if err := json.Unmarshal(body, &slots); err == nil {
		return slots, nil
	}
	var wrapped struct {
		Slots []Slot `json:"slots"`
		Items []Slot `json:"items"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("magicline: failed to decode slots response: %w", err)
	}
	if wrapped.Slots != nil {
		return wrapped.Slots, nil
	}
	return wrapped.Items, nil
}

type leadRequest struct {
	StudioID           int64  `json:"studioId"`
	TrialOfferConfigID int64  `json:"trialOfferConfigId"`
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	Email              string `json:"email"`
}

func (c *Client) leadRequest(lead LeadData) leadRequest {
	return leadRequest{
		StudioID:           c.studioID,
		TrialOfferConfigID: c.trialOfferConfigID,
		FirstName:          lead.FirstName,
		LastName:           lead.LastName,
		Email:              lead.Email,
	}
}

// ValidateLead checks lead data before creation. Invalid data comes
// back as Valid=false with a message, not as an error.
func (c *Client) ValidateLead(ctx context.Context, lead LeadData) (LeadValidation, error) {
	var out LeadValidation
	if err := c.post(ctx, "/trial-offers/lead/validate", c.leadRequest(lead), &out); err != nil {
		return LeadValidation{}, err
	}
	return out, nil
}

// CreateLead registers the lead with the provider. This is the first
// irreversible write in the booking flow.
func (c *Client) CreateLead(ctx context.Context, lead LeadData) (LeadCreateResult, error) {
	var out LeadCreateResult
	if err := c.post(ctx, "/trial-offers/lead/create", c.leadRequest(lead), &out); err != nil {
		return LeadCreateResult{}, err
	}
	return out, nil
}

type appointmentRequest struct {
	BookableAppointmentID int64  `json:"bookableAppointmentId"`
	CustomerID            int64  `json:"customerId"`
	StartDateTime         string `json:"startDateTime"`
	EndDateTime           string `json:"endDateTime"`
}

// ValidateAppointment asks the provider whether the window is still
// free for this customer.
func (c *Client) ValidateAppointment(ctx context.Context, customerID int64, startDateTime, endDateTime string) (SlotValidation, error) {
	req := appointmentRequest{
		BookableAppointmentID: c.bookableID,
		CustomerID:            customerID,
		StartDateTime:         startDateTime,
		EndDateTime:           endDateTime,
	}
	var out SlotValidation
	if err := c.post(ctx, "/trial-offers/appointments/booking/validate", req, &out); err != nil {
		return SlotValidation{}, err
	}
	return out, nil
}

// BookAppointment books the window for the customer.
func (c *Client) BookAppointment(ctx context.Context, customerID int64, startDateTime, endDateTime string) (BookingResult, error) {
	req := appointmentRequest{
		BookableAppointmentID: c.bookableID,
		CustomerID:            customerID,
		StartDateTime:         startDateTime,
		EndDateTime:           endDateTime,
	}
	var out BookingResult
	if err := c.post(ctx, "/trial-offers/appointments/booking/book", req, &out); err != nil {
		return BookingResult{}, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("magicline: failed to build request: %w", err)
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("magicline: failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("magicline: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	respBody, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("magicline: failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("magicline: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("magicline: failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("provider returned non-200",
			"status", resp.StatusCode,
			"path", req.URL.Path,
		)
		return nil, fmt.Errorf("magicline: unexpected status %d", resp.StatusCode)
	}
	return body, nil
}
