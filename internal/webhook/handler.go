// Package webhook receives WhatsApp Cloud API callbacks: the GET
// verification handshake and the POST message ingest that feeds the
// conversation engine.
package webhook

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/easyfit-labs/trialbot/pkg/logging"
)

// TurnHandler processes one inbound message and returns the reply.
type TurnHandler interface {
	HandleMessage(ctx context.Context, contactKey, text string) (string, error)
}

// Sender delivers the reply back to the contact.
type Sender interface {
	Send(ctx context.Context, to, text string) error
}

// Handler serves the Meta webhook endpoints.
type Handler struct {
	verifyToken string
	turns       TurnHandler
	sender      Sender
	dedupe      *Deduper
	logger      *logging.Logger
}

// NewHandler creates the webhook handler.
func NewHandler(verifyToken string, turns TurnHandler, sender Sender, dedupe *Deduper, logger *logging.Logger) *Handler {
	if turns == nil {
		panic("webhook: turn handler cannot be nil")
	}
	if sender == nil {
		panic("webhook: sender cannot be nil")
	}
	if dedupe == nil {
		dedupe = NewDeduper(0, 0)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		verifyToken: verifyToken,
		turns:       turns,
		sender:      sender,
		dedupe:      dedupe,
		logger:      logger,
	}
}

// Routes mounts the webhook endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/webhook", h.Verify)
	r.Post("/webhook", h.Ingest)
}

// Verify answers Meta's subscription handshake: echo the challenge when
// the token matches, 403 otherwise.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") == "subscribe" && q.Get("hub.verify_token") == h.verifyToken {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(q.Get("hub.challenge")))
		return
	}
	http.Error(w, "Falscher Token", http.StatusForbidden)
}

// metaPayload mirrors the slice of the WhatsApp Cloud API callback we
// consume. Everything else (statuses, media, reactions) is ignored.
type metaPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []inboundMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type inboundMessage struct {
	ID   string `json:"id"`
	From string `json:"from"`
	Type string `json:"type"`
	Text struct {
		Body string `json:"body"`
	} `json:"text"`
}

// Ingest handles inbound messages. It always acknowledges with 200 so
// Meta does not retry; processing failures are logged, not surfaced.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	var payload metaPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Warn("undecodable webhook payload", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				h.process(r.Context(), msg)
			}
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) process(ctx context.Context, msg inboundMessage) {
	if msg.Type != "text" || msg.Text.Body == "" || msg.From == "" {
		return
	}
	if msg.ID != "" && h.dedupe.Seen(msg.ID) {
		h.logger.Info("duplicate delivery skipped", "message_id", msg.ID)
		return
	}

	reply, err := h.turns.HandleMessage(ctx, msg.From, msg.Text.Body)
	if err != nil {
		h.logger.Error("turn processing failed", "from", msg.From, "error", err)
		return
	}
	if reply == "" {
		return
	}
	if err := h.sender.Send(ctx, msg.From, reply); err != nil {
		h.logger.Error("failed to send reply", "to", msg.From, "error", err)
	}
}
