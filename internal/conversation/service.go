package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/easyfit-labs/trialbot/internal/booking"
	"github.com/easyfit-labs/trialbot/internal/extract"
	"github.com/easyfit-labs/trialbot/internal/llm"
	"github.com/easyfit-labs/trialbot/internal/observability/metrics"
	"github.com/easyfit-labs/trialbot/internal/profile"
	"github.com/easyfit-labs/trialbot/internal/render"
	"github.com/easyfit-labs/trialbot/pkg/logging"
)

// fallbackReply is sent when the conversational model call itself
// fails; the turn still completes with extraction and booking intact.
const fallbackReply = "Entschuldige, da ist gerade etwas schiefgelaufen. Magst du das nochmal schreiben?"

// Service runs one chat turn end to end: extract, converse, normalize,
// merge, persist, and — when intent triggers — book. All work for one
// contact is serialized behind a per-key lock so concurrent deliveries
// cannot race the read-merge-write cycle.
type Service struct {
	chat         llm.Client
	extractor    *extract.Extractor
	profiles     profile.Store
	history      *historyStore
	orchestrator *booking.Orchestrator
	locks        *profile.KeyedMutex
	metrics      *metrics.BotMetrics
	logger       *logging.Logger
	loc          *time.Location
	now          func() time.Time
}

// Options wires a Service. Redis backs the transcript history;
// HistoryLimit caps it in messages (default 12).
type Options struct {
	Chat         llm.Client
	Extractor    *extract.Extractor
	Profiles     profile.Store
	Redis        *redis.Client
	HistoryLimit int
	Orchestrator *booking.Orchestrator
	Metrics      *metrics.BotMetrics
	Logger       *logging.Logger
	Location     *time.Location
}

// NewService wires the turn engine. Chat, Extractor, Profiles, Redis
// and Orchestrator are required.
func NewService(opts Options) *Service {
	if opts.Chat == nil {
		panic("conversation: chat client cannot be nil")
	}
	if opts.Extractor == nil {
		panic("conversation: extractor cannot be nil")
	}
	if opts.Profiles == nil {
		panic("conversation: profile store cannot be nil")
	}
	if opts.Orchestrator == nil {
		panic("conversation: orchestrator cannot be nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		chat:         opts.Chat,
		extractor:    opts.Extractor,
		profiles:     opts.Profiles,
		history:      newHistoryStore(opts.Redis, opts.HistoryLimit, nil),
		orchestrator: opts.Orchestrator,
		locks:        profile.NewKeyedMutex(),
		metrics:      opts.Metrics,
		logger:       logger,
		loc:          loc,
		now:          time.Now,
	}
}

// WithClock overrides the time source. Test use only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// HandleMessage processes one inbound message and returns the reply to
// send. Every turn yields exactly one reply; internal faults degrade
// rather than abort wherever the profile is not at risk.
func (s *Service) HandleMessage(ctx context.Context, contactKey, text string) (string, error) {
	unlock := s.locks.Lock(contactKey)
	defer unlock()

	s.metrics.ObserveTurn()
	log := s.logger.With("turn_id", uuid.NewString(), "key", contactKey)

	stored, _, err := s.profiles.Get(ctx, contactKey)
	if err != nil {
		return "", fmt.Errorf("conversation: turn aborted for %s: %w", contactKey, err)
	}

	extracted := s.extractor.Extract(ctx, text)
	parsed := s.converse(ctx, log, stored, contactKey, text)

	merged := profile.Merge(stored, parsed.Guess, profile.Extracted{
		GivenName:  extracted.GivenName.Value,
		FamilyName: extracted.FamilyName.Value,
		Email:      extracted.Email.Value,
		Date:       extracted.Date.Value,
		Time:       extracted.Time.Value,
	})
	if err := s.profiles.Put(ctx, merged); err != nil {
		return "", fmt.Errorf("conversation: turn aborted for %s: %w", contactKey, err)
	}

	reply := parsed.Reply
	if s.shouldBook(text, extracted, stored, merged) {
		outcome := s.orchestrator.Book(ctx, &merged)
		s.metrics.ObserveBookingOutcome(string(outcome.Kind))
		log.Info("booking attempt finished", "outcome", string(outcome.Kind))
		if err := s.profiles.Put(ctx, merged); err != nil {
			log.Error("failed to persist profile after booking", "error", err)
		}
		reply = render.Outcome(outcome)
	}

	if err := s.history.Append(ctx, contactKey, text, reply); err != nil {
		log.Warn("failed to persist transcript", "error", err)
	}
	return reply, nil
}

// converse runs the conversational model call and normalizes its
// output. A failed call degrades to a canned reply with an empty guess.
func (s *Service) converse(ctx context.Context, log *logging.Logger, stored profile.Profile, contactKey, text string) ParsedReply {
	history, err := s.history.Load(ctx, contactKey)
	if err != nil {
		log.Warn("failed to load transcript, continuing without", "error", err)
	}

	resp, err := s.chat.Generate(ctx, llm.Request{
		System:   BuildSystemPrompt(stored, s.now().In(s.loc)),
		Messages: append(history, llm.ChatMessage{Role: llm.ChatRoleUser, Content: text}),
		Sampling: llm.ChatSampling(),
	})
	if err != nil {
		log.Error("conversational model call failed", "error", err)
		return ParsedReply{Reply: fallbackReply, Guess: profile.Guess{}}
	}

	parsed := Normalize(resp.Text)
	if parsed.Fallback {
		s.metrics.ObserveNormalizerFallback()
	}
	return parsed
}

// shouldBook classifies booking intent for this turn.
func (s *Service) shouldBook(text string, extracted extract.Result, stored, merged profile.Profile) bool {
	return HasBookingIntent(IntentSignal{
		Text:            text,
		HasDate:         extracted.Date.Value != "",
		HasTime:         extracted.Time.Value != "",
		HasIdentityData: stored.HasIdentity(),
		HasStoredDate:   stored.Date != "",
		ProfileComplete: merged.HasSchedule() && (merged.IsReturningCustomer() || merged.HasIdentity()),
	})
}
