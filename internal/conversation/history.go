package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/easyfit-labs/trialbot/internal/llm"
)

const historyTTL = 24 * time.Hour

// historyStore keeps the recent transcript per contact so the
// conversational model sees context across turns. Entries expire after a
// day of silence and the transcript is capped to the configured limit.
type historyStore struct {
	redis  *redis.Client
	limit  int
	tracer trace.Tracer
}

func newHistoryStore(rdb *redis.Client, limit int, tracer trace.Tracer) *historyStore {
	if rdb == nil {
		panic("conversation: redis client cannot be nil")
	}
	if limit <= 0 {
		limit = 12
	}
	if tracer == nil {
		tracer = otel.Tracer("trialbot.internal.conversation.history")
	}
	return &historyStore{redis: rdb, limit: limit, tracer: tracer}
}

func historyKey(contactKey string) string {
	return fmt.Sprintf("history:%s", contactKey)
}

// Load returns the stored transcript, empty when the contact is new or
// the entry expired.
func (s *historyStore) Load(ctx context.Context, contactKey string) ([]llm.ChatMessage, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.load_history")
	defer span.End()

	data, err := s.redis.Get(ctx, historyKey(contactKey)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to load history: %w", err)
	}

	var history []llm.ChatMessage
	if err := json.Unmarshal(data, &history); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to decode history: %w", err)
	}
	return history, nil
}

// Append adds this turn's user message and reply, trims to the limit,
// and refreshes the TTL.
func (s *historyStore) Append(ctx context.Context, contactKey, userText, replyText string) error {
	ctx, span := s.tracer.Start(ctx, "conversation.append_history")
	defer span.End()

	history, err := s.Load(ctx, contactKey)
	if err != nil {
		return err
	}
	history = append(history,
		llm.ChatMessage{Role: llm.ChatRoleUser, Content: userText},
		llm.ChatMessage{Role: llm.ChatRoleAssistant, Content: replyText},
	)
	if len(history) > s.limit {
		history = history[len(history)-s.limit:]
	}

	data, err := json.Marshal(history)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to marshal history: %w", err)
	}
	if err := s.redis.Set(ctx, historyKey(contactKey), data, historyTTL).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to persist history: %w", err)
	}
	return nil
}
