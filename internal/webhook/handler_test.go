package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyfit-labs/trialbot/pkg/logging"
)

type recordingTurns struct {
	mu    sync.Mutex
	calls []string
	reply string
}

func (r *recordingTurns) HandleMessage(_ context.Context, contactKey, text string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, contactKey+"|"+text)
	return r.reply, nil
}

type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingSender) Send(_ context.Context, to, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, to+"|"+text)
	return nil
}

func newTestHandler() (*Handler, *recordingTurns, *recordingSender) {
	turns := &recordingTurns{reply: "Alles klar!"}
	sender := &recordingSender{}
	h := NewHandler("secret-token", turns, sender, NewDeduper(time.Minute, 16), logging.Discard())
	return h, turns, sender
}

func TestVerifyHandshake(t *testing.T) {
	h, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	h.Verify(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12345", rec.Body.String())
}

func TestVerifyRejectsWrongToken(t *testing.T) {
	h, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	h.Verify(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

const samplePayload = `{
  "entry": [{
    "changes": [{
      "value": {
        "messages": [{
          "id": "wamid.1",
          "from": "4915112345678",
          "type": "text",
          "text": {"body": "Hallo!"}
        }]
      }
    }]
  }]
}`

func TestIngestProcessesAndReplies(t *testing.T) {
	h, turns, sender := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(samplePayload))
	rec := httptest.NewRecorder()
	h.Ingest(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, turns.calls, 1)
	assert.Equal(t, "4915112345678|Hallo!", turns.calls[0])
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "4915112345678|Alles klar!", sender.sent[0])
}

func TestIngestSkipsDuplicateDeliveries(t *testing.T) {
	h, turns, _ := newTestHandler()

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(samplePayload))
		h.Ingest(httptest.NewRecorder(), req)
	}

	assert.Len(t, turns.calls, 1, "redelivered message ids run exactly one turn")
}

func TestIngestIgnoresNonTextAndStatuses(t *testing.T) {
	h, turns, _ := newTestHandler()

	payload := `{"entry": [{"changes": [{"value": {"messages": [{"id": "wamid.2", "from": "49151", "type": "image"}]}}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	h.Ingest(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, turns.calls)
}

func TestIngestAcknowledgesGarbage(t *testing.T) {
	h, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	h.Ingest(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, "Meta must not retry on our parse failures")
}

func TestDeduperExpiry(t *testing.T) {
	d := NewDeduper(time.Minute, 16)
	current := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return current }

	assert.False(t, d.Seen("a"))
	assert.True(t, d.Seen("a"))

	current = current.Add(2 * time.Minute)
	assert.False(t, d.Seen("a"), "expired entries are forgotten")
}

func TestDeduperCap(t *testing.T) {
	d := NewDeduper(time.Hour, 4)
	current := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return current }

	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		current = current.Add(time.Second)
		d.Seen(id)
	}

	d.mu.Lock()
	size := len(d.seen)
	d.mu.Unlock()
	assert.LessOrEqual(t, size, 4, "the set stays bounded under flood")
}
