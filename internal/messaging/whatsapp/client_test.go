package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyfit-labs/trialbot/pkg/logging"
)

func TestSend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/12345/messages", r.URL.Path)
		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))

		var msg map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		assert.Equal(t, "whatsapp", msg["messaging_product"])
		assert.Equal(t, "4915112345678", msg["to"])
		assert.Equal(t, "Hallo!", msg["text"].(map[string]any)["body"])

		w.Write([]byte(`{"messages":[{"id":"wamid.out"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token-abc", "12345", logging.Discard())
	assert.NoError(t, client.Send(context.Background(), "4915112345678", "Hallo!"))
}

func TestSendRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid token"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad", "12345", logging.Discard())
	assert.Error(t, client.Send(context.Background(), "49151", "Hallo!"))
}
