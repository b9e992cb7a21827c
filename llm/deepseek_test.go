package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/cartograph/persistence"
)

func TestChatRequiresAPIKey(t *testing.T) {
	c := NewClient("")
	_, err := c.Chat(context.Background(), ModelChat, "hi", "", nil)
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func newStub(t *testing.T, capture *chatRequest, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		w.Header().Set("Content-Type", "application/json")
		payload := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(payload))
	}))
}

func TestChatModelPayload(t *testing.T) {
	var captured chatRequest
	stub := newStub(t, &captured, "answer")
	defer stub.Close()

	c := NewClient("sk-test")
	c.BaseURL = stub.URL

	history := []persistence.ChatMessage{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}
	reply, err := c.Chat(context.Background(), ModelChat, "what now?", "CONTEXT BLOCK", history)
	require.NoError(t, err)
	assert.Equal(t, "answer", reply)

	assert.Equal(t, ModelChat, captured.Model)
	assert.Equal(t, chatTemperature, captured.Temperature)
	assert.Equal(t, maxResponseTokens, captured.MaxTokens)

	// System prompt first, then history, then the fresh user turn.
	require.Len(t, captured.Messages, 4)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[0].Content, "CONTEXT BLOCK")
	assert.Equal(t, "earlier question", captured.Messages[1].Content)
	assert.Equal(t, "earlier answer", captured.Messages[2].Content)
	assert.Equal(t, chatMessage{Role: "user", Content: "what now?"}, captured.Messages[3])
}

func TestChatReasonerPayload(t *testing.T) {
	var captured chatRequest
	stub := newStub(t, &captured, "reasoned")
	defer stub.Close()

	c := NewClient("sk-test")
	c.BaseURL = stub.URL

	reply, err := c.Chat(context.Background(), ModelReasoner, "refactor this", "CONTEXT BLOCK", nil)
	require.NoError(t, err)
	assert.Equal(t, "reasoned", reply)

	assert.Equal(t, reasonerTemperature, captured.Temperature)
	// No system prompt; the task format wraps the user turn instead.
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[0].Content, "Task: refactor this")
	assert.Contains(t, captured.Messages[0].Content, "CONTEXT BLOCK")
	assert.Contains(t, captured.Messages[0].Content, "Output Format:")
}

func TestChatHistoryWindowed(t *testing.T) {
	var captured chatRequest
	stub := newStub(t, &captured, "ok")
	defer stub.Close()

	c := NewClient("sk-test")
	c.BaseURL = stub.URL

	var history []persistence.ChatMessage
	for i := 0; i < 25; i++ {
		history = append(history, persistence.ChatMessage{Role: "user", Content: "m"})
	}
	_, err := c.Chat(context.Background(), ModelChat, "q", "", history)
	require.NoError(t, err)

	// system + last 10 history turns + current user turn.
	assert.Len(t, captured.Messages, 12)
}

func TestChatSurfacesAPIError(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer stub.Close()

	c := NewClient("sk-test")
	c.BaseURL = stub.URL

	_, err := c.Chat(context.Background(), ModelChat, "q", "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}
