package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicProvider_Complete(t *testing.T) {
	var gotReq anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicAPIVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"content":     []map[string]string{{"type": "text", "text": `{"problem":"x"}`}},
			"stop_reason": "end_turn",
			"usage":       map[string]int{"input_tokens": 10, "output_tokens": 5},
		})
	}))
	defer server.Close()

	p := NewAnthropicProvider("test-key", zerolog.Nop(), WithBaseURL(server.URL), WithModel("claude-test"))
	resp, err := p.Complete(context.Background(), CompletionRequest{
		SystemPrompt: "You are a product manager.",
		UserPrompt:   "Groom this idea",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"problem":"x"}`, resp.Text)
	assert.Equal(t, "end_turn", resp.StopReason)
	assert.Equal(t, 10, resp.InputTokens)
	assert.Equal(t, "claude-test", gotReq.Model)
	assert.Equal(t, "You are a product manager.", gotReq.System)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
}

func TestAnthropicProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"type": "invalid_request_error", "message": "max_tokens required"},
		})
	}))
	defer server.Close()

	p := NewAnthropicProvider("test-key", zerolog.Nop(), WithBaseURL(server.URL))
	_, err := p.Complete(context.Background(), CompletionRequest{UserPrompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_request_error")
}

func TestAnthropicProvider_Options(t *testing.T) {
	p := NewAnthropicProvider("k", zerolog.Nop(), WithModel("m"), WithMaxTokens(512))
	assert.Equal(t, "m", p.ModelID())
	assert.Equal(t, 512, p.maxTokens)
}
