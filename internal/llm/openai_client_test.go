package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mysterrors "mystique/internal/errors"
	"mystique/internal/ports"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) ports.LLMClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewOpenAIClient("test-model", Config{
		APIKey:  "sk-test",
		BaseURL: srv.URL,
	})
	require.NoError(t, err)
	return client
}

func TestCompleteSendsOpenAIRequest(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	var auth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "A bright omen."}, "finish_reason": "stop"},
			},
			"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17},
		})
	})

	resp, err := client.Complete(context.Background(), ports.CompletionRequest{
		Messages: []ports.Message{
			ports.TextMessage(ports.RoleSystem, "You are a fortune teller."),
			ports.TextMessage(ports.RoleUser, "What lies ahead?"),
		},
		Temperature:      0.7,
		MaxTokens:        500,
		PresencePenalty:  0.6,
		FrequencyPenalty: 0.6,
	})
	require.NoError(t, err)

	assert.Equal(t, "A bright omen.", resp.Content)
	assert.Equal(t, "stop", resp.StopReason)
	assert.Equal(t, 12, resp.Usage.PromptTokens)
	assert.Equal(t, 5, resp.Usage.CompletionTokens)

	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "test-model", captured["model"])
	assert.Equal(t, false, captured["stream"])
	assert.InDelta(t, 0.6, captured["presence_penalty"], 1e-9)
	assert.InDelta(t, 0.6, captured["frequency_penalty"], 1e-9)

	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
}

func TestCompleteMultimodalMessage(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "I see shapes."}, "finish_reason": "stop"},
			},
		})
	})

	_, err := client.Complete(context.Background(), ports.CompletionRequest{
		Messages: []ports.Message{
			{
				Role: ports.RoleUser,
				Parts: []ports.ContentPart{
					{Type: "text", Text: "Read this image."},
					{Type: "image_url", ImageURL: "data:image/png;base64,AAAA"},
				},
			},
		},
	})
	require.NoError(t, err)

	messages := captured["messages"].([]any)
	content := messages[0].(map[string]any)["content"].([]any)
	require.Len(t, content, 2)
	imagePart := content[1].(map[string]any)
	assert.Equal(t, "image_url", imagePart["type"])
	assert.Equal(t, "data:image/png;base64,AAAA",
		imagePart["image_url"].(map[string]any)["url"])
}

func TestCompleteMapsRateLimit(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	})

	_, err := client.Complete(context.Background(), ports.CompletionRequest{
		Messages: []ports.Message{ports.TextMessage(ports.RoleUser, "hi")},
	})
	require.Error(t, err)
	assert.True(t, mysterrors.IsRateLimited(err))
	assert.False(t, mysterrors.IsTransient(err))

	var rateErr *mysterrors.RateLimitedError
	require.ErrorAs(t, err, &rateErr)
	assert.Equal(t, 30, rateErr.RetryAfter)
}

func TestCompleteMapsServerError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})

	_, err := client.Complete(context.Background(), ports.CompletionRequest{
		Messages: []ports.Message{ports.TextMessage(ports.RoleUser, "hi")},
	})
	require.Error(t, err)
	assert.True(t, mysterrors.IsTransient(err))
}

func TestCompleteMapsClientError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	})

	_, err := client.Complete(context.Background(), ports.CompletionRequest{
		Messages: []ports.Message{ports.TextMessage(ports.RoleUser, "hi")},
	})
	require.Error(t, err)
	assert.True(t, mysterrors.IsPermanent(err))
}

func TestCompleteEmptyChoicesYieldsEmptyContent(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	resp, err := client.Complete(context.Background(), ports.CompletionRequest{
		Messages: []ports.Message{ports.TextMessage(ports.RoleUser, "hi")},
	})
	// Empty completions are not errors; the fortune service substitutes the
	// localized fallback text.
	require.NoError(t, err)
	assert.Empty(t, resp.Content)
}

func TestCompleteCancelledContext(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, ports.CompletionRequest{
		Messages: []ports.Message{ports.TextMessage(ports.RoleUser, "hi")},
	})
	require.ErrorIs(t, err, context.Canceled)
}
