package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pilot/pkg/llm"
	"github.com/entrhq/pilot/pkg/types"
)

func sseServer(t *testing.T, lines ...string) (*httptest.Server, *[]byte) {
	t.Helper()
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		b, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		body = b

		w.Header().Set("Content-Type", "text/event-stream")
		for _, l := range lines {
			fmt.Fprintf(w, "%s\n\n", l)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &body
}

func delta(role, content string) string {
	payload := map[string]any{
		"choices": []map[string]any{{"delta": map[string]string{"role": role, "content": content}}},
	}
	b, _ := json.Marshal(payload)
	return "data: " + string(b)
}

func TestNewProvider_RequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewProvider("")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestNewProvider_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("OPENAI_BASE_URL", "")

	p, err := NewProvider("")
	require.NoError(t, err)
	assert.Equal(t, "env-key", p.GetAPIKey())
	assert.Equal(t, DefaultModel, p.GetModel())
	assert.Equal(t, DefaultBaseURL, p.GetBaseURL())
	assert.Equal(t, "openai", p.GetModelInfo().Provider)
	assert.True(t, p.GetModelInfo().SupportsStreaming)
}

func TestNewProvider_BaseURLFromEnv(t *testing.T) {
	t.Setenv("OPENAI_BASE_URL", "http://localhost:8080/v1/")

	p, err := NewProvider("k")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/v1", p.GetBaseURL())
	assert.Equal(t, "http://localhost:8080/v1", p.GetModelInfo().Metadata["base_url"])
}

func TestStreamCompletion_SplitsThinking(t *testing.T) {
	srv, body := sseServer(t,
		": keep-alive",
		delta("assistant", "<thinking>look at"),
		delta("", " the page</thinking>Navigating"),
		delta("", " now"),
		"data: [DONE]",
	)

	p, err := NewProvider("test-key", WithBaseURL(srv.URL), WithModel("gpt-4o-mini"), WithTemperature(0.2))
	require.NoError(t, err)

	stream, err := p.StreamCompletion(context.Background(), []*types.Message{
		types.NewSystemMessage("sys"),
		types.NewUserMessage("go"),
	})
	require.NoError(t, err)

	var thinking, message strings.Builder
	var last *llm.StreamChunk
	for chunk := range stream {
		require.NoError(t, chunk.Error)
		if chunk.IsThinking() {
			thinking.WriteString(chunk.Content)
		} else {
			message.WriteString(chunk.Content)
		}
		last = chunk
	}

	assert.Equal(t, "look at the page", thinking.String())
	assert.Equal(t, "Navigating now", message.String())
	require.NotNil(t, last)
	assert.True(t, last.Finished)
	assert.Equal(t, "assistant", last.Role)

	var req map[string]any
	require.NoError(t, json.Unmarshal(*body, &req))
	assert.Equal(t, "gpt-4o-mini", req["model"])
	assert.Equal(t, true, req["stream"])
	assert.InDelta(t, 0.2, req["temperature"], 0.0001)
	assert.Len(t, req["messages"], 2)
}

func TestComplete_AccumulatesMessage(t *testing.T) {
	srv, _ := sseServer(t,
		delta("assistant", "Hello"),
		delta("", ", world"),
		`data: {"choices":[{"delta":{},"finish_reason":"stop"}]}`,
	)

	p, err := NewProvider("test-key", WithBaseURL(srv.URL))
	require.NoError(t, err)

	msg, err := p.Complete(context.Background(), []*types.Message{types.NewUserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, types.RoleAssistant, msg.Role)
	assert.Equal(t, "Hello, world", msg.Content)
}

func TestStreamCompletion_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	p, err := NewProvider("test-key", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = p.StreamCompletion(context.Background(), nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "bad key")
}

func TestToParams_UnknownRoleBecomesUser(t *testing.T) {
	params := toParams([]*types.Message{
		types.NewSystemMessage("a"),
		types.NewMessage("tool", "b"),
		nil,
		types.NewAssistantMessage("c"),
	})
	require.Len(t, params, 3)
	assert.NotNil(t, params[0].OfSystem)
	assert.NotNil(t, params[1].OfUser)
	assert.NotNil(t, params[2].OfAssistant)
}

func TestMaxTokensFor(t *testing.T) {
	tests := []struct {
		model string
		want  int
	}{
		{"gpt-4o", 128000},
		{"gpt-4o-mini", 128000},
		{"gpt-4.1", 128000},
		{"o1", 128000},
		{"o3-mini", 128000},
		{"o4-mini-2025-04-16", 128000},
		{"gpt-4", 8192},
		{"gpt-3.5-turbo", 16385},
		{"openchat-3.5", 8192},
		{"ollama/llama3", 8192},
		{"o1x", 8192},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, maxTokensFor(tt.model))
		})
	}

	p, err := NewProvider("test-key", WithModel("openchat-3.5"))
	require.NoError(t, err)
	assert.Equal(t, 8192, p.GetModelInfo().MaxTokens)
}
