package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewOpenAIClient(OpenAIConfig{
		APIKey:         "sk-test",
		BaseURL:        srv.URL + "/",
		ChatModel:      "gpt-test",
		EmbeddingModel: "embed-test",
	})
	require.NoError(t, err)
	return c
}

func TestOpenAIChat(t *testing.T) {
	c := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req.Model)
		assert.Len(t, req.Messages, 1)
		assert.Len(t, req.Tools, 1)

		fmt.Fprint(w, `{"choices":[{"finish_reason":"tool_calls","message":{"role":"assistant","content":null,
			"tool_calls":[{"id":"call_1","type":"function","function":{"name":"KnowledgeBaseQA","arguments":"{\"query\":\"usdc\"}"}}]}}]}`)
	})

	msg, err := c.Chat(t.Context(), []Message{{Role: RoleUser, Content: "best usdc yield?"}}, []ToolDefinition{{
		Type:     "function",
		Function: FunctionDefinition{Name: "KnowledgeBaseQA", Parameters: json.RawMessage(`{"type":"object"}`)},
	}})
	require.NoError(t, err)
	require.Equal(t, RoleAssistant, msg.Role)
	require.Empty(t, msg.Content)
	require.Len(t, msg.ToolCalls, 1)
	require.Equal(t, "KnowledgeBaseQA", msg.ToolCalls[0].Function.Name)
	require.JSONEq(t, `{"query":"usdc"}`, msg.ToolCalls[0].Function.Arguments)

	_, err = c.Chat(t.Context(), nil, nil)
	require.Error(t, err)
}

func TestOpenAIEmbed(t *testing.T) {
	c := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		// out of order on purpose
		fmt.Fprint(w, `{"data":[{"index":1,"embedding":[0,1]},{"index":0,"embedding":[1,0]}]}`)
	})

	vectors, err := c.Embed(t.Context(), []string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, [][]float32{{1, 0}, {0, 1}}, vectors)

	_, err = c.Embed(t.Context(), []string{"a", "b", "c"})
	require.Error(t, err)

	vectors, err = c.Embed(t.Context(), nil)
	require.NoError(t, err)
	require.Nil(t, vectors)
}

func TestOpenAIError(t *testing.T) {
	c := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limited"}}`)
	})

	_, err := c.Chat(t.Context(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	require.EqualError(t, err, "openai error (429): rate limited")

	_, err = NewOpenAIClient(OpenAIConfig{ChatModel: "m", EmbeddingModel: "e"})
	require.Error(t, err)
}
