package llm

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
)

func sseChunk(content string) string {
	chunk := map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion.chunk",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []any{map[string]any{
			"index":         0,
			"delta":         map[string]any{"content": content},
			"finish_reason": nil,
		}},
	}
	data, _ := json.Marshal(chunk)
	return "data: " + string(data) + "\n\n"
}

func newSSEServer(t *testing.T, deltas []string, captured *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if captured != nil {
			require.NoError(t, json.Unmarshal(body, captured))
		}

		w.Header().Set("Content-Type", "text/event-stream")
		for _, d := range deltas {
			fmt.Fprint(w, sseChunk(d))
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func TestOpenAIProvider_StreamCompletion(t *testing.T) {
	var captured map[string]any
	srv := newSSEServer(t, []string{`{"na`, `me":"Ann"}`}, &captured)
	defer srv.Close()

	p := NewOpenAI(Config{
		BaseURL:  srv.URL + "/v1",
		Model:    "gpt-4o-mini",
		Provider: "OpenAI",
		APIKey:   "test-key",
	})

	temp := 0.2
	req := Request{
		Messages: []Message{
			{Role: RoleSystem, Content: "extract"},
			{Role: RoleUser, Content: "Ann"},
			{Role: RoleAssistant, Content: "{}"},
		},
		Schema:      map[string]any{"type": "object"},
		SchemaName:  "person",
		Strategy:    StrategyJSONSchema,
		Temperature: &temp,
		MaxTokens:   100,
	}

	var deltas []string
	for delta, err := range p.StreamCompletion(context.Background(), req) {
		require.NoError(t, err)
		deltas = append(deltas, delta)
	}
	assert.Equal(t, []string{`{"na`, `me":"Ann"}`}, deltas)
	assert.Equal(t, "OpenAI", p.Name())

	assert.Equal(t, "gpt-4o-mini", captured["model"])
	assert.Equal(t, true, captured["stream"])
	assert.EqualValues(t, 100, captured["max_completion_tokens"])
	assert.InDelta(t, 0.2, captured["temperature"], 1e-9)

	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 3)
	roles := make([]string, len(messages))
	for i, m := range messages {
		roles[i] = m.(map[string]any)["role"].(string)
	}
	assert.Equal(t, []string{"system", "user", "assistant"}, roles)

	format, ok := captured["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_schema", format["type"])
	schema := format["json_schema"].(map[string]any)
	assert.Equal(t, "person", schema["name"])
	assert.Equal(t, true, schema["strict"])
	strictSchema := schema["schema"].(map[string]any)
	assert.Equal(t, false, strictSchema["additionalProperties"])
}

func TestOpenAIProvider_JSONObjectStrategy(t *testing.T) {
	var captured map[string]any
	srv := newSSEServer(t, []string{"{}"}, &captured)
	defer srv.Close()

	p := NewOpenAI(Config{BaseURL: srv.URL + "/v1", Model: "m", APIKey: "test-key", MaxTokens: 4096})
	for _, err := range p.StreamCompletion(context.Background(), Request{Strategy: StrategyJSONObject}) {
		require.NoError(t, err)
	}

	format := captured["response_format"].(map[string]any)
	assert.Equal(t, "json_object", format["type"])
	assert.EqualValues(t, 4096, captured["max_completion_tokens"])
	assert.Equal(t, "m", captured["model"])
}

func TestOpenAIProvider_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error": {"message": "slow down", "type": "rate_limit"}}`)
	}))
	defer srv.Close()

	p := NewOpenAI(Config{BaseURL: srv.URL + "/v1", Model: "m", APIKey: "test-key"})

	var gotErr error
	for _, err := range p.StreamCompletion(context.Background(), Request{}) {
		if err != nil {
			gotErr = err
		}
	}
	require.Error(t, gotErr)
	assert.True(t, strings.Contains(gotErr.Error(), "429"), gotErr.Error())
}

func TestOpenAIProvider_EarlyBreak(t *testing.T) {
	srv := newSSEServer(t, []string{"a", "b", "c"}, nil)
	defer srv.Close()

	p := NewOpenAI(Config{BaseURL: srv.URL + "/v1", Model: "m", APIKey: "test-key"})
	var got []string
	for delta, err := range p.StreamCompletion(context.Background(), Request{}) {
		require.NoError(t, err)
		got = append(got, delta)
		break
	}
	assert.Equal(t, []string{"a"}, got)
}
