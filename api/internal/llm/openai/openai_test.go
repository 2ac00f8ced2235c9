package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medichat/api/internal/llm"
)

func TestChat(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "Aapko aaram karna chahiye."}}]
		}`))
	}))
	defer srv.Close()

	e := New("sk-test", "gpt-4o-mini", srv.URL+"/v1/")
	resp, err := e.Chat(context.Background(), llm.ChatRequest{
		System: "be brief",
		Parts:  []llm.Part{llm.Text("directive"), llm.Blob("image/png", []byte{1, 2}), llm.Text("User message: sir dard")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Aapko aaram karna chahiye.", resp.Text)
	assert.Equal(t, "gpt-4o-mini", resp.Model)

	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	user := msgs[1].(map[string]any)
	content := user["content"].([]any)
	require.Len(t, content, 3)
	img := content[1].(map[string]any)["image_url"].(map[string]any)
	assert.Equal(t, "data:image/png;base64,AQI=", img["url"])
}

func TestChatClientErrorIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad api key", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	e := New("sk-test", "gpt-4o-mini", srv.URL+"/v1/")
	_, err := e.Chat(context.Background(), llm.ChatRequest{Parts: []llm.Part{llm.Text("hi")}})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestChatWithoutKey(t *testing.T) {
	_, err := New("", "gpt-4o-mini").Chat(context.Background(), llm.ChatRequest{})
	assert.EqualError(t, err, "OPENAI_API_KEY is empty")
}
