package deepseek

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medichat/api/internal/llm"
)

func TestChatText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "x", "object": "chat.completion", "created": 1700000000, "model": "deepseek-chat",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "Tumhi aaram kara."}}]
		}`))
	}))
	defer srv.Close()

	e := New("sk-ds", "deepseek-chat", srv.URL+"/v1/")
	assert.Equal(t, "deepseek", e.Name())
	assert.Equal(t, "deepseek-chat", e.GetModel())

	resp, err := e.Chat(context.Background(), llm.ChatRequest{Parts: []llm.Part{llm.Text("mala taap aahe")}})
	require.NoError(t, err)
	assert.Equal(t, "Tumhi aaram kara.", resp.Text)
}

func TestRejectsImages(t *testing.T) {
	e := New("sk-ds", "deepseek-chat", "http://127.0.0.1:1/v1/")
	req := llm.ChatRequest{Parts: []llm.Part{llm.Blob("image/png", []byte{1})}}

	_, err := e.Chat(context.Background(), req)
	assert.ErrorIs(t, err, llm.ErrImagesUnsupported)

	err = e.ChatStream(context.Background(), req, func(string) error { return nil })
	assert.ErrorIs(t, err, llm.ErrImagesUnsupported)
}
