package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"medichat/api/internal/llm"
)

func TestToParts(t *testing.T) {
	parts := toParts([]llm.Part{
		llm.Text("directive"),
		llm.Blob("image/png", []byte{0x89, 0x50}),
		llm.Text("User message: hi"),
	})
	require.Len(t, parts, 3)
	assert.Equal(t, genai.Text("directive"), parts[0])
	blob, ok := parts[1].(*genai.Blob)
	require.True(t, ok)
	assert.Equal(t, "image/png", blob.MIMEType)
	assert.Equal(t, genai.Text("User message: hi"), parts[2])
}

func TestCandidateText(t *testing.T) {
	assert.Equal(t, "", candidateText(nil))

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: nil},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("Namaste, "), genai.Text("aap kaise hain?")}}},
		},
	}
	assert.Equal(t, "Namaste, aap kaise hain?", candidateText(resp))
}

func TestChatWithoutKey(t *testing.T) {
	e := New("  ", "gemini-2.0-flash")
	_, err := e.Chat(context.Background(), llm.ChatRequest{Parts: []llm.Part{llm.Text("hi")}})
	assert.EqualError(t, err, "GEMINI_API_KEY is empty")
	assert.Equal(t, "gemini", e.Name())
	assert.Equal(t, "gemini-2.0-flash", e.GetModel())
}

func TestIsClientError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"bad key", &googleapi.Error{Code: 400, Message: "API key not valid"}, true},
		{"forbidden", &googleapi.Error{Code: 403}, true},
		{"rate limited", &googleapi.Error{Code: 429}, false},
		{"server", &googleapi.Error{Code: 503}, false},
		{"wrapped", fmt.Errorf("gemini chat: %w", &googleapi.Error{Code: 401}), true},
		{"grpc invalid argument", status.Error(codes.InvalidArgument, "bad"), true},
		{"grpc unavailable", status.Error(codes.Unavailable, "down"), false},
		{"plain", errors.New("connection reset"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isClientError(tc.err))
		})
	}
}

func TestChatErrorRetries(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		wantCalls int
	}{
		{"bad key fails fast", &googleapi.Error{Code: 400, Message: "API key not valid"}, 1},
		{"rate limit is retried", &googleapi.Error{Code: 429}, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			err := llm.Retry(context.Background(), func() error {
				calls++
				return chatError(tc.err)
			})
			require.Error(t, err)
			assert.Equal(t, tc.wantCalls, calls)
			assert.True(t, strings.HasPrefix(err.Error(), "gemini chat: "), err.Error())

			var gerr *googleapi.Error
			assert.True(t, errors.As(err, &gerr))
		})
	}
}
