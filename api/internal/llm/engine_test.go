package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct{ name string }

func (s stubEngine) Name() string     { return s.name }
func (s stubEngine) GetModel() string { return s.name + "-model" }
func (s stubEngine) Chat(context.Context, ChatRequest) (ChatResponse, error) {
	return ChatResponse{Text: s.name}, nil
}
func (s stubEngine) ChatStream(_ context.Context, _ ChatRequest, onChunk func(string) error) error {
	return onChunk(s.name)
}

func TestGetEngine(t *testing.T) {
	engs := &Engines{Gemini: stubEngine{"gemini"}, OpenAI: stubEngine{"gpt"}, Default: "gemini"}

	e, err := engs.GetEngine("")
	require.NoError(t, err)
	assert.Equal(t, "gemini", e.Name())

	_, err = engs.GetEngine("deepseek")
	assert.EqualError(t, err, "deepseek is not configured")

	e, err = engs.GetEngine(" OpenAI ")
	require.NoError(t, err)
	assert.Equal(t, "gpt", e.Name())

	_, err = engs.GetEngine("llama")
	assert.ErrorIs(t, err, ErrUnknownEngine)

	_, err = (&Engines{Default: "gpt"}).GetEngine("")
	assert.EqualError(t, err, "gpt is not configured")
}

func TestManager(t *testing.T) {
	m := NewManager(stubEngine{"gemini"})
	assert.Equal(t, "gemini", m.Get("web:1").Name())

	m.Set("web:1", stubEngine{"gpt"})
	assert.Equal(t, "gpt", m.Get("web:1").Name())
	assert.Equal(t, "gemini", m.Get("web:2").Name())

	m.Reset("web:1")
	assert.Equal(t, "gemini", m.Get("web:1").Name())
}

func TestRetry(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), func() error {
		calls++
		if calls < 2 {
			return errors.New("503")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	calls = 0
	bad := errors.New("bad request")
	err = Retry(context.Background(), func() error {
		calls++
		return Permanent(bad)
	})
	assert.ErrorIs(t, err, bad)
	assert.Equal(t, 1, calls)
}

func TestPart(t *testing.T) {
	assert.False(t, Text("hi").IsBlob())
	assert.True(t, Blob("image/png", []byte{1}).IsBlob())
	assert.False(t, HasBlob([]Part{Text("a"), Text("b")}))
	assert.True(t, HasBlob([]Part{Text("a"), Blob("image/png", []byte{1})}))
}
