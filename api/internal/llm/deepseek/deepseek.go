// Package deepseek talks to DeepSeek through its OpenAI-compatible API.
// DeepSeek chat models are text-only.
package deepseek

import (
	"context"
	"fmt"

	"medichat/api/internal/llm"
	"medichat/api/internal/llm/openai"
)

const BaseURL = "https://api.deepseek.com/v1/"

type Engine struct {
	*openai.Engine
}

// New builds a DeepSeek engine; baseURL overrides BaseURL when set.
func New(apiKey, model string, baseURL ...string) *Engine {
	url := BaseURL
	if len(baseURL) > 0 && baseURL[0] != "" {
		url = baseURL[0]
	}
	return &Engine{Engine: openai.New(apiKey, model, url)}
}

func (e *Engine) Name() string { return "deepseek" }

func (e *Engine) Chat(ctx context.Context, in llm.ChatRequest) (llm.ChatResponse, error) {
	if llm.HasBlob(in.Parts) {
		return llm.ChatResponse{}, fmt.Errorf("deepseek: %w", llm.ErrImagesUnsupported)
	}
	return e.Engine.Chat(ctx, in)
}

func (e *Engine) ChatStream(ctx context.Context, in llm.ChatRequest, onChunk func(string) error) error {
	if llm.HasBlob(in.Parts) {
		return fmt.Errorf("deepseek: %w", llm.ErrImagesUnsupported)
	}
	return e.Engine.ChatStream(ctx, in, onChunk)
}
