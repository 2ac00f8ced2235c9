package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"medichat/api/internal/llm"
)

type Engine struct {
	Model  string
	apiKey string
	client openai.Client
}

// New builds an engine; baseURL is optional and mostly useful for tests and
// OpenAI-compatible gateways.
func New(apiKey, model string, baseURL ...string) *Engine {
	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(apiKey)),
		option.WithHTTPClient(&http.Client{Timeout: 120 * time.Second}),
		option.WithMaxRetries(0), // llm.Retry handles retries
	}
	if len(baseURL) > 0 && baseURL[0] != "" {
		opts = append(opts, option.WithBaseURL(baseURL[0]))
	}
	return &Engine{
		Model:  strings.TrimSpace(model),
		apiKey: strings.TrimSpace(apiKey),
		client: openai.NewClient(opts...),
	}
}

func (e *Engine) Name() string     { return "gpt" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) params(in llm.ChatRequest) openai.ChatCompletionNewParams {
	var msgs []openai.ChatCompletionMessageParamUnion
	if s := strings.TrimSpace(in.System); s != "" {
		msgs = append(msgs, openai.SystemMessage(s))
	}
	msgs = append(msgs, openai.UserMessage(contentParts(in.Parts)))
	return openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(e.Model),
		Messages: msgs,
	}
}

func contentParts(in []llm.Part) []openai.ChatCompletionContentPartUnionParam {
	out := make([]openai.ChatCompletionContentPartUnionParam, 0, len(in))
	for _, p := range in {
		if p.IsBlob() {
			url := "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
			out = append(out, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: url}))
			continue
		}
		out = append(out, openai.TextContentPart(p.Text))
	}
	return out
}

func (e *Engine) Chat(ctx context.Context, in llm.ChatRequest) (llm.ChatResponse, error) {
	if e.apiKey == "" {
		return llm.ChatResponse{}, errors.New("OPENAI_API_KEY is empty")
	}
	params := e.params(in)

	var out llm.ChatResponse
	err := llm.Retry(ctx, func() error {
		resp, err := e.client.Chat.Completions.New(ctx, params)
		if err != nil {
			var apiErr *openai.Error
			if errors.As(err, &apiErr) && apiErr.StatusCode < 500 && apiErr.StatusCode != http.StatusTooManyRequests {
				return llm.Permanent(fmt.Errorf("openai chat: %w", err))
			}
			return fmt.Errorf("openai chat: %w", err)
		}
		if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
			return llm.Permanent(errors.New("openai chat: empty response"))
		}
		out = llm.ChatResponse{Text: resp.Choices[0].Message.Content, Model: resp.Model}
		return nil
	})
	return out, err
}

func (e *Engine) ChatStream(ctx context.Context, in llm.ChatRequest, onChunk func(string) error) error {
	if e.apiKey == "" {
		return errors.New("OPENAI_API_KEY is empty")
	}
	stream := e.client.Chat.Completions.NewStreaming(ctx, e.params(in))
	defer stream.Close()

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if d := chunk.Choices[0].Delta.Content; d != "" {
			if err := onChunk(d); err != nil {
				return err
			}
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("openai stream: %w", err)
	}
	return nil
}
