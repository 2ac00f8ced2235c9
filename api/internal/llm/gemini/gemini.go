package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"medichat/api/internal/llm"
)

type Engine struct {
	APIKey string
	Model  string
}

func New(apiKey, model string) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) model(ctx context.Context, system string) (*genai.Client, *genai.GenerativeModel, error) {
	if e.APIKey == "" {
		return nil, nil, errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return nil, nil, err
	}
	m := cl.GenerativeModel(e.Model)
	if strings.TrimSpace(system) != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	return cl, m, nil
}

func (e *Engine) Chat(ctx context.Context, in llm.ChatRequest) (llm.ChatResponse, error) {
	cl, m, err := e.model(ctx, in.System)
	if err != nil {
		return llm.ChatResponse{}, err
	}
	defer cl.Close()

	parts := toParts(in.Parts)
	var txt string
	err = llm.Retry(ctx, func() error {
		resp, err := m.GenerateContent(ctx, parts...)
		if err != nil {
			return chatError(err)
		}
		txt = candidateText(resp)
		if strings.TrimSpace(txt) == "" {
			return llm.Permanent(errors.New("gemini chat: empty response"))
		}
		return nil
	})
	if err != nil {
		return llm.ChatResponse{}, err
	}
	return llm.ChatResponse{Text: txt, Model: e.Model}, nil
}

func (e *Engine) ChatStream(ctx context.Context, in llm.ChatRequest, onChunk func(string) error) error {
	cl, m, err := e.model(ctx, in.System)
	if err != nil {
		return err
	}
	defer cl.Close()

	it := m.GenerateContentStream(ctx, toParts(in.Parts)...)
	for {
		resp, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("gemini stream: %w", err)
		}
		if t := candidateText(resp); t != "" {
			if err := onChunk(t); err != nil {
				return err
			}
		}
	}
}

// isClientError reports whether err is a request problem that a retry cannot
// fix. 429 and server errors stay retryable.
func isClientError(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code >= 400 && gerr.Code < 500 && gerr.Code != http.StatusTooManyRequests
	}
	switch status.Code(err) {
	case codes.InvalidArgument, codes.Unauthenticated, codes.PermissionDenied,
		codes.NotFound, codes.FailedPrecondition:
		return true
	}
	return false
}

func chatError(err error) error {
	err = fmt.Errorf("gemini chat: %w", err)
	if isClientError(err) {
		return llm.Permanent(err)
	}
	return err
}

func toParts(in []llm.Part) []genai.Part {
	out := make([]genai.Part, 0, len(in))
	for _, p := range in {
		if p.IsBlob() {
			out = append(out, &genai.Blob{MIMEType: p.MIMEType, Data: p.Data})
			continue
		}
		out = append(out, genai.Text(p.Text))
	}
	return out
}

// candidateText joins the text parts of the first candidate that has content.
func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}
