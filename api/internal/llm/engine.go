package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Part is one piece of a user turn: either text or an inline blob.
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

func Text(s string) Part { return Part{Text: s} }

func Blob(mime string, data []byte) Part { return Part{MIMEType: mime, Data: data} }

func (p Part) IsBlob() bool { return len(p.Data) > 0 }

// HasBlob reports whether any part carries inline data.
func HasBlob(parts []Part) bool {
	for _, p := range parts {
		if p.IsBlob() {
			return true
		}
	}
	return false
}

type ChatRequest struct {
	System string
	Parts  []Part
}

type ChatResponse struct {
	Text  string
	Model string
}

type Engine interface {
	Name() string
	GetModel() string
	Chat(ctx context.Context, in ChatRequest) (ChatResponse, error)
	// ChatStream calls onChunk for every text delta in arrival order.
	ChatStream(ctx context.Context, in ChatRequest, onChunk func(string) error) error
}

var ErrUnknownEngine = errors.New("unknown llm_name; use 'gemini', 'gpt' or 'deepseek'")

// ErrImagesUnsupported is returned by text-only engines given an image.
var ErrImagesUnsupported = errors.New("engine does not accept images")

type Engines struct {
	Gemini   Engine
	OpenAI   Engine
	Deepseek Engine
	Default  string
}

// GetEngine resolves an engine by name; an empty name selects the default.
func (e *Engines) GetEngine(llmName string) (Engine, error) {
	name := strings.ToLower(strings.TrimSpace(llmName))
	if name == "" {
		name = e.Default
	}
	var eng Engine
	switch name {
	case "gemini":
		eng = e.Gemini
	case "gpt", "openai":
		eng = e.OpenAI
	case "deepseek":
		eng = e.Deepseek
	default:
		return nil, ErrUnknownEngine
	}
	if eng == nil {
		return nil, errors.New(name + " is not configured")
	}
	return eng, nil
}

// Manager remembers the engine chosen per chat.
type Manager struct {
	def Engine
	m   sync.Map // chatID -> Engine
}

func NewManager(defaultEngine Engine) *Manager {
	return &Manager{def: defaultEngine}
}

func (m *Manager) Get(chatID string) Engine {
	if v, ok := m.m.Load(chatID); ok {
		return v.(Engine)
	}
	return m.def
}

func (m *Manager) Set(chatID string, e Engine) {
	m.m.Store(chatID, e)
}

func (m *Manager) Reset(chatID string) {
	m.m.Delete(chatID)
}
