package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"medichat/api/internal/llm"
	"medichat/api/internal/script"
)

const (
	maxEntryRunes   = 500
	maxContextRunes = 200
	historyPageSize = 10
)

type Image struct {
	MIMEType string
	Data     []byte
	Filename string
}

type Message struct {
	Text  string
	Image *Image
	// Engine overrides the chat's engine for this message when set.
	Engine llm.Engine
}

type Reply struct {
	Response       string       `json:"response"`
	DetectedScript script.Label `json:"detected_script"`
	ChatID         string       `json:"chat_id"`
	HistoryLength  int          `json:"history_length"`
	Success        bool         `json:"success"`
}

type ScriptInfo struct {
	DetectedScript script.Label `json:"detected_script"`
	ChatID         string       `json:"chat_id"`
}

// Event is one frame of a streamed reply.
type Event struct {
	ScriptInfo    *ScriptInfo `json:"script_info,omitempty"`
	Chunk         string      `json:"chunk,omitempty"`
	Done          bool        `json:"done,omitempty"`
	HistoryLength *int        `json:"history_length,omitempty"`
	Error         string      `json:"error,omitempty"`
}

type Service struct {
	Detector *script.Detector
	Engines  *llm.Manager
	Store    HistoryStore
	System   string

	HistoryLimit int
	ContextLimit int
}

func NewChatID(channel string) string {
	return channel + ":" + uuid.NewString()
}

type prepared struct {
	label script.Label
	req   llm.ChatRequest
	eng   llm.Engine
}

func (s *Service) prepare(ctx context.Context, chatID string, msg Message) (prepared, error) {
	text := strings.TrimSpace(msg.Text)
	if text == "" && msg.Image == nil {
		return prepared{}, ErrEmptyMessage
	}
	eng := msg.Engine
	if eng == nil {
		eng = s.Engines.Get(chatID)
	}
	if eng == nil {
		return prepared{}, fmt.Errorf("chat %s: no engine configured", chatID)
	}

	prior, err := s.Store.Recent(ctx, chatID, s.ContextLimit)
	if err != nil {
		log.Printf("chat %s: load history: %v", chatID, err)
		prior = nil
	}
	parts := contextParts(prior)

	p := prepared{label: script.Unknown, eng: eng}
	if text != "" {
		p.label = s.Detector.DetectScript(text)
		parts = append(parts, llm.Text(script.CreateInstruction(p.label, text)))
		s.record(ctx, chatID, RoleUser, text, p.label)
	}
	if msg.Image != nil {
		parts = append(parts, llm.Blob(msg.Image.MIMEType, msg.Image.Data))
		name := msg.Image.Filename
		if name == "" {
			name = "unknown"
		}
		s.record(ctx, chatID, RoleUser, "[Image uploaded: "+name+"]", "")
	}
	if text != "" {
		parts = append(parts, llm.Text("User message: "+text))
	}
	log.Printf("chat %s: script=%s engine=%s", chatID, p.label, eng.Name())

	p.req = llm.ChatRequest{System: s.System, Parts: parts}
	return p, nil
}

// Send forwards one user message to the chat's engine and returns the
// cleaned reply.
func (s *Service) Send(ctx context.Context, chatID string, msg Message) (Reply, error) {
	p, err := s.prepare(ctx, chatID, msg)
	if err != nil {
		return Reply{}, err
	}
	resp, err := p.eng.Chat(ctx, p.req)
	if err != nil {
		return Reply{}, err
	}
	cleaned := CleanResponse(resp.Text)
	n := s.record(ctx, chatID, RoleAssistant, cleaned, p.label)
	return Reply{
		Response:       cleaned,
		DetectedScript: p.label,
		ChatID:         chatID,
		HistoryLength:  n,
		Success:        true,
	}, nil
}

// Stream is Send for streaming engines: script info first, then cleaned
// chunks, then a done frame.
func (s *Service) Stream(ctx context.Context, chatID string, msg Message, emit func(Event) error) error {
	p, err := s.prepare(ctx, chatID, msg)
	if err != nil {
		return err
	}
	if err := emit(Event{ScriptInfo: &ScriptInfo{DetectedScript: p.label, ChatID: chatID}}); err != nil {
		return err
	}

	var full strings.Builder
	err = p.eng.ChatStream(ctx, p.req, func(chunk string) error {
		full.WriteString(chunk)
		if c := cleanChunk(chunk); c != "" {
			return emit(Event{Chunk: c})
		}
		return nil
	})
	if err != nil {
		return err
	}

	n := s.record(ctx, chatID, RoleAssistant, CleanResponse(full.String()), p.label)
	return emit(Event{Done: true, HistoryLength: &n})
}

func (s *Service) Clear(ctx context.Context, chatID string) error {
	return s.Store.Clear(ctx, chatID)
}

// History returns the last ten entries and the total stored count.
func (s *Service) History(ctx context.Context, chatID string) ([]Entry, int, error) {
	n, err := s.Store.Count(ctx, chatID)
	if err != nil {
		return nil, 0, err
	}
	entries, err := s.Store.Recent(ctx, chatID, historyPageSize)
	if err != nil {
		return nil, 0, err
	}
	return entries, n, nil
}

// record appends to history; failures are logged, not returned, so a
// broken history store never blocks a reply.
func (s *Service) record(ctx context.Context, chatID, role, content string, label script.Label) int {
	e := Entry{
		Role:      role,
		Content:   truncateRunes(content, maxEntryRunes),
		Script:    label,
		Stamp:     uuid.NewString()[:8],
		CreatedAt: time.Now().UTC(),
	}
	n, err := s.Store.Append(ctx, chatID, e, s.HistoryLimit)
	if err != nil {
		log.Printf("chat %s: history append: %v", chatID, err)
	}
	return n
}

func contextParts(prior []Entry) []llm.Part {
	if len(prior) == 0 {
		return nil
	}
	parts := []llm.Part{llm.Text("Previous conversation context:")}
	for i, e := range prior {
		if e.Role == RoleUser {
			parts = append(parts, llm.Text(fmt.Sprintf("User (%d): %s", i+1, e.Content)))
			continue
		}
		parts = append(parts, llm.Text(fmt.Sprintf("Assistant (%d): %s...", i+1, truncateRunes(e.Content, maxContextRunes))))
	}
	return append(parts, llm.Text("Current conversation:"))
}

// cleanChunk drops leaked directive lines from a streamed chunk but keeps
// the chunk's own spacing so consecutive chunks still join correctly.
func cleanChunk(chunk string) string {
	lines := strings.Split(chunk, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if isLeakedDirective(strings.TrimSpace(line)) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
