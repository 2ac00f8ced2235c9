package chat

import (
	"context"
	"sync"
	"time"

	"medichat/api/internal/script"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Entry is one stored message of a conversation.
type Entry struct {
	Role      string       `json:"role"`
	Content   string       `json:"content"`
	Script    script.Label `json:"script,omitempty"`
	Stamp     string       `json:"timestamp"`
	CreatedAt time.Time    `json:"created_at"`
}

// HistoryStore persists per-chat history. Append keeps only the newest
// limit entries and returns the resulting length.
type HistoryStore interface {
	Append(ctx context.Context, chatID string, e Entry, limit int) (int, error)
	Recent(ctx context.Context, chatID string, n int) ([]Entry, error)
	Count(ctx context.Context, chatID string) (int, error)
	Clear(ctx context.Context, chatID string) error
}

// MemoryHistory keeps history in process; used when no database is configured.
type MemoryHistory struct {
	mu    sync.Mutex
	chats map[string][]Entry
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{chats: make(map[string][]Entry)}
}

func (m *MemoryHistory) Append(_ context.Context, chatID string, e Entry, limit int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := append(m.chats[chatID], e)
	if limit > 0 && len(h) > limit {
		h = append([]Entry(nil), h[len(h)-limit:]...)
	}
	m.chats[chatID] = h
	return len(h), nil
}

func (m *MemoryHistory) Recent(_ context.Context, chatID string, n int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.chats[chatID]
	if n > 0 && len(h) > n {
		h = h[len(h)-n:]
	}
	return append([]Entry(nil), h...), nil
}

func (m *MemoryHistory) Count(_ context.Context, chatID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chats[chatID]), nil
}

func (m *MemoryHistory) Clear(_ context.Context, chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.chats, chatID)
	return nil
}
