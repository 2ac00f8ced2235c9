package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medichat/api/internal/chat"
	"medichat/api/internal/llm"
	"medichat/api/internal/script"
)

type fakeBot struct {
	mu      sync.Mutex
	texts   []string
	fileURL string
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		b.texts = append(b.texts, m.Text)
	}
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) GetFileDirectURL(string) (string, error) {
	if b.fileURL == "" {
		return "", errors.New("no file")
	}
	return b.fileURL, nil
}

func (b *fakeBot) last() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.texts) == 0 {
		return ""
	}
	return b.texts[len(b.texts)-1]
}

type namedEngine struct {
	name  string
	reply string
	last  llm.ChatRequest
}

func (e *namedEngine) Name() string     { return e.name }
func (e *namedEngine) GetModel() string { return e.name + "-1" }
func (e *namedEngine) Chat(_ context.Context, in llm.ChatRequest) (llm.ChatResponse, error) {
	e.last = in
	return llm.ChatResponse{Text: e.reply}, nil
}
func (e *namedEngine) ChatStream(context.Context, llm.ChatRequest, func(string) error) error {
	return nil
}

func newTestRouter(t *testing.T) (*Router, *fakeBot, *namedEngine, *namedEngine) {
	t.Helper()
	lex, err := script.DefaultLexicon()
	require.NoError(t, err)
	gem := &namedEngine{name: "gemini", reply: "Aaram kijiye."}
	gpt := &namedEngine{name: "gpt", reply: "Rest well."}
	bot := &fakeBot{}
	r := &Router{
		Bot: bot,
		Service: &chat.Service{
			Detector:     script.New(lex, script.DefaultTunables()),
			Engines:      llm.NewManager(gem),
			Store:        chat.NewMemoryHistory(),
			HistoryLimit: 20,
			ContextLimit: 10,
		},
		Engines: &llm.Engines{Gemini: gem, OpenAI: gpt, Default: "gemini"},
	}
	return r, bot, gem, gpt
}

func textMessage(cid int64, text string) *tgbotapi.Message {
	m := &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: cid}, Text: text}
	if strings.HasPrefix(text, "/") {
		n := strings.IndexByte(text, ' ')
		if n < 0 {
			n = len(text)
		}
		m.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: n}}
	}
	return m
}

func TestHandleText(t *testing.T) {
	r, bot, gem, _ := newTestRouter(t)
	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: textMessage(42, "mujhe bukhar hai")})

	assert.Equal(t, "Aaram kijiye.", bot.last())
	require.NotEmpty(t, gem.last.Parts)
	n, err := r.Service.Store.Count(context.Background(), "tg:42")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCommands(t *testing.T) {
	r, bot, _, gpt := newTestRouter(t)
	ctx := context.Background()
	handle := func(text string) string {
		r.HandleUpdate(ctx, tgbotapi.Update{Message: textMessage(7, text)})
		return bot.last()
	}

	assert.Contains(t, handle("/start"), "Medicynth")
	assert.Equal(t, "Detected script: devanagari_marathi\nLanguage: marathi", handle("/script माझे डोके दुखत आहे"))
	assert.Equal(t, "Detected script: latin", handle("/script I have a headache"))
	assert.Equal(t, "Usage: /script <text>", handle("/script"))

	assert.Contains(t, handle("/engine"), "Current engine: gemini (gemini-1)")
	assert.Equal(t, "✅ Engine: gpt (gpt-1)", handle("/engine gpt"))
	assert.Equal(t, "Rest well.", handle("how are you"))
	assert.NotEmpty(t, gpt.last.Parts)
	assert.Contains(t, handle("/engine llama"), "❌")

	assert.Equal(t, "🧹 Chat history cleared", handle("/clear"))
	n, _ := r.Service.Store.Count(ctx, "tg:7")
	assert.Zero(t, n)
	assert.Contains(t, handle("/engine"), "gemini", "clear resets the engine")

	assert.Equal(t, "Unknown command", handle("/nope"))
}

func TestHandlePhoto(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(png)
	}))
	defer srv.Close()

	r, bot, gem, _ := newTestRouter(t)
	bot.fileURL = srv.URL
	msg := &tgbotapi.Message{
		Chat:    &tgbotapi.Chat{ID: 9},
		Caption: "what is this rash?",
		Photo:   []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "big", FileUniqueID: "u1"}},
	}
	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: msg})

	assert.Equal(t, "Aaram kijiye.", bot.last())
	var blob *llm.Part
	for i := range gem.last.Parts {
		if gem.last.Parts[i].IsBlob() {
			blob = &gem.last.Parts[i]
		}
	}
	require.NotNil(t, blob)
	assert.Equal(t, "image/png", blob.MIMEType)
	assert.Equal(t, png, blob.Data)
}

func TestHandlePhotoDownloadError(t *testing.T) {
	r, bot, _, _ := newTestRouter(t)
	msg := &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 9}, Photo: []tgbotapi.PhotoSize{{FileID: "x"}}}
	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: msg})
	assert.Equal(t, chat.FriendlyError(errors.New("no file")), bot.last())
}

func TestSplitRunes(t *testing.T) {
	assert.Nil(t, splitRunes("", 3))
	assert.Equal(t, []string{"abc"}, splitRunes("abc", 3))
	assert.Equal(t, []string{"नम", "स्", "ते"}, splitRunes("नमस्ते", 2))
}
