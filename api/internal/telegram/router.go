package telegram

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"medichat/api/internal/chat"
	"medichat/api/internal/llm"
	"medichat/api/internal/script"
	"medichat/api/internal/util"
)

const maxMessageRunes = 3900

// Bot is the part of *tgbotapi.BotAPI the router uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Router struct {
	Bot     Bot
	Service *chat.Service
	Engines *llm.Engines

	HTTP    *http.Client
	Timeout time.Duration
}

// ChatID maps a Telegram chat to its history key.
func ChatID(id int64) string { return fmt.Sprintf("tg:%d", id) }

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	if msg.IsCommand() {
		r.HandleCommand(ctx, msg)
		return
	}
	if len(msg.Photo) > 0 {
		r.handlePhoto(ctx, msg)
		return
	}
	if strings.TrimSpace(msg.Text) != "" {
		r.reply(ctx, msg.Chat.ID, chat.Message{Text: msg.Text})
	}
}

func (r *Router) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start":
		r.send(cid, "Hello! I am Medicynth, a medical information assistant. "+
			"Write in English, Hindi or Marathi, in Devanagari or Roman letters, and I will answer the same way.\n"+
			"Commands: /clear, /script <text>, /engine gemini|gpt|deepseek")
	case "clear":
		if err := r.Service.Clear(ctx, ChatID(cid)); err != nil {
			log.Printf("telegram %d clear: %v", cid, err)
			r.send(cid, chat.FriendlyError(err))
			return
		}
		r.Service.Engines.Reset(ChatID(cid))
		r.send(cid, "🧹 Chat history cleared")
	case "script":
		if args == "" {
			r.send(cid, "Usage: /script <text>")
			return
		}
		label := r.Service.Detector.DetectScript(args)
		out := "Detected script: " + label.String()
		if lang := label.Language(); lang != script.LanguageUnknown {
			out += "\nLanguage: " + string(lang)
		}
		r.send(cid, out)
	case "engine":
		r.handleEngineCommand(cid, args)
	default:
		r.send(cid, "Unknown command")
	}
}

// handleEngineCommand switches the engine for the chat:
//
//	/engine
//	/engine gemini
//	/engine gpt
//	/engine deepseek
func (r *Router) handleEngineCommand(cid int64, args string) {
	id := ChatID(cid)
	if args == "" {
		cur := r.Service.Engines.Get(id)
		name := "none"
		if cur != nil {
			name = cur.Name() + " (" + cur.GetModel() + ")"
		}
		r.send(cid, "Current engine: "+name+"\nUsage: /engine gemini | /engine gpt | /engine deepseek")
		return
	}
	eng, err := r.Engines.GetEngine(strings.Fields(args)[0])
	if err != nil {
		r.send(cid, "❌ "+err.Error())
		return
	}
	r.Service.Engines.Set(id, eng)
	r.send(cid, "✅ Engine: "+eng.Name()+" ("+eng.GetModel()+")")
}

func (r *Router) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	ph := msg.Photo[len(msg.Photo)-1]
	url, err := r.Bot.GetFileDirectURL(ph.FileID)
	if err != nil {
		r.SendError(cid, err)
		return
	}
	data, err := r.download(ctx, url)
	if err != nil {
		r.SendError(cid, err)
		return
	}
	r.reply(ctx, cid, chat.Message{
		Text: msg.Caption,
		Image: &chat.Image{
			MIMEType: util.SniffImageMIME(data),
			Data:     data,
			Filename: ph.FileUniqueID + ".jpg",
		},
	})
}

func (r *Router) reply(ctx context.Context, cid int64, m chat.Message) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	_, _ = r.Bot.Send(tgbotapi.NewChatAction(cid, tgbotapi.ChatTyping))

	out, err := r.Service.Send(ctx, ChatID(cid), m)
	if err != nil {
		r.SendError(cid, err)
		return
	}
	r.SendResult(cid, out.Response)
}

// SendResult splits long replies into several messages.
func (r *Router) SendResult(cid int64, text string) {
	for _, part := range splitRunes(text, maxMessageRunes) {
		r.send(cid, part)
	}
}

func (r *Router) SendError(cid int64, err error) {
	log.Printf("telegram %d: %v", cid, err)
	r.send(cid, chat.FriendlyError(err))
}

func (r *Router) send(cid int64, text string) {
	if _, err := r.Bot.Send(tgbotapi.NewMessage(cid, text)); err != nil {
		log.Printf("telegram %d send: %v", cid, err)
	}
}

func (r *Router) download(ctx context.Context, url string) ([]byte, error) {
	hc := r.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("download status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(resp.Body)
}

func splitRunes(s string, n int) []string {
	rs := []rune(s)
	if len(rs) == 0 {
		return nil
	}
	var out []string
	for len(rs) > n {
		out = append(out, string(rs[:n]))
		rs = rs[n:]
	}
	return append(out, string(rs))
}
