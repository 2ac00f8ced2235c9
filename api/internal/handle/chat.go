package handle

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"medichat/api/internal/chat"
	"medichat/api/internal/util"
)

type ImageInput struct {
	Data     string `json:"data"`
	MIMEType string `json:"mimeType"`
	Filename string `json:"filename"`
}

type ChatRequest struct {
	Message string      `json:"message"`
	Image   *ImageInput `json:"image,omitempty"`
	LLMName string      `json:"llm_name,omitempty"`
}

// decodeChat parses the body and resolves it into a chat.Message. Errors are
// safe to return to the caller.
func (h *Handle) decodeChat(w http.ResponseWriter, r *http.Request) (chat.Message, error) {
	r.Body = http.MaxBytesReader(w, r.Body, 2*h.opts.MaxUploadBytes)
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return chat.Message{}, fmt.Errorf("bad json: %w", err)
	}
	msg := chat.Message{Text: strings.TrimSpace(req.Message)}

	if req.Image != nil && strings.TrimSpace(req.Image.Data) != "" {
		data, hint, err := util.DecodeBase64MaybeDataURL(req.Image.Data)
		if err != nil || len(data) == 0 {
			return chat.Message{}, errors.New("bad image data")
		}
		mime := util.PickMIME(req.Image.MIMEType, hint, data)
		if !util.IsImage(mime) {
			return chat.Message{}, fmt.Errorf("unsupported image type %q", mime)
		}
		msg.Image = &chat.Image{
			MIMEType: mime,
			Data:     data,
			Filename: req.Image.Filename,
		}
	}
	if msg.Text == "" && msg.Image == nil {
		return chat.Message{}, chat.ErrEmptyMessage
	}

	if req.LLMName != "" {
		eng, err := h.engs.GetEngine(req.LLMName)
		if err != nil {
			return chat.Message{}, err
		}
		msg.Engine = eng
	}
	return msg, nil
}

func (h *Handle) Chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	id := chatID(w, r)
	msg, err := h.decodeChat(w, r)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, chat.FriendlyError(err))
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	reply, err := h.svc.Send(ctx, id, msg)
	if err != nil {
		log.Printf("chat %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, chat.FriendlyError(err))
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// ChatStream answers with server-sent events: one JSON object per
// "data:" frame.
func (h *Handle) ChatStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	id := chatID(w, r)
	msg, decodeErr := h.decodeChat(w, r)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	emit := func(ev chat.Event) error {
		b, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	}

	if decodeErr != nil {
		text := decodeErr.Error()
		if errors.Is(decodeErr, chat.ErrEmptyMessage) {
			text = chat.FriendlyError(decodeErr)
		}
		_ = emit(chat.Event{Error: text})
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	if err := h.svc.Stream(ctx, id, msg, emit); err != nil {
		log.Printf("chat %s stream: %v", id, err)
		_ = emit(chat.Event{Error: chat.FriendlyError(err)})
	}
}

func (h *Handle) Clear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	if c, err := r.Cookie(chatCookie); err == nil && c.Value != "" {
		if err := h.svc.Clear(r.Context(), c.Value); err != nil {
			log.Printf("chat %s clear: %v", c.Value, err)
			writeError(w, http.StatusInternalServerError, chat.FriendlyError(err))
			return
		}
		h.svc.Engines.Reset(c.Value)
	}
	id := chat.NewChatID("web")
	setChatCookie(w, id)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Chat history cleared",
		"new_chat_id": id,
	})
}

func (h *Handle) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}
	id := chatID(w, r)
	entries, n, err := h.svc.History(r.Context(), id)
	if err != nil {
		log.Printf("chat %s history: %v", id, err)
		writeError(w, http.StatusInternalServerError, chat.FriendlyError(err))
		return
	}
	if entries == nil {
		entries = []chat.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"chat_id":        id,
		"history_length": n,
		"history":        entries,
		"success":        true,
	})
}
