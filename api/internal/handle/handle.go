package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/rs/cors"

	"medichat/api/internal/chat"
	"medichat/api/internal/llm"
)

const chatCookie = "chat_id"

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Options struct {
	MaxUploadBytes int64
	Timeout        time.Duration
	DB             Pinger
}

type Handle struct {
	svc  *chat.Service
	engs *llm.Engines
	opts Options
}

func New(svc *chat.Service, engs *llm.Engines, opts Options) *Handle {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 100 << 20
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 180 * time.Second
	}
	return &Handle{svc: svc, engs: engs, opts: opts}
}

// Routes registers every endpoint and wraps the mux in CORS.
func (h *Handle) Routes(allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", h.Chat)
	mux.HandleFunc("/api/chat/stream", h.ChatStream)
	mux.HandleFunc("/api/chat/clear", h.Clear)
	mux.HandleFunc("/api/chat/history", h.History)
	mux.HandleFunc("/api/upload", h.Upload)
	mux.HandleFunc("/v1/script/detect", h.Detect)
	mux.HandleFunc("/healthz", h.Healthz)

	return cors.New(corsOptions(allowedOrigins)).Handler(mux)
}

// corsOptions allows credentials only for listed origins. An empty list
// means same-origin only; "*" allows any origin with credentials off.
func corsOptions(allowedOrigins []string) cors.Options {
	o := cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-Timeout"},
		AllowCredentials: true,
	}
	switch {
	case len(allowedOrigins) == 0:
		o.AllowOriginFunc = func(string) bool { return false }
	case slices.Contains(allowedOrigins, "*"):
		o.AllowedOrigins = []string{"*"}
		o.AllowCredentials = false
	}
	return o
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// requestContext applies X-Request-Timeout (or ?timeoutSec=) seconds, else
// the configured default.
func (h *Handle) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	deadline := h.opts.Timeout
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	} else if ts := r.URL.Query().Get("timeoutSec"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	}
	return context.WithTimeout(r.Context(), deadline)
}

// chatID returns the caller's chat ID, issuing a new cookie on first use.
func chatID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(chatCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := chat.NewChatID("web")
	setChatCookie(w, id)
	return id
}

func setChatCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     chatCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handle) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if h.opts.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.opts.DB.PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db: not ok\n" + err.Error()))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
