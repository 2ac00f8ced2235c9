package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port string

	GeminiAPIKey   string
	GeminiModel    string
	OpenAIAPIKey   string
	OpenAIModel    string
	DeepseekAPIKey string
	DeepseekModel  string
	DefaultLLM     string

	DatabaseURL string

	TelegramBotToken string
	WebhookURL       string

	LexiconPath    string
	PromptDir      string
	AllowedOrigins []string

	HistoryLimit   int
	ContextLimit   int
	MaxUploadMB    int64
	RequestTimeout time.Duration
}

func defaults(v *viper.Viper) {
	v.SetDefault("port", "8000")
	v.SetDefault("gemini_model", "gemini-2.0-flash")
	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("deepseek_model", "deepseek-chat")
	v.SetDefault("default_llm", "gemini")
	v.SetDefault("allowed_origins", "")
	v.SetDefault("history_limit", 20)
	v.SetDefault("context_limit", 10)
	v.SetDefault("max_upload_mb", 100)
	v.SetDefault("request_timeout", "180s")

	v.SetDefault("postgres_user", "medichat")
	v.SetDefault("pghost", "db")
	v.SetDefault("pgport", "5432")
	v.SetDefault("postgres_db", "medichat")
}

// Load reads config.yaml (optional, from . or $HOME/.medichat) and the
// environment; environment variables win.
func Load() *Config {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.medichat")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Printf("config: %v", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port: strings.TrimSpace(v.GetString("port")),

		GeminiAPIKey:   strings.TrimSpace(v.GetString("gemini_api_key")),
		GeminiModel:    v.GetString("gemini_model"),
		OpenAIAPIKey:   strings.TrimSpace(v.GetString("openai_api_key")),
		OpenAIModel:    v.GetString("openai_model"),
		DeepseekAPIKey: strings.TrimSpace(v.GetString("deepseek_api_key")),
		DeepseekModel:  v.GetString("deepseek_model"),
		DefaultLLM:     strings.ToLower(v.GetString("default_llm")),

		DatabaseURL: resolveDSN(v),

		TelegramBotToken: v.GetString("telegram_bot_token"),
		WebhookURL:       strings.TrimSpace(v.GetString("webhook_url")),

		LexiconPath:    v.GetString("lexicon_path"),
		PromptDir:      v.GetString("prompt_dir"),
		AllowedOrigins: splitList(v.GetString("allowed_origins")),

		HistoryLimit:   v.GetInt("history_limit"),
		ContextLimit:   v.GetInt("context_limit"),
		MaxUploadMB:    v.GetInt64("max_upload_mb"),
		RequestTimeout: v.GetDuration("request_timeout"),
	}
}

// Validate checks that at least one LLM is configured.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" && c.OpenAIAPIKey == "" && c.DeepseekAPIKey == "" {
		return errors.New("missing required env GEMINI_API_KEY, OPENAI_API_KEY or DEEPSEEK_API_KEY")
	}
	if c.HistoryLimit <= 0 || c.ContextLimit <= 0 {
		return fmt.Errorf("history_limit and context_limit must be > 0 (got %d, %d)", c.HistoryLimit, c.ContextLimit)
	}
	return nil
}

// resolveDSN prefers DATABASE_URL and otherwise builds a DSN from
// POSTGRES_*/PG* variables; without a password there is no database.
func resolveDSN(v *viper.Viper) string {
	if dsn := strings.TrimSpace(v.GetString("database_url")); dsn != "" {
		return dsn
	}
	pass := v.GetString("postgres_password")
	if pass == "" {
		return ""
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(v.GetString("postgres_user"), pass),
		Host:     net.JoinHostPort(v.GetString("pghost"), v.GetString("pgport")),
		Path:     "/" + v.GetString("postgres_db"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// SafeDSNSummary renders a DSN for logs without the password.
func SafeDSNSummary(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "dsn: parse error"
	}
	user := u.User.Username()
	host := u.Host
	port := ""
	if h, p, err := net.SplitHostPort(u.Host); err == nil {
		host, port = h, p
	}
	db := strings.TrimPrefix(u.Path, "/")
	if port == "" {
		return fmt.Sprintf("host=%s db=%s user=%s", host, db, user)
	}
	return fmt.Sprintf("host=%s port=%s db=%s user=%s", host, port, db, user)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
