// Package app wires configuration into the chat service shared by the
// HTTP and Telegram binaries.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"medichat/api/internal/chat"
	"medichat/api/internal/config"
	"medichat/api/internal/llm"
	"medichat/api/internal/llm/deepseek"
	"medichat/api/internal/llm/gemini"
	"medichat/api/internal/llm/openai"
	"medichat/api/internal/script"
	"medichat/api/internal/store"
)

type App struct {
	Config  *config.Config
	Engines *llm.Engines
	Service *chat.Service
	// DB is nil when history lives in memory.
	DB *sql.DB
}

// BuildEngines creates an engine for every configured API key.
func BuildEngines(cfg *config.Config) (*llm.Engines, llm.Engine, error) {
	engs := &llm.Engines{Default: cfg.DefaultLLM}
	if cfg.GeminiAPIKey != "" {
		engs.Gemini = gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	if cfg.OpenAIAPIKey != "" {
		engs.OpenAI = openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	if cfg.DeepseekAPIKey != "" {
		engs.Deepseek = deepseek.New(cfg.DeepseekAPIKey, cfg.DeepseekModel)
	}

	def, err := engs.GetEngine("")
	if err == nil {
		return engs, def, nil
	}
	for _, name := range []string{"gemini", "gpt", "deepseek"} {
		if e, err2 := engs.GetEngine(name); err2 == nil {
			log.Printf("default llm %q unavailable (%v); using %s", cfg.DefaultLLM, err, name)
			engs.Default = name
			return engs, e, nil
		}
	}
	return nil, nil, fmt.Errorf("no llm engine configured: %w", err)
}

// OpenDB connects to Postgres and prepares the history table.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	if err := store.NewHistoryRepo(db).EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Printf("db connected: %s", config.SafeDSNSummary(dsn))
	return db, nil
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lex, err := script.LoadLexicon(cfg.LexiconPath)
	if err != nil {
		return nil, err
	}
	system, err := chat.LoadSystemPrompt(cfg.PromptDir)
	if err != nil {
		return nil, err
	}
	engs, def, err := BuildEngines(cfg)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Engines: engs}
	var hist chat.HistoryStore = chat.NewMemoryHistory()
	if cfg.DatabaseURL != "" {
		db, err := OpenDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.DB = db
		hist = store.NewHistoryRepo(db)
	} else {
		log.Printf("no database configured; chat history is kept in memory")
	}

	det := script.New(lex, script.DefaultTunables())
	a.Service = &chat.Service{
		Detector:     det,
		Engines:      llm.NewManager(def),
		Store:        hist,
		System:       system,
		HistoryLimit: cfg.HistoryLimit,
		ContextLimit: cfg.ContextLimit,
	}
	tun := det.Tunables()
	log.Printf("lexicon v%d loaded (dominant %.0f%%, mixed %.0f%%); default engine %s (%s)",
		det.Lexicon().Version(), tun.DominantPct, tun.MixedPct, def.Name(), def.GetModel())
	return a, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
