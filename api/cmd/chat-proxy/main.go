package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"medichat/api/internal/app"
	"medichat/api/internal/config"
	"medichat/api/internal/handle"
	"medichat/api/internal/httpserver"
)

func main() {
	cfg := config.Load()

	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		cfg.Port = p
	} else if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = "8000"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer a.Close()

	opts := handle.Options{
		MaxUploadBytes: cfg.MaxUploadMB << 20,
		Timeout:        cfg.RequestTimeout,
	}
	if a.DB != nil {
		opts.DB = a.DB
	}
	h := handle.New(a.Service, a.Engines, opts)

	addr := ":" + cfg.Port
	if err := httpserver.Serve(ctx, addr, h.Routes(cfg.AllowedOrigins)); err != nil {
		log.Fatal(err)
	}
	log.Printf("chat-proxy stopped")
}
