package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diretoriaja/monitor/internal/api"
	"github.com/diretoriaja/monitor/internal/app"
	"github.com/diretoriaja/monitor/internal/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("building application: %v", err)
	}
	defer a.Close()

	var cache api.Cache
	if a.Redis != nil {
		cache = api.NewRedisCache(a.Redis)
	}
	handlers := api.NewHandlers(a.Store, a.Registry, a.Scheduler, cache)
	server := api.NewServer(handlers, allowedOrigins())

	schedDone := make(chan error, 1)
	go func() { schedDone <- a.Scheduler.Run(ctx) }()

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	log.Printf("[Server] listening on %s", addr)

	httpDone := make(chan error, 1)
	go func() { httpDone <- server.ListenAndServe(addr) }()

	select {
	case err := <-httpDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	case <-ctx.Done():
	}

	log.Printf("[Server] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Server] http shutdown: %v", err)
	}
	if err := <-schedDone; err != nil {
		log.Printf("[Server] scheduler shutdown: %v", err)
	}
}

func allowedOrigins() []string {
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		return []string{v}
	}
	return nil
}
